package port

import (
	"context"

	"github.com/cloudwego/eino/components/model"
)

// ChatModelFactory 按提供商名称返回 ChatModel，空名称表示默认提供商。
// 工作流层只依赖此接口，具体实现位于基础设施层。
type ChatModelFactory interface {
	Get(ctx context.Context, provider string) (model.BaseChatModel, error)
}
