// Package repository 定义数据访问层接口
package repository

import (
	"context"

	"github.com/hapava-angel/artworks-fond-Sirius/internal/domain/entity"
)

// SessionRepository 导览会话存储
//
// Get 在会话不存在时返回 (nil, nil)，由调用方决定如何创建新会话。
// 实现必须返回副本，调用方对返回值的修改只有在 Save 之后才可见。
type SessionRepository interface {
	Get(ctx context.Context, userID string) (*entity.TourSession, error)
	Save(ctx context.Context, session *entity.TourSession) error
	Delete(ctx context.Context, userID string) error
}
