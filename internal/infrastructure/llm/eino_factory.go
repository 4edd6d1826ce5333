// Package llm 管理 OpenAI 兼容的 ChatModel 客户端
package llm

import (
	"context"
	"fmt"
	"sync"

	"github.com/cloudwego/eino-ext/components/model/openai"
	"github.com/cloudwego/eino/components/model"

	"github.com/hapava-angel/artworks-fond-Sirius/internal/config"
	"github.com/hapava-angel/artworks-fond-Sirius/pkg/logger"
)

// EinoFactory 按提供商名称惰性创建并复用 ChatModel
type EinoFactory struct {
	config *config.LLMConfig
	models map[string]model.BaseChatModel
	mu     sync.RWMutex
}

func NewEinoFactory(cfg *config.Config) *EinoFactory {
	return &EinoFactory{
		config: &cfg.LLM,
		models: make(map[string]model.BaseChatModel),
	}
}

// Get 返回指定提供商的 ChatModel，name 为空时使用默认提供商
func (f *EinoFactory) Get(ctx context.Context, name string) (model.BaseChatModel, error) {
	if name == "" {
		name = f.config.DefaultProvider
	}

	f.mu.RLock()
	m, ok := f.models[name]
	f.mu.RUnlock()
	if ok {
		return m, nil
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	if m, ok = f.models[name]; ok {
		return m, nil
	}

	providerCfg, ok := f.config.Providers[name]
	if !ok {
		return nil, fmt.Errorf("provider %s not found in LLM config", name)
	}

	cfg := &openai.ChatModelConfig{
		APIKey:  providerCfg.APIKey,
		BaseURL: providerCfg.BaseURL,
		Model:   providerCfg.Model,
		Timeout: providerCfg.Timeout,
	}
	// 调用方未指定时的兜底值，单次调用的 option 会覆盖
	if providerCfg.MaxTokens > 0 {
		maxTokens := providerCfg.MaxTokens
		cfg.MaxTokens = &maxTokens
	}
	temperature := float32(providerCfg.Temperature)
	cfg.Temperature = &temperature

	chatModel, err := openai.NewChatModel(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create chat model for %s: %w", name, err)
	}

	logger.Info(ctx, "chat model initialized", "provider", name, "model", providerCfg.Model)
	f.models[name] = chatModel
	return chatModel, nil
}
