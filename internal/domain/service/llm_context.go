// Package service 定义跨层共享的领域服务辅助
package service

import (
	"context"
	"strings"
)

type llmCallKey struct{}

// LLMCall 一次模型调用的业务标签，由 eino 回调读取用于指标与追踪
type LLMCall struct {
	Workflow string
	Provider string
	PromptID string
}

const unknownLabel = "unknown"

// WithLLMCall 在 context 中标记本次模型调用
func WithLLMCall(ctx context.Context, call LLMCall) context.Context {
	call.Workflow = strings.TrimSpace(call.Workflow)
	call.Provider = strings.TrimSpace(call.Provider)
	call.PromptID = strings.TrimSpace(call.PromptID)
	return context.WithValue(ctx, llmCallKey{}, call)
}

// LLMCallFromContext 读取模型调用标签，缺失字段以 unknown 填充
func LLMCallFromContext(ctx context.Context) LLMCall {
	call, _ := ctx.Value(llmCallKey{}).(LLMCall)
	if call.Workflow == "" {
		call.Workflow = unknownLabel
	}
	if call.Provider == "" {
		call.Provider = unknownLabel
	}
	if call.PromptID == "" {
		call.PromptID = unknownLabel
	}
	return call
}

func WorkflowFromContext(ctx context.Context) string {
	return LLMCallFromContext(ctx).Workflow
}

func ProviderFromContext(ctx context.Context) string {
	return LLMCallFromContext(ctx).Provider
}
