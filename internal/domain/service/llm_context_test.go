package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLLMCallFromContext(t *testing.T) {
	call := LLMCallFromContext(context.Background())
	assert.Equal(t, LLMCall{Workflow: "unknown", Provider: "unknown", PromptID: "unknown"}, call)

	ctx := WithLLMCall(context.Background(), LLMCall{Workflow: " answer_concise ", Provider: "openai"})
	assert.Equal(t, "answer_concise", WorkflowFromContext(ctx))
	assert.Equal(t, "openai", ProviderFromContext(ctx))
	assert.Equal(t, "unknown", LLMCallFromContext(ctx).PromptID)
}
