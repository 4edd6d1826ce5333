package eino

import (
	"context"
	"time"

	einocb "github.com/cloudwego/eino/callbacks"
	"github.com/cloudwego/eino/components/model"
	cbtemplate "github.com/cloudwego/eino/utils/callbacks"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/hapava-angel/artworks-fond-Sirius/internal/domain/service"
	"github.com/hapava-angel/artworks-fond-Sirius/pkg/logger"
	"github.com/hapava-angel/artworks-fond-Sirius/pkg/metrics"
)

type startTimeKey struct{}

type modelNameKey struct{}

func newChatModelCallbackHandler() *cbtemplate.ModelCallbackHandler {
	return &cbtemplate.ModelCallbackHandler{
		OnStart: func(ctx context.Context, info *einocb.RunInfo, input *model.CallbackInput) context.Context {
			ctx = context.WithValue(ctx, startTimeKey{}, time.Now())

			call := service.LLMCallFromContext(ctx)
			modelName := modelNameFromInput(input)
			ctx = context.WithValue(ctx, modelNameKey{}, modelName)

			attrs := []attribute.KeyValue{
				attribute.String("eino.workflow", call.Workflow),
				attribute.String("llm.provider", call.Provider),
				attribute.String("llm.model", modelName),
				attribute.String("llm.prompt_id", call.PromptID),
			}
			if info != nil {
				attrs = append(attrs,
					attribute.String("eino.node_name", info.Name),
					attribute.String("eino.type", info.Type),
				)
			}

			ctx, _ = otel.Tracer("eino").Start(ctx, "llm.generate", trace.WithAttributes(attrs...))
			return ctx
		},

		OnEnd: func(ctx context.Context, _ *einocb.RunInfo, output *model.CallbackOutput) context.Context {
			call := service.LLMCallFromContext(ctx)
			modelName := modelNameFromOutput(output)
			if modelName == "" {
				modelName = modelNameFrom(ctx)
			}

			metrics.LLMCallTotal.WithLabelValues(call.Workflow, call.Provider, modelName, "success").Inc()
			d := elapsedSeconds(ctx)
			if d > 0 {
				metrics.LLMCallDuration.WithLabelValues(call.Workflow, call.Provider, modelName).Observe(d)
			}

			var promptTokens, completionTokens int
			if output != nil && output.TokenUsage != nil {
				promptTokens = output.TokenUsage.PromptTokens
				completionTokens = output.TokenUsage.CompletionTokens
				metrics.LLMTokensUsed.WithLabelValues(call.Workflow, call.Provider, modelName, "prompt").Add(float64(promptTokens))
				metrics.LLMTokensUsed.WithLabelValues(call.Workflow, call.Provider, modelName, "completion").Add(float64(completionTokens))
			}

			logger.Debug(ctx, "llm call finished",
				"workflow", call.Workflow,
				"prompt_id", call.PromptID,
				"model", modelName,
				"duration_ms", int64(d*1000),
				"prompt_tokens", promptTokens,
				"completion_tokens", completionTokens,
			)

			span := trace.SpanFromContext(ctx)
			span.SetAttributes(
				attribute.Int("llm.prompt_tokens", promptTokens),
				attribute.Int("llm.completion_tokens", completionTokens),
			)
			span.End()
			return ctx
		},

		OnError: func(ctx context.Context, _ *einocb.RunInfo, err error) context.Context {
			call := service.LLMCallFromContext(ctx)
			modelName := modelNameFrom(ctx)

			metrics.LLMCallTotal.WithLabelValues(call.Workflow, call.Provider, modelName, "error").Inc()
			if d := elapsedSeconds(ctx); d > 0 {
				metrics.LLMCallDuration.WithLabelValues(call.Workflow, call.Provider, modelName).Observe(d)
			}

			logger.Warn(ctx, "llm call failed",
				"workflow", call.Workflow,
				"prompt_id", call.PromptID,
				"model", modelName,
				"error", err.Error(),
			)

			span := trace.SpanFromContext(ctx)
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			span.End()
			return ctx
		},
	}
}

func elapsedSeconds(ctx context.Context) float64 {
	start, ok := ctx.Value(startTimeKey{}).(time.Time)
	if !ok || start.IsZero() {
		return 0
	}
	return time.Since(start).Seconds()
}

func modelNameFrom(ctx context.Context) string {
	name, _ := ctx.Value(modelNameKey{}).(string)
	return name
}

func modelNameFromInput(in *model.CallbackInput) string {
	if in == nil || in.Config == nil {
		return ""
	}
	return in.Config.Model
}

func modelNameFromOutput(out *model.CallbackOutput) string {
	if out == nil || out.Config == nil {
		return ""
	}
	return out.Config.Model
}
