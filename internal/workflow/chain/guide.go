package chain

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/compose"
	"github.com/cloudwego/eino/schema"

	llmctx "github.com/hapava-angel/artworks-fond-Sirius/internal/domain/service"
	wfmodel "github.com/hapava-angel/artworks-fond-Sirius/internal/workflow/model"
	wfnode "github.com/hapava-angel/artworks-fond-Sirius/internal/workflow/node"
	workflowport "github.com/hapava-angel/artworks-fond-Sirius/internal/workflow/port"
	workflowprompt "github.com/hapava-angel/artworks-fond-Sirius/internal/workflow/prompt"
)

const (
	WorkflowArtworkInfo      = "artwork_info"
	WorkflowAnswerConcise    = "answer_concise"
	WorkflowAnswerExpanded   = "answer_expanded"
	WorkflowJudgeAnswer      = "judge_answer"
	WorkflowJudgeArtworkInfo = "judge_artwork_info"
	WorkflowRouteNarration   = "route_narration"
	WorkflowFarewell         = "farewell"
)

const (
	judgeMaxTokens     = 8
	noProfile          = "(посетитель не рассказал о себе)"
	noQuery            = "(посетитель не уточнил пожелания)"
	defaultConciseMax  = 400
	defaultExpandedMax = 1200
)

// GuideOptions 导览各环节的生成参数
type GuideOptions struct {
	Provider          string
	ConciseMaxTokens  int
	ExpandedMaxTokens int
}

// Guide 导览相关的全部 LLM 能力：讲解、回答、核验、路线介绍与告别语。
// 各能力共享同一条 eino chain，按请求中的模板与采样参数区分。
type Guide struct {
	factory  workflowport.ChatModelFactory
	registry *workflowprompt.Registry
	opts     GuideOptions

	chainOnce sync.Once
	chain     compose.Runnable[*textRequest, string]
	chainErr  error
}

func NewGuide(factory workflowport.ChatModelFactory, opts GuideOptions) *Guide {
	if opts.ConciseMaxTokens <= 0 {
		opts.ConciseMaxTokens = defaultConciseMax
	}
	if opts.ExpandedMaxTokens <= 0 {
		opts.ExpandedMaxTokens = defaultExpandedMax
	}
	return &Guide{
		factory:  factory,
		registry: workflowprompt.NewRegistry(),
		opts:     opts,
	}
}

type textRequest struct {
	Workflow string
	PromptID workflowprompt.PromptID
	Vars     map[string]any
	Sampling wfmodel.Sampling
	// AllowEmpty 核验类调用的空输出交给上层按“无法解析”处理
	AllowEmpty bool
}

type textChainState struct {
	In       *textRequest
	Messages []*schema.Message
	OutMsg   *schema.Message
}

func (g *Guide) ArtworkInfo(ctx context.Context, in wfmodel.ArtworkInfoInput) (string, error) {
	return g.invoke(ctx, &textRequest{
		Workflow: WorkflowArtworkInfo,
		PromptID: workflowprompt.PromptArtworkInfoV1,
		Vars: map[string]any{
			"grounding": strings.TrimSpace(in.Grounding),
			"profile":   wfnode.OrPlaceholder(in.Profile, noProfile),
		},
	})
}

func (g *Guide) ConciseAnswer(ctx context.Context, in wfmodel.AnswerInput) (string, error) {
	return g.invoke(ctx, &textRequest{
		Workflow: WorkflowAnswerConcise,
		PromptID: workflowprompt.PromptAnswerConciseV1,
		Vars:     answerVars(in),
		Sampling: wfmodel.Sampling{MaxTokens: wfmodel.Int(g.opts.ConciseMaxTokens)},
	})
}

func (g *Guide) ExpandedAnswer(ctx context.Context, in wfmodel.AnswerInput) (string, error) {
	return g.invoke(ctx, &textRequest{
		Workflow: WorkflowAnswerExpanded,
		PromptID: workflowprompt.PromptAnswerExpandedV1,
		Vars:     answerVars(in),
		Sampling: wfmodel.Sampling{MaxTokens: wfmodel.Int(g.opts.ExpandedMaxTokens)},
	})
}

// JudgeAnswer 返回核验模型的原始输出，由调用方解析
func (g *Guide) JudgeAnswer(ctx context.Context, in wfmodel.AnswerJudgeInput) (string, error) {
	return g.invoke(ctx, &textRequest{
		Workflow: WorkflowJudgeAnswer,
		PromptID: workflowprompt.PromptJudgeAnswerV1,
		Vars: map[string]any{
			"grounding": strings.TrimSpace(in.Grounding),
			"answer":    strings.TrimSpace(in.Answer),
			"question":  strings.TrimSpace(in.Question),
		},
		Sampling:   judgeSampling(),
		AllowEmpty: true,
	})
}

func (g *Guide) JudgeArtworkInfo(ctx context.Context, in wfmodel.ArtworkInfoJudgeInput) (string, error) {
	return g.invoke(ctx, &textRequest{
		Workflow: WorkflowJudgeArtworkInfo,
		PromptID: workflowprompt.PromptJudgeArtworkInfoV1,
		Vars: map[string]any{
			"grounding": strings.TrimSpace(in.Grounding),
			"info":      strings.TrimSpace(in.Info),
		},
		Sampling:   judgeSampling(),
		AllowEmpty: true,
	})
}

func (g *Guide) NarrateRoute(ctx context.Context, in wfmodel.RouteNarrationInput) (string, error) {
	return g.invoke(ctx, &textRequest{
		Workflow: WorkflowRouteNarration,
		PromptID: workflowprompt.PromptRouteNarrationV1,
		Vars: map[string]any{
			"profile":        wfnode.OrPlaceholder(in.Profile, noProfile),
			"query":          wfnode.OrPlaceholder(in.Query, noQuery),
			"artworks_block": wfnode.BuildRouteBlock(in.Artworks),
		},
	})
}

func (g *Guide) Farewell(ctx context.Context, in wfmodel.FarewellInput) (string, error) {
	return g.invoke(ctx, &textRequest{
		Workflow: WorkflowFarewell,
		PromptID: workflowprompt.PromptFarewellV1,
		Vars: map[string]any{
			"profile": wfnode.OrPlaceholder(in.Profile, noProfile),
		},
	})
}

func answerVars(in wfmodel.AnswerInput) map[string]any {
	return map[string]any{
		"question":  strings.TrimSpace(in.Question),
		"grounding": strings.TrimSpace(in.Grounding),
		"profile":   wfnode.OrPlaceholder(in.Profile, noProfile),
	}
}

func judgeSampling() wfmodel.Sampling {
	return wfmodel.Sampling{
		Temperature: wfmodel.Float32(0),
		MaxTokens:   wfmodel.Int(judgeMaxTokens),
	}
}

func (g *Guide) invoke(ctx context.Context, req *textRequest) (string, error) {
	if g == nil || g.factory == nil {
		return "", fmt.Errorf("llm factory not configured")
	}
	chain, err := g.getChain()
	if err != nil {
		return "", err
	}
	return chain.Invoke(ctx, req)
}

func (g *Guide) getChain() (compose.Runnable[*textRequest, string], error) {
	g.chainOnce.Do(func() {
		g.chain, g.chainErr = g.buildChain(context.Background())
	})
	return g.chain, g.chainErr
}

func (g *Guide) buildChain(ctx context.Context) (compose.Runnable[*textRequest, string], error) {
	chain := compose.NewChain[*textRequest, string]()

	chain.AppendLambda(
		compose.InvokableLambda(func(_ context.Context, in *textRequest) (*textChainState, error) {
			if in == nil {
				return nil, fmt.Errorf("input is nil")
			}
			return &textChainState{In: in}, nil
		}),
		compose.WithNodeName("guide.init"),
	)

	chain.AppendLambda(
		compose.InvokableLambda(func(ctx context.Context, st *textChainState) (*textChainState, error) {
			tpl, err := g.registry.ChatTemplate(st.In.PromptID)
			if err != nil {
				return nil, err
			}
			msgs, err := tpl.Format(ctx, st.In.Vars)
			if err != nil {
				return nil, fmt.Errorf("format prompt %s: %w", st.In.PromptID, err)
			}
			st.Messages = msgs
			return st, nil
		}),
		compose.WithNodeName("guide.template"),
	)

	chain.AppendLambda(
		compose.InvokableLambda(func(ctx context.Context, st *textChainState) (*textChainState, error) {
			provider := strings.TrimSpace(g.opts.Provider)
			ctx = llmctx.WithLLMCall(ctx, llmctx.LLMCall{
				Workflow: st.In.Workflow,
				Provider: provider,
				PromptID: string(st.In.PromptID),
			})
			chatModel, err := g.factory.Get(ctx, provider)
			if err != nil {
				return nil, err
			}
			outMsg, err := chatModel.Generate(ctx, st.Messages, buildModelOptions(st.In.Sampling)...)
			if err != nil {
				return nil, err
			}
			if outMsg == nil {
				return nil, fmt.Errorf("empty llm response")
			}
			st.OutMsg = outMsg
			return st, nil
		}),
		compose.WithNodeName("guide.llm"),
	)

	chain.AppendLambda(
		compose.InvokableLambda(func(_ context.Context, st *textChainState) (string, error) {
			content := strings.TrimSpace(st.OutMsg.Content)
			if content == "" && !st.In.AllowEmpty {
				return "", fmt.Errorf("empty llm response for %s", st.In.Workflow)
			}
			return content, nil
		}),
		compose.WithNodeName("guide.finalize"),
	)

	return chain.Compile(ctx)
}

func buildModelOptions(s wfmodel.Sampling) []model.Option {
	opts := make([]model.Option, 0, 2)
	if s.Temperature != nil {
		opts = append(opts, model.WithTemperature(*s.Temperature))
	}
	if s.MaxTokens != nil {
		opts = append(opts, model.WithMaxTokens(*s.MaxTokens))
	}
	return opts
}
