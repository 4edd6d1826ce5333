package chain

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	llmctx "github.com/hapava-angel/artworks-fond-Sirius/internal/domain/service"
	wfmodel "github.com/hapava-angel/artworks-fond-Sirius/internal/workflow/model"
	workflowprompt "github.com/hapava-angel/artworks-fond-Sirius/internal/workflow/prompt"
)

type recordedCall struct {
	messages []*schema.Message
	options  *model.Options
	call     llmctx.LLMCall
}

type fakeChatModel struct {
	mu    sync.Mutex
	reply string
	err   error
	calls []recordedCall
}

func (m *fakeChatModel) Generate(ctx context.Context, input []*schema.Message, opts ...model.Option) (*schema.Message, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, recordedCall{
		messages: input,
		options:  model.GetCommonOptions(&model.Options{}, opts...),
		call:     llmctx.LLMCallFromContext(ctx),
	})
	if m.err != nil {
		return nil, m.err
	}
	return schema.AssistantMessage(m.reply, nil), nil
}

func (m *fakeChatModel) Stream(ctx context.Context, input []*schema.Message, opts ...model.Option) (*schema.StreamReader[*schema.Message], error) {
	msg, err := m.Generate(ctx, input, opts...)
	if err != nil {
		return nil, err
	}
	return schema.StreamReaderFromArray([]*schema.Message{msg}), nil
}

type fakeFactory struct {
	model     *fakeChatModel
	providers []string
}

func (f *fakeFactory) Get(_ context.Context, provider string) (model.BaseChatModel, error) {
	f.providers = append(f.providers, provider)
	return f.model, nil
}

func newTestGuide(reply string) (*Guide, *fakeChatModel, *fakeFactory) {
	m := &fakeChatModel{reply: reply}
	f := &fakeFactory{model: m}
	return NewGuide(f, GuideOptions{Provider: "openai", ConciseMaxTokens: 100, ExpandedMaxTokens: 900}), m, f
}

func TestAllPromptTemplatesLoad(t *testing.T) {
	r := workflowprompt.NewRegistry()
	for _, id := range workflowprompt.All {
		_, err := r.ChatTemplate(id)
		assert.NoError(t, err, id)
	}
	_, err := r.ChatTemplate("missing_v1")
	assert.Error(t, err)
}

func TestConciseAnswerFormatsPrompt(t *testing.T) {
	g, m, f := newTestGuide("  Картина написана маслом.  ")

	got, err := g.ConciseAnswer(context.Background(), wfmodel.AnswerInput{
		Question:  "Какая техника?",
		Grounding: "Холст, масло. 1889 год.",
		Profile:   "художник-любитель",
	})
	require.NoError(t, err)
	assert.Equal(t, "Картина написана маслом.", got)
	assert.Equal(t, []string{"openai"}, f.providers)

	require.Len(t, m.calls, 1)
	c := m.calls[0]
	require.Len(t, c.messages, 2)
	assert.Equal(t, schema.System, c.messages[0].Role)
	assert.Contains(t, c.messages[1].Content, "Какая техника?")
	assert.Contains(t, c.messages[1].Content, "Холст, масло. 1889 год.")
	assert.Contains(t, c.messages[1].Content, "художник-любитель")
	require.NotNil(t, c.options.MaxTokens)
	assert.Equal(t, 100, *c.options.MaxTokens)
	assert.Equal(t, llmctx.LLMCall{Workflow: WorkflowAnswerConcise, Provider: "openai", PromptID: "answer_concise_v1"}, c.call)
}

func TestExpandedAnswerUsesLargerBudget(t *testing.T) {
	g, m, _ := newTestGuide("ответ")
	_, err := g.ExpandedAnswer(context.Background(), wfmodel.AnswerInput{Question: "q", Grounding: "g"})
	require.NoError(t, err)
	require.Len(t, m.calls, 1)
	assert.Equal(t, 900, *m.calls[0].options.MaxTokens)
	assert.Contains(t, m.calls[0].messages[1].Content, noProfile)
}

func TestJudgeIsDeterministicAndAllowsEmptyOutput(t *testing.T) {
	g, m, _ := newTestGuide("   ")
	raw, err := g.JudgeAnswer(context.Background(), wfmodel.AnswerJudgeInput{Grounding: "g", Answer: "a", Question: "q"})
	require.NoError(t, err)
	assert.Empty(t, raw)

	require.Len(t, m.calls, 1)
	require.NotNil(t, m.calls[0].options.Temperature)
	assert.Zero(t, *m.calls[0].options.Temperature)
	assert.Equal(t, judgeMaxTokens, *m.calls[0].options.MaxTokens)
}

func TestGenerationRejectsEmptyOutput(t *testing.T) {
	g, _, _ := newTestGuide("")
	_, err := g.ArtworkInfo(context.Background(), wfmodel.ArtworkInfoInput{Grounding: "g"})
	assert.Error(t, err)
}

func TestNarrateRouteListsArtworksInOrder(t *testing.T) {
	g, m, _ := newTestGuide("маршрут")
	_, err := g.NarrateRoute(context.Background(), wfmodel.RouteNarrationInput{
		Profile: "студент",
		Query:   "что-то яркое",
		Artworks: []wfmodel.RouteArtwork{
			{ID: "a", Text: "Подсолнухи"},
			{ID: "b", Text: "Звёздная ночь"},
		},
	})
	require.NoError(t, err)
	user := m.calls[0].messages[1].Content
	assert.Contains(t, user, "1. Подсолнухи\n\n2. Звёздная ночь")
	assert.Contains(t, user, "что-то яркое")
}

func TestFarewellPropagatesModelError(t *testing.T) {
	g, m, _ := newTestGuide("")
	m.err = errors.New("rate limited")
	_, err := g.Farewell(context.Background(), wfmodel.FarewellInput{Profile: "p"})
	assert.ErrorContains(t, err, "rate limited")
}

func TestNilFactory(t *testing.T) {
	g := NewGuide(nil, GuideOptions{})
	_, err := g.Farewell(context.Background(), wfmodel.FarewellInput{})
	assert.Error(t, err)
}
