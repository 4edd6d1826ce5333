package answer

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hapava-angel/artworks-fond-Sirius/internal/domain/entity"
	wfmodel "github.com/hapava-angel/artworks-fond-Sirius/internal/workflow/model"
	apperrors "github.com/hapava-angel/artworks-fond-Sirius/pkg/errors"
)

type scriptedLLM struct {
	info        string
	concise     string
	expanded    string
	genErr      error
	verdicts    []string
	judgeErr    error
	infoVerdict string

	generations int
	judgements  int
	judged      []string
}

func (s *scriptedLLM) ArtworkInfo(_ context.Context, _ wfmodel.ArtworkInfoInput) (string, error) {
	s.generations++
	return s.info, s.genErr
}

func (s *scriptedLLM) ConciseAnswer(_ context.Context, _ wfmodel.AnswerInput) (string, error) {
	s.generations++
	return s.concise, s.genErr
}

func (s *scriptedLLM) ExpandedAnswer(_ context.Context, _ wfmodel.AnswerInput) (string, error) {
	s.generations++
	return s.expanded, s.genErr
}

func (s *scriptedLLM) JudgeAnswer(_ context.Context, in wfmodel.AnswerJudgeInput) (string, error) {
	s.judged = append(s.judged, in.Answer)
	if s.judgeErr != nil {
		return "", s.judgeErr
	}
	v := s.verdicts[s.judgements]
	s.judgements++
	return v, nil
}

func (s *scriptedLLM) JudgeArtworkInfo(_ context.Context, _ wfmodel.ArtworkInfoJudgeInput) (string, error) {
	s.judgements++
	return s.infoVerdict, s.judgeErr
}

type recordingAudit struct {
	records []AuditRecord
	err     error
}

func (a *recordingAudit) RecordUngrounded(_ context.Context, rec AuditRecord) error {
	a.records = append(a.records, rec)
	return a.err
}

var testArtwork = &entity.Artwork{ID: "a1", Text: "Айвазовский. Девятый вал. 1850."}

func TestAnswerEscalation(t *testing.T) {
	tests := []struct {
		name        string
		verdicts    []string
		wantText    string
		wantOutcome Outcome
		wantCalls   int
	}{
		{name: "concise grounded", verdicts: []string{"false"}, wantText: "short", wantOutcome: OutcomeConcise, wantCalls: 1},
		{name: "concise hallucinated, expanded grounded", verdicts: []string{"true", "false"}, wantText: "long", wantOutcome: OutcomeExpanded, wantCalls: 2},
		{name: "both hallucinated", verdicts: []string{"true", "true"}, wantText: DefaultRefusal, wantOutcome: OutcomeRefused, wantCalls: 2},
		{name: "unparseable fails closed", verdicts: []string{"not sure", "False"}, wantText: "long", wantOutcome: OutcomeExpanded, wantCalls: 2},
		{name: "unparseable twice refuses", verdicts: []string{"", "yes"}, wantText: DefaultRefusal, wantOutcome: OutcomeRefused, wantCalls: 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			llm := &scriptedLLM{concise: "short", expanded: "long", verdicts: tt.verdicts}
			p := NewPipeline(llm, llm, nil)

			got, err := p.Answer(context.Background(), "Когда написана картина?", testArtwork, "")
			require.NoError(t, err)
			assert.Equal(t, tt.wantText, got.Text)
			assert.Equal(t, tt.wantOutcome, got.Outcome)
			assert.Equal(t, tt.wantCalls, llm.generations)
			assert.Equal(t, tt.wantCalls, llm.judgements)
			assert.Len(t, got.Verdicts, tt.wantCalls)
			assert.LessOrEqual(t, llm.generations, 2)
			assert.LessOrEqual(t, llm.judgements, 2)
		})
	}
}

func TestAnswerValidatesEachTierAgainstItsOwnText(t *testing.T) {
	llm := &scriptedLLM{concise: "short", expanded: "long", verdicts: []string{"true", "false"}}
	p := NewPipeline(llm, llm, nil)

	_, err := p.Answer(context.Background(), "q", testArtwork, "p")
	require.NoError(t, err)
	assert.Equal(t, []string{"short", "long"}, llm.judged)
}

func TestAnswerRefusalIsAudited(t *testing.T) {
	llm := &scriptedLLM{concise: "short", expanded: "long", verdicts: []string{"true", "TRUE"}}
	audit := &recordingAudit{err: errors.New("stream down")}
	p := NewPipeline(llm, llm, audit)

	got, err := p.Answer(context.Background(), " q ", testArtwork, "p")
	require.NoError(t, err)
	assert.Equal(t, OutcomeRefused, got.Outcome)

	require.Len(t, audit.records, 1)
	rec := audit.records[0]
	assert.Equal(t, AuditAnswer, rec.Kind)
	assert.Equal(t, "a1", rec.ArtworkID)
	assert.Equal(t, "q", rec.Question)
	assert.Equal(t, "long", rec.Text)
	assert.Equal(t, "TRUE", rec.RawOutput)
}

func TestAnswerGenerationFailureIsTransient(t *testing.T) {
	llm := &scriptedLLM{genErr: errors.New("timeout")}
	p := NewPipeline(llm, llm, nil)

	_, err := p.Answer(context.Background(), "q", testArtwork, "p")
	require.Error(t, err)
	assert.True(t, apperrors.HasCode(err, apperrors.CodeGenerationFailed))
	assert.Equal(t, 1, llm.generations)
}

func TestAnswerValidationFailureIsTransient(t *testing.T) {
	llm := &scriptedLLM{concise: "short", judgeErr: errors.New("503")}
	p := NewPipeline(llm, llm, nil)

	_, err := p.Answer(context.Background(), "q", testArtwork, "p")
	require.Error(t, err)
	assert.True(t, apperrors.HasCode(err, apperrors.CodeValidationFailed))
}

func TestPresentArtworkIsNotGated(t *testing.T) {
	tests := []struct {
		name    string
		verdict string
		label   string
		audited bool
	}{
		{name: "grounded", verdict: "false", label: LabelGrounded},
		{name: "hallucinated", verdict: "true", label: LabelHallucinated, audited: true},
		{name: "unparsed", verdict: "???", label: LabelUnparsed, audited: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			llm := &scriptedLLM{info: "Рассказ о картине", infoVerdict: tt.verdict}
			audit := &recordingAudit{}
			p := NewPipeline(llm, llm, audit)

			got, err := p.PresentArtwork(context.Background(), testArtwork, "моряк")
			require.NoError(t, err)
			assert.Equal(t, "Рассказ о картине", got.Text)
			assert.Equal(t, tt.label, got.Verdict.Label())
			assert.Equal(t, tt.audited, len(audit.records) == 1)
			if tt.audited {
				assert.Equal(t, AuditArtworkInfo, audit.records[0].Kind)
			}
		})
	}
}

func TestPresentArtworkFailure(t *testing.T) {
	llm := &scriptedLLM{genErr: errors.New("boom")}
	p := NewPipeline(llm, llm, nil)

	_, err := p.PresentArtwork(context.Background(), testArtwork, "")
	assert.True(t, apperrors.HasCode(err, apperrors.CodeGenerationFailed))
	assert.Zero(t, llm.judgements)
}
