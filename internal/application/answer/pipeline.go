// Package answer 实现展品讲解与问答：生成、核验、升级、拒答。
package answer

import (
	"context"
	"strings"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/hapava-angel/artworks-fond-Sirius/internal/domain/entity"
	wfmodel "github.com/hapava-angel/artworks-fond-Sirius/internal/workflow/model"
	apperrors "github.com/hapava-angel/artworks-fond-Sirius/pkg/errors"
	"github.com/hapava-angel/artworks-fond-Sirius/pkg/logger"
	"github.com/hapava-angel/artworks-fond-Sirius/pkg/metrics"
	"github.com/hapava-angel/artworks-fond-Sirius/pkg/tracer"
)

// DefaultRefusal 两次回答都未通过核验时发送的固定文本
const DefaultRefusal = "К сожалению, я затрудняюсь ответить. Пожалуйста перефразируйте ваш вопрос."

// Outcome 问答的终止状态
type Outcome string

const (
	OutcomeConcise  Outcome = "concise"
	OutcomeExpanded Outcome = "expanded"
	OutcomeRefused  Outcome = "refused"
)

// Answer 问答结果
type Answer struct {
	Text     string
	Outcome  Outcome
	Verdicts []Verdict
}

// Presentation 展品讲解结果，核验结论仅用于记录
type Presentation struct {
	Text    string
	Verdict Verdict
}

type Pipeline struct {
	generator Generator
	judge     Judge
	audit     AuditSink
	refusal   string
}

func NewPipeline(generator Generator, judge Judge, audit AuditSink) *Pipeline {
	return &Pipeline{
		generator: generator,
		judge:     judge,
		audit:     audit,
		refusal:   DefaultRefusal,
	}
}

// PresentArtwork 生成展品讲解并核验。核验结论不影响返回的文本。
func (p *Pipeline) PresentArtwork(ctx context.Context, artwork *entity.Artwork, profile string) (*Presentation, error) {
	ctx, span := tracer.Start(ctx, "answer.PresentArtwork")
	span.SetAttributes(attribute.String("artwork.id", artwork.ID))
	defer span.End()

	info, err := p.generator.ArtworkInfo(ctx, wfmodel.ArtworkInfoInput{
		Grounding: artwork.Text,
		Profile:   profile,
	})
	if err != nil {
		tracer.RecordError(span, err)
		return nil, apperrors.Wrap(err, apperrors.CodeGenerationFailed, "failed to generate artwork info")
	}

	raw, err := p.judge.JudgeArtworkInfo(ctx, wfmodel.ArtworkInfoJudgeInput{
		Grounding: artwork.Text,
		Info:      info,
	})
	if err != nil {
		tracer.RecordError(span, err)
		return nil, apperrors.Wrap(err, apperrors.CodeValidationFailed, "failed to validate artwork info")
	}

	verdict := ParseVerdict(raw)
	metrics.ValidationTotal.WithLabelValues(string(AuditArtworkInfo), verdict.Label()).Inc()
	span.SetAttributes(attribute.String("validation.verdict", verdict.Label()))
	if verdict.Hallucinated {
		logger.Warn(ctx, "artwork info failed validation, delivering anyway",
			"artwork_id", artwork.ID,
			"verdict", verdict.Label(),
		)
		p.recordAudit(ctx, AuditRecord{
			Kind:      AuditArtworkInfo,
			ArtworkID: artwork.ID,
			Text:      info,
			Verdict:   verdict.Label(),
			RawOutput: raw,
		})
	}

	return &Presentation{Text: info, Verdict: verdict}, nil
}

// Answer 回答观众问题：简答、核验、扩展回答、再核验、拒答。
// 每个问题最多两次生成与两次核验。
func (p *Pipeline) Answer(ctx context.Context, question string, artwork *entity.Artwork, profile string) (*Answer, error) {
	ctx, span := tracer.Start(ctx, "answer.Answer")
	span.SetAttributes(attribute.String("artwork.id", artwork.ID))
	defer span.End()

	in := wfmodel.AnswerInput{
		Question:  strings.TrimSpace(question),
		Grounding: artwork.Text,
		Profile:   profile,
	}

	tiers := []struct {
		outcome  Outcome
		generate func(context.Context, wfmodel.AnswerInput) (string, error)
	}{
		{OutcomeConcise, p.generator.ConciseAnswer},
		{OutcomeExpanded, p.generator.ExpandedAnswer},
	}

	out := &Answer{Verdicts: make([]Verdict, 0, len(tiers))}
	var last string
	for _, tier := range tiers {
		text, err := tier.generate(ctx, in)
		if err != nil {
			tracer.RecordError(span, err)
			return nil, apperrors.Wrap(err, apperrors.CodeGenerationFailed, "failed to generate "+string(tier.outcome)+" answer")
		}

		raw, err := p.judge.JudgeAnswer(ctx, wfmodel.AnswerJudgeInput{
			Grounding: artwork.Text,
			Answer:    text,
			Question:  in.Question,
		})
		if err != nil {
			tracer.RecordError(span, err)
			return nil, apperrors.Wrap(err, apperrors.CodeValidationFailed, "failed to validate "+string(tier.outcome)+" answer")
		}

		verdict := ParseVerdict(raw)
		out.Verdicts = append(out.Verdicts, verdict)
		metrics.ValidationTotal.WithLabelValues(string(AuditAnswer), verdict.Label()).Inc()
		if !verdict.Hallucinated {
			out.Text = text
			out.Outcome = tier.outcome
			return p.finish(span, out), nil
		}
		logger.Info(ctx, "answer failed validation",
			"artwork_id", artwork.ID,
			"tier", string(tier.outcome),
			"verdict", verdict.Label(),
		)
		last = text
	}

	out.Text = p.refusal
	out.Outcome = OutcomeRefused
	p.recordAudit(ctx, AuditRecord{
		Kind:      AuditAnswer,
		ArtworkID: artwork.ID,
		Question:  in.Question,
		Text:      last,
		Verdict:   out.Verdicts[len(out.Verdicts)-1].Label(),
		RawOutput: out.Verdicts[len(out.Verdicts)-1].Raw,
		Outcome:   string(OutcomeRefused),
	})
	return p.finish(span, out), nil
}

func (p *Pipeline) finish(span trace.Span, out *Answer) *Answer {
	metrics.AnswerOutcomes.WithLabelValues(string(out.Outcome)).Inc()
	span.SetAttributes(
		attribute.String("answer.outcome", string(out.Outcome)),
		attribute.Int("answer.attempts", len(out.Verdicts)),
	)
	return out
}

func (p *Pipeline) recordAudit(ctx context.Context, rec AuditRecord) {
	if p.audit == nil {
		return
	}
	if err := p.audit.RecordUngrounded(ctx, rec); err != nil {
		logger.Warn(ctx, "failed to record audit", "kind", string(rec.Kind), "error", err.Error())
	}
}
