package answer

import (
	"context"

	wfmodel "github.com/hapava-angel/artworks-fond-Sirius/internal/workflow/model"
)

// Generator 文本生成能力
type Generator interface {
	ArtworkInfo(ctx context.Context, in wfmodel.ArtworkInfoInput) (string, error)
	ConciseAnswer(ctx context.Context, in wfmodel.AnswerInput) (string, error)
	ExpandedAnswer(ctx context.Context, in wfmodel.AnswerInput) (string, error)
}

// Judge 事实核验能力，返回模型原始文本
type Judge interface {
	JudgeAnswer(ctx context.Context, in wfmodel.AnswerJudgeInput) (string, error)
	JudgeArtworkInfo(ctx context.Context, in wfmodel.ArtworkInfoJudgeInput) (string, error)
}

// AuditKind 审计记录类型
type AuditKind string

const (
	AuditArtworkInfo AuditKind = "artwork_info"
	AuditAnswer      AuditKind = "answer"
)

// AuditRecord 未通过核验的生成文本
type AuditRecord struct {
	Kind      AuditKind
	ArtworkID string
	Question  string
	Text      string
	Verdict   string
	RawOutput string
	Outcome   string
}

// AuditSink 接收审计记录，实现方失败不影响回答
type AuditSink interface {
	RecordUngrounded(ctx context.Context, rec AuditRecord) error
}
