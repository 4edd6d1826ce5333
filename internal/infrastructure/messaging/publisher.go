package messaging

import (
	"context"

	"github.com/hapava-angel/artworks-fond-Sirius/internal/application/answer"
	"github.com/hapava-angel/artworks-fond-Sirius/internal/application/tour"
	"github.com/hapava-angel/artworks-fond-Sirius/pkg/logger"
)

// GuidePublisher 将问答审计与导览事件写入各自的流
type GuidePublisher struct {
	producer    *Producer
	auditStream string
	tourStream  string
}

var (
	_ answer.AuditSink   = (*GuidePublisher)(nil)
	_ tour.TourEventSink = (*GuidePublisher)(nil)
)

func NewGuidePublisher(producer *Producer, auditStream, tourStream string) *GuidePublisher {
	return &GuidePublisher{
		producer:    producer,
		auditStream: auditStream,
		tourStream:  tourStream,
	}
}

// RecordUngrounded 记录未通过核验的生成文本
func (p *GuidePublisher) RecordUngrounded(ctx context.Context, rec answer.AuditRecord) error {
	msg, err := NewMessage(TypeUngrounded, userIDFrom(ctx), &UngroundedMessage{
		Kind:      string(rec.Kind),
		ArtworkID: rec.ArtworkID,
		Question:  rec.Question,
		Text:      rec.Text,
		Verdict:   rec.Verdict,
		RawOutput: rec.RawOutput,
		Outcome:   rec.Outcome,
	})
	if err != nil {
		return err
	}
	if requestID, ok := ctx.Value(logger.RequestIDKey).(string); ok && requestID != "" {
		msg.SetMetadata("request_id", requestID)
	}
	_, err = p.producer.Publish(ctx, p.auditStream, msg)
	return err
}

// TourCompleted 发布导览结束事件
func (p *GuidePublisher) TourCompleted(ctx context.Context, summary tour.TourSummary) error {
	msg, err := NewMessage(TypeTourCompleted, summary.UserID, &TourCompletedMessage{
		RouteLength:  summary.RouteLength,
		Shown:        summary.Shown,
		ProfileGiven: summary.ProfileGiven,
	})
	if err != nil {
		return err
	}
	_, err = p.producer.Publish(ctx, p.tourStream, msg)
	return err
}

func userIDFrom(ctx context.Context) string {
	if v, ok := ctx.Value(logger.UserIDKey).(string); ok {
		return v
	}
	return ""
}
