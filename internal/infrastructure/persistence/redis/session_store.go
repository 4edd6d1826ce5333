package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/hapava-angel/artworks-fond-Sirius/internal/domain/entity"
	"github.com/hapava-angel/artworks-fond-Sirius/internal/domain/repository"
)

const sessionKeyPrefix = "guide:session:"

// SessionStore 会话以 JSON 保存，每次写入刷新过期时间
type SessionStore struct {
	client *Client
	ttl    time.Duration
}

var _ repository.SessionRepository = (*SessionStore)(nil)

func NewSessionStore(client *Client, ttl time.Duration) *SessionStore {
	return &SessionStore{client: client, ttl: ttl}
}

func sessionKey(userID string) string {
	return sessionKeyPrefix + userID
}

func (s *SessionStore) Get(ctx context.Context, userID string) (*entity.TourSession, error) {
	ctx, span := tracer.Start(ctx, "session.Get",
		trace.WithAttributes(attribute.String("user.id", userID)))
	defer span.End()

	data, err := s.client.rdb.Get(ctx, sessionKey(userID)).Bytes()
	if err != nil {
		if IsNil(err) {
			span.SetAttributes(attribute.Bool("session.found", false))
			return nil, nil
		}
		span.RecordError(err)
		return nil, fmt.Errorf("failed to get session: %w", err)
	}

	var sess entity.TourSession
	if err := json.Unmarshal(data, &sess); err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("failed to decode session: %w", err)
	}
	span.SetAttributes(
		attribute.Bool("session.found", true),
		attribute.String("session.stage", string(sess.Stage.Kind())),
	)
	return &sess, nil
}

func (s *SessionStore) Save(ctx context.Context, sess *entity.TourSession) error {
	ctx, span := tracer.Start(ctx, "session.Save",
		trace.WithAttributes(attribute.String("user.id", sess.UserID)))
	defer span.End()

	data, err := json.Marshal(sess)
	if err != nil {
		span.RecordError(err)
		return fmt.Errorf("failed to encode session: %w", err)
	}
	if err := s.client.rdb.Set(ctx, sessionKey(sess.UserID), data, s.ttl).Err(); err != nil {
		span.RecordError(err)
		return fmt.Errorf("failed to save session: %w", err)
	}
	return nil
}

func (s *SessionStore) Delete(ctx context.Context, userID string) error {
	ctx, span := tracer.Start(ctx, "session.Delete",
		trace.WithAttributes(attribute.String("user.id", userID)))
	defer span.End()

	if err := s.client.rdb.Del(ctx, sessionKey(userID)).Err(); err != nil {
		span.RecordError(err)
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}
