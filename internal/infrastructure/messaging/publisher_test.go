package messaging

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hapava-angel/artworks-fond-Sirius/internal/application/answer"
	"github.com/hapava-angel/artworks-fond-Sirius/internal/application/tour"
	"github.com/hapava-angel/artworks-fond-Sirius/pkg/logger"
)

func newTestPublisher(t *testing.T) (*GuidePublisher, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return NewGuidePublisher(NewProducer(rdb, 100), "stream:guide:audit", "stream:guide:tours"), rdb
}

func readOne(t *testing.T, rdb *redis.Client, stream string) *Message {
	t.Helper()
	entries, err := rdb.XRange(context.Background(), stream, "-", "+").Result()
	require.NoError(t, err)
	require.Len(t, entries, 1)

	var msg Message
	require.NoError(t, json.Unmarshal([]byte(entries[0].Values["data"].(string)), &msg))
	return &msg
}

func TestGuidePublisher_RecordUngrounded(t *testing.T) {
	p, rdb := newTestPublisher(t)
	ctx := logger.WithContext(context.Background(), logger.UserIDKey, "u42")
	ctx = logger.WithContext(ctx, logger.RequestIDKey, "req-1")

	err := p.RecordUngrounded(ctx, answer.AuditRecord{
		Kind:      answer.AuditAnswer,
		ArtworkID: "a1",
		Question:  "Кто автор?",
		Text:      "Автор неизвестен",
		Verdict:   "hallucinated",
		RawOutput: "true",
		Outcome:   "refused",
	})
	require.NoError(t, err)

	msg := readOne(t, rdb, "stream:guide:audit")
	assert.Equal(t, TypeUngrounded, msg.Type)
	assert.Equal(t, "u42", msg.UserID)
	assert.Equal(t, "req-1", msg.Metadata["request_id"])
	assert.NotEmpty(t, msg.ID)

	var payload UngroundedMessage
	require.NoError(t, msg.UnmarshalPayload(&payload))
	assert.Equal(t, "answer", payload.Kind)
	assert.Equal(t, "a1", payload.ArtworkID)
	assert.Equal(t, "refused", payload.Outcome)
}

func TestGuidePublisher_TourCompleted(t *testing.T) {
	p, rdb := newTestPublisher(t)

	err := p.TourCompleted(context.Background(), tour.TourSummary{
		UserID:       "u7",
		RouteLength:  5,
		Shown:        3,
		ProfileGiven: true,
	})
	require.NoError(t, err)

	msg := readOne(t, rdb, "stream:guide:tours")
	assert.Equal(t, TypeTourCompleted, msg.Type)
	assert.Equal(t, "u7", msg.UserID)

	var payload TourCompletedMessage
	require.NoError(t, msg.UnmarshalPayload(&payload))
	assert.Equal(t, TourCompletedMessage{RouteLength: 5, Shown: 3, ProfileGiven: true}, payload)
}
