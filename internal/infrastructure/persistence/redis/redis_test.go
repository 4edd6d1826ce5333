package redis

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hapava-angel/artworks-fond-Sirius/internal/domain/entity"
)

func newTestClient(t *testing.T) (*Client, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return Wrap(rdb), mr
}

func TestSessionStore_RoundTrip(t *testing.T) {
	client, mr := newTestClient(t)
	store := NewSessionStore(client, time.Hour)
	ctx := context.Background()

	got, err := store.Get(ctx, "u1")
	require.NoError(t, err)
	assert.Nil(t, got)

	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	sess := entity.NewTourSession("u1", now)
	sess.Profile = "люблю графику"
	require.NoError(t, sess.PlanRoute([]string{"a1", "a2"}))
	_, err = sess.AdvanceCursor()
	require.NoError(t, err)

	require.NoError(t, store.Save(ctx, sess))
	assert.Equal(t, time.Hour, mr.TTL(sessionKey("u1")))

	got, err = store.Get(ctx, "u1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, entity.Questioning{Artwork: 0}, got.Stage)
	assert.Equal(t, []string{"a1", "a2"}, got.Route)
	assert.Equal(t, 1, got.Cursor)
	assert.Equal(t, "люблю графику", got.Profile)
	assert.True(t, got.CreatedAt.Equal(now))

	require.NoError(t, store.Delete(ctx, "u1"))
	got, err = store.Get(ctx, "u1")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestSessionStore_Expires(t *testing.T) {
	client, mr := newTestClient(t)
	store := NewSessionStore(client, time.Minute)
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, entity.NewTourSession("u1", time.Now())))
	mr.FastForward(2 * time.Minute)

	got, err := store.Get(ctx, "u1")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestSessionStore_Unavailable(t *testing.T) {
	client, mr := newTestClient(t)
	store := NewSessionStore(client, time.Minute)
	mr.Close()

	_, err := store.Get(context.Background(), "u1")
	assert.Error(t, err)
}

func TestEmbeddingCache_LoadsOnce(t *testing.T) {
	client, _ := newTestClient(t)
	cache := NewEmbeddingCache(client, "test-model", time.Hour)
	ctx := context.Background()

	var loads atomic.Int32
	load := func(context.Context) ([]float32, error) {
		loads.Add(1)
		return []float32{0.5, 0.25}, nil
	}

	var wg sync.WaitGroup
	for range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			vec, err := cache.GetOrLoad(ctx, "живопись", load)
			assert.NoError(t, err)
			assert.Equal(t, []float32{0.5, 0.25}, vec)
		}()
	}
	wg.Wait()

	vec, err := cache.GetOrLoad(ctx, "живопись", load)
	require.NoError(t, err)
	assert.Equal(t, []float32{0.5, 0.25}, vec)
	assert.LessOrEqual(t, loads.Load(), int32(8))
	assert.GreaterOrEqual(t, loads.Load(), int32(1))

	before := loads.Load()
	_, err = cache.GetOrLoad(ctx, "живопись", load)
	require.NoError(t, err)
	assert.Equal(t, before, loads.Load())
}

func TestEmbeddingCache_LoadError(t *testing.T) {
	client, _ := newTestClient(t)
	cache := NewEmbeddingCache(client, "test-model", time.Hour)
	boom := errors.New("embedding unavailable")

	_, err := cache.GetOrLoad(context.Background(), "q", func(context.Context) ([]float32, error) {
		return nil, boom
	})
	assert.ErrorIs(t, err, boom)
}

func TestEmbeddingCache_DegradesWhenRedisDown(t *testing.T) {
	client, mr := newTestClient(t)
	cache := NewEmbeddingCache(client, "test-model", time.Hour)
	mr.Close()

	vec, err := cache.GetOrLoad(context.Background(), "q", func(context.Context) ([]float32, error) {
		return []float32{1}, nil
	})
	require.NoError(t, err)
	assert.Equal(t, []float32{1}, vec)
}

func TestRateLimiter_Allow(t *testing.T) {
	client, _ := newTestClient(t)
	limiter := NewRateLimiter(client)
	ctx := context.Background()
	key := BuildUserRateLimitKey("u1", "events")

	for range 3 {
		ok, err := limiter.Allow(ctx, key, 3, time.Minute)
		require.NoError(t, err)
		assert.True(t, ok)
	}

	ok, err := limiter.Allow(ctx, key, 3, time.Minute)
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = limiter.Allow(ctx, BuildUserRateLimitKey("u2", "events"), 3, time.Minute)
	require.NoError(t, err)
	assert.True(t, ok)
}
