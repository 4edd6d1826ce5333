package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/hapava-angel/artworks-fond-Sirius/internal/domain/entity"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func TestSessionStore_CopiesOnReadAndWrite(t *testing.T) {
	store := NewSessionStore(time.Hour, 0)
	ctx := context.Background()

	sess := entity.NewTourSession("u1", time.Now())
	require.NoError(t, sess.PlanRoute([]string{"a1", "a2"}))
	require.NoError(t, store.Save(ctx, sess))

	sess.Route[0] = "mutated"
	got, err := store.Get(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, []string{"a1", "a2"}, got.Route)

	got.Cursor = 2
	again, err := store.Get(ctx, "u1")
	require.NoError(t, err)
	assert.Zero(t, again.Cursor)
	assert.Equal(t, 1, store.Len())
}

func TestSessionStore_MissingAndDelete(t *testing.T) {
	store := NewSessionStore(time.Hour, 0)
	ctx := context.Background()

	got, err := store.Get(ctx, "nobody")
	require.NoError(t, err)
	assert.Nil(t, got)

	require.NoError(t, store.Save(ctx, entity.NewTourSession("u1", time.Now())))
	require.NoError(t, store.Delete(ctx, "u1"))
	got, err = store.Get(ctx, "u1")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestSessionStore_Expiry(t *testing.T) {
	store := NewSessionStore(20*time.Millisecond, 0)
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, entity.NewTourSession("u1", time.Now())))
	time.Sleep(40 * time.Millisecond)

	got, err := store.Get(ctx, "u1")
	require.NoError(t, err)
	assert.Nil(t, got)
}
