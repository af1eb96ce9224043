package redis

import (
	"context"
	"errors"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrSnakeDoc/muse/internal/domain"
	"github.com/MrSnakeDoc/muse/internal/persist"
)

func newTestStore(t *testing.T) (*Store, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	s := NewStore(client)
	t.Cleanup(func() { _ = s.Close() })
	return s, mr
}

func TestGetMissing(t *testing.T) {
	s, _ := newTestStore(t)

	_, err := s.Get(context.Background(), "muse:app_state")
	assert.ErrorIs(t, err, persist.ErrNotFound)
}

func TestSetGet(t *testing.T) {
	s, mr := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.Set(ctx, "muse:app_state", []byte(`{"theme":"dark"}`)))

	got, err := s.Get(ctx, "muse:app_state")
	require.NoError(t, err)
	assert.Equal(t, `{"theme":"dark"}`, string(got))

	raw, err := mr.Get("muse:app_state")
	require.NoError(t, err)
	assert.Equal(t, `{"theme":"dark"}`, raw)
	assert.Zero(t, mr.TTL("muse:app_state"), "snapshots never expire")
}

func TestPing(t *testing.T) {
	s, _ := newTestStore(t)
	require.NoError(t, s.Ping(context.Background()))
}

func TestBackendError(t *testing.T) {
	s, mr := newTestStore(t)
	mr.SetError("READONLY replica")

	_, err := s.Get(context.Background(), "k")
	require.Error(t, err)
	assert.False(t, errors.Is(err, persist.ErrNotFound))
	assert.Error(t, s.Set(context.Background(), "k", []byte("v")))
}

func TestSnapshotStoreOverRedis(t *testing.T) {
	s, mr := newTestStore(t)
	store := persist.NewStore(s, "muse:app_state", nil)
	ctx := context.Background()

	item := domain.HistoryItem{ID: "01J", Kind: domain.KindDrawing, Prompt: "a garden at dusk",
		Content: domain.Content{ImageURL: "data:image/png;base64,AAA", Description: "a garden at dusk"}}

	favs, added, err := store.ToggleFavorite(ctx, item)
	require.NoError(t, err)
	assert.True(t, added)
	require.Len(t, favs, 1)

	assert.True(t, mr.Exists("muse:app_state"))
	got, err := store.Favorites(ctx)
	require.NoError(t, err)
	assert.Equal(t, favs, got)

	require.NoError(t, mr.Set("muse:app_state", "{not json"))
	snap := store.Load(ctx)
	assert.Equal(t, domain.ThemeLight, snap.Theme)
	assert.Empty(t, snap.Collections)
}
