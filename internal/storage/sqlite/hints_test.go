package sqlite

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fieldcheck/internal/domain"
	"fieldcheck/pkg/e"
)

func openTemp(t *testing.T) *HintCache {
	t.Helper()
	h, err := Open(filepath.Join(t.TempDir(), "hints", "hints.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = h.Close() })
	require.NoError(t, h.InitSchema(context.Background()))
	return h
}

func TestHintCache_SaveLoadClear(t *testing.T) {
	h := openTemp(t)
	ctx := context.Background()
	at := time.Date(2025, 12, 23, 12, 0, 0, 123, time.UTC)

	hint := domain.SessionHint{
		ActorID:     "a1",
		TargetKey:   domain.TargetKey{PrimaryKey: "SITE-7", SecondaryKey: "NORTH"},
		DisplayName: "North gate",
		ValidatedAt: at,
	}
	require.NoError(t, h.Save(ctx, hint))

	got, err := h.Load(ctx, "a1")
	require.NoError(t, err)
	assert.Equal(t, hint.TargetKey, got.TargetKey)
	assert.Equal(t, "North gate", got.DisplayName)
	assert.True(t, at.Equal(got.ValidatedAt))

	hint.DisplayName = "South gate"
	require.NoError(t, h.Save(ctx, hint))
	got, err = h.Load(ctx, "a1")
	require.NoError(t, err)
	assert.Equal(t, "South gate", got.DisplayName)

	require.NoError(t, h.Clear(ctx, "a1"))
	_, err = h.Load(ctx, "a1")
	assert.ErrorIs(t, err, e.ErrNotFound)
}

func TestHintCache_ClearMissingIsNoop(t *testing.T) {
	h := openTemp(t)
	assert.NoError(t, h.Clear(context.Background(), "nobody"))
}

func TestHintCache_SurvivesReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "hints.db")
	ctx := context.Background()

	h, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, h.InitSchema(ctx))
	require.NoError(t, h.Save(ctx, domain.SessionHint{ActorID: "a1", TargetKey: domain.TargetKey{PrimaryKey: "P", SecondaryKey: "S"}, ValidatedAt: time.Now()}))
	require.NoError(t, h.Close())

	h, err = Open(path)
	require.NoError(t, err)
	defer h.Close()

	got, err := h.Load(ctx, "a1")
	require.NoError(t, err)
	assert.Equal(t, "P", got.TargetKey.PrimaryKey)
}
