package session

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oblivions/storefront/internal/core/domain"
)

func TestJanitor_SweepDropsExpired(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)

	require.NoError(t, store.Save(ctx, &domain.Session{ID: "old", ExpiresAt: now.Add(-time.Second)}))
	require.NoError(t, store.Save(ctx, &domain.Session{ID: "edge", ExpiresAt: now}))
	require.NoError(t, store.Save(ctx, &domain.Session{ID: "live", ExpiresAt: now.Add(time.Hour)}))

	j := NewJanitor(store, time.Minute, zerolog.Nop())
	j.now = func() time.Time { return now }

	assert.Equal(t, 2, j.sweep())
	assert.Equal(t, 1, store.Len())

	_, err := store.Get(ctx, "live")
	assert.NoError(t, err)
}

func TestJanitor_StartStopsWithContext(t *testing.T) {
	store := NewMemoryStore()
	require.NoError(t, store.Save(context.Background(), &domain.Session{ID: "old", ExpiresAt: time.Now().Add(-time.Minute)}))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	NewJanitor(store, 5*time.Millisecond, zerolog.Nop()).Start(ctx)

	assert.Eventually(t, func() bool { return store.Len() == 0 }, time.Second, 5*time.Millisecond)
}

func TestNewJanitor_DefaultInterval(t *testing.T) {
	j := NewJanitor(NewMemoryStore(), 0, zerolog.Nop())
	assert.Equal(t, defaultSweepInterval, j.interval)
}
