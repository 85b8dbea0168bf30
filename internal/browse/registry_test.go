package browse

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainerrors "github.com/bookshelfapp/bookshelf-server/internal/errors"
)

func TestRegistry_CreateAndGet(t *testing.T) {
	f := newFixture(t, nil)
	r := NewRegistry(f.catalog, f.ledger, time.Minute, nil)

	s, err := r.Create()
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(s.ID(), "session-"))

	got, err := r.Get(s.ID())
	require.NoError(t, err)
	assert.Same(t, s, got)
	assert.Equal(t, 1, r.Len())

	_, err = r.Get("session-missing")
	assert.True(t, domainerrors.Is(err, domainerrors.ErrNotFound))
}

func TestRegistry_SessionsAreIsolated(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, nil)
	r := NewRegistry(f.catalog, f.ledger, time.Minute, nil)

	a, err := r.Create()
	require.NoError(t, err)
	b, err := r.Create()
	require.NoError(t, err)

	_, err = a.SubmitSearch(ctx, "dune")
	require.NoError(t, err)

	assert.Len(t, a.Snapshot().Grid.Cards, 1)
	assert.Len(t, b.Snapshot().Grid.Cards, 6)
}

func TestRegistry_EvictIdle(t *testing.T) {
	f := newFixture(t, nil)
	r := NewRegistry(f.catalog, f.ledger, 10*time.Minute, nil)

	now := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	r.now = func() time.Time { return now }

	stale, err := r.Create()
	require.NoError(t, err)

	now = now.Add(8 * time.Minute)
	fresh, err := r.Create()
	require.NoError(t, err)

	now = now.Add(5 * time.Minute)
	assert.Equal(t, 1, r.Evict())

	_, err = r.Get(stale.ID())
	assert.Error(t, err)
	_, err = r.Get(fresh.ID())
	assert.NoError(t, err)
}

func TestRegistry_GetKeepsSessionAlive(t *testing.T) {
	f := newFixture(t, nil)
	r := NewRegistry(f.catalog, f.ledger, 10*time.Minute, nil)

	now := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	r.now = func() time.Time { return now }

	s, err := r.Create()
	require.NoError(t, err)

	now = now.Add(9 * time.Minute)
	_, err = r.Get(s.ID())
	require.NoError(t, err)

	now = now.Add(9 * time.Minute)
	assert.Zero(t, r.Evict())
}

func TestRegistry_RunStopsOnCancel(t *testing.T) {
	f := newFixture(t, nil)
	r := NewRegistry(f.catalog, f.ledger, time.Minute, nil)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		r.Run(ctx)
		close(done)
	}()
	cancel()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
}
