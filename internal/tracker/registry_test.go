package tracker

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type fakeClock struct {
	t time.Time
}

func (c *fakeClock) now() time.Time { return c.t }

func (c *fakeClock) advance(d time.Duration) { c.t = c.t.Add(d) }

func newTestRegistry(t *testing.T, cfg RegistryConfig) (*Registry, *fakeClock) {
	t.Helper()
	clock := &fakeClock{t: time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)}
	r := NewRegistry(func() (*Tracker, error) {
		return New(testSections, WithMobileMenu())
	}, cfg)
	r.now = clock.now
	return r, clock
}

func TestRegistryMountIsolatesViews(t *testing.T) {
	t.Parallel()

	r, _ := newTestRegistry(t, DefaultRegistryConfig())

	idA, a, err := r.Mount()
	require.NoError(t, err)
	idB, b, err := r.Mount()
	require.NoError(t, err)
	require.NotEqual(t, idA, idB)

	require.NoError(t, a.Select("projects", nil))
	require.Equal(t, "projects", a.Active())
	require.Equal(t, "about", b.Active(), "a fresh view starts at the first section")

	got, ok := r.Get(idA)
	require.True(t, ok)
	require.Same(t, a, got)
	require.Equal(t, 2, r.Count())

	r.Remove(idA)
	_, ok = r.Get(idA)
	require.False(t, ok)
}

func TestRegistryMountPropagatesFactoryError(t *testing.T) {
	t.Parallel()

	r := NewRegistry(func() (*Tracker, error) { return New(nil) }, RegistryConfig{})
	_, _, err := r.Mount()
	require.ErrorIs(t, err, ErrNoSections)
	require.Zero(t, r.Count())
}

func TestRegistryCleanupDropsIdleViews(t *testing.T) {
	t.Parallel()

	r, clock := newTestRegistry(t, RegistryConfig{TTL: time.Minute})

	idle, _, err := r.Mount()
	require.NoError(t, err)
	clock.advance(45 * time.Second)
	busy, _, err := r.Mount()
	require.NoError(t, err)

	clock.advance(30 * time.Second)
	_, ok := r.Get(busy)
	require.True(t, ok)

	require.Equal(t, 1, r.Cleanup())
	_, ok = r.Get(idle)
	require.False(t, ok)
	_, ok = r.Get(busy)
	require.True(t, ok)
}

func TestRegistryEvictsLeastRecentlyActive(t *testing.T) {
	t.Parallel()

	r, clock := newTestRegistry(t, RegistryConfig{TTL: time.Hour, MaxViews: 2})

	first, _, err := r.Mount()
	require.NoError(t, err)
	clock.advance(time.Second)
	second, _, err := r.Mount()
	require.NoError(t, err)
	clock.advance(time.Second)
	_, ok := r.Get(first)
	require.True(t, ok)
	clock.advance(time.Second)

	third, _, err := r.Mount()
	require.NoError(t, err)
	require.Equal(t, 2, r.Count())

	_, ok = r.Get(second)
	require.False(t, ok, "second view was idle the longest")
	_, ok = r.Get(first)
	require.True(t, ok)
	_, ok = r.Get(third)
	require.True(t, ok)
}

func TestRegistryRunStopsOnCancel(t *testing.T) {
	t.Parallel()

	r, _ := newTestRegistry(t, DefaultRegistryConfig())
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		r.Run(ctx, 10*time.Millisecond, nil)
		close(done)
	}()
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Run did not return after cancel")
	}
}
