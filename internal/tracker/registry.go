package tracker

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

// RegistryConfig bounds how many views are kept and for how long.
type RegistryConfig struct {
	TTL      time.Duration
	MaxViews int
}

// DefaultRegistryConfig returns the limits used when none are configured.
func DefaultRegistryConfig() RegistryConfig {
	return RegistryConfig{
		TTL:      30 * time.Minute,
		MaxViews: 10000,
	}
}

type view struct {
	tracker      *Tracker
	lastActivity time.Time
}

// Registry holds one Tracker per page load. A reload mounts a fresh view, so
// nothing survives it; idle views are dropped after the TTL.
type Registry struct {
	factory func() (*Tracker, error)
	cfg     RegistryConfig
	now     func() time.Time

	mu    sync.RWMutex
	views map[string]*view
}

// NewRegistry creates a registry that builds trackers with factory.
func NewRegistry(factory func() (*Tracker, error), cfg RegistryConfig) *Registry {
	def := DefaultRegistryConfig()
	if cfg.TTL <= 0 {
		cfg.TTL = def.TTL
	}
	if cfg.MaxViews < 0 {
		cfg.MaxViews = 0
	}
	return &Registry{
		factory: factory,
		cfg:     cfg,
		now:     time.Now,
		views:   make(map[string]*view),
	}
}

// Mount creates and registers a new view.
func (r *Registry) Mount() (string, *Tracker, error) {
	t, err := r.factory()
	if err != nil {
		return "", nil, err
	}
	id := uuid.NewString()

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.cfg.MaxViews > 0 && len(r.views) >= r.cfg.MaxViews {
		r.evictOldestLocked()
	}
	r.views[id] = &view{tracker: t, lastActivity: r.now()}
	return id, t, nil
}

// Get returns the view's tracker and marks the view as active.
func (r *Registry) Get(id string) (*Tracker, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	v, ok := r.views[id]
	if !ok {
		return nil, false
	}
	v.lastActivity = r.now()
	return v.tracker, true
}

func (r *Registry) Remove(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.views, id)
}

func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.views)
}

// Cleanup drops views idle for longer than the TTL and reports how many.
func (r *Registry) Cleanup() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now()
	removed := 0
	for id, v := range r.views {
		if now.Sub(v.lastActivity) > r.cfg.TTL {
			delete(r.views, id)
			removed++
		}
	}
	return removed
}

// Run calls Cleanup every interval until ctx is done.
func (r *Registry) Run(ctx context.Context, interval time.Duration, onCleanup func(removed int)) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			if n := r.Cleanup(); n > 0 && onCleanup != nil {
				onCleanup(n)
			}
		case <-ctx.Done():
			return
		}
	}
}

// evictOldestLocked must be called with r.mu held.
func (r *Registry) evictOldestLocked() {
	var oldestID string
	var oldest time.Time
	for id, v := range r.views {
		if oldestID == "" || v.lastActivity.Before(oldest) {
			oldestID = id
			oldest = v.lastActivity
		}
	}
	if oldestID != "" {
		delete(r.views, oldestID)
	}
}
