package browse

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/bookshelfapp/bookshelf-server/internal/errors"
	"github.com/bookshelfapp/bookshelf-server/internal/id"
	"github.com/bookshelfapp/bookshelf-server/internal/validation"
)

// Registry keeps one Session per client, keyed by a generated session id.
type Registry struct {
	catalog   Catalog
	ledger    Ledger
	validator *validation.Validator
	logger    *slog.Logger
	idle      time.Duration
	now       func() time.Time

	mu       sync.RWMutex
	sessions map[string]*Session
}

// NewRegistry creates a registry that evicts sessions unused for idle.
func NewRegistry(cat Catalog, led Ledger, idle time.Duration, logger *slog.Logger) *Registry {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Registry{
		catalog:   cat,
		ledger:    led,
		validator: validation.New(),
		logger:    logger,
		idle:      idle,
		now:       time.Now,
		sessions:  make(map[string]*Session),
	}
}

// Create starts a new session.
func (r *Registry) Create() (*Session, error) {
	sid, err := id.Generate(id.PrefixSession)
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeInternal, "create session")
	}

	s := NewSession(sid, r.catalog, r.ledger, r.validator, r.logger)
	s.touch(r.now())

	r.mu.Lock()
	r.sessions[sid] = s
	total := len(r.sessions)
	r.mu.Unlock()

	r.logger.Debug("browse session created", "session_id", sid, "total_sessions", total)
	return s, nil
}

// Get returns the session and marks it used.
func (r *Registry) Get(sessionID string) (*Session, error) {
	r.mu.RLock()
	s, ok := r.sessions[sessionID]
	r.mu.RUnlock()
	if !ok {
		return nil, errors.NotFoundf("session %s not found", sessionID)
	}
	s.touch(r.now())
	return s, nil
}

// Len returns the number of live sessions.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}

// Evict removes sessions idle longer than the timeout and returns how many went.
func (r *Registry) Evict() int {
	cutoff := r.now().Add(-r.idle)

	r.mu.Lock()
	defer r.mu.Unlock()

	var evicted int
	for sid, s := range r.sessions {
		if s.idleSince().Before(cutoff) {
			delete(r.sessions, sid)
			evicted++
		}
	}
	if evicted > 0 {
		r.logger.Debug("evicted idle browse sessions", "evicted", evicted, "remaining", len(r.sessions))
	}
	return evicted
}

// Run evicts idle sessions periodically until ctx is canceled.
func (r *Registry) Run(ctx context.Context) {
	interval := r.idle / 2
	if interval < time.Second {
		interval = time.Second
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			r.Evict()
		case <-ctx.Done():
			return
		}
	}
}
