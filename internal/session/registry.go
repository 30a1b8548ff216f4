// Package session keeps one cart and one checkout per visitor, in memory.
package session

import (
	"context"
	"sync"
	"time"

	"storefront/internal/cart"
	"storefront/internal/checkout"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// DefaultTTL is how long an idle session is kept.
const DefaultTTL = 60 * time.Minute

// Session is the state of one visitor.
type Session struct {
	ID       string
	Cart     *cart.Store
	Checkout *checkout.Orchestrator

	lastSeen time.Time
}

// Factory builds the checkout orchestrator for a new session's cart.
type Factory func(c *cart.Store, logger zerolog.Logger) *checkout.Orchestrator

// Registry owns every live session.
type Registry struct {
	mu       sync.Mutex
	sessions map[string]*Session

	factory Factory
	ttl     time.Duration
	now     func() time.Time
	logger  zerolog.Logger
}

// NewRegistry creates an empty registry. A non-positive ttl uses DefaultTTL.
func NewRegistry(factory Factory, ttl time.Duration, logger zerolog.Logger) *Registry {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Registry{
		sessions: make(map[string]*Session),
		factory:  factory,
		ttl:      ttl,
		now:      time.Now,
		logger:   logger.With().Str("component", "session").Logger(),
	}
}

// Get returns the live session with id and marks it as seen.
func (r *Registry) Get(id string) (*Session, bool) {
	if id == "" {
		return nil, false
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.sessions[id]
	if !ok {
		return nil, false
	}
	now := r.now()
	if now.Sub(s.lastSeen) > r.ttl {
		delete(r.sessions, id)
		return nil, false
	}
	s.lastSeen = now
	return s, true
}

// GetOrCreate returns the session with id, creating a fresh one with a new id
// when id is unknown or expired. created reports whether a session was made.
func (r *Registry) GetOrCreate(id string) (s *Session, created bool) {
	if s, ok := r.Get(id); ok {
		return s, false
	}
	return r.Create(), true
}

// Create starts a new session with an empty cart.
func (r *Registry) Create() *Session {
	id := uuid.NewString()
	logger := r.logger.With().Str("session_id", id).Logger()

	c := cart.New(logger)
	s := &Session{
		ID:       id,
		Cart:     c,
		Checkout: r.factory(c, logger),
	}

	r.mu.Lock()
	s.lastSeen = r.now()
	r.sessions[id] = s
	r.mu.Unlock()

	r.logger.Debug().Str("session_id", id).Msg("session created")
	return s
}

// Sweep evicts sessions idle for longer than the TTL and returns how many
// were removed.
func (r *Registry) Sweep(now time.Time) int {
	r.mu.Lock()
	defer r.mu.Unlock()

	removed := 0
	for id, s := range r.sessions {
		if now.Sub(s.lastSeen) > r.ttl {
			delete(r.sessions, id)
			removed++
		}
	}
	if removed > 0 {
		r.logger.Debug().
			Int("removed", removed).
			Int("live", len(r.sessions)).
			Msg("idle sessions evicted")
	}
	return removed
}

// Len returns the number of live sessions.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}

// Run sweeps every interval until ctx is done.
func (r *Registry) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case t := <-ticker.C:
			r.Sweep(t)
		}
	}
}
