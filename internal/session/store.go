// Package session keeps per-visitor browsing controllers in memory.
package session

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/nazbav/spoolshelf/internal/browse"
)

// Factory builds the controller for a new session.
type Factory func() *browse.Controller

// Options configure a Store.
type Options struct {
	IdleTTL time.Duration
	Clock   func() time.Time
	Logger  *zap.Logger
}

type entry struct {
	controller *browse.Controller
	lastSeen   time.Time
}

// Store maps session ids to controllers and forgets sessions idle for longer
// than the TTL. Reviews live inside controllers, so eviction discards them too.
type Store struct {
	mu      sync.Mutex
	entries map[string]*entry
	factory Factory
	ttl     time.Duration
	clock   func() time.Time
	logger  *zap.Logger
}

// NewStore creates an empty store.
func NewStore(factory Factory, opts Options) *Store {
	if opts.IdleTTL <= 0 {
		opts.IdleTTL = 2 * time.Hour
	}
	if opts.Clock == nil {
		opts.Clock = time.Now
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	return &Store{
		entries: make(map[string]*entry),
		factory: factory,
		ttl:     opts.IdleTTL,
		clock:   opts.Clock,
		logger:  opts.Logger,
	}
}

// Controller returns the session's controller, creating it on first use.
func (s *Store) Controller(id string) *browse.Controller {
	now := s.clock()
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.entries[id]
	if !ok || now.Sub(e.lastSeen) > s.ttl {
		e = &entry{controller: s.factory()}
		s.entries[id] = e
	}
	e.lastSeen = now
	return e.controller
}

// Len reports the number of live sessions.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

// Sweep drops sessions idle for longer than the TTL and returns how many were removed.
func (s *Store) Sweep() int {
	now := s.clock()
	s.mu.Lock()
	defer s.mu.Unlock()
	removed := 0
	for id, e := range s.entries {
		if now.Sub(e.lastSeen) > s.ttl {
			delete(s.entries, id)
			removed++
		}
	}
	return removed
}

// Run sweeps every interval until ctx is cancelled.
func (s *Store) Run(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = time.Minute
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := s.Sweep(); n > 0 {
				s.logger.Debug("expired sessions removed", zap.Int("count", n), zap.Int("live", s.Len()))
			}
		}
	}
}
