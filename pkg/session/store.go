// Package session keeps the per-user interaction state in memory.
package session

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"
)

// ErrStale is returned when a transition targets a state that has since
// expired, been cleared or been replaced.
var ErrStale = errors.New("session state is stale")

// DefaultTimeout applies to every mode.
const DefaultTimeout = 10 * time.Minute

type entry struct {
	state   State
	created time.Time
	gen     uint64
}

// Store maps user ids to their current state. Entries expire a fixed time
// after creation; expiry is enforced on read and by Sweep.
type Store struct {
	mu      sync.Mutex
	entries map[string]entry
	gen     uint64
	timeout time.Duration
	now     func() time.Time
	log     *zap.Logger
}

// Option configures a Store.
type Option func(*Store)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// WithLogger sets the logger used by the sweeper.
func WithLogger(l *zap.Logger) Option {
	return func(s *Store) { s.log = l }
}

// New creates a store. A non-positive timeout falls back to DefaultTimeout.
func New(timeout time.Duration, opts ...Option) *Store {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	s := &Store{
		entries: make(map[string]entry),
		timeout: timeout,
		now:     time.Now,
		log:     zap.NewNop(),
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Timeout is the lifetime of every entry.
func (s *Store) Timeout() time.Duration { return s.timeout }

func (s *Store) expired(e entry, now time.Time) bool {
	return now.Sub(e.created) >= s.timeout
}

// Set stores st for user and returns its generation. Setting Idle clears.
func (s *Store) Set(user string, st State) uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	if st == nil || st.Mode() == ModeIdle {
		delete(s.entries, user)
		return 0
	}
	s.gen++
	s.entries[user] = entry{state: st, created: s.now(), gen: s.gen}
	return s.gen
}

// Get returns the user's state and generation, or Idle and 0 when absent or expired.
func (s *Store) Get(user string) (State, uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.entries[user]
	if !ok {
		return Idle{}, 0
	}
	if s.expired(e, s.now()) {
		delete(s.entries, user)
		return Idle{}, 0
	}
	return e.state, e.gen
}

// Clear removes the user's state and reports whether a live one existed.
func (s *Store) Clear(user string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.entries[user]
	if !ok {
		return false
	}
	delete(s.entries, user)
	return !s.expired(e, s.now())
}

// ClearIf removes the user's state only when it still has generation gen.
func (s *Store) ClearIf(user string, gen uint64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.entries[user]
	if !ok || e.gen != gen {
		return false
	}
	delete(s.entries, user)
	return !s.expired(e, s.now())
}

// Replace swaps the state of generation gen for st. It fails with ErrStale
// when that state is gone, so a slow operation cannot resurrect a flow the
// user already left.
func (s *Store) Replace(user string, gen uint64, st State) (uint64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.entries[user]
	now := s.now()
	if !ok || e.gen != gen || s.expired(e, now) {
		return 0, ErrStale
	}
	if st == nil || st.Mode() == ModeIdle {
		delete(s.entries, user)
		return 0, nil
	}
	s.gen++
	s.entries[user] = entry{state: st, created: now, gen: s.gen}
	return s.gen, nil
}

// CountActive returns the number of unexpired entries.
func (s *Store) CountActive() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	n := 0
	for _, e := range s.entries {
		if !s.expired(e, now) {
			n++
		}
	}
	return n
}

// Sweep deletes expired entries and returns how many were removed.
func (s *Store) Sweep() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	removed := 0
	for user, e := range s.entries {
		if s.expired(e, now) {
			delete(s.entries, user)
			removed++
		}
	}
	return removed
}

// Run sweeps every interval until ctx is done.
func (s *Store) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := s.Sweep(); n > 0 {
				s.log.Info("expired sessions removed", zap.Int("count", n), zap.Int("active", s.CountActive()))
			}
		}
	}
}
