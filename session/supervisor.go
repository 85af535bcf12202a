package session

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/jonwraymond/sessionkit/observe"
)

// Initializer builds an authenticated Session for a profile. It runs at
// most once per empty slot; the Supervisor serializes invocations per
// profile.
type Initializer func(ctx context.Context, profile string) (*Session, error)

// Supervisor owns the shared Session slot for each connection profile.
//
// Contract:
// - Concurrency: GetClient is safe for concurrent use; initialize runs
//   exactly once per empty slot regardless of caller count.
// - Errors: a failed initialize leaves the slot empty and surfaces the
//   error to the caller that triggered it; later callers retry cleanly.
// - Locking is per profile: initializing one profile never blocks calls
//   for another.
type Supervisor struct {
	initialize Initializer
	logger     observe.Logger

	mu    sync.Mutex // guards the profiles map only
	slots map[string]*profileSlot
}

// profileSlot is one profile's session holder. The atomic pointer gives
// the lock-free fast path; the mutex serializes initialization.
type profileSlot struct {
	mu      sync.Mutex
	session atomic.Pointer[Session]
}

// SupervisorOption configures a Supervisor.
type SupervisorOption func(*Supervisor)

// WithSupervisorLogger sets the supervisor's logger.
func WithSupervisorLogger(l observe.Logger) SupervisorOption {
	return func(s *Supervisor) {
		if l != nil {
			s.logger = l
		}
	}
}

// NewSupervisor creates a supervisor using the given initializer.
func NewSupervisor(initialize Initializer, opts ...SupervisorOption) *Supervisor {
	s := &Supervisor{
		initialize: initialize,
		logger:     observe.NopLogger(),
		slots:      make(map[string]*profileSlot),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// GetClient returns the profile's shared Session, initializing it on
// first use.
//
// Double-checked locking: read the slot without the lock (fast path),
// then re-check under the per-profile mutex before initializing, since
// another caller may have finished while we waited.
func (s *Supervisor) GetClient(ctx context.Context, profile string) (*Session, error) {
	slot := s.slot(profile)

	if sess := slot.session.Load(); sess != nil {
		return sess, nil
	}

	slot.mu.Lock()
	defer slot.mu.Unlock()

	if sess := slot.session.Load(); sess != nil {
		return sess, nil
	}

	sess, err := s.initialize(ctx, profile)
	if err != nil {
		// The slot stays empty: no half-built session is ever
		// published, and the next caller triggers a fresh attempt.
		s.logger.Warn(ctx, "session initialization failed",
			observe.Field{Key: "profile", Value: profile},
			observe.Field{Key: "error", Value: err.Error()},
		)
		return nil, err
	}

	slot.session.Store(sess)
	s.logger.Info(ctx, "session initialized",
		observe.Field{Key: "profile", Value: profile},
	)
	return sess, nil
}

// Peek returns the profile's session without initializing, or nil.
func (s *Supervisor) Peek(profile string) *Session {
	return s.slot(profile).session.Load()
}

// Purge drops the profile's session, forcing re-initialization on the
// next GetClient. Used after an unrecoverable authentication failure or
// an explicit credential purge.
func (s *Supervisor) Purge(profile string) {
	s.slot(profile).session.Store(nil)
}

// slot returns the profile's slot, creating it on first use. The map
// lock is held only for the lookup, never across initialization.
func (s *Supervisor) slot(profile string) *profileSlot {
	s.mu.Lock()
	defer s.mu.Unlock()

	if slot, ok := s.slots[profile]; ok {
		return slot
	}
	slot := &profileSlot{}
	s.slots[profile] = slot
	return slot
}
