package nse

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/lohithgpbasu/stockfeed/internal/metrics"
)

// SessionState tracks where a session is in its lifecycle.
type SessionState int

const (
	StateUnauthenticated SessionState = iota
	StateWarmed
	StateActive
	StateExpired
)

func (s SessionState) String() string {
	switch s {
	case StateUnauthenticated:
		return "unauthenticated"
	case StateWarmed:
		return "warmed"
	case StateActive:
		return "active"
	case StateExpired:
		return "expired"
	default:
		return "unknown"
	}
}

// Session holds the cookie state one warm-up established. Outside this
// package it is an opaque credential; only SessionManager replaces it.
type Session struct {
	client    *http.Client
	createdAt time.Time

	mu    sync.Mutex
	state SessionState
}

// CreatedAt reports when the warm-up that produced this session ran.
func (s *Session) CreatedAt() time.Time {
	return s.createdAt
}

// State reports the session's position in its lifecycle.
func (s *Session) State() SessionState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

func (s *Session) markActive() {
	s.mu.Lock()
	if s.state == StateWarmed {
		s.state = StateActive
	}
	s.mu.Unlock()
}

func (s *Session) markExpired() {
	s.mu.Lock()
	s.state = StateExpired
	s.mu.Unlock()
}

func (s *Session) expired() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state == StateExpired
}

// Warmer establishes a fresh upstream session. *Client implements it.
type Warmer interface {
	Warmup(ctx context.Context) (*Session, error)
}

// SessionManager owns the live session. Workers fetch it through Ensure and
// trade it in through Renew; renewal is serialized so that however many
// workers observe an expired session at once, exactly one warm-up runs and
// all of them reuse its result.
type SessionManager struct {
	warmer Warmer
	logger *slog.Logger

	mu      sync.Mutex
	current *Session

	renew singleflight.Group
}

// NewSessionManager creates a SessionManager around the given warmer.
func NewSessionManager(w Warmer, logger *slog.Logger) *SessionManager {
	if logger == nil {
		logger = slog.Default()
	}
	return &SessionManager{
		warmer: w,
		logger: logger,
	}
}

// Ensure returns the live session, warming one up if none is usable yet.
func (m *SessionManager) Ensure(ctx context.Context) (*Session, error) {
	m.mu.Lock()
	cur := m.current
	m.mu.Unlock()

	if cur != nil && !cur.expired() {
		return cur, nil
	}
	return m.Renew(ctx, cur)
}

// Renew replaces the stale session with a freshly warmed one. Concurrent
// callers share a single in-flight warm-up; a caller whose stale session was
// already replaced gets the replacement without triggering another warm-up.
func (m *SessionManager) Renew(ctx context.Context, stale *Session) (*Session, error) {
	if stale != nil {
		stale.markExpired()
	}

	v, err, _ := m.renew.Do("session", func() (any, error) {
		m.mu.Lock()
		cur := m.current
		m.mu.Unlock()

		if cur != nil && cur != stale && !cur.expired() {
			return cur, nil
		}

		if cur != nil {
			m.logger.Info("renewing session", "age", time.Since(cur.CreatedAt()).Round(time.Millisecond))
		}

		fresh, err := m.warmer.Warmup(ctx)
		if err != nil {
			return nil, fmt.Errorf("session warm-up: %w", err)
		}
		metrics.SessionWarmups.Inc()

		m.mu.Lock()
		m.current = fresh
		m.mu.Unlock()

		return fresh, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*Session), nil
}
