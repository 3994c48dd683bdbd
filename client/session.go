package client

import (
	"context"
	"errors"
	"fmt"
	"sync"
)

// ErrSessionExpired is returned once the session has no usable token: before
// login, after logout, or after a refresh was rejected.
var ErrSessionExpired = errors.New("client: session expired")

// State is the lifecycle stage of a Session.
type State int

const (
	StateExpired State = iota
	StateValid
	StateRefreshing
)

func (s State) String() string {
	switch s {
	case StateValid:
		return "valid"
	case StateRefreshing:
		return "refreshing"
	default:
		return "expired"
	}
}

// RefreshFunc exchanges a stale token for a new one.
type RefreshFunc func(ctx context.Context, stale string) (string, error)

// Session is the single source of the current token. At most one refresh runs
// at a time; callers arriving during it wait and are released together when it
// finishes.
type Session struct {
	mu      sync.Mutex
	state   State
	token   string
	done    chan struct{}
	epoch   uint64
	refresh RefreshFunc
}

// NewSession returns an expired session that refreshes through refresh.
func NewSession(refresh RefreshFunc) *Session {
	return &Session{refresh: refresh}
}

// State returns the current state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Set installs a token obtained by login or registration.
func (s *Session) Set(token string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.epoch++
	s.token = token
	s.state = StateValid
}

// Clear forgets the token. A refresh in flight still completes but its result
// is discarded.
func (s *Session) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.epoch++
	s.token = ""
	s.state = StateExpired
}

// Token returns the current token, waiting for a refresh in flight.
func (s *Session) Token(ctx context.Context) (string, error) {
	s.mu.Lock()
	for s.state == StateRefreshing {
		done := s.done
		s.mu.Unlock()
		select {
		case <-done:
		case <-ctx.Done():
			return "", ctx.Err()
		}
		s.mu.Lock()
	}
	defer s.mu.Unlock()

	if s.state == StateExpired {
		return "", ErrSessionExpired
	}
	return s.token, nil
}

// Refresh replaces stale with a new token. If the session already moved past
// stale, the current token is returned without another round trip.
func (s *Session) Refresh(ctx context.Context, stale string) (string, error) {
	s.mu.Lock()
	switch {
	case s.state == StateRefreshing:
		s.mu.Unlock()
		return s.Token(ctx)
	case s.state == StateExpired:
		s.mu.Unlock()
		return "", ErrSessionExpired
	case s.token != stale:
		token := s.token
		s.mu.Unlock()
		return token, nil
	}

	s.state = StateRefreshing
	s.done = make(chan struct{})
	done, epoch := s.done, s.epoch
	s.mu.Unlock()

	// Detached from ctx: the result is shared with every waiter.
	token, err := s.refresh(context.WithoutCancel(ctx), stale)

	s.mu.Lock()
	if s.epoch == epoch {
		if err != nil {
			s.token, s.state = "", StateExpired
		} else {
			s.token, s.state = token, StateValid
		}
	}
	close(done)
	s.mu.Unlock()

	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrSessionExpired, err)
	}
	return token, nil
}
