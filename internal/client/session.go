package client

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/lingo-labs/lingo/internal/authstate"
	"github.com/lingo-labs/lingo/internal/user"
)

// identityAPI is the slice of the API the session cache needs.
type identityAPI interface {
	Me(ctx context.Context) (*user.User, error)
}

// Session caches the "who am I" query. The identity is fetched once and
// treated as authoritative until Invalidate is called after a mutation.
// An unauthorized answer is cached too: anonymous is a state, not an error.
type Session struct {
	api identityAPI

	mu      sync.Mutex
	fetched bool
	user    *user.User // nil when anonymous
}

func NewSession(api identityAPI) *Session {
	return &Session{api: api}
}

// Current returns the cached identity, fetching it on first use. A nil user
// with a nil error means the session is anonymous. Concurrent callers during
// the initial fetch block until it resolves and then share its result.
func (s *Session) Current(ctx context.Context) (*user.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.fetched {
		return s.user, nil
	}

	u, err := s.api.Me(ctx)
	if err != nil {
		if errors.Is(err, ErrUnauthorized) {
			s.user = nil
			s.fetched = true
			return nil, nil
		}
		// Transport faults are not cached; the next call retries
		return nil, fmt.Errorf("failed to fetch identity: %w", err)
	}

	s.user = u
	s.fetched = true
	return s.user, nil
}

// State derives the authorization state from the cached identity.
func (s *Session) State(ctx context.Context) (authstate.State, error) {
	u, err := s.Current(ctx)
	if err != nil {
		return authstate.Anonymous, err
	}
	return authstate.StateFor(u != nil, u != nil && u.IsOnboarded), nil
}

// Invalidate drops the cached identity so the next query refetches.
// Called after every mutation (signup, login, logout, onboarding).
func (s *Session) Invalidate() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.fetched = false
	s.user = nil
}
