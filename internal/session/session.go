// Package session holds the process-wide authentication state. Readers get
// the Reader interface; only the *Session handle can sign in or out.
package session

import (
	"context"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/yourusername/jobhunter-dashboard/internal/model"
)

// State of the session lifecycle
type State string

const (
	StateLoading         State = "loading"
	StateAuthenticated   State = "authenticated"
	StateUnauthenticated State = "unauthenticated"
)

// Authenticator is the part of the gateway the session drives
type Authenticator interface {
	Login(ctx context.Context, username, password string) (*model.UserProfile, error)
	Logout(ctx context.Context) error
	CurrentUser() *model.UserProfile
}

// Reader is read-only access for views and renderers
type Reader interface {
	State() State
	User() *model.UserProfile
	// Loading reports whether nothing interactive should render yet
	Loading() bool
}

// Listener is called after every state transition, outside the lock
type Listener func(state State, user *model.UserProfile)

type Session struct {
	auth Authenticator

	mu        sync.RWMutex
	state     State
	user      *model.UserProfile
	restored  bool
	listeners []Listener
}

func New(auth Authenticator) *Session {
	return &Session{auth: auth, state: StateLoading}
}

// Restore performs the one-time loading transition from the gateway's
// persisted identity. Later calls are no-ops.
func (s *Session) Restore() State {
	s.mu.Lock()
	if s.restored {
		state := s.state
		s.mu.Unlock()
		return state
	}
	s.restored = true

	if user := s.auth.CurrentUser(); user != nil {
		s.user = user
		s.state = StateAuthenticated
	} else {
		s.state = StateUnauthenticated
	}
	state, user := s.state, s.user
	s.mu.Unlock()

	log.Info().Str("state", string(state)).Msg("Session restored")
	s.notify(state, user)
	return state
}

// SignIn authenticates against the backend. On failure the state is left
// unchanged.
func (s *Session) SignIn(ctx context.Context, username, password string) (*model.UserProfile, error) {
	user, err := s.auth.Login(ctx, username, password)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.user = user
	s.state = StateAuthenticated
	s.restored = true
	s.mu.Unlock()

	s.notify(StateAuthenticated, user)
	return user, nil
}

// SignOut ends the backend session and clears the user
func (s *Session) SignOut(ctx context.Context) error {
	if err := s.auth.Logout(ctx); err != nil {
		return err
	}

	s.mu.Lock()
	s.user = nil
	s.state = StateUnauthenticated
	s.mu.Unlock()

	s.notify(StateUnauthenticated, nil)
	return nil
}

// Subscribe registers a listener for future transitions
func (s *Session) Subscribe(l Listener) {
	s.mu.Lock()
	s.listeners = append(s.listeners, l)
	s.mu.Unlock()
}

func (s *Session) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

func (s *Session) User() *model.UserProfile {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.user
}

func (s *Session) Loading() bool {
	return s.State() == StateLoading
}

func (s *Session) notify(state State, user *model.UserProfile) {
	s.mu.RLock()
	listeners := append([]Listener(nil), s.listeners...)
	s.mu.RUnlock()

	for _, l := range listeners {
		l(state, user)
	}
}
