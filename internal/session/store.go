// Package session holds the process-wide answer to "who is logged in".
//
// State changes only through Login, Logout and StopLoading. User and
// IsAuthenticated are always written together so that IsAuthenticated
// is true exactly when a user is present.
package session

import (
	"context"
	"sync"

	"github.com/sirupsen/logrus"

	"blog-client/internal/domain"
	"blog-client/internal/tokenstore"
)

// State is an immutable snapshot of the session.
type State struct {
	User            *domain.User
	IsAuthenticated bool
	IsLoading       bool
}

// Store is the single owner of the session state.
type Store struct {
	mu        sync.RWMutex
	state     State
	tokens    tokenstore.Store
	persister Persister
	log       logrus.FieldLogger

	// serializes snapshot writes; each write stores the state current at write time
	persistMu sync.Mutex

	listeners map[int]func(State)
	nextID    int
}

// New builds a store and rehydrates it from the persister. IsLoading
// starts true until the first verification finishes.
func New(ctx context.Context, tokens tokenstore.Store, persister Persister, log logrus.FieldLogger) *Store {
	if persister == nil {
		persister = NopPersister{}
	}
	s := &Store{
		tokens:    tokens,
		persister: persister,
		log:       log,
		listeners: make(map[int]func(State)),
	}
	s.state.IsLoading = true

	snap, err := persister.Load(ctx)
	if err != nil {
		log.WithError(err).Warn("session: rehydrate snapshot")
	} else if snap != nil && snap.User != nil {
		u := *snap.User
		s.state.User = &u
		s.state.IsAuthenticated = true
	}
	return s
}

// Login stores the token and marks the user as authenticated. Persistence
// failures are logged and the in-memory transition still happens.
func (s *Store) Login(ctx context.Context, user domain.User, credentials domain.Credentials) {
	expires := tokenstore.ResolveExpiry(credentials.Token, credentials.TokenExpiresAt)
	if err := s.tokens.SetToken(ctx, credentials.Token, expires); err != nil {
		s.log.WithError(err).Error("session: persist token on login")
	}

	s.update(ctx, func(st *State) {
		u := user
		st.User = &u
		st.IsAuthenticated = true
		st.IsLoading = false
	})
}

// Logout clears the durable token and the user. IsLoading is left as is.
func (s *Store) Logout(ctx context.Context) {
	if err := s.tokens.ClearToken(ctx); err != nil {
		s.log.WithError(err).Error("session: clear token on logout")
	}

	s.update(ctx, func(st *State) {
		st.User = nil
		st.IsAuthenticated = false
	})
}

// StopLoading ends the loading phase. Calling it again is a no-op.
func (s *Store) StopLoading() {
	s.update(context.Background(), func(st *State) {
		st.IsLoading = false
	})
}

func (s *Store) User() *domain.User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.state.User == nil {
		return nil
	}
	u := *s.state.User
	return &u
}

func (s *Store) IsAuthenticated() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.IsAuthenticated
}

func (s *Store) IsLoading() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.IsLoading
}

// Snapshot returns a copy of the whole state.
func (s *Store) Snapshot() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.copyLocked()
}

// Subscribe registers fn to run after each state change.
func (s *Store) Subscribe(fn func(State)) (unsubscribe func()) {
	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.listeners[id] = fn
	s.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			delete(s.listeners, id)
			s.mu.Unlock()
		})
	}
}

func (s *Store) update(ctx context.Context, mutate func(*State)) {
	s.mu.Lock()
	before := s.state
	mutate(&s.state)
	changed := !sameState(before, s.state)
	next := s.copyLocked()
	listeners := make([]func(State), 0, len(s.listeners))
	for _, fn := range s.listeners {
		listeners = append(listeners, fn)
	}
	s.mu.Unlock()

	if !changed {
		return
	}

	s.persist(ctx)
	for _, fn := range listeners {
		fn(next)
	}
}

func (s *Store) persist(ctx context.Context) {
	s.persistMu.Lock()
	defer s.persistMu.Unlock()

	latest := s.Snapshot()
	if err := s.persister.Save(ctx, Snapshot{User: latest.User}); err != nil {
		s.log.WithError(err).Warn("session: persist snapshot")
	}
}

func (s *Store) copyLocked() State {
	st := s.state
	if st.User != nil {
		u := *st.User
		st.User = &u
	}
	return st
}

func sameState(a, b State) bool {
	if a.IsAuthenticated != b.IsAuthenticated || a.IsLoading != b.IsLoading {
		return false
	}
	if a.User == nil || b.User == nil {
		return a.User == b.User
	}
	return *a.User == *b.User
}
