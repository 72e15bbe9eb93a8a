package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/dmitrijs2005/onboarding/internal/client/client"
	"github.com/dmitrijs2005/onboarding/internal/client/models"
	"github.com/dmitrijs2005/onboarding/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/onboarding/internal/common"
	"github.com/dmitrijs2005/onboarding/internal/logging"
)

// AuthAPI is the part of the backend the session store talks to.
type AuthAPI interface {
	Login(ctx context.Context, username, password string) (*models.AuthResponse, error)
	Register(ctx context.Context, req models.RegisterRequest) (*models.AuthResponse, error)
	Profile(ctx context.Context) (*models.User, error)
}

// State is an immutable snapshot of the session.
//
// IsAuthenticated implies User != nil. IsInitialized turns true once and
// stays true. Not initialized is not the same as logged out.
type State struct {
	User            *models.User
	IsAuthenticated bool
	IsLoading       bool
	IsInitialized   bool
}

// SessionStore owns the authentication lifecycle.
//
// Contract:
//   - Initialize: verify a stored access token once at startup.
//   - Login/Register: authenticate, store the token pair, notify the user.
//   - Logout: purge tokens and user; never fails.
//   - FetchUser: re-validate the profile outside initialization.
//   - Invalidate: react to the API client purging the session.
//   - State/Subscribe: read and observe the current state.
type SessionStore interface {
	Initialize(ctx context.Context)
	Login(ctx context.Context, username, password string) error
	Register(ctx context.Context, req models.RegisterRequest) error
	Logout(ctx context.Context)
	FetchUser(ctx context.Context) error
	Invalidate(ctx context.Context)
	State() State
	Subscribe(fn func(State)) (unsubscribe func())
}

type sessionStore struct {
	api      AuthAPI
	store    metadata.Repository
	notifier Notifier
	log      logging.Logger

	// persistMu orders snapshot writes without holding mu during I/O.
	persistMu sync.Mutex

	mu        sync.Mutex
	state     State
	observers map[int]func(State)
	nextID    int
}

// NewSessionStore builds the store and restores the persisted user snapshot.
// The restored user is optimistic: the flags stay false until Initialize
// has verified the token.
func NewSessionStore(ctx context.Context, api AuthAPI, store metadata.Repository, n Notifier, log logging.Logger) SessionStore {
	if n == nil {
		n = discardNotifier{}
	}
	if log == nil {
		log = logging.Nop()
	}
	s := &sessionStore{
		api:       api,
		store:     store,
		notifier:  n,
		log:       log,
		observers: map[int]func(State){},
	}
	s.state.User = s.loadSnapshot(ctx)
	return s
}

func (s *sessionStore) loadSnapshot(ctx context.Context) *models.User {
	b, err := s.store.Get(ctx, common.UserSnapshotKey)
	if err != nil {
		s.log.Warn(ctx, "reading session snapshot", "error", err)
		return nil
	}
	if b == nil {
		return nil
	}
	var snap models.Snapshot
	if err := json.Unmarshal(b, &snap); err != nil {
		s.log.Warn(ctx, "decoding session snapshot", "error", err)
		return nil
	}
	return snap.User
}

func (s *sessionStore) saveSnapshot(ctx context.Context, u *models.User) {
	var err error
	if u == nil {
		err = s.store.Delete(ctx, common.UserSnapshotKey)
	} else {
		var b []byte
		b, err = json.Marshal(models.Snapshot{User: u})
		if err == nil {
			err = s.store.Set(ctx, common.UserSnapshotKey, b)
		}
	}
	if err != nil {
		s.log.Warn(ctx, "saving session snapshot", "error", err)
	}
}

// update applies fn under the lock, persists the user snapshot when asked
// and then tells the observers. Storage is written after mu is released so
// State never waits on a slow backend.
func (s *sessionStore) update(ctx context.Context, persist bool, fn func(*State)) {
	s.mu.Lock()
	fn(&s.state)
	if s.state.User == nil {
		s.state.IsAuthenticated = false
	}
	st := s.snapshotLocked()
	observers := make([]func(State), 0, len(s.observers))
	for id := 0; id < s.nextID; id++ {
		if o, ok := s.observers[id]; ok {
			observers = append(observers, o)
		}
	}
	if persist {
		s.persistMu.Lock()
	}
	s.mu.Unlock()

	if persist {
		s.saveSnapshot(ctx, st.User)
		s.persistMu.Unlock()
	}

	for _, o := range observers {
		o(st)
	}
}

func (s *sessionStore) snapshotLocked() State {
	st := s.state
	if st.User != nil {
		u := *st.User
		st.User = &u
	}
	return st
}

func (s *sessionStore) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

func (s *sessionStore) Subscribe(fn func(State)) func() {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.nextID
	s.nextID++
	s.observers[id] = fn

	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.observers, id)
	}
}

func (s *sessionStore) purgeTokens(ctx context.Context) {
	if err := metadata.DeleteAll(ctx, s.store, common.AccessTokenKey, common.RefreshTokenKey); err != nil {
		s.log.Error(ctx, "purging tokens", "error", err)
	}
}

func (s *sessionStore) notify(ctx context.Context, level Level, msg string) {
	s.notifier.Notify(ctx, Notification{Level: level, Message: msg})
}

// Initialize must be called exactly once, at startup.
func (s *sessionStore) Initialize(ctx context.Context) {
	token, err := metadata.GetString(ctx, s.store, common.AccessTokenKey)
	if err != nil {
		s.log.Warn(ctx, "reading access token", "error", err)
	}

	if token == "" {
		s.update(ctx, true, func(st *State) {
			st.User = nil
			st.IsAuthenticated = false
			st.IsInitialized = true
		})
		return
	}

	s.update(ctx, false, func(st *State) { st.IsLoading = true })

	u, err := s.api.Profile(ctx)
	if err != nil {
		s.log.Info(ctx, "stored session rejected", "error", err)
		s.purgeTokens(ctx)
		s.update(ctx, true, func(st *State) {
			st.User = nil
			st.IsAuthenticated = false
			st.IsInitialized = true
			st.IsLoading = false
		})
		return
	}

	s.update(ctx, true, func(st *State) {
		st.User = u
		st.IsAuthenticated = true
		st.IsInitialized = true
		st.IsLoading = false
	})
}

func (s *sessionStore) Login(ctx context.Context, username, password string) error {
	s.update(ctx, false, func(st *State) { st.IsLoading = true })

	resp, err := s.api.Login(ctx, username, password)
	if err == nil {
		err = s.saveTokens(ctx, resp.Tokens)
	}
	if err != nil {
		s.update(ctx, false, func(st *State) { st.IsLoading = false })
		s.notify(ctx, LevelError, serverMessage(err, "Login failed"))
		return fmt.Errorf("login error: %w", err)
	}

	s.signedIn(ctx, resp.User)
	s.log.Info(ctx, "logged in", "user", resp.User.Username)
	s.notify(ctx, LevelSuccess, "Login successful!")
	return nil
}

func (s *sessionStore) Register(ctx context.Context, req models.RegisterRequest) error {
	s.update(ctx, false, func(st *State) { st.IsLoading = true })

	resp, err := s.api.Register(ctx, req)
	if err == nil {
		err = s.saveTokens(ctx, resp.Tokens)
	}
	if err != nil {
		s.update(ctx, false, func(st *State) { st.IsLoading = false })

		var apiErr *client.APIError
		var fields []client.FieldError
		if errors.As(err, &apiErr) {
			fields = apiErr.FieldErrors()
		}
		if len(fields) == 0 {
			s.notify(ctx, LevelError, "Registration failed")
		}
		for _, f := range fields {
			s.notify(ctx, LevelError, f.String())
		}
		return fmt.Errorf("register error: %w", err)
	}

	s.signedIn(ctx, resp.User)
	s.log.Info(ctx, "registered", "user", resp.User.Username)
	s.notify(ctx, LevelSuccess, "Registration successful!")
	return nil
}

func (s *sessionStore) saveTokens(ctx context.Context, t models.Tokens) error {
	err := metadata.SetAll(ctx, s.store, map[string][]byte{
		common.AccessTokenKey:  []byte(t.Access),
		common.RefreshTokenKey: []byte(t.Refresh),
	})
	if err != nil {
		return fmt.Errorf("token saving error: %w", err)
	}
	return nil
}

func (s *sessionStore) signedIn(ctx context.Context, u models.User) {
	s.update(ctx, true, func(st *State) {
		st.User = &u
		st.IsAuthenticated = true
		st.IsInitialized = true
		st.IsLoading = false
	})
}

func (s *sessionStore) Logout(ctx context.Context) {
	s.purgeTokens(ctx)
	s.update(ctx, true, func(st *State) {
		st.User = nil
		st.IsAuthenticated = false
		st.IsInitialized = true
	})
	s.notify(ctx, LevelSuccess, "Logged out successfully")
}

func (s *sessionStore) FetchUser(ctx context.Context) error {
	u, err := s.api.Profile(ctx)
	if err != nil {
		s.purgeTokens(ctx)
		s.update(ctx, true, func(st *State) {
			st.User = nil
			st.IsAuthenticated = false
		})
		return fmt.Errorf("fetch user error: %w", err)
	}

	s.update(ctx, true, func(st *State) {
		st.User = u
		st.IsAuthenticated = true
	})
	return nil
}

// Invalidate drops the in-memory session after the API client has purged
// storage on a failed refresh.
func (s *sessionStore) Invalidate(ctx context.Context) {
	s.update(ctx, false, func(st *State) {
		st.User = nil
		st.IsAuthenticated = false
		st.IsInitialized = true
	})
}

// serverMessage is the backend's reason for err, or fallback.
func serverMessage(err error, fallback string) string {
	var apiErr *client.APIError
	if errors.As(err, &apiErr) {
		if m := apiErr.Message(); m != "" {
			return m
		}
	}
	return fallback
}
