package session

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/Makepad-fr/listify/internal/model"
)

var (
	ErrNoCredential   = errors.New("session: no stored credential")
	ErrSessionInvalid = errors.New("session: credential rejected")
	errNotOpen        = errors.New("session: store not opened")
)

// AuthAPI is the slice of the API the session needs.
type AuthAPI interface {
	Register(ctx context.Context, in model.Registration) (*model.User, error)
	Login(ctx context.Context, in model.Credentials) (*model.AuthToken, error)
	Me(ctx context.Context) (*model.User, error)
}

// Store owns the bearer credential and the current identity. It is the only
// writer of the persisted credential: Login, Logout and a failed Refresh.
type Store struct {
	tokens TokenStore
	log    logrus.FieldLogger

	mu      sync.RWMutex
	auth    AuthAPI
	info    *TokenInfo
	user    *model.User
	subs    map[int]chan *model.User
	nextSub int
}

func New(tokens TokenStore, log logrus.FieldLogger) *Store {
	return &Store{
		tokens: tokens,
		log:    log,
		subs:   map[int]chan *model.User{},
	}
}

// Open binds the store to the API and restores a persisted credential. A
// credential the API no longer accepts logs the store out; only an
// unreadable credential file is an error.
func (s *Store) Open(ctx context.Context, auth AuthAPI) error {
	info, err := s.tokens.Load()
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.auth = auth
	s.info = info
	s.mu.Unlock()

	if info == nil {
		return nil
	}
	if err := s.Refresh(ctx); err != nil {
		s.log.WithError(err).Warn("stored credential rejected, logged out")
	}
	return nil
}

// Token is read by the request gate on every call.
func (s *Store) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.info == nil {
		return ""
	}
	return s.info.Token
}

// Info describes the active credential, or nil.
func (s *Store) Info() *TokenInfo {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.info == nil {
		return nil
	}
	cp := *s.info
	return &cp
}

// Current is the identity, or nil when signed out.
func (s *Store) Current() *model.User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.user
}

func (s *Store) authAPI() (AuthAPI, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.auth == nil {
		return nil, errNotOpen
	}
	return s.auth, nil
}

// Login exchanges credentials for a bearer token, persists it and loads the
// identity. A rejected login leaves the session untouched.
func (s *Store) Login(ctx context.Context, creds model.Credentials) error {
	auth, err := s.authAPI()
	if err != nil {
		return err
	}
	tok, err := auth.Login(ctx, creds)
	if err != nil {
		return fmt.Errorf("login: %w", err)
	}

	exp := Expiry(tok.AccessToken)
	if err := s.tokens.Save(tok.AccessToken, exp); err != nil {
		return fmt.Errorf("save credential: %w", err)
	}
	s.mu.Lock()
	s.info = &TokenInfo{Token: stripBearer(tok.AccessToken), Source: "file", ExpiresAt: exp}
	s.mu.Unlock()

	s.log.WithField("email", creds.Email).Info("logged in")
	return s.Refresh(ctx)
}

// Register creates an account; it does not sign in.
func (s *Store) Register(ctx context.Context, profile model.Registration) (*model.User, error) {
	auth, err := s.authAPI()
	if err != nil {
		return nil, err
	}
	u, err := auth.Register(ctx, profile)
	if err != nil {
		return nil, fmt.Errorf("register: %w", err)
	}
	s.log.WithField("email", profile.Email).Info("registered")
	return u, nil
}

// Refresh reloads the identity. Any failure is treated as an invalid session.
func (s *Store) Refresh(ctx context.Context) error {
	auth, err := s.authAPI()
	if err != nil {
		return err
	}
	if s.Token() == "" {
		return ErrNoCredential
	}
	u, err := auth.Me(ctx)
	if err != nil {
		s.Logout()
		return fmt.Errorf("%w: %w", ErrSessionInvalid, err)
	}
	s.mu.Lock()
	s.user = u
	s.publishLocked()
	s.mu.Unlock()
	return nil
}

// Logout forgets the credential and tells every subscriber. No API call.
// A credential coming from the environment can't be deleted; it is only
// dropped for this process.
func (s *Store) Logout() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.info == nil || s.info.Source != "env" {
		if err := s.tokens.Delete(); err != nil {
			s.log.WithError(err).Warn("delete credential")
		}
	}
	s.info = nil
	s.user = nil
	s.publishLocked()
	s.log.Info("logged out")
}

// Subscribe registers an identity observer. The channel yields the current
// identity right away and then each change; it only ever buffers the latest
// value, so a slow reader never holds up the store. cancel closes it.
func (s *Store) Subscribe() (<-chan *model.User, func()) {
	ch := make(chan *model.User, 1)
	s.mu.Lock()
	id := s.nextSub
	s.nextSub++
	s.subs[id] = ch
	ch <- s.user
	s.mu.Unlock()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			s.mu.Lock()
			delete(s.subs, id)
			s.mu.Unlock()
			close(ch)
		})
	}
	return ch, cancel
}

func (s *Store) publishLocked() {
	for _, ch := range s.subs {
		select {
		case <-ch:
		default:
		}
		ch <- s.user
	}
}
