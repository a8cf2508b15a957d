// Package session owns the sign-in lifecycle: login, registration, logout
// and restoring a persisted session at start-up.
package session

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	log "github.com/sirupsen/logrus"

	"bankclient/internal/domain/user"
	"bankclient/internal/infrastructure/ledger"
	"bankclient/internal/infrastructure/sessionstore"
	"bankclient/internal/shared/validation"
)

const (
	loginPath    = "/user/auth"
	registerPath = "/user/register"
	tokenHeader  = "Authorization"
)

// ErrIncompleteSession is returned when a successful login response lacks
// the token or the profile. Nothing is persisted in that case.
var ErrIncompleteSession = errors.New("login response missing token or user profile")

// Reason says why a Change was delivered.
type Reason string

const (
	ReasonCurrent Reason = "current"
	ReasonLogin   Reason = "login"
	ReasonLogout  Reason = "logout"
	ReasonRestore Reason = "restore"
)

// Change is delivered to subscribers. User is nil when signed out.
type Change struct {
	Reason Reason
	User   *user.Profile
}

// Listener receives session changes. It runs on the goroutine that caused
// the change and must not call back into the Service synchronously.
type Listener func(Change)

type Credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type RegisterParams struct {
	Username  string `json:"username"`
	Password  string `json:"password"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
}

// Service tracks whether a user is signed in and broadcasts every change.
type Service struct {
	client ledger.ClientInterface
	store  sessionstore.Store

	// notifyMu orders deliveries; mu guards state.
	notifyMu  sync.Mutex
	mu        sync.Mutex
	current   *user.Profile
	listeners map[int]Listener
	nextID    int
}

func NewService(client ledger.ClientInterface, store sessionstore.Store) *Service {
	return &Service{
		client:    client,
		store:     store,
		listeners: make(map[int]Listener),
	}
}

// Login authenticates, persists token and profile together, then broadcasts
// the new user. On any failure the session stays as it was.
func (s *Service) Login(ctx context.Context, username, password string) (*user.Profile, error) {
	if err := errors.Join(
		validation.Required("username", username),
		validation.Required("password", password),
	); err != nil {
		return nil, err
	}

	resp, err := s.client.Post(ctx, loginPath, nil, Credentials{Username: username, Password: password}, nil)
	if err != nil {
		return nil, fmt.Errorf("login failed: %w", err)
	}

	token := strings.TrimSpace(resp.Header.Get(tokenHeader))
	if token == "" {
		return nil, ErrIncompleteSession
	}
	profile, err := user.ParseProfile(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrIncompleteSession, err)
	}
	raw, err := profile.Raw()
	if err != nil {
		return nil, err
	}

	if err := s.store.Save(ctx, sessionstore.Session{Token: token, User: raw}); err != nil {
		return nil, fmt.Errorf("failed to persist session: %w", err)
	}

	log.Infof("Signed in as %s", profile.Username)
	s.set(profile, ReasonLogin)
	return profile, nil
}

// Register creates an account on the ledger. It does not sign in.
func (s *Service) Register(ctx context.Context, params RegisterParams) error {
	if err := errors.Join(
		validation.Required("username", params.Username),
		validation.Required("password", params.Password),
	); err != nil {
		return err
	}

	if _, err := s.client.Post(ctx, registerPath, nil, params, nil); err != nil {
		return fmt.Errorf("registration failed: %w", err)
	}
	return nil
}

// Logout always ends the session locally. A store failure is logged, not
// returned.
func (s *Service) Logout(ctx context.Context) {
	if err := s.store.Clear(ctx); err != nil {
		log.Warnf("Failed to clear stored session: %v", err)
	}

	s.mu.Lock()
	wasSignedIn := s.current != nil
	s.mu.Unlock()

	if wasSignedIn {
		s.set(nil, ReasonLogout)
	}
}

// Restore adopts a previously persisted session without asking the server.
// An expired token surfaces later as an unauthorized APIError.
func (s *Service) Restore(ctx context.Context) (*user.Profile, error) {
	stored, err := s.store.Load(ctx)
	if errors.Is(err, sessionstore.ErrNoSession) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load stored session: %w", err)
	}

	profile, err := user.ParseProfile(stored.User)
	if err != nil {
		log.Warnf("Ignoring stored session with unreadable profile: %v", err)
		return nil, nil
	}

	s.set(profile, ReasonRestore)
	return profile, nil
}

func (s *Service) CurrentUser() *user.Profile {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current
}

func (s *Service) IsAuthenticated() bool {
	return s.CurrentUser() != nil
}

// Subscribe registers fn, delivers the current user to it immediately, and
// returns a function that removes it.
func (s *Service) Subscribe(fn Listener) (unsubscribe func()) {
	s.notifyMu.Lock()
	defer s.notifyMu.Unlock()

	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.listeners[id] = fn
	current := s.current
	s.mu.Unlock()

	fn(Change{Reason: ReasonCurrent, User: current})

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			delete(s.listeners, id)
			s.mu.Unlock()
		})
	}
}

func (s *Service) set(profile *user.Profile, reason Reason) {
	s.notifyMu.Lock()
	defer s.notifyMu.Unlock()

	s.mu.Lock()
	s.current = profile
	listeners := make([]Listener, 0, len(s.listeners))
	for _, fn := range s.listeners {
		listeners = append(listeners, fn)
	}
	s.mu.Unlock()

	change := Change{Reason: reason, User: profile}
	for _, fn := range listeners {
		fn(change)
	}
}
