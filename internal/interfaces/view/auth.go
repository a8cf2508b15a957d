package view

import (
	"context"
	"sync"

	log "github.com/sirupsen/logrus"

	"bankclient/internal/domain/session"
	"bankclient/internal/domain/user"
)

const (
	loginFailedMessage        = "Invalid username or password"
	registrationFailedMessage = "Registration failed. Please try again."
	registeredMessage         = "Registration successful! Please sign in."
)

// Authenticator is implemented by *session.Service.
type Authenticator interface {
	Login(ctx context.Context, username, password string) (*user.Profile, error)
	Register(ctx context.Context, params session.RegisterParams) error
}

// LoginView is the sign-in form. Any failure shows the same message so the
// form does not reveal which half was wrong.
type LoginView struct {
	auth Authenticator

	mu     sync.Mutex
	notice Notice
}

func NewLoginView(auth Authenticator) *LoginView {
	return &LoginView{auth: auth}
}

// Submit signs in. The session broadcasts the new user on success.
func (v *LoginView) Submit(ctx context.Context, username, password string) (*user.Profile, error) {
	v.setNotice(Notice{})

	profile, err := v.auth.Login(ctx, username, password)
	if err != nil {
		log.Debugf("Login rejected: %v", err)
		v.setNotice(failure(loginFailedMessage))
		return nil, err
	}
	return profile, nil
}

func (v *LoginView) Notice() Notice {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.notice
}

func (v *LoginView) setNotice(n Notice) {
	v.mu.Lock()
	v.notice = n
	v.mu.Unlock()
}

// RegisterView is the sign-up form. It never signs in.
type RegisterView struct {
	auth Authenticator

	mu     sync.Mutex
	notice Notice
}

func NewRegisterView(auth Authenticator) *RegisterView {
	return &RegisterView{auth: auth}
}

func (v *RegisterView) Submit(ctx context.Context, params session.RegisterParams) error {
	v.setNotice(Notice{})

	if err := v.auth.Register(ctx, params); err != nil {
		v.setNotice(failure(UserMessage(err, registrationFailedMessage)))
		return err
	}
	v.setNotice(success(registeredMessage))
	return nil
}

func (v *RegisterView) Notice() Notice {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.notice
}

func (v *RegisterView) setNotice(n Notice) {
	v.mu.Lock()
	v.notice = n
	v.mu.Unlock()
}
