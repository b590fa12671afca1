package board

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/Makepad-fr/listify/internal/api"
	"github.com/Makepad-fr/listify/internal/model"
)

// Authenticator is the session side of the sign-in form.
type Authenticator interface {
	Login(ctx context.Context, creds model.Credentials) error
	Register(ctx context.Context, profile model.Registration) (*model.User, error)
}

type AuthMode int

const (
	LoginMode AuthMode = iota
	RegisterMode
)

// SignInAfterRegister is shown when the account exists but the automatic
// login did not go through.
const SignInAfterRegister = "account created, please sign in"

var errMissingFields = errors.New("all fields are required")

type AuthState struct {
	Mode    AuthMode
	Loading bool
	Error   string
	Notice  string
}

type AuthForm struct {
	auth Authenticator
	log  logrus.FieldLogger

	mu    sync.Mutex
	state AuthState
}

func NewAuthForm(auth Authenticator, log logrus.FieldLogger) *AuthForm {
	return &AuthForm{auth: auth, log: log}
}

func (f *AuthForm) State() AuthState {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state
}

// ToggleMode flips between sign-in and sign-up and clears feedback.
func (f *AuthForm) ToggleMode() {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.state.Mode == LoginMode {
		f.state.Mode = RegisterMode
	} else {
		f.state.Mode = LoginMode
	}
	f.state.Error = ""
	f.state.Notice = ""
}

func (f *AuthForm) begin() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.state.Loading = true
	f.state.Error = ""
	f.state.Notice = ""
}

func (f *AuthForm) finish(errText, notice string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.state.Loading = false
	f.state.Error = errText
	f.state.Notice = notice
}

func (f *AuthForm) Login(ctx context.Context, email, password string) error {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		f.finish(errMissingFields.Error(), "")
		return errMissingFields
	}
	f.begin()
	if err := f.auth.Login(ctx, model.Credentials{Email: email, Password: password}); err != nil {
		f.log.WithError(err).Warn("login failed")
		f.finish(api.Message(err, "login failed"), "")
		return err
	}
	f.finish("", "")
	return nil
}

// Register creates the account and signs straight in. A failed automatic
// sign-in is not an error: the form switches to login with a hint.
func (f *AuthForm) Register(ctx context.Context, name, email, password string) error {
	name, email = strings.TrimSpace(name), strings.TrimSpace(email)
	if name == "" || email == "" || password == "" {
		f.finish(errMissingFields.Error(), "")
		return errMissingFields
	}
	f.begin()
	if _, err := f.auth.Register(ctx, model.Registration{Name: name, Email: email, Password: password}); err != nil {
		f.log.WithError(err).Warn("registration failed")
		f.finish(api.Message(err, "registration failed"), "")
		return err
	}
	if err := f.auth.Login(ctx, model.Credentials{Email: email, Password: password}); err != nil {
		f.log.WithError(err).Info("automatic login after registration failed")
		f.mu.Lock()
		f.state.Mode = LoginMode
		f.mu.Unlock()
		f.finish("", SignInAfterRegister)
		return nil
	}
	f.finish("", "")
	return nil
}
