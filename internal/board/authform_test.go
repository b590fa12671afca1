package board_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Makepad-fr/listify/internal/api/apitest"
	"github.com/Makepad-fr/listify/internal/board"
	"github.com/Makepad-fr/listify/internal/logging"
	"github.com/Makepad-fr/listify/internal/model"
)

type flakyAuth struct {
	registered []model.Registration
	logins     int
}

func (f *flakyAuth) Login(context.Context, model.Credentials) error {
	f.logins++
	return errors.New("connection reset")
}

func (f *flakyAuth) Register(_ context.Context, p model.Registration) (*model.User, error) {
	f.registered = append(f.registered, p)
	return &model.User{ID: 1, Name: p.Name, Email: p.Email}, nil
}

func TestAuthFormLoginShowsServerDetail(t *testing.T) {
	srv := apitest.New(t)
	h := newHarness(t, srv)
	srv.AddUser("Ana", "a@x.com", "right")
	form := board.NewAuthForm(h.store, logging.Discard())

	require.Error(t, form.Login(context.Background(), "a@x.com", "wrong"))
	st := form.State()
	assert.Equal(t, "Incorrect email or password", st.Error)
	assert.False(t, st.Loading)
	assert.Nil(t, h.store.Current())

	require.NoError(t, form.Login(context.Background(), " a@x.com ", "right"))
	assert.Empty(t, form.State().Error)
	require.NotNil(t, h.store.Current())
	assert.Equal(t, "Ana", h.store.Current().Name)
}

func TestAuthFormRejectsBlankFields(t *testing.T) {
	srv := apitest.New(t)
	h := newHarness(t, srv)
	form := board.NewAuthForm(h.store, logging.Discard())

	require.Error(t, form.Login(context.Background(), "  ", "p"))
	require.Error(t, form.Register(context.Background(), "A", "a@x.com", ""))
	assert.NotEmpty(t, form.State().Error)
	assert.Equal(t, 0, srv.TotalHits())
}

func TestAuthFormDuplicateEmail(t *testing.T) {
	srv := apitest.New(t)
	h := newHarness(t, srv)
	srv.AddUser("Ana", "a@x.com", "p")
	form := board.NewAuthForm(h.store, logging.Discard())
	form.ToggleMode()
	assert.Equal(t, board.RegisterMode, form.State().Mode)

	require.Error(t, form.Register(context.Background(), "Other", "a@x.com", "p"))
	assert.Equal(t, "Email already registered", form.State().Error)
	assert.Equal(t, 0, srv.Hits(apitest.RouteLogin))
}

func TestAuthFormRegisterFallsBackToSignIn(t *testing.T) {
	auth := &flakyAuth{}
	form := board.NewAuthForm(auth, logging.Discard())
	form.ToggleMode()

	require.NoError(t, form.Register(context.Background(), "A", "a@x.com", "p"))
	st := form.State()
	assert.Equal(t, board.LoginMode, st.Mode)
	assert.Equal(t, board.SignInAfterRegister, st.Notice)
	assert.Empty(t, st.Error)
	assert.Len(t, auth.registered, 1)
	assert.Equal(t, 1, auth.logins)

	form.ToggleMode()
	assert.Empty(t, form.State().Notice)
}
