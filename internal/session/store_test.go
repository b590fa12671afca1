package session_test

import (
	"context"
	"testing"
	"time"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Makepad-fr/listify/internal/api"
	"github.com/Makepad-fr/listify/internal/api/apitest"
	"github.com/Makepad-fr/listify/internal/logging"
	"github.com/Makepad-fr/listify/internal/model"
	"github.com/Makepad-fr/listify/internal/session"
)

type fixture struct {
	srv    *apitest.Server
	tokens *session.FileTokenStore
	store  *session.Store
	client *api.Client
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	t.Setenv(session.TokenEnv, "")
	f := &fixture{
		srv:    apitest.New(t),
		tokens: &session.FileTokenStore{Fs: afero.NewMemMapFs(), Dir: "/home/u/.listify"},
	}
	f.open(t)
	return f
}

// open builds a fresh store over the same credential file, like a restart.
func (f *fixture) open(t *testing.T) {
	t.Helper()
	log := logging.Discard()
	f.store = session.New(f.tokens, log)
	f.client = api.New(f.srv.URL, f.store, api.WithLogger(log))
	require.NoError(t, f.store.Open(context.Background(), f.client.Auth))
}

func TestLoginPersistsTokenAndLoadsIdentity(t *testing.T) {
	f := newFixture(t)
	u := f.srv.AddUser("Ana", "a@x.com", "p")
	assert.Nil(t, f.store.Current())

	require.NoError(t, f.store.Login(context.Background(), model.Credentials{Email: "a@x.com", Password: "p"}))

	require.NotNil(t, f.store.Current())
	assert.Equal(t, u.ID, f.store.Current().ID)
	assert.NotEmpty(t, f.store.Token())

	info, err := f.tokens.Load()
	require.NoError(t, err)
	require.NotNil(t, info)
	assert.Equal(t, f.store.Token(), info.Token)
	assert.Equal(t, "file", info.Source)
	require.NotNil(t, info.ExpiresAt)
	assert.True(t, info.ExpiresAt.After(time.Now()))
}

func TestFailedLoginLeavesStateUnchanged(t *testing.T) {
	f := newFixture(t)
	f.srv.AddUser("Ana", "a@x.com", "p")

	err := f.store.Login(context.Background(), model.Credentials{Email: "a@x.com", Password: "nope"})
	require.Error(t, err)
	assert.Equal(t, "Incorrect email or password", api.Message(err, "login failed"))
	assert.Nil(t, f.store.Current())
	assert.Empty(t, f.store.Token())

	info, err := f.tokens.Load()
	require.NoError(t, err)
	assert.Nil(t, info)
}

func TestRestoreOnOpen(t *testing.T) {
	f := newFixture(t)
	f.srv.AddUser("Ana", "a@x.com", "p")
	require.NoError(t, f.store.Login(context.Background(), model.Credentials{Email: "a@x.com", Password: "p"}))

	f.open(t)
	require.NotNil(t, f.store.Current())
	assert.Equal(t, "a@x.com", f.store.Current().Email)
}

func TestOpenWithRejectedTokenLogsOut(t *testing.T) {
	f := newFixture(t)
	f.srv.AddUser("Ana", "a@x.com", "p")
	require.NoError(t, f.store.Login(context.Background(), model.Credentials{Email: "a@x.com", Password: "p"}))
	f.srv.RevokeTokens()

	f.open(t)
	assert.Nil(t, f.store.Current())
	assert.Empty(t, f.store.Token())
	info, err := f.tokens.Load()
	require.NoError(t, err)
	assert.Nil(t, info, "credential file should be removed")
}

func TestRefreshFailureForcesLogout(t *testing.T) {
	f := newFixture(t)
	f.srv.AddUser("Ana", "a@x.com", "p")
	require.NoError(t, f.store.Login(context.Background(), model.Credentials{Email: "a@x.com", Password: "p"}))
	f.srv.RevokeTokens()

	err := f.store.Refresh(context.Background())
	require.ErrorIs(t, err, session.ErrSessionInvalid)
	assert.True(t, api.IsUnauthorized(err))
	assert.Nil(t, f.store.Current())
}

func TestRegisterDoesNotSignIn(t *testing.T) {
	f := newFixture(t)

	u, err := f.store.Register(context.Background(), model.Registration{Name: "A", Email: "a@x.com", Password: "p"})
	require.NoError(t, err)
	assert.Equal(t, "A", u.Name)
	assert.Nil(t, f.store.Current())
	assert.Empty(t, f.store.Token())

	_, err = f.store.Register(context.Background(), model.Registration{Name: "A", Email: "a@x.com", Password: "p"})
	require.Error(t, err)
	assert.Equal(t, "Email already registered", api.Message(err, "register failed"))
}

func TestSubscribeSeesTransitions(t *testing.T) {
	f := newFixture(t)
	f.srv.AddUser("Ana", "a@x.com", "p")

	ch, cancel := f.store.Subscribe()
	defer cancel()
	assert.Nil(t, <-ch, "current identity is delivered on subscribe")

	require.NoError(t, f.store.Login(context.Background(), model.Credentials{Email: "a@x.com", Password: "p"}))
	u := <-ch
	require.NotNil(t, u)
	assert.Equal(t, "Ana", u.Name)

	f.store.Logout()
	assert.Nil(t, <-ch)
	assert.Empty(t, f.store.Token())
}

func TestSlowSubscriberOnlyKeepsLatest(t *testing.T) {
	f := newFixture(t)
	f.srv.AddUser("Ana", "a@x.com", "p")
	ch, cancel := f.store.Subscribe()

	require.NoError(t, f.store.Login(context.Background(), model.Credentials{Email: "a@x.com", Password: "p"}))
	f.store.Logout()

	assert.Nil(t, <-ch)
	select {
	case u := <-ch:
		t.Fatalf("expected no further values, got %v", u)
	default:
	}

	cancel()
	_, open := <-ch
	assert.False(t, open)
	cancel()
}

func TestEnvTokenOverridesFile(t *testing.T) {
	f := newFixture(t)
	u := f.srv.AddUser("Ana", "a@x.com", "p")
	t.Setenv(session.TokenEnv, "Bearer "+f.srv.TokenFor(u.ID))

	f.open(t)
	require.NotNil(t, f.store.Current())
	assert.Equal(t, "env", f.store.Info().Source)

	f.store.Logout()
	assert.Nil(t, f.store.Current())
	assert.Empty(t, f.store.Token())
}

func TestStoreRequiresOpen(t *testing.T) {
	s := session.New(&session.FileTokenStore{Fs: afero.NewMemMapFs(), Dir: "/x"}, logging.Discard())
	assert.Error(t, s.Login(context.Background(), model.Credentials{}))
	assert.Error(t, s.Refresh(context.Background()))
}
