package api_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Makepad-fr/listify/internal/api"
	"github.com/Makepad-fr/listify/internal/api/apitest"
	"github.com/Makepad-fr/listify/internal/logging"
	"github.com/Makepad-fr/listify/internal/model"
)

type staticToken struct {
	mu  sync.Mutex
	tok string
}

func (s *staticToken) Token() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tok
}

func (s *staticToken) set(tok string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tok = tok
}

func newClient(t *testing.T) (*api.Client, *apitest.Server, *staticToken) {
	t.Helper()
	srv := apitest.New(t)
	tokens := &staticToken{}
	return api.New(srv.URL, tokens, api.WithLogger(logging.Discard())), srv, tokens
}

func TestGateAttachesBearerOnlyWhenPresent(t *testing.T) {
	var (
		mu  sync.Mutex
		got []string
		ids []string
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		defer mu.Unlock()
		got = append(got, r.Header.Get("Authorization"))
		ids = append(ids, r.Header.Get("X-Request-ID"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[]`))
	}))
	defer srv.Close()

	tokens := &staticToken{}
	c := api.New(srv.URL, tokens, api.WithLogger(logging.Discard()))

	_, err := c.Lists.List(context.Background())
	require.NoError(t, err)
	tokens.set("abc")
	_, err = c.Lists.List(context.Background())
	require.NoError(t, err)

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []string{"", "Bearer abc"}, got)
	require.Len(t, ids, 2)
	assert.NotEmpty(t, ids[0])
	assert.NotEqual(t, ids[0], ids[1])
}

func TestAuthFlow(t *testing.T) {
	c, _, tokens := newClient(t)
	ctx := context.Background()

	u, err := c.Auth.Register(ctx, model.Registration{Name: "A", Email: "a@x.com", Password: "p"})
	require.NoError(t, err)
	assert.Equal(t, "a@x.com", u.Email)

	_, err = c.Auth.Login(ctx, model.Credentials{Email: "a@x.com", Password: "wrong"})
	require.Error(t, err)
	assert.True(t, api.IsUnauthorized(err))
	assert.Equal(t, "Incorrect email or password", api.Message(err, "login failed"))

	tok, err := c.Auth.Login(ctx, model.Credentials{Email: "a@x.com", Password: "p"})
	require.NoError(t, err)
	assert.Equal(t, "bearer", tok.TokenType)

	_, err = c.Auth.Me(ctx)
	assert.True(t, api.IsUnauthorized(err))

	tokens.set(tok.AccessToken)
	me, err := c.Auth.Me(ctx)
	require.NoError(t, err)
	assert.Equal(t, u.ID, me.ID)
}

func TestListsItemsAndShare(t *testing.T) {
	c, srv, tokens := newClient(t)
	ctx := context.Background()
	owner := srv.AddUser("Owner", "o@x.com", "p")
	tokens.set(srv.TokenFor(owner.ID))

	lists, err := c.Lists.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, lists)
	assert.NotNil(t, lists)

	l, err := c.Lists.Create(ctx, model.ListInput{Title: "Groceries"})
	require.NoError(t, err)
	assert.False(t, l.Shared())

	desc := "weekly"
	l, err = c.Lists.Update(ctx, l.ID, model.ListInput{Title: "Groceries", Description: &desc})
	require.NoError(t, err)
	assert.Equal(t, "weekly", l.Desc())

	l, err = c.Lists.Update(ctx, l.ID, model.ListInput{Title: "Shopping"})
	require.NoError(t, err)
	assert.Equal(t, "Shopping", l.Title)
	assert.Equal(t, "weekly", l.Desc(), "fields left out of an update are kept")

	it, err := c.Items.Create(ctx, l.ID, model.ItemInput{Name: "Milk"})
	require.NoError(t, err)
	assert.Equal(t, l.ID, it.ListID)
	assert.Equal(t, 1, srv.Hits(apitest.RouteItemCreate))

	it, err = c.Items.Toggle(ctx, it.ID)
	require.NoError(t, err)
	assert.True(t, it.Checked)

	it, err = c.Items.Update(ctx, it.ID, model.ItemInput{Name: "Oat milk", Checked: true})
	require.NoError(t, err)
	assert.Equal(t, "Oat milk", it.Name)

	items, err := c.Items.ForList(ctx, l.ID)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "Oat milk", items[0].Name)

	link, err := c.Share.Create(ctx, l.ID)
	require.NoError(t, err)
	assert.NotEmpty(t, link.ShareToken)
	assert.Equal(t, srv.ShareBaseURL+"/shared/"+link.ShareToken, link.ShareURL)

	again, err := c.Share.Create(ctx, l.ID)
	require.NoError(t, err)
	assert.Equal(t, link.ShareToken, again.ShareToken)

	shared, err := c.Share.GetShared(ctx, link.ShareToken)
	require.NoError(t, err)
	assert.Equal(t, l.ID, shared.ID)
	assert.True(t, shared.Shared())

	require.NoError(t, c.Share.Revoke(ctx, l.ID))
	_, err = c.Share.GetShared(ctx, link.ShareToken)
	assert.True(t, api.IsNotFound(err))

	require.NoError(t, c.Items.Delete(ctx, it.ID))
	require.NoError(t, c.Lists.Delete(ctx, l.ID))
	_, err = c.Lists.Get(ctx, l.ID)
	assert.True(t, api.IsNotFound(err))
}

func TestAPIErrorDetailFallbacks(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/lists/1":
			w.WriteHeader(http.StatusBadRequest)
			_, _ = w.Write([]byte(`{"error":"title is required"}`))
		case "/lists/2":
			w.WriteHeader(http.StatusUnprocessableEntity)
			_, _ = w.Write([]byte(`{"detail":[{"msg":"field required"}]}`))
		default:
			w.WriteHeader(http.StatusBadGateway)
			_, _ = w.Write([]byte(`<html>bad gateway</html>`))
		}
	}))
	defer srv.Close()
	c := api.New(srv.URL, nil, api.WithLogger(logging.Discard()))
	ctx := context.Background()

	_, err := c.Lists.Get(ctx, 1)
	assert.Equal(t, "title is required", api.Message(err, "x"))

	_, err = c.Lists.Get(ctx, 2)
	assert.Contains(t, api.Message(err, "x"), "field required")

	_, err = c.Lists.Get(ctx, 3)
	assert.Equal(t, "Bad Gateway", api.Message(err, "x"))

	assert.Equal(t, "fallback", api.Message(context.Canceled, "fallback"))
	assert.False(t, api.IsNotFound(context.Canceled))
}
