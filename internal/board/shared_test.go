package board_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Makepad-fr/listify/internal/api/apitest"
	"github.com/Makepad-fr/listify/internal/board"
	"github.com/Makepad-fr/listify/internal/model"
)

func openShared(t *testing.T, h *harness, token string) (*board.Shared, error) {
	t.Helper()
	s := board.NewShared(h.deps)
	t.Cleanup(s.Close)
	return s, s.Open(context.Background(), token)
}

// sharedFixture is an owner with a shared list of two items and a second,
// signed-in user who received the link.
func sharedFixture(t *testing.T) (srv *apitest.Server, owner *harness, ob *board.Board, viewer *harness, list model.List) {
	t.Helper()
	srv = apitest.New(t)
	owner = newHarness(t, srv)
	owner.signIn(t, "Ana", "a@x.com")
	ob = owner.newBoard(t)
	list = createList(t, ob, "Groceries")
	require.NoError(t, ob.SelectList(context.Background(), list.ID))
	addItem(t, ob, "Milk")
	addItem(t, ob, "Eggs")
	require.NoError(t, ob.OpenShareModal(context.Background()))
	list = *ob.Snapshot().Selected
	require.True(t, list.Shared())

	viewer = newHarness(t, srv)
	viewer.signIn(t, "Bo", "b@x.com")
	return srv, owner, ob, viewer, list
}

func TestSharedNeedsSession(t *testing.T) {
	srv := apitest.New(t)
	h := newHarness(t, srv)

	s, err := openShared(t, h, "abc")
	require.ErrorIs(t, err, board.ErrNotAuthenticated)
	st := s.Snapshot()
	assert.True(t, st.RedirectHome)
	assert.Nil(t, st.List)
	assert.Equal(t, 0, srv.Hits(apitest.RouteShared))
}

func TestSharedViewerSeesOwnersList(t *testing.T) {
	_, _, _, viewer, list := sharedFixture(t)

	s, err := openShared(t, viewer, list.Token())
	require.NoError(t, err)

	st := s.Snapshot()
	require.NotNil(t, st.List)
	assert.Equal(t, list.ID, st.List.ID)
	assert.Equal(t, "Groceries", st.List.Title)
	assert.Equal(t, []string{"Milk", "Eggs"}, itemNames(st.Items))
	assert.Equal(t, board.ListSelected, st.Mode)
	assert.False(t, st.Loading)
	assert.True(t, st.Polling)
}

func TestSharedEditsReachOwner(t *testing.T) {
	_, _, ob, viewer, list := sharedFixture(t)
	s, err := openShared(t, viewer, list.Token())
	require.NoError(t, err)

	milk := s.Snapshot().Items[0]
	require.NoError(t, s.ToggleItem(context.Background(), milk.ID))
	assert.Equal(t, 1, s.Snapshot().CompletedCount)
	addItem(t, s, "Bread")

	waitFor(t, func() bool {
		st := ob.Snapshot()
		return st.CompletedCount == 1 && len(st.Items) == 3
	}, "owner should see the viewer's edits by polling")

	addItem(t, ob, "Coffee")
	waitFor(t, func() bool { return len(s.Snapshot().Items) == 4 }, "viewer should see the owner's edits by polling")
}

func TestRevokedLinkIsNotFound(t *testing.T) {
	srv, _, ob, viewer, list := sharedFixture(t)
	require.NoError(t, ob.RevokeShare(context.Background()))
	assert.Equal(t, board.Info, ob.Snapshot().Notice.Level)

	s, err := openShared(t, viewer, list.Token())
	require.ErrorIs(t, err, board.ErrShareNotFound)

	st := s.Snapshot()
	assert.True(t, st.NotFound)
	assert.Nil(t, st.List)
	assert.Empty(t, st.Items)
	assert.False(t, st.Polling)
	assert.Equal(t, board.Error, st.Notice.Level)
	assert.Equal(t, board.ErrShareNotFound.Error(), st.Notice.Text)
	assert.Equal(t, 1, srv.Hits(apitest.RouteShared))
}

func TestSharedViewerLeavesOnLogout(t *testing.T) {
	srv, _, _, viewer, list := sharedFixture(t)
	s, err := openShared(t, viewer, list.Token())
	require.NoError(t, err)

	viewer.store.Logout()
	waitFor(t, func() bool {
		st := s.Snapshot()
		return st.RedirectHome && st.List == nil && !st.Polling
	}, "logout should leave the shared view")
	assert.Empty(t, s.Snapshot().Items)

	assert.Equal(t, 1, srv.Hits(apitest.RouteShared))
}
