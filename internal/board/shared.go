package board

import (
	"context"
	"fmt"

	"github.com/Makepad-fr/listify/internal/model"
)

// Shared is the view behind a share link: one list, resolved by token
// instead of ownership, with the same item editing as the board.
type Shared struct {
	*core

	// guarded by core.mu
	token    string
	loading  bool
	notFound bool
	redirect bool
}

func NewShared(deps Deps) *Shared {
	return &Shared{core: newCore(deps)}
}

// Open resolves token and starts polling its items. It needs a signed-in
// viewer; access itself is decided by the API from the token alone.
func (s *Shared) Open(ctx context.Context, token string) error {
	if s.deps.Session.Current() == nil {
		s.mu.Lock()
		s.redirect = true
		s.notify()
		s.mu.Unlock()
		return ErrNotAuthenticated
	}

	ctx = s.bind(ctx)
	s.mu.Lock()
	s.token = token
	s.loading = true
	s.notFound = false
	epoch := s.epoch
	s.notify()
	s.mu.Unlock()

	s.watch(func(u *model.User) {
		if u == nil {
			s.leave()
		}
	})

	l, err := s.deps.Share.GetShared(ctx, token)

	s.mu.Lock()
	s.loading = false
	if epoch != s.epoch {
		s.mu.Unlock()
		return ErrClosed
	}
	if err != nil {
		s.notFound = true
		s.log.WithError(err).Warn("shared list lookup failed")
		s.notice = Notice{Level: Error, Text: ErrShareNotFound.Error()}
		s.notify()
		s.mu.Unlock()
		return fmt.Errorf("%w: %w", ErrShareNotFound, err)
	}
	s.list = l
	s.mode = ListSelected
	s.prevMode = ListSelected
	s.notify()
	s.mu.Unlock()

	s.log.WithField("list_id", l.ID).Info("opened shared list")
	ferr := s.fetchItems(ctx)
	s.startPolling(epoch)
	return ignoreNoSelection(ferr)
}

// leave drops everything when the viewer's session ends.
func (s *Shared) leave() {
	s.mu.Lock()
	s.epoch++
	s.itemSeq++
	s.list = nil
	s.items = []model.Item{}
	s.mode = NoSelection
	s.itemDraft = model.Item{}
	s.redirect = true
	s.notify()
	s.mu.Unlock()

	s.stopPolling()
}

// Close is the single teardown point; safe to call twice.
func (s *Shared) Close() { s.close() }

func (s *Shared) OpenItemModal(item *model.Item) error { return s.openItemModal(item) }

func (s *Shared) SetItemDraft(name string, checked bool) { s.setItemDraft(name, checked) }

func (s *Shared) SaveItem(ctx context.Context) error { return s.saveItem(ctx) }

func (s *Shared) ToggleItem(ctx context.Context, id int64) error { return s.toggleItem(ctx, id) }

func (s *Shared) DeleteItem(ctx context.Context, id int64, confirm ConfirmFunc) error {
	return s.deleteItem(ctx, id, confirm)
}

// RefreshItems re-fetches the shared list's items now.
func (s *Shared) RefreshItems(ctx context.Context) error { return s.fetchItems(ctx) }

func (s *Shared) CloseModal() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closeModalLocked()
}

func (s *Shared) Snapshot() SharedState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return SharedState{
		Token:          s.token,
		List:           copyList(s.list),
		Items:          copyItems(s.items),
		Loading:        s.loading,
		NotFound:       s.notFound,
		RedirectHome:   s.redirect,
		Mode:           s.mode,
		Editing:        s.editing,
		ItemDraft:      s.itemDraft,
		Notice:         s.notice,
		CompletedCount: model.CompletedCount(s.items),
		Polling:        s.poller.Running(),
	}
}
