package board

import (
	"context"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/Makepad-fr/listify/internal/model"
	"github.com/Makepad-fr/listify/internal/route"
)

// Board is the main view: the user's lists, the selected list's items and
// the list, item and share editors.
type Board struct {
	*core

	// guarded by core.mu
	lists     []model.List
	listSeq   uint64
	listDraft model.ListInput
	listEdit  int64 // id of the list being edited, 0 when creating
	shareURL  string
}

func NewBoard(deps Deps) *Board {
	return &Board{core: newCore(deps), lists: []model.List{}}
}

// Start follows the session: an identity loads the lists, losing it clears
// everything and stops polling. Close ends it.
func (b *Board) Start(ctx context.Context) {
	ctx = b.bind(ctx)
	b.watch(func(u *model.User) {
		if u == nil {
			b.reset()
			return
		}
		if err := b.LoadLists(ctx); err != nil && ctx.Err() == nil {
			b.log.WithError(err).Warn("initial list load failed")
		}
	})
}

// Close stops polling and the session subscription; safe to call twice.
func (b *Board) Close() { b.close() }

func (b *Board) reset() {
	b.mu.Lock()
	b.epoch++
	b.itemSeq++
	b.listSeq++
	b.lists = []model.List{}
	b.list = nil
	b.items = []model.Item{}
	b.mode = NoSelection
	b.prevMode = NoSelection
	b.listDraft = model.ListInput{}
	b.itemDraft = model.Item{}
	b.shareURL = ""
	b.notice = Notice{}
	b.notify()
	b.mu.Unlock()

	b.stopPolling()
}

// ---------------------------------------------------
// Lists
// ---------------------------------------------------

// LoadLists replaces the lists and re-points the selection at the fresh
// copy, dropping it when the list is gone. A call overtaken by a later one
// returns nil without applying anything; wait on Changes to see the result.
func (b *Board) LoadLists(ctx context.Context) error {
	b.mu.Lock()
	b.listSeq++
	seq := b.listSeq
	b.mu.Unlock()

	lists, err := b.deps.Lists.List(ctx)

	b.mu.Lock()
	if seq != b.listSeq {
		b.mu.Unlock()
		return nil
	}
	if err != nil {
		b.failLocked(err, "could not load lists")
		b.mu.Unlock()
		return err
	}
	b.lists = lists
	dropped := false
	if b.list != nil {
		if fresh := findList(lists, b.list.ID); fresh != nil {
			b.list = fresh
		} else {
			b.clearSelectionLocked()
			dropped = true
		}
	}
	b.notify()
	b.mu.Unlock()

	if dropped {
		b.stopPolling()
	}
	return nil
}

// SelectList makes id the selected list, fetches its items and (re)starts
// polling.
func (b *Board) SelectList(ctx context.Context, id int64) error {
	b.mu.Lock()
	l := findList(b.lists, id)
	if l == nil {
		b.mu.Unlock()
		return fmt.Errorf("%w: %d", ErrUnknownList, id)
	}
	b.list = l
	b.items = []model.Item{}
	b.mode = ListSelected
	b.prevMode = ListSelected
	b.shareURL = ""
	b.notice = Notice{}
	epoch := b.epoch
	b.notify()
	b.mu.Unlock()

	b.log.WithField("list_id", id).Debug("list selected")
	err := b.fetchItems(ctx)
	b.startPolling(epoch)
	return ignoreNoSelection(err)
}

// Deselect returns to NoSelection and stops polling.
func (b *Board) Deselect() {
	b.mu.Lock()
	b.clearSelectionLocked()
	b.notify()
	b.mu.Unlock()
	b.stopPolling()
}

func (b *Board) clearSelectionLocked() {
	b.list = nil
	b.items = []model.Item{}
	b.itemSeq++
	b.shareURL = ""
	b.mode = NoSelection
	b.prevMode = NoSelection
}

// OpenListModal snapshots l (or a blank list when nil) into the editor.
func (b *Board) OpenListModal(l *model.List) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.mode.modal() {
		b.prevMode = b.mode
	}
	if l != nil {
		b.listDraft = model.ListInput{Title: l.Title, Description: l.Description}
		b.listEdit = l.ID
		b.editing = Edit
	} else {
		b.listDraft = model.ListInput{}
		b.listEdit = 0
		b.editing = Create
	}
	b.mode = ListModal
	b.notice = Notice{}
	b.notify()
}

func (b *Board) SetListDraft(title, description string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.listDraft.Title = title
	switch {
	case strings.TrimSpace(description) != "":
		d := description
		b.listDraft.Description = &d
	case b.editing == Edit:
		// updates only touch the fields sent, so a blank must go out as ""
		empty := ""
		b.listDraft.Description = &empty
	default:
		b.listDraft.Description = nil
	}
}

// SaveList creates or updates the drafted list and re-fetches the lists.
// A blank title is rejected without calling the API.
func (b *Board) SaveList(ctx context.Context) error {
	b.mu.Lock()
	if b.mode != ListModal {
		b.mu.Unlock()
		return ErrNoModal
	}
	title := strings.TrimSpace(b.listDraft.Title)
	if title == "" {
		b.notice = Notice{Level: Error, Text: ErrTitleRequired.Error()}
		b.notify()
		b.mu.Unlock()
		return ErrTitleRequired
	}
	in := model.ListInput{Title: title, Description: b.listDraft.Description}
	kind, id := b.editing, b.listEdit
	b.mu.Unlock()

	var err error
	if kind == Edit && id != 0 {
		_, err = b.deps.Lists.Update(ctx, id, in)
	} else {
		_, err = b.deps.Lists.Create(ctx, in)
	}
	if err != nil {
		return b.fail(err, "could not save list")
	}
	b.log.WithFields(logrus.Fields{"list_id": id, "title": title}).Info("list saved")

	lerr := b.LoadLists(ctx)
	b.mu.Lock()
	b.listDraft = model.ListInput{}
	b.listEdit = 0
	b.closeModalLocked()
	b.mu.Unlock()
	return lerr
}

// DeleteList removes a list after confirm agrees. Deleting the selected list
// clears the selection and its items.
func (b *Board) DeleteList(ctx context.Context, id int64, confirm ConfirmFunc) error {
	b.mu.Lock()
	title := fmt.Sprintf("list %d", id)
	if l := findList(b.lists, id); l != nil {
		title = l.Title
	}
	b.mu.Unlock()

	if confirm == nil || !confirm(fmt.Sprintf("Delete list %q?", title)) {
		return ErrCancelled
	}
	if err := b.deps.Lists.Delete(ctx, id); err != nil {
		return b.fail(err, "could not delete list")
	}
	b.log.WithField("list_id", id).Info("list deleted")

	b.mu.Lock()
	wasSelected := b.list != nil && b.list.ID == id
	if wasSelected {
		b.clearSelectionLocked()
		b.notify()
	}
	b.mu.Unlock()
	if wasSelected {
		b.stopPolling()
	}
	return b.LoadLists(ctx)
}

// ---------------------------------------------------
// Items
// ---------------------------------------------------

func (b *Board) OpenItemModal(item *model.Item) error { return b.openItemModal(item) }

func (b *Board) SetItemDraft(name string, checked bool) { b.setItemDraft(name, checked) }

func (b *Board) SaveItem(ctx context.Context) error { return b.saveItem(ctx) }

func (b *Board) ToggleItem(ctx context.Context, id int64) error { return b.toggleItem(ctx, id) }

func (b *Board) DeleteItem(ctx context.Context, id int64, confirm ConfirmFunc) error {
	return b.deleteItem(ctx, id, confirm)
}

// RefreshItems re-fetches the selected list's items now.
func (b *Board) RefreshItems(ctx context.Context) error { return b.fetchItems(ctx) }

// ---------------------------------------------------
// Sharing
// ---------------------------------------------------

// OpenShareModal shows the selected list's link. A list that already has a
// token reuses it without calling the API; otherwise one link is issued.
func (b *Board) OpenShareModal(ctx context.Context) error {
	b.mu.Lock()
	if b.list == nil {
		b.mu.Unlock()
		return ErrNoSelection
	}
	if b.list.Shared() {
		b.shareURL = route.SharedURL(b.deps.ShareBaseURL, b.list.Token())
		b.enterShareModalLocked()
		b.mu.Unlock()
		return nil
	}
	id := b.list.ID
	b.mu.Unlock()

	link, err := b.deps.Share.Create(ctx, id)
	if err != nil {
		return b.fail(err, "could not create share link")
	}
	b.log.WithField("list_id", id).Info("share link created")

	b.mu.Lock()
	defer b.mu.Unlock()
	b.foldShareLocked(id, link.ShareToken)
	b.shareURL = link.ShareURL
	if b.shareURL == "" {
		b.shareURL = route.SharedURL(b.deps.ShareBaseURL, link.ShareToken)
	}
	if b.list != nil && b.list.ID == id {
		b.enterShareModalLocked()
	}
	return nil
}

// RevokeShare makes the selected list private again.
func (b *Board) RevokeShare(ctx context.Context) error {
	b.mu.Lock()
	if b.list == nil {
		b.mu.Unlock()
		return ErrNoSelection
	}
	id := b.list.ID
	b.mu.Unlock()

	if err := b.deps.Share.Revoke(ctx, id); err != nil {
		return b.fail(err, "could not revoke share link")
	}
	b.log.WithField("list_id", id).Info("share link revoked")

	b.mu.Lock()
	b.foldShareLocked(id, "")
	b.shareURL = ""
	b.closeModalLocked()
	b.infoLocked("sharing disabled")
	b.mu.Unlock()
	return b.LoadLists(ctx)
}

func (b *Board) enterShareModalLocked() {
	if !b.mode.modal() {
		b.prevMode = b.mode
	}
	b.mode = ShareModal
	b.notice = Notice{}
	b.notify()
}

func (b *Board) foldShareLocked(id int64, token string) {
	if b.list != nil && b.list.ID == id {
		l := b.list.WithShare(token)
		b.list = &l
	}
	for i := range b.lists {
		if b.lists[i].ID == id {
			b.lists[i] = b.lists[i].WithShare(token)
		}
	}
	b.notify()
}

// CloseModal leaves whichever editor is open.
func (b *Board) CloseModal() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.listDraft = model.ListInput{}
	b.listEdit = 0
	b.closeModalLocked()
}

// Snapshot copies the state for rendering.
func (b *Board) Snapshot() BoardState {
	b.mu.Lock()
	defer b.mu.Unlock()
	lists := make([]model.List, len(b.lists))
	copy(lists, b.lists)
	return BoardState{
		Lists:          lists,
		Selected:       copyList(b.list),
		Items:          copyItems(b.items),
		Mode:           b.mode,
		Editing:        b.editing,
		ListDraft:      b.listDraft,
		ItemDraft:      b.itemDraft,
		ShareURL:       b.shareURL,
		Notice:         b.notice,
		CompletedCount: model.CompletedCount(b.items),
		Polling:        b.poller.Running(),
	}
}

func findList(lists []model.List, id int64) *model.List {
	for i := range lists {
		if lists[i].ID == id {
			cp := lists[i]
			return &cp
		}
	}
	return nil
}
