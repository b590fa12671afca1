package board

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/Makepad-fr/listify/internal/api"
	"github.com/Makepad-fr/listify/internal/model"
	"github.com/Makepad-fr/listify/internal/poll"
)

const defaultPollInterval = 3 * time.Second

// core is the part the board and the shared viewer have in common: one
// active list, its items, the item editor and the polling task.
//
// mu guards every field below it and is never held across an API call or a
// poller start/stop. pollMu serialises poller start/stop decisions.
type core struct {
	deps Deps
	log  logrus.FieldLogger

	pollMu sync.Mutex
	poller *poll.Poller

	changes chan struct{}

	mu        sync.Mutex
	ctx       context.Context
	cancel    context.CancelFunc
	closed    bool
	epoch     uint64 // bumped whenever the session or view goes away
	itemSeq   uint64 // last item fetch issued
	list      *model.List
	items     []model.Item
	mode      Mode
	prevMode  Mode
	editing   EditKind
	itemDraft model.Item
	notice    Notice

	unsubscribe func()
	watchDone   chan struct{}
}

func newCore(deps Deps) *core {
	if deps.PollInterval <= 0 {
		deps.PollInterval = defaultPollInterval
	}
	if deps.Log == nil {
		deps.Log = logrus.StandardLogger()
	}
	ctx, cancel := context.WithCancel(context.Background())
	c := &core{
		deps:    deps,
		log:     deps.Log,
		changes: make(chan struct{}, 1),
		ctx:     ctx,
		cancel:  cancel,
		items:   []model.Item{},
	}
	c.poller = poll.New(deps.PollInterval, c.tick)
	return c
}

// Changes signals (coalesced) that a snapshot would differ.
func (c *core) Changes() <-chan struct{} { return c.changes }

func (c *core) notify() {
	select {
	case c.changes <- struct{}{}:
	default:
	}
}

// bind ties the view's lifetime to parent.
func (c *core) bind(parent context.Context) context.Context {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cancel()
	c.ctx, c.cancel = context.WithCancel(parent)
	return c.ctx
}

// watch feeds identity changes to onChange until the subscription ends.
// Only the first call subscribes.
func (c *core) watch(onChange func(u *model.User)) {
	c.mu.Lock()
	if c.unsubscribe != nil || c.closed {
		c.mu.Unlock()
		return
	}
	ch, unsubscribe := c.deps.Session.Subscribe()
	done := make(chan struct{})
	c.unsubscribe = unsubscribe
	c.watchDone = done
	c.mu.Unlock()

	go func() {
		defer close(done)
		for u := range ch {
			onChange(u)
		}
	}()
}

// close is the single teardown point: it ends the session subscription,
// cancels outstanding work and stops polling.
func (c *core) close() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	c.epoch++
	c.itemSeq++
	c.cancel()
	unsubscribe, done := c.unsubscribe, c.watchDone
	c.mu.Unlock()

	if unsubscribe != nil {
		unsubscribe()
		<-done
	}
	c.stopPolling()
}

// ---------------------------------------------------
// Polling
// ---------------------------------------------------

// startPolling (re)starts the item poll unless the view moved on since epoch.
func (c *core) startPolling(epoch uint64) {
	c.pollMu.Lock()
	defer c.pollMu.Unlock()

	c.mu.Lock()
	ok := !c.closed && c.epoch == epoch && c.list != nil
	ctx := c.ctx
	c.mu.Unlock()
	if !ok {
		return
	}
	c.poller.Start(ctx)
	c.log.WithField("list_id", c.activeListID()).Debug("polling started")
}

func (c *core) stopPolling() {
	c.pollMu.Lock()
	defer c.pollMu.Unlock()
	if c.poller.Running() {
		c.log.Debug("polling stopped")
	}
	c.poller.Stop()
}

func (c *core) tick(ctx context.Context) {
	if err := c.fetchItems(ctx); err != nil && ctx.Err() == nil {
		c.log.WithError(err).Debug("poll fetch failed")
	}
}

func (c *core) activeListID() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.list == nil {
		return 0
	}
	return c.list.ID
}

// ---------------------------------------------------
// Items
// ---------------------------------------------------

// fetchItems replaces the item set with the server's. Only the most recently
// issued fetch may land: a response for an older fetch, for a list that is
// no longer active, or after the session went away is dropped.
func (c *core) fetchItems(ctx context.Context) error {
	c.mu.Lock()
	if c.list == nil {
		c.mu.Unlock()
		return ErrNoSelection
	}
	listID := c.list.ID
	c.itemSeq++
	seq := c.itemSeq
	c.mu.Unlock()

	items, err := c.deps.Items.ForList(ctx, listID)

	c.mu.Lock()
	defer c.mu.Unlock()
	if seq != c.itemSeq || c.list == nil || c.list.ID != listID {
		return nil
	}
	if err != nil {
		if ctx.Err() != nil {
			return err
		}
		c.failLocked(err, "could not load items")
		return err
	}
	c.items = items
	c.notify()
	return nil
}

func (c *core) openItemModal(item *model.Item) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.list == nil {
		return ErrNoSelection
	}
	if !c.mode.modal() {
		c.prevMode = c.mode
	}
	if item != nil {
		c.itemDraft = *item
		c.editing = Edit
	} else {
		c.itemDraft = model.Item{ListID: c.list.ID}
		c.editing = Create
	}
	c.mode = ItemModal
	c.notice = Notice{}
	c.notify()
	return nil
}

func (c *core) setItemDraft(name string, checked bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.itemDraft.Name = name
	c.itemDraft.Checked = checked
}

func (c *core) closeModalLocked() {
	if c.mode.modal() {
		c.mode = c.prevMode
	}
	c.itemDraft = model.Item{}
	c.notify()
}

// saveItem validates the draft, creates or updates it, then re-fetches.
func (c *core) saveItem(ctx context.Context) error {
	c.mu.Lock()
	if c.mode != ItemModal {
		c.mu.Unlock()
		return ErrNoModal
	}
	if c.list == nil {
		c.mu.Unlock()
		return ErrNoSelection
	}
	name := strings.TrimSpace(c.itemDraft.Name)
	if name == "" {
		c.notice = Notice{Level: Error, Text: ErrNameRequired.Error()}
		c.notify()
		c.mu.Unlock()
		return ErrNameRequired
	}
	listID, kind, draft := c.list.ID, c.editing, c.itemDraft
	c.mu.Unlock()

	in := model.ItemInput{Name: name, Checked: draft.Checked}
	var err error
	if kind == Edit && draft.ID != 0 {
		_, err = c.deps.Items.Update(ctx, draft.ID, in)
	} else {
		_, err = c.deps.Items.Create(ctx, listID, in)
	}
	if err != nil {
		return c.fail(err, "could not save item")
	}
	c.log.WithFields(logrus.Fields{"list_id": listID, "item": name}).Info("item saved")

	ferr := c.fetchItems(ctx)
	c.mu.Lock()
	c.closeModalLocked()
	c.mu.Unlock()
	return ignoreNoSelection(ferr)
}

func (c *core) toggleItem(ctx context.Context, id int64) error {
	if _, err := c.deps.Items.Toggle(ctx, id); err != nil {
		return c.fail(err, "could not update item")
	}
	return ignoreNoSelection(c.fetchItems(ctx))
}

func (c *core) deleteItem(ctx context.Context, id int64, confirm ConfirmFunc) error {
	c.mu.Lock()
	name := fmt.Sprintf("item %d", id)
	for _, it := range c.items {
		if it.ID == id {
			name = it.Name
			break
		}
	}
	c.mu.Unlock()

	if confirm == nil || !confirm(fmt.Sprintf("Delete %q?", name)) {
		return ErrCancelled
	}
	if err := c.deps.Items.Delete(ctx, id); err != nil {
		return c.fail(err, "could not delete item")
	}
	c.log.WithField("item_id", id).Info("item deleted")
	return ignoreNoSelection(c.fetchItems(ctx))
}

// ---------------------------------------------------
// Notices
// ---------------------------------------------------

// fail records err as the visible notice and returns it.
func (c *core) fail(err error, fallback string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.failLocked(err, fallback)
	return err
}

func (c *core) failLocked(err error, fallback string) {
	c.log.WithError(err).Warn(fallback)
	c.notice = Notice{Level: Error, Text: api.Message(err, fallback)}
	c.notify()
}

func (c *core) infoLocked(text string) {
	c.notice = Notice{Level: Info, Text: text}
	c.notify()
}

// A selection dropped while a mutation was in flight is not an error.
func ignoreNoSelection(err error) error {
	if errors.Is(err, ErrNoSelection) {
		return nil
	}
	return err
}

func copyItems(items []model.Item) []model.Item {
	out := make([]model.Item, len(items))
	copy(out, items)
	return out
}

func copyList(l *model.List) *model.List {
	if l == nil {
		return nil
	}
	cp := *l
	return &cp
}
