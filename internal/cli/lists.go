package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/sourcegraph/conc/pool"

	"github.com/Makepad-fr/listify/internal/model"
	"github.com/Makepad-fr/listify/internal/route"
	"github.com/Makepad-fr/listify/internal/ui"
)

// maxFetches bounds the per-list item requests `ls` runs at once.
const maxFetches = 4

// -------------- list subcommands ----------------

type listRow struct {
	list  model.List
	done  int
	total int
}

func (e *env) doLists(ctx context.Context) int {
	if code := e.ensureAuth(); code != 0 {
		return code
	}
	lists, err := e.client.Lists.List(ctx)
	if err != nil {
		return e.failAPI(err, "could not load lists")
	}

	rows := make([]listRow, len(lists))
	p := pool.New().WithErrors().WithContext(ctx).WithMaxGoroutines(maxFetches)
	for i, l := range lists {
		i, l := i, l
		p.Go(func(ctx context.Context) error {
			items, err := e.client.Items.ForList(ctx, l.ID)
			if err != nil {
				return fmt.Errorf("list %d: %w", l.ID, err)
			}
			rows[i] = listRow{list: l, done: model.CompletedCount(items), total: len(items)}
			return nil
		})
	}
	if err := p.Wait(); err != nil {
		return e.failAPI(err, "could not load items")
	}

	t := ui.Current()
	var lines []string
	if len(rows) == 0 {
		lines = append(lines, ui.C(t.Muted, "no lists yet"))
	}
	for _, r := range rows {
		mark := " "
		if r.list.Shared() {
			mark = ui.C(t.Pending, t.SymShared)
		}
		lines = append(lines, fmt.Sprintf("%s %s %s  %s",
			ui.C(t.Muted, fmt.Sprintf("%3d", r.list.ID)), mark,
			padRight(clip(r.list.Title, 40), 40),
			ui.C(t.Muted, ui.ProgressBar(r.done, r.total, 12))+fmt.Sprintf(" %d/%d", r.done, r.total),
		))
	}
	lines = append(lines, "", ui.C(t.Muted, "Tip: `listify items <id>` shows a list"))
	ui.Panel(fmt.Sprintf("Lists (%d)", len(rows)), lines)
	return 0
}

func (e *env) doMakeList(ctx context.Context, title string) int {
	if code := e.ensureAuth(); code != 0 {
		return code
	}
	title = strings.TrimSpace(title)
	if title == "" {
		ui.Fail("mklist: empty title")
		return 2
	}
	l, err := e.client.Lists.Create(ctx, model.ListInput{Title: title})
	if err != nil {
		return e.failAPI(err, "could not create list")
	}
	ui.OK(fmt.Sprintf("created list %d %q", l.ID, l.Title))
	return 0
}

func (e *env) doRemoveList(ctx context.Context, id int64) int {
	if code := e.ensureAuth(); code != 0 {
		return code
	}
	if err := e.client.Lists.Delete(ctx, id); err != nil {
		return e.failAPI(err, "could not delete list")
	}
	ui.OK("removed")
	return 0
}

func (e *env) doShare(ctx context.Context, id int64) int {
	if code := e.ensureAuth(); code != 0 {
		return code
	}
	link, err := e.client.Share.Create(ctx, id)
	if err != nil {
		return e.failAPI(err, "could not create share link")
	}
	url := link.ShareURL
	if url == "" {
		url = route.SharedURL(e.opt.Config.ShareBaseURL, link.ShareToken)
	}
	ui.OK("shared")
	ui.Println(url)
	return 0
}

func (e *env) doUnshare(ctx context.Context, id int64) int {
	if code := e.ensureAuth(); code != 0 {
		return code
	}
	if err := e.client.Share.Revoke(ctx, id); err != nil {
		return e.failAPI(err, "could not revoke share link")
	}
	ui.OK("sharing disabled")
	return 0
}

// -------------- item subcommands ----------------

func (e *env) doItems(ctx context.Context, listID int64) int {
	if code := e.ensureAuth(); code != 0 {
		return code
	}
	l, err := e.client.Lists.Get(ctx, listID)
	if err != nil {
		return e.failAPI(err, "could not load list")
	}
	items, err := e.client.Items.ForList(ctx, listID)
	if err != nil {
		return e.failAPI(err, "could not load items")
	}

	t := ui.Current()
	d := model.CompletedCount(items)
	header := fmt.Sprintf("%s %d  %s %d  %s %d",
		ui.C(t.Success, t.SymDone), d,
		ui.C(t.Pending, "•"), len(items)-d,
		ui.C(t.Accent, "Total"), len(items),
	)
	lines := []string{header, ui.C(t.Muted, ui.ProgressBar(d, len(items), 28))}
	if desc := l.Desc(); desc != "" {
		lines = append(lines, ui.C(t.Muted, desc))
	}
	lines = append(lines, "")
	if e.opt.Group {
		lines = append(lines, groupLines(items)...)
	} else {
		lines = append(lines, flatLines(items)...)
	}
	lines = append(lines, "", ui.C(t.Muted, fmt.Sprintf("Tip: add with `listify add %d \"Oat milk\"`", listID)))
	ui.Panel(l.Title, lines)
	return 0
}

func (e *env) doAdd(ctx context.Context, listID int64, name string) int {
	if code := e.ensureAuth(); code != 0 {
		return code
	}
	name = strings.TrimSpace(name)
	if name == "" {
		ui.Fail("add: empty name")
		return 2
	}
	it, err := e.client.Items.Create(ctx, listID, model.ItemInput{Name: name})
	if err != nil {
		return e.failAPI(err, "could not add item")
	}
	ui.OK(fmt.Sprintf("added item %d", it.ID))
	return 0
}

func (e *env) doToggle(ctx context.Context, id int64) int {
	if code := e.ensureAuth(); code != 0 {
		return code
	}
	it, err := e.client.Items.Toggle(ctx, id)
	if err != nil {
		return e.failAPI(err, "could not update item")
	}
	if it.Checked {
		ui.OK("checked " + it.Name)
	} else {
		ui.OK("unchecked " + it.Name)
	}
	return 0
}

func (e *env) doRemove(ctx context.Context, id int64) int {
	if code := e.ensureAuth(); code != 0 {
		return code
	}
	if err := e.client.Items.Delete(ctx, id); err != nil {
		return e.failAPI(err, "could not remove item")
	}
	ui.OK("removed")
	return 0
}

// -------------- rendering helpers --------------

func clip(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-3]) + "..."
}

func padRight(s string, n int) string {
	if w := len([]rune(s)); w < n {
		return s + strings.Repeat(" ", n-w)
	}
	return s
}

func flatLines(items []model.Item) []string {
	t := ui.Current()
	if len(items) == 0 {
		return []string{ui.C(t.Muted, "no items")}
	}
	out := make([]string, 0, len(items))
	for _, it := range items {
		box, color := t.BoxUnchecked, t.Muted
		if it.Checked {
			box, color = t.BoxChecked, t.Success
		}
		out = append(out, fmt.Sprintf("%s %s %s",
			ui.C(t.Muted, fmt.Sprintf("%4d", it.ID)), ui.C(color, box), clip(it.Name, 80)))
	}
	return out
}

func groupLines(items []model.Item) []string {
	var pend, done []model.Item
	for _, it := range items {
		if it.Checked {
			done = append(done, it)
		} else {
			pend = append(pend, it)
		}
	}
	t := ui.Current()
	section := func(title string, items []model.Item) []string {
		lines := []string{ui.C(t.Accent, title)}
		if len(items) == 0 {
			return append(lines, ui.C(t.Muted, "(none)"))
		}
		return append(lines, flatLines(items)...)
	}
	lines := section("Pending", pend)
	lines = append(lines, "")
	return append(lines, section("Done", done)...)
}
