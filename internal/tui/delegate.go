package tui

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/Makepad-fr/listify/internal/model"
)

// listEntry adapts model.List to bubbles/list.Item
type listEntry struct{ model.List }

func (e listEntry) Title() string       { return e.List.Title }
func (e listEntry) Description() string { return e.Desc() }
func (e listEntry) FilterValue() string { return e.List.Title }

// itemEntry adapts model.Item to bubbles/list.Item
type itemEntry struct{ model.Item }

func (e itemEntry) Title() string       { return e.Name }
func (e itemEntry) Description() string { return "" }
func (e itemEntry) FilterValue() string { return e.Name }

func cursor(m list.Model, index int) string {
	if index == m.Index() {
		return selectedStyle.Render("> ")
	}
	return "  "
}

// Single-line rows for the lists pane; active is the selected list's id.
type listDelegate struct{ active *int64 }

func (d listDelegate) Height() int                         { return 1 }
func (d listDelegate) Spacing() int                        { return 0 }
func (d listDelegate) Update(tea.Msg, *list.Model) tea.Cmd { return nil }
func (d listDelegate) Render(w io.Writer, m list.Model, index int, li list.Item) {
	e, ok := li.(listEntry)
	if !ok {
		return
	}
	title := truncate(e.List.Title, m.Width()-6)
	if d.active != nil && *d.active == e.ID {
		title = accentStyle.Render(title)
	}
	mark := " "
	if e.Shared() {
		mark = pendingStyle.Render(sharedMark)
	}
	fmt.Fprintln(w, cursor(m, index)+mark+" "+title)
}

// Single-line rows for the items pane.
type itemDelegate struct{}

func (d itemDelegate) Height() int                         { return 1 }
func (d itemDelegate) Spacing() int                        { return 0 }
func (d itemDelegate) Update(tea.Msg, *list.Model) tea.Cmd { return nil }
func (d itemDelegate) Render(w io.Writer, m list.Model, index int, li list.Item) {
	e, ok := li.(itemEntry)
	if !ok {
		return
	}
	box := mutedStyle.Render(boxUnchecked)
	text := truncate(e.Name, m.Width()-6)
	if e.Checked {
		box = successStyle.Render(boxChecked)
		text = doneStyle.Render(text)
	}
	fmt.Fprintln(w, cursor(m, index)+box+" "+text)
}

func truncate(s string, max int) string {
	if max < 4 || len([]rune(s)) <= max {
		return s
	}
	r := []rune(s)
	return string(r[:max-1]) + "…"
}

func newPane(d list.ItemDelegate, title string) list.Model {
	l := list.New(nil, d, 0, 0)
	l.Title = title
	l.SetShowHelp(false)
	l.SetShowStatusBar(false)
	l.SetShowPagination(true)
	l.SetFilteringEnabled(false)
	l.DisableQuitKeybindings()
	l.Styles.Title = titleStyle
	l.Styles.PaginationStyle = helpStyle
	l.Styles.NoItems = mutedStyle
	return l
}

func listEntries(lists []model.List) []list.Item {
	out := make([]list.Item, 0, len(lists))
	for _, l := range lists {
		out = append(out, listEntry{l})
	}
	return out
}

func itemEntries(items []model.Item) []list.Item {
	out := make([]list.Item, 0, len(items))
	for _, it := range items {
		out = append(out, itemEntry{it})
	}
	return out
}

// syncPane swaps in fresh rows while keeping the cursor on the same id.
func syncPane(l *list.Model, rows []list.Item, idOf func(list.Item) int64) {
	var keep int64
	if cur := l.SelectedItem(); cur != nil {
		keep = idOf(cur)
	}
	l.SetItems(rows)
	for i, r := range rows {
		if idOf(r) == keep {
			l.Select(i)
			return
		}
	}
	if n := len(rows); n > 0 && l.Index() >= n {
		l.Select(n - 1)
	}
}

func listID(li list.Item) int64 {
	if e, ok := li.(listEntry); ok {
		return e.ID
	}
	return 0
}

func itemID(li list.Item) int64 {
	if e, ok := li.(itemEntry); ok {
		return e.ID
	}
	return 0
}

func panelString(inner string, focused bool) string {
	if focused {
		return focusStyle.Render(inner)
	}
	return paneStyle.Render(inner)
}

func joinLines(lines ...string) string {
	out := lines[:0:0]
	for _, l := range lines {
		if l != "" {
			out = append(out, l)
		}
	}
	return strings.Join(out, "\n")
}
