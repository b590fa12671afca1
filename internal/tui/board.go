package tui

import (
	"context"
	"fmt"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/Makepad-fr/listify/internal/board"
	"github.com/Makepad-fr/listify/internal/model"
	"github.com/Makepad-fr/listify/internal/route"
)

type pane int

const (
	listsPane pane = iota
	itemsPane
)

// confirmPrompt is a pending destructive action waiting for y/n.
type confirmPrompt struct {
	prompt string
	run    func(ctx context.Context) error
}

func always(string) bool { return true }

// copyToClipboard is swapped out in tests.
var copyToClipboard = clipboard.WriteAll

type boardView struct {
	vm     *board.Board
	st     board.BoardState
	active int64

	lists, items list.Model
	focus        pane

	// editor inputs: title and description for lists, title alone for items
	title, desc textinput.Model
	field       int
	confirm     *confirmPrompt
}

func newBoardView(vm *board.Board) *boardView {
	v := &boardView{vm: vm}
	v.lists = newPane(listDelegate{active: &v.active}, "Lists")
	v.items = newPane(itemDelegate{}, "Items")
	v.title = newInput("Title", 200)
	v.desc = newInput("Description (optional)", 500)
	v.refresh()
	return v
}

func newInput(placeholder string, limit int) textinput.Model {
	ti := textinput.New()
	ti.Prompt = "> "
	ti.Placeholder = placeholder
	ti.CharLimit = limit
	return ti
}

func (v *boardView) refresh() {
	v.st = v.vm.Snapshot()
	v.active = 0
	if v.st.Selected != nil {
		v.active = v.st.Selected.ID
		v.items.Title = v.st.Selected.Title
	} else {
		v.items.Title = "Items"
		v.focus = listsPane
	}
	if v.st.Mode != board.ListModal && v.st.Mode != board.ItemModal {
		v.title.Blur()
		v.desc.Blur()
	}
	syncPane(&v.lists, listEntries(v.st.Lists), listID)
	syncPane(&v.items, itemEntries(v.st.Items), itemID)
}

func (v *boardView) cursorList() *model.List {
	if e, ok := v.lists.SelectedItem().(listEntry); ok {
		l := e.List
		return &l
	}
	return nil
}

func (v *boardView) cursorItem() *model.Item {
	if e, ok := v.items.SelectedItem().(itemEntry); ok {
		it := e.Item
		return &it
	}
	return nil
}

func (v *boardView) update(m *app, msg tea.Msg) tea.Cmd {
	k, isKey := msg.(tea.KeyMsg)
	if !isKey {
		return v.forward(msg)
	}
	if v.confirm != nil {
		return v.answer(m, k)
	}
	switch v.st.Mode {
	case board.ListModal:
		return v.updateListEditor(m, k)
	case board.ItemModal:
		return v.updateItemEditor(m, k)
	case board.ShareModal:
		return v.updateShare(m, k)
	}

	switch {
	case key.Matches(k, keys.Quit):
		return tea.Quit
	case key.Matches(k, keys.Logout):
		m.opt.Session.Logout()
		return nil
	case key.Matches(k, keys.Pane):
		if v.st.Selected != nil && v.focus == listsPane {
			v.focus = itemsPane
		} else {
			v.focus = listsPane
		}
		return nil
	case k.String() == "esc":
		if v.st.Selected != nil {
			v.vm.Deselect()
			v.refresh()
		}
		return nil
	case key.Matches(k, keys.Refresh):
		return m.do(v.vm.LoadLists)
	case key.Matches(k, keys.NewList):
		v.openListEditor(nil)
		return textinput.Blink
	case key.Matches(k, keys.Add):
		return v.openItemEditor(m, nil)
	case key.Matches(k, keys.Share):
		return m.do(v.vm.OpenShareModal)
	case key.Matches(k, keys.Revoke):
		if v.st.Selected != nil && v.st.Selected.Shared() {
			return m.do(v.vm.RevokeShare)
		}
		return nil
	case key.Matches(k, keys.Copy):
		return v.copyLink(m)
	}

	if v.focus == listsPane {
		return v.updateLists(m, k)
	}
	return v.updateItems(m, k)
}

func (v *boardView) updateLists(m *app, k tea.KeyMsg) tea.Cmd {
	l := v.cursorList()
	switch {
	case key.Matches(k, keys.Select):
		if l == nil {
			return nil
		}
		v.focus = itemsPane
		id := l.ID
		return m.do(func(ctx context.Context) error { return v.vm.SelectList(ctx, id) })
	case key.Matches(k, keys.Edit):
		if l != nil {
			v.openListEditor(l)
			return textinput.Blink
		}
		return nil
	case key.Matches(k, keys.Delete):
		if l == nil {
			return nil
		}
		id := l.ID
		v.confirm = &confirmPrompt{
			prompt: fmt.Sprintf("Delete list %q?", l.Title),
			run:    func(ctx context.Context) error { return v.vm.DeleteList(ctx, id, always) },
		}
		return nil
	}
	var cmd tea.Cmd
	v.lists, cmd = v.lists.Update(k)
	return cmd
}

func (v *boardView) updateItems(m *app, k tea.KeyMsg) tea.Cmd {
	it := v.cursorItem()
	switch {
	case key.Matches(k, keys.Toggle):
		if it == nil {
			return nil
		}
		id := it.ID
		return m.do(func(ctx context.Context) error { return v.vm.ToggleItem(ctx, id) })
	case key.Matches(k, keys.Edit):
		if it != nil {
			return v.openItemEditor(m, it)
		}
		return nil
	case key.Matches(k, keys.Delete):
		if it == nil {
			return nil
		}
		id := it.ID
		v.confirm = &confirmPrompt{
			prompt: fmt.Sprintf("Delete %q?", it.Name),
			run:    func(ctx context.Context) error { return v.vm.DeleteItem(ctx, id, always) },
		}
		return nil
	}
	var cmd tea.Cmd
	v.items, cmd = v.items.Update(k)
	return cmd
}

func (v *boardView) forward(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	switch {
	case v.st.Mode == board.ListModal && v.field == 1:
		v.desc, cmd = v.desc.Update(msg)
	case v.st.Mode == board.ListModal || v.st.Mode == board.ItemModal:
		v.title, cmd = v.title.Update(msg)
	}
	return cmd
}

func (v *boardView) answer(m *app, k tea.KeyMsg) tea.Cmd {
	c := v.confirm
	switch k.String() {
	case "y", "Y":
		v.confirm = nil
		return m.do(c.run)
	case "n", "N", "esc":
		v.confirm = nil
	}
	return nil
}

// ---------------------------------------------------
// Editors
// ---------------------------------------------------

func (v *boardView) openListEditor(l *model.List) {
	v.vm.OpenListModal(l)
	v.refresh()
	v.title.SetValue(v.st.ListDraft.Title)
	v.desc.SetValue("")
	if d := v.st.ListDraft.Description; d != nil {
		v.desc.SetValue(*d)
	}
	v.title.CursorEnd()
	v.field = 0
	v.title.Focus()
	v.desc.Blur()
}

func (v *boardView) openItemEditor(m *app, it *model.Item) tea.Cmd {
	if err := v.vm.OpenItemModal(it); err != nil {
		m.report(err)
		return nil
	}
	v.refresh()
	v.title.SetValue(v.st.ItemDraft.Name)
	v.title.CursorEnd()
	v.title.Focus()
	return textinput.Blink
}

func (v *boardView) closeEditor() {
	v.vm.CloseModal()
	v.title.Blur()
	v.desc.Blur()
	v.refresh()
}

func (v *boardView) updateListEditor(m *app, k tea.KeyMsg) tea.Cmd {
	switch k.String() {
	case "esc":
		v.closeEditor()
		return nil
	case "tab", "shift+tab":
		v.field = 1 - v.field
		if v.field == 0 {
			v.title.Focus()
			v.desc.Blur()
		} else {
			v.desc.Focus()
			v.title.Blur()
		}
		return nil
	case "enter":
		v.vm.SetListDraft(v.title.Value(), v.desc.Value())
		return m.do(v.vm.SaveList)
	}
	return v.forward(k)
}

func (v *boardView) updateItemEditor(m *app, k tea.KeyMsg) tea.Cmd {
	switch k.String() {
	case "esc":
		v.closeEditor()
		return nil
	case "enter":
		v.vm.SetItemDraft(v.title.Value(), v.st.ItemDraft.Checked)
		return m.do(v.vm.SaveItem)
	}
	return v.forward(k)
}

func (v *boardView) updateShare(m *app, k tea.KeyMsg) tea.Cmd {
	switch {
	case k.String() == "esc", key.Matches(k, keys.Quit):
		v.closeEditor()
		return nil
	case key.Matches(k, keys.Copy):
		return v.copyLink(m)
	case key.Matches(k, keys.Revoke):
		return m.do(v.vm.RevokeShare)
	}
	return nil
}

func (v *boardView) shareURL(m *app) string {
	if v.st.ShareURL != "" {
		return v.st.ShareURL
	}
	if v.st.Selected != nil && v.st.Selected.Shared() {
		return route.SharedURL(m.opt.Deps.ShareBaseURL, v.st.Selected.Token())
	}
	return ""
}

func (v *boardView) copyLink(m *app) tea.Cmd {
	url := v.shareURL(m)
	if url == "" {
		m.status = "list is not shared"
		return nil
	}
	return func() tea.Msg {
		if err := copyToClipboard(url); err != nil {
			return statusMsg("copy failed: " + err.Error())
		}
		return statusMsg("link copied")
	}
}

// ---------------------------------------------------
// View
// ---------------------------------------------------

func (v *boardView) view(m *app) string {
	w, h := m.width, m.height
	leftW := w / 3
	if leftW < 20 {
		leftW = 20
	}
	rightW := w - leftW - 4
	bodyH := h - 8

	v.lists.SetSize(leftW-4, bodyH)
	left := panelString(v.lists.View(), v.focus == listsPane)

	right := panelString(v.itemsBody(rightW-4, bodyH), v.focus == itemsPane)
	body := lipgloss.JoinHorizontal(lipgloss.Top, left, right)

	title := fmt.Sprintf("%d lists", len(v.st.Lists))
	if v.st.Polling {
		title += "  " + mutedStyle.Render("live")
	}
	out := joinLines(m.header(title), body, v.modal(m))
	return joinLines(out, m.footer(v.st.Notice, v.help()))
}

func (v *boardView) itemsBody(w, h int) string {
	if v.st.Selected == nil {
		v.items.SetSize(w, h)
		return mutedStyle.Render("select a list to see its items")
	}
	var lines []string
	if d := v.st.Selected.Desc(); d != "" {
		lines = append(lines, mutedStyle.Render(truncate(d, w)))
	}
	lines = append(lines, progressLine(v.st.CompletedCount, len(v.st.Items), w-16))
	v.items.SetSize(w, h-len(lines))
	lines = append(lines, v.items.View())
	return joinLines(lines...)
}

func (v *boardView) modal(m *app) string {
	if v.confirm != nil {
		return modalStyle.Render(v.confirm.prompt + "  " + helpStyle.Render("y/n"))
	}
	switch v.st.Mode {
	case board.ListModal:
		head := "New list"
		if v.st.Editing == board.Edit {
			head = "Edit list"
		}
		return modalStyle.Render(joinLines(titleStyle.Render(head), v.title.View(), v.desc.View()))
	case board.ItemModal:
		head := "Add item"
		if v.st.Editing == board.Edit {
			head = "Edit item"
		}
		return modalStyle.Render(joinLines(titleStyle.Render(head), v.title.View()))
	case board.ShareModal:
		name := ""
		if v.st.Selected != nil {
			name = v.st.Selected.Title
		}
		return modalStyle.Render(joinLines(
			titleStyle.Render("Share "+name),
			"Anyone signed in with this link can view and edit the list:",
			accentStyle.Render(v.shareURL(m)),
			helpLine(keys.Copy, keys.Revoke, key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "close"))),
		))
	}
	return ""
}

func (v *boardView) help() string {
	switch v.st.Mode {
	case board.ListModal:
		return helpLine(
			key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "next field")),
			key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "save")),
			key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "cancel")),
		)
	case board.ItemModal, board.ShareModal:
		return ""
	}
	if v.focus == itemsPane {
		return helpLine(keys.Add, keys.Toggle, keys.Edit, keys.Delete, keys.Share, keys.Pane, keys.Logout, keys.Quit)
	}
	return helpLine(keys.Select, keys.NewList, keys.Edit, keys.Delete, keys.Share, keys.Pane, keys.Logout, keys.Quit)
}
