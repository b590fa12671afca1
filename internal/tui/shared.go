package tui

import (
	"context"
	"fmt"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/Makepad-fr/listify/internal/board"
	"github.com/Makepad-fr/listify/internal/model"
)

// sharedView shows one list opened from a link.
type sharedView struct {
	vm      *board.Shared
	st      board.SharedState
	items   list.Model
	name    textinput.Model
	confirm *confirmPrompt
}

func newSharedView(vm *board.Shared) *sharedView {
	v := &sharedView{
		vm:    vm,
		items: newPane(itemDelegate{}, "Shared list"),
		name:  newInput("Item name", 200),
	}
	v.refresh()
	return v
}

func (v *sharedView) refresh() {
	v.st = v.vm.Snapshot()
	if v.st.List != nil {
		v.items.Title = v.st.List.Title
	}
	if v.st.Mode != board.ItemModal {
		v.name.Blur()
	}
	syncPane(&v.items, itemEntries(v.st.Items), itemID)
}

func (v *sharedView) cursorItem() *model.Item {
	if e, ok := v.items.SelectedItem().(itemEntry); ok {
		it := e.Item
		return &it
	}
	return nil
}

func (v *sharedView) update(m *app, msg tea.Msg) tea.Cmd {
	k, isKey := msg.(tea.KeyMsg)
	if !isKey {
		if v.st.Mode == board.ItemModal {
			var cmd tea.Cmd
			v.name, cmd = v.name.Update(msg)
			return cmd
		}
		return nil
	}
	if v.confirm != nil {
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
	if v.st.Mode == board.ItemModal {
		switch k.String() {
		case "esc":
			v.vm.CloseModal()
			v.refresh()
			return nil
		case "enter":
			v.vm.SetItemDraft(v.name.Value(), v.st.ItemDraft.Checked)
			return m.do(v.vm.SaveItem)
		}
		var cmd tea.Cmd
		v.name, cmd = v.name.Update(k)
		return cmd
	}

	it := v.cursorItem()
	switch {
	case key.Matches(k, keys.Quit):
		return tea.Quit
	case key.Matches(k, keys.Back):
		m.leaveShared()
		return nil
	case key.Matches(k, keys.Logout):
		m.opt.Session.Logout()
		return nil
	case key.Matches(k, keys.Refresh):
		return m.do(v.vm.RefreshItems)
	case key.Matches(k, keys.Add):
		return v.openEditor(m, nil)
	case key.Matches(k, keys.Edit):
		if it != nil {
			return v.openEditor(m, it)
		}
		return nil
	case key.Matches(k, keys.Toggle):
		if it == nil {
			return nil
		}
		id := it.ID
		return m.do(func(ctx context.Context) error { return v.vm.ToggleItem(ctx, id) })
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

func (v *sharedView) openEditor(m *app, it *model.Item) tea.Cmd {
	if err := v.vm.OpenItemModal(it); err != nil {
		m.report(err)
		return nil
	}
	v.refresh()
	v.name.SetValue(v.st.ItemDraft.Name)
	v.name.CursorEnd()
	v.name.Focus()
	return textinput.Blink
}

func (v *sharedView) view(m *app) string {
	w, h := m.width-4, m.height-8
	var body string
	switch {
	case v.st.Loading:
		body = m.spin.View() + " opening shared list…"
	case v.st.NotFound:
		body = errorStyle.Render("This list was not found or the link has expired.")
	case v.st.List == nil:
		body = mutedStyle.Render("nothing to show")
	default:
		var lines []string
		if d := v.st.List.Desc(); d != "" {
			lines = append(lines, mutedStyle.Render(truncate(d, w)))
		}
		lines = append(lines, progressLine(v.st.CompletedCount, len(v.st.Items), w-16))
		v.items.SetSize(w, h-len(lines))
		lines = append(lines, v.items.View())
		body = joinLines(lines...)
	}

	var modal string
	switch {
	case v.confirm != nil:
		modal = modalStyle.Render(v.confirm.prompt + "  " + helpStyle.Render("y/n"))
	case v.st.Mode == board.ItemModal:
		head := "Add item"
		if v.st.Editing == board.Edit {
			head = "Edit item"
		}
		modal = modalStyle.Render(joinLines(titleStyle.Render(head), v.name.View()))
	}

	title := accentStyle.Render("shared")
	if v.st.Polling {
		title += "  " + mutedStyle.Render("live")
	}
	help := helpLine(keys.Add, keys.Toggle, keys.Edit, keys.Delete, keys.Back, keys.Logout, keys.Quit)
	if v.st.Mode == board.ItemModal {
		help = ""
	}
	return joinLines(m.header(title), panelString(body, true), modal, m.footer(v.st.Notice, help))
}
