package tui

import (
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
)

type keyMap struct {
	Select, NewList, Edit, Delete, Add, Toggle key.Binding
	Share, Copy, Revoke, Pane, Back, Refresh   key.Binding
	Logout, Quit                               key.Binding
}

var keys = keyMap{
	Select:  key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "open")),
	NewList: key.NewBinding(key.WithKeys("n"), key.WithHelp("n", "new list")),
	Edit:    key.NewBinding(key.WithKeys("e"), key.WithHelp("e", "edit")),
	Delete:  key.NewBinding(key.WithKeys("d"), key.WithHelp("d", "delete")),
	Add:     key.NewBinding(key.WithKeys("a"), key.WithHelp("a", "add item")),
	Toggle:  key.NewBinding(key.WithKeys(" "), key.WithHelp("space", "toggle")),
	Share:   key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "share")),
	Copy:    key.NewBinding(key.WithKeys("y"), key.WithHelp("y", "copy link")),
	Revoke:  key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "stop sharing")),
	Pane:    key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "switch pane")),
	Back:    key.NewBinding(key.WithKeys("b", "esc"), key.WithHelp("b", "back")),
	Refresh: key.NewBinding(key.WithKeys("R"), key.WithHelp("R", "refresh")),
	Logout:  key.NewBinding(key.WithKeys("L"), key.WithHelp("L", "log out")),
	Quit:    key.NewBinding(key.WithKeys("q"), key.WithHelp("q", "quit")),
}

var helpView = help.New()

func helpLine(bs ...key.Binding) string { return helpView.ShortHelpView(bs) }
