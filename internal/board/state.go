package board

import (
	"errors"

	"github.com/Makepad-fr/listify/internal/model"
)

var (
	ErrTitleRequired    = errors.New("list title is required")
	ErrNameRequired     = errors.New("item name is required")
	ErrNoSelection      = errors.New("no list selected")
	ErrUnknownList      = errors.New("unknown list")
	ErrNoModal          = errors.New("no editor open")
	ErrCancelled        = errors.New("cancelled")
	ErrShareNotFound    = errors.New("list not found or link expired")
	ErrNotAuthenticated = errors.New("sign in required")
	ErrClosed           = errors.New("view closed")
)

// Mode is the board's modal state.
type Mode int

const (
	NoSelection Mode = iota
	ListSelected
	ListModal
	ItemModal
	ShareModal
)

func (m Mode) String() string {
	switch m {
	case ListSelected:
		return "list-selected"
	case ListModal:
		return "list-modal"
	case ItemModal:
		return "item-modal"
	case ShareModal:
		return "share-modal"
	}
	return "no-selection"
}

func (m Mode) modal() bool { return m == ListModal || m == ItemModal || m == ShareModal }

// EditKind tells whether an open editor creates or edits.
type EditKind int

const (
	Create EditKind = iota
	Edit
)

type Level int

const (
	Info Level = iota
	Error
)

// Notice is the single line of feedback a view shows.
type Notice struct {
	Level Level
	Text  string
}

// BoardState is a copy of the board for rendering.
type BoardState struct {
	Lists          []model.List
	Selected       *model.List
	Items          []model.Item
	Mode           Mode
	Editing        EditKind
	ListDraft      model.ListInput
	ItemDraft      model.Item
	ShareURL       string
	Notice         Notice
	CompletedCount int
	Polling        bool
}

// SharedState is a copy of the shared viewer for rendering.
type SharedState struct {
	Token          string
	List           *model.List
	Items          []model.Item
	Loading        bool
	NotFound       bool
	RedirectHome   bool
	Mode           Mode
	Editing        EditKind
	ItemDraft      model.Item
	Notice         Notice
	CompletedCount int
	Polling        bool
}
