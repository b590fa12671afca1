// Package tui is the full-screen client: a sign-in form, the board and the
// shared-list viewer, all rendered from board view-model snapshots.
package tui

import (
	"context"
	"errors"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/sirupsen/logrus"

	"github.com/Makepad-fr/listify/internal/board"
	"github.com/Makepad-fr/listify/internal/model"
	"github.com/Makepad-fr/listify/internal/route"
)

// Session is what the UI needs from session.Store.
type Session interface {
	board.Session
	board.Authenticator
	Logout()
}

type Options struct {
	Session Session
	Deps    board.Deps
	Route   route.Route
	Theme   string
	Log     logrus.FieldLogger
}

type screen int

const (
	authScreen screen = iota
	boardScreen
	sharedScreen
)

type (
	identityMsg struct {
		user *model.User
		ok   bool
	}
	changedMsg struct{ from screen }
	doneMsg    struct{ err error }
	openedMsg  struct{ err error }
	statusMsg  string
)

// Run blocks until the user quits or ctx ends.
func Run(ctx context.Context, opt Options) error {
	applyTheme(opt.Theme)
	m := newApp(ctx, opt)
	defer m.close()

	_, err := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx)).Run()
	if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return nil
	}
	return err
}

type app struct {
	ctx context.Context
	opt Options
	log logrus.FieldLogger

	screen        screen
	user          *model.User
	width, height int

	identity    <-chan *model.User
	unsubscribe func()

	auth   *authView
	board  *boardView
	shared *sharedView
	// token from the start route, opened once the first identity arrives
	pendingShare string

	spin   spinner.Model
	busy   int
	status string
}

func newApp(ctx context.Context, opt Options) *app {
	if opt.Log == nil {
		opt.Log = logrus.StandardLogger()
	}
	m := &app{
		ctx: ctx,
		opt: opt,
		log: opt.Log,
		spin: spinner.New(
			spinner.WithSpinner(spinner.MiniDot),
			spinner.WithStyle(accentStyle),
		),
	}
	m.width, m.height = widthHeight()
	m.identity, m.unsubscribe = opt.Session.Subscribe()
	m.auth = newAuthView(board.NewAuthForm(opt.Session, opt.Log))

	vm := board.NewBoard(opt.Deps)
	vm.Start(ctx)
	m.board = newBoardView(vm)

	if opt.Route.Kind == route.Shared {
		m.pendingShare = opt.Route.Token
	}
	return m
}

func (m *app) close() {
	m.unsubscribe()
	if m.shared != nil {
		m.shared.vm.Close()
	}
	m.board.vm.Close()
}

func (m *app) Init() tea.Cmd {
	return tea.Batch(
		waitIdentity(m.identity),
		waitChange(m.ctx, m.board.vm.Changes(), boardScreen),
		m.spin.Tick,
	)
}

func waitIdentity(ch <-chan *model.User) tea.Cmd {
	return func() tea.Msg {
		u, ok := <-ch
		return identityMsg{user: u, ok: ok}
	}
}

func waitChange(ctx context.Context, ch <-chan struct{}, from screen) tea.Cmd {
	return func() tea.Msg {
		select {
		case <-ctx.Done():
			return nil
		case _, ok := <-ch:
			if !ok {
				return nil
			}
			return changedMsg{from: from}
		}
	}
}

// do runs fn off the UI loop; the view-models record the outcome.
func (m *app) do(fn func(ctx context.Context) error) tea.Cmd {
	m.busy++
	ctx := m.ctx
	return func() tea.Msg { return doneMsg{err: fn(ctx)} }
}

func (m *app) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		return m, nil

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
		m.status = ""

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spin, cmd = m.spin.Update(msg)
		return m, cmd

	case identityMsg:
		if !msg.ok {
			return m, nil
		}
		return m, tea.Batch(m.onIdentity(msg.user), waitIdentity(m.identity))

	case changedMsg:
		switch msg.from {
		case boardScreen:
			m.board.refresh()
			return m, waitChange(m.ctx, m.board.vm.Changes(), boardScreen)
		case sharedScreen:
			if m.shared == nil {
				return m, nil
			}
			m.shared.refresh()
			cmd := waitChange(m.ctx, m.shared.vm.Changes(), sharedScreen)
			if m.shared.st.RedirectHome {
				m.leaveShared()
				return m, nil
			}
			return m, cmd
		}
		return m, nil

	case doneMsg:
		if m.busy > 0 {
			m.busy--
		}
		m.report(msg.err)
		return m, nil

	case openedMsg:
		if m.busy > 0 {
			m.busy--
		}
		if errors.Is(msg.err, board.ErrNotAuthenticated) {
			m.leaveShared()
		}
		return m, nil

	case statusMsg:
		m.status = string(msg)
		return m, nil
	}

	switch m.screen {
	case authScreen:
		return m, m.auth.update(m, msg)
	case sharedScreen:
		if m.shared != nil {
			return m, m.shared.update(m, msg)
		}
	}
	return m, m.board.update(m, msg)
}

func (m *app) onIdentity(u *model.User) tea.Cmd {
	m.user = u
	if tok := m.pendingShare; tok != "" {
		m.pendingShare = ""
		return m.openShared(tok)
	}
	if m.screen == sharedScreen {
		// the shared view follows the session itself
		return nil
	}
	if u == nil {
		m.screen = authScreen
		m.auth.reset()
		return nil
	}
	m.screen = boardScreen
	return nil
}

func (m *app) openShared(token string) tea.Cmd {
	if m.shared != nil {
		m.shared.vm.Close()
	}
	vm := board.NewShared(m.opt.Deps)
	m.shared = newSharedView(vm)
	m.screen = sharedScreen
	m.busy++
	ctx := m.ctx
	return tea.Batch(
		waitChange(ctx, vm.Changes(), sharedScreen),
		func() tea.Msg { return openedMsg{err: vm.Open(ctx, token)} },
	)
}

// leaveShared drops the viewer and goes home.
func (m *app) leaveShared() {
	if m.shared != nil {
		m.shared.vm.Close()
		m.shared = nil
	}
	if m.user == nil {
		m.screen = authScreen
		m.auth.reset()
		return
	}
	m.screen = boardScreen
}

func (m *app) report(err error) {
	switch {
	case err == nil, errors.Is(err, board.ErrCancelled), errors.Is(err, board.ErrClosed):
	case errors.Is(err, board.ErrNoSelection), errors.Is(err, board.ErrNoModal):
		m.status = err.Error()
	default:
		m.log.WithError(err).Debug("action failed")
	}
}

func (m *app) View() string {
	switch m.screen {
	case authScreen:
		return m.auth.view(m)
	case sharedScreen:
		if m.shared != nil {
			return m.shared.view(m)
		}
	}
	return m.board.view(m)
}

// header is the top line shared by the signed-in screens.
func (m *app) header(title string) string {
	line := titleStyle.Render("listify") + "  " + title
	if m.user != nil {
		line += "  " + mutedStyle.Render(m.user.Name)
	}
	if m.busy > 0 {
		line += " " + m.spin.View()
	}
	return line
}

func (m *app) footer(n board.Notice, help string) string {
	var notice string
	switch {
	case n.Text != "" && n.Level == board.Error:
		notice = errorStyle.Render("✖ " + n.Text)
	case n.Text != "":
		notice = successStyle.Render("✔ " + n.Text)
	}
	status := ""
	if m.status != "" {
		status = mutedStyle.Render(m.status)
	}
	return joinLines(notice, status, help)
}
