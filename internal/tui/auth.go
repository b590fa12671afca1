package tui

import (
	"context"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/Makepad-fr/listify/internal/board"
)

const (
	fieldName = iota
	fieldEmail
	fieldPassword
)

type authView struct {
	form   *board.AuthForm
	inputs [3]textinput.Model
	focus  int
}

func newAuthView(form *board.AuthForm) *authView {
	v := &authView{form: form}
	for i, p := range []string{"Name", "Email", "Password"} {
		ti := textinput.New()
		ti.Prompt = "> "
		ti.Placeholder = p
		ti.CharLimit = 200
		v.inputs[i] = ti
	}
	v.inputs[fieldPassword].EchoMode = textinput.EchoPassword
	v.inputs[fieldPassword].EchoCharacter = '•'
	v.reset()
	return v
}

// reset empties the form and focuses the first visible field.
func (v *authView) reset() {
	for i := range v.inputs {
		v.inputs[i].SetValue("")
	}
	v.focusOn(v.first())
}

func (v *authView) registering() bool { return v.form.State().Mode == board.RegisterMode }

func (v *authView) first() int {
	if v.registering() {
		return fieldName
	}
	return fieldEmail
}

func (v *authView) focusOn(i int) {
	v.focus = i
	for j := range v.inputs {
		if j == i {
			v.inputs[j].Focus()
		} else {
			v.inputs[j].Blur()
		}
	}
}

func (v *authView) move(delta int) {
	first := v.first()
	n := fieldPassword - first + 1
	v.focusOn(first + ((v.focus-first+delta)%n+n)%n)
}

func (v *authView) update(m *app, msg tea.Msg) tea.Cmd {
	if key, ok := msg.(tea.KeyMsg); ok {
		switch key.String() {
		case "esc":
			return tea.Quit
		case "tab", "down":
			v.move(1)
			return nil
		case "shift+tab", "up":
			v.move(-1)
			return nil
		case "ctrl+t":
			v.form.ToggleMode()
			v.focusOn(v.first())
			return nil
		case "enter":
			if v.focus != fieldPassword {
				v.move(1)
				return nil
			}
			return v.submit(m)
		}
	}
	var cmd tea.Cmd
	v.inputs[v.focus], cmd = v.inputs[v.focus].Update(msg)
	return cmd
}

func (v *authView) submit(m *app) tea.Cmd {
	name := strings.TrimSpace(v.inputs[fieldName].Value())
	email := strings.TrimSpace(v.inputs[fieldEmail].Value())
	password := v.inputs[fieldPassword].Value()
	v.inputs[fieldPassword].SetValue("")

	if v.registering() {
		return m.do(func(ctx context.Context) error {
			return v.form.Register(ctx, name, email, password)
		})
	}
	return m.do(func(ctx context.Context) error {
		return v.form.Login(ctx, email, password)
	})
}

func (v *authView) view(m *app) string {
	st := v.form.State()
	title, toggle := "Sign in", "ctrl+t: create an account"
	if st.Mode == board.RegisterMode {
		title, toggle = "Create account", "ctrl+t: sign in instead"
	}
	if st.Loading || m.busy > 0 {
		title += " " + m.spin.View()
	}

	lines := []string{titleStyle.Render("listify") + "  " + title, ""}
	for i := v.first(); i <= fieldPassword; i++ {
		lines = append(lines, v.inputs[i].View())
	}
	lines = append(lines, "")
	if st.Error != "" {
		lines = append(lines, errorStyle.Render("✖ "+st.Error))
	}
	if st.Notice != "" {
		lines = append(lines, successStyle.Render("✔ "+st.Notice))
	}
	lines = append(lines, helpStyle.Render("tab: next field • enter: submit • "+toggle+" • esc: quit"))
	return modalStyle.Render(strings.Join(lines, "\n"))
}
