package cli

import (
	"bufio"
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/Makepad-fr/listify/internal/board"
	"github.com/Makepad-fr/listify/internal/session"
	"github.com/Makepad-fr/listify/internal/ui"
)

// ---------------------------------------------------
// Auth subcommands
// ---------------------------------------------------

// prompter reads answers line by line from the configured input.
type prompter struct{ sc *bufio.Scanner }

func (e *env) prompter() *prompter { return &prompter{sc: bufio.NewScanner(e.opt.In)} }

func (p *prompter) ask(label string) (string, error) {
	ui.Printf("%s: ", label)
	if !p.sc.Scan() {
		if err := p.sc.Err(); err != nil {
			return "", err
		}
		return "", fmt.Errorf("no input for %s", strings.ToLower(label))
	}
	return strings.TrimSpace(p.sc.Text()), nil
}

func (e *env) doAuthLogin(ctx context.Context) int {
	p := e.prompter()
	email, err := p.ask("Email")
	if err != nil {
		ui.Fail("read: " + err.Error())
		return 1
	}
	password, err := p.ask("Password")
	if err != nil {
		ui.Fail("read: " + err.Error())
		return 1
	}

	form := board.NewAuthForm(e.store, e.log)
	if err := form.Login(ctx, email, password); err != nil {
		ui.Fail(form.State().Error)
		return 1
	}
	ui.OK("logged in as " + e.store.Current().Name)
	return 0
}

func (e *env) doAuthRegister(ctx context.Context) int {
	p := e.prompter()
	var answers [3]string
	for i, label := range []string{"Name", "Email", "Password"} {
		v, err := p.ask(label)
		if err != nil {
			ui.Fail("read: " + err.Error())
			return 1
		}
		answers[i] = v
	}

	form := board.NewAuthForm(e.store, e.log)
	if err := form.Register(ctx, answers[0], answers[1], answers[2]); err != nil {
		ui.Fail(form.State().Error)
		return 1
	}
	if n := form.State().Notice; n != "" {
		ui.OK(n)
		ui.Hint("run `listify auth login`")
		return 0
	}
	ui.OK("account created, logged in as " + e.store.Current().Name)
	return 0
}

func (e *env) doAuthLogout() int {
	ti := e.store.Info()
	if ti != nil && ti.Source == "env" {
		ui.OK("token is provided by " + session.TokenEnv + " env var (nothing to delete)")
		return 0
	}
	e.store.Logout()
	ui.OK("logged out")
	return 0
}

func (e *env) doAuthStatus() int {
	ti := e.store.Info()
	t := ui.Current()
	if ti == nil {
		ui.Println(ui.C(t.Muted, "not logged in"))
		ui.Println("Run: listify auth login")
		return 0
	}
	if u := e.store.Current(); u != nil {
		ui.Printf("user: %s <%s>\n", u.Name, u.Email)
	}
	ui.Printf("source: %s\n", ti.Source)
	exp := ti.ExpiresAt
	if exp == nil {
		exp = session.Expiry(ti.Token)
	}
	switch {
	case exp == nil:
		ui.Println("expires: (unknown)")
	case exp.Before(time.Now()):
		ui.Printf("expires: %s %s\n", exp.UTC().Format(time.RFC3339), ui.C(t.Error, "(expired)"))
	default:
		ui.Printf("expires: %s (in %s)\n", exp.UTC().Format(time.RFC3339), time.Until(*exp).Round(time.Minute))
	}
	ui.Println("api: " + e.client.BaseURL())
	ui.Println("env override: " + session.TokenEnv)
	return 0
}

// whoami shows the identity the API reports and, for a JWT, its claims
// (decoded locally, unverified).
func (e *env) doAuthWhoAmI() int {
	if code := e.ensureAuth(); code != 0 {
		return code
	}
	u := e.store.Current()
	ui.Printf("id: %d\nname: %s\nemail: %s\n", u.ID, u.Name, u.Email)

	claims, ok := session.Claims(e.store.Token())
	if !ok {
		ui.Println("Opaque token (cannot introspect locally).")
		return 0
	}
	keys := make([]string, 0, len(claims))
	for k := range claims {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	ui.Println("token claims:")
	for _, k := range keys {
		v := claims[k]
		if f, isNum := v.(float64); isNum {
			v = strconv.FormatFloat(f, 'f', -1, 64)
		}
		ui.Printf("  %s: %v\n", k, v)
	}
	return 0
}
