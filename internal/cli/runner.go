package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spf13/afero"

	"github.com/Makepad-fr/listify/internal/api"
	"github.com/Makepad-fr/listify/internal/config"
	"github.com/Makepad-fr/listify/internal/session"
	"github.com/Makepad-fr/listify/internal/ui"
)

// Options tune output behavior from root flags and carry the wiring.
type Options struct {
	Group  bool // items grouped by pending/done
	Config config.Config
	Log    logrus.FieldLogger
	Fs     afero.Fs  // credential storage; the OS filesystem when nil
	In     io.Reader // answers to prompts; stdin when nil
}

// env is what every networked subcommand works with.
type env struct {
	opt    Options
	log    logrus.FieldLogger
	store  *session.Store
	client *api.Client
}

func connect(ctx context.Context, opt Options) (*env, error) {
	if opt.Log == nil {
		opt.Log = logrus.StandardLogger()
	}
	if opt.Fs == nil {
		opt.Fs = afero.NewOsFs()
	}
	if opt.In == nil {
		opt.In = os.Stdin
	}
	store := session.New(&session.FileTokenStore{Fs: opt.Fs, Dir: opt.Config.Home}, opt.Log)
	client := api.New(opt.Config.APIURL, store,
		api.WithLogger(opt.Log),
		api.WithTimeout(opt.Config.Timeout),
	)
	if err := store.Open(ctx, client.Auth); err != nil {
		return nil, err
	}
	return &env{opt: opt, log: opt.Log, store: store, client: client}, nil
}

// ---------------------------------------------------
// CLI router
// ---------------------------------------------------

// Run dispatches subcommands and returns an exit code (0 ok, 1 error, 2 usage).
func Run(ctx context.Context, args []string, opt Options) int {
	if len(args) == 0 {
		PrintHelp()
		return 2
	}
	cmd, a := args[0], args[1:]

	switch cmd {
	case "help", "-h", "--help":
		PrintHelp()
		return 0
	}
	if !known(cmd) {
		ui.Fail("unknown subcommand: " + cmd)
		ui.Println()
		PrintHelp()
		return 2
	}

	e, err := connect(ctx, opt)
	if err != nil {
		ui.Fail("credentials: " + err.Error())
		return 1
	}

	switch cmd {
	case "board", "ui":
		return e.doBoard(ctx, "")

	case "open":
		if len(a) != 1 {
			ui.Fail("usage: listify open <share-url|token>")
			return 2
		}
		return e.doBoard(ctx, a[0])

	case "auth":
		if len(a) == 0 {
			ui.Fail("usage: listify auth <login|register|logout|status|whoami>")
			return 2
		}
		switch a[0] {
		case "login":
			return e.doAuthLogin(ctx)
		case "register":
			return e.doAuthRegister(ctx)
		case "logout":
			return e.doAuthLogout()
		case "status":
			return e.doAuthStatus()
		case "whoami":
			return e.doAuthWhoAmI()
		}
		ui.Fail("usage: listify auth <login|register|logout|status|whoami>")
		return 2

	case "ls":
		return e.doLists(ctx)

	case "mklist":
		if len(a) == 0 {
			ui.Fail("usage: listify mklist <title...>")
			return 2
		}
		return e.doMakeList(ctx, strings.Join(a, " "))

	case "rmlist", "items", "share", "unshare":
		if len(a) != 1 {
			ui.Fail(fmt.Sprintf("usage: listify %s <listID>", cmd))
			return 2
		}
		id, ok := parseID(cmd, a[0])
		if !ok {
			return 2
		}
		switch cmd {
		case "rmlist":
			return e.doRemoveList(ctx, id)
		case "items":
			return e.doItems(ctx, id)
		case "share":
			return e.doShare(ctx, id)
		}
		return e.doUnshare(ctx, id)

	case "add":
		if len(a) < 2 {
			ui.Fail("usage: listify add <listID> <name...>")
			return 2
		}
		id, ok := parseID(cmd, a[0])
		if !ok {
			return 2
		}
		return e.doAdd(ctx, id, strings.Join(a[1:], " "))

	case "done", "rm":
		if len(a) != 1 {
			ui.Fail(fmt.Sprintf("usage: listify %s <itemID>", cmd))
			return 2
		}
		id, ok := parseID(cmd, a[0])
		if !ok {
			return 2
		}
		if cmd == "done" {
			return e.doToggle(ctx, id)
		}
		return e.doRemove(ctx, id)
	}
	return 2
}

var subcommands = []string{
	"board", "ui", "open", "auth", "ls", "mklist", "rmlist",
	"items", "add", "done", "rm", "share", "unshare",
}

func known(cmd string) bool {
	for _, c := range subcommands {
		if c == cmd {
			return true
		}
	}
	return false
}

func parseID(cmd, raw string) (int64, bool) {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		ui.Fail(cmd + ": not an id: " + raw)
		return 0, false
	}
	return id, true
}

func PrintHelp() {
	ui.Printf(`listify - shared shopping lists in your terminal

Usage:
  listify [flags] <subcommand> [args]

Subcommands:
  board                      Full-screen board (also: ui)
  open <share-url|token>     Open a list someone shared with you
  auth <login|register|logout|status|whoami>
  ls                         Your lists with progress
  mklist <title...>          Create a list
  rmlist <listID>            Delete a list and its items
  items <listID>             Items of a list (-group splits pending/done)
  add <listID> <name...>     Add an item
  done <itemID>              Toggle an item
  rm <itemID>                Remove an item
  share <listID>             Print a share link for a list
  unshare <listID>           Stop sharing a list

Environment:
  LISTIFY_API_URL, LISTIFY_TOKEN, LISTIFY_THEME, LISTIFY_LOG_LEVEL (see .env)

Examples:
  listify auth login
  listify mklist Groceries
  listify add 3 Oat milk
  listify open https://listify.space/shared/AbC123
`)
}

// ensureAuth is the gate for commands that need an identity.
func (e *env) ensureAuth() int {
	if e.store.Current() == nil {
		ui.Fail("not logged in")
		ui.Hint("run `listify auth login` or set " + session.TokenEnv)
		return 2
	}
	return 0
}

// failAPI reports err with the server's detail when there is one.
func (e *env) failAPI(err error, fallback string) int {
	e.log.WithError(err).Debug(fallback)
	msg := api.Message(err, "")
	if msg == "" {
		msg = fallback + ": " + err.Error()
	}
	ui.Fail(msg)
	if api.IsUnauthorized(err) {
		ui.Hint("your session may have expired, run `listify auth login`")
	}
	return 1
}
