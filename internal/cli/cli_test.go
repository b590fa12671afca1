package cli_test

import (
	"bytes"
	"context"
	"os"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Makepad-fr/listify/internal/api/apitest"
	"github.com/Makepad-fr/listify/internal/cli"
	"github.com/Makepad-fr/listify/internal/config"
	"github.com/Makepad-fr/listify/internal/logging"
	"github.com/Makepad-fr/listify/internal/session"
	"github.com/Makepad-fr/listify/internal/ui"
)

type runner struct {
	t        *testing.T
	srv      *apitest.Server
	fs       afero.Fs
	group    bool
	out, err bytes.Buffer
}

func newRunner(t *testing.T) *runner {
	t.Helper()
	t.Setenv(session.TokenEnv, "")
	r := &runner{t: t, srv: apitest.New(t), fs: afero.NewMemMapFs()}
	ui.SetOutput(&r.out, &r.err)
	ui.SetTheme("mono")
	t.Cleanup(func() {
		ui.SetOutput(os.Stdout, os.Stderr)
		ui.SetColorForcing(false, false)
		ui.SetTheme("classic")
	})
	return r
}

// run executes one command line with input as the answers to prompts.
func (r *runner) run(input string, args ...string) int {
	r.out.Reset()
	r.err.Reset()
	return cli.Run(context.Background(), args, cli.Options{
		Group: r.group,
		Config: config.Config{
			APIURL:       r.srv.URL,
			ShareBaseURL: r.srv.ShareBaseURL,
			PollInterval: time.Second,
			Timeout:      5 * time.Second,
			Home:         "/home/u/.listify",
		},
		Log: logging.Discard(),
		Fs:  r.fs,
		In:  strings.NewReader(input),
	})
}

func (r *runner) login() {
	r.t.Helper()
	r.srv.AddUser("Ana", "a@x.com", "p")
	require.Equal(r.t, 0, r.run("a@x.com\np\n", "auth", "login"), r.err.String())
}

func TestUsageErrors(t *testing.T) {
	r := newRunner(t)
	assert.Equal(t, 2, r.run(""))
	assert.Equal(t, 0, r.run("", "help"))
	assert.Contains(t, r.out.String(), "Subcommands:")

	assert.Equal(t, 2, r.run("", "frobnicate"))
	assert.Contains(t, r.err.String(), "unknown subcommand: frobnicate")

	assert.Equal(t, 2, r.run("", "done", "abc"))
	assert.Contains(t, r.err.String(), "not an id: abc")
	assert.Equal(t, 2, r.run("", "add", "1"))
	assert.Equal(t, 0, r.srv.TotalHits())
}

func TestCommandsNeedLogin(t *testing.T) {
	r := newRunner(t)
	assert.Equal(t, 2, r.run("", "ls"))
	assert.Contains(t, r.err.String(), "not logged in")

	assert.Equal(t, 0, r.run("", "auth", "status"))
	assert.Contains(t, r.out.String(), "not logged in")
}

func TestLoginFailureShowsDetail(t *testing.T) {
	r := newRunner(t)
	r.srv.AddUser("Ana", "a@x.com", "p")
	assert.Equal(t, 1, r.run("a@x.com\nwrong\n", "auth", "login"))
	assert.Contains(t, r.err.String(), "Incorrect email or password")

	exists, err := afero.Exists(r.fs, "/home/u/.listify/credentials.json")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestRegisterSignsIn(t *testing.T) {
	r := newRunner(t)
	require.Equal(t, 0, r.run("Bo\nb@x.com\npw\n", "auth", "register"), r.err.String())
	assert.Contains(t, r.out.String(), "logged in as Bo")

	require.Equal(t, 0, r.run("", "auth", "whoami"))
	assert.Contains(t, r.out.String(), "email: b@x.com")
	assert.Contains(t, r.out.String(), "token claims:")
	assert.Contains(t, r.out.String(), "sub: ")

	require.Equal(t, 0, r.run("", "auth", "status"))
	assert.Contains(t, r.out.String(), "source: file")
	assert.Contains(t, r.out.String(), "user: Bo <b@x.com>")

	require.Equal(t, 0, r.run("", "auth", "logout"))
	require.Equal(t, 2, r.run("", "auth", "whoami"))
}

func TestListAndItemCommands(t *testing.T) {
	r := newRunner(t)
	r.login()

	require.Equal(t, 0, r.run("", "mklist", "Groceries"), r.err.String())
	assert.Contains(t, r.out.String(), `"Groceries"`)
	lists := r.srv.ListsOf(1)
	require.Len(t, lists, 1)
	id := lists[0].ID
	sid := itoa(id)

	require.Equal(t, 0, r.run("", "add", sid, "Oat", "milk"))
	require.Equal(t, 0, r.run("", "add", sid, "Eggs"))
	items := r.srv.ItemsOf(id)
	require.Len(t, items, 2)
	assert.Equal(t, "Oat milk", items[0].Name)

	require.Equal(t, 0, r.run("", "done", itoa(items[1].ID)))
	assert.Contains(t, r.out.String(), "checked Eggs")

	require.Equal(t, 0, r.run("", "ls"))
	assert.Contains(t, r.out.String(), "Lists (1)")
	assert.Contains(t, r.out.String(), "Groceries")
	assert.Contains(t, r.out.String(), "1/2")

	r.group = true
	require.Equal(t, 0, r.run("", "items", sid))
	out := r.out.String()
	assert.Contains(t, out, "Pending")
	assert.Contains(t, out, "[ ] Oat milk")
	assert.Contains(t, out, "[x] Eggs")
	assert.Less(t, strings.Index(out, "Oat milk"), strings.Index(out, "Done"))

	require.Equal(t, 0, r.run("", "rm", itoa(items[0].ID)))
	assert.Len(t, r.srv.ItemsOf(id), 1)

	require.Equal(t, 0, r.run("", "rmlist", sid))
	assert.Empty(t, r.srv.ListsOf(1))

	assert.Equal(t, 1, r.run("", "rmlist", sid))
	assert.Contains(t, r.err.String(), "not found")
}

func TestShareCommands(t *testing.T) {
	r := newRunner(t)
	r.login()
	require.Equal(t, 0, r.run("", "mklist", "Trip"))
	sid := itoa(r.srv.ListsOf(1)[0].ID)

	require.Equal(t, 0, r.run("", "share", sid))
	assert.Contains(t, r.out.String(), "https://listify.test/shared/")
	assert.True(t, r.srv.ListsOf(1)[0].Shared())

	require.Equal(t, 0, r.run("", "unshare", sid))
	assert.False(t, r.srv.ListsOf(1)[0].Shared())

	assert.Equal(t, 2, r.run("", "open", "https://listify.test/lists/4"))
	assert.Contains(t, r.err.String(), "not a share link")
}

func itoa(id int64) string { return strconv.FormatInt(id, 10) }
