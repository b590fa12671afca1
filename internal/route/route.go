// Package route maps client locations onto screens: a share link opens the
// shared-list viewer, everything else the main board.
package route

import (
	"net/http"
	"net/url"
	"strings"

	"github.com/gorilla/mux"
)

type Kind int

const (
	Board Kind = iota
	Shared
)

func (k Kind) String() string {
	if k == Shared {
		return "shared"
	}
	return "board"
}

type Route struct {
	Kind  Kind
	Token string // set for Shared
}

const sharedName = "shared"

var table = newTable()

func newTable() *mux.Router {
	r := mux.NewRouter()
	r.Path("/shared/{token}").Name(sharedName)
	r.PathPrefix("/").Name("board")
	return r
}

// Resolve accepts a path or a full URL.
func Resolve(target string) Route {
	u, err := url.Parse(strings.TrimSpace(target))
	if err != nil {
		return Route{Kind: Board}
	}
	path := u.Path
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	req := &http.Request{Method: http.MethodGet, URL: &url.URL{Path: path}, Header: http.Header{}}

	var m mux.RouteMatch
	if table.Match(req, &m) && m.Route.GetName() == sharedName {
		return Route{Kind: Shared, Token: m.Vars["token"]}
	}
	return Route{Kind: Board}
}

// ShareToken pulls a token out of a share URL, a /shared/ path or a bare
// token.
func ShareToken(arg string) (string, bool) {
	arg = strings.TrimSpace(arg)
	if r := Resolve(arg); r.Kind == Shared {
		return r.Token, true
	}
	if arg == "" || strings.ContainsAny(arg, "/?#: ") {
		return "", false
	}
	return arg, true
}

// SharedURL builds the link a viewer opens for a token.
func SharedURL(base, token string) string {
	base = strings.TrimRight(base, "/")
	u, err := table.Get(sharedName).URLPath("token", token)
	if err != nil {
		return base + "/shared/" + url.PathEscape(token)
	}
	return base + u.EscapedPath()
}
