package cli

import (
	"context"

	"github.com/Makepad-fr/listify/internal/board"
	"github.com/Makepad-fr/listify/internal/route"
	"github.com/Makepad-fr/listify/internal/tui"
	"github.com/Makepad-fr/listify/internal/ui"
)

// doBoard runs the full-screen client, on a shared list when target names one.
func (e *env) doBoard(ctx context.Context, target string) int {
	r := route.Route{Kind: route.Board}
	if target != "" {
		tok, ok := route.ShareToken(target)
		if !ok {
			ui.Fail("open: not a share link or token: " + target)
			return 2
		}
		r = route.Route{Kind: route.Shared, Token: tok}
	}

	cfg := e.opt.Config
	err := tui.Run(ctx, tui.Options{
		Session: e.store,
		Deps:    board.NewDeps(e.client, e.store, e.log, cfg.PollInterval, cfg.ShareBaseURL),
		Route:   r,
		Theme:   cfg.Theme,
		Log:     e.log,
	})
	if err != nil {
		ui.Fail("tui: " + err.Error())
		return 1
	}
	return 0
}
