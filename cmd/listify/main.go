package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/Makepad-fr/listify/internal/cli"
	"github.com/Makepad-fr/listify/internal/config"
	"github.com/Makepad-fr/listify/internal/logging"
	"github.com/Makepad-fr/listify/internal/ui"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		ui.Fail("config: " + err.Error())
		os.Exit(1)
	}

	// Root flags (apply to every subcommand); they win over the environment.
	groupPending := flag.Bool("group", false, "group items by pending/done")
	apiURL := flag.String("api", cfg.APIURL, "list API base URL")
	theme := flag.String("theme", cfg.Theme, "classic | neon | mono")
	logLevel := flag.String("log-level", cfg.LogLevel, "debug | info | warn | error")
	forceColor := flag.Bool("color", false, "force colored output")
	noColor := flag.Bool("no-color", false, "disable colored output")
	flag.Parse()

	cfg.APIURL = strings.TrimRight(*apiURL, "/")
	cfg.Theme = *theme
	cfg.LogLevel = *logLevel
	ui.SetColorForcing(*forceColor, *noColor)
	ui.SetTheme(cfg.Theme)

	// Hand the remaining args to the CLI runner.
	args := flag.Args()
	if len(args) == 0 {
		args = []string{"board"}
	}

	log := logging.New(cfg.LogLevel, cfg.LogFile)
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	code := cli.Run(ctx, args, cli.Options{
		Group:  *groupPending,
		Config: *cfg,
		Log:    log,
	})
	stop()
	if code != 0 {
		fmt.Fprintln(os.Stderr)
	}
	os.Exit(code)
}
