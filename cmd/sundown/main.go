package main

import (
	"fmt"
	"os"

	"github.com/alecthomas/kong"

	"github.com/julianstephens/sundown/internal/cli"
	"github.com/julianstephens/sundown/internal/config"
	"github.com/julianstephens/sundown/internal/constants"
	"github.com/julianstephens/sundown/internal/errors"
	"github.com/julianstephens/sundown/internal/logger"
	"github.com/julianstephens/sundown/internal/schedule"
	"github.com/julianstephens/sundown/internal/storage"
)

var CLI struct {
	Version kong.VersionFlag
	Config  string `help:"Config file path (defaults to the user config dir)." type:"path"`
	Store   string `help:"Schedule store path. Use a .db extension for SQLite." type:"path"`
	DryRun  bool   `help:"Log the shutdown instead of performing it."`
	Debug   bool   `help:"Enable debug logging to stderr."`

	Tui    cli.TuiCmd    `cmd:"" help:"Launch the interactive TUI." default:"1"`
	Add    cli.AddCmd    `cmd:"" help:"Schedule a shutdown at the next HH:MM."`
	List   cli.ListCmd   `cmd:"" help:"List upcoming shutdowns."`
	Cancel cli.CancelCmd `cmd:"" help:"Cancel a shutdown by index."`
	Prune  cli.PruneCmd  `cmd:"" help:"Remove shutdowns that are already past."`
	Watch  cli.WatchCmd  `cmd:"" help:"Count down headlessly and shut down on time."`
	Doctor cli.DoctorCmd `cmd:"" help:"Run health checks and diagnostics."`
}

func main() {
	kctx := kong.Parse(&CLI,
		kong.Name(constants.AppName),
		kong.Description("One-time shutdown scheduler"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact: true,
		}),
		kong.Vars{"version": constants.Version},
	)

	cfg, err := config.Load(config.Overrides{
		ConfigFile: CLI.Config,
		StorePath:  CLI.Store,
		DryRun:     CLI.DryRun,
		Debug:      CLI.Debug,
	})
	if err != nil {
		fmt.Fprintln(os.Stderr, errors.Format(err))
		os.Exit(1)
	}

	if err := logger.Init(logger.Config{Debug: cfg.Debug, LogDir: cfg.LogDir}); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: file logging disabled: %v\n", err)
	}

	store := storage.New(cfg.StorePath)
	defer store.Close()

	appCtx, err := cli.NewContext(cfg, store, schedule.Open(store))
	if err != nil {
		errors.Fatal(err)
	}

	if err := appCtx.Prune(); err != nil {
		logger.Warn("Failed to persist pruned schedules", "error", err)
	}

	if err := kctx.Run(appCtx); err != nil {
		store.Close()
		errors.Fatal(err)
	}
}
