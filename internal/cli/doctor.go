package cli

import (
	"fmt"
	"os"
	"os/exec"

	"github.com/julianstephens/sundown/internal/errors"
	"github.com/julianstephens/sundown/internal/lock"
	"github.com/julianstephens/sundown/internal/notify"
	"github.com/julianstephens/sundown/internal/shutdown"
)

var lookPathFunc = exec.LookPath

type DoctorCmd struct{}

func (cmd *DoctorCmd) Run(ctx *Context) error {
	out := ctx.Out
	fmt.Fprintln(out, "Running diagnostics...")
	fmt.Fprintln(out)

	hasError := false

	// Check 1: Config file
	if ctx.Config.ConfigFile != "" {
		fmt.Fprintf(out, "✓ Config file: %s\n", ctx.Config.ConfigFile)
	} else {
		fmt.Fprintf(out, "✓ Config file: none, using defaults\n")
	}

	// Check 2: Store readable
	times, err := ctx.Store.Load()
	if err != nil {
		fmt.Fprintf(out, "❌ Schedule store readable: FAIL\n")
		fmt.Fprintf(out, "   Error: %v\n", err)
		hasError = true
	} else {
		fmt.Fprintf(out, "✓ Schedule store readable: OK (%s, %d schedule(s))\n", ctx.Store.Path(), len(times))
	}

	// Check 3: Store writable
	if err := ctx.Set.Save(); err != nil {
		fmt.Fprintf(out, "❌ Schedule store writable: FAIL\n")
		fmt.Fprintf(out, "   Error: %v\n", err)
		hasError = true
	} else {
		fmt.Fprintf(out, "✓ Schedule store writable: OK\n")
	}

	// Check 4: Shutdown command
	if err := checkShutdownCommand(ctx); err != nil {
		fmt.Fprintf(out, "❌ Shutdown command: FAIL\n")
		fmt.Fprintf(out, "   Error: %v\n", err)
		hasError = true
	} else {
		fmt.Fprintf(out, "✓ Shutdown command: OK\n")
	}

	// Check 5: Notify command. Missing popups are not fatal.
	if err := checkNotifyCommand(ctx); err != nil {
		fmt.Fprintf(out, "⚠ Notify command: WARNING\n")
		fmt.Fprintf(out, "   %v\n", err)
	} else {
		fmt.Fprintf(out, "✓ Notify command: OK\n")
	}

	// Check 6: Watcher
	holder, err := lock.New(ctx.Set.Path()).Holder()
	switch {
	case err == nil:
		fmt.Fprintf(out, "✓ Watcher: running (pid %d)\n", holder.PID)
	case errors.Is(err, os.ErrNotExist):
		fmt.Fprintf(out, "⚠ Watcher: not running\n")
		fmt.Fprintf(out, "   Shutdowns only fire while 'sundown watch' or the TUI is open\n")
	default:
		fmt.Fprintf(out, "⚠ Watcher: stale lockfile\n")
		fmt.Fprintf(out, "   %v\n", err)
	}

	if ctx.Config.DryRun {
		fmt.Fprintf(out, "⚠ Dry run: enabled, shutdowns will not happen\n")
	}

	fmt.Fprintln(out)
	if hasError {
		fmt.Fprintln(out, "Diagnostics completed with errors.")
		return errors.New("one or more health checks failed")
	}

	fmt.Fprintln(out, "All diagnostics passed!")
	return nil
}

func checkShutdownCommand(ctx *Context) error {
	cmd, err := shutdown.NewCommand(ctx.Config.ShutdownCommand)
	if err != nil {
		return err
	}
	if _, err := lookPathFunc(cmd.Program()); err != nil {
		return errors.WithHint(errors.Wrapf(err, "%s not found", cmd.Program()), "set shutdown_command in the config file")
	}
	return nil
}

func checkNotifyCommand(ctx *Context) error {
	desktop, err := notify.NewDesktop(ctx.Config.NotifyCommand)
	if err != nil {
		return err
	}
	if _, err := lookPathFunc(desktop.Program()); err != nil {
		return errors.Wrapf(err, "%s not found, warnings will only show in the TUI", desktop.Program())
	}
	return nil
}
