// Package shutdown issues the immediate OS power-off
package shutdown

import (
	"context"
	"fmt"
	"io"
	"os/exec"
	"runtime"
	"strings"

	"github.com/kballard/go-shellquote"

	"github.com/julianstephens/sundown/internal/errors"
	"github.com/julianstephens/sundown/internal/logger"
)

var runCommandFunc = func(ctx context.Context, name string, args ...string) error {
	out, err := exec.CommandContext(ctx, name, args...).CombinedOutput()
	if err != nil && len(out) > 0 {
		return errors.Wrapf(err, "%s", strings.TrimSpace(string(out)))
	}
	return err
}

// Shutdowner powers the machine off
type Shutdowner interface {
	Shutdown(ctx context.Context) error
}

// DefaultCommand returns the immediate shutdown command for the current OS
func DefaultCommand() string {
	return defaultCommandFor(runtime.GOOS)
}

func defaultCommandFor(goos string) string {
	if goos == "windows" {
		return "shutdown /s /t 0"
	}
	return "shutdown -h now"
}

// Command runs a shutdown command line
type Command struct {
	args []string
}

// NewCommand parses a command line. An empty line selects the OS default.
func NewCommand(line string) (*Command, error) {
	if strings.TrimSpace(line) == "" {
		line = DefaultCommand()
	}
	args, err := shellquote.Split(line)
	if err != nil {
		return nil, errors.WithHint(errors.Wrap(err, "invalid shutdown command"), "check the quoting in shutdown_command")
	}
	if len(args) == 0 {
		return nil, errors.New("shutdown command is empty")
	}
	return &Command{args: args}, nil
}

func (c *Command) Shutdown(ctx context.Context) error {
	logger.Warn("Issuing shutdown", "command", c.String())
	if err := runCommandFunc(ctx, c.args[0], c.args[1:]...); err != nil {
		return errors.Wrapf(err, "run %s", c.args[0])
	}
	return nil
}

// Program is the executable the command runs
func (c *Command) Program() string {
	return c.args[0]
}

func (c *Command) String() string {
	return shellquote.Join(c.args...)
}

// DryRun reports the shutdown instead of performing it
type DryRun struct {
	Command *Command
	Out     io.Writer
}

func (d DryRun) Shutdown(ctx context.Context) error {
	logger.Warn("Dry run, not shutting down", "command", d.Command.String())
	if d.Out != nil {
		fmt.Fprintf(d.Out, "Dry run: would run %q\n", d.Command.String())
	}
	return nil
}

// Async starts the wrapped shutdown on its own goroutine and returns at once.
// Errors are logged only.
type Async struct {
	Shutdowner Shutdowner
}

func (a Async) Shutdown(ctx context.Context) error {
	ctx = context.WithoutCancel(ctx)
	go func() {
		if err := a.Shutdowner.Shutdown(ctx); err != nil {
			logger.Error("Shutdown command failed", "error", err)
		}
	}()
	return nil
}

// Delegated leaves the power-off to the watcher process holding the lock
type Delegated struct {
	PID int
}

func (d Delegated) Shutdown(ctx context.Context) error {
	logger.Info("Shutdown left to running watcher", "pid", d.PID)
	return nil
}
