package cli

import (
	"io"
	"os"

	"github.com/julianstephens/sundown/internal/config"
	"github.com/julianstephens/sundown/internal/countdown"
	"github.com/julianstephens/sundown/internal/notify"
	"github.com/julianstephens/sundown/internal/schedule"
	"github.com/julianstephens/sundown/internal/shutdown"
	"github.com/julianstephens/sundown/internal/storage"
)

type Context struct {
	Config     *config.Config
	Store      storage.Provider
	Set        *schedule.Set
	Clock      countdown.Clock
	Notifier   notify.Notifier
	Shutdowner countdown.Shutdowner
	Out        io.Writer

	// Pruned is how many past schedules were dropped at startup
	Pruned int
}

// NewContext builds the OS-facing collaborators from the configuration
func NewContext(cfg *config.Config, store storage.Provider, set *schedule.Set) (*Context, error) {
	desktop, err := notify.NewDesktop(cfg.NotifyCommand)
	if err != nil {
		return nil, err
	}

	cmd, err := shutdown.NewCommand(cfg.ShutdownCommand)
	if err != nil {
		return nil, err
	}

	var shutdowner countdown.Shutdowner = cmd
	if cfg.DryRun {
		shutdowner = shutdown.DryRun{Command: cmd, Out: os.Stdout}
	}

	return &Context{
		Config:     cfg,
		Store:      store,
		Set:        set,
		Clock:      countdown.RealClock,
		Notifier:   desktop,
		Shutdowner: shutdowner,
		Out:        os.Stdout,
	}, nil
}

// Prune drops schedules that are already past. Every command runs it once
// before doing anything else.
func (c *Context) Prune() error {
	pruned, err := c.Set.Prune(c.Clock.Now())
	c.Pruned = pruned
	return err
}
