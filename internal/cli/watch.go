package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/julianstephens/sundown/internal/countdown"
	"github.com/julianstephens/sundown/internal/lock"
	"github.com/julianstephens/sundown/internal/logger"
	"github.com/julianstephens/sundown/internal/watch"
)

type WatchCmd struct {
	KeepAlive bool `help:"Keep running when no shutdowns remain."`
}

func (c *WatchCmd) Run(ctx *Context) error {
	sigCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return c.run(sigCtx, ctx, lock.New(ctx.Set.Path()))
}

func (c *WatchCmd) run(runCtx context.Context, ctx *Context, l *lock.Lock) error {
	if err := l.Acquire(); err != nil {
		return err
	}
	defer func() {
		if err := l.Release(); err != nil {
			logger.Warn("Failed to release watch lock", "error", err)
		}
	}()

	engine := countdown.New(ctx.Set, ctx.Notifier, ctx.Shutdowner, countdown.WithPopupTimeout(ctx.Config.PopupTimeout()))
	for _, e := range ctx.Set.Upcoming(ctx.Clock.Now()) {
		engine.Track(e.Schedule)
	}
	if engine.Len() == 0 && !c.KeepAlive {
		fmt.Fprintln(ctx.Out, "No upcoming shutdowns")
		return nil
	}

	runCtx, cancel := context.WithCancel(runCtx)
	defer cancel()

	runner := countdown.NewRunner(engine, ctx.Clock)
	runner.OnTick = func([]countdown.Status) {
		if engine.Len() == 0 && !c.KeepAlive {
			logger.Info("No shutdowns left to watch")
			cancel()
		}
	}

	watcher, err := watch.New(ctx.Set.Path(), func() {
		runner.Submit(func() { c.reload(ctx, engine) })
	})
	if err != nil {
		logger.Warn("Store watching disabled", "path", ctx.Set.Path(), "error", err)
	} else {
		ctx.Set.OnBeforeSave(watcher.MarkOwnWrite)
		watcher.Start()
		defer watcher.Close()
	}

	fmt.Fprintf(ctx.Out, "Watching %d shutdown(s) in %s\n", engine.Len(), ctx.Set.Path())
	logger.Info("Watch started", "path", ctx.Set.Path(), "tracked", engine.Len())
	return runner.Run(runCtx)
}

// reload applies an external edit of the store to the running countdowns
func (c *WatchCmd) reload(ctx *Context, engine *countdown.Engine) {
	added, removed, err := ctx.Set.Reload()
	if err != nil {
		logger.Error("Failed to reload schedules", "error", err)
		return
	}

	for _, s := range removed {
		engine.Cancel(s.ID)
	}
	now := ctx.Clock.Now()
	for _, s := range added {
		if s.IsPast(now) {
			continue
		}
		engine.Track(s)
		fmt.Fprintf(ctx.Out, "Now watching: %s\n", s.Label(now))
	}
	logger.Info("Schedules reloaded", "added", len(added), "removed", len(removed), "tracked", engine.Len())
}
