package cli

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/julianstephens/sundown/internal/countdown"
	"github.com/julianstephens/sundown/internal/errors"
	"github.com/julianstephens/sundown/internal/lock"
	"github.com/julianstephens/sundown/internal/logger"
	"github.com/julianstephens/sundown/internal/notify"
	"github.com/julianstephens/sundown/internal/shutdown"
	"github.com/julianstephens/sundown/internal/tui"
	"github.com/julianstephens/sundown/internal/watch"
)

type TuiCmd struct {
	NoDesktop bool `help:"Show warnings only inside the TUI, not as desktop popups."`
}

// watchLock is the part of lock.Lock the TUI needs
type watchLock interface {
	Acquire() error
	Release() error
	Holder() (lock.Holder, error)
}

type tuiSession struct {
	engine  *countdown.Engine
	notice  string
	release func()
}

// session takes the watch lock so no watcher fires the same schedules. If a
// live watcher already holds it, the TUI only displays the countdowns and
// leaves popups and the power-off to that watcher.
func (c *TuiCmd) session(ctx *Context, l watchLock, popups *notify.Queue) (*tuiSession, error) {
	var notifier notify.Notifier = popups
	if !c.NoDesktop {
		notifier = notify.Multi{popups, ctx.Notifier}
	}
	var shutdowner countdown.Shutdowner = shutdown.Async{Shutdowner: ctx.Shutdowner}
	sess := &tuiSession{release: func() {}}

	if err := l.Acquire(); err != nil {
		if !errors.Is(err, errors.ErrAlreadyRunning) {
			return nil, err
		}
		holder, herr := l.Holder()
		if herr != nil {
			return nil, err
		}
		logger.Info("Watcher is running, TUI will not shut down", "pid", holder.PID)
		notifier = popups
		shutdowner = shutdown.Delegated{PID: holder.PID}
		sess.notice = fmt.Sprintf("Shutdowns are handled by the running watcher (pid %d)", holder.PID)
	} else {
		sess.release = func() {
			if err := l.Release(); err != nil {
				logger.Warn("Failed to release watch lock", "error", err)
			}
		}
	}

	sess.engine = countdown.New(ctx.Set, notifier, shutdowner, countdown.WithPopupTimeout(ctx.Config.PopupTimeout()))
	return sess, nil
}

func (c *TuiCmd) Run(ctx *Context) error {
	popups := notify.NewQueue()
	sess, err := c.session(ctx, lock.New(ctx.Set.Path()), popups)
	if err != nil {
		return err
	}
	defer sess.release()

	model := tui.NewModel(context.Background(), tui.Options{
		Set:          ctx.Set,
		Engine:       sess.engine,
		Popups:       popups,
		Clock:        ctx.Clock,
		PopupTimeout: ctx.Config.PopupTimeout(),
		Notice:       sess.notice,
	})
	p := tea.NewProgram(model, tea.WithAltScreen())

	watcher, err := watch.New(ctx.Set.Path(), func() { p.Send(tui.StoreChangedMsg{}) })
	if err != nil {
		logger.Warn("Store watching disabled", "path", ctx.Set.Path(), "error", err)
	} else {
		ctx.Set.OnBeforeSave(watcher.MarkOwnWrite)
		watcher.Start()
		defer watcher.Close()
	}

	if _, err := p.Run(); err != nil {
		return errors.Wrap(err, "TUI failed")
	}
	return nil
}
