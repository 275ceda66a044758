// Package countdown drives the per-schedule warning and shutdown state
// machine.
//
// The Engine is not safe for concurrent use: the TUI calls it from its update
// loop and the headless watcher from the Runner goroutine. Each tracked
// schedule carries a token; Cancel invalidates it synchronously, so a tick
// that was already queued for a cancelled schedule is ignored.
package countdown

import (
	"context"
	"sort"
	"time"

	"github.com/julianstephens/sundown/internal/constants"
	"github.com/julianstephens/sundown/internal/logger"
	"github.com/julianstephens/sundown/internal/models"
)

// Notifier shows a transient popup. Implementations must not block.
type Notifier interface {
	Show(title, message string, timeout time.Duration)
}

// Shutdowner issues the OS shutdown
type Shutdowner interface {
	Shutdown(ctx context.Context) error
}

// ScheduleSet is the part of schedule.Set the engine writes back to
type ScheduleSet interface {
	MarkWarned(id string, tenMin, fiveMin bool)
	RemoveByID(id string) (models.Schedule, error)
}

// Clock supplies the current time
type Clock interface {
	Now() time.Time
}

type realClock struct{}

func (realClock) Now() time.Time { return time.Now() }

// RealClock reads the system wall clock
var RealClock Clock = realClock{}

// Status is the per-tick view of a tracked schedule
type Status struct {
	ID        string
	At        time.Time
	Remaining time.Duration
	Phase     Phase
	Label     string
}

type tracked struct {
	countdown *Countdown
	token     uint64
}

type Engine struct {
	set          ScheduleSet
	notifier     Notifier
	shutdowner   Shutdowner
	popupTimeout time.Duration
	tracked      map[string]*tracked
	lastToken    uint64
}

type Option func(*Engine)

// WithPopupTimeout overrides how long warning popups stay up
func WithPopupTimeout(d time.Duration) Option {
	return func(e *Engine) {
		if d > 0 {
			e.popupTimeout = d
		}
	}
}

func New(set ScheduleSet, notifier Notifier, shutdowner Shutdowner, opts ...Option) *Engine {
	e := &Engine{
		set:          set,
		notifier:     notifier,
		shutdowner:   shutdowner,
		popupTimeout: constants.DefaultPopupTimeout,
		tracked:      make(map[string]*tracked),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Track starts (or restarts) the countdown for s and returns its token.
// Restarting invalidates any earlier token for the same schedule.
func (e *Engine) Track(s models.Schedule) uint64 {
	e.lastToken++
	e.tracked[s.ID] = &tracked{
		countdown: NewCountdown(s),
		token:     e.lastToken,
	}
	logger.Debug("Tracking schedule", "id", s.ID, "at", s.At, "token", e.lastToken)
	return e.lastToken
}

// Cancel stops tracking id. It reports whether the schedule was tracked.
func (e *Engine) Cancel(id string) bool {
	if _, ok := e.tracked[id]; !ok {
		return false
	}
	delete(e.tracked, id)
	logger.Debug("Stopped tracking schedule", "id", id)
	return true
}

func (e *Engine) IsTracked(id string) bool {
	_, ok := e.tracked[id]
	return ok
}

func (e *Engine) Len() int {
	return len(e.tracked)
}

// Tick advances one schedule. It returns false when the tick chain should
// stop: the token is stale, the schedule was cancelled, or it just fired.
func (e *Engine) Tick(ctx context.Context, id string, token uint64, now time.Time) (Status, bool) {
	t, ok := e.tracked[id]
	if !ok || t.token != token {
		return Status{}, false
	}
	return e.advance(ctx, t.countdown, now)
}

// TickAll advances every tracked schedule, earliest first
func (e *Engine) TickAll(ctx context.Context, now time.Time) []Status {
	countdowns := make([]*Countdown, 0, len(e.tracked))
	for _, t := range e.tracked {
		countdowns = append(countdowns, t.countdown)
	}
	sort.Slice(countdowns, func(i, j int) bool {
		return countdowns[i].Target.Before(countdowns[j].Target)
	})

	statuses := make([]Status, 0, len(countdowns))
	for _, c := range countdowns {
		status, _ := e.advance(ctx, c, now)
		statuses = append(statuses, status)
	}
	return statuses
}

func (e *Engine) advance(ctx context.Context, c *Countdown, now time.Time) (Status, bool) {
	event := c.Advance(now)

	switch event {
	case EventTenMinuteWarning:
		logger.Info("Ten-minute shutdown warning", "id", c.ID, "at", c.Target)
		e.set.MarkWarned(c.ID, true, false)
		e.notifier.Show(constants.TitleReminder, constants.MessageTenMinutesLeft, e.popupTimeout)
	case EventFiveMinuteWarning:
		logger.Info("Five-minute shutdown warning", "id", c.ID, "at", c.Target)
		e.set.MarkWarned(c.ID, false, true)
		e.notifier.Show(constants.TitleWarning, constants.MessageFiveMinutesLeft, e.popupTimeout)
	case EventFire:
		e.fire(ctx, c)
	}

	return Status{
		ID:        c.ID,
		At:        c.Target,
		Remaining: c.Target.Sub(now),
		Phase:     c.Phase(),
		Label:     models.Label(c.Target, now),
	}, event != EventFire
}

// fire consumes the schedule before shutting down so the store never
// resurrects it on the next start.
func (e *Engine) fire(ctx context.Context, c *Countdown) {
	delete(e.tracked, c.ID)

	if _, err := e.set.RemoveByID(c.ID); err != nil {
		logger.Error("Failed to remove fired schedule", "id", c.ID, "error", err)
	}

	logger.Warn("Shutdown time reached", "id", c.ID, "at", c.Target)
	// Failures are logged only; there is no retry and nothing to report to
	if err := e.shutdowner.Shutdown(ctx); err != nil {
		logger.Error("Shutdown command failed", "error", err)
	}
}
