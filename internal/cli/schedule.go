package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/julianstephens/sundown/internal/constants"
	"github.com/julianstephens/sundown/internal/errors"
	"github.com/julianstephens/sundown/internal/models"
	"github.com/julianstephens/sundown/internal/schedule"
)

type AddCmd struct {
	Time   string `arg:"" optional:"" help:"Shutdown time of day (HH:MM)."`
	Hour   int    `help:"Hour (0-23), instead of TIME." default:"-1"`
	Minute int    `help:"Minute (0-59), instead of TIME." default:"-1"`
}

func (c *AddCmd) clock() (int, int, error) {
	if c.Time != "" {
		return models.ParseClock(c.Time)
	}
	if c.Hour < 0 || c.Minute < 0 {
		return 0, 0, errors.WithHint(
			errors.New("no shutdown time given"),
			"pass HH:MM or both --hour and --minute",
		)
	}
	return c.Hour, c.Minute, nil
}

func (c *AddCmd) Run(ctx *Context) error {
	hour, minute, err := c.clock()
	if err != nil {
		return err
	}

	now := ctx.Clock.Now()
	s, err := ctx.Set.AddClock(hour, minute, now)
	if err != nil {
		return err
	}

	fmt.Fprintf(ctx.Out, "Shutdown scheduled for %02d:%02d (in %s)\n", hour, minute, models.FormatRemaining(s.Remaining(now)))
	return nil
}

type ListCmd struct{}

func (c *ListCmd) Run(ctx *Context) error {
	now := ctx.Clock.Now()
	entries := ctx.Set.Upcoming(now)
	if len(entries) == 0 {
		fmt.Fprintln(ctx.Out, "No upcoming shutdowns")
		return nil
	}

	for _, e := range entries {
		fmt.Fprintf(ctx.Out, "  [%d] %s (%s)\n", e.Index, e.Schedule.Label(now), e.Schedule.At.Format("Mon Jan 2"))
	}
	return nil
}

type CancelCmd struct {
	Target string `arg:"" help:"Shutdown to cancel: its time (HH:MM) or its index from 'list'."`
	At     string `help:"Only cancel INDEX if it is still the shutdown at HH:MM."`
}

func (c *CancelCmd) Run(ctx *Context) error {
	index, err := c.resolve(ctx)
	if err != nil {
		return err
	}
	s, err := ctx.Set.Remove(index)
	if err != nil {
		return err
	}
	fmt.Fprintf(ctx.Out, "Cancelled shutdown at %s\n", s.At.Format(constants.TimeFormat))
	return nil
}

// resolve maps the target to a current index. Indices shift when startup
// pruning drops entries, so a bare index is refused after a prune.
func (c *CancelCmd) resolve(ctx *Context) (int, error) {
	if strings.Contains(c.Target, ":") {
		return c.byClock(ctx)
	}

	index, err := strconv.Atoi(c.Target)
	if err != nil {
		return 0, errors.WithHint(
			errors.Newf("invalid shutdown %q", c.Target),
			"pass HH:MM or an index from 'sundown list'",
		)
	}
	s, ok := ctx.Set.At(index)
	if !ok {
		return index, nil
	}

	if c.At != "" {
		hour, minute, err := models.ParseClock(c.At)
		if err != nil {
			return 0, err
		}
		if s.At.Hour() != hour || s.At.Minute() != minute {
			return 0, errors.WithHintf(
				errors.Wrapf(errors.ErrStaleIndex, "index %d is the shutdown at %s, not %s", index, s.At.Format(constants.TimeFormat), c.At),
				"run 'sundown list' again or cancel by time: sundown cancel %s", c.At,
			)
		}
		return index, nil
	}
	if ctx.Pruned > 0 {
		return 0, errors.WithHintf(
			errors.Wrapf(errors.ErrStaleIndex, "%d past schedule(s) were pruned since the last list", ctx.Pruned),
			"cancel by time instead, e.g. 'sundown cancel %s'", s.At.Format(constants.TimeFormat),
		)
	}
	return index, nil
}

func (c *CancelCmd) byClock(ctx *Context) (int, error) {
	hour, minute, err := models.ParseClock(c.Target)
	if err != nil {
		return 0, err
	}

	var matches []schedule.Entry
	for _, e := range ctx.Set.Upcoming(ctx.Clock.Now()) {
		if e.Schedule.At.Hour() == hour && e.Schedule.At.Minute() == minute {
			matches = append(matches, e)
		}
	}

	switch len(matches) {
	case 0:
		return 0, errors.WithHint(
			errors.Wrapf(errors.ErrScheduleNotFound, "no upcoming shutdown at %02d:%02d", hour, minute),
			"run 'sundown list' to see scheduled shutdowns",
		)
	case 1:
		return matches[0].Index, nil
	default:
		return 0, errors.WithHintf(
			errors.Newf("%d upcoming shutdowns at %02d:%02d", len(matches), hour, minute),
			"pick one by index, e.g. 'sundown cancel %d --at %02d:%02d'", matches[0].Index, hour, minute,
		)
	}
}

type PruneCmd struct{}

func (c *PruneCmd) Run(ctx *Context) error {
	// Startup already pruned; this catches anything that passed since
	pruned, err := ctx.Set.Prune(ctx.Clock.Now())
	if err != nil {
		return err
	}
	total := ctx.Pruned + pruned
	fmt.Fprintf(ctx.Out, "Removed %d past schedule(s)\n", total)
	return nil
}
