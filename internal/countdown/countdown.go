package countdown

import (
	"time"

	"github.com/julianstephens/sundown/internal/constants"
	"github.com/julianstephens/sundown/internal/models"
)

// Phase is the warning progress of a single countdown
type Phase int

const (
	Pending Phase = iota
	TenMinWarned
	FiveMinWarned
	Fired
)

func (p Phase) String() string {
	switch p {
	case Pending:
		return "pending"
	case TenMinWarned:
		return "ten-minute warned"
	case FiveMinWarned:
		return "five-minute warned"
	case Fired:
		return "fired"
	default:
		return "unknown"
	}
}

// Event is what a single tick produced
type Event int

const (
	EventNone Event = iota
	EventTenMinuteWarning
	EventFiveMinuteWarning
	EventFire
)

// Countdown tracks one schedule. The two warnings are one-shot and
// independent of each other; firing is terminal.
type Countdown struct {
	ID            string
	Target        time.Time
	tenMinWarned  bool
	fiveMinWarned bool
	fired         bool
}

func NewCountdown(s models.Schedule) *Countdown {
	return &Countdown{
		ID:            s.ID,
		Target:        s.At,
		tenMinWarned:  s.TenMinWarned,
		fiveMinWarned: s.FiveMinWarned,
	}
}

func (c *Countdown) Phase() Phase {
	switch {
	case c.fired:
		return Fired
	case c.fiveMinWarned:
		return FiveMinWarned
	case c.tenMinWarned:
		return TenMinWarned
	default:
		return Pending
	}
}

// Advance evaluates the thresholds for the tick at now. The clock ticks at
// 1 Hz with no phase alignment to the target, so each threshold matches any
// remaining time strictly within one second of it.
func (c *Countdown) Advance(now time.Time) Event {
	if c.fired {
		return EventNone
	}

	remaining := c.Target.Sub(now)
	switch {
	case within(remaining, constants.TenMinuteThreshold) && !c.tenMinWarned:
		c.tenMinWarned = true
		return EventTenMinuteWarning
	case within(remaining, constants.FiveMinuteThreshold) && !c.fiveMinWarned:
		c.fiveMinWarned = true
		return EventFiveMinuteWarning
	case within(remaining, constants.FireThreshold):
		c.fired = true
		return EventFire
	}
	return EventNone
}

func within(remaining, threshold time.Duration) bool {
	delta := remaining - threshold
	if delta < 0 {
		delta = -delta
	}
	return delta < constants.ThresholdTolerance
}
