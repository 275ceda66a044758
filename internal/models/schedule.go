package models

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/julianstephens/sundown/internal/constants"
	"github.com/julianstephens/sundown/internal/errors"
)

// Schedule is a single pending shutdown. Only At is persisted; the ID and the
// warning flags live for the lifetime of the process.
type Schedule struct {
	ID            string
	At            time.Time
	TenMinWarned  bool
	FiveMinWarned bool
}

// NewSchedule creates a schedule with a fresh ID, truncated to whole seconds
func NewSchedule(at time.Time) Schedule {
	return Schedule{
		ID: uuid.New().String(),
		At: at.Truncate(time.Second),
	}
}

// IsPast reports whether the schedule is at or before now
func (s Schedule) IsPast(now time.Time) bool {
	return !s.At.After(now)
}

// Remaining returns the live delta between now and the shutdown time
func (s Schedule) Remaining(now time.Time) time.Duration {
	return s.At.Sub(now)
}

// Label renders the countdown line shown for a pending shutdown
func (s Schedule) Label(now time.Time) string {
	return Label(s.At, now)
}

// Label renders "Shutdown at HH:MM | Time Remaining: H:MM:SS" for a target time
func Label(at, now time.Time) string {
	return fmt.Sprintf("Shutdown at %s | Time Remaining: %s", at.Format(constants.TimeFormat), FormatRemaining(at.Sub(now)))
}

// ValidateClock checks an hour (0-23) and minute (0-59) pair
func ValidateClock(hour, minute int) error {
	if hour < 0 || hour > 23 {
		return errors.WithHint(errors.Wrapf(errors.ErrInvalidTime, "hour %d", hour), "hour must be between 0 and 23")
	}
	if minute < 0 || minute > 59 {
		return errors.WithHint(errors.Wrapf(errors.ErrInvalidTime, "minute %d", minute), "minute must be between 0 and 59")
	}
	return nil
}

// NextOccurrence returns the next time the wall clock reads hour:minute:00,
// today if that is still ahead of now, otherwise tomorrow.
func NextOccurrence(hour, minute int, now time.Time) (time.Time, error) {
	if err := ValidateClock(hour, minute); err != nil {
		return time.Time{}, err
	}

	at := time.Date(now.Year(), now.Month(), now.Day(), hour, minute, 0, 0, now.Location())
	if !at.After(now) {
		at = time.Date(now.Year(), now.Month(), now.Day()+1, hour, minute, 0, 0, now.Location())
	}
	return at, nil
}

// ParseClock parses "HH:MM" into an hour and minute pair
func ParseClock(s string) (int, int, error) {
	parts := strings.Split(strings.TrimSpace(s), ":")
	if len(parts) != 2 {
		return 0, 0, errors.WithHint(errors.Wrapf(errors.ErrInvalidTime, "%q", s), "use HH:MM, for example 23:30")
	}
	hour, err := strconv.Atoi(parts[0])
	if err != nil {
		return 0, 0, errors.WithHint(errors.Wrapf(errors.ErrInvalidTime, "hour %q", parts[0]), "hour must be a number between 0 and 23")
	}
	minute, err := strconv.Atoi(parts[1])
	if err != nil {
		return 0, 0, errors.WithHint(errors.Wrapf(errors.ErrInvalidTime, "minute %q", parts[1]), "minute must be a number between 0 and 59")
	}
	if err := ValidateClock(hour, minute); err != nil {
		return 0, 0, err
	}
	return hour, minute, nil
}

// FormatRemaining renders a duration as H:MM:SS truncated to whole seconds.
// Durations of a day or more get a "N day(s), " prefix.
func FormatRemaining(d time.Duration) string {
	sign := ""
	if d < 0 {
		sign = "-"
		d = -d
	}

	total := int64(d / time.Second)
	days := total / 86400
	hours := (total % 86400) / 3600
	minutes := (total % 3600) / 60
	seconds := total % 60

	clock := fmt.Sprintf("%d:%02d:%02d", hours, minutes, seconds)
	switch {
	case days == 1:
		return fmt.Sprintf("%s1 day, %s", sign, clock)
	case days > 1:
		return fmt.Sprintf("%s%d days, %s", sign, days, clock)
	}
	return sign + clock
}
