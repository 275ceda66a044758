// Package errors wraps github.com/cockroachdb/errors so that user-facing
// failures carry hints, and adds the formatting helpers used by the CLI.
package errors

import (
	"fmt"
	"os"
	"strings"

	crdb "github.com/cockroachdb/errors"

	"github.com/julianstephens/sundown/internal/logger"
)

var (
	New         = crdb.New
	Newf        = crdb.Newf
	Wrap        = crdb.Wrap
	Wrapf       = crdb.Wrapf
	WithHint    = crdb.WithHint
	WithHintf   = crdb.WithHintf
	Is          = crdb.Is
	As          = crdb.As
	GetAllHints = crdb.GetAllHints
)

var (
	// ErrInvalidTime is returned for an hour outside 0-23 or a minute outside 0-59
	ErrInvalidTime = New("invalid hour or minute")
	// ErrIndexOutOfRange signals a stale or bogus schedule index
	ErrIndexOutOfRange = New("schedule index out of range")
	// ErrStaleIndex is returned when an index may no longer point at the
	// shutdown 'list' showed
	ErrStaleIndex = New("schedule index no longer matches")
	// ErrScheduleNotFound is returned when no schedule has the given ID
	ErrScheduleNotFound = New("schedule not found")
	// ErrAlreadyRunning is returned when another watcher holds the lock
	ErrAlreadyRunning = New("another sundown watcher is already running")
)

// Format formats an error message with a consistent "Error: " prefix, followed by any hints
func Format(err error) string {
	if err == nil {
		return ""
	}
	var b strings.Builder
	fmt.Fprintf(&b, "Error: %v", err)
	for _, hint := range GetAllHints(err) {
		fmt.Fprintf(&b, "\n  hint: %s", hint)
	}
	return b.String()
}

// Fatal logs an error and exits the program with exit code 1
func Fatal(err error) {
	if err != nil {
		logger.Error("Command execution failed", "error", err)
		fmt.Fprintf(os.Stderr, "%s\n", Format(err))
		os.Exit(1)
	}
}
