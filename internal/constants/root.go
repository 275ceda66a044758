package constants

import "time"

// SessionState represents the current view of the TUI application
type SessionState int

const (
	AppName = "sundown"
	Version = "v0.1.0"

	// DefaultStoreFile is created in the working directory unless configured otherwise
	DefaultStoreFile = "shutdown_schedules.json"

	// TimestampFormat is the persisted ISO-8601 layout (local wall-clock time, second precision)
	TimestampFormat = "2006-01-02T15:04:05"

	// TimeFormat is the display format for a shutdown time of day (HH:MM)
	TimeFormat = "15:04"

	// Countdown constants
	TickInterval        = time.Second
	TenMinuteThreshold  = 10 * time.Minute
	FiveMinuteThreshold = 5 * time.Minute
	FireThreshold       = time.Second
	ThresholdTolerance  = time.Second

	// Popup constants
	DefaultPopupTimeout = 60 * time.Second
	NotifyGracePeriod   = 5 * time.Second

	TitleReminder          = "Reminder"
	TitleWarning           = "Warning"
	TitleSuccess           = "Success"
	MessageTenMinutesLeft  = "10 minutes remaining until shutdown"
	MessageFiveMinutesLeft = "5 minutes remaining until shutdown"

	// Watch constants
	WatchLockfileName = ".sundown-watch.lock"
	WatchDebounce     = 500 * time.Millisecond
)

const (
	StateSchedules SessionState = iota
	StateAdd
)
