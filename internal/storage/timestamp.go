package storage

import (
	"time"

	"github.com/julianstephens/sundown/internal/constants"
	"github.com/julianstephens/sundown/internal/errors"
)

// FormatTimestamp renders t as a zone-less ISO-8601 local timestamp
func FormatTimestamp(t time.Time) string {
	return t.In(time.Local).Format(constants.TimestampFormat)
}

// ParseTimestamp accepts the persisted layout (with or without fractional
// seconds), a space-separated variant and RFC 3339 with an offset. The result
// is in local time, truncated to whole seconds.
func ParseTimestamp(s string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return t.Local().Truncate(time.Second), nil
	}
	for _, layout := range []string{constants.TimestampFormat, "2006-01-02 15:04:05"} {
		if t, err := time.ParseInLocation(layout, s, time.Local); err == nil {
			return t.Truncate(time.Second), nil
		}
	}
	return time.Time{}, errors.Newf("invalid timestamp %q", s)
}
