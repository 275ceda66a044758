package errors

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFormat(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected string
	}{
		{
			name:     "nil error",
			err:      nil,
			expected: "",
		},
		{
			name:     "simple error",
			err:      fmt.Errorf("disk full"),
			expected: "Error: disk full",
		},
		{
			name:     "wrapped sentinel",
			err:      Wrapf(ErrIndexOutOfRange, "index %d", 3),
			expected: "Error: index 3: schedule index out of range",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Format(tt.err))
		})
	}
}

func TestFormatIncludesHints(t *testing.T) {
	err := WithHint(Wrap(ErrInvalidTime, "hour 24"), "hour must be between 0 and 23")

	got := Format(err)
	assert.True(t, strings.HasPrefix(got, "Error: hour 24: invalid hour or minute"))
	assert.Contains(t, got, "hint: hour must be between 0 and 23")
}

func TestSentinelsSurviveWrapping(t *testing.T) {
	err := WithHint(Wrap(ErrScheduleNotFound, "cancel"), "run 'sundown list'")
	assert.True(t, Is(err, ErrScheduleNotFound))
	assert.False(t, Is(err, ErrInvalidTime))
}
