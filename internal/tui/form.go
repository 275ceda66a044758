package tui

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/huh"
)

type AddFormModel struct {
	Hour   string
	Minute string
}

func rangeValidator(field string, min, max int) func(string) error {
	return func(s string) error {
		n, err := strconv.Atoi(strings.TrimSpace(s))
		if err != nil {
			return fmt.Errorf("%s must be a number", field)
		}
		if n < min || n > max {
			return fmt.Errorf("%s must be between %d and %d", field, min, max)
		}
		return nil
	}
}

// NewAddForm creates the form for scheduling a shutdown
func NewAddForm(fm *AddFormModel) *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Hour").
				Description("0-23").
				CharLimit(2).
				Value(&fm.Hour).
				Validate(rangeValidator("hour", 0, 23)),
			huh.NewInput().
				Title("Minute").
				Description("0-59").
				CharLimit(2).
				Value(&fm.Minute).
				Validate(rangeValidator("minute", 0, 59)),
		),
	).WithTheme(huh.ThemeDracula())
}

func (fm *AddFormModel) clock() (int, int, error) {
	hour, err := strconv.Atoi(strings.TrimSpace(fm.Hour))
	if err != nil {
		return 0, 0, fmt.Errorf("invalid hour %q", fm.Hour)
	}
	minute, err := strconv.Atoi(strings.TrimSpace(fm.Minute))
	if err != nil {
		return 0, 0, fmt.Errorf("invalid minute %q", fm.Minute)
	}
	return hour, minute, nil
}
