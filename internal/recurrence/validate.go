package recurrence

import (
	"fmt"
	"strings"
	"time"

	"github.com/julianstephens/daybook/internal/calendar"
	"github.com/julianstephens/daybook/internal/constants"
	apperrors "github.com/julianstephens/daybook/internal/errors"
	"github.com/julianstephens/daybook/internal/models"
)

// MaxCount caps count-bounded series so compiling one stays cheap.
const MaxCount = 5000

// Validate checks a template definition. Every failure wraps ErrInvalidTemplate.
func Validate(t models.Template) error {
	if strings.TrimSpace(t.Title) == "" {
		return invalid("title cannot be empty")
	}
	if t.AnchorDate.IsZero() {
		return invalid("anchor date is required")
	}
	if err := ValidatePattern(t.Pattern); err != nil {
		return err
	}
	if t.Until != nil && t.Count != 0 {
		return invalid("until and count cannot both be set")
	}
	if t.Until != nil && t.Until.Before(t.AnchorDate) {
		return invalid("until %s is before anchor %s", t.Until, t.AnchorDate)
	}
	if t.Count < 0 {
		return invalid("count cannot be negative")
	}
	if t.Count > MaxCount {
		return invalid("count cannot exceed %d", MaxCount)
	}
	if t.DueTime != "" {
		if _, err := time.Parse(constants.TimeFormat, t.DueTime); err != nil {
			return invalid("invalid due time %q (expected HH:MM)", t.DueTime)
		}
	}
	if t.AlertAfterMin < 0 {
		return invalid("alert after cannot be negative")
	}
	// An excepted anchor is still required to fit the pattern.
	if !build(t).matches(t.AnchorDate) {
		return invalid("anchor %s (%s) does not match pattern %s",
			t.AnchorDate, t.AnchorDate.Weekday().String()[:3], Describe(t.Pattern))
	}
	return nil
}

// ValidatePattern checks the fields a pattern kind requires.
func ValidatePattern(p models.Pattern) error {
	switch p.Kind {
	case constants.PatternEveryNDays:
		if p.Interval < 1 {
			return invalid("interval must be at least 1 for %s", p.Kind)
		}
	case constants.PatternWeekly:
		if p.Interval < 0 {
			return invalid("interval cannot be negative")
		}
		if len(p.Weekdays) == 0 {
			return invalid("weekdays must be specified for weekly pattern")
		}
		for _, wd := range p.Weekdays {
			if wd < time.Sunday || wd > time.Saturday {
				return invalid("invalid weekday %d", wd)
			}
		}
	case constants.PatternMonthlyDay:
		if err := checkMonthDays(p.MonthDays); err != nil {
			return err
		}
	case constants.PatternMonthlyWeekday:
		if p.Ordinal != constants.OrdinalLast && (p.Ordinal < 1 || p.Ordinal > 5) {
			return invalid("ordinal must be 1..5 or -1, got %d", p.Ordinal)
		}
		if p.Weekday < time.Sunday || p.Weekday > time.Saturday {
			return invalid("invalid weekday %d", p.Weekday)
		}
	case constants.PatternYearly:
		if len(p.Months) == 0 {
			return invalid("months must be specified for yearly pattern")
		}
		for _, m := range p.Months {
			if m < time.January || m > time.December {
				return invalid("invalid month %d", m)
			}
		}
		if err := checkMonthDays(p.MonthDays); err != nil {
			return err
		}
		if !anyDayExists(p.Months, p.MonthDays) {
			return invalid("no selected month has any of the selected days")
		}
	case "":
		return invalid("pattern kind is required")
	default:
		return invalid("unknown pattern kind %q", p.Kind)
	}
	return nil
}

func checkMonthDays(days []int) error {
	if len(days) == 0 {
		return invalid("month days must be specified")
	}
	for _, d := range days {
		if d < 1 || d > 31 {
			return invalid("invalid month day %d (expected 1..31)", d)
		}
	}
	return nil
}

// anyDayExists reports whether some month/day pair can occur, using a leap
// year so Feb 29 counts.
func anyDayExists(months []time.Month, days []int) bool {
	for _, m := range months {
		limit := calendar.DaysIn(2000, m)
		for _, d := range days {
			if d <= limit {
				return true
			}
		}
	}
	return false
}

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", apperrors.ErrInvalidTemplate, fmt.Sprintf(format, args...))
}
