package templates

import (
	"fmt"
	"strings"

	"github.com/julianstephens/daybook/internal/cli"
	"github.com/julianstephens/daybook/internal/constants"
	"github.com/julianstephens/daybook/internal/models"
)

// PatternFlags are shared by add and edit. Unset flags are nil.
type PatternFlags struct {
	Kind      *string `short:"k" help:"Pattern kind (every_n_days|weekly|monthly_day|monthly_weekday|yearly)."`
	Interval  *int    `short:"i" help:"Days between occurrences, or weeks between weekly runs."`
	Weekdays  *string `short:"w" help:"Comma-separated weekdays for weekly patterns."`
	MonthDays *string `short:"m" name:"month-days" help:"Comma-separated days of the month (1-31) for monthly_day and yearly patterns."`
	Months    *string `help:"Comma-separated months for yearly patterns."`
	Ordinal   *string `help:"Week of the month for monthly_weekday (1-5 or last)."`
	Weekday   *string `help:"Weekday for monthly_weekday patterns."`
}

func (f PatternFlags) any() bool {
	return f.Kind != nil || f.Interval != nil || f.Weekdays != nil || f.MonthDays != nil ||
		f.Months != nil || f.Ordinal != nil || f.Weekday != nil
}

// inferKind guesses the pattern kind from the flags given when --kind is
// omitted. With no pattern flags at all the template repeats daily.
func (f PatternFlags) inferKind() constants.PatternKind {
	switch {
	case f.Kind != nil:
		return constants.PatternKind(strings.TrimSpace(strings.ToLower(*f.Kind)))
	case f.Weekdays != nil:
		return constants.PatternWeekly
	case f.Ordinal != nil || f.Weekday != nil:
		return constants.PatternMonthlyWeekday
	case f.Months != nil:
		return constants.PatternYearly
	case f.MonthDays != nil:
		return constants.PatternMonthlyDay
	default:
		return constants.PatternEveryNDays
	}
}

// apply overlays the flags on base. Changing the kind starts from an empty
// pattern so fields of the old kind do not leak into the new one.
func (f PatternFlags) apply(base models.Pattern) (models.Pattern, error) {
	p := base
	if kind := f.inferKind(); f.Kind != nil || base.Kind == "" {
		p = models.Pattern{Kind: kind}
	}
	if p.Kind == constants.PatternEveryNDays && p.Interval == 0 {
		p.Interval = 1
	}

	if f.Interval != nil {
		p.Interval = *f.Interval
	}
	if f.Weekdays != nil {
		wds, err := cli.ParseWeekdays(*f.Weekdays)
		if err != nil {
			return models.Pattern{}, err
		}
		p.Weekdays = wds
	}
	if f.MonthDays != nil {
		days, err := cli.ParseInts(*f.MonthDays)
		if err != nil {
			return models.Pattern{}, fmt.Errorf("invalid --month-days: %w", err)
		}
		p.MonthDays = days
	}
	if f.Months != nil {
		months, err := cli.ParseMonths(*f.Months)
		if err != nil {
			return models.Pattern{}, err
		}
		p.Months = months
	}
	if f.Ordinal != nil {
		n, err := cli.ParseOrdinal(*f.Ordinal)
		if err != nil {
			return models.Pattern{}, err
		}
		p.Ordinal = n
	}
	if f.Weekday != nil {
		wd, err := cli.ParseWeekday(*f.Weekday)
		if err != nil {
			return models.Pattern{}, fmt.Errorf("invalid --weekday: %w", err)
		}
		p.Weekday = wd
	}
	return p, nil
}
