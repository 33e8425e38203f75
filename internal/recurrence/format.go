package recurrence

import (
	"fmt"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/julianstephens/daybook/internal/constants"
	"github.com/julianstephens/daybook/internal/models"
)

// Describe formats a pattern into a human-readable string.
func Describe(p models.Pattern) string {
	switch p.Kind {
	case constants.PatternEveryNDays:
		if p.Interval <= 1 {
			return "daily"
		}
		return fmt.Sprintf("every %d days", p.Interval)
	case constants.PatternWeekly:
		days := weekdayNames(p.Weekdays)
		if p.Interval > 1 {
			return fmt.Sprintf("every %d weeks on %s", p.Interval, days)
		}
		return fmt.Sprintf("weekly on %s", days)
	case constants.PatternMonthlyDay:
		return fmt.Sprintf("monthly on day %s", joinInts(p.MonthDays))
	case constants.PatternMonthlyWeekday:
		return fmt.Sprintf("monthly on the %s %s", ordinalName(p.Ordinal), p.Weekday)
	case constants.PatternYearly:
		var months []string
		for _, m := range sortedCopy(p.Months) {
			months = append(months, m.String()[:3])
		}
		return fmt.Sprintf("yearly in %s on day %s", strings.Join(months, ","), joinInts(p.MonthDays))
	default:
		return "unknown"
	}
}

// Summary describes a template's pattern together with its bounds.
func Summary(t models.Template) string {
	s := Describe(t.Pattern)
	switch {
	case t.Until != nil:
		s += " until " + t.Until.String()
	case t.Count > 0:
		s += fmt.Sprintf(", %d times", t.Count)
	}
	return s
}

func weekdayNames(wds []time.Weekday) string {
	sorted := sortedCopy(wds)
	// Monday-first, matching week numbering.
	slices.SortFunc(sorted, func(a, b time.Weekday) int {
		return mondayOffset(a) - mondayOffset(b)
	})
	names := make([]string, 0, len(sorted))
	for _, wd := range sorted {
		names = append(names, wd.String()[:3])
	}
	return strings.Join(names, ",")
}

func ordinalName(n int) string {
	switch n {
	case constants.OrdinalLast:
		return "last"
	case 1:
		return "1st"
	case 2:
		return "2nd"
	case 3:
		return "3rd"
	default:
		return strconv.Itoa(n) + "th"
	}
}

func joinInts(xs []int) string {
	parts := make([]string, 0, len(xs))
	for _, x := range sortedCopy(xs) {
		parts = append(parts, strconv.Itoa(x))
	}
	return strings.Join(parts, ",")
}

func sortedCopy[T ~int](xs []T) []T {
	out := slices.Clone(xs)
	slices.Sort(out)
	return slices.Compact(out)
}
