package cli

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/julianstephens/daybook/internal/calendar"
	"github.com/julianstephens/daybook/internal/constants"
)

var weekdayNames = map[string]time.Weekday{
	"sun":       time.Sunday,
	"sunday":    time.Sunday,
	"mon":       time.Monday,
	"monday":    time.Monday,
	"tue":       time.Tuesday,
	"tuesday":   time.Tuesday,
	"wed":       time.Wednesday,
	"wednesday": time.Wednesday,
	"thu":       time.Thursday,
	"thursday":  time.Thursday,
	"fri":       time.Friday,
	"friday":    time.Friday,
	"sat":       time.Saturday,
	"saturday":  time.Saturday,
}

// ParseWeekday accepts a weekday name, its three-letter abbreviation, or a
// number (0=Sunday, 6=Saturday).
func ParseWeekday(s string) (time.Weekday, error) {
	s = strings.TrimSpace(strings.ToLower(s))
	if wd, ok := weekdayNames[s]; ok {
		return wd, nil
	}
	if num, err := strconv.Atoi(s); err == nil && num >= 0 && num <= 6 {
		return time.Weekday(num), nil
	}
	return 0, fmt.Errorf("invalid weekday: %s", s)
}

// ParseWeekdays parses a comma-separated list of weekdays
func ParseWeekdays(s string) ([]time.Weekday, error) {
	var weekdays []time.Weekday
	for part := range strings.SplitSeq(s, ",") {
		if strings.TrimSpace(part) == "" {
			continue
		}
		wd, err := ParseWeekday(part)
		if err != nil {
			return nil, err
		}
		weekdays = append(weekdays, wd)
	}
	return weekdays, nil
}

// ParseMonths parses a comma-separated list of month names or numbers.
func ParseMonths(s string) ([]time.Month, error) {
	var months []time.Month
	for part := range strings.SplitSeq(s, ",") {
		part = strings.TrimSpace(strings.ToLower(part))
		if part == "" {
			continue
		}
		m, err := parseMonth(part)
		if err != nil {
			return nil, err
		}
		months = append(months, m)
	}
	return months, nil
}

func parseMonth(s string) (time.Month, error) {
	if num, err := strconv.Atoi(s); err == nil {
		if num < 1 || num > 12 {
			return 0, fmt.Errorf("invalid month: %s (expected 1-12)", s)
		}
		return time.Month(num), nil
	}
	for m := time.January; m <= time.December; m++ {
		name := strings.ToLower(m.String())
		if s == name || s == name[:3] {
			return m, nil
		}
	}
	return 0, fmt.Errorf("invalid month: %s", s)
}

// ParseInts parses a comma-separated list of integers.
func ParseInts(s string) ([]int, error) {
	var out []int
	for part := range strings.SplitSeq(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		n, err := strconv.Atoi(part)
		if err != nil {
			return nil, fmt.Errorf("invalid number: %s", part)
		}
		out = append(out, n)
	}
	return out, nil
}

// ParseDate resolves a date argument. Empty means today; "today",
// "tomorrow" and "yesterday" are relative to the clock, and "+N"/"-N" are
// day offsets from today.
func ParseDate(clock *calendar.Clock, s string) (calendar.Date, error) {
	today := clock.Today()
	switch s = strings.TrimSpace(strings.ToLower(s)); s {
	case "", "today":
		return today, nil
	case "tomorrow":
		return today.AddDays(1), nil
	case "yesterday":
		return today.AddDays(-1), nil
	}
	if strings.HasPrefix(s, "+") || strings.HasPrefix(s, "-") {
		if n, err := strconv.Atoi(s); err == nil {
			return today.AddDays(n), nil
		}
	}
	return calendar.ParseDate(s)
}

// ParseMonthArg resolves a YYYY-MM argument; empty means the current month.
func ParseMonthArg(clock *calendar.Clock, s string) (int, time.Month, error) {
	if strings.TrimSpace(s) == "" {
		today := clock.Today()
		return today.Year, today.Month, nil
	}
	t, err := time.Parse(constants.MonthFormat, strings.TrimSpace(s))
	if err != nil {
		return 0, 0, fmt.Errorf("invalid month %q (expected YYYY-MM)", s)
	}
	return t.Year(), t.Month(), nil
}

// ParseOrdinal accepts 1-5, "first".."fifth" or "last".
func ParseOrdinal(s string) (int, error) {
	switch strings.TrimSpace(strings.ToLower(s)) {
	case "first", "1st":
		return 1, nil
	case "second", "2nd":
		return 2, nil
	case "third", "3rd":
		return 3, nil
	case "fourth", "4th":
		return 4, nil
	case "fifth", "5th":
		return 5, nil
	case "last", "-1":
		return constants.OrdinalLast, nil
	}
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n < 1 || n > 5 {
		return 0, fmt.Errorf("invalid ordinal: %s (expected 1-5 or last)", s)
	}
	return n, nil
}
