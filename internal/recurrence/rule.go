// Package recurrence evaluates template patterns against calendar dates.
//
// Evaluation is pure: a Rule is compiled from a template snapshot and never
// changes. Next dates are found by arithmetic on the pattern (week offsets,
// day-of-month lookups, nth-weekday formulas) rather than by walking every day
// from the anchor, so cost does not grow with the age of a series.
package recurrence

import (
	"iter"
	"slices"
	"time"

	"github.com/julianstephens/daybook/internal/calendar"
	"github.com/julianstephens/daybook/internal/constants"
	"github.com/julianstephens/daybook/internal/models"
)

const (
	// Patterns that skip months (day 31, 5th Tuesday) match again within a
	// couple of months; Feb 29 under a yearly pattern can be eight years away.
	maxMonthScan = 24
	maxYearScan  = 9
)

// Rule is a compiled, immutable view of a template's recurrence.
type Rule struct {
	anchor     calendar.Date
	kind       constants.PatternKind
	interval   int
	ordinal    int
	weekday    time.Weekday
	weekdays   [7]bool
	monthDays  []int // sorted, unique
	dayMask    [32]bool
	months     [13]bool
	last       *calendar.Date // inclusive end of the series, if bounded
	exceptions map[calendar.Date]struct{}
}

// Compile validates t and builds its rule.
func Compile(t models.Template) (*Rule, error) {
	if err := Validate(t); err != nil {
		return nil, err
	}
	r := build(t)
	if t.Count > 0 {
		r.last = r.countEnd(t.Count)
	}
	if t.Until != nil {
		until := *t.Until
		if r.last == nil || until.Before(*r.last) {
			r.last = &until
		}
	}
	return r, nil
}

// build assembles the rule fields without validation or bounds.
func build(t models.Template) *Rule {
	p := t.Pattern
	r := &Rule{
		anchor:     t.AnchorDate,
		kind:       p.Kind,
		interval:   max(p.Interval, 1),
		ordinal:    p.Ordinal,
		weekday:    p.Weekday,
		exceptions: make(map[calendar.Date]struct{}, len(t.Exceptions)),
	}
	for _, wd := range p.Weekdays {
		if wd >= time.Sunday && wd <= time.Saturday {
			r.weekdays[wd] = true
		}
	}
	for _, d := range p.MonthDays {
		if d >= 1 && d <= 31 && !r.dayMask[d] {
			r.dayMask[d] = true
			r.monthDays = append(r.monthDays, d)
		}
	}
	slices.Sort(r.monthDays)
	for _, m := range p.Months {
		if m >= time.January && m <= time.December {
			r.months[m] = true
		}
	}
	for _, d := range t.Exceptions {
		r.exceptions[d] = struct{}{}
	}
	return r
}

// countEnd returns the date of the n-th raw match counted from the anchor.
// Exceptions still consume a slot, they are only removed afterwards.
func (r *Rule) countEnd(n int) *calendar.Date {
	d := r.anchor
	var last calendar.Date
	for i := 0; i < n; i++ {
		next, ok := r.nextMatch(d)
		if !ok {
			break
		}
		last = next
		d = next.AddDays(1)
	}
	if last.IsZero() {
		return &r.anchor
	}
	return &last
}

// Anchor returns the first possible date of the series.
func (r *Rule) Anchor() calendar.Date {
	return r.anchor
}

// Last returns the inclusive end of a bounded series.
func (r *Rule) Last() (calendar.Date, bool) {
	if r.last == nil {
		return calendar.Date{}, false
	}
	return *r.last, true
}

// OccursOn reports whether the rule produces an occurrence on d.
func (r *Rule) OccursOn(d calendar.Date) bool {
	if d.Before(r.anchor) || !r.withinBound(d) || r.excepted(d) {
		return false
	}
	return r.matches(d)
}

// NextOnOrAfter returns the smallest date >= d the rule produces.
func (r *Rule) NextOnOrAfter(d calendar.Date) (calendar.Date, bool) {
	for {
		next, ok := r.nextMatch(d)
		if !ok || !r.withinBound(next) {
			return calendar.Date{}, false
		}
		if !r.excepted(next) {
			return next, true
		}
		// Exceptions are finite, so this loop is bounded by their count.
		d = next.AddDays(1)
	}
}

// Expand yields every produced date in [start, end) in ascending order. The
// sequence only depends on its arguments, so it can be ranged over any number
// of times.
func (r *Rule) Expand(start, end calendar.Date) iter.Seq[calendar.Date] {
	return func(yield func(calendar.Date) bool) {
		d := start
		for d.Before(end) {
			next, ok := r.NextOnOrAfter(d)
			if !ok || !next.Before(end) {
				return
			}
			if !yield(next) {
				return
			}
			d = next.AddDays(1)
		}
	}
}

// Dates collects Expand into a slice.
func (r *Rule) Dates(start, end calendar.Date) []calendar.Date {
	return slices.Collect(r.Expand(start, end))
}

func (r *Rule) withinBound(d calendar.Date) bool {
	return r.last == nil || !d.After(*r.last)
}

func (r *Rule) excepted(d calendar.Date) bool {
	_, ok := r.exceptions[d]
	return ok
}

// matches is the periodicity test alone: no anchor, bound or exception checks
// beyond what the pattern itself needs.
func (r *Rule) matches(d calendar.Date) bool {
	switch r.kind {
	case constants.PatternEveryNDays:
		diff := d.DaysSince(r.anchor)
		return diff >= 0 && diff%r.interval == 0
	case constants.PatternWeekly:
		if !r.weekdays[d.Weekday()] {
			return false
		}
		weeks := weekStart(d).DaysSince(weekStart(r.anchor)) / 7
		return weeks >= 0 && weeks%r.interval == 0
	case constants.PatternMonthlyDay:
		return r.dayMask[d.Day]
	case constants.PatternMonthlyWeekday:
		return d.Day == nthWeekday(d.Year, d.Month, r.weekday, r.ordinal)
	case constants.PatternYearly:
		return r.months[d.Month] && r.dayMask[d.Day]
	}
	return false
}

// nextMatch finds the smallest date >= max(d, anchor) satisfying matches,
// ignoring bounds and exceptions.
func (r *Rule) nextMatch(d calendar.Date) (calendar.Date, bool) {
	if d.Before(r.anchor) {
		d = r.anchor
	}
	switch r.kind {
	case constants.PatternEveryNDays:
		rem := d.DaysSince(r.anchor) % r.interval
		if rem == 0 {
			return d, true
		}
		return d.AddDays(r.interval - rem), true
	case constants.PatternWeekly:
		return r.nextWeekly(d)
	case constants.PatternMonthlyDay:
		return r.nextMonthly(d, maxMonthScan, func(year int, month time.Month, from int) int {
			return firstDayFrom(r.monthDays, from, calendar.DaysIn(year, month))
		})
	case constants.PatternMonthlyWeekday:
		return r.nextMonthly(d, maxMonthScan, func(year int, month time.Month, from int) int {
			if day := nthWeekday(year, month, r.weekday, r.ordinal); day >= from {
				return day
			}
			return 0
		})
	case constants.PatternYearly:
		return r.nextMonthly(d, 12*maxYearScan, func(year int, month time.Month, from int) int {
			if !r.months[month] {
				return 0
			}
			return firstDayFrom(r.monthDays, from, calendar.DaysIn(year, month))
		})
	}
	return calendar.Date{}, false
}

// nextWeekly jumps straight to the next eligible week (every interval-th week
// counted from the anchor's week) and then to the first selected weekday in it.
func (r *Rule) nextWeekly(d calendar.Date) (calendar.Date, bool) {
	week := weekStart(d)
	offset := mondayOffset(d.Weekday())
	if rem := (week.DaysSince(weekStart(r.anchor)) / 7) % r.interval; rem != 0 {
		week = week.AddDays((r.interval - rem) * 7)
		offset = 0
	}
	// The weekday set is non-empty, so the second eligible week always matches.
	for i := 0; i < 2; i++ {
		for off := offset; off < 7; off++ {
			if r.weekdays[time.Weekday((off+1)%7)] {
				return week.AddDays(off), true
			}
		}
		week = week.AddDays(r.interval * 7)
		offset = 0
	}
	return calendar.Date{}, false
}

// nextMonthly walks month by month from d's month. pick returns the first
// matching day >= from in the given month, or 0 when the month has none.
func (r *Rule) nextMonthly(d calendar.Date, limit int, pick func(int, time.Month, int) int) (calendar.Date, bool) {
	year, month, from := d.Year, d.Month, d.Day
	for i := 0; i < limit; i++ {
		if day := pick(year, month, from); day > 0 {
			return calendar.NewDate(year, month, day), true
		}
		month++
		if month > time.December {
			month = time.January
			year++
		}
		from = 1
	}
	return calendar.Date{}, false
}

// firstDayFrom returns the smallest day in sorted days with from <= day <= limit.
func firstDayFrom(days []int, from, limit int) int {
	i, _ := slices.BinarySearch(days, from)
	if i < len(days) && days[i] <= limit {
		return days[i]
	}
	return 0
}

// nthWeekday returns the day of month of the ordinal-th wd in the month, or 0
// if the month has no such day. Ordinal -1 selects the last one.
func nthWeekday(year int, month time.Month, wd time.Weekday, ordinal int) int {
	if ordinal == constants.OrdinalLast {
		last := calendar.DaysIn(year, month)
		lastWd := calendar.NewDate(year, month, last).Weekday()
		return last - (int(lastWd)-int(wd)+7)%7
	}
	if ordinal < 1 || ordinal > 5 {
		return 0
	}
	firstWd := calendar.FirstOfMonth(year, month).Weekday()
	day := 1 + (int(wd)-int(firstWd)+7)%7 + (ordinal-1)*7
	if day > calendar.DaysIn(year, month) {
		return 0
	}
	return day
}

func mondayOffset(wd time.Weekday) int {
	return (int(wd) + 6) % 7
}

func weekStart(d calendar.Date) calendar.Date {
	return d.AddDays(-mondayOffset(d.Weekday()))
}

// OccursOn compiles t and reports whether it produces d. Invalid templates
// produce nothing.
func OccursOn(t models.Template, d calendar.Date) bool {
	r, err := Compile(t)
	if err != nil {
		return false
	}
	return r.OccursOn(d)
}

// NextOnOrAfter compiles t and returns its next date on or after d.
func NextOnOrAfter(t models.Template, d calendar.Date) (calendar.Date, bool) {
	r, err := Compile(t)
	if err != nil {
		return calendar.Date{}, false
	}
	return r.NextOnOrAfter(d)
}

// Expand compiles t and expands it over [start, end).
func Expand(t models.Template, start, end calendar.Date) iter.Seq[calendar.Date] {
	r, err := Compile(t)
	if err != nil {
		return func(func(calendar.Date) bool) {}
	}
	return r.Expand(start, end)
}

// FirstMatch returns the first date on or after from that p produces when a
// series is anchored at from. It picks an anchor for callers that omit one.
func FirstMatch(p models.Pattern, from calendar.Date) (calendar.Date, bool) {
	if ValidatePattern(p) != nil {
		return calendar.Date{}, false
	}
	return build(models.Template{AnchorDate: from, Pattern: p}).nextMatch(from)
}
