package recurrence

import (
	"time"

	"github.com/teambition/rrule-go"

	"github.com/julianstephens/daybook/internal/calendar"
	"github.com/julianstephens/daybook/internal/constants"
	"github.com/julianstephens/daybook/internal/models"
)

// indexed by time.Weekday
var rruleWeekdays = [7]rrule.Weekday{rrule.SU, rrule.MO, rrule.TU, rrule.WE, rrule.TH, rrule.FR, rrule.SA}

// ROption maps a template onto an rrule-go option set anchored at midnight UTC
// of the anchor date. Exceptions are not part of an RRULE and are left out.
func ROption(t models.Template) (rrule.ROption, error) {
	if err := Validate(t); err != nil {
		return rrule.ROption{}, err
	}
	p := t.Pattern
	opt := rrule.ROption{
		Dtstart:  t.AnchorDate.In(time.UTC),
		Interval: max(p.Interval, 1),
		Wkst:     rrule.MO,
		Count:    t.Count,
	}
	if t.Until != nil {
		opt.Until = t.Until.In(time.UTC)
	}

	switch p.Kind {
	case constants.PatternEveryNDays:
		opt.Freq = rrule.DAILY
	case constants.PatternWeekly:
		opt.Freq = rrule.WEEKLY
		for _, wd := range sortedCopy(p.Weekdays) {
			opt.Byweekday = append(opt.Byweekday, rruleWeekdays[wd])
		}
	case constants.PatternMonthlyDay:
		opt.Freq = rrule.MONTHLY
		opt.Bymonthday = sortedCopy(p.MonthDays)
	case constants.PatternMonthlyWeekday:
		opt.Freq = rrule.MONTHLY
		wd := rruleWeekdays[p.Weekday]
		opt.Byweekday = []rrule.Weekday{wd.Nth(p.Ordinal)}
	case constants.PatternYearly:
		opt.Freq = rrule.YEARLY
		for _, m := range sortedCopy(p.Months) {
			opt.Bymonth = append(opt.Bymonth, int(m))
		}
		opt.Bymonthday = sortedCopy(p.MonthDays)
	}
	return opt, nil
}

// RRule renders the template's recurrence as an RRULE value (without the
// "RRULE:" prefix or DTSTART line).
func RRule(t models.Template) (string, error) {
	opt, err := ROption(t)
	if err != nil {
		return "", err
	}
	opt.Dtstart = time.Time{}
	return opt.RRuleString(), nil
}

// RRuleDates expands the template through rrule-go over [start, end) and
// drops exceptions. It is an independent check on Expand.
func RRuleDates(t models.Template, start, end calendar.Date) ([]calendar.Date, error) {
	opt, err := ROption(t)
	if err != nil {
		return nil, err
	}
	r, err := rrule.NewRRule(opt)
	if err != nil {
		return nil, err
	}
	skip := make(map[calendar.Date]struct{}, len(t.Exceptions))
	for _, d := range t.Exceptions {
		skip[d] = struct{}{}
	}
	var out []calendar.Date
	for _, ts := range r.Between(start.In(time.UTC), end.In(time.UTC), true) {
		d := calendar.DateOf(ts)
		if !d.Before(end) {
			continue
		}
		if _, ok := skip[d]; ok {
			continue
		}
		out = append(out, d)
	}
	return out, nil
}
