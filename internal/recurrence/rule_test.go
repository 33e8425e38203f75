package recurrence

import (
	"errors"
	"slices"
	"strings"
	"testing"
	"time"

	"github.com/julianstephens/daybook/internal/calendar"
	"github.com/julianstephens/daybook/internal/constants"
	apperrors "github.com/julianstephens/daybook/internal/errors"
	"github.com/julianstephens/daybook/internal/models"
)

func d(s string) calendar.Date {
	return calendar.MustParseDate(s)
}

func dates(ss ...string) []calendar.Date {
	out := make([]calendar.Date, 0, len(ss))
	for _, s := range ss {
		out = append(out, d(s))
	}
	return out
}

func template(anchor string, p models.Pattern) models.Template {
	return models.Template{ID: "tpl", Title: "Standup", AnchorDate: d(anchor), Pattern: p}
}

func mustCompile(t *testing.T, tpl models.Template) *Rule {
	t.Helper()
	r, err := Compile(tpl)
	if err != nil {
		t.Fatalf("Compile failed: %v", err)
	}
	return r
}

func TestEveryTwoDays(t *testing.T) {
	tpl := template("2026-01-01", models.Pattern{Kind: constants.PatternEveryNDays, Interval: 2})
	r := mustCompile(t, tpl)

	got := r.Dates(d("2026-01-01"), d("2026-01-11"))
	want := dates("2026-01-01", "2026-01-03", "2026-01-05", "2026-01-07", "2026-01-09")
	if !slices.Equal(got, want) {
		t.Errorf("Dates = %v, want %v", got, want)
	}

	if r.OccursOn(d("2026-01-04")) {
		t.Error("Expected Jan 4 not to be an occurrence")
	}
	if r.OccursOn(d("2025-12-30")) {
		t.Error("Expected no occurrence before the anchor")
	}
}

func TestMonthlyDay31SkipsShortMonths(t *testing.T) {
	tpl := template("2026-01-31", models.Pattern{Kind: constants.PatternMonthlyDay, MonthDays: []int{31}})
	r := mustCompile(t, tpl)

	got := r.Dates(d("2026-01-01"), d("2027-01-01"))
	if len(got) != 7 {
		t.Fatalf("Expected 7 occurrences in 2026, got %d: %v", len(got), got)
	}
	for _, day := range got {
		if day.Day != 31 {
			t.Errorf("Unexpected occurrence %s", day)
		}
		switch day.Month {
		case time.February, time.April, time.June, time.September, time.November:
			t.Errorf("Day 31 produced in a short month: %s", day)
		}
	}
	if r.OccursOn(d("2026-02-28")) || r.OccursOn(d("2026-03-03")) {
		t.Error("Day 31 must not roll over into nearby days")
	}
}

func TestMonthlyLastWeekday(t *testing.T) {
	tpl := template("2026-01-30", models.Pattern{
		Kind:    constants.PatternMonthlyWeekday,
		Ordinal: constants.OrdinalLast,
		Weekday: time.Friday,
	})
	r := mustCompile(t, tpl)

	got := r.Dates(d("2026-01-01"), d("2026-04-01"))
	want := dates("2026-01-30", "2026-02-27", "2026-03-27")
	if !slices.Equal(got, want) {
		t.Errorf("Dates = %v, want %v", got, want)
	}
}

func TestMonthlyFifthWeekdaySkipsMonths(t *testing.T) {
	tpl := template("2026-01-29", models.Pattern{
		Kind:    constants.PatternMonthlyWeekday,
		Ordinal: 5,
		Weekday: time.Thursday,
	})
	r := mustCompile(t, tpl)

	for day := range r.Expand(d("2026-01-01"), d("2027-01-01")) {
		if day.Weekday() != time.Thursday || day.Day < 29 {
			t.Errorf("Unexpected 5th Thursday %s", day)
		}
	}
	if r.OccursOn(d("2026-02-26")) {
		t.Error("February 2026 has no 5th Thursday")
	}
}

func TestWeeklyMatchesWeekdaySet(t *testing.T) {
	set := []time.Weekday{time.Monday, time.Wednesday, time.Friday}
	tpl := template("2026-01-02", models.Pattern{Kind: constants.PatternWeekly, Weekdays: set})
	r := mustCompile(t, tpl)

	for day := d("2026-01-02"); day.Before(d("2027-01-01")); day = day.AddDays(1) {
		want := slices.Contains(set, day.Weekday())
		if got := r.OccursOn(day); got != want {
			t.Errorf("OccursOn(%s %s) = %v, want %v", day, day.Weekday(), got, want)
		}
	}
}

func TestBiweeklyCountsFromAnchorWeek(t *testing.T) {
	tpl := template("2026-01-05", models.Pattern{
		Kind:     constants.PatternWeekly,
		Weekdays: []time.Weekday{time.Thursday, time.Monday},
		Interval: 2,
	})
	r := mustCompile(t, tpl)

	got := r.Dates(d("2026-01-01"), d("2026-02-06"))
	want := dates("2026-01-05", "2026-01-08", "2026-01-19", "2026-01-22", "2026-02-02", "2026-02-05")
	if !slices.Equal(got, want) {
		t.Errorf("Dates = %v, want %v", got, want)
	}
}

func TestYearlyLeapDay(t *testing.T) {
	tpl := template("2028-02-29", models.Pattern{
		Kind:      constants.PatternYearly,
		Months:    []time.Month{time.February},
		MonthDays: []int{29},
	})
	r := mustCompile(t, tpl)

	got := r.Dates(d("2028-01-01"), d("2038-01-01"))
	want := dates("2028-02-29", "2032-02-29", "2036-02-29")
	if !slices.Equal(got, want) {
		t.Errorf("Dates = %v, want %v", got, want)
	}
}

func TestCountIncludesExceptions(t *testing.T) {
	tpl := template("2026-01-01", models.Pattern{Kind: constants.PatternEveryNDays, Interval: 1})
	tpl.Count = 5
	tpl.Exceptions = dates("2026-01-03")
	r := mustCompile(t, tpl)

	got := r.Dates(d("2026-01-01"), d("2026-02-01"))
	want := dates("2026-01-01", "2026-01-02", "2026-01-04", "2026-01-05")
	if !slices.Equal(got, want) {
		t.Errorf("Dates = %v, want %v", got, want)
	}
	last, ok := r.Last()
	if !ok || last != d("2026-01-05") {
		t.Errorf("Last = %s, %v; want 2026-01-05", last, ok)
	}
}

func TestUntilIsInclusive(t *testing.T) {
	until := d("2026-01-07")
	tpl := template("2026-01-01", models.Pattern{Kind: constants.PatternEveryNDays, Interval: 3})
	tpl.Until = &until
	r := mustCompile(t, tpl)

	got := r.Dates(d("2026-01-01"), d("2026-03-01"))
	want := dates("2026-01-01", "2026-01-04", "2026-01-07")
	if !slices.Equal(got, want) {
		t.Errorf("Dates = %v, want %v", got, want)
	}
}

func TestNextOnOrAfter(t *testing.T) {
	tpl := template("2026-01-05", models.Pattern{Kind: constants.PatternWeekly, Weekdays: []time.Weekday{time.Monday}})
	tpl.Exceptions = dates("2026-01-12")
	until := d("2026-01-26")
	tpl.Until = &until
	r := mustCompile(t, tpl)

	tests := []struct {
		name   string
		from   string
		want   string
		wantOK bool
	}{
		{"before anchor", "2025-06-01", "2026-01-05", true},
		{"on anchor", "2026-01-05", "2026-01-05", true},
		{"skips exception", "2026-01-06", "2026-01-19", true},
		{"last", "2026-01-20", "2026-01-26", true},
		{"past until", "2026-01-27", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := r.NextOnOrAfter(d(tt.from))
			if ok != tt.wantOK {
				t.Fatalf("NextOnOrAfter(%s) ok = %v, want %v", tt.from, ok, tt.wantOK)
			}
			if ok && got != d(tt.want) {
				t.Errorf("NextOnOrAfter(%s) = %s, want %s", tt.from, got, tt.want)
			}
		})
	}
}

func TestNextOnOrAfterFarFuture(t *testing.T) {
	tpl := template("2000-01-01", models.Pattern{Kind: constants.PatternEveryNDays, Interval: 7})
	got, ok := NextOnOrAfter(tpl, d("2400-03-01"))
	if !ok {
		t.Fatal("Expected an occurrence")
	}
	if got.DaysSince(d("2000-01-01"))%7 != 0 || got.Before(d("2400-03-01")) || got.DaysSince(d("2400-03-01")) >= 7 {
		t.Errorf("NextOnOrAfter = %s is not the next 7-day step", got)
	}
}

func TestExpandMatchesOccursOn(t *testing.T) {
	templates := []models.Template{
		template("2026-01-01", models.Pattern{Kind: constants.PatternEveryNDays, Interval: 3}),
		template("2026-01-06", models.Pattern{Kind: constants.PatternWeekly, Weekdays: []time.Weekday{time.Tuesday, time.Saturday}, Interval: 3}),
		template("2026-01-15", models.Pattern{Kind: constants.PatternMonthlyDay, MonthDays: []int{1, 15, 30}}),
		template("2026-01-12", models.Pattern{Kind: constants.PatternMonthlyWeekday, Ordinal: 2, Weekday: time.Monday}),
		template("2026-03-31", models.Pattern{Kind: constants.PatternYearly, Months: []time.Month{time.March, time.June}, MonthDays: []int{30, 31}}),
	}
	templates[0].Exceptions = dates("2026-01-10", "2026-02-03")

	windows := []struct{ start, end string }{
		{"2025-12-01", "2027-02-01"},
		{"2026-01-15", "2026-01-16"}, // single day
		{"2026-05-01", "2026-05-01"}, // empty
		{"2026-05-01", "2026-04-01"}, // reversed
	}

	for _, tpl := range templates {
		r := mustCompile(t, tpl)
		for _, w := range windows {
			start, end := d(w.start), d(w.end)
			var want []calendar.Date
			for day := start; day.Before(end); day = day.AddDays(1) {
				if r.OccursOn(day) {
					want = append(want, day)
				}
			}
			got := r.Dates(start, end)
			if !slices.Equal(got, want) {
				t.Errorf("%s [%s, %s): Expand = %v, OccursOn filter = %v",
					tpl.Pattern.Kind, w.start, w.end, got, want)
			}
		}
	}
}

func TestExpandIsRestartable(t *testing.T) {
	tpl := template("2026-01-01", models.Pattern{Kind: constants.PatternEveryNDays, Interval: 2})
	seq := Expand(tpl, d("2026-01-01"), d("2026-02-01"))

	first := slices.Collect(seq)
	second := slices.Collect(seq)
	if len(first) == 0 || !slices.Equal(first, second) {
		t.Errorf("Expected identical non-empty passes, got %v and %v", first, second)
	}

	// Early exit must not panic or leak state.
	for range seq {
		break
	}
}

func TestExpandAgreesWithRRule(t *testing.T) {
	until := d("2029-06-30")
	templates := []models.Template{
		template("2026-01-01", models.Pattern{Kind: constants.PatternEveryNDays, Interval: 5}),
		template("2026-01-02", models.Pattern{Kind: constants.PatternWeekly, Weekdays: []time.Weekday{time.Monday, time.Friday}}),
		template("2026-01-07", models.Pattern{Kind: constants.PatternWeekly, Weekdays: []time.Weekday{time.Sunday, time.Wednesday}, Interval: 2}),
		template("2026-01-31", models.Pattern{Kind: constants.PatternMonthlyDay, MonthDays: []int{31}}),
		template("2026-01-10", models.Pattern{Kind: constants.PatternMonthlyDay, MonthDays: []int{10, 29, 30}}),
		template("2026-01-30", models.Pattern{Kind: constants.PatternMonthlyWeekday, Ordinal: constants.OrdinalLast, Weekday: time.Friday}),
		template("2026-01-29", models.Pattern{Kind: constants.PatternMonthlyWeekday, Ordinal: 5, Weekday: time.Thursday}),
		template("2026-01-05", models.Pattern{Kind: constants.PatternMonthlyWeekday, Ordinal: 1, Weekday: time.Monday}),
		template("2028-02-29", models.Pattern{Kind: constants.PatternYearly, Months: []time.Month{time.February}, MonthDays: []int{29}}),
		template("2026-04-01", models.Pattern{Kind: constants.PatternYearly, Months: []time.Month{time.April, time.October}, MonthDays: []int{1, 31}}),
	}
	templates[1].Exceptions = dates("2026-03-02")
	templates[3].Until = &until
	templates[5].Count = 20

	start, end := d("2025-06-01"), d("2036-01-01")
	for _, tpl := range templates {
		t.Run(Describe(tpl.Pattern), func(t *testing.T) {
			want, err := RRuleDates(tpl, start, end)
			if err != nil {
				t.Fatalf("RRuleDates failed: %v", err)
			}
			got := mustCompile(t, tpl).Dates(start, end)
			if !slices.Equal(got, want) {
				t.Errorf("Expand disagrees with rrule-go:\n got  %v\n want %v", got, want)
			}
		})
	}
}

func TestRRuleString(t *testing.T) {
	tpl := template("2026-01-05", models.Pattern{
		Kind:     constants.PatternWeekly,
		Weekdays: []time.Weekday{time.Thursday, time.Monday},
		Interval: 2,
	})
	got, err := RRule(tpl)
	if err != nil {
		t.Fatalf("RRule failed: %v", err)
	}
	for _, part := range []string{"FREQ=WEEKLY", "INTERVAL=2", "BYDAY=MO,TH"} {
		if !strings.Contains(got, part) {
			t.Errorf("RRule = %q, missing %s", got, part)
		}
	}
	if strings.Contains(got, "DTSTART") {
		t.Errorf("RRule = %q should not carry DTSTART", got)
	}

	last := template("2026-01-30", models.Pattern{Kind: constants.PatternMonthlyWeekday, Ordinal: -1, Weekday: time.Friday})
	got, err = RRule(last)
	if err != nil {
		t.Fatalf("RRule failed: %v", err)
	}
	if !strings.Contains(got, "BYDAY=-1FR") {
		t.Errorf("RRule = %q, want BYDAY=-1FR", got)
	}
}

func TestValidate(t *testing.T) {
	until := d("2025-12-31")
	later := d("2026-02-01")
	tests := []struct {
		name   string
		modify func(*models.Template)
	}{
		{"empty title", func(tpl *models.Template) { tpl.Title = "  " }},
		{"missing anchor", func(tpl *models.Template) { tpl.AnchorDate = calendar.Date{} }},
		{"missing kind", func(tpl *models.Template) { tpl.Pattern = models.Pattern{} }},
		{"unknown kind", func(tpl *models.Template) { tpl.Pattern.Kind = "fortnightly" }},
		{"no weekdays", func(tpl *models.Template) { tpl.Pattern.Weekdays = nil }},
		{"bad weekday", func(tpl *models.Template) { tpl.Pattern.Weekdays = []time.Weekday{9} }},
		{"anchor mismatch", func(tpl *models.Template) { tpl.AnchorDate = d("2026-01-06") }},
		{"until before anchor", func(tpl *models.Template) { tpl.Until = &until }},
		{"until and count", func(tpl *models.Template) { tpl.Until = &later; tpl.Count = 3 }},
		{"negative count", func(tpl *models.Template) { tpl.Count = -1 }},
		{"huge count", func(tpl *models.Template) { tpl.Count = MaxCount + 1 }},
		{"bad due time", func(tpl *models.Template) { tpl.DueTime = "25:00" }},
		{"negative alert", func(tpl *models.Template) { tpl.AlertAfterMin = -5 }},
		{"interval zero every n days", func(tpl *models.Template) {
			tpl.Pattern = models.Pattern{Kind: constants.PatternEveryNDays}
		}},
		{"bad ordinal", func(tpl *models.Template) {
			tpl.Pattern = models.Pattern{Kind: constants.PatternMonthlyWeekday, Ordinal: 6, Weekday: time.Monday}
		}},
		{"month day out of range", func(tpl *models.Template) {
			tpl.Pattern = models.Pattern{Kind: constants.PatternMonthlyDay, MonthDays: []int{32}}
		}},
		{"impossible yearly date", func(tpl *models.Template) {
			tpl.Pattern = models.Pattern{Kind: constants.PatternYearly, Months: []time.Month{time.February}, MonthDays: []int{30}}
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tpl := template("2026-01-05", models.Pattern{Kind: constants.PatternWeekly, Weekdays: []time.Weekday{time.Monday}})
			if err := Validate(tpl); err != nil {
				t.Fatalf("Base template should be valid: %v", err)
			}
			tt.modify(&tpl)
			err := Validate(tpl)
			if err == nil {
				t.Fatal("Expected validation error")
			}
			if !errors.Is(err, apperrors.ErrInvalidTemplate) {
				t.Errorf("Expected ErrInvalidTemplate, got %v", err)
			}
		})
	}
}

func TestExceptedAnchorIsValid(t *testing.T) {
	tpl := template("2026-01-05", models.Pattern{Kind: constants.PatternWeekly, Weekdays: []time.Weekday{time.Monday}})
	tpl.Exceptions = dates("2026-01-05")
	r := mustCompile(t, tpl)
	if r.OccursOn(d("2026-01-05")) {
		t.Error("Excepted anchor must not occur")
	}
	if !r.OccursOn(d("2026-01-12")) {
		t.Error("Expected the following Monday to occur")
	}
}

func TestInvalidTemplateProducesNothing(t *testing.T) {
	tpl := template("2026-01-06", models.Pattern{Kind: constants.PatternWeekly, Weekdays: []time.Weekday{time.Monday}})
	if OccursOn(tpl, d("2026-01-12")) {
		t.Error("Invalid template must not produce occurrences")
	}
	if got := slices.Collect(Expand(tpl, d("2026-01-01"), d("2026-02-01"))); len(got) != 0 {
		t.Errorf("Expected no dates, got %v", got)
	}
}

func TestDescribe(t *testing.T) {
	tests := []struct {
		p    models.Pattern
		want string
	}{
		{models.Pattern{Kind: constants.PatternEveryNDays, Interval: 1}, "daily"},
		{models.Pattern{Kind: constants.PatternEveryNDays, Interval: 3}, "every 3 days"},
		{models.Pattern{Kind: constants.PatternWeekly, Weekdays: []time.Weekday{time.Sunday, time.Monday}}, "weekly on Mon,Sun"},
		{models.Pattern{Kind: constants.PatternWeekly, Weekdays: []time.Weekday{time.Friday}, Interval: 2}, "every 2 weeks on Fri"},
		{models.Pattern{Kind: constants.PatternMonthlyDay, MonthDays: []int{15, 1}}, "monthly on day 1,15"},
		{models.Pattern{Kind: constants.PatternMonthlyWeekday, Ordinal: -1, Weekday: time.Friday}, "monthly on the last Friday"},
		{models.Pattern{Kind: constants.PatternYearly, Months: []time.Month{time.June, time.March}, MonthDays: []int{1}}, "yearly in Mar,Jun on day 1"},
	}
	for _, tt := range tests {
		if got := Describe(tt.p); got != tt.want {
			t.Errorf("Describe(%+v) = %q, want %q", tt.p, got, tt.want)
		}
	}
}

func TestFirstMatch(t *testing.T) {
	from := d("2026-01-10") // Saturday
	tests := []struct {
		name string
		p    models.Pattern
		want string
		ok   bool
	}{
		{"every n days starts on from", models.Pattern{Kind: constants.PatternEveryNDays, Interval: 3}, "2026-01-10", true},
		{"weekly", models.Pattern{Kind: constants.PatternWeekly, Weekdays: []time.Weekday{time.Monday}}, "2026-01-12", true},
		{"last friday", models.Pattern{Kind: constants.PatternMonthlyWeekday, Ordinal: -1, Weekday: time.Friday}, "2026-01-30", true},
		{"leap day", models.Pattern{Kind: constants.PatternYearly, Months: []time.Month{time.February}, MonthDays: []int{29}}, "2028-02-29", true},
		{"invalid", models.Pattern{Kind: constants.PatternWeekly}, "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := FirstMatch(tt.p, from)
			if ok != tt.ok {
				t.Fatalf("FirstMatch ok = %v, want %v", ok, tt.ok)
			}
			if ok && got != d(tt.want) {
				t.Errorf("FirstMatch = %s, want %s", got, tt.want)
			}
			if ok {
				if err := Validate(template(got.String(), tt.p)); err != nil {
					t.Errorf("anchoring at %s is invalid: %v", got, err)
				}
			}
		})
	}
}
