package calendar

import (
	"testing"
	"time"
)

func TestParseDate(t *testing.T) {
	d, err := ParseDate("2026-02-28")
	if err != nil {
		t.Fatalf("ParseDate returned error: %v", err)
	}
	if d.Year != 2026 || d.Month != time.February || d.Day != 28 {
		t.Errorf("ParseDate = %+v, want 2026-02-28", d)
	}

	for _, bad := range []string{"", "2026-02-30", "02/28/2026", "2026-2-1"} {
		if _, err := ParseDate(bad); err == nil {
			t.Errorf("ParseDate(%q) expected error", bad)
		}
	}
}

func TestDateArithmetic(t *testing.T) {
	tests := []struct {
		name string
		from string
		days int
		want string
	}{
		{"same day", "2026-01-01", 0, "2026-01-01"},
		{"month rollover", "2026-01-31", 1, "2026-02-01"},
		{"leap day", "2028-02-28", 1, "2028-02-29"},
		{"year rollover", "2026-12-31", 1, "2027-01-01"},
		{"backwards", "2026-03-01", -1, "2026-02-28"},
		{"long jump", "2026-01-01", 365, "2027-01-01"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			from := MustParseDate(tt.from)
			got := from.AddDays(tt.days)
			if got.String() != tt.want {
				t.Errorf("AddDays(%d) = %s, want %s", tt.days, got, tt.want)
			}
			if back := got.DaysSince(from); back != tt.days {
				t.Errorf("DaysSince = %d, want %d", back, tt.days)
			}
		})
	}
}

func TestDateCompare(t *testing.T) {
	a := MustParseDate("2026-01-31")
	b := MustParseDate("2026-02-01")

	if !a.Before(b) || b.Before(a) {
		t.Error("expected 2026-01-31 before 2026-02-01")
	}
	if !b.After(a) {
		t.Error("expected 2026-02-01 after 2026-01-31")
	}
	if a.Compare(a) != 0 {
		t.Error("date should compare equal to itself")
	}
}

func TestDaysIn(t *testing.T) {
	tests := map[time.Month]int{
		time.January:   31,
		time.February:  28,
		time.April:     30,
		time.September: 30,
		time.December:  31,
	}
	for month, want := range tests {
		if got := DaysIn(2026, month); got != want {
			t.Errorf("DaysIn(2026, %s) = %d, want %d", month, got, want)
		}
	}
	if got := DaysIn(2028, time.February); got != 29 {
		t.Errorf("DaysIn(2028, February) = %d, want 29", got)
	}
}

func TestDateTextRoundTrip(t *testing.T) {
	d := MustParseDate("2026-07-04")
	b, err := d.MarshalText()
	if err != nil {
		t.Fatalf("MarshalText: %v", err)
	}
	var back Date
	if err := back.UnmarshalText(b); err != nil {
		t.Fatalf("UnmarshalText: %v", err)
	}
	if back != d {
		t.Errorf("round trip = %s, want %s", back, d)
	}
}
