package calendar

import (
	"fmt"
	"time"

	apperrors "github.com/julianstephens/daybook/internal/errors"
)

// Clock answers "what day is it" for a fixed time zone.
type Clock struct {
	loc *time.Location
	now func() time.Time
}

// LoadLocation loads a timezone location from an IANA timezone name.
// If the timezone is "Local" or empty, it returns the system's local timezone.
func LoadLocation(timezone string) (*time.Location, error) {
	if timezone == "" || timezone == "Local" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(timezone)
	if err != nil {
		return nil, fmt.Errorf("%w: %q: %v", apperrors.ErrInvalidZone, timezone, err)
	}
	return loc, nil
}

// NewClock resolves zone once. An unknown zone yields ErrInvalidZone.
func NewClock(zone string) (*Clock, error) {
	loc, err := LoadLocation(zone)
	if err != nil {
		return nil, err
	}
	return &Clock{loc: loc, now: time.Now}, nil
}

// NewFixedClock returns a clock frozen at now, for tests and replays.
func NewFixedClock(loc *time.Location, now time.Time) *Clock {
	return &Clock{loc: loc, now: func() time.Time { return now }}
}

func (c *Clock) Location() *time.Location {
	return c.loc
}

// Now returns the current instant in the clock's zone.
func (c *Clock) Now() time.Time {
	return c.now().In(c.loc)
}

// Today returns the current calendar date in the clock's zone.
func (c *Clock) Today() Date {
	return c.DateOf(c.now())
}

// DateOf returns the zone-local calendar date of an instant.
func (c *Clock) DateOf(t time.Time) Date {
	return DateOf(t.In(c.loc))
}

// DayBounds returns [start, end) of d as instants. Both ends are civil
// midnights, so days that gain or lose an hour to DST are 25 or 23 hours long.
func (c *Clock) DayBounds(d Date) (time.Time, time.Time) {
	return d.In(c.loc), d.AddDays(1).In(c.loc)
}
