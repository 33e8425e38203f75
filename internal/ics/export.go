// Package ics renders templates and todos as an iCalendar feed. Templates
// become recurring VEVENTs with RRULE and EXDATE; todos become VTODOs.
// Per-occurrence state (done, skipped, renamed) is not exported.
package ics

import (
	"fmt"
	"io"
	"strings"
	"time"

	ical "github.com/arran4/golang-ical"

	"github.com/julianstephens/daybook/internal/calendar"
	"github.com/julianstephens/daybook/internal/constants"
	"github.com/julianstephens/daybook/internal/logger"
	"github.com/julianstephens/daybook/internal/models"
	"github.com/julianstephens/daybook/internal/recurrence"
)

const (
	dateLayout     = "20060102"
	dateTimeLayout = "20060102T150405Z"
	uidSuffix      = "@" + constants.AppName
)

type Options struct {
	// Name is written as X-WR-CALNAME.
	Name string
	// Location interprets template due times; events without one are all-day.
	Location *time.Location
	// Now stamps DTSTAMP.
	Now time.Time
}

// Write encodes templates and todos to w. Retired templates and templates
// that fail validation are skipped.
func Write(w io.Writer, templates []models.Template, todos []models.Todo, opts Options) error {
	cal, err := Build(templates, todos, opts)
	if err != nil {
		return err
	}
	return cal.SerializeTo(w)
}

func Build(templates []models.Template, todos []models.Todo, opts Options) (*ical.Calendar, error) {
	if opts.Location == nil {
		opts.Location = time.Local
	}
	if opts.Now.IsZero() {
		opts.Now = time.Now()
	}

	cal := ical.NewCalendar()
	cal.SetMethod(ical.MethodPublish)
	cal.SetProductId(fmt.Sprintf("-//%s//%s//EN", constants.AppName, constants.Version))
	if opts.Name != "" {
		cal.SetXWRCalName(opts.Name)
	}
	cal.SetXWRTimezone(opts.Location.String())

	for _, t := range templates {
		if t.Retired() {
			continue
		}
		if err := addEvent(cal, t, opts); err != nil {
			logger.Warn("Skipping template in export", "template", t.ID, "error", err)
		}
	}
	for _, todo := range todos {
		addTodo(cal, todo, opts)
	}
	return cal, nil
}

func addEvent(cal *ical.Calendar, t models.Template, opts Options) error {
	rule, err := recurrence.RRule(t)
	if err != nil {
		return err
	}
	start, timed, err := startOf(t, t.AnchorDate, opts.Location)
	if err != nil {
		return err
	}

	ev := cal.AddEvent(t.ID + uidSuffix)
	ev.SetDtStampTime(opts.Now)
	ev.SetCreatedTime(t.CreatedAt)
	ev.SetModifiedAt(t.UpdatedAt)
	ev.SetSummary(t.Title)
	if t.Description != "" {
		ev.SetDescription(t.Description)
	}

	if timed {
		ev.SetStartAt(start)
		ev.SetEndAt(start)
	} else {
		ev.SetAllDayStartAt(start)
		ev.SetAllDayEndAt(start.AddDate(0, 0, 1))
		// UNTIL must share DTSTART's value type.
		rule = dateOnlyUntil(rule)
	}
	ev.AddRrule(rule)

	for _, d := range t.Exceptions {
		ex, _, err := startOf(t, d, opts.Location)
		if err != nil {
			return err
		}
		if timed {
			ev.AddExdate(ex.UTC().Format(dateTimeLayout))
		} else {
			ev.AddExdate(ex.Format(dateLayout), ical.WithValue(string(ical.ValueDataTypeDate)))
		}
	}
	return nil
}

// startOf returns the start of the template's occurrence on d: the due time in
// loc when the template has one, otherwise the date itself.
func startOf(t models.Template, d calendar.Date, loc *time.Location) (time.Time, bool, error) {
	if t.DueTime == "" {
		return d.In(time.UTC), false, nil
	}
	clock, err := time.Parse(constants.TimeFormat, t.DueTime)
	if err != nil {
		return time.Time{}, false, fmt.Errorf("invalid due time %q: %w", t.DueTime, err)
	}
	return time.Date(d.Year, d.Month, d.Day, clock.Hour(), clock.Minute(), 0, 0, loc), true, nil
}

// dateOnlyUntil rewrites UNTIL=YYYYMMDDT000000Z to the DATE form.
func dateOnlyUntil(rule string) string {
	parts := strings.Split(rule, ";")
	for i, p := range parts {
		if v, ok := strings.CutPrefix(p, "UNTIL="); ok && len(v) >= len(dateLayout) {
			parts[i] = "UNTIL=" + v[:len(dateLayout)]
		}
	}
	return strings.Join(parts, ";")
}

func addTodo(cal *ical.Calendar, todo models.Todo, opts Options) {
	vt := cal.AddTodo(todo.ID + uidSuffix)
	vt.SetDtStampTime(opts.Now)
	vt.SetCreatedTime(todo.CreatedAt)
	vt.SetSummary(todo.Title)
	vt.SetProperty(ical.ComponentPropertyDue, todo.DueDate.In(time.UTC).Format(dateLayout),
		ical.WithValue(string(ical.ValueDataTypeDate)))

	if todo.Status == constants.TodoDone {
		vt.SetProperty(ical.ComponentPropertyStatus, string(ical.ObjectStatusCompleted))
		if todo.CompletedAt != nil {
			vt.SetProperty(ical.ComponentPropertyCompleted, todo.CompletedAt.UTC().Format(dateTimeLayout))
		}
	} else {
		vt.SetProperty(ical.ComponentPropertyStatus, string(ical.ObjectStatusNeedsAction))
	}
}
