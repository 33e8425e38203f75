package models

import (
	"time"

	"github.com/julianstephens/daybook/internal/calendar"
	"github.com/julianstephens/daybook/internal/constants"
)

// Pattern is a tagged variant: Kind selects which of the remaining fields apply.
//
//	every_n_days     Interval
//	weekly           Weekdays, Interval (weeks)
//	monthly_day      MonthDays
//	monthly_weekday  Ordinal (1..5 or -1 for last), Weekday
//	yearly           Months, MonthDays
type Pattern struct {
	Kind      constants.PatternKind `json:"kind"`
	Interval  int                   `json:"interval,omitempty"`
	Weekdays  []time.Weekday        `json:"weekdays,omitempty"`
	MonthDays []int                 `json:"month_days,omitempty"`
	Months    []time.Month          `json:"months,omitempty"`
	Ordinal   int                   `json:"ordinal,omitempty"`
	Weekday   time.Weekday          `json:"weekday,omitempty"`
}

// Template is a recurring task definition. Exceptions are owned separately from
// the pattern and may change without touching any stored occurrence.
type Template struct {
	ID          string          `json:"id"`
	Title       string          `json:"title"`
	Description string          `json:"description,omitempty"`
	AnchorDate  calendar.Date   `json:"anchor_date"`
	Pattern     Pattern         `json:"pattern"`
	Until       *calendar.Date  `json:"until,omitempty"`
	Count       int             `json:"count,omitempty"`
	Exceptions  []calendar.Date `json:"exceptions,omitempty"`
	DueTime     string          `json:"due_time,omitempty"` // HH:MM format
	// AlertAfterMin is the grace period, in minutes from the start of the day,
	// after which a pending occurrence is reported overdue. Zero disables it.
	AlertAfterMin int        `json:"alert_after_min,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
	RetiredAt     *time.Time `json:"retired_at,omitempty"`
}

func (t Template) Retired() bool {
	return t.RetiredAt != nil
}

// TemplateInput is the definition accepted when creating a template.
type TemplateInput struct {
	Title         string         `json:"title"`
	Description   string         `json:"description"`
	AnchorDate    calendar.Date  `json:"anchor_date"`
	Pattern       Pattern        `json:"pattern"`
	Until         *calendar.Date `json:"until,omitempty"`
	Count         int            `json:"count,omitempty"`
	DueTime       string         `json:"due_time,omitempty"`
	AlertAfterMin int            `json:"alert_after_min,omitempty"`
}

// TemplatePatch holds optional edits; nil fields are left unchanged.
// ClearUntil removes an existing until bound.
type TemplatePatch struct {
	Title         *string        `json:"title,omitempty"`
	Description   *string        `json:"description,omitempty"`
	AnchorDate    *calendar.Date `json:"anchor_date,omitempty"`
	Pattern       *Pattern       `json:"pattern,omitempty"`
	Until         *calendar.Date `json:"until,omitempty"`
	ClearUntil    bool           `json:"clear_until,omitempty"`
	Count         *int           `json:"count,omitempty"`
	DueTime       *string        `json:"due_time,omitempty"`
	AlertAfterMin *int           `json:"alert_after_min,omitempty"`
}

// Apply returns a copy of t with the patch applied.
func (p TemplatePatch) Apply(t Template) Template {
	if p.Title != nil {
		t.Title = *p.Title
	}
	if p.Description != nil {
		t.Description = *p.Description
	}
	if p.AnchorDate != nil {
		t.AnchorDate = *p.AnchorDate
	}
	if p.Pattern != nil {
		t.Pattern = *p.Pattern
	}
	if p.ClearUntil {
		t.Until = nil
	}
	if p.Until != nil {
		until := *p.Until
		t.Until = &until
	}
	if p.Count != nil {
		t.Count = *p.Count
	}
	if p.DueTime != nil {
		t.DueTime = *p.DueTime
	}
	if p.AlertAfterMin != nil {
		t.AlertAfterMin = *p.AlertAfterMin
	}
	return t
}
