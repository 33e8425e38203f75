package models

import (
	"time"

	"github.com/julianstephens/daybook/internal/calendar"
	"github.com/julianstephens/daybook/internal/constants"
)

// DailyItem is one row of a merged day view. TemplateID is set for
// occurrences, TodoID for todos.
type DailyItem struct {
	Kind        constants.ItemKind `json:"kind"`
	TemplateID  string             `json:"template_id,omitempty"`
	TodoID      string             `json:"todo_id,omitempty"`
	Date        calendar.Date      `json:"date"`
	Title       string             `json:"title"`
	Description string             `json:"description,omitempty"`
	Status      string             `json:"status"`
	DueTime     string             `json:"due_time,omitempty"`
	Overdue     bool               `json:"overdue"`
	Retired     bool               `json:"retired,omitempty"`
	CompletedAt *time.Time         `json:"completed_at,omitempty"`
	// CreatedAt drives the secondary sort: template creation for occurrences,
	// todo creation for todos.
	CreatedAt time.Time `json:"created_at"`
}

// DailyList is the ordered, derived view of one date. It is never persisted.
type DailyList struct {
	Date  calendar.Date `json:"date"`
	Items []DailyItem   `json:"items"`
}

// DaySummary drives one cell of the month grid.
type DaySummary struct {
	Pending     int `json:"pending"`
	Done        int `json:"done"`
	Skipped     int `json:"skipped"`
	TodoPending int `json:"todo_pending"`
	TodoDone    int `json:"todo_done"`
}

// Total counts every item for the day.
func (s DaySummary) Total() int {
	return s.Pending + s.Done + s.Skipped + s.TodoPending + s.TodoDone
}

// Upcoming lists the next dates a template produces.
type Upcoming struct {
	Template Template        `json:"template"`
	Dates    []calendar.Date `json:"dates"`
}
