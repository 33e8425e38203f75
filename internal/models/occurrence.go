package models

import (
	"time"

	"github.com/julianstephens/daybook/internal/calendar"
	"github.com/julianstephens/daybook/internal/constants"
)

// Occurrence is one concrete instance of a template on one date. Pending
// occurrences nobody has touched are computed and have Materialized=false.
type Occurrence struct {
	TemplateID    string                     `json:"template_id"`
	Date          calendar.Date              `json:"date"`
	Status        constants.OccurrenceStatus `json:"status"`
	OverrideTitle string                     `json:"override_title,omitempty"`
	CompletedAt   *time.Time                 `json:"completed_at,omitempty"`
	Materialized  bool                       `json:"materialized"`
	CreatedAt     time.Time                  `json:"created_at,omitempty"`
	UpdatedAt     time.Time                  `json:"updated_at,omitempty"`
}

// ValidOccurrenceStatus reports whether s is a known occurrence status.
func ValidOccurrenceStatus(s constants.OccurrenceStatus) bool {
	switch s {
	case constants.StatusPending, constants.StatusDone, constants.StatusSkipped:
		return true
	}
	return false
}
