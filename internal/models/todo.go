package models

import (
	"time"

	"github.com/julianstephens/daybook/internal/calendar"
	"github.com/julianstephens/daybook/internal/constants"
)

type Todo struct {
	ID          string               `json:"id"`
	Title       string               `json:"title"`
	DueDate     calendar.Date        `json:"due_date"`
	Status      constants.TodoStatus `json:"status"`
	CreatedAt   time.Time            `json:"created_at"`
	CompletedAt *time.Time           `json:"completed_at,omitempty"`
}

func ValidTodoStatus(s constants.TodoStatus) bool {
	return s == constants.TodoPending || s == constants.TodoDone
}
