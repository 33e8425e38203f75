package storage

import (
	"context"
	"time"

	"github.com/julianstephens/daybook/internal/calendar"
	"github.com/julianstephens/daybook/internal/constants"
	apperrors "github.com/julianstephens/daybook/internal/errors"
	"github.com/julianstephens/daybook/internal/models"
)

// ErrNotFound is returned when a row does not exist. It is the same sentinel
// the rest of the application matches on.
var ErrNotFound = apperrors.ErrNotFound

type Provider interface {
	// Lifecycle
	Init(ctx context.Context) error
	Load(ctx context.Context) error
	Close() error
	// Migrate applies pending schema migrations and reports how many ran.
	Migrate(ctx context.Context, logFn func(string)) (int, error)
	// SchemaVersion returns the database's schema version and the newest one
	// this binary knows about.
	SchemaVersion(ctx context.Context) (current, latest int, err error)

	// Templates
	AddTemplate(ctx context.Context, t models.Template) error
	GetTemplate(ctx context.Context, id string) (models.Template, error)
	ListTemplates(ctx context.Context, includeRetired bool) ([]models.Template, error)
	// UpdateTemplate rewrites the template's definition. Exceptions and
	// occurrences are left alone.
	UpdateTemplate(ctx context.Context, t models.Template) error
	RetireTemplate(ctx context.Context, id string, at time.Time) error

	// Exceptions
	AddException(ctx context.Context, templateID string, day calendar.Date) error
	RemoveException(ctx context.Context, templateID string, day calendar.Date) error

	// Occurrences
	GetOccurrence(ctx context.Context, templateID string, day calendar.Date) (models.Occurrence, error)
	// ListOccurrences returns stored rows with start <= day < end, ordered by day.
	ListOccurrences(ctx context.Context, start, end calendar.Date) ([]models.Occurrence, error)
	// ListTemplateOccurrences is ListOccurrences restricted to one template.
	ListTemplateOccurrences(ctx context.Context, templateID string, start, end calendar.Date) ([]models.Occurrence, error)
	// UpsertOccurrenceStatus creates or updates the (templateID, day) row in a
	// single statement. Done stamps completed_at with now unless the row was
	// already done; other statuses clear it.
	UpsertOccurrenceStatus(ctx context.Context, templateID string, day calendar.Date, status constants.OccurrenceStatus, now time.Time) (models.Occurrence, error)
	// UpsertOccurrenceTitle sets the override title, creating a pending row if
	// none exists. The status of an existing row is untouched.
	UpsertOccurrenceTitle(ctx context.Context, templateID string, day calendar.Date, title string, now time.Time) (models.Occurrence, error)
	CountOccurrences(ctx context.Context) (int, error)

	// Todos
	AddTodo(ctx context.Context, todo models.Todo) error
	GetTodo(ctx context.Context, id string) (models.Todo, error)
	// ListTodos returns todos due in [start, end).
	ListTodos(ctx context.Context, start, end calendar.Date) ([]models.Todo, error)
	SetTodoStatus(ctx context.Context, id string, status constants.TodoStatus, now time.Time) (models.Todo, error)
	DeleteTodo(ctx context.Context, id string) error

	// Maintenance
	Clear(ctx context.Context) error

	// Utils
	GetConfigPath() string
}
