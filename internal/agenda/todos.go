package agenda

import (
	"context"
	"fmt"
	"strings"

	"github.com/julianstephens/daybook/internal/calendar"
	"github.com/julianstephens/daybook/internal/constants"
	apperrors "github.com/julianstephens/daybook/internal/errors"
	"github.com/julianstephens/daybook/internal/logger"
	"github.com/julianstephens/daybook/internal/models"
)

func (s *Service) CreateTodo(ctx context.Context, title string, due calendar.Date) (models.Todo, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return models.Todo{}, fmt.Errorf("%w: todo title cannot be empty", apperrors.ErrInvalidInput)
	}
	if due.IsZero() {
		due = s.clock.Today()
	}

	todo := models.Todo{
		ID:        s.newID(),
		Title:     title,
		DueDate:   due,
		Status:    constants.TodoPending,
		CreatedAt: s.clock.Now(),
	}
	if err := s.db.AddTodo(ctx, todo); err != nil {
		return models.Todo{}, err
	}
	logger.Debug("Todo created", "todo", todo.ID, "due", due.String())
	return todo, nil
}

func (s *Service) SetTodoStatus(ctx context.Context, id string, status constants.TodoStatus) (models.Todo, error) {
	if !models.ValidTodoStatus(status) {
		return models.Todo{}, fmt.Errorf("%w: unknown todo status %q (expected pending or done)", apperrors.ErrInvalidInput, status)
	}
	return s.db.SetTodoStatus(ctx, id, status, s.clock.Now())
}

func (s *Service) DeleteTodo(ctx context.Context, id string) error {
	if err := s.db.DeleteTodo(ctx, id); err != nil {
		return err
	}
	logger.Debug("Todo deleted", "todo", id)
	return nil
}

// ListTodos returns the todos due in [start, end).
func (s *Service) ListTodos(ctx context.Context, start, end calendar.Date) ([]models.Todo, error) {
	return s.db.ListTodos(ctx, start, end)
}
