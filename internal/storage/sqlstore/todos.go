package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/julianstephens/daybook/internal/calendar"
	"github.com/julianstephens/daybook/internal/constants"
	apperrors "github.com/julianstephens/daybook/internal/errors"
	"github.com/julianstephens/daybook/internal/models"
)

const todoColumns = `id, title, due_date, status, created_at, completed_at`

func (s *Store) AddTodo(ctx context.Context, todo models.Todo) error {
	_, err := s.exec(ctx, `
		INSERT INTO todos (id, title, due_date, status, created_at, completed_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		todo.ID, todo.Title, todo.DueDate.String(), string(todo.Status),
		formatTime(todo.CreatedAt), nullTime(todo.CompletedAt),
	)
	if err != nil {
		return fmt.Errorf("failed to insert todo: %w", err)
	}
	return nil
}

func (s *Store) GetTodo(ctx context.Context, id string) (models.Todo, error) {
	row := s.queryRow(ctx, `SELECT `+todoColumns+` FROM todos WHERE id = ?`, id)
	todo, err := scanTodo(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Todo{}, fmt.Errorf("%w: todo %s", apperrors.ErrNotFound, id)
		}
		return models.Todo{}, err
	}
	return todo, nil
}

func (s *Store) ListTodos(ctx context.Context, start, end calendar.Date) ([]models.Todo, error) {
	rows, err := s.query(ctx, `SELECT `+todoColumns+` FROM todos
		WHERE due_date >= ? AND due_date < ? ORDER BY due_date, created_at, id`, start.String(), end.String())
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var todos []models.Todo
	for rows.Next() {
		todo, err := scanTodo(rows)
		if err != nil {
			return nil, err
		}
		todos = append(todos, todo)
	}
	return todos, rows.Err()
}

func (s *Store) SetTodoStatus(ctx context.Context, id string, status constants.TodoStatus, now time.Time) (models.Todo, error) {
	var completedAt sql.NullString
	if status == constants.TodoDone {
		completedAt = nullTime(&now)
	}
	// Marking a done todo done again keeps the first stamp.
	res, err := s.exec(ctx, `
		UPDATE todos SET
			completed_at = CASE WHEN status = 'done' AND ? THEN completed_at ELSE ? END,
			status = ?
		WHERE id = ?`, status == constants.TodoDone, completedAt, string(status), id)
	if err != nil {
		return models.Todo{}, fmt.Errorf("failed to update todo: %w", err)
	}
	if err := expectRow(res, "todo", id); err != nil {
		return models.Todo{}, err
	}
	return s.GetTodo(ctx, id)
}

func (s *Store) DeleteTodo(ctx context.Context, id string) error {
	res, err := s.exec(ctx, `DELETE FROM todos WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete todo: %w", err)
	}
	return expectRow(res, "todo", id)
}

func scanTodo(row rowScanner) (models.Todo, error) {
	var todo models.Todo
	var due, status, createdAt string
	var completedAt sql.NullString

	err := row.Scan(&todo.ID, &todo.Title, &due, &status, &createdAt, &completedAt)
	if err != nil {
		return models.Todo{}, err
	}

	todo.Status = constants.TodoStatus(status)
	if todo.DueDate, err = parseDay(due, "due_date"); err != nil {
		return models.Todo{}, err
	}
	if todo.CreatedAt, err = parseTime(createdAt, "created_at"); err != nil {
		return models.Todo{}, err
	}
	if todo.CompletedAt, err = parseNullTime(completedAt, "completed_at"); err != nil {
		return models.Todo{}, err
	}
	return todo, nil
}
