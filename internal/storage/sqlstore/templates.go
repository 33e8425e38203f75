package sqlstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/julianstephens/daybook/internal/calendar"
	apperrors "github.com/julianstephens/daybook/internal/errors"
	"github.com/julianstephens/daybook/internal/models"
)

const templateColumns = `id, title, description, anchor_date, pattern, until_date, count,
	due_time, alert_after_min, created_at, updated_at, retired_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func (s *Store) AddTemplate(ctx context.Context, t models.Template) error {
	pattern, err := json.Marshal(t.Pattern)
	if err != nil {
		return fmt.Errorf("failed to marshal pattern: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	_, err = tx.ExecContext(ctx, s.dialect.Rebind(`
		INSERT INTO templates (id, title, description, anchor_date, pattern_kind, pattern, until_date,
			count, due_time, alert_after_min, created_at, updated_at, retired_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`),
		t.ID, t.Title, t.Description, t.AnchorDate.String(), string(t.Pattern.Kind), string(pattern),
		nullDay(t.Until), t.Count, t.DueTime, t.AlertAfterMin,
		formatTime(t.CreatedAt), formatTime(t.UpdatedAt), nullTime(t.RetiredAt),
	)
	if err != nil {
		return fmt.Errorf("failed to insert template: %w", err)
	}

	for _, day := range t.Exceptions {
		if _, err := tx.ExecContext(ctx, s.dialect.Rebind(`
			INSERT INTO template_exceptions (template_id, day) VALUES (?, ?)
			ON CONFLICT (template_id, day) DO NOTHING`), t.ID, day.String()); err != nil {
			return fmt.Errorf("failed to insert exception %s: %w", day, err)
		}
	}

	return tx.Commit()
}

func (s *Store) GetTemplate(ctx context.Context, id string) (models.Template, error) {
	row := s.queryRow(ctx, `SELECT `+templateColumns+` FROM templates WHERE id = ?`, id)
	t, err := scanTemplate(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Template{}, fmt.Errorf("%w: template %s", apperrors.ErrNotFound, id)
		}
		return models.Template{}, err
	}

	exceptions, err := s.exceptions(ctx, id)
	if err != nil {
		return models.Template{}, err
	}
	t.Exceptions = exceptions[id]
	return t, nil
}

func (s *Store) ListTemplates(ctx context.Context, includeRetired bool) ([]models.Template, error) {
	query := `SELECT ` + templateColumns + ` FROM templates`
	if !includeRetired {
		query += ` WHERE retired_at IS NULL`
	}
	query += ` ORDER BY created_at, id`

	rows, err := s.query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var templates []models.Template
	for rows.Next() {
		t, err := scanTemplate(rows)
		if err != nil {
			return nil, err
		}
		templates = append(templates, t)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	exceptions, err := s.exceptions(ctx, "")
	if err != nil {
		return nil, err
	}
	for i := range templates {
		templates[i].Exceptions = exceptions[templates[i].ID]
	}
	return templates, nil
}

func (s *Store) UpdateTemplate(ctx context.Context, t models.Template) error {
	pattern, err := json.Marshal(t.Pattern)
	if err != nil {
		return fmt.Errorf("failed to marshal pattern: %w", err)
	}

	res, err := s.exec(ctx, `
		UPDATE templates SET title = ?, description = ?, anchor_date = ?, pattern_kind = ?, pattern = ?,
			until_date = ?, count = ?, due_time = ?, alert_after_min = ?, updated_at = ?
		WHERE id = ?`,
		t.Title, t.Description, t.AnchorDate.String(), string(t.Pattern.Kind), string(pattern),
		nullDay(t.Until), t.Count, t.DueTime, t.AlertAfterMin, formatTime(t.UpdatedAt), t.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update template: %w", err)
	}
	return expectRow(res, "template", t.ID)
}

// RetireTemplate stamps retired_at once; retiring again keeps the first stamp.
func (s *Store) RetireTemplate(ctx context.Context, id string, at time.Time) error {
	res, err := s.exec(ctx, `
		UPDATE templates SET retired_at = COALESCE(retired_at, ?), updated_at = ?
		WHERE id = ?`, formatTime(at), formatTime(at), id)
	if err != nil {
		return fmt.Errorf("failed to retire template: %w", err)
	}
	return expectRow(res, "template", id)
}

func (s *Store) AddException(ctx context.Context, templateID string, day calendar.Date) error {
	return s.changeException(ctx, templateID, `
		INSERT INTO template_exceptions (template_id, day) VALUES (?, ?)
		ON CONFLICT (template_id, day) DO NOTHING`, day)
}

func (s *Store) RemoveException(ctx context.Context, templateID string, day calendar.Date) error {
	return s.changeException(ctx, templateID, `
		DELETE FROM template_exceptions WHERE template_id = ? AND day = ?`, day)
}

// changeException bumps the template's updated_at and runs stmt in one
// transaction, reporting ErrNotFound for an unknown template.
func (s *Store) changeException(ctx context.Context, templateID, stmt string, day calendar.Date) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	res, err := tx.ExecContext(ctx, s.dialect.Rebind(`UPDATE templates SET updated_at = ? WHERE id = ?`),
		formatTime(time.Now()), templateID)
	if err != nil {
		return fmt.Errorf("failed to touch template: %w", err)
	}
	if err := expectRow(res, "template", templateID); err != nil {
		return err
	}

	if _, err := tx.ExecContext(ctx, s.dialect.Rebind(stmt), templateID, day.String()); err != nil {
		return fmt.Errorf("failed to update exception %s: %w", day, err)
	}
	return tx.Commit()
}

// exceptions loads exception dates grouped by template, for one template or
// for all of them when id is empty.
func (s *Store) exceptions(ctx context.Context, id string) (map[string][]calendar.Date, error) {
	query := `SELECT template_id, day FROM template_exceptions`
	var args []any
	if id != "" {
		query += ` WHERE template_id = ?`
		args = append(args, id)
	}
	query += ` ORDER BY template_id, day`

	rows, err := s.query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[string][]calendar.Date)
	for rows.Next() {
		var templateID, day string
		if err := rows.Scan(&templateID, &day); err != nil {
			return nil, err
		}
		d, err := parseDay(day, "exception day")
		if err != nil {
			return nil, err
		}
		out[templateID] = append(out[templateID], d)
	}
	return out, rows.Err()
}

func scanTemplate(row rowScanner) (models.Template, error) {
	var t models.Template
	var anchor, pattern, createdAt, updatedAt string
	var until, retiredAt sql.NullString

	err := row.Scan(&t.ID, &t.Title, &t.Description, &anchor, &pattern, &until, &t.Count,
		&t.DueTime, &t.AlertAfterMin, &createdAt, &updatedAt, &retiredAt)
	if err != nil {
		return models.Template{}, err
	}

	if t.AnchorDate, err = parseDay(anchor, "anchor_date"); err != nil {
		return models.Template{}, err
	}
	if err := json.Unmarshal([]byte(pattern), &t.Pattern); err != nil {
		return models.Template{}, fmt.Errorf("failed to parse pattern for template %s: %w", t.ID, err)
	}
	if until.Valid {
		d, err := parseDay(until.String, "until_date")
		if err != nil {
			return models.Template{}, err
		}
		t.Until = &d
	}
	if t.CreatedAt, err = parseTime(createdAt, "created_at"); err != nil {
		return models.Template{}, err
	}
	if t.UpdatedAt, err = parseTime(updatedAt, "updated_at"); err != nil {
		return models.Template{}, err
	}
	if t.RetiredAt, err = parseNullTime(retiredAt, "retired_at"); err != nil {
		return models.Template{}, err
	}
	return t, nil
}

func nullDay(d *calendar.Date) sql.NullString {
	if d == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: d.String(), Valid: true}
}

func expectRow(res sql.Result, kind, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check rows affected: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%w: %s %s", apperrors.ErrNotFound, kind, id)
	}
	return nil
}
