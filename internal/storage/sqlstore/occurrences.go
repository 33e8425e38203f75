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

const occurrenceColumns = `template_id, day, status, override_title, completed_at, created_at, updated_at`

// upsertStatusSQL converges concurrent first touches on one row. A repeated
// done keeps its original completion stamp.
const upsertStatusSQL = `
	INSERT INTO occurrences (template_id, day, status, override_title, completed_at, created_at, updated_at)
	VALUES (?, ?, ?, '', ?, ?, ?)
	ON CONFLICT (template_id, day) DO UPDATE SET
		status = excluded.status,
		completed_at = CASE
			WHEN occurrences.status = 'done' AND excluded.status = 'done' THEN occurrences.completed_at
			ELSE excluded.completed_at
		END,
		updated_at = excluded.updated_at
	RETURNING ` + occurrenceColumns

const upsertTitleSQL = `
	INSERT INTO occurrences (template_id, day, status, override_title, completed_at, created_at, updated_at)
	VALUES (?, ?, ?, ?, NULL, ?, ?)
	ON CONFLICT (template_id, day) DO UPDATE SET
		override_title = excluded.override_title,
		updated_at = excluded.updated_at
	RETURNING ` + occurrenceColumns

func (s *Store) GetOccurrence(ctx context.Context, templateID string, day calendar.Date) (models.Occurrence, error) {
	row := s.queryRow(ctx, `SELECT `+occurrenceColumns+` FROM occurrences WHERE template_id = ? AND day = ?`,
		templateID, day.String())
	o, err := scanOccurrence(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Occurrence{}, fmt.Errorf("%w: occurrence %s on %s", apperrors.ErrNotFound, templateID, day)
		}
		return models.Occurrence{}, err
	}
	return o, nil
}

func (s *Store) ListOccurrences(ctx context.Context, start, end calendar.Date) ([]models.Occurrence, error) {
	rows, err := s.query(ctx, `SELECT `+occurrenceColumns+` FROM occurrences
		WHERE day >= ? AND day < ? ORDER BY day, template_id`, start.String(), end.String())
	if err != nil {
		return nil, err
	}
	return collectOccurrences(rows)
}

func (s *Store) ListTemplateOccurrences(ctx context.Context, templateID string, start, end calendar.Date) ([]models.Occurrence, error) {
	rows, err := s.query(ctx, `SELECT `+occurrenceColumns+` FROM occurrences
		WHERE template_id = ? AND day >= ? AND day < ? ORDER BY day`, templateID, start.String(), end.String())
	if err != nil {
		return nil, err
	}
	return collectOccurrences(rows)
}

func collectOccurrences(rows *sql.Rows) ([]models.Occurrence, error) {
	defer rows.Close()

	var out []models.Occurrence
	for rows.Next() {
		o, err := scanOccurrence(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, o)
	}
	return out, rows.Err()
}

func (s *Store) UpsertOccurrenceStatus(ctx context.Context, templateID string, day calendar.Date, status constants.OccurrenceStatus, now time.Time) (models.Occurrence, error) {
	var completedAt sql.NullString
	if status == constants.StatusDone {
		completedAt = nullTime(&now)
	}
	ts := formatTime(now)
	row := s.queryRow(ctx, upsertStatusSQL, templateID, day.String(), string(status), completedAt, ts, ts)
	o, err := scanOccurrence(row)
	if err != nil {
		return models.Occurrence{}, fmt.Errorf("failed to upsert occurrence status: %w", err)
	}
	return o, nil
}

func (s *Store) UpsertOccurrenceTitle(ctx context.Context, templateID string, day calendar.Date, title string, now time.Time) (models.Occurrence, error) {
	ts := formatTime(now)
	row := s.queryRow(ctx, upsertTitleSQL, templateID, day.String(), string(constants.StatusPending), title, ts, ts)
	o, err := scanOccurrence(row)
	if err != nil {
		return models.Occurrence{}, fmt.Errorf("failed to upsert occurrence title: %w", err)
	}
	return o, nil
}

func (s *Store) CountOccurrences(ctx context.Context) (int, error) {
	var n int
	if err := s.queryRow(ctx, `SELECT COUNT(*) FROM occurrences`).Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}

func scanOccurrence(row rowScanner) (models.Occurrence, error) {
	var o models.Occurrence
	var day, status, createdAt, updatedAt string
	var completedAt sql.NullString

	err := row.Scan(&o.TemplateID, &day, &status, &o.OverrideTitle, &completedAt, &createdAt, &updatedAt)
	if err != nil {
		return models.Occurrence{}, err
	}

	o.Status = constants.OccurrenceStatus(status)
	o.Materialized = true
	if o.Date, err = parseDay(day, "day"); err != nil {
		return models.Occurrence{}, err
	}
	if o.CompletedAt, err = parseNullTime(completedAt, "completed_at"); err != nil {
		return models.Occurrence{}, err
	}
	if o.CreatedAt, err = parseTime(createdAt, "created_at"); err != nil {
		return models.Occurrence{}, err
	}
	if o.UpdatedAt, err = parseTime(updatedAt, "updated_at"); err != nil {
		return models.Occurrence{}, err
	}
	return o, nil
}
