// Package occurrence reconciles computed occurrences with the sparse rows
// persisted for them. It is the only place occurrences are materialized:
// reads compute, and the first status change or title edit writes a row.
package occurrence

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/julianstephens/daybook/internal/calendar"
	"github.com/julianstephens/daybook/internal/constants"
	apperrors "github.com/julianstephens/daybook/internal/errors"
	"github.com/julianstephens/daybook/internal/logger"
	"github.com/julianstephens/daybook/internal/models"
	"github.com/julianstephens/daybook/internal/recurrence"
	"github.com/julianstephens/daybook/internal/storage"
)

// Entry pairs an occurrence with the template it belongs to.
type Entry struct {
	Occurrence models.Occurrence
	Template   models.Template
}

type Store struct {
	db    storage.Provider
	clock *calendar.Clock
}

func NewStore(db storage.Provider, clock *calendar.Clock) *Store {
	return &Store{db: db, clock: clock}
}

// List returns the occurrences on date. It never writes.
func (s *Store) List(ctx context.Context, date calendar.Date) ([]models.Occurrence, error) {
	return s.ListRange(ctx, date, date.AddDays(1))
}

// ListRange returns the occurrences in [start, end), ordered by date.
func (s *Store) ListRange(ctx context.Context, start, end calendar.Date) ([]models.Occurrence, error) {
	entries, err := s.Entries(ctx, start, end)
	if err != nil {
		return nil, err
	}
	out := make([]models.Occurrence, len(entries))
	for i, e := range entries {
		out[i] = e.Occurrence
	}
	return out, nil
}

// Entries is ListRange with each occurrence's template attached. It makes one
// range scan of stored rows and one expansion per template.
//
//   - an active template contributes every date its rule produces, backed by
//     the stored row when there is one and a computed pending occurrence
//     otherwise;
//   - a retired template produces nothing new, and its stored pending rows
//     survive only before the retirement date;
//   - done and skipped rows are history and are always reported, even when
//     the rule no longer produces their date. Stored pending rows on such
//     dates are hidden.
func (s *Store) Entries(ctx context.Context, start, end calendar.Date) ([]Entry, error) {
	if !start.Before(end) {
		return nil, nil
	}

	templates, err := s.db.ListTemplates(ctx, true)
	if err != nil {
		return nil, fmt.Errorf("failed to list templates: %w", err)
	}
	rows, err := s.db.ListOccurrences(ctx, start, end)
	if err != nil {
		return nil, fmt.Errorf("failed to list occurrences: %w", err)
	}

	stored := make(map[string]map[calendar.Date]models.Occurrence)
	for _, o := range rows {
		byDate := stored[o.TemplateID]
		if byDate == nil {
			byDate = make(map[calendar.Date]models.Occurrence)
			stored[o.TemplateID] = byDate
		}
		byDate[o.Date] = o
	}

	var entries []Entry
	for _, t := range templates {
		rule, err := recurrence.Compile(t)
		if err != nil {
			// Stored templates were valid when written; keep their history visible.
			logger.Warn("Skipping rule for invalid template", "template", t.ID, "error", err)
		}
		rows := stored[t.ID]

		if rule != nil && !t.Retired() {
			for d := range rule.Expand(start, end) {
				o, ok := rows[d]
				if !ok {
					o = pending(t.ID, d)
				}
				delete(rows, d)
				entries = append(entries, Entry{Occurrence: o, Template: t})
			}
		}

		// Stored rows the active expansion did not claim.
		for _, o := range rows {
			if s.keepUnproduced(t, rule, o) {
				entries = append(entries, Entry{Occurrence: o, Template: t})
			}
		}
	}

	slices.SortFunc(entries, func(a, b Entry) int {
		return cmp.Or(
			a.Occurrence.Date.Compare(b.Occurrence.Date),
			a.Template.CreatedAt.Compare(b.Template.CreatedAt),
			strings.Compare(a.Template.ID, b.Template.ID),
		)
	})
	return entries, nil
}

// History returns the template's done and skipped occurrences in
// [start, end), oldest first. Retired templates keep their history.
func (s *Store) History(ctx context.Context, templateID string, start, end calendar.Date) ([]models.Occurrence, error) {
	if _, err := s.db.GetTemplate(ctx, templateID); err != nil {
		return nil, err
	}
	if !start.Before(end) {
		return nil, nil
	}
	rows, err := s.db.ListTemplateOccurrences(ctx, templateID, start, end)
	if err != nil {
		return nil, fmt.Errorf("failed to list occurrences: %w", err)
	}
	return slices.DeleteFunc(rows, func(o models.Occurrence) bool {
		return o.Status == constants.StatusPending
	}), nil
}

// keepUnproduced decides whether a stored row outside the active expansion is
// still reported.
func (s *Store) keepUnproduced(t models.Template, rule *recurrence.Rule, o models.Occurrence) bool {
	if o.Status != constants.StatusPending {
		return true
	}
	if !t.Retired() || rule == nil {
		return false
	}
	retired := s.clock.DateOf(*t.RetiredAt)
	return o.Date.Before(retired) && rule.OccursOn(o.Date)
}

// SetStatus records status for the template's occurrence on date, creating the
// row on first touch.
func (s *Store) SetStatus(ctx context.Context, templateID string, date calendar.Date, status constants.OccurrenceStatus) (models.Occurrence, error) {
	if !models.ValidOccurrenceStatus(status) {
		return models.Occurrence{}, fmt.Errorf("%w: unknown status %q (expected pending, done or skipped)", apperrors.ErrInvalidInput, status)
	}
	if _, err := s.checkOccurs(ctx, templateID, date); err != nil {
		return models.Occurrence{}, err
	}

	o, err := s.db.UpsertOccurrenceStatus(ctx, templateID, date, status, s.clock.Now())
	if err != nil {
		return models.Occurrence{}, err
	}
	logger.Debug("Occurrence status set", "template", templateID, "date", date.String(), "status", status)
	return o, nil
}

// EditTitle sets a per-occurrence title override; an empty title clears it.
// The occurrence's status is unchanged.
func (s *Store) EditTitle(ctx context.Context, templateID string, date calendar.Date, title string) (models.Occurrence, error) {
	if _, err := s.checkOccurs(ctx, templateID, date); err != nil {
		return models.Occurrence{}, err
	}

	o, err := s.db.UpsertOccurrenceTitle(ctx, templateID, date, strings.TrimSpace(title), s.clock.Now())
	if err != nil {
		return models.Occurrence{}, err
	}
	logger.Debug("Occurrence title set", "template", templateID, "date", date.String())
	return o, nil
}

// Retire stops the template from producing further occurrences. Stored rows
// are untouched.
func (s *Store) Retire(ctx context.Context, templateID string) (models.Template, error) {
	if err := s.db.RetireTemplate(ctx, templateID, s.clock.Now()); err != nil {
		return models.Template{}, err
	}
	logger.Info("Template retired", "template", templateID)
	return s.db.GetTemplate(ctx, templateID)
}

// checkOccurs loads the template and verifies that its rule produces date.
// Retired templates produce nothing.
func (s *Store) checkOccurs(ctx context.Context, templateID string, date calendar.Date) (models.Template, error) {
	t, err := s.db.GetTemplate(ctx, templateID)
	if err != nil {
		return models.Template{}, err
	}
	if t.Retired() {
		return models.Template{}, fmt.Errorf("%w: template %s is retired", apperrors.ErrNotAnOccurrence, templateID)
	}
	rule, err := recurrence.Compile(t)
	if err != nil {
		return models.Template{}, err
	}
	if !rule.OccursOn(date) {
		return models.Template{}, fmt.Errorf("%w: %s does not occur on %s", apperrors.ErrNotAnOccurrence, t.Title, date)
	}
	return t, nil
}

func pending(templateID string, date calendar.Date) models.Occurrence {
	return models.Occurrence{
		TemplateID: templateID,
		Date:       date,
		Status:     constants.StatusPending,
	}
}
