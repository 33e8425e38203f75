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
	"github.com/julianstephens/daybook/internal/recurrence"
)

// CreateTemplate validates in and stores a new template, returning its id.
// Without an anchor the series starts at its first date on or after today.
func (s *Service) CreateTemplate(ctx context.Context, in models.TemplateInput) (string, error) {
	now := s.clock.Now()
	t := models.Template{
		ID:            s.newID(),
		Title:         strings.TrimSpace(in.Title),
		Description:   strings.TrimSpace(in.Description),
		AnchorDate:    in.AnchorDate,
		Pattern:       in.Pattern,
		Until:         in.Until,
		Count:         in.Count,
		DueTime:       in.DueTime,
		AlertAfterMin: in.AlertAfterMin,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if t.AnchorDate.IsZero() {
		t.AnchorDate = s.clock.Today()
		if first, ok := recurrence.FirstMatch(t.Pattern, t.AnchorDate); ok {
			t.AnchorDate = first
		}
	}
	if err := recurrence.Validate(t); err != nil {
		return "", err
	}
	if err := s.db.AddTemplate(ctx, t); err != nil {
		return "", err
	}
	logger.Info("Template created", "template", t.ID, "pattern", recurrence.Describe(t.Pattern))
	return t.ID, nil
}

// EditTemplate applies patch to the template. Stored occurrences are left as
// they are: done and skipped rows stay as history, and pending rows the new
// rule no longer produces drop out of every view.
func (s *Service) EditTemplate(ctx context.Context, id string, patch models.TemplatePatch) (models.Template, error) {
	t, err := s.activeTemplate(ctx, id)
	if err != nil {
		return models.Template{}, err
	}

	edited := patch.Apply(t)
	edited.Title = strings.TrimSpace(edited.Title)
	edited.Description = strings.TrimSpace(edited.Description)
	edited.UpdatedAt = s.clock.Now()
	if err := recurrence.Validate(edited); err != nil {
		return models.Template{}, err
	}
	if err := s.db.UpdateTemplate(ctx, edited); err != nil {
		return models.Template{}, err
	}
	logger.Info("Template edited", "template", id)
	return edited, nil
}

func (s *Service) RetireTemplate(ctx context.Context, id string) (models.Template, error) {
	return s.occurrences.Retire(ctx, id)
}

func (s *Service) ListTemplates(ctx context.Context, includeRetired bool) ([]models.Template, error) {
	return s.db.ListTemplates(ctx, includeRetired)
}

func (s *Service) GetTemplate(ctx context.Context, id string) (models.Template, error) {
	return s.db.GetTemplate(ctx, id)
}

// AddException suppresses the template's occurrence on date. The date must be
// one the pattern produces.
func (s *Service) AddException(ctx context.Context, id string, date calendar.Date) (models.Template, error) {
	t, err := s.activeTemplate(ctx, id)
	if err != nil {
		return models.Template{}, err
	}
	unexcepted := t
	unexcepted.Exceptions = nil
	if !recurrence.OccursOn(unexcepted, date) {
		return models.Template{}, fmt.Errorf("%w: %s does not occur on %s", apperrors.ErrNotAnOccurrence, t.Title, date)
	}
	if err := s.db.AddException(ctx, id, date); err != nil {
		return models.Template{}, err
	}
	logger.Debug("Exception added", "template", id, "date", date.String())
	return s.db.GetTemplate(ctx, id)
}

// RemoveException restores a previously excepted date.
func (s *Service) RemoveException(ctx context.Context, id string, date calendar.Date) (models.Template, error) {
	if _, err := s.activeTemplate(ctx, id); err != nil {
		return models.Template{}, err
	}
	if err := s.db.RemoveException(ctx, id, date); err != nil {
		return models.Template{}, err
	}
	logger.Debug("Exception removed", "template", id, "date", date.String())
	return s.db.GetTemplate(ctx, id)
}

// TemplateHistory lists the done and skipped occurrences of one template
// between from and to, both inclusive.
func (s *Service) TemplateHistory(ctx context.Context, id string, from, to calendar.Date) ([]models.Occurrence, error) {
	if to.Before(from) {
		return nil, fmt.Errorf("%w: history ends %s before it starts %s", apperrors.ErrInvalidInput, to, from)
	}
	return s.occurrences.History(ctx, id, from, to.AddDays(1))
}

// activeTemplate loads a template that may still be changed. Retired
// templates are read-only.
func (s *Service) activeTemplate(ctx context.Context, id string) (models.Template, error) {
	t, err := s.db.GetTemplate(ctx, id)
	if err != nil {
		return models.Template{}, err
	}
	if t.Retired() {
		return models.Template{}, fmt.Errorf("%w: template %s is retired", apperrors.ErrInvalidTemplate, id)
	}
	return t, nil
}

func (s *Service) SetOccurrenceStatus(ctx context.Context, templateID string, date calendar.Date, status constants.OccurrenceStatus) (models.Occurrence, error) {
	return s.occurrences.SetStatus(ctx, templateID, date, status)
}

func (s *Service) RenameOccurrence(ctx context.Context, templateID string, date calendar.Date, title string) (models.Occurrence, error) {
	return s.occurrences.EditTitle(ctx, templateID, date, title)
}
