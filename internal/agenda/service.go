// Package agenda is the application facade: it merges occurrences with todos
// into daily lists, builds month summaries and validates template edits before
// they reach storage.
package agenda

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/julianstephens/daybook/internal/calendar"
	"github.com/julianstephens/daybook/internal/constants"
	apperrors "github.com/julianstephens/daybook/internal/errors"
	"github.com/julianstephens/daybook/internal/logger"
	"github.com/julianstephens/daybook/internal/models"
	"github.com/julianstephens/daybook/internal/occurrence"
	"github.com/julianstephens/daybook/internal/recurrence"
	"github.com/julianstephens/daybook/internal/storage"
)

type Service struct {
	db          storage.Provider
	occurrences *occurrence.Store
	clock       *calendar.Clock
	newID       func() string
}

func NewService(db storage.Provider, clock *calendar.Clock) *Service {
	return &Service{
		db:          db,
		occurrences: occurrence.NewStore(db, clock),
		clock:       clock,
		newID:       uuid.NewString,
	}
}

func (s *Service) Clock() *calendar.Clock {
	return s.clock
}

// GetDay is the day view: the date's occurrences and todos, merged.
func (s *Service) GetDay(ctx context.Context, date calendar.Date) (models.DailyList, error) {
	return s.DailyList(ctx, date)
}

// DayDetail is an alias of DailyList kept for the calendar views.
func (s *Service) DayDetail(ctx context.Context, date calendar.Date) (models.DailyList, error) {
	return s.DailyList(ctx, date)
}

// DailyList merges the occurrences on date with the todos due that day.
// Pending items sort first, then done, then skipped; ties break on creation
// time, then title, then id.
func (s *Service) DailyList(ctx context.Context, date calendar.Date) (models.DailyList, error) {
	entries, err := s.occurrences.Entries(ctx, date, date.AddDays(1))
	if err != nil {
		return models.DailyList{}, err
	}
	todos, err := s.db.ListTodos(ctx, date, date.AddDays(1))
	if err != nil {
		return models.DailyList{}, fmt.Errorf("failed to list todos: %w", err)
	}

	dayStart, _ := s.clock.DayBounds(date)
	now := s.clock.Now()

	items := make([]models.DailyItem, 0, len(entries)+len(todos))
	for _, e := range entries {
		items = append(items, occurrenceItem(e, dayStart, now))
	}
	for _, t := range todos {
		items = append(items, todoItem(t))
	}
	slices.SortFunc(items, compareItems)

	return models.DailyList{Date: date, Items: items}, nil
}

func occurrenceItem(e occurrence.Entry, dayStart, now time.Time) models.DailyItem {
	o, t := e.Occurrence, e.Template
	title := cmp.Or(o.OverrideTitle, t.Title)
	item := models.DailyItem{
		Kind:        constants.KindOccurrence,
		TemplateID:  t.ID,
		Date:        o.Date,
		Title:       title,
		Description: t.Description,
		Status:      string(o.Status),
		DueTime:     t.DueTime,
		Retired:     t.Retired(),
		CompletedAt: o.CompletedAt,
		CreatedAt:   t.CreatedAt,
	}
	if o.Status == constants.StatusPending && t.AlertAfterMin > 0 {
		deadline := dayStart.Add(time.Duration(t.AlertAfterMin) * time.Minute)
		item.Overdue = deadline.Before(now)
	}
	return item
}

func todoItem(t models.Todo) models.DailyItem {
	return models.DailyItem{
		Kind:        constants.KindTodo,
		TodoID:      t.ID,
		Date:        t.DueDate,
		Title:       t.Title,
		Status:      string(t.Status),
		CompletedAt: t.CompletedAt,
		CreatedAt:   t.CreatedAt,
	}
}

func statusRank(status string) int {
	switch status {
	case string(constants.StatusPending):
		return 0
	case string(constants.StatusDone):
		return 1
	default:
		return 2
	}
}

func compareItems(a, b models.DailyItem) int {
	return cmp.Or(
		cmp.Compare(statusRank(a.Status), statusRank(b.Status)),
		a.CreatedAt.Compare(b.CreatedAt),
		strings.Compare(a.Title, b.Title),
		strings.Compare(a.TemplateID+a.TodoID, b.TemplateID+b.TodoID),
	)
}

// GetMonth returns a summary for every date of the month. It never writes.
func (s *Service) GetMonth(ctx context.Context, year int, month time.Month) (map[calendar.Date]models.DaySummary, error) {
	return s.MonthSummary(ctx, year, month)
}

func (s *Service) MonthSummary(ctx context.Context, year int, month time.Month) (map[calendar.Date]models.DaySummary, error) {
	if month < time.January || month > time.December {
		return nil, fmt.Errorf("%w: month %d out of range", apperrors.ErrInvalidInput, month)
	}
	start := calendar.FirstOfMonth(year, month)
	end := start.AddDays(calendar.DaysIn(year, month))

	summary := make(map[calendar.Date]models.DaySummary, end.DaysSince(start))
	for d := start; d.Before(end); d = d.AddDays(1) {
		summary[d] = models.DaySummary{}
	}

	occs, err := s.occurrences.ListRange(ctx, start, end)
	if err != nil {
		return nil, err
	}
	for _, o := range occs {
		day := summary[o.Date]
		switch o.Status {
		case constants.StatusPending:
			day.Pending++
		case constants.StatusDone:
			day.Done++
		case constants.StatusSkipped:
			day.Skipped++
		}
		summary[o.Date] = day
	}

	todos, err := s.db.ListTodos(ctx, start, end)
	if err != nil {
		return nil, fmt.Errorf("failed to list todos: %w", err)
	}
	for _, t := range todos {
		day := summary[t.DueDate]
		if t.Status == constants.TodoDone {
			day.TodoDone++
		} else {
			day.TodoPending++
		}
		summary[t.DueDate] = day
	}
	return summary, nil
}

// Upcoming lists, for every active template, the dates it produces in
// [from, from+days). Templates with nothing in the window are left out.
func (s *Service) Upcoming(ctx context.Context, from calendar.Date, days int) ([]models.Upcoming, error) {
	if days < 1 || days > constants.MaxUpcomingDays {
		return nil, fmt.Errorf("%w: days must be between 1 and %d", apperrors.ErrInvalidInput, constants.MaxUpcomingDays)
	}
	templates, err := s.db.ListTemplates(ctx, false)
	if err != nil {
		return nil, fmt.Errorf("failed to list templates: %w", err)
	}

	end := from.AddDays(days)
	var out []models.Upcoming
	for _, t := range templates {
		rule, err := recurrence.Compile(t)
		if err != nil {
			logger.Warn("Skipping invalid template", "template", t.ID, "error", err)
			continue
		}
		if dates := rule.Dates(from, end); len(dates) > 0 {
			out = append(out, models.Upcoming{Template: t, Dates: dates})
		}
	}
	slices.SortStableFunc(out, func(a, b models.Upcoming) int {
		return a.Dates[0].Compare(b.Dates[0])
	})
	return out, nil
}
