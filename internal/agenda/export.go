package agenda

import (
	"context"
	"fmt"
	"io"

	"github.com/julianstephens/daybook/internal/constants"
	"github.com/julianstephens/daybook/internal/ics"
)

// exportTodoDays bounds the todos included in an export, on each side of today.
const exportTodoDays = 366

// ExportICS writes active templates and the todos due within a year of today
// as an iCalendar feed.
func (s *Service) ExportICS(ctx context.Context, w io.Writer) error {
	templates, err := s.db.ListTemplates(ctx, false)
	if err != nil {
		return fmt.Errorf("failed to list templates: %w", err)
	}
	today := s.clock.Today()
	todos, err := s.db.ListTodos(ctx, today.AddDays(-exportTodoDays), today.AddDays(exportTodoDays))
	if err != nil {
		return fmt.Errorf("failed to list todos: %w", err)
	}
	return ics.Write(w, templates, todos, ics.Options{
		Name:     constants.AppName,
		Location: s.clock.Location(),
		Now:      s.clock.Now(),
	})
}
