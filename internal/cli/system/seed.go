package system

import (
	"context"
	"fmt"
	"time"

	"github.com/julianstephens/daybook/internal/cli"
	"github.com/julianstephens/daybook/internal/constants"
	"github.com/julianstephens/daybook/internal/models"
)

// SeedCmd fills an empty database with one demo template per pattern kind
// and a few todos around today.
type SeedCmd struct {
	Force bool `help:"Seed even when templates already exist."`
}

func seedTemplates() []models.TemplateInput {
	return []models.TemplateInput{
		{
			Title:   "Water the plants",
			Pattern: models.Pattern{Kind: constants.PatternEveryNDays, Interval: 3},
		},
		{
			Title:         "Workout",
			Description:   "45 minutes, any kind",
			Pattern:       models.Pattern{Kind: constants.PatternWeekly, Interval: 1, Weekdays: []time.Weekday{time.Monday, time.Wednesday, time.Friday}},
			DueTime:       "18:00",
			AlertAfterMin: 19 * 60,
		},
		{
			Title:   "Pay rent",
			Pattern: models.Pattern{Kind: constants.PatternMonthlyDay, MonthDays: []int{1}},
		},
		{
			Title:   "Monthly review",
			Pattern: models.Pattern{Kind: constants.PatternMonthlyWeekday, Ordinal: constants.OrdinalLast, Weekday: time.Sunday},
		},
		{
			Title:   "Renew passport check",
			Pattern: models.Pattern{Kind: constants.PatternYearly, Months: []time.Month{time.January}, MonthDays: []int{15}},
		},
	}
}

func (c *SeedCmd) Run(ctx *cli.Context) error {
	bg := context.Background()
	existing, err := ctx.Agenda.ListTemplates(bg, true)
	if err != nil {
		return err
	}
	if len(existing) > 0 && !c.Force {
		return fmt.Errorf("database already has %d template(s), use --force to seed anyway", len(existing))
	}

	for _, in := range seedTemplates() {
		if _, err := ctx.Agenda.CreateTemplate(bg, in); err != nil {
			return fmt.Errorf("failed to seed %q: %w", in.Title, err)
		}
		ctx.Printf("✓ Template: %s\n", in.Title)
	}

	today := ctx.Clock.Today()
	todos := []struct {
		title  string
		offset int
	}{
		{"Call the dentist", 0},
		{"Return library books", 1},
		{"Book train tickets", 3},
	}
	for _, td := range todos {
		todo, err := ctx.Agenda.CreateTodo(bg, td.title, today.AddDays(td.offset))
		if err != nil {
			return fmt.Errorf("failed to seed %q: %w", td.title, err)
		}
		ctx.Printf("✓ Todo: %s (%s)\n", todo.Title, todo.DueDate)
	}
	return nil
}
