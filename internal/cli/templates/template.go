package templates

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/julianstephens/daybook/internal/cli"
	"github.com/julianstephens/daybook/internal/constants"
	"github.com/julianstephens/daybook/internal/models"
	"github.com/julianstephens/daybook/internal/recurrence"
)

// previewDays bounds the upcoming dates shown by add and show.
const previewDays = 5

type TemplateAddCmd struct {
	Title        string `arg:"" help:"Template title."`
	PatternFlags `embed:""`
	Description  string `short:"d" help:"Longer description."`
	Anchor       string `short:"a" help:"First date of the series (default: the first match on or after today)."`
	Until        string `help:"Last date of the series, inclusive."`
	Count        int    `help:"Number of occurrences, counted from the anchor."`
	Due          string `help:"Due time (HH:MM)."`
	AlertAfter   int    `name:"alert-after" help:"Minutes after the day starts before a pending occurrence is overdue (0 disables)."`
}

func (c *TemplateAddCmd) Run(ctx *cli.Context) error {
	pattern, err := c.PatternFlags.apply(models.Pattern{})
	if err != nil {
		return err
	}
	in := models.TemplateInput{
		Title:         c.Title,
		Description:   c.Description,
		Pattern:       pattern,
		Count:         c.Count,
		DueTime:       c.Due,
		AlertAfterMin: c.AlertAfter,
	}
	if c.Anchor != "" {
		if in.AnchorDate, err = cli.ParseDate(ctx.Clock, c.Anchor); err != nil {
			return err
		}
	}
	if c.Until != "" {
		until, err := cli.ParseDate(ctx.Clock, c.Until)
		if err != nil {
			return err
		}
		in.Until = &until
	}

	id, err := ctx.Agenda.CreateTemplate(context.Background(), in)
	if err != nil {
		return fmt.Errorf("failed to add template: %w", err)
	}
	t, err := ctx.Agenda.GetTemplate(context.Background(), id)
	if err != nil {
		return err
	}
	ctx.Printf("Added template: %s (ID: %s)\n", t.Title, t.ID)
	ctx.Printf("  %s, starting %s\n", recurrence.Summary(t), t.AnchorDate)
	printNext(ctx, t)
	return nil
}

type TemplateEditCmd struct {
	ID           string `arg:"" help:"Template ID."`
	PatternFlags `embed:""`
	Title        *string `help:"New title."`
	Description  *string `short:"d" help:"New description."`
	Anchor       *string `short:"a" help:"New anchor date."`
	Until        *string `help:"New last date, inclusive."`
	ClearUntil   bool    `help:"Remove the last date."`
	Count        *int    `help:"New occurrence count (0 removes it)."`
	Due          *string `help:"New due time (HH:MM, empty clears it)."`
	AlertAfter   *int    `name:"alert-after" help:"New overdue grace period in minutes."`
}

func (c *TemplateEditCmd) Run(ctx *cli.Context) error {
	bg := context.Background()
	current, err := ctx.Agenda.GetTemplate(bg, c.ID)
	if err != nil {
		return fmt.Errorf("failed to find template with ID %s: %w", c.ID, err)
	}

	patch := models.TemplatePatch{
		Title:         c.Title,
		Description:   c.Description,
		ClearUntil:    c.ClearUntil,
		Count:         c.Count,
		DueTime:       c.Due,
		AlertAfterMin: c.AlertAfter,
	}
	if c.PatternFlags.any() {
		p, err := c.PatternFlags.apply(current.Pattern)
		if err != nil {
			return err
		}
		patch.Pattern = &p
	}
	if c.Anchor != nil {
		anchor, err := cli.ParseDate(ctx.Clock, *c.Anchor)
		if err != nil {
			return err
		}
		patch.AnchorDate = &anchor
	}
	if c.Until != nil {
		until, err := cli.ParseDate(ctx.Clock, *c.Until)
		if err != nil {
			return err
		}
		patch.Until = &until
	}

	t, err := ctx.Agenda.EditTemplate(bg, c.ID, patch)
	if err != nil {
		return fmt.Errorf("failed to edit template: %w", err)
	}
	ctx.Printf("Updated template: %s (ID: %s)\n", t.Title, t.ID)
	ctx.Printf("  %s\n", recurrence.Summary(t))
	return nil
}

type TemplateListCmd struct {
	All     bool `short:"a" help:"Include retired templates."`
	ShowIDs bool `help:"Show template IDs." name:"show-ids"`
}

func (c *TemplateListCmd) Run(ctx *cli.Context) error {
	templates, err := ctx.Agenda.ListTemplates(context.Background(), c.All)
	if err != nil {
		return fmt.Errorf("failed to list templates: %w", err)
	}
	if len(templates) == 0 {
		ctx.Println("No templates found")
		return nil
	}
	ctx.Printf("%s", cli.RenderTemplates(templates, c.ShowIDs))
	return nil
}

type TemplateShowCmd struct {
	ID      string `arg:"" help:"Template ID."`
	History bool   `short:"H" help:"List done and skipped occurrences."`
	Days    int    `help:"How many days back the history reaches, today included." default:"90"`
}

func (c *TemplateShowCmd) Run(ctx *cli.Context) error {
	t, err := ctx.Agenda.GetTemplate(context.Background(), c.ID)
	if err != nil {
		return fmt.Errorf("failed to find template with ID %s: %w", c.ID, err)
	}

	ctx.Println(cli.HeaderStyle.Render(t.Title))
	ctx.Printf("  ID:       %s\n", t.ID)
	if t.Description != "" {
		ctx.Printf("  About:    %s\n", t.Description)
	}
	ctx.Printf("  Pattern:  %s\n", recurrence.Summary(t))
	ctx.Printf("  Anchor:   %s\n", t.AnchorDate)
	if t.DueTime != "" {
		ctx.Printf("  Due:      %s\n", t.DueTime)
	}
	if t.AlertAfterMin > 0 {
		ctx.Printf("  Overdue:  %s after the day starts\n", time.Duration(t.AlertAfterMin)*time.Minute)
	}
	if rule, err := recurrence.RRule(t); err == nil {
		ctx.Printf("  RRULE:    %s\n", rule)
	}
	if len(t.Exceptions) > 0 {
		days := make([]string, 0, len(t.Exceptions))
		for _, d := range t.Exceptions {
			days = append(days, d.String())
		}
		ctx.Printf("  Skipped:  %s\n", strings.Join(days, ", "))
	}
	if t.Retired() {
		ctx.Printf("  Retired:  %s\n", t.RetiredAt.In(ctx.Clock.Location()).Format(time.DateTime))
	} else {
		printNext(ctx, t)
	}
	if c.History {
		return c.printHistory(ctx, t)
	}
	return nil
}

func (c *TemplateShowCmd) printHistory(ctx *cli.Context, t models.Template) error {
	if c.Days < 1 {
		return fmt.Errorf("--days must be at least 1, got %d", c.Days)
	}
	today := ctx.Clock.Today()
	history, err := ctx.Agenda.TemplateHistory(context.Background(), t.ID, today.AddDays(1-c.Days), today)
	if err != nil {
		return fmt.Errorf("failed to load history: %w", err)
	}

	var done, skipped int
	for _, o := range history {
		if o.Status == constants.StatusDone {
			done++
		} else {
			skipped++
		}
	}
	ctx.Printf("  History:  %d done, %d skipped in the last %d days\n", done, skipped, c.Days)
	for _, o := range history {
		line := fmt.Sprintf("    %s %s", cli.StatusIcon(string(o.Status)), o.Date.In(time.UTC).Format("Mon Jan 2 2006"))
		if o.OverrideTitle != "" {
			line += "  " + cli.MutedStyle.Render(o.OverrideTitle)
		}
		ctx.Println(line)
	}
	return nil
}

type TemplateRetireCmd struct {
	ID  string `arg:"" help:"Template ID."`
	Yes bool   `short:"y" help:"Do not ask for confirmation."`
}

func (c *TemplateRetireCmd) Run(ctx *cli.Context) error {
	bg := context.Background()
	t, err := ctx.Agenda.GetTemplate(bg, c.ID)
	if err != nil {
		return fmt.Errorf("failed to find template with ID %s: %w", c.ID, err)
	}
	ok, err := ctx.Confirm(
		fmt.Sprintf("Retire %q?", t.Title),
		"It stops producing new occurrences. Past history is kept.",
		c.Yes,
	)
	if err != nil {
		return err
	}
	if !ok {
		ctx.Println("Retire cancelled.")
		return nil
	}
	if _, err := ctx.Agenda.RetireTemplate(bg, c.ID); err != nil {
		return fmt.Errorf("failed to retire template: %w", err)
	}
	ctx.Printf("Retired template: %s (ID: %s)\n", t.Title, t.ID)
	return nil
}

type TemplateExceptCmd struct {
	ID   string `arg:"" help:"Template ID."`
	Date string `arg:"" help:"Date to skip (YYYY-MM-DD, today, tomorrow, +N)."`
}

func (c *TemplateExceptCmd) Run(ctx *cli.Context) error {
	date, err := cli.ParseDate(ctx.Clock, c.Date)
	if err != nil {
		return err
	}
	t, err := ctx.Agenda.AddException(context.Background(), c.ID, date)
	if err != nil {
		return fmt.Errorf("failed to add exception: %w", err)
	}
	ctx.Printf("%s will not occur on %s\n", t.Title, date)
	return nil
}

type TemplateUnexceptCmd struct {
	ID   string `arg:"" help:"Template ID."`
	Date string `arg:"" help:"Date to restore."`
}

func (c *TemplateUnexceptCmd) Run(ctx *cli.Context) error {
	date, err := cli.ParseDate(ctx.Clock, c.Date)
	if err != nil {
		return err
	}
	t, err := ctx.Agenda.RemoveException(context.Background(), c.ID, date)
	if err != nil {
		return fmt.Errorf("failed to remove exception: %w", err)
	}
	ctx.Printf("%s occurs on %s again\n", t.Title, date)
	return nil
}

func printNext(ctx *cli.Context, t models.Template) {
	rule, err := recurrence.Compile(t)
	if err != nil {
		return
	}
	var next []string
	from := ctx.Clock.Today()
	for d := range rule.Expand(from, from.AddDays(constants.MaxUpcomingDays)) {
		next = append(next, d.In(time.UTC).Format("Mon Jan 2"))
		if len(next) == previewDays {
			break
		}
	}
	if len(next) == 0 {
		ctx.Println(cli.MutedStyle.Render("  No upcoming dates."))
		return
	}
	ctx.Printf("  Next:     %s\n", strings.Join(next, ", "))
}
