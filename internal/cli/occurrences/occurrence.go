package occurrences

import (
	"context"
	"fmt"

	"github.com/julianstephens/daybook/internal/cli"
	"github.com/julianstephens/daybook/internal/constants"
)

// Target names one occurrence: a template and one of its dates.
type Target struct {
	ID   string `arg:"" help:"Template ID."`
	Date string `arg:"" optional:"" help:"Occurrence date (default: today)."`
}

func (t Target) setStatus(ctx *cli.Context, status constants.OccurrenceStatus) error {
	date, err := cli.ParseDate(ctx.Clock, t.Date)
	if err != nil {
		return err
	}
	o, err := ctx.Agenda.SetOccurrenceStatus(context.Background(), t.ID, date, status)
	if err != nil {
		return fmt.Errorf("failed to update occurrence: %w", err)
	}
	tpl, err := ctx.Agenda.GetTemplate(context.Background(), t.ID)
	if err != nil {
		return err
	}
	ctx.Printf("%s %s on %s: %s\n", cli.StatusIcon(string(o.Status)), tpl.Title, o.Date, o.Status)
	return nil
}

type OccurrenceDoneCmd struct {
	Target `embed:""`
}

func (c *OccurrenceDoneCmd) Run(ctx *cli.Context) error {
	return c.setStatus(ctx, constants.StatusDone)
}

type OccurrenceSkipCmd struct {
	Target `embed:""`
}

func (c *OccurrenceSkipCmd) Run(ctx *cli.Context) error {
	return c.setStatus(ctx, constants.StatusSkipped)
}

// OccurrenceResetCmd puts an occurrence back to pending.
type OccurrenceResetCmd struct {
	Target `embed:""`
}

func (c *OccurrenceResetCmd) Run(ctx *cli.Context) error {
	return c.setStatus(ctx, constants.StatusPending)
}

type OccurrenceRenameCmd struct {
	ID    string `arg:"" help:"Template ID."`
	Date  string `arg:"" help:"Occurrence date."`
	Title string `arg:"" optional:"" help:"Title for this occurrence only (omit to restore the template title)."`
}

func (c *OccurrenceRenameCmd) Run(ctx *cli.Context) error {
	date, err := cli.ParseDate(ctx.Clock, c.Date)
	if err != nil {
		return err
	}
	o, err := ctx.Agenda.RenameOccurrence(context.Background(), c.ID, date, c.Title)
	if err != nil {
		return fmt.Errorf("failed to rename occurrence: %w", err)
	}
	if o.OverrideTitle == "" {
		ctx.Printf("Occurrence on %s uses the template title again\n", o.Date)
		return nil
	}
	ctx.Printf("Occurrence on %s renamed to %q\n", o.Date, o.OverrideTitle)
	return nil
}
