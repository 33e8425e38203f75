package days

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/julianstephens/daybook/internal/cli"
)

type DayCmd struct {
	Date string `arg:"" optional:"" help:"Date to show (YYYY-MM-DD, today, tomorrow, yesterday, +N, -N)."`
	JSON bool   `help:"Print the list as JSON."`
}

func (c *DayCmd) Run(ctx *cli.Context) error {
	date, err := cli.ParseDate(ctx.Clock, c.Date)
	if err != nil {
		return err
	}
	list, err := ctx.Agenda.GetDay(context.Background(), date)
	if err != nil {
		return fmt.Errorf("failed to build day: %w", err)
	}
	if c.JSON {
		enc := json.NewEncoder(ctx.Writer())
		enc.SetIndent("", "  ")
		return enc.Encode(list)
	}
	ctx.Printf("%s", cli.RenderDay(list, ctx.Clock.Today()))
	return nil
}

type MonthCmd struct {
	Month string `arg:"" optional:"" help:"Month to show (YYYY-MM, default: this month)."`
}

func (c *MonthCmd) Run(ctx *cli.Context) error {
	year, month, err := cli.ParseMonthArg(ctx.Clock, c.Month)
	if err != nil {
		return err
	}
	summary, err := ctx.Agenda.GetMonth(context.Background(), year, month)
	if err != nil {
		return fmt.Errorf("failed to build month: %w", err)
	}
	ctx.Printf("%s", cli.RenderMonth(year, month, summary, ctx.Clock.Today()))
	return nil
}

// NextCmd lists the upcoming dates of every active template.
type NextCmd struct {
	Days  int    `short:"n" help:"How many days ahead to look." default:"14"`
	From  string `help:"Start date." default:"today"`
	Limit int    `help:"Dates shown per template." default:"5"`
}

func (c *NextCmd) Run(ctx *cli.Context) error {
	from, err := cli.ParseDate(ctx.Clock, c.From)
	if err != nil {
		return err
	}
	upcoming, err := ctx.Agenda.Upcoming(context.Background(), from, c.Days)
	if err != nil {
		return err
	}
	if len(upcoming) == 0 {
		ctx.Printf("Nothing due in the next %d days\n", c.Days)
		return nil
	}

	for _, u := range upcoming {
		dates := u.Dates
		more := ""
		if c.Limit > 0 && len(dates) > c.Limit {
			more = fmt.Sprintf(" (+%d more)", len(dates)-c.Limit)
			dates = dates[:c.Limit]
		}
		parts := make([]string, 0, len(dates))
		for _, d := range dates {
			parts = append(parts, d.In(time.UTC).Format("Mon Jan 2"))
		}
		ctx.Printf("%s\n  %s%s\n", cli.HeaderStyle.Render(u.Template.Title), strings.Join(parts, ", "), cli.MutedStyle.Render(more))
	}
	return nil
}
