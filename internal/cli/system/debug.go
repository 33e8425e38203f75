package system

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/julianstephens/daybook/internal/cli"
)

type DebugCmd struct {
	DBPath       *DebugDBPathCmd       `cmd:"" help:"Show database path."`
	DumpTemplate *DebugDumpTemplateCmd `cmd:"" help:"Dump a template as JSON."`
	DumpDay      *DebugDumpDayCmd      `cmd:"" help:"Dump the derived daily list as JSON."`
}

func printJSON(ctx *cli.Context, v any) error {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal output: %w", err)
	}
	ctx.Println(string(b))
	return nil
}

type DebugDBPathCmd struct{}

func (cmd *DebugDBPathCmd) Run(ctx *cli.Context) error {
	return printJSON(ctx, map[string]string{"path": ctx.Store.GetConfigPath()})
}

type DebugDumpTemplateCmd struct {
	ID string `arg:"" help:"ID of the template to dump."`
}

func (cmd *DebugDumpTemplateCmd) Run(ctx *cli.Context) error {
	t, err := ctx.Agenda.GetTemplate(context.Background(), cmd.ID)
	if err != nil {
		return err
	}
	return printJSON(ctx, t)
}

type DebugDumpDayCmd struct {
	Date string `arg:"" optional:"" help:"Date to dump (YYYY-MM-DD, today, +N)."`
}

func (cmd *DebugDumpDayCmd) Run(ctx *cli.Context) error {
	date, err := cli.ParseDate(ctx.Clock, cmd.Date)
	if err != nil {
		return err
	}
	list, err := ctx.Agenda.DayDetail(context.Background(), date)
	if err != nil {
		return err
	}
	return printJSON(ctx, list)
}
