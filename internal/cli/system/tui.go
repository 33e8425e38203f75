package system

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/julianstephens/daybook/internal/cli"
	"github.com/julianstephens/daybook/internal/logger"
	"github.com/julianstephens/daybook/internal/tui"
)

type TuiCmd struct {
	Date string `arg:"" optional:"" help:"Day to open (default: today)."`
}

func (c *TuiCmd) Run(ctx *cli.Context) error {
	date, err := cli.ParseDate(ctx.Clock, c.Date)
	if err != nil {
		return err
	}

	// An automatic backup on startup, best effort.
	if mgr, err := ctx.Backups(); err == nil {
		if _, err := mgr.CreateBackup(context.Background()); err != nil {
			logger.Warn("Automatic backup failed", "error", err)
		}
	}

	p := tea.NewProgram(tui.NewModel(ctx.Agenda, date), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("tui failed: %w", err)
	}
	return nil
}
