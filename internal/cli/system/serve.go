package system

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/julianstephens/daybook/internal/cli"
	"github.com/julianstephens/daybook/internal/logger"
	"github.com/julianstephens/daybook/internal/server"
)

type ServeCmd struct {
	Listen    string `short:"l" help:"Address to listen on (default from config)."`
	NoBackups bool   `help:"Disable scheduled backups."`
}

func (c *ServeCmd) Run(ctx *cli.Context) error {
	addr := c.Listen
	if addr == "" {
		addr = ctx.Config.Listen
	}

	runCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if spec := ctx.Config.BackupSchedule; spec != "" && !c.NoBackups {
		mgr, err := ctx.Backups()
		switch {
		case errors.Is(err, cli.ErrBackupsUnsupported):
			logger.Info("Scheduled backups disabled", "reason", err)
		case err != nil:
			return err
		default:
			cron, err := mgr.Schedule(runCtx, spec)
			if err != nil {
				return err
			}
			defer func() { <-cron.Stop().Done() }()
		}
	}

	ctx.Printf("Serving daybook on http://%s (Ctrl+C to stop)\n", addr)
	return server.New(ctx.Agenda, ctx.Config).Run(runCtx, addr)
}
