package system

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/julianstephens/daybook/internal/cli"
)

// ExportCmd writes the iCalendar feed to a file or stdout.
type ExportCmd struct {
	Output string `short:"o" help:"File to write (default: stdout)." type:"path"`
}

func (c *ExportCmd) Run(ctx *cli.Context) error {
	bg := context.Background()
	if c.Output == "" {
		return ctx.Agenda.ExportICS(bg, ctx.Writer())
	}

	if err := os.MkdirAll(filepath.Dir(c.Output), 0o755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}
	f, err := os.Create(c.Output)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", c.Output, err)
	}
	if err := ctx.Agenda.ExportICS(bg, f); err != nil {
		f.Close()
		return fmt.Errorf("export failed: %w", err)
	}
	if err := f.Close(); err != nil {
		return err
	}
	ctx.Printf("✓ Calendar exported to %s\n", c.Output)
	return nil
}
