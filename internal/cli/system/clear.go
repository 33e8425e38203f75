package system

import (
	"context"
	"fmt"

	"github.com/julianstephens/daybook/internal/cli"
)

// ClearCmd deletes every template, occurrence and todo but keeps the schema.
type ClearCmd struct {
	Yes bool `short:"y" help:"Do not ask for confirmation."`
}

func (c *ClearCmd) Run(ctx *cli.Context) error {
	ok, err := ctx.Confirm("Delete all templates, occurrences and todos?", "This cannot be undone. Consider 'daybook backup create' first.", c.Yes)
	if err != nil {
		return err
	}
	if !ok {
		ctx.Println("Clear cancelled.")
		return nil
	}

	if err := ctx.Store.Clear(context.Background()); err != nil {
		return fmt.Errorf("failed to clear database: %w", err)
	}
	ctx.Println("✓ All data cleared")
	return nil
}
