package system

import (
	"context"
	"fmt"
	"os"

	"github.com/julianstephens/daybook/internal/cli"
	"github.com/julianstephens/daybook/internal/storage/sqlite"
)

type InitCmd struct {
	Force bool `help:"Delete an existing SQLite database before initializing."`
	Yes   bool `short:"y" help:"Do not ask for confirmation with --force."`
}

func (c *InitCmd) Run(ctx *cli.Context) error {
	bg := context.Background()
	if c.Force {
		if _, ok := ctx.Store.(*sqlite.Store); !ok {
			return fmt.Errorf("--force is only supported for SQLite databases")
		}
		dbPath := ctx.Store.GetConfigPath()
		if _, err := os.Stat(dbPath); err == nil {
			ok, err := ctx.Confirm("Delete the existing database?", dbPath, c.Yes)
			if err != nil {
				return err
			}
			if !ok {
				ctx.Println("Init cancelled.")
				return nil
			}
			if err := ctx.Store.Close(); err != nil {
				return fmt.Errorf("failed to close existing database: %w", err)
			}
			for _, p := range []string{dbPath, dbPath + "-wal", dbPath + "-shm"} {
				if err := os.Remove(p); err != nil && !os.IsNotExist(err) {
					return fmt.Errorf("failed to delete existing database: %w", err)
				}
			}
			ctx.Printf("Deleted existing database at: %s\n", dbPath)
		} else if !os.IsNotExist(err) {
			return fmt.Errorf("failed to access existing database: %w", err)
		}
	}

	if err := ctx.Store.Init(bg); err != nil {
		return err
	}
	ctx.Printf("Initialized %s storage at: %s\n", "daybook", ctx.Store.GetConfigPath())
	if ctx.ConfigPath != "" {
		ctx.Printf("Config file: %s\n", ctx.ConfigPath)
	}
	return nil
}

type MigrateCmd struct{}

func (c *MigrateCmd) Run(ctx *cli.Context) error {
	count, err := ctx.Store.Migrate(context.Background(), func(msg string) {
		ctx.Println(msg)
	})
	if err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}

	if count == 0 {
		ctx.Println("No migrations to apply. Database is up to date.")
	} else {
		ctx.Printf("\nSuccessfully applied %d migration(s).\n", count)
	}
	return nil
}
