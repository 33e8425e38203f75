package system

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/julianstephens/daybook/internal/cli"
	"github.com/julianstephens/daybook/internal/recurrence"
)

type DoctorCmd struct{}

// check is one diagnostic. warnOnly failures are reported but do not fail
// the command; needsDB checks are skipped when the database is unreachable.
type check struct {
	name     string
	run      func(context.Context, *cli.Context) error
	needsDB  bool
	warnOnly bool
}

var checks = []check{
	{name: "Config", run: checkConfig},
	{name: "Clock/timezone", run: checkClockTimezone},
	{name: "Schema version", run: checkSchemaVersion, needsDB: true},
	{name: "Template rules", run: checkTemplates, needsDB: true},
	{name: "Backups present", run: checkBackupsPresent, warnOnly: true},
}

func (cmd *DoctorCmd) Run(ctx *cli.Context) error {
	bg := context.Background()
	ctx.Println("Running diagnostics...")
	ctx.Println()

	hasError := false
	dbReachable := true
	if err := ctx.Store.Load(bg); err != nil {
		ctx.Println("❌ Database reachable: FAIL")
		ctx.Printf("   Error: %v\n", err)
		hasError = true
		dbReachable = false
	} else {
		ctx.Println("✓ Database reachable: OK")
	}

	for _, c := range checks {
		if c.needsDB && !dbReachable {
			ctx.Printf("⊘ %s: SKIPPED (database not reachable)\n", c.name)
			continue
		}
		err := c.run(bg, ctx)
		switch {
		case err == nil:
			ctx.Printf("✓ %s: OK\n", c.name)
		case c.warnOnly:
			ctx.Printf("⚠ %s: WARNING\n", c.name)
			ctx.Printf("   %v\n", err)
		default:
			ctx.Printf("❌ %s: FAIL\n", c.name)
			ctx.Printf("   Error: %v\n", err)
			hasError = true
		}
	}

	ctx.Println()
	if hasError {
		ctx.Println("Some checks failed.")
		return errors.New("diagnostics failed")
	}
	ctx.Println("All checks passed.")
	return nil
}

func checkConfig(_ context.Context, ctx *cli.Context) error {
	if ctx.Config == nil {
		return errors.New("no configuration loaded")
	}
	return ctx.Config.Validate()
}

func checkClockTimezone(_ context.Context, ctx *cli.Context) error {
	now := ctx.Clock.Now()
	if now.Year() < 2000 || now.Year() > 2100 {
		return fmt.Errorf("system clock looks wrong: %s", now.Format(time.RFC3339))
	}
	start, end := ctx.Clock.DayBounds(ctx.Clock.Today())
	if !end.After(start) || now.Before(start) || !now.Before(end) {
		return fmt.Errorf("day boundaries for %s are inconsistent in %s", ctx.Clock.Today(), ctx.Clock.Location())
	}
	return nil
}

func checkSchemaVersion(bg context.Context, ctx *cli.Context) error {
	current, latest, err := ctx.Store.SchemaVersion(bg)
	if err != nil {
		return err
	}
	if current < latest {
		return fmt.Errorf("schema version %d is behind %d, run 'daybook migrate'", current, latest)
	}
	return nil
}

// checkTemplates re-validates active templates, catching rows written by an
// older binary with looser rules.
func checkTemplates(bg context.Context, ctx *cli.Context) error {
	templates, err := ctx.Agenda.ListTemplates(bg, false)
	if err != nil {
		return err
	}
	var bad []error
	for _, t := range templates {
		if err := recurrence.Validate(t); err != nil {
			bad = append(bad, fmt.Errorf("%s (%s): %w", t.Title, t.ID, err))
		}
	}
	return errors.Join(bad...)
}

func checkBackupsPresent(_ context.Context, ctx *cli.Context) error {
	mgr, err := ctx.Backups()
	if err != nil {
		return err
	}
	backups, err := mgr.ListBackups()
	if err != nil {
		return fmt.Errorf("failed to list backups: %w", err)
	}
	if len(backups) == 0 {
		return fmt.Errorf("no backups found in %s, run 'daybook backup create'", mgr.GetBackupDir())
	}
	if age := time.Since(backups[0].Timestamp); age > 7*24*time.Hour {
		return fmt.Errorf("latest backup is %d days old", int(age.Hours()/24))
	}
	return nil
}
