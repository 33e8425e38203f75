package system

import (
	"os"
	"strings"
	"testing"

	"github.com/julianstephens/daybook/internal/constants"
	"github.com/julianstephens/daybook/internal/models"
)

func TestInitCmd_Success(t *testing.T) {
	ctx, out, dbPath := setupTestContext(t, false)

	if err := (&InitCmd{}).Run(ctx); err != nil {
		t.Fatalf("init command failed: %v", err)
	}
	if _, err := os.Stat(dbPath); os.IsNotExist(err) {
		t.Errorf("database file was not created at %s", dbPath)
	}
	if !strings.Contains(out.String(), dbPath) {
		t.Errorf("output should mention the database path, got %q", out.String())
	}
}

func TestInitCmd_Idempotent(t *testing.T) {
	ctx, _, _ := setupTestContext(t, false)

	cmd := &InitCmd{}
	if err := cmd.Run(ctx); err != nil {
		t.Fatalf("first init failed: %v", err)
	}
	if err := cmd.Run(ctx); err != nil {
		t.Errorf("second init failed (should be idempotent): %v", err)
	}
}

func TestInitCmd_ForceDeletesExisting(t *testing.T) {
	ctx, out, _ := setupTestContext(t, true)

	_, err := ctx.Agenda.CreateTemplate(t.Context(), models.TemplateInput{
		Title:   "Stretch",
		Pattern: models.Pattern{Kind: constants.PatternEveryNDays, Interval: 1},
	})
	if err != nil {
		t.Fatalf("CreateTemplate failed: %v", err)
	}

	if err := (&InitCmd{Force: true, Yes: true}).Run(ctx); err != nil {
		t.Fatalf("init --force failed: %v", err)
	}
	if !strings.Contains(out.String(), "Deleted existing database") {
		t.Errorf("expected deletion message, got %q", out.String())
	}

	templates, err := ctx.Agenda.ListTemplates(t.Context(), true)
	if err != nil {
		t.Fatalf("ListTemplates failed: %v", err)
	}
	if len(templates) != 0 {
		t.Errorf("expected a fresh database, found %d templates", len(templates))
	}
}

func TestMigrateCmd_UpToDate(t *testing.T) {
	ctx, out, _ := setupTestContext(t, true)

	if err := (&MigrateCmd{}).Run(ctx); err != nil {
		t.Fatalf("migrate failed: %v", err)
	}
	if !strings.Contains(out.String(), "up to date") {
		t.Errorf("expected up to date message, got %q", out.String())
	}
}
