// Package clitest builds command contexts over a throwaway SQLite database.
package clitest

import (
	"bytes"
	"path/filepath"
	"testing"
	"time"

	"github.com/julianstephens/daybook/internal/agenda"
	"github.com/julianstephens/daybook/internal/calendar"
	"github.com/julianstephens/daybook/internal/cli"
	"github.com/julianstephens/daybook/internal/config"
	"github.com/julianstephens/daybook/internal/storage/sqlite"
)

// Now is the fixed instant every test clock reports: Saturday 2026-01-10 noon UTC.
var Now = time.Date(2026, 1, 10, 12, 0, 0, 0, time.UTC)

type Env struct {
	Ctx    *cli.Context
	Out    *bytes.Buffer
	DBPath string
}

// New returns an environment with an initialized database.
func New(t *testing.T) *Env {
	t.Helper()
	env := NewUninitialized(t)
	if err := env.Ctx.Store.Init(t.Context()); err != nil {
		t.Fatalf("failed to init store: %v", err)
	}
	return env
}

// NewUninitialized returns an environment whose database file does not exist yet.
func NewUninitialized(t *testing.T) *Env {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "test.db")
	store := sqlite.NewStore(dbPath)
	t.Cleanup(func() {
		if err := store.Close(); err != nil {
			t.Errorf("failed to close store: %v", err)
		}
	})

	clock := calendar.NewFixedClock(time.UTC, Now)
	cfg := config.DefaultConfig()
	cfg.Timezone = "UTC"
	cfg.Database = dbPath

	out := &bytes.Buffer{}
	return &Env{
		Ctx: &cli.Context{
			Store:  store,
			Agenda: agenda.NewService(store, clock),
			Clock:  clock,
			Config: cfg,
			Out:    out,
		},
		Out:    out,
		DBPath: dbPath,
	}
}

// Run executes a command and returns what it printed.
func (e *Env) Run(t *testing.T, cmd interface{ Run(*cli.Context) error }) string {
	t.Helper()
	e.Out.Reset()
	if err := cmd.Run(e.Ctx); err != nil {
		t.Fatalf("%T failed: %v\n%s", cmd, err, e.Out.String())
	}
	return e.Out.String()
}
