package main

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/alecthomas/kong"

	"github.com/julianstephens/daybook/internal/agenda"
	"github.com/julianstephens/daybook/internal/calendar"
	"github.com/julianstephens/daybook/internal/cli"
	"github.com/julianstephens/daybook/internal/cli/backups"
	"github.com/julianstephens/daybook/internal/cli/days"
	"github.com/julianstephens/daybook/internal/cli/occurrences"
	"github.com/julianstephens/daybook/internal/cli/system"
	"github.com/julianstephens/daybook/internal/cli/templates"
	"github.com/julianstephens/daybook/internal/cli/todos"
	"github.com/julianstephens/daybook/internal/config"
	"github.com/julianstephens/daybook/internal/constants"
	apperrors "github.com/julianstephens/daybook/internal/errors"
	"github.com/julianstephens/daybook/internal/keyring"
	"github.com/julianstephens/daybook/internal/logger"
	"github.com/julianstephens/daybook/internal/storage"
	"github.com/julianstephens/daybook/internal/storage/postgres"
	"github.com/julianstephens/daybook/internal/storage/sqlite"
)

var CLI struct {
	Version  kong.VersionFlag
	Config   string `help:"Config file path." type:"path" env:"DAYBOOK_CONFIG" default:"${config_path}"`
	Database string `help:"SQLite file path or PostgreSQL connection string. Overrides the config file. Passwords belong in the keyring or DAYBOOK_DB_CONNECTION, not here." env:"DAYBOOK_DATABASE"`
	Timezone string `help:"IANA time zone deciding where days begin and end. Overrides the config file." env:"DAYBOOK_TZ"`
	Debug    bool   `help:"Log debug output to stderr."`

	Init    system.InitCmd    `cmd:"" help:"Initialize daybook storage."`
	Migrate system.MigrateCmd `cmd:"" help:"Run database migrations."`
	Doctor  system.DoctorCmd  `cmd:"" help:"Run health checks and diagnostics."`

	Day   days.DayCmd   `cmd:"" help:"Show the daily list for a date." default:"withargs"`
	Month days.MonthCmd `cmd:"" help:"Show a month overview."`
	Next  days.NextCmd  `cmd:"" help:"Show the next dates of every template."`

	Template struct {
		Add      templates.TemplateAddCmd      `cmd:"" help:"Add a recurring template."`
		Edit     templates.TemplateEditCmd     `cmd:"" help:"Edit a template."`
		List     templates.TemplateListCmd     `cmd:"" help:"List templates." default:"1"`
		Show     templates.TemplateShowCmd     `cmd:"" help:"Show a template and its next dates."`
		Retire   templates.TemplateRetireCmd   `cmd:"" help:"Retire a template, keeping its history."`
		Except   templates.TemplateExceptCmd   `cmd:"" help:"Skip one date of a template."`
		Unexcept templates.TemplateUnexceptCmd `cmd:"" help:"Restore a skipped date."`
	} `cmd:"" aliases:"t" help:"Manage recurring templates."`

	Occurrence struct {
		Done   occurrences.OccurrenceDoneCmd   `cmd:"" help:"Mark an occurrence done."`
		Skip   occurrences.OccurrenceSkipCmd   `cmd:"" help:"Mark an occurrence skipped."`
		Reset  occurrences.OccurrenceResetCmd  `cmd:"" help:"Mark an occurrence pending again."`
		Rename occurrences.OccurrenceRenameCmd `cmd:"" help:"Override the title of one occurrence."`
	} `cmd:"" aliases:"o" help:"Update single occurrences."`

	Todo struct {
		Add    todos.TodoAddCmd    `cmd:"" help:"Add a todo."`
		Done   todos.TodoDoneCmd   `cmd:"" help:"Mark a todo done."`
		Undo   todos.TodoUndoCmd   `cmd:"" help:"Mark a todo pending again."`
		Delete todos.TodoDeleteCmd `cmd:"" help:"Delete a todo."`
		List   todos.TodoListCmd   `cmd:"" help:"List upcoming todos." default:"1"`
	} `cmd:"" help:"Manage one-off todos."`

	Backup struct {
		Create  backups.BackupCreateCmd  `cmd:"" help:"Create a manual backup." default:"1"`
		List    backups.BackupListCmd    `cmd:"" help:"List available backups."`
		Restore backups.BackupRestoreCmd `cmd:"" help:"Restore from a backup."`
	} `cmd:"" help:"Manage database backups."`

	Keyring struct {
		Set    system.KeyringSetCmd    `cmd:"" help:"Store a PostgreSQL connection string in the OS keyring."`
		Get    system.KeyringGetCmd    `cmd:"" help:"Show the stored connection string with its password masked."`
		Delete system.KeyringDeleteCmd `cmd:"" help:"Remove the stored connection string."`
		Status system.KeyringStatusCmd `cmd:"" help:"Check keyring availability." default:"1"`
	} `cmd:"" help:"Manage database credentials in the OS keyring."`

	Export   system.ExportCmd `cmd:"" help:"Export templates and todos as iCalendar."`
	Serve    system.ServeCmd  `cmd:"" help:"Run the HTTP API."`
	Tui      system.TuiCmd    `cmd:"" help:"Launch the interactive TUI."`
	Seed     system.SeedCmd   `cmd:"" help:"Add demo templates and todos."`
	Clear    system.ClearCmd  `cmd:"" help:"Delete all data, keeping the schema."`
	DebugCmd system.DebugCmd  `cmd:"" name:"debug" hidden:"" help:"Debug commands for troubleshooting."`
}

// Commands that open the store themselves or never touch it.
var skipLoad = map[string]bool{
	"init":    true,
	"migrate": true,
	"doctor":  true,
	"keyring": true,
}

func main() {
	ctx := kong.Parse(&CLI,
		kong.Name(constants.AppName),
		kong.Description("Recurring tasks and todos, one day at a time."),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact:             true,
			NoExpandSubcommands: true,
		}),
		kong.Vars{
			"version":     constants.Version,
			"config_path": constants.DefaultConfigPath,
		},
	)
	command := strings.Fields(ctx.Command())[0]

	cfg, err := config.Load(CLI.Config)
	if err != nil {
		apperrors.Fatal(err)
	}
	if CLI.Database != "" {
		cfg.Database = CLI.Database
	}
	if CLI.Timezone != "" {
		cfg.Timezone = CLI.Timezone
	}
	cfg.Debug = cfg.Debug || CLI.Debug
	if err := cfg.Validate(); err != nil {
		apperrors.Fatal(fmt.Errorf("invalid configuration: %w", err))
	}

	store, dataDir, err := openStore(cfg)
	if err != nil {
		apperrors.Fatal(err)
	}
	if err := logger.Init(logger.Config{
		Debug:   cfg.Debug,
		DataDir: dataDir,
		Stderr:  command == "serve",
	}); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: failed to initialize logger: %v\n", err)
	}

	clock, err := calendar.NewClock(cfg.Timezone)
	if err != nil {
		apperrors.Fatal(err)
	}

	appCtx := &cli.Context{
		Store:      store,
		Agenda:     agenda.NewService(store, clock),
		Clock:      clock,
		Config:     cfg,
		ConfigPath: config.ExpandPath(CLI.Config),
	}
	defer store.Close()

	if !skipLoad[command] {
		if err := store.Load(context.Background()); err != nil {
			store.Close()
			apperrors.Fatal(err)
		}
	}

	if err := ctx.Run(appCtx); err != nil {
		store.Close()
		apperrors.Fatal(err)
	}
}

// openStore picks the backend for the resolved database setting and returns
// the directory logs are written under.
func openStore(cfg *config.Config) (storage.Provider, string, error) {
	db, source := keyring.ResolveDatabase(cfg.Database, postgres.IsConnString)
	if postgres.IsConnString(db) {
		// Only the config file is forbidden from holding a password.
		if source == keyring.SourceConfig {
			if err := postgres.ValidateConnString(db); err != nil {
				if errors.Is(err, postgres.ErrEmbeddedCredentials) {
					return nil, "", fmt.Errorf("%w: store the connection string with 'daybook keyring set' or export %s instead", err, constants.EnvDBConnection)
				}
				return nil, "", err
			}
		}
		return postgres.New(db), filepath.Dir(config.ExpandPath(CLI.Config)), nil
	}

	path := config.ExpandPath(cmp.Or(db, constants.DefaultDBPath))
	return sqlite.NewStore(path), filepath.Dir(path), nil
}
