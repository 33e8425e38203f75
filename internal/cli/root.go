package cli

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/huh"

	"github.com/julianstephens/daybook/internal/agenda"
	"github.com/julianstephens/daybook/internal/backup"
	"github.com/julianstephens/daybook/internal/calendar"
	"github.com/julianstephens/daybook/internal/config"
	"github.com/julianstephens/daybook/internal/storage"
	"github.com/julianstephens/daybook/internal/storage/sqlite"
)

// ErrBackupsUnsupported is returned by backup commands on a PostgreSQL store.
var ErrBackupsUnsupported = errors.New("backups are only available for SQLite databases; use pg_dump for PostgreSQL")

type Context struct {
	Store      storage.Provider
	Agenda     *agenda.Service
	Clock      *calendar.Clock
	Config     *config.Config
	ConfigPath string

	// Out receives command output. Nil means stdout.
	Out io.Writer
}

func (c *Context) Writer() io.Writer {
	if c.Out == nil {
		return os.Stdout
	}
	return c.Out
}

func (c *Context) Printf(format string, args ...any) {
	fmt.Fprintf(c.Writer(), format, args...)
}

func (c *Context) Println(args ...any) {
	fmt.Fprintln(c.Writer(), args...)
}

// Backups returns a backup manager for the SQLite database file.
func (c *Context) Backups() (*backup.Manager, error) {
	if _, ok := c.Store.(*sqlite.Store); !ok {
		return nil, ErrBackupsUnsupported
	}
	maxBackups := 0
	if c.Config != nil {
		maxBackups = c.Config.MaxBackups
	}
	return backup.NewManager(c.Store.GetConfigPath(), maxBackups), nil
}

// Confirm asks a yes/no question. yes skips the prompt, for scripts.
func (c *Context) Confirm(title, description string, yes bool) (bool, error) {
	if yes {
		return true, nil
	}
	var ok bool
	err := huh.NewConfirm().
		Title(title).
		Description(description).
		Affirmative("Yes").
		Negative("No").
		Value(&ok).
		Run()
	if err != nil {
		if errors.Is(err, huh.ErrUserAborted) {
			return false, nil
		}
		return false, fmt.Errorf("confirmation prompt failed: %w", err)
	}
	return ok, nil
}
