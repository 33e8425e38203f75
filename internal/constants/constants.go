package constants

import "time"

// PatternKind identifies the shape of a recurrence pattern
type PatternKind string

// OccurrenceStatus is the completion state of a single occurrence
type OccurrenceStatus string

// TodoStatus is the completion state of a standalone todo
type TodoStatus string

// ItemKind distinguishes the two sources merged into a daily list
type ItemKind string

const (
	AppName           = "daybook"
	DefaultConfigPath = "~/.config/daybook/config.yaml"
	DefaultDBPath     = "~/.config/daybook/daybook.db"
	DefaultListen     = "127.0.0.1:3000"
	DefaultTimezone   = "Local"
	Version           = "v0.3.0"

	// DefaultKeyringUser is the keyring account holding the PostgreSQL connection string
	DefaultKeyringUser = "database-connection"

	// EnvDBConnection overrides the database setting, mainly for PostgreSQL credentials
	EnvDBConnection = "DAYBOOK_DB_CONNECTION"

	// DateFormat is the standard date format used throughout the application (YYYY-MM-DD)
	DateFormat = "2006-01-02"

	// MonthFormat is used for month arguments (YYYY-MM)
	MonthFormat = "2006-01"

	// TimeFormat is the standard time format used throughout the application (HH:MM)
	TimeFormat = "15:04"

	// Backup constants
	MaxBackups            = 14
	BackupDirName         = "backups"
	BackupFilePrefix      = "daybook-"
	BackupFileSuffix      = ".db"
	DefaultBackupSchedule = "0 3 * * *"

	// Pattern kinds
	PatternEveryNDays     PatternKind = "every_n_days"
	PatternWeekly         PatternKind = "weekly"
	PatternMonthlyDay     PatternKind = "monthly_day"
	PatternMonthlyWeekday PatternKind = "monthly_weekday"
	PatternYearly         PatternKind = "yearly"

	// OrdinalLast selects the final matching weekday of a month
	OrdinalLast = -1

	// Occurrence statuses
	StatusPending OccurrenceStatus = "pending"
	StatusDone    OccurrenceStatus = "done"
	StatusSkipped OccurrenceStatus = "skipped"

	// Todo statuses
	TodoPending TodoStatus = "pending"
	TodoDone    TodoStatus = "done"

	// Daily list item kinds
	KindOccurrence ItemKind = "occurrence"
	KindTodo       ItemKind = "todo"

	// MaxUpcomingDays bounds the look-ahead of the upcoming view
	MaxUpcomingDays = 366

	// DefaultHistoryDays is how far back a template's history looks by default
	DefaultHistoryDays = 90

	// ShutdownTimeout bounds graceful HTTP shutdown
	ShutdownTimeout = 5 * time.Second
)
