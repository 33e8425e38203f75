package backup

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"testing"
	"time"

	_ "modernc.org/sqlite"

	"github.com/julianstephens/daybook/internal/constants"
	"github.com/julianstephens/daybook/internal/storage/sqlite"
)

func openTestDB(t *testing.T, path string) *sql.DB {
	t.Helper()
	dsn, err := sqlite.URI(path, "")
	if err != nil {
		t.Fatalf("failed to build database URI: %v", err)
	}
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}
	return db
}

func createTestDB(t *testing.T, dbPath string) {
	t.Helper()
	db := openTestDB(t, dbPath)
	defer db.Close()

	if _, err := db.Exec(`CREATE TABLE todos (id TEXT PRIMARY KEY, title TEXT)`); err != nil {
		t.Fatalf("failed to create test table: %v", err)
	}
	if _, err := db.Exec(`INSERT INTO todos (id, title) VALUES ('1', 'one'), ('2', 'two')`); err != nil {
		t.Fatalf("failed to insert test data: %v", err)
	}
}

func setupTestDB(t *testing.T) string {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "test.db")
	createTestDB(t, dbPath)
	return dbPath
}

// steppingClock returns a clock that advances one second per call.
func steppingClock(start time.Time) func() time.Time {
	current := start
	return func() time.Time {
		current = current.Add(time.Second)
		return current
	}
}

func countRows(t *testing.T, path string) int {
	t.Helper()
	db := openTestDB(t, path)
	defer db.Close()

	var n int
	if err := db.QueryRow("SELECT COUNT(*) FROM todos").Scan(&n); err != nil {
		t.Fatalf("failed to query database: %v", err)
	}
	return n
}

func TestCreateBackup(t *testing.T) {
	dbPath := setupTestDB(t)
	mgr := NewManager(dbPath, 0)

	path, err := mgr.CreateBackup(context.Background())
	if err != nil {
		t.Fatalf("CreateBackup failed: %v", err)
	}
	if filepath.Dir(path) != filepath.Join(filepath.Dir(dbPath), constants.BackupDirName) {
		t.Errorf("backup written to %s", path)
	}
	if n := countRows(t, path); n != 2 {
		t.Errorf("expected 2 rows in backup, got %d", n)
	}
}

func TestCreateBackupURICharactersInPath(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "odd?dir#1")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("failed to create directory: %v", err)
	}
	dbPath := filepath.Join(dir, "day%book?.db")
	createTestDB(t, dbPath)
	if _, err := os.Stat(dbPath); err != nil {
		t.Fatalf("database not created at the literal path: %v", err)
	}

	mgr := NewManager(dbPath, 0)
	path, err := mgr.CreateBackup(context.Background())
	if err != nil {
		t.Fatalf("CreateBackup failed: %v", err)
	}
	if n := countRows(t, path); n != 2 {
		t.Errorf("expected 2 rows in backup, got %d", n)
	}
	if _, err := mgr.RestoreBackup(context.Background(), path); err != nil {
		t.Fatalf("RestoreBackup failed: %v", err)
	}
	if n := countRows(t, dbPath); n != 2 {
		t.Errorf("expected 2 rows after restore, got %d", n)
	}
}

func TestCreateBackupMissingDatabase(t *testing.T) {
	mgr := NewManager(filepath.Join(t.TempDir(), "missing.db"), 0)
	if _, err := mgr.CreateBackup(context.Background()); err == nil {
		t.Error("expected error for missing database")
	}
}

func TestBackupNamesAreUnique(t *testing.T) {
	dbPath := setupTestDB(t)
	mgr := NewManager(dbPath, 0)
	fixed := time.Date(2026, 1, 10, 3, 0, 0, 0, time.Local)
	mgr.now = func() time.Time { return fixed }

	seen := map[string]bool{}
	for i := 0; i < 3; i++ {
		path, err := mgr.CreateBackup(context.Background())
		if err != nil {
			t.Fatalf("CreateBackup #%d failed: %v", i, err)
		}
		if seen[path] {
			t.Fatalf("duplicate backup path %s", path)
		}
		seen[path] = true
	}

	backups, err := mgr.ListBackups()
	if err != nil {
		t.Fatalf("ListBackups failed: %v", err)
	}
	if len(backups) != 3 {
		t.Fatalf("expected 3 backups, got %d", len(backups))
	}
	for _, b := range backups {
		if !b.Timestamp.Equal(fixed) {
			t.Errorf("backup %s timestamp = %v, want %v", b.Name(), b.Timestamp, fixed)
		}
	}
}

func TestBackupRotation(t *testing.T) {
	dbPath := setupTestDB(t)
	const keep = 4
	mgr := NewManager(dbPath, keep)
	mgr.now = steppingClock(time.Date(2026, 1, 1, 0, 0, 0, 0, time.Local))

	for i := 0; i < keep+3; i++ {
		if _, err := mgr.CreateBackup(context.Background()); err != nil {
			t.Fatalf("CreateBackup #%d failed: %v", i, err)
		}
	}

	backups, err := mgr.ListBackups()
	if err != nil {
		t.Fatalf("ListBackups failed: %v", err)
	}
	if len(backups) != keep {
		t.Fatalf("expected %d backups after rotation, got %d", keep, len(backups))
	}
	for i := 1; i < len(backups); i++ {
		if !backups[i].Timestamp.Before(backups[i-1].Timestamp) {
			t.Errorf("backups not sorted newest first at %d", i)
		}
	}
	// The newest of the seven is 7 seconds after the start.
	newest := time.Date(2026, 1, 1, 0, 0, 7, 0, time.Local)
	if !backups[0].Timestamp.Equal(newest) {
		t.Errorf("newest backup = %v, want %v", backups[0].Timestamp, newest)
	}
}

func TestListBackupsIgnoresStrangers(t *testing.T) {
	dbPath := setupTestDB(t)
	mgr := NewManager(dbPath, 0)

	if backups, err := mgr.ListBackups(); err != nil || len(backups) != 0 {
		t.Fatalf("ListBackups on empty dir = %v, %v", backups, err)
	}

	if err := os.MkdirAll(mgr.GetBackupDir(), 0o700); err != nil {
		t.Fatal(err)
	}
	for _, name := range []string{"notes.txt", "daybook-garbage.db", "daybook-20260101-000000-x.db", "other-20260101-000000.db"} {
		if err := os.WriteFile(filepath.Join(mgr.GetBackupDir(), name), []byte("x"), 0o600); err != nil {
			t.Fatal(err)
		}
	}
	if _, err := mgr.CreateBackup(context.Background()); err != nil {
		t.Fatalf("CreateBackup failed: %v", err)
	}

	backups, err := mgr.ListBackups()
	if err != nil {
		t.Fatalf("ListBackups failed: %v", err)
	}
	if len(backups) != 1 {
		t.Errorf("expected 1 backup, got %d: %+v", len(backups), backups)
	}
}

func TestParseBackupName(t *testing.T) {
	tests := []struct {
		name string
		ok   bool
	}{
		{"daybook-20260110-030000.db", true},
		{"daybook-20260110-030000-2.db", true},
		{"daybook-20260110-0300.db", false},
		{"daybook-20260110-030000-a.db", false},
		{"daybook-20260110-030000.sqlite", false},
	}
	for _, tt := range tests {
		if _, ok := parseBackupName(tt.name); ok != tt.ok {
			t.Errorf("parseBackupName(%q) ok = %v, want %v", tt.name, ok, tt.ok)
		}
	}
}

func TestRestoreBackup(t *testing.T) {
	dbPath := setupTestDB(t)
	ctx := context.Background()
	mgr := NewManager(dbPath, 0)
	mgr.now = steppingClock(time.Date(2026, 1, 1, 0, 0, 0, 0, time.Local))

	backupPath, err := mgr.CreateBackup(ctx)
	if err != nil {
		t.Fatalf("CreateBackup failed: %v", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := db.Exec("INSERT INTO todos (id, title) VALUES ('3', 'three')"); err != nil {
		t.Fatalf("failed to modify database: %v", err)
	}
	db.Close()
	if n := countRows(t, dbPath); n != 3 {
		t.Fatalf("expected 3 rows before restore, got %d", n)
	}

	safety, err := mgr.RestoreBackup(ctx, backupPath)
	if err != nil {
		t.Fatalf("RestoreBackup failed: %v", err)
	}
	if n := countRows(t, dbPath); n != 2 {
		t.Errorf("expected 2 rows after restore, got %d", n)
	}
	if safety == "" {
		t.Fatal("expected a safety copy of the replaced database")
	}
	if n := countRows(t, safety); n != 3 {
		t.Errorf("safety copy has %d rows, want 3", n)
	}
}

func TestRestoreRejectsInvalidBackup(t *testing.T) {
	dbPath := setupTestDB(t)
	ctx := context.Background()
	mgr := NewManager(dbPath, 0)

	if _, err := mgr.RestoreBackup(ctx, filepath.Join(t.TempDir(), "missing.db")); err == nil {
		t.Error("expected error for missing backup")
	}

	bogus := filepath.Join(t.TempDir(), "bogus.db")
	if err := os.WriteFile(bogus, []byte("this is not a database file at all, just text"), 0o600); err != nil {
		t.Fatal(err)
	}
	if _, err := mgr.RestoreBackup(ctx, bogus); err == nil {
		t.Error("expected error for corrupted backup")
	}
	if n := countRows(t, dbPath); n != 2 {
		t.Errorf("database changed by failed restore: %d rows", n)
	}
}

func TestScheduleRejectsBadSpec(t *testing.T) {
	mgr := NewManager(setupTestDB(t), 0)
	if _, err := mgr.Schedule(context.Background(), "not a schedule"); err == nil {
		t.Error("expected error for invalid cron spec")
	}

	c, err := mgr.Schedule(context.Background(), "@every 1h")
	if err != nil {
		t.Fatalf("Schedule failed: %v", err)
	}
	if len(c.Entries()) != 1 {
		t.Errorf("expected one cron entry, got %d", len(c.Entries()))
	}
	<-c.Stop().Done()
}
