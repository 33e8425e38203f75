package backup

import (
	"context"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/julianstephens/daybook/internal/calendar"
	"github.com/julianstephens/daybook/internal/constants"
	"github.com/julianstephens/daybook/internal/models"
	"github.com/julianstephens/daybook/internal/storage/sqlite"
)

// TestBackupWhileStoreIsLive snapshots a WAL-mode store while another
// goroutine keeps writing to it, then restores the snapshot.
func TestBackupWhileStoreIsLive(t *testing.T) {
	ctx := context.Background()
	dbPath := filepath.Join(t.TempDir(), "daybook.db")

	store := sqlite.NewStore(dbPath)
	if err := store.Init(ctx); err != nil {
		t.Fatalf("failed to initialize store: %v", err)
	}

	created := time.Date(2026, 1, 1, 9, 0, 0, 0, time.UTC)
	tpl := models.Template{
		ID:         "walk",
		Title:      "Walk",
		AnchorDate: calendar.MustParseDate("2026-01-01"),
		Pattern:    models.Pattern{Kind: constants.PatternEveryNDays, Interval: 1},
		CreatedAt:  created,
		UpdatedAt:  created,
	}
	if err := store.AddTemplate(ctx, tpl); err != nil {
		t.Fatalf("AddTemplate failed: %v", err)
	}

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 0; i < 20; i++ {
			day := tpl.AnchorDate.AddDays(i)
			if _, err := store.UpsertOccurrenceStatus(ctx, tpl.ID, day, constants.StatusDone, created); err != nil {
				t.Errorf("UpsertOccurrenceStatus failed: %v", err)
				return
			}
		}
	}()

	mgr := NewManager(dbPath, 0)
	backupPath, err := mgr.CreateBackup(ctx)
	if err != nil {
		t.Fatalf("CreateBackup during writes failed: %v", err)
	}
	wg.Wait()

	if n, err := store.CountOccurrences(ctx); err != nil || n != 20 {
		t.Fatalf("CountOccurrences = %d, %v; want 20", n, err)
	}
	if err := store.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	if _, err := mgr.RestoreBackup(ctx, backupPath); err != nil {
		t.Fatalf("RestoreBackup failed: %v", err)
	}

	restored := sqlite.NewStore(dbPath)
	if err := restored.Load(ctx); err != nil {
		t.Fatalf("failed to load restored store: %v", err)
	}
	defer restored.Close()

	got, err := restored.GetTemplate(ctx, tpl.ID)
	if err != nil {
		t.Fatalf("GetTemplate on restored store failed: %v", err)
	}
	if got.Title != "Walk" {
		t.Errorf("restored template = %+v", got)
	}
	n, err := restored.CountOccurrences(ctx)
	if err != nil {
		t.Fatalf("CountOccurrences failed: %v", err)
	}
	// The snapshot saw some prefix of the writes, never a torn row.
	if n > 20 {
		t.Errorf("restored store has %d occurrences", n)
	}
}
