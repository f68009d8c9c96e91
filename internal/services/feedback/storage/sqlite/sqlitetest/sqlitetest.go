// Package sqlitetest opens throwaway SQLite stores for tests.
package sqlitetest

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/louisbranch/emojifeedback/internal/services/feedback/storage/sqlite"
)

// Open opens a migrated SQLite store in a temp dir and closes it when the
// test ends.
func Open(t testing.TB, clock func() time.Time) *sqlite.Store {
	t.Helper()
	store, err := sqlite.Open(filepath.Join(t.TempDir(), "feedback.db"), sqlite.WithClock(clock))
	if err != nil {
		t.Fatalf("open sqlite store: %v", err)
	}
	t.Cleanup(func() {
		if err := store.Close(); err != nil {
			t.Errorf("close sqlite store: %v", err)
		}
	})
	return store
}
