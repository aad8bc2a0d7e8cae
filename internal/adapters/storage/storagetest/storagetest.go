// Package storagetest opens migrated in-memory databases for store tests.
package storagetest

import (
	"context"
	"testing"

	"lawoffice/internal/adapters/storage"
)

// Open returns a migrated private in-memory SQLite database wrapped in a
// TimedDB. The database is closed when the test ends.
func Open(t testing.TB) *storage.TimedDB {
	t.Helper()
	db, dialect, err := storage.Open(context.Background(), storage.MemoryURL)
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	if err := storage.Migrate(db, dialect); err != nil {
		t.Fatalf("migrate test db: %v", err)
	}
	return storage.NewTimedDB(db, dialect, 0)
}
