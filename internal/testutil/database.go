package testutil

import (
	"testing"

	"tgstore/internal/database"
	"tgstore/internal/database/migrations"
	"tgstore/internal/filestore"
)

// NewTestStore creates a new in-memory SQLite store with the schema
// applied and the given per-owner quota. The store is automatically
// closed when the test completes.
func NewTestStore(t *testing.T, quota int) *database.SQLiteStore {
	t.Helper()
	return NewTestStoreWithClock(t, quota, nil)
}

// NewTestStoreWithClock is NewTestStore with an explicit clock, for tests
// that need deterministic created_at values.
func NewTestStoreWithClock(t *testing.T, quota int, clock filestore.Clock) *database.SQLiteStore {
	t.Helper()

	sqlDB, err := database.OpenConnection(":memory:")
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}

	if err := migrations.MigrateUp(sqlDB); err != nil {
		sqlDB.Close()
		t.Fatalf("failed to apply migrations: %v", err)
	}

	store := database.NewSQLiteStoreFromDB(sqlDB, quota, clock, ":memory:")

	t.Cleanup(func() {
		store.Close()
	})

	return store
}
