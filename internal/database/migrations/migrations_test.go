package migrations

import (
	"database/sql"
	"testing"

	_ "github.com/mattn/go-sqlite3"
)

func TestMigrateUp_FreshDatabase(t *testing.T) {
	db := openTestDB(t)
	defer db.Close()

	// Migrate up
	err := MigrateUp(db)
	if err != nil {
		t.Fatalf("MigrateUp() failed: %v", err)
	}

	// Verify tables were created
	tables := []string{"files", "schema_migrations"}
	for _, table := range tables {
		var name string
		err := db.QueryRow("SELECT name FROM sqlite_master WHERE type='table' AND name=?", table).Scan(&name)
		if err != nil {
			t.Errorf("Table %s was not created: %v", table, err)
		}
	}
}

func TestCheckStatus_FreshDatabase(t *testing.T) {
	db := openTestDB(t)
	defer db.Close()

	// Fresh database should need migration
	err := CheckStatus(db)
	if err == nil {
		t.Error("CheckStatus() expected error for fresh database, got nil")
	}

	// Error should mention needing migration
	if err.Error() != "database has no schema version (needs migration)" {
		t.Errorf("CheckStatus() error = %q, want error about needing migration", err.Error())
	}
}

func TestCheckStatus_AfterMigration(t *testing.T) {
	db := openTestDB(t)
	defer db.Close()

	// Migrate up
	if err := MigrateUp(db); err != nil {
		t.Fatalf("MigrateUp() failed: %v", err)
	}

	// Status should be OK now
	err := CheckStatus(db)
	if err != nil {
		t.Errorf("CheckStatus() after migration returned error: %v", err)
	}
}

func TestMigrateUp_Idempotent(t *testing.T) {
	db := openTestDB(t)
	defer db.Close()

	// Run migration twice
	if err := MigrateUp(db); err != nil {
		t.Fatalf("First MigrateUp() failed: %v", err)
	}

	if err := MigrateUp(db); err != nil {
		t.Errorf("Second MigrateUp() failed: %v (should be idempotent)", err)
	}

	// Status should still be OK
	if err := CheckStatus(db); err != nil {
		t.Errorf("CheckStatus() after double migration returned error: %v", err)
	}
}

func TestSchema_OwnerBlobUniqueRef(t *testing.T) {
	db := openTestDB(t)
	defer db.Close()

	if err := MigrateUp(db); err != nil {
		t.Fatalf("MigrateUp() failed: %v", err)
	}

	insert := `
		INSERT INTO files (owner_id, blob_ref, blob_unique_ref, display_name, size_bytes, content_category, created_at)
		VALUES (?, ?, ?, ?, ?, ?, datetime('now'))
	`

	// Insert first record
	_, err := db.Exec(insert, 1, "blob-1", "uniq-1", "a.txt", 100, "document")
	if err != nil {
		t.Fatalf("Failed to insert first record: %v", err)
	}

	// Same unique ref for the same owner should fail due to UNIQUE index
	_, err = db.Exec(insert, 1, "blob-2", "uniq-1", "b.txt", 100, "document")
	if err == nil {
		t.Error("Expected unique constraint violation for duplicate blob_unique_ref, but insert succeeded")
	}

	// Same unique ref for a different owner is fine
	_, err = db.Exec(insert, 2, "blob-3", "uniq-1", "c.txt", 100, "document")
	if err != nil {
		t.Errorf("Insert with same unique ref for different owner failed: %v", err)
	}

	// NULL unique refs never collide
	if _, err := db.Exec(insert, 1, "blob-4", nil, "d.txt", 100, "document"); err != nil {
		t.Fatalf("Failed to insert record with NULL unique ref: %v", err)
	}
	if _, err := db.Exec(insert, 1, "blob-5", nil, "e.txt", 100, "document"); err != nil {
		t.Errorf("Second insert with NULL unique ref failed: %v", err)
	}
}

// openTestDB opens an in-memory SQLite database for testing.
func openTestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := sql.Open("sqlite3", ":memory:")
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}

	return db
}
