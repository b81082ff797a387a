package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync/atomic"

	"tgstore/internal/database/migrations"
	"tgstore/internal/filestore"

	_ "github.com/mattn/go-sqlite3" // SQLite driver
)

// SQLiteStore implements the filestore.Store interface on SQLite.
type SQLiteStore struct {
	db    *sql.DB
	quota int
	clock filestore.Clock
	path  string
}

// NewSQLiteStore opens a SQLite database at path and wraps it as a Store.
// path can be a file path or ":memory:" for an in-memory database.
// quota is the per-owner live record ceiling enforced on Insert.
func NewSQLiteStore(path string, quota int, clock filestore.Clock) (*SQLiteStore, error) {
	db, err := OpenConnection(path)
	if err != nil {
		return nil, err
	}

	return NewSQLiteStoreFromDB(db, quota, clock, path), nil
}

// NewSQLiteStoreFromDB wraps an existing database connection. The caller
// is responsible for ensuring the connection is properly configured.
func NewSQLiteStoreFromDB(db *sql.DB, quota int, clock filestore.Clock, path string) *SQLiteStore {
	if clock == nil {
		clock = filestore.RealClock{}
	}
	return &SQLiteStore{
		db:    db,
		quota: quota,
		clock: clock,
		path:  path,
	}
}

// memDBSeq distinguishes in-memory databases so two open stores never
// alias the same shared-cache database.
var memDBSeq atomic.Int64

// OpenConnection opens and configures a SQLite connection. Exported for
// tools and tests that need a properly configured connection.
// path can be a file path or ":memory:" for an in-memory database.
func OpenConnection(path string) (*sql.DB, error) {
	dsn := path
	if path == ":memory:" {
		dsn = fmt.Sprintf("file:memdb%d?mode=memory&cache=shared", memDBSeq.Add(1))
	} else {
		// WAL keeps readers unblocked during writes; the busy timeout
		// makes racing writers wait for the single-writer lock instead
		// of failing with SQLITE_BUSY. The quota check relies on
		// immediate transactions taking the write lock up front.
		dsn = "file:" + path + "?_journal_mode=WAL&_busy_timeout=5000&_txlock=immediate&_foreign_keys=on"
	}

	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if path == ":memory:" {
		// Each pool connection would otherwise get its own empty
		// in-memory database.
		db.SetMaxOpenConns(1)
	}

	return db, nil
}

const recordColumns = "id, owner_id, blob_ref, blob_unique_ref, display_name, size_bytes, content_category, created_at"

// Insert persists the draft with an atomic quota check. If the draft
// carries a blob unique ref that the owner already has a record for, the
// existing record is returned and nothing is inserted.
func (s *SQLiteStore) Insert(ctx context.Context, draft filestore.Draft) (*filestore.FileRecord, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("starting transaction: %w", err)
	}
	defer tx.Rollback()

	// Re-uploads of the same blob by the same owner collapse onto the
	// existing record.
	if draft.BlobUniqueRef != "" {
		existing, err := scanRecord(tx.QueryRowContext(ctx,
			"SELECT "+recordColumns+" FROM files WHERE owner_id = ? AND blob_unique_ref = ?",
			draft.OwnerID, draft.BlobUniqueRef))
		if err == nil {
			return existing, tx.Commit()
		}
		if !errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("checking for existing blob ref: %w", err)
		}
	}

	// Quota check and insert share the transaction, so two racing
	// uploads at the boundary cannot both observe a count below the
	// ceiling.
	var count int
	err = tx.QueryRowContext(ctx, "SELECT COUNT(*) FROM files WHERE owner_id = ?", draft.OwnerID).Scan(&count)
	if err != nil {
		return nil, fmt.Errorf("counting owner files: %w", err)
	}
	if count >= s.quota {
		return nil, &filestore.QuotaExceededError{Count: count, Limit: s.quota}
	}

	createdAt := s.clock.Now().UTC()
	res, err := tx.ExecContext(ctx,
		"INSERT INTO files (owner_id, blob_ref, blob_unique_ref, display_name, size_bytes, content_category, created_at) VALUES (?, ?, ?, ?, ?, ?, ?)",
		draft.OwnerID, draft.BlobRef, nullString(draft.BlobUniqueRef),
		draft.DisplayName, draft.SizeBytes, string(draft.Category), createdAt)
	if err != nil {
		return nil, fmt.Errorf("inserting file record: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("reading inserted id: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("committing transaction: %w", err)
	}

	return &filestore.FileRecord{
		ID:            id,
		OwnerID:       draft.OwnerID,
		BlobRef:       draft.BlobRef,
		BlobUniqueRef: draft.BlobUniqueRef,
		DisplayName:   draft.DisplayName,
		SizeBytes:     draft.SizeBytes,
		Category:      draft.Category,
		CreatedAt:     createdAt,
	}, nil
}

// Get returns the record only when owned by ownerID. A record owned by
// someone else is reported as not found, never as a permission error.
func (s *SQLiteStore) Get(ctx context.Context, ownerID, id int64) (*filestore.FileRecord, error) {
	record, err := scanRecord(s.db.QueryRowContext(ctx,
		"SELECT "+recordColumns+" FROM files WHERE owner_id = ? AND id = ?", ownerID, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, filestore.ErrNotFound
		}
		return nil, fmt.Errorf("finding file by id: %w", err)
	}
	return record, nil
}

// GetByName returns the owner's most recently created record with the
// given display name.
func (s *SQLiteStore) GetByName(ctx context.Context, ownerID int64, name string) (*filestore.FileRecord, error) {
	record, err := scanRecord(s.db.QueryRowContext(ctx,
		"SELECT "+recordColumns+" FROM files WHERE owner_id = ? AND display_name = ? ORDER BY created_at DESC, id DESC LIMIT 1",
		ownerID, name))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, filestore.ErrNotFound
		}
		return nil, fmt.Errorf("finding file by name: %w", err)
	}
	return record, nil
}

// List returns all of the owner's records, newest first.
func (s *SQLiteStore) List(ctx context.Context, ownerID int64) ([]*filestore.FileRecord, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT "+recordColumns+" FROM files WHERE owner_id = ? ORDER BY created_at DESC, id DESC", ownerID)
	if err != nil {
		return nil, fmt.Errorf("listing files: %w", err)
	}
	defer rows.Close()

	records := []*filestore.FileRecord{}
	for rows.Next() {
		record, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning file record: %w", err)
		}
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("listing files: %w", err)
	}
	return records, nil
}

// Delete removes the record if owned by ownerID. A second delete of the
// same id reports not found.
func (s *SQLiteStore) Delete(ctx context.Context, ownerID, id int64) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM files WHERE owner_id = ? AND id = ?", ownerID, id)
	if err != nil {
		return fmt.Errorf("deleting file record: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking deleted rows: %w", err)
	}
	if affected == 0 {
		return filestore.ErrNotFound
	}
	return nil
}

// Count returns the owner's live record count.
func (s *SQLiteStore) Count(ctx context.Context, ownerID int64) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM files WHERE owner_id = ?", ownerID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("counting files: %w", err)
	}
	return count, nil
}

// Path returns the database file path (or ":memory:" for in-memory databases).
func (s *SQLiteStore) Path() string {
	return s.path
}

// CheckMigrations verifies the database schema is up-to-date.
func (s *SQLiteStore) CheckMigrations() error {
	return migrations.CheckStatus(s.db)
}

// MigrateUp brings the database schema to the latest version.
func (s *SQLiteStore) MigrateUp() error {
	return migrations.MigrateUp(s.db)
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// scanner is the subset of *sql.Row and *sql.Rows used by scanRecord.
type scanner interface {
	Scan(dest ...any) error
}

func scanRecord(row scanner) (*filestore.FileRecord, error) {
	var (
		record    filestore.FileRecord
		uniqueRef sql.NullString
		category  string
	)
	err := row.Scan(&record.ID, &record.OwnerID, &record.BlobRef, &uniqueRef,
		&record.DisplayName, &record.SizeBytes, &category, &record.CreatedAt)
	if err != nil {
		return nil, err
	}
	record.BlobUniqueRef = uniqueRef.String
	record.Category = filestore.Category(category)
	return &record, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

// Compile-time check that SQLiteStore implements the filestore.Store interface
var _ filestore.Store = (*SQLiteStore)(nil)
