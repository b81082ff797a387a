package filestore

import "context"

// Store is the durable metadata index. Every operation is scoped to an
// owner: a record is only ever visible to the owner that created it.
//
// Implementations must make Insert atomic with respect to concurrent
// inserts from the same owner — the quota check and the row insert happen
// in one transaction, so two racing uploads at the quota boundary can
// never both succeed.
type Store interface {
	// Insert assigns ID and CreatedAt and persists the draft. It returns
	// a *QuotaExceededError when the owner is at their quota. If the
	// draft carries a BlobUniqueRef that matches an existing live record
	// of the same owner, the existing record is returned instead of
	// inserting a duplicate.
	Insert(ctx context.Context, draft Draft) (*FileRecord, error)

	// Get returns the record with the given id if it is owned by ownerID,
	// otherwise ErrNotFound.
	Get(ctx context.Context, ownerID, id int64) (*FileRecord, error)

	// GetByName returns the owner's record with the given display name,
	// otherwise ErrNotFound. When the owner has several records with the
	// same name, the most recently created one is returned.
	GetByName(ctx context.Context, ownerID int64, name string) (*FileRecord, error)

	// List returns all of the owner's records, newest first. An owner
	// with no records gets an empty slice, not an error.
	List(ctx context.Context, ownerID int64) ([]*FileRecord, error)

	// Delete removes the record if it is owned by ownerID. Deleting a
	// record that does not exist (or was already deleted) returns
	// ErrNotFound.
	Delete(ctx context.Context, ownerID, id int64) error

	// Count returns the owner's live record count.
	Count(ctx context.Context, ownerID int64) (int, error)

	// Close releases the underlying storage.
	Close() error
}
