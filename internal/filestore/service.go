package filestore

import (
	"context"
	"fmt"
)

// Service is the single entry point the transport layers call. It
// composes size validation, quota-checked persistence and statistics
// behind one API, returning typed errors for the transports to render.
//
// Service holds no mutable state of its own; every method is safe to
// call concurrently from independent transport goroutines.
type Service struct {
	store  Store
	limits Limits
	logger Logger
}

// NewService creates a Service with the provided dependencies.
func NewService(store Store, limits Limits, logger Logger) *Service {
	return &Service{
		store:  store,
		limits: limits,
		logger: logger,
	}
}

// Limits returns the configured ceilings, for transports that render them
// in user-facing help text.
func (s *Service) Limits() Limits { return s.limits }

// RecordUpload validates the draft and persists it. The store enforces
// the per-owner quota atomically with the insert. Returns ErrInvalidSize,
// *TooLargeError or *QuotaExceededError on rejection.
func (s *Service) RecordUpload(ctx context.Context, draft Draft) (*FileRecord, error) {
	if err := s.limits.ValidateUpload(draft.SizeBytes); err != nil {
		return nil, err
	}

	record, err := s.store.Insert(ctx, draft)
	if err != nil {
		return nil, err
	}

	s.logger.Info("file recorded",
		"owner", record.OwnerID, "id", record.ID,
		"name", record.DisplayName, "size", record.SizeBytes)
	return record, nil
}

// PrepareDownload looks up the record for ownership and checks its stored
// size against the download ceiling. A record uploaded under an older,
// looser policy can still be refused here if the transport could not
// stream it.
func (s *Service) PrepareDownload(ctx context.Context, ownerID, id int64) (*FileRecord, error) {
	record, err := s.store.Get(ctx, ownerID, id)
	if err != nil {
		return nil, err
	}

	if err := s.limits.ValidateDownload(record.SizeBytes); err != nil {
		return nil, err
	}
	return record, nil
}

// ListFiles returns all of the owner's records, newest first.
func (s *Service) ListFiles(ctx context.Context, ownerID int64) ([]*FileRecord, error) {
	records, err := s.store.List(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("listing files: %w", err)
	}
	return records, nil
}

// GetDetails returns a single record by id, scoped to the owner.
func (s *Service) GetDetails(ctx context.Context, ownerID, id int64) (*FileRecord, error) {
	return s.store.Get(ctx, ownerID, id)
}

// FindByName returns the owner's record with the given display name.
func (s *Service) FindByName(ctx context.Context, ownerID int64, name string) (*FileRecord, error) {
	return s.store.GetByName(ctx, ownerID, name)
}

// DeleteFile removes the record if owned by ownerID. A second delete of
// the same id returns ErrNotFound. The blob on the platform's servers is
// not touched; only the metadata row is removed.
func (s *Service) DeleteFile(ctx context.Context, ownerID, id int64) error {
	if err := s.store.Delete(ctx, ownerID, id); err != nil {
		return err
	}
	s.logger.Info("file deleted", "owner", ownerID, "id", id)
	return nil
}

// GetStats computes the owner's storage statistics from a single read of
// the store.
func (s *Service) GetStats(ctx context.Context, ownerID int64) (*Stats, error) {
	records, err := s.store.List(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("reading files for stats: %w", err)
	}
	return Aggregate(records, s.limits.StatsTopN), nil
}
