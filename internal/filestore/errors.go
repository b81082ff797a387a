package filestore

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound means the record does not exist or belongs to another
	// owner. The two cases are deliberately indistinguishable so that
	// lookups cannot reveal the existence of other owners' records.
	ErrNotFound = errors.New("file not found")

	// ErrInvalidSize means the declared size was zero or negative.
	ErrInvalidSize = errors.New("invalid file size")
)

// Direction distinguishes which size ceiling applies.
type Direction string

const (
	Upload   Direction = "upload"
	Download Direction = "download"
)

// TooLargeError means a file's size exceeds the ceiling for a direction.
type TooLargeError struct {
	Direction Direction
	Size      int64
	Limit     int64
}

func (e *TooLargeError) Error() string {
	return fmt.Sprintf("file too large for %s: %d bytes exceeds limit of %d bytes", e.Direction, e.Size, e.Limit)
}

// QuotaExceededError means an owner is at their file-count ceiling.
// Count and Limit are carried so transports can render an actionable
// message without re-querying.
type QuotaExceededError struct {
	Count int
	Limit int
}

func (e *QuotaExceededError) Error() string {
	return fmt.Sprintf("file quota exceeded: %d of %d files used", e.Count, e.Limit)
}

// IsTooLarge reports whether err is a TooLargeError.
func IsTooLarge(err error) bool {
	var tl *TooLargeError
	return errors.As(err, &tl)
}

// IsQuotaExceeded reports whether err is a QuotaExceededError.
func IsQuotaExceeded(err error) bool {
	var qe *QuotaExceededError
	return errors.As(err, &qe)
}
