package filestore

// Limits holds the configured size and quota ceilings. The value is
// immutable once constructed; tests pass their own Limits instead of
// mutating shared state.
type Limits struct {
	MaxUploadBytes   int64 // configured upload ceiling
	MaxDownloadBytes int64 // configured download ceiling
	PlatformMaxBytes int64 // hard ceiling the platform enforces on transfers
	MaxFilesPerOwner int   // per-owner live record quota
	StatsTopN        int   // number of entries in the stats largest-files list
}

// UploadCeiling returns the effective upload ceiling. The configured
// ceiling can never loosen the platform's hard transport limit, so a
// misconfigured MaxUploadBytes above PlatformMaxBytes is clamped.
func (l Limits) UploadCeiling() int64 {
	if l.PlatformMaxBytes > 0 && l.MaxUploadBytes > l.PlatformMaxBytes {
		return l.PlatformMaxBytes
	}
	return l.MaxUploadBytes
}

// Validate checks a declared size against the ceiling for the given
// direction. It is deterministic, has no side effects, and is safe for
// concurrent use.
func (l Limits) Validate(size int64, dir Direction) error {
	if size <= 0 {
		return ErrInvalidSize
	}

	limit := l.MaxDownloadBytes
	if dir == Upload {
		limit = l.UploadCeiling()
	}
	if size > limit {
		return &TooLargeError{Direction: dir, Size: size, Limit: limit}
	}
	return nil
}

// ValidateUpload checks a declared size against the upload ceiling.
func (l Limits) ValidateUpload(size int64) error {
	return l.Validate(size, Upload)
}

// ValidateDownload checks a declared size against the download ceiling.
func (l Limits) ValidateDownload(size int64) error {
	return l.Validate(size, Download)
}
