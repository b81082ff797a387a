package filestore

import (
	"strings"
	"time"
)

// Category is the coarse content classification of a stored file.
type Category string

const (
	CategoryDocument Category = "document"
	CategoryImage    Category = "image"
	CategoryVideo    Category = "video"
	CategoryAudio    Category = "audio"
	CategoryVoice    Category = "voice"
	CategoryOther    Category = "other"
)

// FileRecord is the metadata for one file stored on the platform's servers.
// Records are immutable after insert; the only lifecycle transition is deletion.
type FileRecord struct {
	ID            int64     // assigned by the store, monotonically increasing
	OwnerID       int64     // platform-assigned user ID of the uploader
	BlobRef       string    // opaque handle to re-fetch the bytes from the platform
	BlobUniqueRef string    // stable cross-context blob identifier, may be empty
	DisplayName   string    // user- or platform-supplied filename
	SizeBytes     int64
	Category      Category
	CreatedAt     time.Time // assigned by the store
}

// Draft is the validated input to an insert. ID and CreatedAt are assigned
// by the store.
type Draft struct {
	OwnerID       int64
	BlobRef       string
	BlobUniqueRef string
	DisplayName   string
	SizeBytes     int64
	Category      Category
}

// CategoryFromMIME maps a platform-supplied MIME type to a Category.
// Used at the transport boundary when a MIME string is all the platform
// provides about a file's kind.
func CategoryFromMIME(mime string) Category {
	mime = strings.ToLower(strings.TrimSpace(mime))
	switch {
	case mime == "":
		return CategoryOther
	case strings.HasPrefix(mime, "image/"):
		return CategoryImage
	case strings.HasPrefix(mime, "video/"):
		return CategoryVideo
	case strings.HasPrefix(mime, "audio/"):
		return CategoryAudio
	case strings.HasPrefix(mime, "text/"),
		strings.HasPrefix(mime, "application/"):
		return CategoryDocument
	default:
		return CategoryOther
	}
}
