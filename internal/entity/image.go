package entity

import (
	"time"

	"github.com/google/uuid"
)

// Image is the stored record of one upload. Blob columns hold object-store keys;
// OriginalKey is nil for records whose original upload was never kept.
type Image struct {
	ID     int64  `json:"-"`
	UserID int64  `json:"-"`
	Title  string `json:"title"`

	StorageKey   uuid.UUID `json:"-"`
	OriginalKey  *string   `json:"-"`
	ThumbnailKey string    `json:"-"`
	FullKey      string    `json:"-"`

	OriginalMimeType  string `json:"mime_type"`
	OriginalSizeBytes int64  `json:"size_bytes"`
	PlaceholderHash   string `json:"placeholder"`
	Width             int    `json:"width"`
	Height            int    `json:"height"`

	IsDeleted bool `json:"-"`

	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt *time.Time `json:"updated_at,omitempty"`
}

// ImageInfo is what a probe of the raw upload reveals.
type ImageInfo struct {
	Width    int
	Height   int
	MIMEType string
}

// ProcessedImage is the full derivative set of one upload, produced before
// anything is persisted.
type ProcessedImage struct {
	PlaceholderHash string

	Thumbnail []byte
	Full      []byte

	Original          []byte
	OriginalMimeType  string
	OriginalSizeBytes int64

	Width  int
	Height int
}
