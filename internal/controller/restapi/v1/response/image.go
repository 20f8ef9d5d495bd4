package response

import (
	"time"

	"github.com/andreyxaxa/PixelVault/internal/entity"
)

type Image struct {
	ID          string     `json:"id" example:"jR3kq9"`
	Title       string     `json:"title" example:"sunset"`
	MimeType    string     `json:"mime_type" example:"image/png"`
	SizeBytes   int64      `json:"size_bytes" example:"48213"`
	Width       int        `json:"width" example:"1920"`
	Height      int        `json:"height" example:"1080"`
	Placeholder string     `json:"placeholder" example:"LEHV6nWB2yk8pyo0adR*.7kCMdnj"`
	Thumbnail   string     `json:"thumbnail_url" example:"/v1/images/jR3kq9/thumbnail"`
	File        string     `json:"file_url" example:"/v1/images/jR3kq9/file"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   *time.Time `json:"updated_at,omitempty"`
}

func NewImage(publicID string, img *entity.Image) Image {
	return Image{
		ID:          publicID,
		Title:       img.Title,
		MimeType:    img.OriginalMimeType,
		SizeBytes:   img.OriginalSizeBytes,
		Width:       img.Width,
		Height:      img.Height,
		Placeholder: img.PlaceholderHash,
		Thumbnail:   "/v1/images/" + publicID + "/thumbnail",
		File:        "/v1/images/" + publicID + "/file",
		CreatedAt:   img.CreatedAt,
		UpdatedAt:   img.UpdatedAt,
	}
}

type ImageList struct {
	Images []Image `json:"images"`
	// Next is the cursor for the following page; empty on the last page.
	Next string `json:"next,omitempty" example:"Xo9Lw2"`
}
