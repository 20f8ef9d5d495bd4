package entity

import "fmt"

type RenditionKind string

const (
	RenditionThumbnail RenditionKind = "thumbnail"
	RenditionFull      RenditionKind = "file"
	RenditionOriginal  RenditionKind = "original"
	RenditionDownload  RenditionKind = "download"
)

// Protected reports whether serving the kind needs an authenticated session.
func (k RenditionKind) Protected() bool {
	return k == RenditionOriginal || k == RenditionDownload
}

type Format string

const (
	FormatWebP Format = "webp"
	FormatPNG  Format = "png"
	FormatJPEG Format = "jpeg"
)

func (f Format) MIMEType() string {
	switch f {
	case FormatWebP:
		return "image/webp"
	case FormatPNG:
		return "image/png"
	default:
		return "image/jpeg"
	}
}

// Preset is a named fixed-dimension download target.
type Preset struct {
	Name   string
	Width  int
	Height int
}

func (p Preset) String() string {
	return fmt.Sprintf("%s (%dx%d)", p.Name, p.Width, p.Height)
}

var presets = map[string]Preset{
	"16x9": {Name: "16x9", Width: 1920, Height: 1080},
	"9x16": {Name: "9x16", Width: 1080, Height: 1920},
	"1x1":  {Name: "1x1", Width: 1080, Height: 1080},
	"4x3":  {Name: "4x3", Width: 1600, Height: 1200},
}

func LookupPreset(name string) (Preset, bool) {
	p, ok := presets[name]
	return p, ok
}

// RenditionRequest names the rendition a caller wants. Preset and Format are
// only read for RenditionDownload. UserID is 0 for anonymous callers.
type RenditionRequest struct {
	Ref    string
	Kind   RenditionKind
	Preset string
	Format Format
	// UserID is an already authenticated caller, 0 for none. SessionToken is
	// looked up only when UserID is 0 and the kind is protected.
	UserID       int64
	SessionToken string
}

// Rendition is a fully materialized response body.
type Rendition struct {
	ImageID  int64
	PublicID string
	Kind     RenditionKind
	Preset   string
	MIMEType string
	Data     []byte
}
