// Package mediatype names image formats from their bytes and maps MIME types
// to file extensions. It carries no cgo dependency.
package mediatype

import (
	"strings"

	"github.com/gabriel-vasile/mimetype"
)

// Default is reported when neither content sniffing nor the decoder
// can name the format.
const Default = "image/jpeg"

type Source int

const (
	SourceContent Source = iota
	SourceDecoder
	SourceDefault
)

func (s Source) String() string {
	switch s {
	case SourceContent:
		return "content"
	case SourceDecoder:
		return "decoder"
	default:
		return "default"
	}
}

type Detection struct {
	Type   string
	Source Source
}

var decoderFormats = map[string]string{
	"jpeg": "image/jpeg",
	"png":  "image/png",
	"gif":  "image/gif",
	"webp": "image/webp",
	"bmp":  "image/bmp",
	"tiff": "image/tiff",
}

// Detect names the format of data from its bytes. decoderFormat is the
// name image.DecodeConfig reported, or "" when unknown.
func Detect(data []byte, decoderFormat string) Detection {
	if m := mimetype.Detect(data); strings.HasPrefix(m.String(), "image/") {
		return Detection{Type: baseType(m.String()), Source: SourceContent}
	}

	if t, ok := decoderFormats[decoderFormat]; ok {
		return Detection{Type: t, Source: SourceDecoder}
	}

	return Detection{Type: Default, Source: SourceDefault}
}

// Extension returns the dotted file extension for a MIME type, ".bin" when
// none is known.
func Extension(mimeType string) string {
	if m := mimetype.Lookup(baseType(mimeType)); m != nil && m.Extension() != "" {
		return m.Extension()
	}

	return ".bin"
}

func baseType(t string) string {
	if i := strings.IndexByte(t, ';'); i >= 0 {
		t = t[:i]
	}

	return strings.TrimSpace(t)
}
