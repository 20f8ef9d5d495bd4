// Package derivative turns one raw upload into its rendition set: a BlurHash
// placeholder, a square WebP thumbnail, a full-size WebP and, on demand,
// exact-dimension lossless download renditions.
package derivative

import (
	"bytes"
	"context"
	"fmt"
	"image"

	"github.com/andreyxaxa/PixelVault/internal/entity"
	"github.com/andreyxaxa/PixelVault/internal/infrastructure"
	"github.com/andreyxaxa/PixelVault/pkg/types/errs"
	"golang.org/x/sync/errgroup"
)

const (
	_defaultThumbnailSize       = 150
	_defaultThumbnailQuality    = 85
	_defaultFullQuality         = 92
	_defaultFullMaxDim          = 0
	_defaultPlaceholderGrid     = 32
	_defaultPlaceholderX        = 4
	_defaultPlaceholderY        = 4
	_defaultDownloadJPEGQuality = 100
)

type Mode int

const (
	ModeThumbnail Mode = iota
	ModeFull
)

func (m Mode) String() string {
	if m == ModeThumbnail {
		return "thumbnail"
	}

	return "full"
}

type Generator struct {
	codec infrastructure.ImageCodec

	thumbnailSize       int
	thumbnailQuality    int
	fullQuality         int
	fullMaxDim          int
	placeholderGrid     int
	placeholderX        int
	placeholderY        int
	downloadJPEGQuality int
}

func New(codec infrastructure.ImageCodec, opts ...Option) *Generator {
	g := &Generator{
		codec:               codec,
		thumbnailSize:       _defaultThumbnailSize,
		thumbnailQuality:    _defaultThumbnailQuality,
		fullQuality:         _defaultFullQuality,
		fullMaxDim:          _defaultFullMaxDim,
		placeholderGrid:     _defaultPlaceholderGrid,
		placeholderX:        _defaultPlaceholderX,
		placeholderY:        _defaultPlaceholderY,
		downloadJPEGQuality: _defaultDownloadJPEGQuality,
	}

	for _, opt := range opts {
		opt(g)
	}

	return g
}

func (g *Generator) ThumbnailSize() int {
	return g.thumbnailSize
}

func (g *Generator) Inspect(data []byte) (entity.ImageInfo, error) {
	info, err := g.codec.Probe(data)
	if err != nil {
		return entity.ImageInfo{}, fmt.Errorf("Generator - Inspect - g.codec.Probe: %w", err)
	}

	return info, nil
}

func (g *Generator) Placeholder(data []byte) (string, error) {
	img, err := g.codec.Decode(data)
	if err != nil {
		return "", fmt.Errorf("Generator - Placeholder - g.codec.Decode: %w", err)
	}

	return g.placeholder(img)
}

func (g *Generator) ToWebP(data []byte, mode Mode) ([]byte, error) {
	img, err := g.codec.Decode(data)
	if err != nil {
		return nil, fmt.Errorf("Generator - ToWebP - g.codec.Decode: %w", err)
	}

	return g.webp(img, mode)
}

// ResizeLossless renders an exact width x height crop-to-fill of data as PNG
// or maximum-quality JPEG. Sources smaller than the target are upscaled.
func (g *Generator) ResizeLossless(data []byte, width, height int, format entity.Format) ([]byte, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("Generator - ResizeLossless - target %dx%d: %w", width, height, errs.ErrEncode)
	}
	if format != entity.FormatPNG && format != entity.FormatJPEG {
		return nil, fmt.Errorf("Generator - ResizeLossless - format %q: %w", format, errs.ErrEncode)
	}

	img, err := g.codec.Decode(data)
	if err != nil {
		return nil, fmt.Errorf("Generator - ResizeLossless - g.codec.Decode: %w", err)
	}

	out, err := g.codec.Encode(g.codec.ResizeCoverFit(img, width, height), format, g.downloadJPEGQuality)
	if err != nil {
		return nil, fmt.Errorf("Generator - ResizeLossless - g.codec.Encode: %w", err)
	}

	return out, nil
}

// Ingest computes the whole derivative set for one upload. The placeholder
// and both WebP renditions are derived concurrently from a single decode;
// the first failure fails the ingestion and no partial set is returned.
func (g *Generator) Ingest(ctx context.Context, data []byte) (*entity.ProcessedImage, error) {
	info, err := g.codec.Probe(data)
	if err != nil {
		return nil, fmt.Errorf("Generator - Ingest - g.codec.Probe: %w", err)
	}

	img, err := g.codec.Decode(data)
	if err != nil {
		return nil, fmt.Errorf("Generator - Ingest - g.codec.Decode: %w", err)
	}

	var (
		placeholder string
		thumbnail   []byte
		full        []byte
	)

	eg, egCtx := errgroup.WithContext(ctx)

	eg.Go(func() error {
		if err := egCtx.Err(); err != nil {
			return err
		}
		h, err := g.placeholder(img)
		if err != nil {
			return err
		}
		placeholder = h
		return nil
	})

	eg.Go(func() error {
		if err := egCtx.Err(); err != nil {
			return err
		}
		b, err := g.webp(img, ModeThumbnail)
		if err != nil {
			return err
		}
		thumbnail = b
		return nil
	})

	eg.Go(func() error {
		if err := egCtx.Err(); err != nil {
			return err
		}
		b, err := g.webp(img, ModeFull)
		if err != nil {
			return err
		}
		full = b
		return nil
	})

	if err = eg.Wait(); err != nil {
		return nil, fmt.Errorf("Generator - Ingest - eg.Wait: %w", err)
	}

	return &entity.ProcessedImage{
		PlaceholderHash:   placeholder,
		Thumbnail:         thumbnail,
		Full:              full,
		Original:          bytes.Clone(data),
		OriginalMimeType:  info.MIMEType,
		OriginalSizeBytes: int64(len(data)),
		Width:             info.Width,
		Height:            info.Height,
	}, nil
}

func (g *Generator) placeholder(img image.Image) (string, error) {
	grid := g.codec.ResizeCoverFit(img, g.placeholderGrid, g.placeholderGrid)

	hash, err := g.codec.BlurHash(grid, g.placeholderX, g.placeholderY)
	if err != nil {
		return "", fmt.Errorf("Generator - placeholder - g.codec.BlurHash: %w", err)
	}

	return hash, nil
}

func (g *Generator) webp(img image.Image, mode Mode) ([]byte, error) {
	var (
		out     image.Image
		quality int
	)

	switch mode {
	case ModeThumbnail:
		out = g.codec.ResizeCoverFit(img, g.thumbnailSize, g.thumbnailSize)
		quality = g.thumbnailQuality
	case ModeFull:
		out = g.codec.ResizeContain(img, g.fullMaxDim)
		quality = g.fullQuality
	default:
		return nil, fmt.Errorf("Generator - webp - mode %d: %w", mode, errs.ErrUnknownOperation)
	}

	b, err := g.codec.Encode(out, entity.FormatWebP, quality)
	if err != nil {
		return nil, fmt.Errorf("Generator - webp - g.codec.Encode(%s): %w", mode, err)
	}

	return b, nil
}
