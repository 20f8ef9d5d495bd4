package infrastructure

import (
	"context"
	"image"

	"github.com/andreyxaxa/PixelVault/internal/entity"
)

type (
	EventsSender interface {
		SendEvents(ctx context.Context, events []*entity.OutboxEvent) error
		Close() error
	}

	// ImageCodec is the narrow surface the derivative generator needs from an
	// imaging library.
	ImageCodec interface {
		Decode(data []byte) (image.Image, error)
		Probe(data []byte) (entity.ImageInfo, error)
		ResizeCoverFit(img image.Image, width, height int) image.Image
		ResizeContain(img image.Image, maxDim int) image.Image
		Encode(img image.Image, format entity.Format, quality int) ([]byte, error)
		BlurHash(img image.Image, xComponents, yComponents int) (string, error)
	}
)
