package processor

import (
	"bytes"
	"fmt"
	"image"

	"github.com/andreyxaxa/PixelVault/internal/entity"
	"github.com/andreyxaxa/PixelVault/internal/infrastructure/mediatype"
	"github.com/andreyxaxa/PixelVault/pkg/types/errs"
	"github.com/bbrks/go-blurhash"
	"github.com/disintegration/imaging"
	"github.com/kolesa-team/go-webp/encoder"
	"github.com/kolesa-team/go-webp/webp"

	// webp uploads are decodable through image.Decode
	_ "golang.org/x/image/webp"
)

type ImageProcessor struct{}

func New() *ImageProcessor {
	return &ImageProcessor{}
}

func (p *ImageProcessor) Decode(data []byte) (image.Image, error) {
	img, err := imaging.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("ImageProcessor - Decode - imaging.Decode: %w: %w", errs.ErrDecode, err)
	}

	return img, nil
}

func (p *ImageProcessor) Probe(data []byte) (entity.ImageInfo, error) {
	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return entity.ImageInfo{}, fmt.Errorf("ImageProcessor - Probe - image.DecodeConfig: %w: %w", errs.ErrDecode, err)
	}

	if cfg.Width <= 0 || cfg.Height <= 0 {
		return entity.ImageInfo{}, fmt.Errorf("ImageProcessor - Probe - %dx%d: %w", cfg.Width, cfg.Height, errs.ErrDecode)
	}

	return entity.ImageInfo{
		Width:    cfg.Width,
		Height:   cfg.Height,
		MIMEType: mediatype.Detect(data, format).Type,
	}, nil
}

// ResizeCoverFit scales img to cover width x height and crops the overflow
// around the center. Small sources are upscaled.
func (p *ImageProcessor) ResizeCoverFit(img image.Image, width, height int) image.Image {
	return imaging.Fill(img, width, height, imaging.Center, imaging.Lanczos)
}

// ResizeContain shrinks img to fit inside a maxDim square keeping its aspect
// ratio. It never upscales; maxDim <= 0 means unbounded.
func (p *ImageProcessor) ResizeContain(img image.Image, maxDim int) image.Image {
	b := img.Bounds()
	if maxDim <= 0 || (b.Dx() <= maxDim && b.Dy() <= maxDim) {
		return img
	}

	return imaging.Fit(img, maxDim, maxDim, imaging.Lanczos)
}

func (p *ImageProcessor) Encode(img image.Image, format entity.Format, quality int) ([]byte, error) {
	var buf bytes.Buffer

	switch format {
	case entity.FormatWebP:
		opts, err := encoder.NewLossyEncoderOptions(encoder.PresetDefault, float32(quality))
		if err != nil {
			return nil, fmt.Errorf("ImageProcessor - Encode - encoder.NewLossyEncoderOptions: %w: %w", errs.ErrEncode, err)
		}
		if err = webp.Encode(&buf, img, opts); err != nil {
			return nil, fmt.Errorf("ImageProcessor - Encode - webp.Encode: %w: %w", errs.ErrEncode, err)
		}
	case entity.FormatPNG:
		err := imaging.Encode(&buf, img, imaging.PNG)
		if err != nil {
			return nil, fmt.Errorf("ImageProcessor - Encode - imaging.Encode(png): %w: %w", errs.ErrEncode, err)
		}
	case entity.FormatJPEG:
		err := imaging.Encode(&buf, img, imaging.JPEG, imaging.JPEGQuality(quality))
		if err != nil {
			return nil, fmt.Errorf("ImageProcessor - Encode - imaging.Encode(jpeg): %w: %w", errs.ErrEncode, err)
		}
	default:
		return nil, fmt.Errorf("ImageProcessor - Encode - format %q: %w", format, errs.ErrEncode)
	}

	return buf.Bytes(), nil
}

func (p *ImageProcessor) BlurHash(img image.Image, xComponents, yComponents int) (string, error) {
	hash, err := blurhash.Encode(xComponents, yComponents, img)
	if err != nil {
		return "", fmt.Errorf("ImageProcessor - BlurHash - blurhash.Encode: %w: %w", errs.ErrEncode, err)
	}

	return hash, nil
}
