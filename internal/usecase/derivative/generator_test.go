package derivative_test

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"testing"

	"github.com/andreyxaxa/PixelVault/internal/entity"
	"github.com/andreyxaxa/PixelVault/internal/infrastructure/mediatype"
	"github.com/andreyxaxa/PixelVault/internal/infrastructure/processor"
	"github.com/andreyxaxa/PixelVault/internal/usecase/derivative"
	"github.com/andreyxaxa/PixelVault/pkg/types/errs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	xwebp "golang.org/x/image/webp"
)

func pngOf(t *testing.T, w, h int) []byte {
	t.Helper()

	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.NRGBA{R: uint8(x), G: uint8(y), B: uint8(x ^ y), A: 255})
		}
	}

	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))

	return buf.Bytes()
}

func webpSize(t *testing.T, data []byte) image.Point {
	t.Helper()

	cfg, err := xwebp.DecodeConfig(bytes.NewReader(data))
	require.NoError(t, err)

	return image.Pt(cfg.Width, cfg.Height)
}

func pngSize(t *testing.T, data []byte) image.Point {
	t.Helper()

	cfg, err := png.DecodeConfig(bytes.NewReader(data))
	require.NoError(t, err)

	return image.Pt(cfg.Width, cfg.Height)
}

func TestThumbnailIsAlwaysSquare(t *testing.T) {
	g := derivative.New(processor.New())

	for _, size := range [][2]int{{1, 1}, {600, 100}, {90, 400}, {150, 150}} {
		out, err := g.ToWebP(pngOf(t, size[0], size[1]), derivative.ModeThumbnail)
		require.NoError(t, err)
		assert.Equal(t, image.Pt(150, 150), webpSize(t, out), "source %v", size)
	}
}

func TestThumbnailSizeIsConfigurable(t *testing.T) {
	g := derivative.New(processor.New(), derivative.ThumbnailSize(64))

	out, err := g.ToWebP(pngOf(t, 300, 200), derivative.ModeThumbnail)
	require.NoError(t, err)
	assert.Equal(t, image.Pt(64, 64), webpSize(t, out))
}

func TestFullNeverUpscales(t *testing.T) {
	g := derivative.New(processor.New(), derivative.FullMaxDim(200))

	out, err := g.ToWebP(pngOf(t, 120, 80), derivative.ModeFull)
	require.NoError(t, err)
	assert.Equal(t, image.Pt(120, 80), webpSize(t, out))
}

func TestFullDownscalesToBound(t *testing.T) {
	g := derivative.New(processor.New(), derivative.FullMaxDim(200))

	out, err := g.ToWebP(pngOf(t, 600, 300), derivative.ModeFull)
	require.NoError(t, err)

	got := webpSize(t, out)
	assert.Equal(t, 200, got.X)
	assert.InDelta(t, 100, got.Y, 1)
}

func TestFullUnboundedKeepsDimensions(t *testing.T) {
	g := derivative.New(processor.New())

	out, err := g.ToWebP(pngOf(t, 640, 90), derivative.ModeFull)
	require.NoError(t, err)
	assert.Equal(t, image.Pt(640, 90), webpSize(t, out))
}

func TestPlaceholderForAnyShape(t *testing.T) {
	g := derivative.New(processor.New())

	for _, size := range [][2]int{{1, 1}, {1, 500}, {500, 1}, {1200, 900}} {
		hash, err := g.Placeholder(pngOf(t, size[0], size[1]))
		require.NoError(t, err, "source %v", size)
		assert.NotEmpty(t, hash)
	}
}

func TestResizeLosslessUpscalesToExactTarget(t *testing.T) {
	g := derivative.New(processor.New())

	out, err := g.ResizeLossless(pngOf(t, 100, 50), 1920, 1080, entity.FormatPNG)
	require.NoError(t, err)
	assert.Equal(t, image.Pt(1920, 1080), pngSize(t, out))

	out, err = g.ResizeLossless(pngOf(t, 400, 400), 108, 192, entity.FormatJPEG)
	require.NoError(t, err)
	assert.Equal(t, "image/jpeg", mediatype.Detect(out, "").Type)
}

func TestResizeLosslessRejectsBadTargets(t *testing.T) {
	g := derivative.New(processor.New())

	_, err := g.ResizeLossless(pngOf(t, 10, 10), 0, 10, entity.FormatPNG)
	assert.ErrorIs(t, err, errs.ErrEncode)

	_, err = g.ResizeLossless(pngOf(t, 10, 10), 10, 10, entity.FormatWebP)
	assert.ErrorIs(t, err, errs.ErrEncode)
}

func TestIngest(t *testing.T) {
	g := derivative.New(processor.New())
	src := pngOf(t, 320, 200)

	p, err := g.Ingest(context.Background(), src)
	require.NoError(t, err)

	assert.Equal(t, src, p.Original)
	assert.Equal(t, "image/png", p.OriginalMimeType)
	assert.Equal(t, int64(len(src)), p.OriginalSizeBytes)
	assert.Equal(t, 320, p.Width)
	assert.Equal(t, 200, p.Height)
	assert.NotEmpty(t, p.PlaceholderHash)
	assert.Equal(t, image.Pt(150, 150), webpSize(t, p.Thumbnail))
	assert.Equal(t, image.Pt(320, 200), webpSize(t, p.Full))
}

func TestIngestRejectsGarbage(t *testing.T) {
	g := derivative.New(processor.New())

	p, err := g.Ingest(context.Background(), []byte("GIF89a but not really"))
	assert.Nil(t, p)
	assert.ErrorIs(t, err, errs.ErrDecode)
}

// failingCodec breaks exactly one derivative step.
type failingCodec struct {
	*processor.ImageProcessor
	failQuality int
}

func (c failingCodec) Encode(img image.Image, format entity.Format, quality int) ([]byte, error) {
	if quality == c.failQuality {
		return nil, errors.Join(errs.ErrEncode, errors.New("corrupted buffer"))
	}

	return c.ImageProcessor.Encode(img, format, quality)
}

func TestIngestFailsWhenAnyDerivativeFails(t *testing.T) {
	for _, q := range []int{85, 92} {
		g := derivative.New(failingCodec{ImageProcessor: processor.New(), failQuality: q})

		p, err := g.Ingest(context.Background(), pngOf(t, 50, 50))
		assert.Nil(t, p)
		assert.ErrorIs(t, err, errs.ErrEncode)
	}
}
