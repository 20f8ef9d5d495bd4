package processor

import (
	"bytes"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"testing"

	"github.com/andreyxaxa/PixelVault/internal/entity"
	"github.com/andreyxaxa/PixelVault/internal/infrastructure/mediatype"
	"github.com/andreyxaxa/PixelVault/pkg/types/errs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	xwebp "golang.org/x/image/webp"
)

func gradient(w, h int) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.NRGBA{R: uint8(x * 255 / w), G: uint8(y * 255 / h), B: 128, A: 255})
		}
	}

	return img
}

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()

	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, gradient(w, h)))

	return buf.Bytes()
}

func jpegBytes(t *testing.T, w, h int) []byte {
	t.Helper()

	var buf bytes.Buffer
	require.NoError(t, jpeg.Encode(&buf, gradient(w, h), &jpeg.Options{Quality: 90}))

	return buf.Bytes()
}

func TestProbe(t *testing.T) {
	p := New()

	info, err := p.Probe(pngBytes(t, 40, 30))
	require.NoError(t, err)
	assert.Equal(t, entity.ImageInfo{Width: 40, Height: 30, MIMEType: "image/png"}, info)

	info, err = p.Probe(jpegBytes(t, 8, 16))
	require.NoError(t, err)
	assert.Equal(t, entity.ImageInfo{Width: 8, Height: 16, MIMEType: "image/jpeg"}, info)
}

func TestProbeRejectsNonImages(t *testing.T) {
	_, err := New().Probe([]byte("definitely not an image"))
	assert.ErrorIs(t, err, errs.ErrDecode)
}

func TestDecodeRejectsNonImages(t *testing.T) {
	_, err := New().Decode([]byte{0x00, 0x01, 0x02})
	assert.ErrorIs(t, err, errs.ErrDecode)
}

func TestResizeCoverFit(t *testing.T) {
	p := New()

	for _, size := range [][2]int{{300, 100}, {100, 300}, {20, 20}} {
		out := p.ResizeCoverFit(gradient(size[0], size[1]), 150, 150)
		assert.Equal(t, image.Pt(150, 150), out.Bounds().Size(), "source %v", size)
	}
}

func TestResizeContain(t *testing.T) {
	p := New()

	small := gradient(100, 50)
	assert.Equal(t, image.Pt(100, 50), p.ResizeContain(small, 200).Bounds().Size())
	assert.Equal(t, image.Pt(100, 50), p.ResizeContain(small, 0).Bounds().Size())

	wide := gradient(400, 200)
	assert.Equal(t, image.Pt(200, 100), p.ResizeContain(wide, 200).Bounds().Size())
}

func TestEncodeWebP(t *testing.T) {
	p := New()

	data, err := p.Encode(gradient(64, 32), entity.FormatWebP, 85)
	require.NoError(t, err)

	cfg, err := xwebp.DecodeConfig(bytes.NewReader(data))
	require.NoError(t, err)
	assert.Equal(t, 64, cfg.Width)
	assert.Equal(t, 32, cfg.Height)
	assert.Equal(t, "image/webp", mediatype.Detect(data, "").Type)
}

func TestEncodeLossless(t *testing.T) {
	p := New()

	data, err := p.Encode(gradient(10, 10), entity.FormatPNG, 100)
	require.NoError(t, err)
	assert.Equal(t, "image/png", mediatype.Detect(data, "").Type)

	data, err = p.Encode(gradient(10, 10), entity.FormatJPEG, 100)
	require.NoError(t, err)
	assert.Equal(t, "image/jpeg", mediatype.Detect(data, "").Type)

	_, err = p.Encode(gradient(10, 10), entity.Format("avif"), 100)
	assert.ErrorIs(t, err, errs.ErrEncode)
}

func TestBlurHash(t *testing.T) {
	hash, err := New().BlurHash(gradient(32, 32), 4, 4)
	require.NoError(t, err)
	assert.NotEmpty(t, hash)

	_, err = New().BlurHash(gradient(32, 32), 0, 4)
	assert.ErrorIs(t, err, errs.ErrEncode)
}
