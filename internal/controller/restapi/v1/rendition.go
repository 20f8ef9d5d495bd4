package v1

import (
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"net/http"
	"strings"

	"github.com/andreyxaxa/PixelVault/internal/entity"
	"github.com/andreyxaxa/PixelVault/internal/infrastructure/mediatype"
	"github.com/gofiber/fiber/v2"
)

const (
	_publicCacheControl  = "public, max-age=86400"
	_privateCacheControl = "private, max-age=3600"
	_filenamePrefix      = "pixelvault-"
)

// @Summary 	Get a rendition
// @Description thumbnail and file are public; original and download need a session.
// @Description download renders an exact preset size (16x9, 9x16, 1x1, 4x3) as png (default) or jpeg.
// @Tags 		renditions
// @Produce 	image/webp,image/png,image/jpeg,image/gif
// @Param 		id     path  string true  "Image ID"
// @Param 		preset path  string false "Download preset"
// @Param 		format query string false "Download format" Enums(png, jpeg)
// @Success 	200 {file} 	 binary
// @Success 	304 "Not modified"
// @Failure 	400 {object} response.Error "invalid_identifier, unknown_preset, unsupported_format"
// @Failure 	401 {object} response.Error "unauthorized"
// @Failure 	404 {object} response.Error "not_found, data_unavailable"
// @Failure 	500 {object} response.Error "internal_error"
// @Router 		/images/{id}/thumbnail [get]
// @Router 		/images/{id}/file [get]
// @Router 		/images/{id}/original [get]
// @Router 		/images/{id}/download/{preset} [get]
func (r *V1) serveRendition(kind entity.RenditionKind) fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		req := entity.RenditionRequest{
			Ref:  ctx.Params("id"),
			Kind: kind,
		}

		if kind == entity.RenditionDownload {
			req.Preset = ctx.Params("preset")
			req.Format = parseFormat(ctx.Query("format"))
		}

		// looked up after the identifier resolves; public kinds never use it
		if kind.Protected() {
			req.SessionToken = ctx.Cookies(r.cookieName)
		}

		rend, err := r.rend.Get(ctx.UserContext(), req)
		if err != nil {
			return r.fail(ctx, err, "serveRendition")
		}

		etag := etagOf(rend.Data)

		ctx.Set(fiber.HeaderETag, etag)
		ctx.Set(fiber.HeaderCacheControl, cacheControl(kind))

		if etagMatches(ctx.Get(fiber.HeaderIfNoneMatch), etag) {
			ctx.Status(http.StatusNotModified)
			return nil
		}

		ctx.Set(fiber.HeaderContentDisposition, fmt.Sprintf(`attachment; filename="%s"`, filename(rend)))
		ctx.Set(fiber.HeaderContentType, rend.MIMEType)

		return ctx.Status(http.StatusOK).Send(rend.Data)
	}
}

func parseFormat(s string) entity.Format {
	switch strings.ToLower(s) {
	case "", "png":
		return entity.FormatPNG
	case "jpg", "jpeg":
		return entity.FormatJPEG
	default:
		return entity.Format(strings.ToLower(s))
	}
}

func cacheControl(kind entity.RenditionKind) string {
	if kind.Protected() {
		return _privateCacheControl
	}

	return _publicCacheControl
}

func etagOf(data []byte) string {
	sum := md5.Sum(data)
	return `"` + hex.EncodeToString(sum[:]) + `"`
}

// etagMatches applies If-None-Match weak comparison.
func etagMatches(header, etag string) bool {
	if header == "" {
		return false
	}

	for _, candidate := range strings.Split(header, ",") {
		candidate = strings.TrimSpace(candidate)
		if candidate == "*" {
			return true
		}
		if strings.TrimPrefix(candidate, "W/") == etag {
			return true
		}
	}

	return false
}

// filename is pixelvault-<id>[-<suffix>].<ext>; the full-size file has no suffix.
func filename(rend *entity.Rendition) string {
	var suffix string

	switch rend.Kind {
	case entity.RenditionThumbnail:
		suffix = "-thumbnail"
	case entity.RenditionOriginal:
		suffix = "-original"
	case entity.RenditionDownload:
		suffix = "-" + rend.Preset
	}

	return _filenamePrefix + rend.PublicID + suffix + mediatype.Extension(rend.MIMEType)
}
