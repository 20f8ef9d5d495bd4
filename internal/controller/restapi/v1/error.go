package v1

import (
	"errors"
	"net/http"

	"github.com/andreyxaxa/PixelVault/internal/controller/restapi/v1/response"
	"github.com/andreyxaxa/PixelVault/pkg/types/errs"
	"github.com/gofiber/fiber/v2"
)

const (
	tokenInvalidIdentifier = "invalid_identifier"
	tokenUnauthorized      = "unauthorized"
	tokenForbidden         = "forbidden"
	tokenNotFound          = "not_found"
	tokenDataUnavailable   = "data_unavailable"
	tokenUnknownPreset     = "unknown_preset"
	tokenUnsupportedFormat = "unsupported_format"
	tokenUndecodableImage  = "undecodable_image"
	tokenFileRequired      = "file_required"
	tokenEmptyFile         = "empty_file"
	tokenFileTooLarge      = "file_too_large"
	tokenInvalidTitle      = "invalid_title"
	tokenInvalidLimit      = "invalid_limit"
	tokenInternal          = "internal_error"
)

var errorTable = []struct {
	err   error
	code  int
	token string
}{
	{errs.ErrInvalidIdentifier, http.StatusBadRequest, tokenInvalidIdentifier},
	{errs.ErrUnauthorized, http.StatusUnauthorized, tokenUnauthorized},
	{errs.ErrForbidden, http.StatusForbidden, tokenForbidden},
	{errs.ErrRecordNotFound, http.StatusNotFound, tokenNotFound},
	{errs.ErrDataUnavailable, http.StatusNotFound, tokenDataUnavailable},
	{errs.ErrUnknownPreset, http.StatusBadRequest, tokenUnknownPreset},
	{errs.ErrUnsupportedFormat, http.StatusBadRequest, tokenUnsupportedFormat},
}

func errorResponse(ctx *fiber.Ctx, code int, token string) error {
	return ctx.Status(code).JSON(response.Error{Error: token})
}

// fail maps a use-case error to its response. Unmapped errors are logged
// and answered with internal_error.
func (r *V1) fail(ctx *fiber.Ctx, err error, op string) error {
	for _, e := range errorTable {
		if errors.Is(err, e.err) {
			return errorResponse(ctx, e.code, e.token)
		}
	}

	r.logger.Error(err, "restapi - v1 - "+op)

	return errorResponse(ctx, http.StatusInternalServerError, tokenInternal)
}
