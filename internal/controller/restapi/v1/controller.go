package v1

import (
	"github.com/andreyxaxa/PixelVault/internal/usecase"
	"github.com/andreyxaxa/PixelVault/pkg/logger"
	"github.com/gofiber/fiber/v2"
)

type V1 struct {
	img  usecase.ImageUseCase
	rend usecase.RenditionUseCase
	auth usecase.AuthUseCase

	cookieName    string
	maxUploadSize int64

	logger logger.Interface
}

// currentUserID returns 0 for anonymous requests.
func (r *V1) currentUserID(ctx *fiber.Ctx) (int64, error) {
	return r.auth.CurrentUserID(ctx.UserContext(), ctx.Cookies(r.cookieName))
}
