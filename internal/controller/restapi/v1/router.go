package v1

import (
	"github.com/andreyxaxa/PixelVault/internal/entity"
	"github.com/andreyxaxa/PixelVault/internal/usecase"
	"github.com/andreyxaxa/PixelVault/pkg/logger"
	"github.com/gofiber/fiber/v2"
)

type Options struct {
	CookieName    string
	MaxUploadSize int64
}

func NewImageRoutes(
	apiV1Group fiber.Router,
	img usecase.ImageUseCase,
	rend usecase.RenditionUseCase,
	auth usecase.AuthUseCase,
	opts Options,
	l logger.Interface,
) {
	r := &V1{
		img:           img,
		rend:          rend,
		auth:          auth,
		cookieName:    opts.CookieName,
		maxUploadSize: opts.MaxUploadSize,
		logger:        l,
	}

	imagesGroup := apiV1Group.Group("/images")
	{
		// Catalogue
		imagesGroup.Post("/", r.uploadImage)
		imagesGroup.Get("/", r.listImages)
		imagesGroup.Get("/:id", r.getImage)
		imagesGroup.Delete("/:id", r.deleteImage)
		imagesGroup.Post("/:id/regenerate", r.regenerateImage)

		// Renditions
		imagesGroup.Get("/:id/thumbnail", r.serveRendition(entity.RenditionThumbnail))
		imagesGroup.Get("/:id/file", r.serveRendition(entity.RenditionFull))
		imagesGroup.Get("/:id/original", r.serveRendition(entity.RenditionOriginal))
		imagesGroup.Get("/:id/download/:preset", r.serveRendition(entity.RenditionDownload))
	}
}
