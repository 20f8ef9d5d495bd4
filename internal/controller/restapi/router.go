package restapi

import (
	"github.com/andreyxaxa/PixelVault/config"
	"github.com/andreyxaxa/PixelVault/internal/controller/restapi/middleware"
	v1 "github.com/andreyxaxa/PixelVault/internal/controller/restapi/v1"
	"github.com/andreyxaxa/PixelVault/internal/usecase"
	"github.com/andreyxaxa/PixelVault/pkg/logger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/swagger"

	_ "github.com/andreyxaxa/PixelVault/docs" // Swagger docs.
)

// NewRouter -.
// Swagger spec:
// @title       PixelVault API
// @description Image gallery: upload, browse and serve image renditions
// @version     1.0.0
// @host        localhost:8080
// @BasePath    /v1
func NewRouter(
	app *fiber.App,
	cfg *config.Config,
	img usecase.ImageUseCase,
	rend usecase.RenditionUseCase,
	auth usecase.AuthUseCase,
	l logger.Interface,
) {
	// Options
	app.Use(middleware.Logger(l))
	app.Use(middleware.Recovery(l))

	// Swagger
	if cfg.Swagger.Enabled {
		app.Get("/swagger/*", swagger.HandlerDefault)
	}

	// K8s probe
	app.Get("/healthz", func(ctx *fiber.Ctx) error { return ctx.SendStatus(fiber.StatusOK) })

	// Routers
	apiV1Group := app.Group("/v1")
	{
		v1.NewImageRoutes(apiV1Group, img, rend, auth, v1.Options{
			CookieName:    cfg.Session.CookieName,
			MaxUploadSize: cfg.Image.MaxUploadSize,
		}, l)
	}
}
