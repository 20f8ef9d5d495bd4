package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gofiber/fiber/v2"
)

// ErrorHandler renders errors that escaped the handlers (unknown routes,
// oversized bodies, recovered panics) in the same JSON shape as handler errors.
func ErrorHandler(ctx *fiber.Ctx, err error) error {
	code := http.StatusInternalServerError
	token := "internal_error"

	var fe *fiber.Error
	if errors.As(err, &fe) {
		code = fe.Code
		switch code {
		case http.StatusNotFound:
			token = "not_found"
		case http.StatusRequestEntityTooLarge:
			token = "file_too_large"
		default:
			if code < http.StatusInternalServerError {
				token = strings.ReplaceAll(strings.ToLower(http.StatusText(code)), " ", "_")
			}
		}
	}

	return ctx.Status(code).JSON(fiber.Map{"error": token})
}
