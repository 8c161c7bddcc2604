package serverutils

import (
	"errors"

	"author-be/internal/pkg/apperror"
	"author-be/internal/pkg/logger"

	"github.com/gofiber/fiber/v2"
)

var statusByKind = map[apperror.Kind]int{
	apperror.KindNotFound:            fiber.StatusNotFound,
	apperror.KindForbidden:           fiber.StatusForbidden,
	apperror.KindBadRequest:          fiber.StatusBadRequest,
	apperror.KindValidation:          fiber.StatusUnprocessableEntity,
	apperror.KindReferenceResolution: fiber.StatusUnprocessableEntity,
}

// ErrorHandlerMiddleware renders errors returned by later handlers.
// Application errors keep their code; anything unknown becomes a 500.
func ErrorHandlerMiddleware(log logger.ILogger) fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		err := ctx.Next()
		if err == nil {
			return nil
		}

		var appErr *apperror.AppError
		if errors.As(err, &appErr) {
			status, ok := statusByKind[appErr.Kind]
			if !ok {
				status = fiber.StatusInternalServerError
			}
			return ctx.Status(status).JSON(ErrorResponse(appErr.Message, appErr.Code, appErr.Details))
		}

		var fiberErr *fiber.Error
		if errors.As(err, &fiberErr) {
			return ctx.Status(fiberErr.Code).JSON(ErrorResponse(fiberErr.Message, "", nil))
		}

		if log != nil {
			log.Error("HTTP", "Unhandled error", map[string]interface{}{
				"method": ctx.Method(),
				"path":   ctx.Path(),
				"error":  err.Error(),
			})
		}
		return ctx.Status(fiber.StatusInternalServerError).JSON(ErrorResponse("Internal server error", "INTERNAL_ERROR", nil))
	}
}
