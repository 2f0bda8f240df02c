package serverutils

import (
	"errors"
	"net/http"

	"legal-aid-be/internal/pkg/logger"
	"legal-aid-be/internal/service"
	"legal-aid-be/pkg/llm"
	"legal-aid-be/pkg/notice"
	"legal-aid-be/pkg/storage"

	"github.com/gofiber/fiber/v2"
)

const retryMessage = "The assistant is temporarily unavailable, please try again"

type errorMapping struct {
	err     error
	status  int
	message string // empty means err.Error()
}

var errorMappings = []errorMapping{
	{llm.ErrUpstreamUnavailable, http.StatusBadGateway, retryMessage},
	{llm.ErrUpstreamRejected, http.StatusBadGateway, retryMessage},
	{llm.ErrUpstreamTimeout, http.StatusGatewayTimeout, retryMessage},
	{notice.ErrClassificationAmbiguous, http.StatusUnprocessableEntity, "Could not classify the notice, please try again"},
	{notice.ErrDerivationEmpty, http.StatusBadGateway, retryMessage},
	{notice.ErrStorageWriteFailed, http.StatusServiceUnavailable, "Could not store the document, please try again"},
	{notice.ErrNotFound, http.StatusNotFound, ""},
	{notice.ErrValidationFailed, http.StatusBadRequest, ""},
	{notice.ErrInvalidStage, http.StatusConflict, ""},
	{notice.ErrStaleRecord, http.StatusConflict, "The case was updated elsewhere, reload and try again"},
	{storage.ErrNotFound, http.StatusNotFound, ""},
	{storage.ErrInvalidLocator, http.StatusBadRequest, ""},
	{service.ErrSessionNotFound, http.StatusNotFound, ""},
	{service.ErrActivityNotFound, http.StatusNotFound, ""},
	{service.ErrUserNotFound, http.StatusNotFound, ""},
	{service.ErrEmailAlreadyExists, http.StatusConflict, ""},
	{service.ErrInvalidCredentials, http.StatusUnauthorized, ""},
	{service.ErrEmailNotVerified, http.StatusForbidden, ""},
	{service.ErrAccountBlocked, http.StatusForbidden, ""},
	{service.ErrInvalidOrExpiredCode, http.StatusBadRequest, ""},
	{ErrUnauthorized, http.StatusUnauthorized, ""},
}

// StatusFor resolves the HTTP status and client message for err.
func StatusFor(err error) (int, string) {
	var validationErr *ValidationError
	if errors.As(err, &validationErr) {
		return http.StatusBadRequest, validationErr.Error()
	}

	var fiberErr *fiber.Error
	if errors.As(err, &fiberErr) {
		return fiberErr.Code, fiberErr.Message
	}

	for _, m := range errorMappings {
		if errors.Is(err, m.err) {
			if m.message == "" {
				return m.status, err.Error()
			}
			return m.status, m.message
		}
	}
	return http.StatusInternalServerError, "Internal server error"
}

// ErrorHandlerMiddleware renders errors returned by later handlers in the
// response envelope.
func ErrorHandlerMiddleware(log logger.ILogger) fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		err := ctx.Next()
		if err == nil {
			return nil
		}

		status, message := StatusFor(err)
		details := map[string]interface{}{
			"method": ctx.Method(),
			"path":   ctx.Path(),
			"status": status,
			"error":  err.Error(),
		}
		if status >= http.StatusInternalServerError {
			log.Error("HTTP", "Request failed", details)
		} else {
			log.Warn("HTTP", "Request rejected", details)
		}

		return ctx.Status(status).JSON(ErrorResponse(status, message))
	}
}
