package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/vollmed/clinic-api/internal/handler"
	apperrors "github.com/vollmed/clinic-api/pkg/errors"
)

// ErrorHandler translates errors attached to the gin context into the JSON
// error envelope. Domain errors keep their message; anything else is masked
// as an internal error.
func ErrorHandler(logger zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 {
			return
		}

		requestID := c.GetString(ContextRequestID)
		lastErr := c.Errors.Last().Err

		status := http.StatusInternalServerError
		message := "internal server error"
		if appErr, ok := apperrors.AsAppError(lastErr); ok {
			status = appErr.HTTPStatus()
			message = appErr.Message
		}

		event := logger.Warn()
		if status >= http.StatusInternalServerError {
			event = logger.Error()
		}
		event.Err(lastErr).
			Str("request_id", requestID).
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Int("status", status).
			Msg("request failed")

		c.JSON(status, handler.NewErrorResponse(message))
	}
}
