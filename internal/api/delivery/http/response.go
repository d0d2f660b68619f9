package http

import (
	"errors"
	"fmt"
	"net/http"

	"golang-stock-tracker/internal/api/dto"
	"golang-stock-tracker/pkg/apperror"
	"golang-stock-tracker/pkg/logger"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// NewErrorHandler returns an echo.HTTPErrorHandler that maps application errors to status codes
// and renders them as dto.ErrorResponse. The underlying cause is exposed only when exposeCause is set.
func NewErrorHandler(log *logger.Logger, exposeCause bool) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		status, body := errorResponse(err, exposeCause)
		ctx := c.Request().Context()
		fields := []zap.Field{
			logger.ErrorField(err),
			logger.IntField("status", status),
			logger.StringField("method", c.Request().Method),
			logger.StringField("path", c.Path()),
		}
		switch {
		case status >= http.StatusInternalServerError:
			log.ErrorContext(ctx, "Request failed", fields...)
		case status != http.StatusNotFound:
			log.DebugContext(ctx, "Request rejected", fields...)
		}

		var writeErr error
		if c.Request().Method == http.MethodHead {
			writeErr = c.NoContent(status)
		} else {
			writeErr = c.JSON(status, body)
		}
		if writeErr != nil {
			log.ErrorContext(ctx, "Failed to write error response", logger.ErrorField(writeErr))
		}
	}
}

func errorResponse(err error, exposeCause bool) (int, dto.ErrorResponse) {
	var appErr *apperror.Error
	if errors.As(err, &appErr) {
		body := dto.ErrorResponse{Message: apperror.Message(err)}
		if exposeCause && appErr.Err != nil {
			body.Error = appErr.Err.Error()
		}
		return apperror.HTTPStatus(appErr.Kind), body
	}

	var he *echo.HTTPError
	if errors.As(err, &he) {
		body := dto.ErrorResponse{Message: http.StatusText(he.Code)}
		if msg, ok := he.Message.(string); ok && msg != "" {
			body.Message = msg
		}
		if exposeCause && he.Internal != nil {
			body.Error = he.Internal.Error()
		}
		return he.Code, body
	}

	body := dto.ErrorResponse{Message: apperror.Message(err)}
	if exposeCause {
		body.Error = fmt.Sprint(err)
	}
	return http.StatusInternalServerError, body
}
