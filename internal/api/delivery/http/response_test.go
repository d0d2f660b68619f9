package http

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"golang-stock-tracker/pkg/apperror"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
)

func TestErrorResponse(t *testing.T) {
	bindErr := echo.NewHTTPError(http.StatusBadRequest, "Unmarshal type error").SetInternal(errors.New("json: cannot unmarshal"))

	tests := []struct {
		name        string
		err         error
		expose      bool
		wantStatus  int
		wantMessage string
		wantCause   string
	}{
		{
			name:        "wrapped application error wins over echo error",
			err:         apperror.Wrap(apperror.KindValidation, "Invalid request payload", bindErr),
			wantStatus:  http.StatusBadRequest,
			wantMessage: "Invalid request payload",
		},
		{
			name:        "conflict",
			err:         fmt.Errorf("creating account: %w", apperror.Conflict("User already exists with this email")),
			wantStatus:  http.StatusConflict,
			wantMessage: "User already exists with this email",
		},
		{
			name:        "echo not found",
			err:         echo.ErrNotFound,
			wantStatus:  http.StatusNotFound,
			wantMessage: "Not Found",
		},
		{
			name:        "unclassified error is hidden",
			err:         errors.New("pq: relation does not exist"),
			wantStatus:  http.StatusInternalServerError,
			wantMessage: "Internal server error",
		},
		{
			name:        "unclassified error exposed in development",
			err:         errors.New("pq: relation does not exist"),
			expose:      true,
			wantStatus:  http.StatusInternalServerError,
			wantMessage: "Internal server error",
			wantCause:   "pq: relation does not exist",
		},
		{
			name:        "upstream cause exposed in development",
			err:         apperror.Unavailable("Market data unavailable", errors.New("dial tcp: i/o timeout")),
			expose:      true,
			wantStatus:  http.StatusServiceUnavailable,
			wantMessage: "Market data unavailable",
			wantCause:   "dial tcp: i/o timeout",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, body := errorResponse(tt.err, tt.expose)
			assert.Equal(t, tt.wantStatus, status)
			assert.Equal(t, tt.wantMessage, body.Message)
			assert.Equal(t, tt.wantCause, body.Error)
		})
	}
}
