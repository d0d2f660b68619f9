package http

import (
	"context"
	"strings"

	"golang-stock-tracker/internal/api/service"
	"golang-stock-tracker/internal/entity"
	"golang-stock-tracker/pkg/apperror"
	"golang-stock-tracker/pkg/common"
	"golang-stock-tracker/pkg/logger"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
)

const bearerPrefix = "Bearer "

// RequestContext copies the request id assigned by middleware.RequestID into the request context
// so service logs can be correlated.
func RequestContext() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			id := c.Response().Header().Get(echo.HeaderXRequestID)
			if id != "" {
				ctx := context.WithValue(c.Request().Context(), logger.RequestIDKey, id)
				c.SetRequest(c.Request().WithContext(ctx))
			}
			return next(c)
		}
	}
}

// RequestLogger logs one line per request through zap.
func RequestLogger(log *logger.Logger) echo.MiddlewareFunc {
	return middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogURI:       true,
		LogMethod:    true,
		LogStatus:    true,
		LogLatency:   true,
		LogRemoteIP:  true,
		LogRequestID: true,
		LogError:     true,
		Skipper: func(c echo.Context) bool {
			return c.Path() == "/health"
		},
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			l := log.With(
				logger.StringField("request_id", v.RequestID),
				logger.StringField("method", v.Method),
				logger.StringField("uri", v.URI),
				logger.IntField("status", v.Status),
				logger.DurationField("latency", v.Latency),
				logger.StringField("remote_ip", v.RemoteIP),
			)
			if v.Status >= 500 {
				l.Error("Request completed", logger.ErrorField(v.Error))
				return nil
			}
			l.Info("Request completed")
			return nil
		},
	})
}

// Auth resolves the bearer token to an account and stores it on the context.
// Missing, malformed or expired tokens and unknown accounts yield 401; banned accounts yield 403.
func Auth(authService service.AuthService) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			header := c.Request().Header.Get(echo.HeaderAuthorization)
			token := ""
			if strings.HasPrefix(header, bearerPrefix) {
				token = strings.TrimSpace(strings.TrimPrefix(header, bearerPrefix))
			} else if header != "" {
				return apperror.Unauthorized("Token is not valid")
			}

			account, err := authService.Authenticate(c.Request().Context(), token)
			if err != nil {
				return err
			}
			c.Set(common.ContextKeyAccount, account)
			return next(c)
		}
	}
}

// AdminOnly rejects accounts without the admin role. It must run after Auth.
func AdminOnly() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			account, err := currentAccount(c)
			if err != nil {
				return err
			}
			if !account.IsAdmin() {
				return apperror.Forbidden("Access denied. Admin only.")
			}
			return next(c)
		}
	}
}

func currentAccount(c echo.Context) (*entity.Account, error) {
	account, ok := c.Get(common.ContextKeyAccount).(*entity.Account)
	if !ok || account == nil {
		return nil, apperror.Unauthorized("No token, authorization denied")
	}
	return account, nil
}
