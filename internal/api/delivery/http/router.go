package http

import (
	"golang-stock-tracker/internal/api/service"
	"golang-stock-tracker/pkg/logger"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
)

// RouterConfig controls the cross-cutting behaviour of the HTTP server.
type RouterConfig struct {
	AllowedOrigins []string
	// ExposeErrorCause adds the underlying error text to error responses. Development only.
	ExposeErrorCause bool
}

// Services groups the services the handlers delegate to.
type Services struct {
	Auth  service.AuthService
	User  service.UserService
	Stock service.StockService
	Admin service.AdminService
}

// NewRouter builds an Echo instance with the middleware chain and every API route registered under /api.
// health may be nil.
func NewRouter(cfg RouterConfig, svc Services, health *HealthHandler, log *logger.Logger) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = NewRequestValidator()
	e.HTTPErrorHandler = NewErrorHandler(log, cfg.ExposeErrorCause)

	origins := cfg.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}

	e.Use(middleware.Recover())
	e.Use(middleware.RequestIDWithConfig(middleware.RequestIDConfig{
		Generator: func() string { return uuid.NewString() },
	}))
	e.Use(RequestContext())
	e.Use(RequestLogger(log))
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: origins,
		AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization},
	}))
	e.Use(middleware.BodyLimit("1M"))

	if health != nil {
		e.GET("/health", health.Health)
	}

	requireAuth := Auth(svc.Auth)
	api := e.Group("/api")

	NewAuthHandler(svc.Auth, log).RegisterRoutes(api.Group("/auth"), requireAuth)
	NewUserHandler(svc.User, log).RegisterRoutes(api.Group("/users", requireAuth))
	NewStockHandler(svc.Stock, log).RegisterRoutes(api.Group("/stocks", requireAuth))
	NewAdminHandler(svc.Admin, log).RegisterRoutes(api.Group("/admin", requireAuth, AdminOnly()))

	return e
}
