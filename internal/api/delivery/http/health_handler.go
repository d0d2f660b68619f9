package http

import (
	"context"
	"net/http"
	"time"

	"golang-stock-tracker/pkg/logger"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// HealthResponse reports the liveness of the service and its dependencies.
type HealthResponse struct {
	Status    string            `json:"status"`
	Checks    map[string]string `json:"checks"`
	Timestamp time.Time         `json:"timestamp"`
}

// HealthHandler serves the liveness probe.
type HealthHandler struct {
	db     *gorm.DB
	redis  *redis.Client
	logger *logger.Logger
}

// NewHealthHandler creates a new HealthHandler. redisClient may be nil when Redis is disabled.
func NewHealthHandler(db *gorm.DB, redisClient *redis.Client, logger *logger.Logger) *HealthHandler {
	return &HealthHandler{db: db, redis: redisClient, logger: logger}
}

// Health godoc
// @Summary Health check
// @Description Liveness probe including a datastore ping
// @Tags health
// @Produce  json
// @Success 200 {object} HealthResponse
// @Failure 503 {object} HealthResponse
// @Router /health [get]
func (h *HealthHandler) Health(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 2*time.Second)
	defer cancel()

	resp := HealthResponse{Status: "ok", Checks: map[string]string{}, Timestamp: time.Now().UTC()}

	resp.Checks["database"] = "ok"
	if err := h.pingDB(ctx); err != nil {
		h.logger.WarnContext(ctx, "Database health check failed", logger.ErrorField(err))
		resp.Checks["database"] = "unavailable"
		resp.Status = "degraded"
	}

	if h.redis != nil {
		resp.Checks["redis"] = "ok"
		if err := h.redis.Ping(ctx).Err(); err != nil {
			// The quote cache is optional, so Redis alone does not fail the probe.
			h.logger.WarnContext(ctx, "Redis health check failed", logger.ErrorField(err))
			resp.Checks["redis"] = "unavailable"
		}
	}

	if resp.Status != "ok" {
		return c.JSON(http.StatusServiceUnavailable, resp)
	}
	return c.JSON(http.StatusOK, resp)
}

func (h *HealthHandler) pingDB(ctx context.Context) error {
	sqlDB, err := h.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}
