package http

import (
	"net/http"
	"strconv"

	"golang-stock-tracker/internal/api/dto"
	"golang-stock-tracker/internal/api/service"
	"golang-stock-tracker/pkg/apperror"
	"golang-stock-tracker/pkg/logger"

	"github.com/labstack/echo/v4"
)

// AdminHandler handles HTTP requests for the admin dashboard.
type AdminHandler struct {
	adminService service.AdminService
	logger       *logger.Logger
}

// NewAdminHandler creates a new AdminHandler.
func NewAdminHandler(adminService service.AdminService, logger *logger.Logger) *AdminHandler {
	return &AdminHandler{adminService: adminService, logger: logger}
}

// RegisterRoutes registers the admin routes to the Echo group.
func (h *AdminHandler) RegisterRoutes(g *echo.Group) {
	g.GET("/stats", h.GetStats)
	g.GET("/users", h.ListUsers)
	g.PUT("/users/:id/status", h.UpdateStatus)
	g.DELETE("/users/:id", h.DeleteUser)
	g.GET("/analytics", h.GetAnalytics)
	g.GET("/activity", h.GetActivity)
}

// GetStats godoc
// @Summary Dashboard stats
// @Description Aggregate counts over accounts, predictions and watchlists
// @Tags admin
// @Produce  json
// @Security BearerAuth
// @Success 200 {object} dto.StatsResponse
// @Failure 403 {object} dto.ErrorResponse
// @Router /admin/stats [get]
func (h *AdminHandler) GetStats(c echo.Context) error {
	stats, err := h.adminService.GetStats(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, stats)
}

// ListUsers godoc
// @Summary List accounts
// @Description Paginated account list, newest first
// @Tags admin
// @Produce  json
// @Security BearerAuth
// @Param   page    query   int    false  "Page number (default 1)"
// @Param   limit   query   int    false  "Page size (default 10, max 100)"
// @Param   status  query   string false  "Status filter" Enums(active, banned, pending)
// @Param   search  query   string false  "Case-insensitive match on name or email"
// @Success 200 {object} dto.AccountListResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 403 {object} dto.ErrorResponse
// @Router /admin/users [get]
func (h *AdminHandler) ListUsers(c echo.Context) error {
	var query dto.ListAccountsQuery
	if err := c.Bind(&query); err != nil {
		return apperror.Wrap(apperror.KindValidation, "Invalid query parameters", err)
	}
	resp, err := h.adminService.ListAccounts(c.Request().Context(), &query)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, resp)
}

// UpdateStatus godoc
// @Summary Update account status
// @Description Set an account's status to active, banned or pending
// @Tags admin
// @Accept  json
// @Produce  json
// @Security BearerAuth
// @Param   id      path    int                      true  "Account ID"
// @Param   status  body    dto.UpdateStatusRequest  true  "New status"
// @Success 200 {object} dto.UpdateStatusResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Router /admin/users/{id}/status [put]
func (h *AdminHandler) UpdateStatus(c echo.Context) error {
	actor, err := currentAccount(c)
	if err != nil {
		return err
	}
	id, err := parseID(c)
	if err != nil {
		return err
	}
	var req dto.UpdateStatusRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	resp, err := h.adminService.UpdateStatus(c.Request().Context(), actor, id, req.Status)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, resp)
}

// DeleteUser godoc
// @Summary Delete account
// @Description Delete an account together with its watchlist and predictions
// @Tags admin
// @Produce  json
// @Security BearerAuth
// @Param   id  path    int true    "Account ID"
// @Success 200 {object} dto.MessageResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Router /admin/users/{id} [delete]
func (h *AdminHandler) DeleteUser(c echo.Context) error {
	actor, err := currentAccount(c)
	if err != nil {
		return err
	}
	id, err := parseID(c)
	if err != nil {
		return err
	}
	if err := h.adminService.DeleteAccount(c.Request().Context(), actor, id); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, dto.MessageResponse{Message: "User deleted successfully"})
}

// GetAnalytics godoc
// @Summary Analytics
// @Description User growth over the last 7 days, confidence buckets and most predicted symbols
// @Tags admin
// @Produce  json
// @Security BearerAuth
// @Success 200 {object} dto.AnalyticsResponse
// @Failure 403 {object} dto.ErrorResponse
// @Router /admin/analytics [get]
func (h *AdminHandler) GetAnalytics(c echo.Context) error {
	resp, err := h.adminService.GetAnalytics(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, resp)
}

// GetActivity godoc
// @Summary Recent activity
// @Description Latest registrations and predictions, newest first
// @Tags admin
// @Produce  json
// @Security BearerAuth
// @Success 200 {array} dto.ActivityItem
// @Failure 403 {object} dto.ErrorResponse
// @Router /admin/activity [get]
func (h *AdminHandler) GetActivity(c echo.Context) error {
	items, err := h.adminService.GetActivity(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, items)
}

func parseID(c echo.Context) (uint, error) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil || id == 0 {
		return 0, apperror.Validation("Invalid user ID")
	}
	return uint(id), nil
}
