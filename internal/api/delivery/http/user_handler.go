package http

import (
	"net/http"

	"golang-stock-tracker/internal/api/dto"
	"golang-stock-tracker/internal/api/service"
	"golang-stock-tracker/pkg/logger"

	"github.com/labstack/echo/v4"
)

// UserHandler handles HTTP requests for the caller's profile, watchlist and prediction history.
type UserHandler struct {
	userService service.UserService
	logger      *logger.Logger
}

// NewUserHandler creates a new UserHandler.
func NewUserHandler(userService service.UserService, logger *logger.Logger) *UserHandler {
	return &UserHandler{userService: userService, logger: logger}
}

// RegisterRoutes registers the user routes to the Echo group.
func (h *UserHandler) RegisterRoutes(g *echo.Group) {
	g.GET("/profile", h.GetProfile)
	g.PUT("/profile", h.UpdateProfile)
	g.GET("/watchlist", h.GetWatchlist)
	g.POST("/watchlist", h.AddToWatchlist)
	g.DELETE("/watchlist/:symbol", h.RemoveFromWatchlist)
	g.GET("/predictions", h.GetPredictions)
}

// GetProfile godoc
// @Summary Get profile
// @Description Get the caller's profile with watchlist and prediction history
// @Tags users
// @Produce  json
// @Security BearerAuth
// @Success 200 {object} dto.ProfileResponse
// @Failure 401 {object} dto.ErrorResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /users/profile [get]
func (h *UserHandler) GetProfile(c echo.Context) error {
	account, err := currentAccount(c)
	if err != nil {
		return err
	}
	resp, err := h.userService.GetProfile(c.Request().Context(), account)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, resp)
}

// UpdateProfile godoc
// @Summary Update profile
// @Description Update the caller's name and/or email
// @Tags users
// @Accept  json
// @Produce  json
// @Security BearerAuth
// @Param   profile  body    dto.UpdateProfileRequest   true    "Fields to update"
// @Success 200 {object} dto.UpdateProfileResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 409 {object} dto.ErrorResponse
// @Router /users/profile [put]
func (h *UserHandler) UpdateProfile(c echo.Context) error {
	account, err := currentAccount(c)
	if err != nil {
		return err
	}
	var req dto.UpdateProfileRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	resp, err := h.userService.UpdateProfile(c.Request().Context(), account, &req)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, resp)
}

// GetWatchlist godoc
// @Summary Get watchlist
// @Description Get the caller's watchlist enriched with live quotes and latest predictions
// @Tags users
// @Produce  json
// @Security BearerAuth
// @Success 200 {array} dto.EnrichedWatchlistItem
// @Failure 401 {object} dto.ErrorResponse
// @Router /users/watchlist [get]
func (h *UserHandler) GetWatchlist(c echo.Context) error {
	account, err := currentAccount(c)
	if err != nil {
		return err
	}
	items, err := h.userService.GetWatchlist(c.Request().Context(), account.ID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, items)
}

// AddToWatchlist godoc
// @Summary Add to watchlist
// @Description Add a symbol to the caller's watchlist
// @Tags users
// @Accept  json
// @Produce  json
// @Security BearerAuth
// @Param   entry  body    dto.AddWatchlistRequest   true    "Symbol to add"
// @Success 200 {object} dto.WatchlistResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 409 {object} dto.ErrorResponse
// @Router /users/watchlist [post]
func (h *UserHandler) AddToWatchlist(c echo.Context) error {
	account, err := currentAccount(c)
	if err != nil {
		return err
	}
	var req dto.AddWatchlistRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	resp, err := h.userService.AddToWatchlist(c.Request().Context(), account.ID, &req)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, resp)
}

// RemoveFromWatchlist godoc
// @Summary Remove from watchlist
// @Description Remove a symbol from the caller's watchlist. Removing an absent symbol is a no-op.
// @Tags users
// @Produce  json
// @Security BearerAuth
// @Param   symbol  path    string true    "Ticker symbol"
// @Success 200 {object} dto.WatchlistResponse
// @Failure 400 {object} dto.ErrorResponse
// @Router /users/watchlist/{symbol} [delete]
func (h *UserHandler) RemoveFromWatchlist(c echo.Context) error {
	account, err := currentAccount(c)
	if err != nil {
		return err
	}
	resp, err := h.userService.RemoveFromWatchlist(c.Request().Context(), account.ID, c.Param("symbol"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, resp)
}

// GetPredictions godoc
// @Summary Prediction history
// @Description Get the caller's predictions, newest first
// @Tags users
// @Produce  json
// @Security BearerAuth
// @Success 200 {array} dto.PredictionResponse
// @Failure 401 {object} dto.ErrorResponse
// @Router /users/predictions [get]
func (h *UserHandler) GetPredictions(c echo.Context) error {
	account, err := currentAccount(c)
	if err != nil {
		return err
	}
	resp, err := h.userService.GetPredictions(c.Request().Context(), account.ID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, resp)
}
