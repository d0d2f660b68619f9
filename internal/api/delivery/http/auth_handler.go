package http

import (
	"net/http"

	"golang-stock-tracker/internal/api/dto"
	"golang-stock-tracker/internal/api/service"
	"golang-stock-tracker/pkg/logger"

	"github.com/labstack/echo/v4"
)

// AuthHandler handles HTTP requests for registration and login.
type AuthHandler struct {
	authService service.AuthService
	logger      *logger.Logger
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(authService service.AuthService, logger *logger.Logger) *AuthHandler {
	return &AuthHandler{authService: authService, logger: logger}
}

// RegisterRoutes registers the auth routes to the Echo group. requireAuth guards the routes that need a token.
func (h *AuthHandler) RegisterRoutes(g *echo.Group, requireAuth echo.MiddlewareFunc) {
	g.POST("/register", h.Register)
	g.POST("/login", h.Login)
	g.GET("/me", h.Me, requireAuth)
	g.POST("/logout", h.Logout, requireAuth)
}

// Register godoc
// @Summary Register a new account
// @Description Create a user account and return a signed token
// @Tags auth
// @Accept  json
// @Produce  json
// @Param   account  body    dto.RegisterRequest   true    "Account to create"
// @Success 201 {object} dto.AuthResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 409 {object} dto.ErrorResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /auth/register [post]
func (h *AuthHandler) Register(c echo.Context) error {
	var req dto.RegisterRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	resp, err := h.authService.Register(c.Request().Context(), &req)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, resp)
}

// Login godoc
// @Summary Log in
// @Description Verify credentials and return a signed token.
// @Description Bad credentials answer 401 "Invalid credentials", not 400; 400 is reserved for malformed or invalid payloads.
// @Tags auth
// @Accept  json
// @Produce  json
// @Param   credentials  body    dto.LoginRequest   true    "Credentials"
// @Success 200 {object} dto.AuthResponse
// @Failure 400 {object} dto.ErrorResponse "Malformed payload or failed validation"
// @Failure 401 {object} dto.ErrorResponse "Invalid credentials: unknown email or wrong password"
// @Failure 403 {object} dto.ErrorResponse "Account has been banned"
// @Router /auth/login [post]
func (h *AuthHandler) Login(c echo.Context) error {
	var req dto.LoginRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	resp, err := h.authService.Login(c.Request().Context(), &req)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, resp)
}

// Me godoc
// @Summary Current account
// @Description Return the account the bearer token resolves to
// @Tags auth
// @Produce  json
// @Security BearerAuth
// @Success 200 {object} dto.AccountResponse
// @Failure 401 {object} dto.ErrorResponse
// @Router /auth/me [get]
func (h *AuthHandler) Me(c echo.Context) error {
	account, err := currentAccount(c)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, service.ToAccountResponse(account))
}

// Logout godoc
// @Summary Log out
// @Description Tokens are stateless; the client is expected to discard its token
// @Tags auth
// @Produce  json
// @Security BearerAuth
// @Success 200 {object} dto.MessageResponse
// @Failure 401 {object} dto.ErrorResponse
// @Router /auth/logout [post]
func (h *AuthHandler) Logout(c echo.Context) error {
	if _, err := currentAccount(c); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, dto.MessageResponse{Message: "Logged out successfully"})
}
