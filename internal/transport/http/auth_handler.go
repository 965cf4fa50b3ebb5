package http

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/moptabi/moptabi-backend/internal/service"
	"github.com/moptabi/moptabi-backend/internal/util"
)

type AuthHandler struct {
	auth      *service.AuthService
	dashboard *service.DashboardService
}

func RegisterAuth(e *echo.Echo, resolver *IdentityResolver, auth *service.AuthService, dashboard *service.DashboardService) {
	h := &AuthHandler{auth: auth, dashboard: dashboard}

	e.POST("/auth", h.login, RequireIdentity(resolver))
	e.GET("/auth", h.me, RequireAuth(resolver))
	e.GET("/auth/dashboard", h.stats, RequireAuth(resolver), RequireAdmin())
}

// login upserts the caller. Body fields override what the identity carries.
func (h *AuthHandler) login(c echo.Context) error {
	identity, ok := currentIdentity(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, util.Error("authentication required"))
	}

	var req loginRequest
	if c.Request().ContentLength != 0 {
		if err := bindAndValidate(c, &req); err != nil {
			return writeError(c, err)
		}
	}
	merged := *identity
	if req.Email != nil {
		merged.Email = *req.Email
	}
	if req.Name != nil {
		merged.Name = req.Name
	}
	if req.Image != nil {
		merged.Image = req.Image
	}

	result, err := h.auth.Login(c.Request().Context(), merged)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, result)
}

func (h *AuthHandler) me(c echo.Context) error {
	user, ok := CurrentUser(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, util.Error("authentication required"))
	}
	return c.JSON(http.StatusOK, util.Data("user", user))
}

func (h *AuthHandler) stats(c echo.Context) error {
	stats, err := h.dashboard.Stats(c.Request().Context())
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, stats)
}
