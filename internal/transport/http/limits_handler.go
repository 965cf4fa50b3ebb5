package http

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/moptabi/moptabi-backend/internal/domain"
)

// RegisterLimits serves the business caps so clients do not hard-code them.
func RegisterLimits(e *echo.Echo) {
	e.GET("/limits", func(c echo.Context) error {
		return c.JSON(http.StatusOK, domain.Limits())
	})
}
