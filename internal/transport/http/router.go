package http

import (
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
)

type RouterConfig struct {
	AllowOrigins []string
	// BodyLimit caps request bodies, e.g. "6M".
	BodyLimit string
	Logger    *slog.Logger
}

func NewRouter(cfg RouterConfig) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = NewRequestValidator()

	allowCredentials := true
	for _, origin := range cfg.AllowOrigins {
		if origin == "*" {
			allowCredentials = false
			break
		}
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	registerLogging(e, logger)

	e.Use(middleware.Recover())
	e.Use(middleware.Secure())
	if cfg.BodyLimit != "" {
		e.Use(middleware.BodyLimit(cfg.BodyLimit))
	}
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: cfg.AllowOrigins,
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete, http.MethodOptions},
		AllowHeaders: []string{
			echo.HeaderAuthorization,
			echo.HeaderContentType,
			echo.HeaderAccept,
			echo.HeaderOrigin,
			echo.HeaderXRequestedWith,
			HeaderUserID,
			HeaderUserEmail,
			HeaderUserName,
			HeaderUserImage,
		},
		AllowCredentials: allowCredentials,
	}))

	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, echo.Map{"ok": true})
	})
	return e
}
