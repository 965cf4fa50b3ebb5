package http

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/moptabi/moptabi-backend/internal/service"
	"github.com/moptabi/moptabi-backend/internal/util"
)

var errInvalidBody = errors.New("invalid request body")

func writeError(c echo.Context, err error) error {
	var vErr *service.ValidationError
	var reqErr *RequestValidationError
	switch {
	case errors.As(err, &vErr):
		return c.JSON(http.StatusBadRequest, util.ErrorDetails(vErr.Message, vErr.Details))
	case errors.As(err, &reqErr):
		return c.JSON(http.StatusBadRequest, util.ErrorDetails("invalid request body", reqErr.Fields))
	case errors.Is(err, errInvalidBody):
		return c.JSON(http.StatusBadRequest, util.Error(err.Error()))

	case errors.Is(err, service.ErrWishlistLimitExceeded),
		errors.Is(err, service.ErrPlanLimitExceeded),
		errors.Is(err, service.ErrSpotLimitExceeded),
		errors.Is(err, service.ErrWishlistDuplicate),
		errors.Is(err, service.ErrImageTooLarge),
		errors.Is(err, service.ErrUnsupportedImage):
		return c.JSON(http.StatusBadRequest, util.Error(err.Error()))

	case errors.Is(err, service.ErrUnauthorized), errors.Is(err, service.ErrInvalidToken):
		return c.JSON(http.StatusUnauthorized, util.Error("authentication required"))
	case errors.Is(err, service.ErrForbidden):
		return c.JSON(http.StatusForbidden, util.Error("forbidden"))

	case errors.Is(err, service.ErrTripNotFound),
		errors.Is(err, service.ErrPlanNotFound),
		errors.Is(err, service.ErrPlanSpotNotFound),
		errors.Is(err, service.ErrWishlistNotFound),
		errors.Is(err, service.ErrSpotNotFound),
		errors.Is(err, service.ErrNotificationNotFound),
		errors.Is(err, service.ErrUserNotFound):
		return c.JSON(http.StatusNotFound, util.Error(err.Error()))

	case errors.Is(err, service.ErrStorageDisabled):
		return c.JSON(http.StatusServiceUnavailable, util.Error(err.Error()))
	default:
		c.Logger().Errorf("%s %s: %v", c.Request().Method, c.Path(), err)
		return c.JSON(http.StatusInternalServerError, util.Error("internal error"))
	}
}

// bindAndValidate decodes the body into dst and runs the struct rules.
func bindAndValidate(c echo.Context, dst interface{}) error {
	if err := c.Bind(dst); err != nil {
		return errInvalidBody
	}
	return c.Validate(dst)
}
