package http

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/moptabi/moptabi-backend/internal/media"
	"github.com/moptabi/moptabi-backend/internal/planner"
	"github.com/moptabi/moptabi-backend/internal/service"
	"github.com/moptabi/moptabi-backend/internal/util"
)

type TripHandler struct {
	trips *service.TripService
}

func RegisterTrips(e *echo.Echo, resolver *IdentityResolver, trips *service.TripService) {
	h := &TripHandler{trips: trips}

	g := e.Group("/trips", RequireAuth(resolver))
	g.GET("", h.list)
	g.POST("", h.create)
	g.GET("/:id", h.get)
	g.PUT("/:id", h.update)
	g.DELETE("/:id", h.delete)
	g.POST("/:id/image", h.uploadImage)
}

func (h *TripHandler) list(c echo.Context) error {
	user, _ := CurrentUser(c)
	trips, err := h.trips.List(c.Request().Context(), user.ID)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, util.Data("trips", trips))
}

func (h *TripHandler) get(c echo.Context) error {
	user, _ := CurrentUser(c)
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, util.Error("invalid trip id"))
	}
	trip, err := h.trips.Get(c.Request().Context(), user.ID, id)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, util.Data("trip", trip))
}

func (h *TripHandler) create(c echo.Context) error {
	user, _ := CurrentUser(c)
	var state planner.State
	if err := c.Bind(&state); err != nil {
		return writeError(c, errInvalidBody)
	}
	trip, err := h.trips.Create(c.Request().Context(), user.ID, state)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusCreated, util.Data("trip", trip))
}

func (h *TripHandler) update(c echo.Context) error {
	user, _ := CurrentUser(c)
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, util.Error("invalid trip id"))
	}
	var state planner.State
	if err := c.Bind(&state); err != nil {
		return writeError(c, errInvalidBody)
	}
	trip, err := h.trips.Update(c.Request().Context(), user.ID, id, state)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, util.Data("trip", trip))
}

func (h *TripHandler) delete(c echo.Context) error {
	user, _ := CurrentUser(c)
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, util.Error("invalid trip id"))
	}
	if err := h.trips.Delete(c.Request().Context(), user.ID, id); err != nil {
		return writeError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *TripHandler) uploadImage(c echo.Context) error {
	user, _ := CurrentUser(c)
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, util.Error("invalid trip id"))
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		return c.JSON(http.StatusBadRequest, util.Error("file upload required"))
	}
	src, err := fileHeader.Open()
	if err != nil {
		return c.JSON(http.StatusBadRequest, util.Error("unable to read upload"))
	}
	defer src.Close()

	trip, err := h.trips.UploadImage(c.Request().Context(), user.ID, id, media.Upload{
		Reader:      src,
		Size:        fileHeader.Size,
		FileName:    fileHeader.Filename,
		ContentType: fileHeader.Header.Get(echo.HeaderContentType),
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, util.Data("trip", trip))
}
