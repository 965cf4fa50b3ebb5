package http

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/moptabi/moptabi-backend/internal/domain"
	"github.com/moptabi/moptabi-backend/internal/service"
	"github.com/moptabi/moptabi-backend/internal/util"
)

type PlanHandler struct {
	plans *service.PlanService
}

func RegisterPlans(e *echo.Echo, resolver *IdentityResolver, plans *service.PlanService) {
	h := &PlanHandler{plans: plans}

	g := e.Group("/plans", RequireAuth(resolver))
	g.GET("/:id", h.get)
	g.POST("/:id/spots", h.addSpot)
	g.PATCH("/:id/spots/:planSpotId", h.updateSpot)
	g.DELETE("/:id/spots/:planSpotId", h.deleteSpot)
}

func (h *PlanHandler) get(c echo.Context) error {
	user, _ := CurrentUser(c)
	planID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, util.Error("invalid plan id"))
	}
	plan, err := h.plans.Get(c.Request().Context(), user.ID, planID)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, util.Data("plan", plan))
}

func (h *PlanHandler) addSpot(c echo.Context) error {
	user, _ := CurrentUser(c)
	planID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, util.Error("invalid plan id"))
	}
	var req planSpotCreateRequest
	if err := bindAndValidate(c, &req); err != nil {
		return writeError(c, err)
	}
	spot, err := h.plans.AddSpot(c.Request().Context(), user.ID, planID, service.PlanSpotInput{
		Spot:      req.Spot.detail(),
		StayStart: req.StayStart,
		StayEnd:   req.StayEnd,
		Memo:      req.Memo,
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusCreated, util.Data("planSpot", spot))
}

func (h *PlanHandler) updateSpot(c echo.Context) error {
	user, _ := CurrentUser(c)
	planID, planSpotID, ok := parsePlanSpotIDs(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, util.Error("invalid plan or plan spot id"))
	}
	var req planSpotPatchRequest
	if err := bindAndValidate(c, &req); err != nil {
		return writeError(c, err)
	}
	spot, err := h.plans.UpdateSpot(c.Request().Context(), user.ID, planID, planSpotID, domain.PlanSpotPatch{
		StayStart: req.StayStart,
		StayEnd:   req.StayEnd,
		Order:     req.Order,
		Memo:      req.Memo,
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, util.Data("planSpot", spot))
}

func (h *PlanHandler) deleteSpot(c echo.Context) error {
	user, _ := CurrentUser(c)
	planID, planSpotID, ok := parsePlanSpotIDs(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, util.Error("invalid plan or plan spot id"))
	}
	if err := h.plans.DeleteSpot(c.Request().Context(), user.ID, planID, planSpotID); err != nil {
		return writeError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

func parsePlanSpotIDs(c echo.Context) (uuid.UUID, uuid.UUID, bool) {
	planID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return uuid.Nil, uuid.Nil, false
	}
	planSpotID, err := uuid.Parse(c.Param("planSpotId"))
	if err != nil {
		return uuid.Nil, uuid.Nil, false
	}
	return planID, planSpotID, true
}
