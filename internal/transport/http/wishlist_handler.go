package http

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/moptabi/moptabi-backend/internal/domain"
	"github.com/moptabi/moptabi-backend/internal/service"
	"github.com/moptabi/moptabi-backend/internal/util"
)

type WishlistHandler struct {
	wishlists *service.WishlistService
	spots     *service.SpotService
}

func RegisterWishlist(e *echo.Echo, resolver *IdentityResolver, wishlists *service.WishlistService, spots *service.SpotService) {
	h := &WishlistHandler{wishlists: wishlists, spots: spots}

	g := e.Group("/wishlist", RequireAuth(resolver))
	g.GET("", h.list)
	g.POST("", h.create)
	g.PATCH("/:id", h.update)
	g.DELETE("/:id", h.delete)

	s := e.Group("/spots", RequireAuth(resolver))
	s.GET("/visited", h.listSpots(true))
	s.GET("/unvisited", h.listSpots(false))
	s.GET("/:id", h.getSpot)
}

func (h *WishlistHandler) list(c echo.Context) error {
	user, _ := CurrentUser(c)
	filter, err := parseWishlistFilter(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, util.Error(err.Error()))
	}
	items, err := h.wishlists.List(c.Request().Context(), user.ID, filter)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, util.Data("wishlist", items))
}

func (h *WishlistHandler) create(c echo.Context) error {
	user, _ := CurrentUser(c)
	var req wishlistCreateRequest
	if err := bindAndValidate(c, &req); err != nil {
		return writeError(c, err)
	}
	item, err := h.wishlists.Add(c.Request().Context(), user.ID, service.WishlistInput{
		Spot:     req.Spot.detail(),
		Priority: req.Priority,
		Memo:     req.Memo,
		Visited:  req.Visited,
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusCreated, util.Data("wishlist", item))
}

func (h *WishlistHandler) update(c echo.Context) error {
	user, _ := CurrentUser(c)
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, util.Error("invalid wishlist id"))
	}
	var req wishlistPatchRequest
	if err := bindAndValidate(c, &req); err != nil {
		return writeError(c, err)
	}
	updated, err := h.wishlists.Update(c.Request().Context(), user.ID, id, domain.WishlistPatch{
		Priority: req.Priority,
		Memo:     req.Memo,
		Visited:  req.Visited,
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, util.Data("wishlist", updated))
}

func (h *WishlistHandler) delete(c echo.Context) error {
	user, _ := CurrentUser(c)
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, util.Error("invalid wishlist id"))
	}
	if err := h.wishlists.Delete(c.Request().Context(), user.ID, id); err != nil {
		return writeError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *WishlistHandler) listSpots(visited bool) echo.HandlerFunc {
	return func(c echo.Context) error {
		user, _ := CurrentUser(c)
		page, limit := parsePagination(c)
		result, err := h.spots.ListByVisited(c.Request().Context(), user.ID, visited, page, limit)
		if err != nil {
			return writeError(c, err)
		}
		return c.JSON(http.StatusOK, result)
	}
}

func (h *WishlistHandler) getSpot(c echo.Context) error {
	spot, err := h.spots.Get(c.Request().Context(), c.Param("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, util.Data("spot", spot))
}

func parseWishlistFilter(c echo.Context) (domain.WishlistFilter, error) {
	var filter domain.WishlistFilter
	switch v := strings.TrimSpace(c.QueryParam("sortBy")); v {
	case "":
	case string(domain.WishlistSortCreatedAt), string(domain.WishlistSortPriority):
		filter.SortBy = domain.WishlistSortField(v)
	default:
		return filter, errors.New("sortBy must be createdAt or priority")
	}
	order, err := parseSortOrder(c.QueryParam("sortOrder"))
	if err != nil {
		return filter, err
	}
	filter.SortOrder = order
	if v := strings.TrimSpace(c.QueryParam("visited")); v != "" {
		visited, err := strconv.ParseBool(v)
		if err != nil {
			return filter, errors.New("visited must be true or false")
		}
		filter.Visited = &visited
	}
	return filter, nil
}

func parseSortOrder(raw string) (domain.SortOrder, error) {
	raw = strings.ToLower(strings.TrimSpace(raw))
	if raw == "" {
		return "", nil
	}
	order := domain.SortOrder(raw)
	if !order.Valid() {
		return "", errors.New("sortOrder must be asc or desc")
	}
	return order, nil
}

// parsePagination reads page and limit; bad values fall back to defaults
// and the service clamps the limit.
func parsePagination(c echo.Context) (int, int) {
	page := domain.DefaultPage
	limit := domain.DefaultPageLimit
	if v := strings.TrimSpace(c.QueryParam("page")); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil && parsed > 0 {
			page = parsed
		}
	}
	if v := strings.TrimSpace(c.QueryParam("limit")); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil && parsed > 0 {
			limit = parsed
		}
	}
	return page, limit
}
