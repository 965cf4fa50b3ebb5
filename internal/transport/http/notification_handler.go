package http

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/moptabi/moptabi-backend/internal/domain"
	"github.com/moptabi/moptabi-backend/internal/service"
	"github.com/moptabi/moptabi-backend/internal/util"
)

type NotificationHandler struct {
	notifications *service.NotificationService
}

func RegisterNotifications(e *echo.Echo, resolver *IdentityResolver, notifications *service.NotificationService) {
	h := &NotificationHandler{notifications: notifications}

	g := e.Group("/notification", RequireAuth(resolver))
	g.GET("", h.inbox)
	g.GET("/unread-count", h.unreadCount)
	g.PATCH("/read-all", h.markAllRead)
	g.PATCH("/:id/read", h.markRead)

	admin := RequireAdmin()
	g.GET("/admin", h.listAdmin, admin)
	g.POST("", h.create, admin)
	g.GET("/:id", h.get, admin)
	g.PUT("/:id", h.update, admin)
	g.DELETE("/:id", h.delete, admin)
}

func (h *NotificationHandler) listAdmin(c echo.Context) error {
	filter, err := parseAdminNotificationFilter(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, util.Error(err.Error()))
	}
	page, err := h.notifications.ListAdmin(c.Request().Context(), filter)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, page)
}

func (h *NotificationHandler) get(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, util.Error("invalid notification id"))
	}
	n, err := h.notifications.Get(c.Request().Context(), id)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, util.Data("notification", n))
}

func (h *NotificationHandler) create(c echo.Context) error {
	input, err := bindNotification(c)
	if err != nil {
		return writeError(c, err)
	}
	n, err := h.notifications.Create(c.Request().Context(), input)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusCreated, util.Data("notification", n))
}

func (h *NotificationHandler) update(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, util.Error("invalid notification id"))
	}
	input, err := bindNotification(c)
	if err != nil {
		return writeError(c, err)
	}
	n, err := h.notifications.Update(c.Request().Context(), id, input)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, util.Data("notification", n))
}

func (h *NotificationHandler) delete(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, util.Error("invalid notification id"))
	}
	if err := h.notifications.Delete(c.Request().Context(), id); err != nil {
		return writeError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *NotificationHandler) inbox(c echo.Context) error {
	user, _ := CurrentUser(c)
	page, limit := parsePagination(c)
	result, err := h.notifications.Inbox(c.Request().Context(), user.ID, page, limit)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, result)
}

func (h *NotificationHandler) unreadCount(c echo.Context) error {
	user, _ := CurrentUser(c)
	count, err := h.notifications.UnreadCount(c.Request().Context(), user.ID)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, util.Data("unreadCount", count))
}

func (h *NotificationHandler) markRead(c echo.Context) error {
	user, _ := CurrentUser(c)
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, util.Error("invalid notification id"))
	}
	if err := h.notifications.MarkRead(c.Request().Context(), user.ID, id); err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, util.Data("success", true))
}

func (h *NotificationHandler) markAllRead(c echo.Context) error {
	user, _ := CurrentUser(c)
	updated, err := h.notifications.MarkAllRead(c.Request().Context(), user.ID)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, util.Data("updated", updated))
}

func bindNotification(c echo.Context) (service.NotificationInput, error) {
	var req notificationRequest
	if err := bindAndValidate(c, &req); err != nil {
		return service.NotificationInput{}, err
	}
	return service.NotificationInput{
		Title:       req.Title,
		Content:     req.Content,
		Type:        domain.NotificationType(req.Type),
		PublishedAt: req.PublishedAt,
	}, nil
}

func parseAdminNotificationFilter(c echo.Context) (domain.NotificationAdminFilter, error) {
	filter := domain.NotificationAdminFilter{
		Title:     strings.TrimSpace(c.QueryParam("title")),
		SortBy:    domain.NotificationSortPublishedAt,
		SortOrder: domain.SortOrderDesc,
	}
	filter.Page, filter.Limit = parsePagination(c)

	if v := strings.TrimSpace(c.QueryParam("type")); v != "" {
		t := domain.NotificationType(strings.ToUpper(v))
		if !t.Valid() {
			return filter, errors.New("type must be one of INFO, UPDATE, MAINTENANCE, EVENT")
		}
		filter.Type = &t
	}
	if v := strings.TrimSpace(c.QueryParam("sortBy")); v != "" {
		field := domain.NotificationSortField(v)
		if !field.Valid() {
			return filter, errors.New("sortBy must be publishedAt, createdAt or readRate")
		}
		filter.SortBy = field
	}
	order, err := parseSortOrder(c.QueryParam("sortOrder"))
	if err != nil {
		return filter, err
	}
	if order != "" {
		filter.SortOrder = order
	}

	from, err := parseDateParam(c.QueryParam("publishedFrom"), "publishedFrom")
	if err != nil {
		return filter, err
	}
	to, err := parseDateParam(c.QueryParam("publishedTo"), "publishedTo")
	if err != nil {
		return filter, err
	}
	if from != nil && to != nil && to.Before(*from) {
		return filter, errors.New("publishedTo must not be before publishedFrom")
	}
	filter.PublishedFrom, filter.PublishedTo = from, to
	return filter, nil
}

func parseDateParam(raw, name string) (*time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	t, err := time.Parse(domain.DateLayout, raw)
	if err != nil {
		return nil, errors.New(name + " must be YYYY-MM-DD")
	}
	return &t, nil
}
