package service

import (
	"context"
	"errors"
	"log/slog"
	"sort"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/moptabi/moptabi-backend/internal/domain"
	"github.com/moptabi/moptabi-backend/internal/repository/ports"
)

const defaultReadRateScanLimit = 5000

var ErrNotificationNotFound = errors.New("notification not found")

type NotificationConfig struct {
	// ReadRateScanLimit bounds how many rows a readRate sort loads.
	ReadRateScanLimit int
	Logger            *slog.Logger
}

type NotificationService struct {
	notifications ports.NotificationRepository
	tx            ports.TxManager
	scanLimit     int
	logger        *slog.Logger
}

type NotificationInput struct {
	Title       string
	Content     string
	Type        domain.NotificationType
	PublishedAt *time.Time
}

func NewNotificationService(notifications ports.NotificationRepository, tx ports.TxManager, cfg NotificationConfig) *NotificationService {
	scanLimit := cfg.ReadRateScanLimit
	if scanLimit <= 0 {
		scanLimit = defaultReadRateScanLimit
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &NotificationService{
		notifications: notifications,
		tx:            tx,
		scanLimit:     scanLimit,
		logger:        logger,
	}
}

// ListAdmin pages through notifications with their read statistics. Stored
// columns are sorted and paged by the database; readRate is sorted in
// memory over at most scanLimit rows.
func (s *NotificationService) ListAdmin(ctx context.Context, filter domain.NotificationAdminFilter) (*domain.AdminNotificationPage, error) {
	filter.Page, filter.Limit = normalizePage(filter.Page, filter.Limit)
	if !filter.SortBy.Valid() {
		filter.SortBy = domain.NotificationSortPublishedAt
	}
	if !filter.SortOrder.Valid() {
		filter.SortOrder = domain.SortOrderDesc
	}

	total, err := s.notifications.CountAdmin(ctx, filter)
	if err != nil {
		return nil, err
	}

	var rows []domain.NotificationReadStats
	if !filter.SortBy.Computed() {
		rows, err = s.notifications.ListAdmin(ctx, filter, filter.Limit, domain.PageOffset(filter.Page, filter.Limit))
		if err != nil {
			return nil, err
		}
	} else {
		scan := filter
		scan.SortBy = domain.NotificationSortPublishedAt
		scan.SortOrder = domain.SortOrderDesc
		all, err := s.notifications.ListAdmin(ctx, scan, s.scanLimit, 0)
		if err != nil {
			return nil, err
		}
		if total > int64(len(all)) {
			s.logger.Warn("read rate sort truncated",
				slog.Int64("matching", total),
				slog.Int("scanned", len(all)),
			)
			total = int64(len(all))
		}
		sortByReadRate(all, filter.SortOrder)
		rows = pageWindow(all, filter.Page, filter.Limit)
	}

	for i := range rows {
		rows[i].ReadRate = domain.ReadRate(rows[i].ReadCount, rows[i].TotalRecipients)
	}
	if rows == nil {
		rows = []domain.NotificationReadStats{}
	}
	return &domain.AdminNotificationPage{
		Notifications: rows,
		Pagination:    domain.CalculatePagination(total, filter.Page, filter.Limit),
	}, nil
}

func (s *NotificationService) Get(ctx context.Context, id uuid.UUID) (*domain.Notification, error) {
	n, err := s.notifications.FindByID(ctx, id)
	if err != nil {
		if isNotFound(err) {
			return nil, ErrNotificationNotFound
		}
		return nil, err
	}
	return n, nil
}

// Create writes the notification and gives every user an unread copy in the
// same transaction.
func (s *NotificationService) Create(ctx context.Context, input NotificationInput) (*domain.Notification, error) {
	n, err := buildNotification(input)
	if err != nil {
		return nil, err
	}

	var created *domain.Notification
	var recipients int64
	err = s.tx.RunInTx(ctx, func(ctx context.Context) error {
		var err error
		created, err = s.notifications.Create(ctx, n)
		if err != nil {
			return err
		}
		recipients, err = s.notifications.FanOut(ctx, created.ID)
		return err
	})
	if err != nil {
		return nil, err
	}
	s.logger.Info("notification published",
		slog.String("notification_id", created.ID.String()),
		slog.Int64("recipients", recipients),
	)
	return created, nil
}

// Update rewrites the notification and resets every recipient to unread.
func (s *NotificationService) Update(ctx context.Context, id uuid.UUID, input NotificationInput) (*domain.Notification, error) {
	n, err := buildNotification(input)
	if err != nil {
		return nil, err
	}
	n.ID = id

	var updated *domain.Notification
	var recipients int64
	err = s.tx.RunInTx(ctx, func(ctx context.Context) error {
		var err error
		updated, err = s.notifications.Update(ctx, n)
		if err != nil {
			if isNotFound(err) {
				return ErrNotificationNotFound
			}
			return err
		}
		recipients, err = s.notifications.FanOut(ctx, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	s.logger.Info("notification republished",
		slog.String("notification_id", id.String()),
		slog.Int64("recipients", recipients),
	)
	return updated, nil
}

func (s *NotificationService) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.notifications.Delete(ctx, id); err != nil {
		if isNotFound(err) {
			return ErrNotificationNotFound
		}
		return err
	}
	return nil
}

func (s *NotificationService) Inbox(ctx context.Context, userID string, page, limit int) (*domain.InboxPage, error) {
	page, limit = normalizePage(page, limit)
	total, err := s.notifications.CountInbox(ctx, userID)
	if err != nil {
		return nil, err
	}
	items, err := s.notifications.ListInbox(ctx, userID, limit, domain.PageOffset(page, limit))
	if err != nil {
		return nil, err
	}
	if items == nil {
		items = []domain.InboxNotification{}
	}
	return &domain.InboxPage{Notifications: items, Pagination: domain.CalculatePagination(total, page, limit)}, nil
}

func (s *NotificationService) UnreadCount(ctx context.Context, userID string) (int64, error) {
	return s.notifications.CountUnread(ctx, userID)
}

func (s *NotificationService) MarkRead(ctx context.Context, userID string, id uuid.UUID) error {
	if err := s.notifications.MarkRead(ctx, userID, id); err != nil {
		if isNotFound(err) {
			return ErrNotificationNotFound
		}
		return err
	}
	return nil
}

func (s *NotificationService) MarkAllRead(ctx context.Context, userID string) (int64, error) {
	return s.notifications.MarkAllRead(ctx, userID)
}

func buildNotification(input NotificationInput) (*domain.Notification, error) {
	title := strings.TrimSpace(input.Title)
	content := strings.TrimSpace(input.Content)

	details := map[string]string{}
	switch n := utf8.RuneCountInString(title); {
	case n == 0:
		details["title"] = "required"
	case n > domain.MaxNotificationTitleLength:
		details["title"] = "title must be at most 100 characters"
	}
	switch n := utf8.RuneCountInString(content); {
	case n == 0:
		details["content"] = "required"
	case n > domain.MaxNotificationContentLength:
		details["content"] = "content must be at most 5000 characters"
	}
	if !input.Type.Valid() {
		details["type"] = "must be one of INFO, UPDATE, MAINTENANCE, EVENT"
	}
	if input.PublishedAt == nil || input.PublishedAt.IsZero() {
		details["publishedAt"] = "required"
	}
	if len(details) > 0 {
		return nil, newValidationError("invalid notification", details)
	}
	return &domain.Notification{
		Title:       title,
		Content:     content,
		Type:        input.Type,
		PublishedAt: input.PublishedAt.UTC(),
	}, nil
}

// sortByReadRate orders rows by read rate. Equal rates keep the most
// recently published first.
func sortByReadRate(rows []domain.NotificationReadStats, order domain.SortOrder) {
	for i := range rows {
		rows[i].ReadRate = domain.ReadRate(rows[i].ReadCount, rows[i].TotalRecipients)
	}
	sort.SliceStable(rows, func(i, j int) bool {
		a, b := rows[i], rows[j]
		if a.ReadRate != b.ReadRate {
			if order == domain.SortOrderAsc {
				return a.ReadRate < b.ReadRate
			}
			return a.ReadRate > b.ReadRate
		}
		return a.PublishedAt.After(b.PublishedAt)
	})
}

func pageWindow[T any](rows []T, page, limit int) []T {
	start := domain.PageOffset(page, limit)
	if start >= len(rows) {
		return []T{}
	}
	end := start + limit
	if end > len(rows) {
		end = len(rows)
	}
	return rows[start:end]
}
