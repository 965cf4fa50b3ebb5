package ports

import (
	"context"

	"github.com/google/uuid"

	"github.com/moptabi/moptabi-backend/internal/domain"
)

type NotificationRepository interface {
	Create(ctx context.Context, n *domain.Notification) (*domain.Notification, error)
	Update(ctx context.Context, n *domain.Notification) (*domain.Notification, error)
	Delete(ctx context.Context, id uuid.UUID) error
	FindByID(ctx context.Context, id uuid.UUID) (*domain.Notification, error)
	// FanOut gives every user an unread row for the notification and returns
	// the number of rows written.
	FanOut(ctx context.Context, id uuid.UUID) (int64, error)
	Count(ctx context.Context) (int64, error)

	CountAdmin(ctx context.Context, filter domain.NotificationAdminFilter) (int64, error)
	// ListAdmin orders by filter.SortBy when it is a stored column and by
	// published_at desc otherwise.
	ListAdmin(ctx context.Context, filter domain.NotificationAdminFilter, limit, offset int) ([]domain.NotificationReadStats, error)

	ListInbox(ctx context.Context, userID string, limit, offset int) ([]domain.InboxNotification, error)
	CountInbox(ctx context.Context, userID string) (int64, error)
	CountUnread(ctx context.Context, userID string) (int64, error)
	MarkRead(ctx context.Context, userID string, id uuid.UUID) error
	MarkAllRead(ctx context.Context, userID string) (int64, error)
}
