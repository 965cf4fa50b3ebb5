package domain

import (
	"math"
	"time"

	"github.com/google/uuid"
)

type NotificationType string

const (
	NotificationTypeInfo        NotificationType = "INFO"
	NotificationTypeUpdate      NotificationType = "UPDATE"
	NotificationTypeMaintenance NotificationType = "MAINTENANCE"
	NotificationTypeEvent       NotificationType = "EVENT"
)

func (t NotificationType) Valid() bool {
	switch t {
	case NotificationTypeInfo, NotificationTypeUpdate, NotificationTypeMaintenance, NotificationTypeEvent:
		return true
	default:
		return false
	}
}

type Notification struct {
	ID          uuid.UUID        `db:"id" json:"id"`
	Title       string           `db:"title" json:"title"`
	Content     string           `db:"content" json:"content"`
	Type        NotificationType `db:"type" json:"type"`
	PublishedAt time.Time        `db:"published_at" json:"publishedAt"`
	CreatedAt   time.Time        `db:"created_at" json:"createdAt"`
	UpdatedAt   time.Time        `db:"updated_at" json:"updatedAt"`
}

type UserNotification struct {
	UserID         string     `db:"user_id" json:"userId"`
	NotificationID uuid.UUID  `db:"notification_id" json:"notificationId"`
	IsRead         bool       `db:"is_read" json:"isRead"`
	ReadAt         *time.Time `db:"read_at" json:"readAt,omitempty"`
	CreatedAt      time.Time  `db:"created_at" json:"createdAt"`
}

// InboxNotification is a notification as seen by one recipient.
type InboxNotification struct {
	Notification
	IsRead bool       `db:"is_read" json:"isRead"`
	ReadAt *time.Time `db:"read_at" json:"readAt,omitempty"`
}

// NotificationReadStats is a notification with its recipient aggregates.
type NotificationReadStats struct {
	Notification
	TotalRecipients int64 `db:"total_recipients" json:"totalRecipients"`
	ReadCount       int64 `db:"read_count" json:"readCount"`
	ReadRate        int   `db:"-" json:"readRate"`
}

// ReadRate returns the read percentage rounded to the nearest integer, or 0
// when nobody received the notification.
func ReadRate(readCount, totalRecipients int64) int {
	if totalRecipients <= 0 {
		return 0
	}
	return int(math.Round(float64(readCount) / float64(totalRecipients) * 100))
}

type NotificationSortField string

const (
	NotificationSortPublishedAt NotificationSortField = "publishedAt"
	NotificationSortCreatedAt   NotificationSortField = "createdAt"
	NotificationSortReadRate    NotificationSortField = "readRate"
)

func (f NotificationSortField) Valid() bool {
	switch f {
	case NotificationSortPublishedAt, NotificationSortCreatedAt, NotificationSortReadRate:
		return true
	default:
		return false
	}
}

// Computed reports whether the field is derived in memory rather than
// stored as a column.
func (f NotificationSortField) Computed() bool {
	return f == NotificationSortReadRate
}

type NotificationAdminFilter struct {
	Title         string
	Type          *NotificationType
	PublishedFrom *time.Time
	// PublishedTo is the last included day; the whole day matches.
	PublishedTo *time.Time
	Page          int
	Limit         int
	SortBy        NotificationSortField
	SortOrder     SortOrder
}

type AdminNotificationPage struct {
	Notifications []NotificationReadStats `json:"notifications"`
	Pagination    Pagination              `json:"pagination"`
}

type InboxPage struct {
	Notifications []InboxNotification `json:"notifications"`
	Pagination    Pagination          `json:"pagination"`
}
