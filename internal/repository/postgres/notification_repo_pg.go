package postgres

import (
	"context"
	"strings"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/moptabi/moptabi-backend/internal/domain"
	"github.com/moptabi/moptabi-backend/internal/repository/ports"
)

const notificationColumns = `id, title, content, type, published_at, created_at, updated_at`

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

type NotificationRepository struct {
	db *sqlx.DB
}

func NewNotificationRepo(db *sqlx.DB) *NotificationRepository {
	return &NotificationRepository{db: db}
}

func (r *NotificationRepository) Create(ctx context.Context, n *domain.Notification) (*domain.Notification, error) {
	const query = `
		INSERT INTO notifications (title, content, type, published_at)
		VALUES ($1, $2, $3, $4)
		RETURNING ` + notificationColumns

	var created domain.Notification
	if err := sqlx.GetContext(ctx, querier(ctx, r.db), &created, query, n.Title, n.Content, n.Type, n.PublishedAt); err != nil {
		return nil, err
	}
	return &created, nil
}

func (r *NotificationRepository) Update(ctx context.Context, n *domain.Notification) (*domain.Notification, error) {
	const query = `
		UPDATE notifications
		SET title = $2,
			content = $3,
			type = $4,
			published_at = $5,
			updated_at = NOW()
		WHERE id = $1
		RETURNING ` + notificationColumns

	var updated domain.Notification
	if err := sqlx.GetContext(ctx, querier(ctx, r.db), &updated, query, n.ID, n.Title, n.Content, n.Type, n.PublishedAt); err != nil {
		return nil, err
	}
	return &updated, nil
}

func (r *NotificationRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return requireAffected(querier(ctx, r.db).ExecContext(ctx, `DELETE FROM notifications WHERE id = $1`, id))
}

func (r *NotificationRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.Notification, error) {
	const query = `SELECT ` + notificationColumns + ` FROM notifications WHERE id = $1`
	var n domain.Notification
	if err := sqlx.GetContext(ctx, querier(ctx, r.db), &n, query, id); err != nil {
		return nil, err
	}
	return &n, nil
}

func (r *NotificationRepository) FanOut(ctx context.Context, id uuid.UUID) (int64, error) {
	const query = `
		INSERT INTO user_notifications (user_id, notification_id, is_read, read_at)
		SELECT u.id, $1, FALSE, NULL
		FROM users u
		ON CONFLICT (user_id, notification_id) DO UPDATE
		SET is_read = FALSE,
			read_at = NULL
	`
	result, err := querier(ctx, r.db).ExecContext(ctx, query, id)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

func (r *NotificationRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	err := sqlx.GetContext(ctx, querier(ctx, r.db), &count, `SELECT COUNT(*) FROM notifications`)
	return count, err
}

func adminPredicates(filter domain.NotificationAdminFilter) sq.And {
	where := sq.And{}
	if title := strings.TrimSpace(filter.Title); title != "" {
		where = append(where, sq.ILike{"n.title": "%" + likeEscaper.Replace(title) + "%"})
	}
	if filter.Type != nil {
		where = append(where, sq.Eq{"n.type": *filter.Type})
	}
	if filter.PublishedFrom != nil {
		where = append(where, sq.GtOrEq{"n.published_at": *filter.PublishedFrom})
	}
	if filter.PublishedTo != nil {
		// inclusive of the whole day
		where = append(where, sq.Lt{"n.published_at": filter.PublishedTo.AddDate(0, 0, 1)})
	}
	return where
}

func (r *NotificationRepository) CountAdmin(ctx context.Context, filter domain.NotificationAdminFilter) (int64, error) {
	query, args, err := psql.Select("COUNT(*)").
		From("notifications n").
		Where(adminPredicates(filter)).
		ToSql()
	if err != nil {
		return 0, err
	}
	var count int64
	err = sqlx.GetContext(ctx, querier(ctx, r.db), &count, query, args...)
	return count, err
}

func (r *NotificationRepository) ListAdmin(ctx context.Context, filter domain.NotificationAdminFilter, limit, offset int) ([]domain.NotificationReadStats, error) {
	direction := "DESC"
	if filter.SortOrder == domain.SortOrderAsc {
		direction = "ASC"
	}
	orderBy := []string{"n.published_at DESC", "n.id"}
	switch filter.SortBy {
	case domain.NotificationSortPublishedAt:
		orderBy = []string{"n.published_at " + direction, "n.id"}
	case domain.NotificationSortCreatedAt:
		orderBy = []string{"n.created_at " + direction, "n.id"}
	}

	builder := psql.Select(
		"n.id", "n.title", "n.content", "n.type", "n.published_at", "n.created_at", "n.updated_at",
		"COUNT(un.user_id) AS total_recipients",
		"COUNT(un.user_id) FILTER (WHERE un.is_read) AS read_count",
	).
		From("notifications n").
		LeftJoin("user_notifications un ON un.notification_id = n.id").
		Where(adminPredicates(filter)).
		GroupBy("n.id").
		OrderBy(orderBy...)
	if limit > 0 {
		builder = builder.Limit(uint64(limit))
	}
	if offset > 0 {
		builder = builder.Offset(uint64(offset))
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, err
	}
	stats := make([]domain.NotificationReadStats, 0)
	if err := sqlx.SelectContext(ctx, querier(ctx, r.db), &stats, query, args...); err != nil {
		return nil, err
	}
	for i := range stats {
		stats[i].ReadRate = domain.ReadRate(stats[i].ReadCount, stats[i].TotalRecipients)
	}
	return stats, nil
}

func (r *NotificationRepository) ListInbox(ctx context.Context, userID string, limit, offset int) ([]domain.InboxNotification, error) {
	const query = `
		SELECT n.id, n.title, n.content, n.type, n.published_at, n.created_at, n.updated_at, un.is_read, un.read_at
		FROM user_notifications un
		JOIN notifications n ON n.id = un.notification_id
		WHERE un.user_id = $1 AND n.published_at <= NOW()
		ORDER BY n.published_at DESC, n.id
		LIMIT $2 OFFSET $3
	`
	items := make([]domain.InboxNotification, 0, limit)
	if err := sqlx.SelectContext(ctx, querier(ctx, r.db), &items, query, userID, limit, offset); err != nil {
		return nil, err
	}
	return items, nil
}

func (r *NotificationRepository) CountInbox(ctx context.Context, userID string) (int64, error) {
	const query = `
		SELECT COUNT(*)
		FROM user_notifications un
		JOIN notifications n ON n.id = un.notification_id
		WHERE un.user_id = $1 AND n.published_at <= NOW()
	`
	var count int64
	err := sqlx.GetContext(ctx, querier(ctx, r.db), &count, query, userID)
	return count, err
}

func (r *NotificationRepository) CountUnread(ctx context.Context, userID string) (int64, error) {
	const query = `
		SELECT COUNT(*)
		FROM user_notifications un
		JOIN notifications n ON n.id = un.notification_id
		WHERE un.user_id = $1 AND NOT un.is_read AND n.published_at <= NOW()
	`
	var count int64
	err := sqlx.GetContext(ctx, querier(ctx, r.db), &count, query, userID)
	return count, err
}

func (r *NotificationRepository) MarkRead(ctx context.Context, userID string, id uuid.UUID) error {
	const query = `
		UPDATE user_notifications
		SET is_read = TRUE,
			read_at = COALESCE(read_at, NOW())
		WHERE user_id = $1 AND notification_id = $2
	`
	return requireAffected(querier(ctx, r.db).ExecContext(ctx, query, userID, id))
}

func (r *NotificationRepository) MarkAllRead(ctx context.Context, userID string) (int64, error) {
	const query = `
		UPDATE user_notifications un
		SET is_read = TRUE,
			read_at = NOW()
		FROM notifications n
		WHERE n.id = un.notification_id
		  AND un.user_id = $1
		  AND NOT un.is_read
		  AND n.published_at <= NOW()
	`
	result, err := querier(ctx, r.db).ExecContext(ctx, query, userID)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

var _ ports.NotificationRepository = (*NotificationRepository)(nil)
