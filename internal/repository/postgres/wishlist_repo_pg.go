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

const wishlistColumns = `id, user_id, spot_id, priority, memo, visited, visited_at, created_at, updated_at`

type WishlistRepository struct {
	db    *sqlx.DB
	spots *SpotRepository
}

func NewWishlistRepo(db *sqlx.DB) *WishlistRepository {
	return &WishlistRepository{db: db, spots: NewSpotRepo(db)}
}

func (r *WishlistRepository) Create(ctx context.Context, item *domain.Wishlist) (*domain.Wishlist, error) {
	const query = `
		INSERT INTO wishlists (user_id, spot_id, priority, memo, visited, visited_at)
		VALUES ($1, $2, $3, $4, $5, CASE WHEN $5 THEN NOW() ELSE NULL END)
		RETURNING ` + wishlistColumns

	var created domain.Wishlist
	if err := sqlx.GetContext(ctx, querier(ctx, r.db), &created, query,
		item.UserID, item.SpotID, item.Priority, item.Memo, item.Visited); err != nil {
		return nil, err
	}
	return &created, nil
}

func (r *WishlistRepository) Update(ctx context.Context, userID string, id uuid.UUID, patch domain.WishlistPatch) (*domain.Wishlist, error) {
	builder := psql.Update("wishlists").
		Set("updated_at", sq.Expr("NOW()")).
		Where(sq.Eq{"id": id, "user_id": userID}).
		Suffix("RETURNING " + wishlistColumns)

	if patch.Priority != nil {
		builder = builder.Set("priority", *patch.Priority)
	}
	if patch.Memo != nil {
		builder = builder.Set("memo", *patch.Memo)
	}
	if patch.Visited != nil {
		builder = builder.
			Set("visited", *patch.Visited).
			Set("visited_at", sq.Expr("CASE WHEN ? THEN COALESCE(visited_at, NOW()) ELSE NULL END", *patch.Visited))
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, err
	}
	var updated domain.Wishlist
	if err := sqlx.GetContext(ctx, querier(ctx, r.db), &updated, query, args...); err != nil {
		return nil, err
	}
	return &updated, nil
}

func (r *WishlistRepository) Delete(ctx context.Context, userID string, id uuid.UUID) error {
	const query = `DELETE FROM wishlists WHERE id = $1 AND user_id = $2`
	return requireAffected(querier(ctx, r.db).ExecContext(ctx, query, id, userID))
}

func (r *WishlistRepository) FindByID(ctx context.Context, userID string, id uuid.UUID) (*domain.Wishlist, error) {
	const query = `SELECT ` + wishlistColumns + ` FROM wishlists WHERE id = $1 AND user_id = $2`
	var item domain.Wishlist
	if err := sqlx.GetContext(ctx, querier(ctx, r.db), &item, query, id, userID); err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *WishlistRepository) List(ctx context.Context, userID string, filter domain.WishlistFilter) ([]domain.WishlistItem, error) {
	builder := psql.Select(strings.Split(wishlistColumns, ", ")...).
		From("wishlists").
		Where(sq.Eq{"user_id": userID})
	if filter.Visited != nil {
		builder = builder.Where(sq.Eq{"visited": *filter.Visited})
	}

	column := "created_at"
	if filter.SortBy == domain.WishlistSortPriority {
		column = "priority"
	}
	direction := "DESC"
	if filter.SortOrder == domain.SortOrderAsc {
		direction = "ASC"
	}
	builder = builder.OrderBy(column+" "+direction, "created_at DESC", "id")

	if filter.Limit > 0 {
		builder = builder.Limit(uint64(filter.Limit))
	}
	if filter.Offset > 0 {
		builder = builder.Offset(uint64(filter.Offset))
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, err
	}
	var rows []domain.Wishlist
	if err := sqlx.SelectContext(ctx, querier(ctx, r.db), &rows, query, args...); err != nil {
		return nil, err
	}

	ids := make([]string, 0, len(rows))
	for _, row := range rows {
		ids = append(ids, row.SpotID)
	}
	spots, err := r.spots.FindByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}

	items := make([]domain.WishlistItem, 0, len(rows))
	for _, row := range rows {
		spot, ok := spots[row.SpotID]
		if !ok {
			spot = domain.SpotDetail{ID: row.SpotID}
		}
		items = append(items, domain.WishlistItem{Wishlist: row, Spot: spot})
	}
	return items, nil
}

func (r *WishlistRepository) CountByUser(ctx context.Context, userID string, visited *bool) (int64, error) {
	builder := psql.Select("COUNT(*)").From("wishlists").Where(sq.Eq{"user_id": userID})
	if visited != nil {
		builder = builder.Where(sq.Eq{"visited": *visited})
	}
	query, args, err := builder.ToSql()
	if err != nil {
		return 0, err
	}
	var count int64
	err = sqlx.GetContext(ctx, querier(ctx, r.db), &count, query, args...)
	return count, err
}

func (r *WishlistRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	err := sqlx.GetContext(ctx, querier(ctx, r.db), &count, `SELECT COUNT(*) FROM wishlists`)
	return count, err
}

var _ ports.WishlistRepository = (*WishlistRepository)(nil)
