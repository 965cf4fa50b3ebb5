package postgres

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/moptabi/moptabi-backend/internal/domain"
	"github.com/moptabi/moptabi-backend/internal/repository/ports"
)

const userColumns = `id, role, email, name, image, created_at, last_login_at`

type UserRepository struct {
	db *sqlx.DB
}

func NewUserRepo(db *sqlx.DB) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) Upsert(ctx context.Context, identity domain.Identity, promote bool) (*domain.User, error) {
	const query = `
        INSERT INTO users (id, email, name, image, role, last_login_at)
        VALUES ($1, $2, $3, $4, CASE WHEN $5 THEN 'ADMIN' ELSE 'USER' END, NOW())
        ON CONFLICT (id) DO UPDATE
        SET email = EXCLUDED.email,
            name = COALESCE(EXCLUDED.name, users.name),
            image = COALESCE(EXCLUDED.image, users.image),
            role = CASE WHEN $5 THEN 'ADMIN' ELSE users.role END,
            last_login_at = NOW()
        RETURNING ` + userColumns

	var user domain.User
	if err := sqlx.GetContext(ctx, querier(ctx, r.db), &user, query,
		identity.UserID, identity.Email, identity.Name, identity.Image, promote); err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *UserRepository) FindByID(ctx context.Context, id string) (*domain.User, error) {
	const query = `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	var user domain.User
	if err := sqlx.GetContext(ctx, querier(ctx, r.db), &user, query, id); err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *UserRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	err := sqlx.GetContext(ctx, querier(ctx, r.db), &count, `SELECT COUNT(*) FROM users`)
	return count, err
}

func (r *UserRepository) CountActiveSince(ctx context.Context, since time.Time) (int64, error) {
	const query = `SELECT COUNT(*) FROM users WHERE last_login_at >= $1`
	var count int64
	err := sqlx.GetContext(ctx, querier(ctx, r.db), &count, query, since)
	return count, err
}

func (r *UserRepository) CountByRole(ctx context.Context) ([]domain.RoleCount, error) {
	const query = `
        SELECT role, COUNT(*) AS count
        FROM users
        GROUP BY role
        ORDER BY role
    `
	counts := make([]domain.RoleCount, 0, 3)
	if err := sqlx.SelectContext(ctx, querier(ctx, r.db), &counts, query); err != nil {
		return nil, err
	}
	return counts, nil
}

func (r *UserRepository) ListRecent(ctx context.Context, limit int) ([]domain.User, error) {
	const query = `SELECT ` + userColumns + ` FROM users ORDER BY created_at DESC, id LIMIT $1`
	users := make([]domain.User, 0, limit)
	if err := sqlx.SelectContext(ctx, querier(ctx, r.db), &users, query, limit); err != nil {
		return nil, err
	}
	return users, nil
}

var _ ports.UserRepository = (*UserRepository)(nil)
