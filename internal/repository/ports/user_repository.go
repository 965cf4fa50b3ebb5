package ports

import (
	"context"
	"time"

	"github.com/moptabi/moptabi-backend/internal/domain"
)

type UserRepository interface {
	// Upsert creates or refreshes the user and stamps last_login_at. The role
	// is raised to ADMIN when promote is set and left untouched otherwise.
	Upsert(ctx context.Context, identity domain.Identity, promote bool) (*domain.User, error)
	FindByID(ctx context.Context, id string) (*domain.User, error)
	Count(ctx context.Context) (int64, error)
	CountActiveSince(ctx context.Context, since time.Time) (int64, error)
	CountByRole(ctx context.Context) ([]domain.RoleCount, error)
	ListRecent(ctx context.Context, limit int) ([]domain.User, error)
}
