package ports

import (
	"context"

	"github.com/google/uuid"

	"github.com/moptabi/moptabi-backend/internal/domain"
)

type WishlistRepository interface {
	Create(ctx context.Context, item *domain.Wishlist) (*domain.Wishlist, error)
	Update(ctx context.Context, userID string, id uuid.UUID, patch domain.WishlistPatch) (*domain.Wishlist, error)
	Delete(ctx context.Context, userID string, id uuid.UUID) error
	FindByID(ctx context.Context, userID string, id uuid.UUID) (*domain.Wishlist, error)
	List(ctx context.Context, userID string, filter domain.WishlistFilter) ([]domain.WishlistItem, error)
	CountByUser(ctx context.Context, userID string, visited *bool) (int64, error)
	Count(ctx context.Context) (int64, error)
}
