package ports

import (
	"context"

	"github.com/moptabi/moptabi-backend/internal/domain"
)

type SpotRepository interface {
	Upsert(ctx context.Context, spot domain.SpotDetail) error
	FindByID(ctx context.Context, id string) (*domain.SpotDetail, error)
	FindByIDs(ctx context.Context, ids []string) (map[string]domain.SpotDetail, error)
}
