package ports

import (
	"context"

	"github.com/google/uuid"

	"github.com/moptabi/moptabi-backend/internal/domain"
)

type TripRepository interface {
	Create(ctx context.Context, trip *domain.Trip) (*domain.Trip, error)
	Update(ctx context.Context, trip *domain.Trip) (*domain.Trip, error)
	Delete(ctx context.Context, userID string, id uuid.UUID) error
	FindByID(ctx context.Context, userID string, id uuid.UUID) (*domain.Trip, error)
	ListByUser(ctx context.Context, userID string) ([]domain.TripSummary, error)
	CountByUser(ctx context.Context, userID string) (int64, error)
	Count(ctx context.Context) (int64, error)
	SetImage(ctx context.Context, userID string, id uuid.UUID, imageURL string) (*domain.Trip, error)
	ReplaceInfos(ctx context.Context, tripID uuid.UUID, infos []domain.TripInfo) error
	ListInfos(ctx context.Context, tripID uuid.UUID) ([]domain.TripInfo, error)
}
