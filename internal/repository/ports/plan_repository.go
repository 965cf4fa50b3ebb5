package ports

import (
	"context"

	"github.com/google/uuid"

	"github.com/moptabi/moptabi-backend/internal/domain"
)

type PlanRepository interface {
	// ReplaceForTrip drops every plan of the trip and writes days in its place.
	ReplaceForTrip(ctx context.Context, tripID uuid.UUID, days []domain.DayGraph) error
	ListByTrip(ctx context.Context, tripID uuid.UUID) ([]domain.Plan, error)
	FindOwned(ctx context.Context, userID string, planID uuid.UUID) (*domain.Plan, error)
	ListSpots(ctx context.Context, planIDs []uuid.UUID) ([]domain.PlanSpot, error)
	ListTransports(ctx context.Context, planIDs []uuid.UUID) ([]domain.Transport, error)
	CountSpots(ctx context.Context, planID uuid.UUID) (int64, error)
	NextSpotOrder(ctx context.Context, planID uuid.UUID) (int, error)
	AddSpot(ctx context.Context, spot *domain.PlanSpot) (*domain.PlanSpot, error)
	UpdateSpot(ctx context.Context, planID, planSpotID uuid.UUID, patch domain.PlanSpotPatch) (*domain.PlanSpot, error)
	DeleteSpot(ctx context.Context, planID, planSpotID uuid.UUID) error
}
