package service

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"

	"github.com/moptabi/moptabi-backend/internal/domain"
	"github.com/moptabi/moptabi-backend/internal/planner"
	"github.com/moptabi/moptabi-backend/internal/repository/ports"
)

var (
	ErrPlanNotFound     = errors.New("plan not found")
	ErrPlanSpotNotFound = errors.New("plan spot not found")
)

type PlanService struct {
	plans ports.PlanRepository
	spots ports.SpotRepository
	tx    ports.TxManager
}

// PlanSpotInput adds one spot to an existing day plan.
type PlanSpotInput struct {
	Spot      domain.SpotDetail
	StayStart string
	StayEnd   string
	Memo      *string
}

func NewPlanService(plans ports.PlanRepository, spots ports.SpotRepository, tx ports.TxManager) *PlanService {
	return &PlanService{plans: plans, spots: spots, tx: tx}
}

func (s *PlanService) Get(ctx context.Context, userID string, planID uuid.UUID) (*domain.PlanDetail, error) {
	plan, err := s.findOwned(ctx, userID, planID)
	if err != nil {
		return nil, err
	}
	details, err := loadPlanDetails(ctx, s.plans, s.spots, []domain.Plan{*plan})
	if err != nil {
		return nil, err
	}
	return &details[0], nil
}

// AddSpot appends a spot to the day. The per-day cap is checked inside the
// transaction that writes it.
func (s *PlanService) AddSpot(ctx context.Context, userID string, planID uuid.UUID, input PlanSpotInput) (*domain.PlanSpotDetail, error) {
	details := planner.ValidateSpot(planner.Spot{
		ID:        input.Spot.ID,
		StayStart: input.StayStart,
		StayEnd:   input.StayEnd,
		Memo:      input.Memo,
	})
	if strings.TrimSpace(input.Spot.ID) == "" {
		details["spot.id"] = "required"
	}
	if strings.TrimSpace(input.Spot.Meta.Name) == "" {
		details["spot.name"] = "required"
	}
	if len(details) > 0 {
		return nil, newValidationError("invalid plan spot", details)
	}

	var created *domain.PlanSpot
	err := s.tx.RunInTx(ctx, func(ctx context.Context) error {
		if _, err := s.findOwned(ctx, userID, planID); err != nil {
			return err
		}
		count, err := s.plans.CountSpots(ctx, planID)
		if err != nil {
			return err
		}
		if count >= domain.MaxSpotsPerDay {
			return ErrSpotLimitExceeded
		}
		if err := s.spots.Upsert(ctx, input.Spot); err != nil {
			return err
		}
		order, err := s.plans.NextSpotOrder(ctx, planID)
		if err != nil {
			return err
		}
		created, err = s.plans.AddSpot(ctx, &domain.PlanSpot{
			PlanID:    planID,
			SpotID:    input.Spot.ID,
			StayStart: input.StayStart,
			StayEnd:   input.StayEnd,
			Order:     order,
			Memo:      input.Memo,
		})
		return err
	})
	if err != nil {
		return nil, err
	}
	return &domain.PlanSpotDetail{PlanSpot: *created, Spot: input.Spot}, nil
}

// UpdateSpot validates the patched spot as a whole, so a new stay end is
// checked against the stored stay start.
func (s *PlanService) UpdateSpot(ctx context.Context, userID string, planID, planSpotID uuid.UUID, patch domain.PlanSpotPatch) (*domain.PlanSpot, error) {
	if _, err := s.findOwned(ctx, userID, planID); err != nil {
		return nil, err
	}
	current, err := s.findSpot(ctx, planID, planSpotID)
	if err != nil {
		return nil, err
	}

	merged := planner.Spot{ID: current.SpotID, StayStart: current.StayStart, StayEnd: current.StayEnd, Memo: current.Memo}
	if patch.StayStart != nil {
		merged.StayStart = *patch.StayStart
	}
	if patch.StayEnd != nil {
		merged.StayEnd = *patch.StayEnd
	}
	if patch.Memo != nil {
		merged.Memo = patch.Memo
	}
	details := planner.ValidateSpot(merged)
	if patch.Order != nil && *patch.Order < 1 {
		details["order"] = "order must be positive"
	}
	if len(details) > 0 {
		return nil, newValidationError("invalid plan spot", details)
	}

	updated, err := s.plans.UpdateSpot(ctx, planID, planSpotID, patch)
	if err != nil {
		if isNotFound(err) {
			return nil, ErrPlanSpotNotFound
		}
		return nil, err
	}
	return updated, nil
}

func (s *PlanService) DeleteSpot(ctx context.Context, userID string, planID, planSpotID uuid.UUID) error {
	if _, err := s.findOwned(ctx, userID, planID); err != nil {
		return err
	}
	if err := s.plans.DeleteSpot(ctx, planID, planSpotID); err != nil {
		if isNotFound(err) {
			return ErrPlanSpotNotFound
		}
		return err
	}
	return nil
}

func (s *PlanService) findOwned(ctx context.Context, userID string, planID uuid.UUID) (*domain.Plan, error) {
	plan, err := s.plans.FindOwned(ctx, userID, planID)
	if err != nil {
		if isNotFound(err) {
			return nil, ErrPlanNotFound
		}
		return nil, err
	}
	return plan, nil
}

func (s *PlanService) findSpot(ctx context.Context, planID, planSpotID uuid.UUID) (*domain.PlanSpot, error) {
	spots, err := s.plans.ListSpots(ctx, []uuid.UUID{planID})
	if err != nil {
		return nil, err
	}
	for i := range spots {
		if spots[i].ID == planSpotID {
			return &spots[i], nil
		}
	}
	return nil, ErrPlanSpotNotFound
}
