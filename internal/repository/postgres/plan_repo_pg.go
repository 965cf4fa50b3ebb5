package postgres

import (
	"context"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/moptabi/moptabi-backend/internal/domain"
	"github.com/moptabi/moptabi-backend/internal/repository/ports"
)

const (
	planSpotColumns  = `id, plan_id, spot_id, stay_start, stay_end, sort_order, memo`
	transportColumns = `id, plan_id, from_type, from_plan_spot_id, to_type, to_plan_spot_id, travel_time, fee, transport_method`
)

type PlanRepository struct {
	db *sqlx.DB
}

func NewPlanRepo(db *sqlx.DB) *PlanRepository {
	return &PlanRepository{db: db}
}

func (r *PlanRepository) ReplaceForTrip(ctx context.Context, tripID uuid.UUID, days []domain.DayGraph) error {
	q := querier(ctx, r.db)
	if _, err := q.ExecContext(ctx, `DELETE FROM plans WHERE trip_id = $1`, tripID); err != nil {
		return err
	}

	const planQuery = `INSERT INTO plans (id, trip_id, date) VALUES ($1, $2, $3)`
	const spotQuery = `
        INSERT INTO plan_spots (id, plan_id, spot_id, stay_start, stay_end, sort_order, memo)
        VALUES ($1, $2, $3, $4, $5, $6, $7)
    `
	const transportQuery = `
        INSERT INTO transports (id, plan_id, from_type, from_plan_spot_id, to_type, to_plan_spot_id, travel_time, fee, transport_method)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
    `
	for _, day := range days {
		if _, err := q.ExecContext(ctx, planQuery, day.Plan.ID, tripID, day.Plan.Date); err != nil {
			return err
		}
		for _, s := range day.Spots {
			if _, err := q.ExecContext(ctx, spotQuery, s.ID, day.Plan.ID, s.SpotID, nullIfEmpty(s.StayStart), nullIfEmpty(s.StayEnd), s.Order, s.Memo); err != nil {
				return err
			}
		}
		for _, t := range day.Transports {
			if _, err := q.ExecContext(ctx, transportQuery, t.ID, day.Plan.ID, t.FromType, t.FromPlanSpotID, t.ToType, t.ToPlanSpotID, t.TravelTime, t.Fee, t.TransportMethod); err != nil {
				return err
			}
		}
	}
	return nil
}

func (r *PlanRepository) ListByTrip(ctx context.Context, tripID uuid.UUID) ([]domain.Plan, error) {
	const query = `SELECT id, trip_id, date FROM plans WHERE trip_id = $1 ORDER BY date`
	plans := make([]domain.Plan, 0)
	if err := sqlx.SelectContext(ctx, querier(ctx, r.db), &plans, query, tripID); err != nil {
		return nil, err
	}
	return plans, nil
}

func (r *PlanRepository) FindOwned(ctx context.Context, userID string, planID uuid.UUID) (*domain.Plan, error) {
	const query = `
        SELECT p.id, p.trip_id, p.date
        FROM plans p
        JOIN trips t ON t.id = p.trip_id
        WHERE p.id = $1 AND t.user_id = $2
    `
	var plan domain.Plan
	if err := sqlx.GetContext(ctx, querier(ctx, r.db), &plan, query, planID, userID); err != nil {
		return nil, err
	}
	return &plan, nil
}

func (r *PlanRepository) ListSpots(ctx context.Context, planIDs []uuid.UUID) ([]domain.PlanSpot, error) {
	spots := make([]domain.PlanSpot, 0)
	if len(planIDs) == 0 {
		return spots, nil
	}
	const query = `
        SELECT id, plan_id, spot_id, COALESCE(stay_start, '') AS stay_start, COALESCE(stay_end, '') AS stay_end, sort_order, memo
        FROM plan_spots
        WHERE plan_id = ANY($1)
        ORDER BY plan_id, sort_order, id
    `
	if err := sqlx.SelectContext(ctx, querier(ctx, r.db), &spots, query, uuidArray(planIDs)); err != nil {
		return nil, err
	}
	return spots, nil
}

func (r *PlanRepository) ListTransports(ctx context.Context, planIDs []uuid.UUID) ([]domain.Transport, error) {
	transports := make([]domain.Transport, 0)
	if len(planIDs) == 0 {
		return transports, nil
	}
	const query = `SELECT ` + transportColumns + ` FROM transports WHERE plan_id = ANY($1) ORDER BY plan_id, id`
	if err := sqlx.SelectContext(ctx, querier(ctx, r.db), &transports, query, uuidArray(planIDs)); err != nil {
		return nil, err
	}
	return transports, nil
}

func (r *PlanRepository) CountSpots(ctx context.Context, planID uuid.UUID) (int64, error) {
	var count int64
	err := sqlx.GetContext(ctx, querier(ctx, r.db), &count, `SELECT COUNT(*) FROM plan_spots WHERE plan_id = $1`, planID)
	return count, err
}

func (r *PlanRepository) NextSpotOrder(ctx context.Context, planID uuid.UUID) (int, error) {
	var next int
	err := sqlx.GetContext(ctx, querier(ctx, r.db), &next, `SELECT COALESCE(MAX(sort_order), 0) + 1 FROM plan_spots WHERE plan_id = $1`, planID)
	return next, err
}

func (r *PlanRepository) AddSpot(ctx context.Context, spot *domain.PlanSpot) (*domain.PlanSpot, error) {
	const query = `
        INSERT INTO plan_spots (plan_id, spot_id, stay_start, stay_end, sort_order, memo)
        VALUES ($1, $2, $3, $4, $5, $6)
        RETURNING id, plan_id, spot_id, COALESCE(stay_start, '') AS stay_start, COALESCE(stay_end, '') AS stay_end, sort_order, memo
    `
	var created domain.PlanSpot
	if err := sqlx.GetContext(ctx, querier(ctx, r.db), &created, query,
		spot.PlanID, spot.SpotID, nullIfEmpty(spot.StayStart), nullIfEmpty(spot.StayEnd), spot.Order, spot.Memo); err != nil {
		return nil, err
	}
	return &created, nil
}

func (r *PlanRepository) UpdateSpot(ctx context.Context, planID, planSpotID uuid.UUID, patch domain.PlanSpotPatch) (*domain.PlanSpot, error) {
	builder := psql.Update("plan_spots").
		Where(sq.Eq{"id": planSpotID, "plan_id": planID}).
		Suffix("RETURNING id, plan_id, spot_id, COALESCE(stay_start, '') AS stay_start, COALESCE(stay_end, '') AS stay_end, sort_order, memo")

	changed := false
	if patch.StayStart != nil {
		builder = builder.Set("stay_start", nullIfEmpty(*patch.StayStart))
		changed = true
	}
	if patch.StayEnd != nil {
		builder = builder.Set("stay_end", nullIfEmpty(*patch.StayEnd))
		changed = true
	}
	if patch.Order != nil {
		builder = builder.Set("sort_order", *patch.Order)
		changed = true
	}
	if patch.Memo != nil {
		builder = builder.Set("memo", *patch.Memo)
		changed = true
	}
	if !changed {
		// squirrel refuses an UPDATE without SET clauses
		builder = builder.Set("sort_order", sq.Expr("sort_order"))
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, err
	}
	var updated domain.PlanSpot
	if err := sqlx.GetContext(ctx, querier(ctx, r.db), &updated, query, args...); err != nil {
		return nil, err
	}
	return &updated, nil
}

func (r *PlanRepository) DeleteSpot(ctx context.Context, planID, planSpotID uuid.UUID) error {
	const query = `DELETE FROM plan_spots WHERE id = $1 AND plan_id = $2`
	return requireAffected(querier(ctx, r.db).ExecContext(ctx, query, planSpotID, planID))
}

func nullIfEmpty(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func uuidArray(ids []uuid.UUID) interface{} {
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = id.String()
	}
	return pq.Array(out)
}

var _ ports.PlanRepository = (*PlanRepository)(nil)
