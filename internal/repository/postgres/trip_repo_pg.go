package postgres

import (
	"context"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/moptabi/moptabi-backend/internal/domain"
	"github.com/moptabi/moptabi-backend/internal/repository/ports"
)

const tripColumns = `id, user_id, title, start_date, end_date, image_url, created_at, updated_at`

type TripRepository struct {
	db *sqlx.DB
}

func NewTripRepo(db *sqlx.DB) *TripRepository {
	return &TripRepository{db: db}
}

func (r *TripRepository) Create(ctx context.Context, trip *domain.Trip) (*domain.Trip, error) {
	const query = `
        INSERT INTO trips (user_id, title, start_date, end_date, image_url)
        VALUES ($1, $2, $3, $4, $5)
        RETURNING ` + tripColumns

	var created domain.Trip
	if err := sqlx.GetContext(ctx, querier(ctx, r.db), &created, query,
		trip.UserID, trip.Title, trip.StartDate, trip.EndDate, trip.ImageURL); err != nil {
		return nil, err
	}
	return &created, nil
}

func (r *TripRepository) Update(ctx context.Context, trip *domain.Trip) (*domain.Trip, error) {
	const query = `
        UPDATE trips
        SET title = $3,
            start_date = $4,
            end_date = $5,
            updated_at = NOW()
        WHERE id = $1 AND user_id = $2
        RETURNING ` + tripColumns

	var updated domain.Trip
	if err := sqlx.GetContext(ctx, querier(ctx, r.db), &updated, query,
		trip.ID, trip.UserID, trip.Title, trip.StartDate, trip.EndDate); err != nil {
		return nil, err
	}
	return &updated, nil
}

func (r *TripRepository) Delete(ctx context.Context, userID string, id uuid.UUID) error {
	const query = `DELETE FROM trips WHERE id = $1 AND user_id = $2`
	return requireAffected(querier(ctx, r.db).ExecContext(ctx, query, id, userID))
}

func (r *TripRepository) FindByID(ctx context.Context, userID string, id uuid.UUID) (*domain.Trip, error) {
	const query = `SELECT ` + tripColumns + ` FROM trips WHERE id = $1 AND user_id = $2`
	var trip domain.Trip
	if err := sqlx.GetContext(ctx, querier(ctx, r.db), &trip, query, id, userID); err != nil {
		return nil, err
	}
	return &trip, nil
}

func (r *TripRepository) ListByUser(ctx context.Context, userID string) ([]domain.TripSummary, error) {
	const query = `
        SELECT
            t.id, t.user_id, t.title, t.start_date, t.end_date, t.image_url, t.created_at, t.updated_at,
            (t.end_date - t.start_date + 1) AS day_count,
            COALESCE((
                SELECT COUNT(*)
                FROM plan_spots ps
                JOIN plans p ON p.id = ps.plan_id
                WHERE p.trip_id = t.id
            ), 0) AS spot_count
        FROM trips t
        WHERE t.user_id = $1
        ORDER BY t.start_date DESC, t.created_at DESC
    `
	trips := make([]domain.TripSummary, 0)
	if err := sqlx.SelectContext(ctx, querier(ctx, r.db), &trips, query, userID); err != nil {
		return nil, err
	}
	return trips, nil
}

func (r *TripRepository) CountByUser(ctx context.Context, userID string) (int64, error) {
	var count int64
	err := sqlx.GetContext(ctx, querier(ctx, r.db), &count, `SELECT COUNT(*) FROM trips WHERE user_id = $1`, userID)
	return count, err
}

func (r *TripRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	err := sqlx.GetContext(ctx, querier(ctx, r.db), &count, `SELECT COUNT(*) FROM trips`)
	return count, err
}

func (r *TripRepository) SetImage(ctx context.Context, userID string, id uuid.UUID, imageURL string) (*domain.Trip, error) {
	const query = `
        UPDATE trips
        SET image_url = $3, updated_at = NOW()
        WHERE id = $1 AND user_id = $2
        RETURNING ` + tripColumns

	var trip domain.Trip
	if err := sqlx.GetContext(ctx, querier(ctx, r.db), &trip, query, id, userID, imageURL); err != nil {
		return nil, err
	}
	return &trip, nil
}

func (r *TripRepository) ReplaceInfos(ctx context.Context, tripID uuid.UUID, infos []domain.TripInfo) error {
	q := querier(ctx, r.db)
	if _, err := q.ExecContext(ctx, `DELETE FROM trip_infos WHERE trip_id = $1`, tripID); err != nil {
		return err
	}
	const query = `
        INSERT INTO trip_infos (trip_id, date, genre_id, transportation_methods, memo)
        VALUES ($1, $2, $3, COALESCE($4::integer[], '{}'), $5)
    `
	for _, info := range infos {
		if _, err := q.ExecContext(ctx, query, tripID, info.Date, info.GenreID, info.TransportationMethods, info.Memo); err != nil {
			return err
		}
	}
	return nil
}

func (r *TripRepository) ListInfos(ctx context.Context, tripID uuid.UUID) ([]domain.TripInfo, error) {
	const query = `
        SELECT id, trip_id, date, genre_id, transportation_methods, memo
        FROM trip_infos
        WHERE trip_id = $1
        ORDER BY date
    `
	infos := make([]domain.TripInfo, 0)
	if err := sqlx.SelectContext(ctx, querier(ctx, r.db), &infos, query, tripID); err != nil {
		return nil, err
	}
	return infos, nil
}

var _ ports.TripRepository = (*TripRepository)(nil)
