package postgres

import (
	"context"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/moptabi/moptabi-backend/internal/domain"
	"github.com/moptabi/moptabi-backend/internal/repository/ports"
)

const spotDetailSelect = `
        SELECT
            m.spot_id,
            m.name,
            m.latitude,
            m.longitude,
            m.image,
            m.rating,
            m.categories,
            m.catchphrase,
            m.description,
            m.opening_hours,
            m.address,
            ns.name AS station_name,
            ns.walking_minutes AS station_walking_minutes,
            ns.latitude AS station_latitude,
            ns.longitude AS station_longitude
        FROM spot_meta m
        LEFT JOIN nearest_stations ns ON ns.spot_id = m.spot_id
`

type spotRow struct {
	domain.SpotMeta
	StationName    *string  `db:"station_name"`
	StationWalking *int     `db:"station_walking_minutes"`
	StationLat     *float64 `db:"station_latitude"`
	StationLng     *float64 `db:"station_longitude"`
}

func (row spotRow) detail() domain.SpotDetail {
	d := domain.SpotDetail{ID: row.SpotID, Meta: row.SpotMeta}
	if row.StationName != nil {
		st := &domain.NearestStation{
			SpotID:    row.SpotID,
			Name:      *row.StationName,
			Latitude:  row.StationLat,
			Longitude: row.StationLng,
		}
		if row.StationWalking != nil {
			st.WalkingMinutes = *row.StationWalking
		}
		d.NearestStation = st
	}
	return d
}

type SpotRepository struct {
	db *sqlx.DB
}

func NewSpotRepo(db *sqlx.DB) *SpotRepository {
	return &SpotRepository{db: db}
}

// Upsert writes the spot identity, its meta and nearest station. Callers
// wanting all three rows atomically run it inside a transaction.
func (r *SpotRepository) Upsert(ctx context.Context, spot domain.SpotDetail) error {
	q := querier(ctx, r.db)

	if _, err := q.ExecContext(ctx, `INSERT INTO spots (id) VALUES ($1) ON CONFLICT (id) DO NOTHING`, spot.ID); err != nil {
		return err
	}

	const metaQuery = `
        INSERT INTO spot_meta (spot_id, name, latitude, longitude, image, rating, categories, catchphrase, description, opening_hours, address)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
        ON CONFLICT (spot_id) DO UPDATE
        SET name = EXCLUDED.name,
            latitude = EXCLUDED.latitude,
            longitude = EXCLUDED.longitude,
            image = COALESCE(EXCLUDED.image, spot_meta.image),
            rating = COALESCE(EXCLUDED.rating, spot_meta.rating),
            categories = EXCLUDED.categories,
            catchphrase = COALESCE(EXCLUDED.catchphrase, spot_meta.catchphrase),
            description = COALESCE(EXCLUDED.description, spot_meta.description),
            opening_hours = EXCLUDED.opening_hours,
            address = COALESCE(EXCLUDED.address, spot_meta.address),
            updated_at = NOW()
    `
	m := spot.Meta
	categories := m.Categories
	if categories == nil {
		categories = pq.StringArray{}
	}
	openingHours := m.OpeningHours
	if openingHours == nil {
		openingHours = pq.StringArray{}
	}
	if _, err := q.ExecContext(ctx, metaQuery, spot.ID, m.Name, m.Latitude, m.Longitude, m.Image, m.Rating,
		categories, m.Catchphrase, m.Description, openingHours, m.Address); err != nil {
		return err
	}

	if spot.NearestStation == nil {
		return nil
	}
	const stationQuery = `
        INSERT INTO nearest_stations (spot_id, name, walking_minutes, latitude, longitude)
        VALUES ($1, $2, $3, $4, $5)
        ON CONFLICT (spot_id) DO UPDATE
        SET name = EXCLUDED.name,
            walking_minutes = EXCLUDED.walking_minutes,
            latitude = EXCLUDED.latitude,
            longitude = EXCLUDED.longitude
    `
	st := spot.NearestStation
	_, err := q.ExecContext(ctx, stationQuery, spot.ID, st.Name, st.WalkingMinutes, st.Latitude, st.Longitude)
	return err
}

func (r *SpotRepository) FindByID(ctx context.Context, id string) (*domain.SpotDetail, error) {
	var row spotRow
	if err := sqlx.GetContext(ctx, querier(ctx, r.db), &row, spotDetailSelect+` WHERE m.spot_id = $1`, id); err != nil {
		return nil, err
	}
	d := row.detail()
	return &d, nil
}

func (r *SpotRepository) FindByIDs(ctx context.Context, ids []string) (map[string]domain.SpotDetail, error) {
	out := make(map[string]domain.SpotDetail, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	var rows []spotRow
	if err := sqlx.SelectContext(ctx, querier(ctx, r.db), &rows, spotDetailSelect+` WHERE m.spot_id = ANY($1)`, pq.Array(ids)); err != nil {
		return nil, err
	}
	for _, row := range rows {
		out[row.SpotID] = row.detail()
	}
	return out, nil
}

var _ ports.SpotRepository = (*SpotRepository)(nil)
