package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

type Trip struct {
	ID        uuid.UUID `db:"id" json:"id"`
	UserID    string    `db:"user_id" json:"userId"`
	Title     string    `db:"title" json:"title"`
	StartDate time.Time `db:"start_date" json:"startDate"`
	EndDate   time.Time `db:"end_date" json:"endDate"`
	ImageURL  *string   `db:"image_url" json:"imageUrl,omitempty"`
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt time.Time `db:"updated_at" json:"updatedAt"`
}

// TripSummary is a trip row as shown in the trip list.
type TripSummary struct {
	Trip
	DayCount  int `db:"day_count" json:"dayCount"`
	SpotCount int `db:"spot_count" json:"spotCount"`
}

type TripInfo struct {
	ID                    uuid.UUID     `db:"id" json:"id"`
	TripID                uuid.UUID     `db:"trip_id" json:"tripId"`
	Date                  time.Time     `db:"date" json:"date"`
	GenreID               *int          `db:"genre_id" json:"genreId,omitempty"`
	TransportationMethods pq.Int64Array `db:"transportation_methods" json:"transportationMethods"`
	Memo                  *string       `db:"memo" json:"memo,omitempty"`
}

type Plan struct {
	ID     uuid.UUID `db:"id" json:"id"`
	TripID uuid.UUID `db:"trip_id" json:"tripId"`
	Date   time.Time `db:"date" json:"date"`
}

type PlanSpot struct {
	ID        uuid.UUID `db:"id" json:"id"`
	PlanID    uuid.UUID `db:"plan_id" json:"planId"`
	SpotID    string    `db:"spot_id" json:"spotId"`
	StayStart string    `db:"stay_start" json:"stayStart"`
	StayEnd   string    `db:"stay_end" json:"stayEnd"`
	Order     int       `db:"sort_order" json:"order"`
	Memo      *string   `db:"memo" json:"memo,omitempty"`
}

type TransportNode string

const (
	TransportNodeDeparture   TransportNode = "DEPARTURE"
	TransportNodeSpot        TransportNode = "SPOT"
	TransportNodeDestination TransportNode = "DESTINATION"
)

func (n TransportNode) Valid() bool {
	switch n {
	case TransportNodeDeparture, TransportNodeSpot, TransportNodeDestination:
		return true
	default:
		return false
	}
}

// Transport is one leg between two nodes of a day plan. Plan spot ids are
// nil for the departure and destination sentinels.
type Transport struct {
	ID              uuid.UUID     `db:"id" json:"id"`
	PlanID          uuid.UUID     `db:"plan_id" json:"planId"`
	FromType        TransportNode `db:"from_type" json:"fromType"`
	FromPlanSpotID  *uuid.UUID    `db:"from_plan_spot_id" json:"fromPlanSpotId,omitempty"`
	ToType          TransportNode `db:"to_type" json:"toType"`
	ToPlanSpotID    *uuid.UUID    `db:"to_plan_spot_id" json:"toPlanSpotId,omitempty"`
	TravelTime      *int          `db:"travel_time" json:"travelTime,omitempty"`
	Fee             *int          `db:"fee" json:"fee,omitempty"`
	TransportMethod int           `db:"transport_method" json:"transportMethod"`
}

type PlanSpotDetail struct {
	PlanSpot
	Spot SpotDetail `json:"spot"`
}

type PlanDetail struct {
	Plan
	Spots      []PlanSpotDetail `json:"spots"`
	Transports []Transport      `json:"transports"`
}

type TripDetail struct {
	Trip
	Infos []TripInfo   `json:"infos"`
	Plans []PlanDetail `json:"plans"`
}

// TripGraph is everything a trip write persists, built from a validated
// planner state.
type TripGraph struct {
	Trip  Trip
	Infos []TripInfo
	Spots []SpotDetail
	Days  []DayGraph
}

type DayGraph struct {
	Plan       Plan
	Spots      []PlanSpot
	Transports []Transport
}

// PlanSpotPatch carries the optional fields of a plan spot update.
type PlanSpotPatch struct {
	StayStart *string
	StayEnd   *string
	Order     *int
	Memo      *string
}
