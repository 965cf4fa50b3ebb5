package domain

import (
	"time"

	"github.com/lib/pq"
)

// Spot is the identity row of a place; its display data lives in SpotMeta.
type Spot struct {
	ID        string    `db:"id" json:"id"`
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
}

type SpotMeta struct {
	SpotID       string         `db:"spot_id" json:"spotId"`
	Name         string         `db:"name" json:"name"`
	Latitude     float64        `db:"latitude" json:"latitude"`
	Longitude    float64        `db:"longitude" json:"longitude"`
	Image        *string        `db:"image" json:"image,omitempty"`
	Rating       *float64       `db:"rating" json:"rating,omitempty"`
	Categories   pq.StringArray `db:"categories" json:"categories"`
	Catchphrase  *string        `db:"catchphrase" json:"catchphrase,omitempty"`
	Description  *string        `db:"description" json:"description,omitempty"`
	OpeningHours pq.StringArray `db:"opening_hours" json:"openingHours"`
	Address      *string        `db:"address" json:"address,omitempty"`
}

type NearestStation struct {
	SpotID         string   `db:"spot_id" json:"-"`
	Name           string   `db:"name" json:"name"`
	WalkingMinutes int      `db:"walking_minutes" json:"walkingMinutes"`
	Latitude       *float64 `db:"latitude" json:"latitude,omitempty"`
	Longitude      *float64 `db:"longitude" json:"longitude,omitempty"`
}

type SpotDetail struct {
	ID             string          `json:"id"`
	Meta           SpotMeta        `json:"meta"`
	NearestStation *NearestStation `json:"nearestStation,omitempty"`
}
