package planner

import (
	"github.com/moptabi/moptabi-backend/internal/domain"
)

type DateKey = domain.DateKey

// Role tells whether a spot is the day's departure point, a visited spot or
// the final destination.
type Role = domain.TransportNode

const (
	RoleDeparture   = domain.TransportNodeDeparture
	RoleSpot        = domain.TransportNodeSpot
	RoleDestination = domain.TransportNodeDestination
)

// Transport describes the leg leaving a spot towards the next node of the day.
type Transport struct {
	TransportMethod int  `json:"transportMethod"`
	TravelTime      *int `json:"travelTime,omitempty"`
	Fee             *int `json:"fee,omitempty"`
}

type Spot struct {
	ID             string                 `json:"id"`
	Role           Role                   `json:"role"`
	Name           string                 `json:"name"`
	Latitude       float64                `json:"latitude"`
	Longitude      float64                `json:"longitude"`
	Image          *string                `json:"image,omitempty"`
	Rating         *float64               `json:"rating,omitempty"`
	Categories     []string               `json:"categories,omitempty"`
	Catchphrase    *string                `json:"catchphrase,omitempty"`
	Description    *string                `json:"description,omitempty"`
	OpeningHours   []string               `json:"openingHours,omitempty"`
	Address        *string                `json:"address,omitempty"`
	NearestStation *domain.NearestStation `json:"nearestStation,omitempty"`
	StayStart      string                 `json:"stayStart,omitempty"`
	StayEnd        string                 `json:"stayEnd,omitempty"`
	Order          int                    `json:"order"`
	Memo           *string                `json:"memo,omitempty"`
	Transport      *Transport             `json:"transport,omitempty"`
}

// SpotPatch holds the fields EditSpots may change; nil fields are kept.
type SpotPatch struct {
	StayStart *string    `json:"stayStart,omitempty"`
	StayEnd   *string    `json:"stayEnd,omitempty"`
	Order     *int       `json:"order,omitempty"`
	Memo      *string    `json:"memo,omitempty"`
	Transport *Transport `json:"transport,omitempty"`
}

func (p SpotPatch) apply(s *Spot) {
	if p.StayStart != nil {
		s.StayStart = *p.StayStart
	}
	if p.StayEnd != nil {
		s.StayEnd = *p.StayEnd
	}
	if p.Order != nil {
		s.Order = *p.Order
	}
	if p.Memo != nil {
		s.Memo = p.Memo
	}
	if p.Transport != nil {
		t := *p.Transport
		s.Transport = &t
	}
}

// Meta converts the display fields into the persisted spot detail.
func (s Spot) Meta() domain.SpotDetail {
	detail := domain.SpotDetail{
		ID: s.ID,
		Meta: domain.SpotMeta{
			SpotID:       s.ID,
			Name:         s.Name,
			Latitude:     s.Latitude,
			Longitude:    s.Longitude,
			Image:        s.Image,
			Rating:       s.Rating,
			Categories:   s.Categories,
			Catchphrase:  s.Catchphrase,
			Description:  s.Description,
			OpeningHours: s.OpeningHours,
			Address:      s.Address,
		},
	}
	if s.NearestStation != nil {
		st := *s.NearestStation
		st.SpotID = s.ID
		detail.NearestStation = &st
	}
	return detail
}

// DayInfo is the per-day metadata of a trip.
type DayInfo struct {
	Date                  DateKey `json:"date"`
	GenreID               *int    `json:"genreId,omitempty"`
	TransportationMethods []int   `json:"transportationMethods,omitempty"`
	Memo                  *string `json:"memo,omitempty"`
}

type TripInfo struct {
	Title     string    `json:"title"`
	StartDate DateKey   `json:"startDate"`
	EndDate   DateKey   `json:"endDate"`
	Days      []DayInfo `json:"days,omitempty"`
}

type Day struct {
	Date  DateKey `json:"date"`
	Spots []Spot  `json:"spots"`
}

// State is the serialisable form of a builder, used as the trip write
// payload.
type State struct {
	TripInfo TripInfo `json:"tripInfo"`
	Plans    []Day    `json:"plans"`
}
