package http

import (
	"time"

	"github.com/moptabi/moptabi-backend/internal/domain"
)

// ErrorResponse is the body of every failed request.
type ErrorResponse struct {
	Error   string      `json:"error" example:"trip not found"`
	Details interface{} `json:"details,omitempty"`
}

type nearestStationRequest struct {
	Name           string   `json:"name" validate:"required,max=200"`
	WalkingMinutes int      `json:"walkingMinutes" validate:"gte=0"`
	Latitude       *float64 `json:"latitude,omitempty" validate:"omitempty,gte=-90,lte=90"`
	Longitude      *float64 `json:"longitude,omitempty" validate:"omitempty,gte=-180,lte=180"`
}

// spotRequest is a place as the client received it from the maps provider.
type spotRequest struct {
	ID             string                 `json:"id" validate:"required,max=255" example:"ChIJ8cM8zdaoAWARPR27azYdlsA"`
	Name           string                 `json:"name" validate:"required,max=200" example:"清水寺"`
	Latitude       float64                `json:"latitude" validate:"gte=-90,lte=90"`
	Longitude      float64                `json:"longitude" validate:"gte=-180,lte=180"`
	Image          *string                `json:"image,omitempty"`
	Rating         *float64               `json:"rating,omitempty" validate:"omitempty,gte=0,lte=5"`
	Categories     []string               `json:"categories,omitempty"`
	Catchphrase    *string                `json:"catchphrase,omitempty"`
	Description    *string                `json:"description,omitempty"`
	OpeningHours   []string               `json:"openingHours,omitempty"`
	Address        *string                `json:"address,omitempty"`
	NearestStation *nearestStationRequest `json:"nearestStation,omitempty"`
}

func (r spotRequest) detail() domain.SpotDetail {
	detail := domain.SpotDetail{
		ID: r.ID,
		Meta: domain.SpotMeta{
			SpotID:       r.ID,
			Name:         r.Name,
			Latitude:     r.Latitude,
			Longitude:    r.Longitude,
			Image:        r.Image,
			Rating:       r.Rating,
			Categories:   r.Categories,
			Catchphrase:  r.Catchphrase,
			Description:  r.Description,
			OpeningHours: r.OpeningHours,
			Address:      r.Address,
		},
	}
	if st := r.NearestStation; st != nil {
		detail.NearestStation = &domain.NearestStation{
			SpotID:         r.ID,
			Name:           st.Name,
			WalkingMinutes: st.WalkingMinutes,
			Latitude:       st.Latitude,
			Longitude:      st.Longitude,
		}
	}
	return detail
}

type loginRequest struct {
	Email *string `json:"email,omitempty" validate:"omitempty,email"`
	Name  *string `json:"name,omitempty" validate:"omitempty,max=100"`
	Image *string `json:"image,omitempty" validate:"omitempty,url"`
}

type wishlistCreateRequest struct {
	Spot     spotRequest `json:"spot" validate:"required"`
	Priority int         `json:"priority,omitempty" validate:"omitempty,min=1,max=5" example:"3"`
	Memo     *string     `json:"memo,omitempty" validate:"omitempty,max=1000"`
	Visited  bool        `json:"visited"`
}

type wishlistPatchRequest struct {
	Priority *int    `json:"priority,omitempty" validate:"omitempty,min=1,max=5"`
	Memo     *string `json:"memo,omitempty" validate:"omitempty,max=1000"`
	Visited  *bool   `json:"visited,omitempty"`
}

type planSpotCreateRequest struct {
	Spot      spotRequest `json:"spot" validate:"required"`
	StayStart string      `json:"stayStart,omitempty" validate:"hhmm" example:"10:00"`
	StayEnd   string      `json:"stayEnd,omitempty" validate:"hhmm" example:"11:30"`
	Memo      *string     `json:"memo,omitempty" validate:"omitempty,max=1000"`
}

type planSpotPatchRequest struct {
	StayStart *string `json:"stayStart,omitempty" validate:"omitempty,hhmm"`
	StayEnd   *string `json:"stayEnd,omitempty" validate:"omitempty,hhmm"`
	Order     *int    `json:"order,omitempty" validate:"omitempty,min=1"`
	Memo      *string `json:"memo,omitempty" validate:"omitempty,max=1000"`
}

type notificationRequest struct {
	Title       string     `json:"title" validate:"required,max=100" example:"メンテナンスのお知らせ"`
	Content     string     `json:"content" validate:"required,max=5000"`
	Type        string     `json:"type" validate:"required,oneof=INFO UPDATE MAINTENANCE EVENT" example:"INFO"`
	PublishedAt *time.Time `json:"publishedAt" validate:"required" example:"2025-05-01T09:00:00Z"`
}
