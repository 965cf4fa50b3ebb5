package domain

import (
	"time"

	"github.com/google/uuid"
)

type Wishlist struct {
	ID        uuid.UUID  `db:"id" json:"id"`
	UserID    string     `db:"user_id" json:"userId"`
	SpotID    string     `db:"spot_id" json:"spotId"`
	Priority  int        `db:"priority" json:"priority"`
	Memo      *string    `db:"memo" json:"memo,omitempty"`
	Visited   bool       `db:"visited" json:"visited"`
	VisitedAt *time.Time `db:"visited_at" json:"visitedAt,omitempty"`
	CreatedAt time.Time  `db:"created_at" json:"createdAt"`
	UpdatedAt time.Time  `db:"updated_at" json:"updatedAt"`
}

type WishlistItem struct {
	Wishlist
	Spot SpotDetail `json:"spot"`
}

type WishlistSortField string

const (
	WishlistSortCreatedAt WishlistSortField = "createdAt"
	WishlistSortPriority  WishlistSortField = "priority"
)

type WishlistFilter struct {
	Visited   *bool
	SortBy    WishlistSortField
	SortOrder SortOrder
	Limit     int
	Offset    int
}

// WishlistPatch carries the optional fields of a wishlist update; nil means
// "leave unchanged".
type WishlistPatch struct {
	Priority *int
	Memo     *string
	Visited  *bool
}
