package service

import (
	"context"
	"errors"

	"github.com/moptabi/moptabi-backend/internal/domain"
	"github.com/moptabi/moptabi-backend/internal/repository/ports"
)

var ErrSpotNotFound = errors.New("spot not found")

type SpotService struct {
	spots     ports.SpotRepository
	wishlists ports.WishlistRepository
}

type SpotPage struct {
	Spots      []domain.WishlistItem `json:"spots"`
	Pagination domain.Pagination     `json:"pagination"`
}

func NewSpotService(spots ports.SpotRepository, wishlists ports.WishlistRepository) *SpotService {
	return &SpotService{spots: spots, wishlists: wishlists}
}

func (s *SpotService) Get(ctx context.Context, id string) (*domain.SpotDetail, error) {
	spot, err := s.spots.FindByID(ctx, id)
	if err != nil {
		if isNotFound(err) {
			return nil, ErrSpotNotFound
		}
		return nil, err
	}
	return spot, nil
}

// ListByVisited pages through the caller's wishlist spots with the given
// visited flag, most recently visited or added first.
func (s *SpotService) ListByVisited(ctx context.Context, userID string, visited bool, page, limit int) (*SpotPage, error) {
	page, limit = normalizePage(page, limit)

	total, err := s.wishlists.CountByUser(ctx, userID, &visited)
	if err != nil {
		return nil, err
	}
	items, err := s.wishlists.List(ctx, userID, domain.WishlistFilter{
		Visited:   &visited,
		SortBy:    domain.WishlistSortCreatedAt,
		SortOrder: domain.SortOrderDesc,
		Limit:     limit,
		Offset:    domain.PageOffset(page, limit),
	})
	if err != nil {
		return nil, err
	}
	if items == nil {
		items = []domain.WishlistItem{}
	}
	return &SpotPage{Spots: items, Pagination: domain.CalculatePagination(total, page, limit)}, nil
}
