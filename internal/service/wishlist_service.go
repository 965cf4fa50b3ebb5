package service

import (
	"context"
	"errors"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/moptabi/moptabi-backend/internal/domain"
	"github.com/moptabi/moptabi-backend/internal/repository/ports"
)

const defaultWishlistPriority = 3

var (
	ErrWishlistDuplicate = errors.New("このスポットは既に行きたいリストに追加されています")
	ErrWishlistNotFound  = errors.New("wishlist entry not found")
)

type WishlistService struct {
	wishlists ports.WishlistRepository
	spots     ports.SpotRepository
	tx        ports.TxManager
}

// WishlistInput is a new wishlist entry together with the spot it points at.
type WishlistInput struct {
	Spot     domain.SpotDetail
	Priority int
	Memo     *string
	Visited  bool
}

func NewWishlistService(wishlists ports.WishlistRepository, spots ports.SpotRepository, tx ports.TxManager) *WishlistService {
	return &WishlistService{wishlists: wishlists, spots: spots, tx: tx}
}

func (s *WishlistService) List(ctx context.Context, userID string, filter domain.WishlistFilter) ([]domain.WishlistItem, error) {
	if filter.SortBy == "" {
		filter.SortBy = domain.WishlistSortCreatedAt
	}
	if filter.SortOrder == "" {
		filter.SortOrder = domain.SortOrderDesc
	}
	return s.wishlists.List(ctx, userID, filter)
}

// Add stores the spot and the wishlist row together. The per-user cap is
// checked inside the same transaction.
func (s *WishlistService) Add(ctx context.Context, userID string, input WishlistInput) (*domain.WishlistItem, error) {
	if input.Priority == 0 {
		input.Priority = defaultWishlistPriority
	}
	if err := validateWishlistInput(input); err != nil {
		return nil, err
	}

	var created *domain.Wishlist
	err := s.tx.RunInTx(ctx, func(ctx context.Context) error {
		count, err := s.wishlists.CountByUser(ctx, userID, nil)
		if err != nil {
			return err
		}
		if count >= domain.MaxWishlistSpots {
			return ErrWishlistLimitExceeded
		}
		if err := s.spots.Upsert(ctx, input.Spot); err != nil {
			return err
		}
		created, err = s.wishlists.Create(ctx, &domain.Wishlist{
			UserID:   userID,
			SpotID:   input.Spot.ID,
			Priority: input.Priority,
			Memo:     input.Memo,
			Visited:  input.Visited,
		})
		return err
	})
	if err != nil {
		if isUniqueViolation(err) {
			return nil, ErrWishlistDuplicate
		}
		return nil, err
	}
	return &domain.WishlistItem{Wishlist: *created, Spot: input.Spot}, nil
}

func (s *WishlistService) Update(ctx context.Context, userID string, id uuid.UUID, patch domain.WishlistPatch) (*domain.Wishlist, error) {
	details := map[string]string{}
	if patch.Priority != nil && !validPriority(*patch.Priority) {
		details["priority"] = "priority must be between 1 and 5"
	}
	if patch.Memo != nil && utf8.RuneCountInString(*patch.Memo) > domain.MaxMemoLength {
		details["memo"] = domain.MemoLengthMessage
	}
	if len(details) > 0 {
		return nil, newValidationError("invalid wishlist update", details)
	}

	updated, err := s.wishlists.Update(ctx, userID, id, patch)
	if err != nil {
		if isNotFound(err) {
			return nil, ErrWishlistNotFound
		}
		return nil, err
	}
	return updated, nil
}

func (s *WishlistService) Delete(ctx context.Context, userID string, id uuid.UUID) error {
	if err := s.wishlists.Delete(ctx, userID, id); err != nil {
		if isNotFound(err) {
			return ErrWishlistNotFound
		}
		return err
	}
	return nil
}

func validateWishlistInput(input WishlistInput) error {
	details := map[string]string{}
	if strings.TrimSpace(input.Spot.ID) == "" {
		details["spot.id"] = "required"
	}
	if strings.TrimSpace(input.Spot.Meta.Name) == "" {
		details["spot.name"] = "required"
	}
	if !validPriority(input.Priority) {
		details["priority"] = "priority must be between 1 and 5"
	}
	if input.Memo != nil && utf8.RuneCountInString(*input.Memo) > domain.MaxMemoLength {
		details["memo"] = domain.MemoLengthMessage
	}
	if len(details) > 0 {
		return newValidationError("invalid wishlist entry", details)
	}
	return nil
}

func validPriority(p int) bool {
	return p >= domain.MinWishlistPriority && p <= domain.MaxWishlistPriority
}
