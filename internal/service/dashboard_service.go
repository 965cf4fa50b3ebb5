package service

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/moptabi/moptabi-backend/internal/domain"
	"github.com/moptabi/moptabi-backend/internal/repository/ports"
)

const (
	dashboardActiveWindow = 30 * 24 * time.Hour
	dashboardRecentUsers  = 5
)

type DashboardService struct {
	users         ports.UserRepository
	trips         ports.TripRepository
	wishlists     ports.WishlistRepository
	notifications ports.NotificationRepository
	now           func() time.Time
}

func NewDashboardService(users ports.UserRepository, trips ports.TripRepository, wishlists ports.WishlistRepository, notifications ports.NotificationRepository) *DashboardService {
	return &DashboardService{
		users:         users,
		trips:         trips,
		wishlists:     wishlists,
		notifications: notifications,
		now:           time.Now,
	}
}

// Stats runs the independent counts concurrently and fails on the first
// error.
func (s *DashboardService) Stats(ctx context.Context) (*domain.DashboardStats, error) {
	var (
		stats  domain.DashboardStats
		byRole []domain.RoleCount
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		stats.TotalUsers, err = s.users.Count(gctx)
		return err
	})
	g.Go(func() (err error) {
		stats.ActiveUsers, err = s.users.CountActiveSince(gctx, s.now().Add(-dashboardActiveWindow))
		return err
	})
	g.Go(func() (err error) {
		byRole, err = s.users.CountByRole(gctx)
		return err
	})
	g.Go(func() (err error) {
		stats.TotalTrips, err = s.trips.Count(gctx)
		return err
	})
	g.Go(func() (err error) {
		stats.TotalWishlistSpots, err = s.wishlists.Count(gctx)
		return err
	})
	g.Go(func() (err error) {
		stats.TotalNotifications, err = s.notifications.Count(gctx)
		return err
	})
	g.Go(func() (err error) {
		stats.RecentUsers, err = s.users.ListRecent(gctx, dashboardRecentUsers)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	stats.UsersByRole = map[domain.UserRole]int64{
		domain.UserRoleAdmin: 0,
		domain.UserRoleUser:  0,
		domain.UserRoleGuest: 0,
	}
	for _, rc := range byRole {
		stats.UsersByRole[rc.Role] = rc.Count
	}
	if stats.RecentUsers == nil {
		stats.RecentUsers = []domain.User{}
	}
	return &stats, nil
}
