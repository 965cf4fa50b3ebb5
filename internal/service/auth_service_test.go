package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"google.golang.org/api/idtoken"

	"github.com/moptabi/moptabi-backend/internal/domain"
	"github.com/moptabi/moptabi-backend/internal/util"
)

func TestAuthService_Login_PromotesAdminEmailsAndIssuesToken(t *testing.T) {
	users := newFakeUserRepo()
	sessions := util.NewJWTManager("secret", time.Hour)
	svc := NewAuthService(users, sessions, AuthConfig{AdminEmails: []string{" Admin@Example.com "}})

	result, err := svc.Login(context.Background(), domain.Identity{UserID: "u-admin", Email: "admin@example.com"})
	if err != nil {
		t.Fatalf("Login returned error: %v", err)
	}
	if result.User.Role != domain.UserRoleAdmin {
		t.Fatalf("expected ADMIN role, got %s", result.User.Role)
	}
	if result.Token == "" || result.ExpiresAt == nil {
		t.Fatalf("expected a session token")
	}

	identity, err := svc.IdentityFromToken(context.Background(), result.Token)
	if err != nil {
		t.Fatalf("IdentityFromToken returned error: %v", err)
	}
	if identity.UserID != "u-admin" || identity.Email != "admin@example.com" {
		t.Fatalf("unexpected identity: %+v", identity)
	}

	plain, err := svc.Login(context.Background(), domain.Identity{UserID: "u-plain", Email: "someone@example.com"})
	if err != nil {
		t.Fatalf("Login returned error: %v", err)
	}
	if plain.User.Role != domain.UserRoleUser {
		t.Fatalf("expected USER role, got %s", plain.User.Role)
	}
}

func TestAuthService_IdentityFromToken_FallsBackToGoogle(t *testing.T) {
	svc := NewAuthService(newFakeUserRepo(), util.NewJWTManager("secret", time.Hour), AuthConfig{GoogleAudience: "client-id"})
	var gotAudience string
	svc.SetGoogleValidator(func(ctx context.Context, token, audience string) (*idtoken.Payload, error) {
		gotAudience = audience
		if token != "google-token" {
			return nil, errors.New("bad token")
		}
		return &idtoken.Payload{
			Subject: "google-123",
			Claims:  map[string]interface{}{"email": "g@example.com", "name": "Hanako"},
		}, nil
	})

	identity, err := svc.IdentityFromToken(context.Background(), "google-token")
	if err != nil {
		t.Fatalf("IdentityFromToken returned error: %v", err)
	}
	if gotAudience != "client-id" {
		t.Fatalf("expected audience client-id, got %q", gotAudience)
	}
	if identity.UserID != "google-123" || identity.Email != "g@example.com" || identity.Name == nil || *identity.Name != "Hanako" {
		t.Fatalf("unexpected identity: %+v", identity)
	}

	if _, err := svc.IdentityFromToken(context.Background(), "nope"); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}
}

func TestAuthService_IdentityFromToken_RejectsWithoutGoogle(t *testing.T) {
	svc := NewAuthService(newFakeUserRepo(), util.NewJWTManager("secret", time.Hour), AuthConfig{})
	if _, err := svc.IdentityFromToken(context.Background(), "garbage"); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}
	if _, err := svc.IdentityFromToken(context.Background(), " "); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized for an empty token, got %v", err)
	}
}

func TestAuthService_Authenticate_ProvisionsOnFirstRequest(t *testing.T) {
	users := newFakeUserRepo(domain.User{ID: "existing", Role: domain.UserRoleGuest, Email: "old@example.com"})
	svc := NewAuthService(users, nil, AuthConfig{})

	existing, err := svc.Authenticate(context.Background(), domain.Identity{UserID: "existing", Email: "new@example.com"})
	if err != nil {
		t.Fatalf("Authenticate returned error: %v", err)
	}
	if existing.Role != domain.UserRoleGuest || existing.Email != "old@example.com" {
		t.Fatalf("expected the stored user untouched, got %+v", existing)
	}

	created, err := svc.Authenticate(context.Background(), domain.Identity{UserID: "fresh", Email: "fresh@example.com"})
	if err != nil {
		t.Fatalf("Authenticate returned error: %v", err)
	}
	if created.ID != "fresh" || created.Role != domain.UserRoleUser {
		t.Fatalf("unexpected provisioned user: %+v", created)
	}

	if _, err := svc.Authenticate(context.Background(), domain.Identity{Email: "x@example.com"}); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized without user id, got %v", err)
	}
}

func TestAuthService_Login_WithoutSessionsOmitsToken(t *testing.T) {
	svc := NewAuthService(newFakeUserRepo(), nil, AuthConfig{})
	result, err := svc.Login(context.Background(), domain.Identity{UserID: "u", Email: "u@example.com"})
	if err != nil {
		t.Fatalf("Login returned error: %v", err)
	}
	if result.Token != "" || result.ExpiresAt != nil {
		t.Fatalf("expected no token, got %+v", result)
	}
	if _, err := svc.Me(context.Background(), "missing"); !errors.Is(err, ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
}

func TestDashboardService_Stats(t *testing.T) {
	now := time.Now()
	old := now.Add(-60 * 24 * time.Hour)
	users := newFakeUserRepo(
		domain.User{ID: "a", Role: domain.UserRoleAdmin, CreatedAt: old, LastLoginAt: &now},
		domain.User{ID: "b", Role: domain.UserRoleUser, CreatedAt: now, LastLoginAt: &old},
		domain.User{ID: "c", Role: domain.UserRoleUser, CreatedAt: now.Add(-time.Hour)},
	)
	trips := newFakeTripRepo()
	trips.trips[uuid.New()] = domain.Trip{UserID: "a"}
	wishlists := &fakeWishlistRepo{rows: []domain.Wishlist{{UserID: "a"}, {UserID: "b"}}}
	notifications := newFakeNotificationRepo()

	svc := NewDashboardService(users, trips, wishlists, notifications)
	stats, err := svc.Stats(context.Background())
	if err != nil {
		t.Fatalf("Stats returned error: %v", err)
	}
	if stats.TotalUsers != 3 || stats.ActiveUsers != 1 {
		t.Fatalf("unexpected user counts: %+v", stats)
	}
	if stats.UsersByRole[domain.UserRoleUser] != 2 || stats.UsersByRole[domain.UserRoleAdmin] != 1 || stats.UsersByRole[domain.UserRoleGuest] != 0 {
		t.Fatalf("unexpected role counts: %v", stats.UsersByRole)
	}
	if stats.TotalTrips != 1 || stats.TotalWishlistSpots != 2 || stats.TotalNotifications != 0 {
		t.Fatalf("unexpected totals: %+v", stats)
	}
	if len(stats.RecentUsers) != 3 || stats.RecentUsers[0].ID != "b" {
		t.Fatalf("expected newest user first, got %+v", stats.RecentUsers)
	}
}
