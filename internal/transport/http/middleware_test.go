package http

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/moptabi/moptabi-backend/internal/domain"
	"github.com/moptabi/moptabi-backend/internal/service"
	"github.com/moptabi/moptabi-backend/internal/util"
)

func newAuthEcho(t *testing.T, repo *memoryUserRepo, sessions *util.JWTManager, allowHeaders bool) *echo.Echo {
	t.Helper()
	auth := service.NewAuthService(repo, sessions, service.AuthConfig{AdminEmails: []string{"admin@example.com"}})
	resolver := NewIdentityResolver(auth, allowHeaders)
	e := echo.New()
	e.Validator = NewRequestValidator()
	RegisterAuth(e, resolver, auth, nil)
	return e
}

func TestRequireAuthProvisionsHeaderUser(t *testing.T) {
	repo := newMemoryUserRepo()
	e := newAuthEcho(t, repo, nil, true)

	req := httptest.NewRequest(http.MethodGet, "/auth", nil)
	req.Header.Set(HeaderUserID, "google-123")
	req.Header.Set(HeaderUserEmail, "traveler@example.com")
	req.Header.Set(HeaderUserName, "Hanako")
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var body struct {
		User domain.User `json:"user"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if user := body.User; user.ID != "google-123" || user.Role != domain.UserRoleUser {
		t.Fatalf("unexpected user %+v", body.User)
	}
	if _, err := repo.FindByID(req.Context(), "google-123"); err != nil {
		t.Fatalf("expected user row to be created: %v", err)
	}
}

func TestRequireAuthRejectsHeadersWhenDisabled(t *testing.T) {
	e := newAuthEcho(t, newMemoryUserRepo(), nil, false)

	req := httptest.NewRequest(http.MethodGet, "/auth", nil)
	req.Header.Set(HeaderUserID, "google-123")
	req.Header.Set(HeaderUserEmail, "traveler@example.com")
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

func TestRequireAuthRejectsMissingEmail(t *testing.T) {
	e := newAuthEcho(t, newMemoryUserRepo(), nil, true)

	req := httptest.NewRequest(http.MethodGet, "/auth", nil)
	req.Header.Set(HeaderUserID, "google-123")
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

func TestRequireAuthAcceptsSessionToken(t *testing.T) {
	sessions := util.NewJWTManager("test-secret", time.Hour)
	token, _, err := sessions.Generate("google-9", "nine@example.com", nil, nil)
	if err != nil {
		t.Fatalf("generate token: %v", err)
	}
	e := newAuthEcho(t, newMemoryUserRepo(), sessions, false)

	req := httptest.NewRequest(http.MethodGet, "/auth", nil)
	req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	req = httptest.NewRequest(http.MethodGet, "/auth", nil)
	req.Header.Set(echo.HeaderAuthorization, "Bearer not-a-token")
	rec = httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for a bad token, got %d", rec.Code)
	}
}

func TestRequireAdminForbidsRegularUser(t *testing.T) {
	e := newAuthEcho(t, newMemoryUserRepo(), nil, true)

	req := httptest.NewRequest(http.MethodGet, "/auth/dashboard", nil)
	req.Header.Set(HeaderUserID, "google-123")
	req.Header.Set(HeaderUserEmail, "traveler@example.com")
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", rec.Code)
	}
}

func TestLoginPromotesAdminEmail(t *testing.T) {
	e := newAuthEcho(t, newMemoryUserRepo(), nil, true)

	req := httptest.NewRequest(http.MethodPost, "/auth", nil)
	req.Header.Set(HeaderUserID, "google-1")
	req.Header.Set(HeaderUserEmail, "Admin@Example.com")
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var result service.LoginResult
	if err := json.Unmarshal(rec.Body.Bytes(), &result); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if result.User == nil || result.User.Role != domain.UserRoleAdmin {
		t.Fatalf("expected admin user, got %+v", result.User)
	}
	if result.Token != "" {
		t.Fatalf("expected no session token without a secret, got %q", result.Token)
	}
}
