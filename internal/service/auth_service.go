package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"google.golang.org/api/idtoken"

	"github.com/moptabi/moptabi-backend/internal/domain"
	"github.com/moptabi/moptabi-backend/internal/repository/ports"
	"github.com/moptabi/moptabi-backend/internal/util"
)

var (
	ErrInvalidToken = errors.New("invalid token")
	ErrUnauthorized = errors.New("unauthorized")
	ErrUserNotFound = errors.New("user not found")
)

// GoogleTokenValidator verifies a Google ID token for the given audience.
type GoogleTokenValidator func(ctx context.Context, token, audience string) (*idtoken.Payload, error)

type AuthConfig struct {
	GoogleAudience string
	AdminEmails    []string
	Logger         *slog.Logger
}

type AuthService struct {
	users          ports.UserRepository
	sessions       *util.JWTManager
	googleAudience string
	validateGoogle GoogleTokenValidator
	admins         map[string]struct{}
	logger         *slog.Logger
}

type LoginResult struct {
	User      *domain.User `json:"user"`
	Token     string       `json:"token,omitempty"`
	ExpiresAt *time.Time   `json:"expiresAt,omitempty"`
}

func NewAuthService(users ports.UserRepository, sessions *util.JWTManager, cfg AuthConfig) *AuthService {
	admins := make(map[string]struct{}, len(cfg.AdminEmails))
	for _, email := range cfg.AdminEmails {
		email = strings.ToLower(strings.TrimSpace(email))
		if email != "" {
			admins[email] = struct{}{}
		}
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &AuthService{
		users:          users,
		sessions:       sessions,
		googleAudience: strings.TrimSpace(cfg.GoogleAudience),
		validateGoogle: idtoken.Validate,
		admins:         admins,
		logger:         logger,
	}
}

// SetGoogleValidator replaces the Google ID token check.
func (s *AuthService) SetGoogleValidator(v GoogleTokenValidator) {
	s.validateGoogle = v
}

// IdentityFromToken accepts a session token issued by Login and, when a
// Google audience is configured, a Google ID token.
func (s *AuthService) IdentityFromToken(ctx context.Context, token string) (*domain.Identity, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, ErrUnauthorized
	}

	if s.sessions != nil {
		claims, err := s.sessions.Parse(token)
		if err == nil {
			return &domain.Identity{
				UserID: claims.Subject,
				Email:  claims.Email,
				Name:   claims.Name,
				Image:  claims.Picture,
			}, nil
		}
		if s.googleAudience == "" {
			return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
		}
	}

	if s.googleAudience == "" || s.validateGoogle == nil {
		return nil, ErrInvalidToken
	}
	payload, err := s.validateGoogle(ctx, token, s.googleAudience)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	identity := &domain.Identity{UserID: payload.Subject}
	identity.Email, _ = payload.Claims["email"].(string)
	if name, ok := payload.Claims["name"].(string); ok && name != "" {
		identity.Name = &name
	}
	if picture, ok := payload.Claims["picture"].(string); ok && picture != "" {
		identity.Image = &picture
	}
	if identity.UserID == "" {
		return nil, ErrInvalidToken
	}
	return identity, nil
}

// Login upserts the caller, stamps the login time and issues a session
// token when a session secret is configured.
func (s *AuthService) Login(ctx context.Context, identity domain.Identity) (*LoginResult, error) {
	if err := validateIdentity(identity); err != nil {
		return nil, err
	}
	user, err := s.users.Upsert(ctx, identity, s.isAdminEmail(identity.Email))
	if err != nil {
		return nil, err
	}
	s.logger.Info("user signed in", slog.String("user_id", user.ID), slog.String("role", string(user.Role)))

	result := &LoginResult{User: user}
	if s.sessions != nil {
		token, expiresAt, err := s.sessions.Generate(user.ID, user.Email, user.Name, user.Image)
		if err != nil {
			return nil, err
		}
		result.Token = token
		result.ExpiresAt = &expiresAt
	}
	return result, nil
}

// Authenticate loads the user behind an identity, creating the row on the
// first request.
func (s *AuthService) Authenticate(ctx context.Context, identity domain.Identity) (*domain.User, error) {
	if err := validateIdentity(identity); err != nil {
		return nil, err
	}
	user, err := s.users.FindByID(ctx, identity.UserID)
	if err == nil {
		return user, nil
	}
	if !isNotFound(err) {
		return nil, err
	}
	return s.users.Upsert(ctx, identity, s.isAdminEmail(identity.Email))
}

func (s *AuthService) Me(ctx context.Context, userID string) (*domain.User, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		if isNotFound(err) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return user, nil
}

func (s *AuthService) isAdminEmail(email string) bool {
	_, ok := s.admins[strings.ToLower(strings.TrimSpace(email))]
	return ok
}

func validateIdentity(identity domain.Identity) error {
	if strings.TrimSpace(identity.UserID) == "" {
		return ErrUnauthorized
	}
	if strings.TrimSpace(identity.Email) == "" {
		return newValidationError("email is required", map[string]string{"email": "required"})
	}
	return nil
}
