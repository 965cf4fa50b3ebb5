package http

import (
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/moptabi/moptabi-backend/internal/domain"
	"github.com/moptabi/moptabi-backend/internal/service"
	"github.com/moptabi/moptabi-backend/internal/util"
)

const (
	contextUserKey     = "moptabi.user"
	contextIdentityKey = "moptabi.identity"

	HeaderUserID    = "X-User-Id"
	HeaderUserEmail = "X-User-Email"
	HeaderUserName  = "X-User-Name"
	HeaderUserImage = "X-User-Image"
)

var errNoCredentials = errors.New("authentication required")

// IdentityResolver reads the caller's identity from a bearer token or, when
// header auth is enabled, from the X-User-* headers.
type IdentityResolver struct {
	auth         *service.AuthService
	allowHeaders bool
}

func NewIdentityResolver(auth *service.AuthService, allowHeaders bool) *IdentityResolver {
	return &IdentityResolver{auth: auth, allowHeaders: allowHeaders}
}

func (r *IdentityResolver) Resolve(c echo.Context) (*domain.Identity, error) {
	header := strings.TrimSpace(c.Request().Header.Get(echo.HeaderAuthorization))
	if header != "" {
		parts := strings.SplitN(header, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
			return nil, errors.New("invalid authorization header")
		}
		return r.auth.IdentityFromToken(c.Request().Context(), parts[1])
	}

	if !r.allowHeaders {
		return nil, errNoCredentials
	}
	h := c.Request().Header
	identity := &domain.Identity{
		UserID: strings.TrimSpace(h.Get(HeaderUserID)),
		Email:  strings.TrimSpace(h.Get(HeaderUserEmail)),
		Name:   optionalHeader(h.Get(HeaderUserName)),
		Image:  optionalHeader(h.Get(HeaderUserImage)),
	}
	if identity.UserID == "" {
		return nil, errNoCredentials
	}
	return identity, nil
}

func optionalHeader(value string) *string {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil
	}
	return &value
}

// RequireIdentity only resolves the identity; the user row may not exist yet.
func RequireIdentity(resolver *IdentityResolver) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			identity, err := resolver.Resolve(c)
			if err != nil {
				return c.JSON(http.StatusUnauthorized, util.Error(err.Error()))
			}
			c.Set(contextIdentityKey, identity)
			return next(c)
		}
	}
}

// RequireAuth resolves the identity and loads the user, creating it on the
// first request.
func RequireAuth(resolver *IdentityResolver) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			identity, err := resolver.Resolve(c)
			if err != nil {
				return c.JSON(http.StatusUnauthorized, util.Error(err.Error()))
			}
			user, err := resolver.auth.Authenticate(c.Request().Context(), *identity)
			if err != nil {
				if errors.Is(err, service.ErrUnauthorized) || errors.Is(err, service.ErrValidation) {
					return c.JSON(http.StatusUnauthorized, util.Error(err.Error()))
				}
				c.Logger().Errorf("authenticate: %v", err)
				return c.JSON(http.StatusInternalServerError, util.Error("unable to load user"))
			}
			c.Set(contextIdentityKey, identity)
			c.Set(contextUserKey, user)
			return next(c)
		}
	}
}

// RequireAdmin must run after RequireAuth.
func RequireAdmin() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			user, ok := CurrentUser(c)
			if !ok {
				return c.JSON(http.StatusUnauthorized, util.Error("authentication required"))
			}
			if !user.IsAdmin() {
				return c.JSON(http.StatusForbidden, util.Error("admin privileges required"))
			}
			return next(c)
		}
	}
}

func CurrentUser(c echo.Context) (*domain.User, bool) {
	user, ok := c.Get(contextUserKey).(*domain.User)
	return user, ok && user != nil
}

func currentIdentity(c echo.Context) (*domain.Identity, bool) {
	identity, ok := c.Get(contextIdentityKey).(*domain.Identity)
	return identity, ok && identity != nil
}
