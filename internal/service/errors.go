package service

import (
	"database/sql"
	"errors"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/moptabi/moptabi-backend/internal/domain"
)

var (
	ErrValidation = errors.New("validation failed")
	ErrForbidden  = errors.New("forbidden")

	ErrWishlistLimitExceeded = errors.New(domain.WishlistLimitMessage)
	ErrPlanLimitExceeded     = errors.New(domain.PlanLimitMessage)
	ErrSpotLimitExceeded     = errors.New(domain.SpotsPerDayMessage)
)

// ValidationError carries field-level details back to the client. It
// matches ErrValidation with errors.Is.
type ValidationError struct {
	Message string
	Details any
}

func (e *ValidationError) Error() string {
	return e.Message
}

func (e *ValidationError) Unwrap() error {
	return ErrValidation
}

func newValidationError(message string, details any) *ValidationError {
	return &ValidationError{Message: message, Details: details}
}

func isNotFound(err error) bool {
	return errors.Is(err, sql.ErrNoRows)
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

func normalizePage(page, limit int) (int, int) {
	if page < 1 {
		page = domain.DefaultPage
	}
	if limit <= 0 {
		limit = domain.DefaultPageLimit
	}
	if limit > domain.MaxPageLimit {
		limit = domain.MaxPageLimit
	}
	return page, limit
}
