package domain

import (
	"time"
)

type UserRole string

const (
	UserRoleAdmin UserRole = "ADMIN"
	UserRoleUser  UserRole = "USER"
	UserRoleGuest UserRole = "GUEST"
)

func (r UserRole) Valid() bool {
	switch r {
	case UserRoleAdmin, UserRoleUser, UserRoleGuest:
		return true
	default:
		return false
	}
}

type User struct {
	ID          string     `db:"id" json:"id"`
	Role        UserRole   `db:"role" json:"role"`
	Email       string     `db:"email" json:"email"`
	Name        *string    `db:"name" json:"name,omitempty"`
	Image       *string    `db:"image" json:"image,omitempty"`
	CreatedAt   time.Time  `db:"created_at" json:"createdAt"`
	LastLoginAt *time.Time `db:"last_login_at" json:"lastLoginAt,omitempty"`
}

func (u *User) IsAdmin() bool {
	return u != nil && u.Role == UserRoleAdmin
}

// Identity is what the identity provider tells us about the caller before
// the user row is loaded.
type Identity struct {
	UserID string
	Email  string
	Name   *string
	Image  *string
}
