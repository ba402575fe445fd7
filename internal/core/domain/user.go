package domain

import (
	"errors"
	"time"
)

const (
	RoleRenter = "renter"
	RoleVendor = "vendor"
	RoleAdmin  = "admin"
)

var ErrUserExists = errors.New("user already exists")
var ErrUserNotFound = errors.New("user not found")
var ErrInvalidCredentials = errors.New("invalid credentials")
var ErrForbidden = errors.New("access forbidden")

// ValidRole reports whether r is one of the known marketplace roles.
func ValidRole(r string) bool {
	return r == RoleRenter || r == RoleVendor || r == RoleAdmin
}

// User models a registered marketplace account. PasswordHash is never
// serialized to JSON.
type User struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Role         string    `json:"role"`
	ProfileImage string    `json:"profile_image,omitempty"`
	Bio          string    `json:"bio,omitempty"`
	Address      string    `json:"address,omitempty"`
	Rating       float64   `json:"rating"`
	Verified     bool      `json:"verified"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}
