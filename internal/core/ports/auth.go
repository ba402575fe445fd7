package ports

import (
	"context"

	"github.com/peerrent/rental-system/internal/core/domain"
)

// ProfileUpdate carries the mutable profile fields; nil means leave unchanged.
type ProfileUpdate struct {
	Name         *string
	Bio          *string
	Address      *string
	ProfileImage *string
}

// UserRepository defines persistence for user accounts.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) (*domain.User, error)
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	FindByID(ctx context.Context, id string) (*domain.User, error)
	UpdateProfile(ctx context.Context, id string, upd ProfileUpdate) (*domain.User, error)
	// UpdateRating writes the recomputed aggregate rating for a user.
	UpdateRating(ctx context.Context, id string, rating float64) error
}

// AuthService implements registration, login, and profile access.
type AuthService interface {
	// Register creates an account and returns it with a fresh session token.
	Register(ctx context.Context, name, email, password, role string) (*domain.User, string, error)
	// Login verifies credentials and returns a session token with the user.
	Login(ctx context.Context, email, password string) (string, *domain.User, error)
	Profile(ctx context.Context, userID string) (*domain.User, error)
	UpdateProfile(ctx context.Context, userID string, upd ProfileUpdate) (*domain.User, error)
}
