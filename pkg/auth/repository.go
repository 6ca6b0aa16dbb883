package auth

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

// Common errors used by repository/use cases
var (
	ErrNotFound           = errors.New("not found")
	ErrUserAlreadyExists  = errors.New("user already exists")
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrInvalidAccountType is returned for unknown types and for admin
	// self-registration.
	ErrInvalidAccountType = errors.New("invalid account type")
)

// UserRepository abstracts persistence concerns from the domain layer.
// Implementations may be in-memory, SQL, NoSQL, etc.
type UserRepository interface {
	Create(ctx context.Context, user User) error
	GetByEmail(ctx context.Context, email string) (User, error)
	GetByID(ctx context.Context, id uuid.UUID) (User, error)
	// DeleteByEmail removes accounts by email; missing emails are ignored.
	DeleteByEmail(ctx context.Context, emails ...string) (int64, error)
}
