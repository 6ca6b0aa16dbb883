package auth

import (
	"time"

	"github.com/google/uuid"

	"github.com/RegaWeng/riseUp/pkg/role"
)

// User is a domain entity representing an account.
type User struct {
	ID           uuid.UUID
	Name         string
	Email        string
	PasswordHash string
	Type         role.AccountType
	CreatedAt    time.Time
}

// IsAdmin reports whether the account may switch role-contexts.
func (u User) IsAdmin() bool { return u.Type == role.AccountAdmin }
