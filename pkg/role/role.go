// Package role describes the role-context used to partition saved state.
//
// An account has a type (user, employer or admin). The role-context is the
// effective role the account acts in: job seekers always act as "user",
// employers as "employer", admins pick either through their view mode.
package role

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrInvalid   = errors.New("invalid role")
	ErrForbidden = errors.New("role not allowed for account")
)

// Role is the effective role-context. Only User and Employer exist;
// admins impersonate one of them.
type Role string

const (
	User     Role = "user"
	Employer Role = "employer"
)

func (r Role) Valid() bool { return r == User || r == Employer }

func (r Role) String() string { return string(r) }

// Parse converts raw input ("user", "Employer", ...) into a Role.
func Parse(s string) (Role, error) {
	r := Role(strings.ToLower(strings.TrimSpace(s)))
	if !r.Valid() {
		return "", fmt.Errorf("%w: %q", ErrInvalid, s)
	}
	return r, nil
}

// AccountType is the kind of account stored by the auth provider.
type AccountType string

const (
	AccountUser     AccountType = "user"
	AccountEmployer AccountType = "employer"
	AccountAdmin    AccountType = "admin"
)

func (t AccountType) Valid() bool {
	switch t {
	case AccountUser, AccountEmployer, AccountAdmin:
		return true
	}
	return false
}

// ParseAccountType converts raw input into an AccountType.
func ParseAccountType(s string) (AccountType, error) {
	t := AccountType(strings.ToLower(strings.TrimSpace(s)))
	if !t.Valid() {
		return "", fmt.Errorf("unknown account type %q", s)
	}
	return t, nil
}

// Effective returns the role-context an account acts in. viewMode only
// matters for admins; an empty or invalid view mode falls back to User.
func Effective(account AccountType, viewMode Role) Role {
	switch account {
	case AccountAdmin:
		if viewMode.Valid() {
			return viewMode
		}
		return User
	case AccountEmployer:
		return Employer
	default:
		return User
	}
}

// Authorize checks that account may act in the requested role-context.
func Authorize(account AccountType, requested Role) error {
	if !requested.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalid, string(requested))
	}
	if !account.Valid() {
		return fmt.Errorf("%w: account type %q", ErrForbidden, string(account))
	}
	if Effective(account, requested) != requested {
		return fmt.Errorf("%w: %s cannot act as %s", ErrForbidden, account, requested)
	}
	return nil
}
