// Package identity holds store accounts and their wishlists.
package identity

import (
	"context"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/storefront/backend/internal/domain/shared"
)

// Role is the authorization level of an account
type Role string

const (
	RoleAdmin    Role = "admin"
	RoleManager  Role = "manager"
	RoleSales    Role = "sales"
	RoleCustomer Role = "customer"
)

// IsValid checks if the role is valid
func (r Role) IsValid() bool {
	switch r {
	case RoleAdmin, RoleManager, RoleSales, RoleCustomer:
		return true
	}
	return false
}

// User is a store account
type User struct {
	ID           uint
	Email        string
	PasswordHash string
	FirstName    string
	LastName     string
	Role         Role
	CreatedAt    time.Time
}

// NewUser creates a user. passwordHash must already be hashed.
func NewUser(email, passwordHash, firstName, lastName string, role Role) (*User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if _, err := mail.ParseAddress(email); err != nil {
		return nil, shared.NewDomainError("INVALID_EMAIL", fmt.Sprintf("Invalid email: %s", email))
	}
	if passwordHash == "" {
		return nil, shared.NewDomainError("INVALID_PASSWORD", "Password cannot be empty")
	}
	if role == "" {
		role = RoleCustomer
	}
	if !role.IsValid() {
		return nil, shared.NewDomainError("INVALID_ROLE", fmt.Sprintf("Invalid role: %s", role))
	}
	return &User{
		Email:        email,
		PasswordHash: passwordHash,
		FirstName:    firstName,
		LastName:     lastName,
		Role:         role,
	}, nil
}

// IsAdmin reports whether the account holds the admin role
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// UserRepository persists users
type UserRepository interface {
	FindAll(ctx context.Context) ([]User, error)
	// FindByEmail returns shared.ErrNotFound when no account uses email.
	FindByEmail(ctx context.Context, email string) (*User, error)
	Create(ctx context.Context, user *User) error
	// DeleteAllExcept removes every account whose role is not keep.
	DeleteAllExcept(ctx context.Context, keep Role) (int64, error)
}
