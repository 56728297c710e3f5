package transferapp

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/storefront/backend/internal/domain/identity"
	"github.com/storefront/backend/internal/domain/shared"
	"github.com/storefront/backend/internal/domain/transfer"
	"golang.org/x/crypto/bcrypt"
)

type userRecord struct {
	ID        uint      `json:"id" validate:"required"`
	Email     string    `json:"email" validate:"required,email"`
	Password  string    `json:"password" validate:"required"`
	FirstName string    `json:"firstName" validate:"max=100"`
	LastName  string    `json:"lastName" validate:"max=100"`
	Role      string    `json:"role"`
	Created   time.Time `json:"created"`
}

// UsersCollection transfers store accounts. Passwords travel as bcrypt
// hashes; plaintext passwords in an archive are hashed on import. Clearing
// never removes administrators.
type UsersCollection struct {
	repo       identity.UserRepository
	bcryptCost int
}

// Export implements transfer.Exporter
func (c *UsersCollection) Export(ctx context.Context) ([]transfer.Record, error) {
	all, err := c.repo.FindAll(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]transfer.Record, 0, len(all))
	for _, u := range all {
		out = append(out, transfer.Record{
			"id":        u.ID,
			"email":     u.Email,
			"password":  u.PasswordHash,
			"firstName": u.FirstName,
			"lastName":  u.LastName,
			"role":      string(u.Role),
			"created":   timestamp(u.CreatedAt),
		})
	}
	return out, nil
}

// Import implements transfer.Importer. An account whose email already exists
// is not duplicated; the archive id maps onto the existing account.
func (c *UsersCollection) Import(ctx context.Context, records []transfer.Record, _ transfer.IDMaps) (transfer.IDMap, error) {
	rows, err := decodeRecords[userRecord](transfer.Users, records)
	if err != nil {
		return nil, err
	}

	ids := make(transfer.IDMap, len(rows))
	for i, row := range rows {
		existing, err := c.repo.FindByEmail(ctx, strings.ToLower(strings.TrimSpace(row.Email)))
		if err == nil {
			ids[row.ID] = existing.ID
			continue
		}
		if !errors.Is(err, shared.ErrNotFound) {
			return nil, err
		}

		hash, err := c.passwordHash(row.Password)
		if err != nil {
			return nil, transfer.NewParseError(transfer.Users, i, err)
		}
		user, err := identity.NewUser(row.Email, hash, row.FirstName, row.LastName, identity.Role(row.Role))
		if err != nil {
			return nil, transfer.NewParseError(transfer.Users, i, err)
		}
		user.CreatedAt = row.Created
		if err := c.repo.Create(ctx, user); err != nil {
			return nil, fmt.Errorf("create user %q: %w", user.Email, err)
		}
		ids[row.ID] = user.ID
	}
	return ids, nil
}

// passwordHash keeps an existing bcrypt hash and hashes anything else.
func (c *UsersCollection) passwordHash(password string) (string, error) {
	if isBcryptHash(password) {
		return password, nil
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), c.bcryptCost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hash), nil
}

func isBcryptHash(s string) bool {
	if len(s) != 60 || !strings.HasPrefix(s, "$2") {
		return false
	}
	_, err := bcrypt.Cost([]byte(s))
	return err == nil
}

// Clear implements transfer.Importer
func (c *UsersCollection) Clear(ctx context.Context) (int64, error) {
	return c.repo.DeleteAllExcept(ctx, identity.RoleAdmin)
}
