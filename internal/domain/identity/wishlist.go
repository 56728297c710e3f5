package identity

import (
	"strings"
	"time"

	"github.com/storefront/backend/internal/domain/shared"
)

// Wishlist is a named list of products saved by a user
type Wishlist struct {
	ID         uint
	UserID     uint
	Name       string
	ProductIDs []uint
	CreatedAt  time.Time
}

// NewWishlist creates a wishlist
func NewWishlist(userID uint, name string, productIDs []uint) (*Wishlist, error) {
	if userID == 0 {
		return nil, shared.NewDomainError("INVALID_USER", "Wishlist must belong to a user")
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, shared.NewDomainError("INVALID_NAME", "Wishlist name cannot be empty")
	}
	return &Wishlist{
		UserID:     userID,
		Name:       name,
		ProductIDs: shared.UniqueIDs(productIDs),
	}, nil
}

// WishlistRepository persists wishlists
type WishlistRepository interface {
	shared.BulkRepository[Wishlist]
}
