package transferapp

import (
	"context"
	"fmt"
	"time"

	"github.com/storefront/backend/internal/domain/identity"
	"github.com/storefront/backend/internal/domain/transfer"
)

type wishlistRecord struct {
	ID       uint      `json:"id" validate:"required"`
	UserID   uint      `json:"userId" validate:"required"`
	Name     string    `json:"name" validate:"required,max=100"`
	Products []uint    `json:"products"`
	Created  time.Time `json:"created"`
}

// WishlistsCollection transfers customer wishlists.
type WishlistsCollection struct {
	repo identity.WishlistRepository
}

// Export implements transfer.Exporter
func (c *WishlistsCollection) Export(ctx context.Context) ([]transfer.Record, error) {
	all, err := c.repo.FindAll(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]transfer.Record, 0, len(all))
	for _, w := range all {
		out = append(out, transfer.Record{
			"id":       w.ID,
			"userId":   w.UserID,
			"name":     w.Name,
			"products": idList(w.ProductIDs),
			"created":  timestamp(w.CreatedAt),
		})
	}
	return out, nil
}

// Import implements transfer.Importer
func (c *WishlistsCollection) Import(ctx context.Context, records []transfer.Record, idMaps transfer.IDMaps) (transfer.IDMap, error) {
	rows, err := decodeRecords[wishlistRecord](transfer.Wishlists, records)
	if err != nil {
		return nil, err
	}

	ids := make(transfer.IDMap, len(rows))
	for i, row := range rows {
		userID, err := idMaps.MustResolve(transfer.Users, row.UserID)
		if err != nil {
			return nil, transfer.NewParseError(transfer.Wishlists, i, err)
		}
		productIDs, err := resolveAll(idMaps, transfer.Products, row.Products)
		if err != nil {
			return nil, transfer.NewParseError(transfer.Wishlists, i, err)
		}
		wishlist, err := identity.NewWishlist(userID, row.Name, productIDs)
		if err != nil {
			return nil, transfer.NewParseError(transfer.Wishlists, i, err)
		}
		wishlist.CreatedAt = row.Created
		if err := c.repo.Create(ctx, wishlist); err != nil {
			return nil, fmt.Errorf("create wishlist %q: %w", wishlist.Name, err)
		}
		ids[row.ID] = wishlist.ID
	}
	return ids, nil
}

// Clear implements transfer.Importer
func (c *WishlistsCollection) Clear(ctx context.Context) (int64, error) {
	return c.repo.DeleteAll(ctx)
}
