// Package transferapp moves the store's dataset in and out of portable
// archives: one collection per data type, imported in dependency order with
// foreign keys remapped, and exported in request order.
package transferapp

import (
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"
	"github.com/storefront/backend/internal/domain/catalog"
	"github.com/storefront/backend/internal/domain/content"
	"github.com/storefront/backend/internal/domain/identity"
	"github.com/storefront/backend/internal/domain/sales"
	"github.com/storefront/backend/internal/domain/settings"
	"github.com/storefront/backend/internal/domain/transfer"
	"golang.org/x/crypto/bcrypt"
)

// CollectionResolver looks up the Collection handling a data type.
type CollectionResolver interface {
	ForType(t transfer.DataType) (transfer.Collection, bool)
}

// CollectionSet is a CollectionResolver backed by a plain map.
type CollectionSet map[transfer.DataType]transfer.Collection

// ForType implements CollectionResolver
func (s CollectionSet) ForType(t transfer.DataType) (transfer.Collection, bool) {
	c, ok := s[t]
	return c, ok
}

// Repositories groups the storage every collection delegates to.
type Repositories struct {
	Settings        settings.Repository
	Users           identity.UserRepository
	Wishlists       identity.WishlistRepository
	Products        catalog.ProductRepository
	ProductPhotos   catalog.ProductPhotoRepository
	Categories      catalog.CategoryRepository
	AttributeTypes  catalog.AttributeTypeRepository
	DeliveryMethods sales.DeliveryMethodRepository
	PaymentMethods  sales.PaymentMethodRepository
	Orders          sales.OrderRepository
	Returns         sales.ReturnRepository
	Pages           content.PageRepository
}

// Collections holds one Collection per data type.
type Collections struct {
	Settings        *SettingsCollection
	Users           *UsersCollection
	Wishlists       *WishlistsCollection
	Products        *ProductsCollection
	ProductPhotos   *ProductPhotosCollection
	Categories      *CategoriesCollection
	AttributeTypes  *AttributeTypesCollection
	DeliveryMethods *DeliveryMethodsCollection
	PaymentMethods  *PaymentMethodsCollection
	Orders          *OrdersCollection
	Returns         *ReturnsCollection
	Pages           *PagesCollection
}

// CollectionsOption configures NewCollections
type CollectionsOption func(*collectionsConfig)

type collectionsConfig struct {
	bcryptCost int
}

// WithBcryptCost sets the cost used to hash plaintext passwords on user import.
func WithBcryptCost(cost int) CollectionsOption {
	return func(c *collectionsConfig) {
		c.bcryptCost = cost
	}
}

// NewCollections wires every collection to its repository.
func NewCollections(repos Repositories, opts ...CollectionsOption) *Collections {
	cfg := collectionsConfig{bcryptCost: bcrypt.DefaultCost}
	for _, opt := range opts {
		opt(&cfg)
	}
	return &Collections{
		Settings:        &SettingsCollection{repo: repos.Settings},
		Users:           &UsersCollection{repo: repos.Users, bcryptCost: cfg.bcryptCost},
		Wishlists:       &WishlistsCollection{repo: repos.Wishlists},
		Products:        &ProductsCollection{repo: repos.Products},
		ProductPhotos:   &ProductPhotosCollection{repo: repos.ProductPhotos},
		Categories:      &CategoriesCollection{repo: repos.Categories},
		AttributeTypes:  &AttributeTypesCollection{repo: repos.AttributeTypes},
		DeliveryMethods: &DeliveryMethodsCollection{repo: repos.DeliveryMethods},
		PaymentMethods:  &PaymentMethodsCollection{repo: repos.PaymentMethods},
		Orders:          &OrdersCollection{repo: repos.Orders},
		Returns:         &ReturnsCollection{repo: repos.Returns},
		Pages:           &PagesCollection{repo: repos.Pages},
	}
}

// ForType implements CollectionResolver. Every DataType has a case.
func (c *Collections) ForType(t transfer.DataType) (transfer.Collection, bool) {
	switch t {
	case transfer.Settings:
		return c.Settings, true
	case transfer.Users:
		return c.Users, true
	case transfer.Wishlists:
		return c.Wishlists, true
	case transfer.Products:
		return c.Products, true
	case transfer.ProductPhotos:
		return c.ProductPhotos, true
	case transfer.Categories:
		return c.Categories, true
	case transfer.AttributeTypes:
		return c.AttributeTypes, true
	case transfer.DeliveryMethods:
		return c.DeliveryMethods, true
	case transfer.PaymentMethods:
		return c.PaymentMethods, true
	case transfer.Orders:
		return c.Orders, true
	case transfer.Returns:
		return c.Returns, true
	case transfer.Pages:
		return c.Pages, true
	}
	return nil, false
}

// money renders an amount as a bare JSON number.
func money(d decimal.Decimal) json.Number {
	return json.Number(d.StringFixed(2))
}

// timestamp renders t as RFC 3339 in UTC, or nil when unset.
func timestamp(t time.Time) any {
	if t.IsZero() {
		return nil
	}
	return t.UTC().Format(time.RFC3339)
}

// idList copies ids into a []any so the codecs see a plain JSON array.
func idList(ids []uint) []any {
	out := make([]any, len(ids))
	for i, id := range ids {
		out[i] = id
	}
	return out
}

// resolveAll translates every id in oldIDs through the map of t.
func resolveAll(idMaps transfer.IDMaps, t transfer.DataType, oldIDs []uint) ([]uint, error) {
	out := make([]uint, 0, len(oldIDs))
	for _, old := range oldIDs {
		id, err := idMaps.MustResolve(t, old)
		if err != nil {
			return nil, err
		}
		out = append(out, id)
	}
	return out, nil
}
