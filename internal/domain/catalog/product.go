// Package catalog holds products, their photos, categories and attribute types.
package catalog

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/storefront/backend/internal/domain/shared"
)

// Product is a sellable item
type Product struct {
	ID          uint
	Name        string
	Description string
	Price       decimal.Decimal
	Stock       int
	Visible     bool
	CreatedAt   time.Time
}

// NewProduct creates a product
func NewProduct(name, description string, price decimal.Decimal, stock int, visible bool) (*Product, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, shared.NewDomainError("INVALID_NAME", "Product name cannot be empty")
	}
	if price.IsNegative() {
		return nil, shared.NewDomainError("INVALID_PRICE", "Product price cannot be negative")
	}
	if stock < 0 {
		return nil, shared.NewDomainError("INVALID_STOCK", "Product stock cannot be negative")
	}
	return &Product{
		Name:        name,
		Description: description,
		Price:       price.Round(2),
		Stock:       stock,
		Visible:     visible,
	}, nil
}

// ProductRepository persists products
type ProductRepository interface {
	shared.BulkRepository[Product]
}
