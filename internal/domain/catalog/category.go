package catalog

import (
	"context"
	"strings"

	"github.com/storefront/backend/internal/domain/shared"
)

// Category groups products. Categories form a tree through ParentCategoryID.
type Category struct {
	ID               uint
	Name             string
	Description      string
	Slug             string
	ParentCategoryID *uint
	ProductIDs       []uint
}

// NewCategory creates a category. An empty slug is derived from the name.
func NewCategory(name, description, slug string, productIDs []uint) (*Category, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, shared.NewDomainError("INVALID_NAME", "Category name cannot be empty")
	}
	if slug == "" {
		slug = Slugify(name)
	}
	return &Category{
		Name:        name,
		Description: description,
		Slug:        slug,
		ProductIDs:  shared.UniqueIDs(productIDs),
	}, nil
}

// Slugify lowercases s and joins its words with dashes
func Slugify(s string) string {
	fields := strings.FieldsFunc(strings.ToLower(s), func(r rune) bool {
		return !(r >= 'a' && r <= 'z' || r >= '0' && r <= '9')
	})
	return strings.Join(fields, "-")
}

// CategoryRepository persists categories
type CategoryRepository interface {
	shared.BulkRepository[Category]
	// SetParent links a category to its parent; a nil parent makes it a root.
	SetParent(ctx context.Context, id uint, parentID *uint) error
}
