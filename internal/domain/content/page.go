// Package content holds static storefront pages.
package content

import (
	"strings"

	"github.com/storefront/backend/internal/domain/shared"
)

// Page is a static content page such as "About us"
type Page struct {
	ID      uint
	Title   string
	Slug    string
	Content string
}

// NewPage creates a page
func NewPage(title, slug, content string) (*Page, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, shared.NewDomainError("INVALID_TITLE", "Page title cannot be empty")
	}
	return &Page{Title: title, Slug: slug, Content: content}, nil
}

// PageRepository persists pages
type PageRepository interface {
	shared.BulkRepository[Page]
}
