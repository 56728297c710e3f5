package models

import "github.com/storefront/backend/internal/domain/content"

// PageModel is the persistence model for a CMS page.
type PageModel struct {
	BaseModel
	Title   string `gorm:"type:varchar(200);not null"`
	Slug    string `gorm:"type:varchar(200);not null;index"`
	Content string `gorm:"type:text"`
}

// TableName returns the table name for GORM
func (PageModel) TableName() string {
	return "pages"
}

// ToDomain converts the persistence model to a domain Page.
func (m *PageModel) ToDomain() *content.Page {
	return &content.Page{ID: m.ID, Title: m.Title, Slug: m.Slug, Content: m.Content}
}

// FromDomain populates the persistence model from a domain Page.
func (m *PageModel) FromDomain(p *content.Page) {
	m.ID = p.ID
	m.Title = p.Title
	m.Slug = p.Slug
	m.Content = p.Content
}
