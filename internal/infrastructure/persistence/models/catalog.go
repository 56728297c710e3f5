package models

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/storefront/backend/internal/domain/catalog"
)

// ProductModel is the persistence model for a product.
type ProductModel struct {
	BaseModel
	Name        string          `gorm:"type:varchar(200);not null"`
	Description string          `gorm:"type:text"`
	Price       decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	Stock       int             `gorm:"not null;default:0"`
	Visible     bool            `gorm:"not null"`
	CreatedAt   time.Time       `gorm:"not null"`
}

// TableName returns the table name for GORM
func (ProductModel) TableName() string {
	return "products"
}

// ToDomain converts the persistence model to a domain Product.
func (m *ProductModel) ToDomain() *catalog.Product {
	return &catalog.Product{
		ID:          m.ID,
		Name:        m.Name,
		Description: m.Description,
		Price:       m.Price,
		Stock:       m.Stock,
		Visible:     m.Visible,
		CreatedAt:   m.CreatedAt,
	}
}

// FromDomain populates the persistence model from a domain Product.
func (m *ProductModel) FromDomain(p *catalog.Product) {
	m.ID = p.ID
	m.Name = p.Name
	m.Description = p.Description
	m.Price = p.Price
	m.Stock = p.Stock
	m.Visible = p.Visible
	m.CreatedAt = p.CreatedAt
}

// ProductPhotoModel is the persistence model for a product photo.
type ProductPhotoModel struct {
	BaseModel
	ProductID uint   `gorm:"not null;index"`
	Path      string `gorm:"type:varchar(255);not null"`
	MimeType  string `gorm:"type:varchar(50);not null"`
}

// TableName returns the table name for GORM
func (ProductPhotoModel) TableName() string {
	return "product_photos"
}

// ToDomain converts the persistence model to a domain ProductPhoto.
func (m *ProductPhotoModel) ToDomain() *catalog.ProductPhoto {
	return &catalog.ProductPhoto{
		ID:        m.ID,
		ProductID: m.ProductID,
		Path:      m.Path,
		MimeType:  m.MimeType,
	}
}

// FromDomain populates the persistence model from a domain ProductPhoto.
func (m *ProductPhotoModel) FromDomain(p *catalog.ProductPhoto) {
	m.ID = p.ID
	m.ProductID = p.ProductID
	m.Path = p.Path
	m.MimeType = p.MimeType
}

// CategoryModel is the persistence model for a category.
type CategoryModel struct {
	BaseModel
	Name             string                 `gorm:"type:varchar(100);not null"`
	Description      string                 `gorm:"type:text"`
	Slug             string                 `gorm:"type:varchar(120);not null;index"`
	ParentCategoryID *uint                  `gorm:"index"`
	Products         []CategoryProductModel `gorm:"foreignKey:CategoryID"`
}

// TableName returns the table name for GORM
func (CategoryModel) TableName() string {
	return "categories"
}

// CategoryProductModel links a category to a product.
type CategoryProductModel struct {
	CategoryID uint `gorm:"primaryKey"`
	ProductID  uint `gorm:"primaryKey;index"`
	Position   int  `gorm:"not null;default:0"`
}

// TableName returns the table name for GORM
func (CategoryProductModel) TableName() string {
	return "category_products"
}

// ToDomain converts the persistence model to a domain Category.
func (m *CategoryModel) ToDomain() *catalog.Category {
	links := sortedByPosition(m.Products, func(l CategoryProductModel) int { return l.Position })
	ids := make([]uint, len(links))
	for i, l := range links {
		ids[i] = l.ProductID
	}
	return &catalog.Category{
		ID:               m.ID,
		Name:             m.Name,
		Description:      m.Description,
		Slug:             m.Slug,
		ParentCategoryID: uintPtr(m.ParentCategoryID),
		ProductIDs:       ids,
	}
}

// FromDomain populates the persistence model from a domain Category.
func (m *CategoryModel) FromDomain(c *catalog.Category) {
	m.ID = c.ID
	m.Name = c.Name
	m.Description = c.Description
	m.Slug = c.Slug
	m.ParentCategoryID = uintPtr(c.ParentCategoryID)
	m.Products = make([]CategoryProductModel, 0, len(c.ProductIDs))
	for i, id := range c.ProductIDs {
		m.Products = append(m.Products, CategoryProductModel{CategoryID: c.ID, ProductID: id, Position: i})
	}
}

// AttributeTypeModel is the persistence model for a product attribute type.
type AttributeTypeModel struct {
	BaseModel
	Name      string                     `gorm:"type:varchar(100);not null"`
	ValueType catalog.AttributeValueType `gorm:"type:varchar(20);not null"`
}

// TableName returns the table name for GORM
func (AttributeTypeModel) TableName() string {
	return "attribute_types"
}

// ToDomain converts the persistence model to a domain AttributeType.
func (m *AttributeTypeModel) ToDomain() *catalog.AttributeType {
	return &catalog.AttributeType{ID: m.ID, Name: m.Name, ValueType: m.ValueType}
}

// FromDomain populates the persistence model from a domain AttributeType.
func (m *AttributeTypeModel) FromDomain(a *catalog.AttributeType) {
	m.ID = a.ID
	m.Name = a.Name
	m.ValueType = a.ValueType
}
