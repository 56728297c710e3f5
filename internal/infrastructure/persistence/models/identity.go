package models

import (
	"time"

	"github.com/storefront/backend/internal/domain/identity"
)

// UserModel is the persistence model for a user account.
type UserModel struct {
	BaseModel
	Email        string        `gorm:"type:varchar(255);not null;uniqueIndex"`
	PasswordHash string        `gorm:"type:varchar(255);not null"`
	FirstName    string        `gorm:"type:varchar(100)"`
	LastName     string        `gorm:"type:varchar(100)"`
	Role         identity.Role `gorm:"type:varchar(20);not null;default:'customer';index"`
	CreatedAt    time.Time     `gorm:"not null"`
}

// TableName returns the table name for GORM
func (UserModel) TableName() string {
	return "users"
}

// ToDomain converts the persistence model to a domain User.
func (m *UserModel) ToDomain() *identity.User {
	return &identity.User{
		ID:           m.ID,
		Email:        m.Email,
		PasswordHash: m.PasswordHash,
		FirstName:    m.FirstName,
		LastName:     m.LastName,
		Role:         m.Role,
		CreatedAt:    m.CreatedAt,
	}
}

// FromDomain populates the persistence model from a domain User.
func (m *UserModel) FromDomain(u *identity.User) {
	m.ID = u.ID
	m.Email = u.Email
	m.PasswordHash = u.PasswordHash
	m.FirstName = u.FirstName
	m.LastName = u.LastName
	m.Role = u.Role
	m.CreatedAt = u.CreatedAt
}

// WishlistModel is the persistence model for a wishlist.
type WishlistModel struct {
	BaseModel
	UserID    uint                   `gorm:"not null;index"`
	Name      string                 `gorm:"type:varchar(100);not null"`
	Products  []WishlistProductModel `gorm:"foreignKey:WishlistID"`
	CreatedAt time.Time              `gorm:"not null"`
}

// TableName returns the table name for GORM
func (WishlistModel) TableName() string {
	return "wishlists"
}

// WishlistProductModel links a wishlist to a product.
type WishlistProductModel struct {
	WishlistID uint `gorm:"primaryKey"`
	ProductID  uint `gorm:"primaryKey;index"`
	Position   int  `gorm:"not null;default:0"`
}

// TableName returns the table name for GORM
func (WishlistProductModel) TableName() string {
	return "wishlist_products"
}

// ToDomain converts the persistence model to a domain Wishlist.
func (m *WishlistModel) ToDomain() *identity.Wishlist {
	return &identity.Wishlist{
		ID:         m.ID,
		UserID:     m.UserID,
		Name:       m.Name,
		ProductIDs: wishlistProductIDs(m.Products),
		CreatedAt:  m.CreatedAt,
	}
}

// FromDomain populates the persistence model from a domain Wishlist.
func (m *WishlistModel) FromDomain(w *identity.Wishlist) {
	m.ID = w.ID
	m.UserID = w.UserID
	m.Name = w.Name
	m.CreatedAt = w.CreatedAt
	m.Products = make([]WishlistProductModel, 0, len(w.ProductIDs))
	for i, id := range w.ProductIDs {
		m.Products = append(m.Products, WishlistProductModel{WishlistID: w.ID, ProductID: id, Position: i})
	}
}

func wishlistProductIDs(links []WishlistProductModel) []uint {
	ids := make([]uint, len(links))
	for i, l := range sortedByPosition(links, func(l WishlistProductModel) int { return l.Position }) {
		ids[i] = l.ProductID
	}
	return ids
}
