package models

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/storefront/backend/internal/domain/sales"
)

// DeliveryMethodModel is the persistence model for a delivery method.
type DeliveryMethodModel struct {
	BaseModel
	Name        string          `gorm:"type:varchar(100);not null"`
	Description string          `gorm:"type:text"`
	Price       decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	Active      bool            `gorm:"not null"`
}

// TableName returns the table name for GORM
func (DeliveryMethodModel) TableName() string {
	return "delivery_methods"
}

// ToDomain converts the persistence model to a domain DeliveryMethod.
func (m *DeliveryMethodModel) ToDomain() *sales.DeliveryMethod {
	return &sales.DeliveryMethod{
		ID:          m.ID,
		Name:        m.Name,
		Description: m.Description,
		Price:       m.Price,
		Active:      m.Active,
	}
}

// FromDomain populates the persistence model from a domain DeliveryMethod.
func (m *DeliveryMethodModel) FromDomain(d *sales.DeliveryMethod) {
	m.ID = d.ID
	m.Name = d.Name
	m.Description = d.Description
	m.Price = d.Price
	m.Active = d.Active
}

// PaymentMethodModel is the persistence model for a payment method.
type PaymentMethodModel struct {
	BaseModel
	Name        string          `gorm:"type:varchar(100);not null"`
	Description string          `gorm:"type:text"`
	Price       decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	Active      bool            `gorm:"not null"`
}

// TableName returns the table name for GORM
func (PaymentMethodModel) TableName() string {
	return "payment_methods"
}

// ToDomain converts the persistence model to a domain PaymentMethod.
func (m *PaymentMethodModel) ToDomain() *sales.PaymentMethod {
	return &sales.PaymentMethod{
		ID:          m.ID,
		Name:        m.Name,
		Description: m.Description,
		Price:       m.Price,
		Active:      m.Active,
	}
}

// FromDomain populates the persistence model from a domain PaymentMethod.
func (m *PaymentMethodModel) FromDomain(p *sales.PaymentMethod) {
	m.ID = p.ID
	m.Name = p.Name
	m.Description = p.Description
	m.Price = p.Price
	m.Active = p.Active
}

// OrderModel is the persistence model for an order. Delivery and payment
// details are flattened into columns, items live in order_items.
type OrderModel struct {
	BaseModel
	UserID             *uint             `gorm:"index"`
	FullName           string            `gorm:"type:varchar(200);not null"`
	ContactEmail       string            `gorm:"type:varchar(255);not null"`
	ContactPhone       string            `gorm:"type:varchar(50)"`
	Message            string            `gorm:"type:text"`
	DeliveryMethodID   uint              `gorm:"not null;index"`
	DeliveryAddress    string            `gorm:"type:varchar(255)"`
	DeliveryCity       string            `gorm:"type:varchar(100)"`
	DeliveryPostalCode string            `gorm:"type:varchar(20)"`
	DeliveryCountry    string            `gorm:"type:varchar(100)"`
	PaymentMethodID    uint              `gorm:"not null;index"`
	Status             sales.OrderStatus `gorm:"type:varchar(20);not null;index"`
	Items              []OrderItemModel  `gorm:"foreignKey:OrderID"`
	CreatedAt          time.Time         `gorm:"not null"`
}

// TableName returns the table name for GORM
func (OrderModel) TableName() string {
	return "orders"
}

// OrderItemModel is one order line.
type OrderItemModel struct {
	BaseModel
	OrderID   uint            `gorm:"not null;index"`
	ProductID uint            `gorm:"not null;index"`
	Quantity  int             `gorm:"not null"`
	Price     decimal.Decimal `gorm:"type:decimal(12,2);not null"`
}

// TableName returns the table name for GORM
func (OrderItemModel) TableName() string {
	return "order_items"
}

// ToDomain converts the persistence model to a domain Order.
func (m *OrderModel) ToDomain() *sales.Order {
	items := make([]sales.OrderItem, len(m.Items))
	for i, it := range sortedByPosition(m.Items, func(it OrderItemModel) int { return int(it.ID) }) {
		items[i] = sales.OrderItem{ProductID: it.ProductID, Quantity: it.Quantity, Price: it.Price}
	}
	return &sales.Order{
		ID:           m.ID,
		UserID:       uintPtr(m.UserID),
		FullName:     m.FullName,
		ContactEmail: m.ContactEmail,
		ContactPhone: m.ContactPhone,
		Message:      m.Message,
		Items:        items,
		Delivery: sales.OrderDelivery{
			MethodID:   m.DeliveryMethodID,
			Address:    m.DeliveryAddress,
			City:       m.DeliveryCity,
			PostalCode: m.DeliveryPostalCode,
			Country:    m.DeliveryCountry,
		},
		Payment:   sales.OrderPayment{MethodID: m.PaymentMethodID},
		Status:    m.Status,
		CreatedAt: m.CreatedAt,
	}
}

// FromDomain populates the persistence model from a domain Order.
func (m *OrderModel) FromDomain(o *sales.Order) {
	m.ID = o.ID
	m.UserID = uintPtr(o.UserID)
	m.FullName = o.FullName
	m.ContactEmail = o.ContactEmail
	m.ContactPhone = o.ContactPhone
	m.Message = o.Message
	m.DeliveryMethodID = o.Delivery.MethodID
	m.DeliveryAddress = o.Delivery.Address
	m.DeliveryCity = o.Delivery.City
	m.DeliveryPostalCode = o.Delivery.PostalCode
	m.DeliveryCountry = o.Delivery.Country
	m.PaymentMethodID = o.Payment.MethodID
	m.Status = o.Status
	m.CreatedAt = o.CreatedAt
	m.Items = make([]OrderItemModel, 0, len(o.Items))
	for _, it := range o.Items {
		m.Items = append(m.Items, OrderItemModel{OrderID: o.ID, ProductID: it.ProductID, Quantity: it.Quantity, Price: it.Price})
	}
}

// ReturnModel is the persistence model for a return request.
type ReturnModel struct {
	BaseModel
	OrderID   uint               `gorm:"not null;index"`
	Message   string             `gorm:"type:text"`
	Status    sales.ReturnStatus `gorm:"type:varchar(20);not null"`
	CreatedAt time.Time          `gorm:"not null"`
}

// TableName returns the table name for GORM
func (ReturnModel) TableName() string {
	return "returns"
}

// ToDomain converts the persistence model to a domain Return.
func (m *ReturnModel) ToDomain() *sales.Return {
	return &sales.Return{
		ID:        m.ID,
		OrderID:   m.OrderID,
		Message:   m.Message,
		Status:    m.Status,
		CreatedAt: m.CreatedAt,
	}
}

// FromDomain populates the persistence model from a domain Return.
func (m *ReturnModel) FromDomain(r *sales.Return) {
	m.ID = r.ID
	m.OrderID = r.OrderID
	m.Message = r.Message
	m.Status = r.Status
	m.CreatedAt = r.CreatedAt
}
