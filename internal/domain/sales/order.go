package sales

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/storefront/backend/internal/domain/shared"
)

// OrderStatus is the lifecycle state of an order
type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "pending"
	OrderStatusFailed    OrderStatus = "failed"
	OrderStatusConfirmed OrderStatus = "confirmed"
	OrderStatusCancelled OrderStatus = "cancelled"
	OrderStatusRefunded  OrderStatus = "refunded"
	OrderStatusShipped   OrderStatus = "shipped"
	OrderStatusDelivered OrderStatus = "delivered"
)

// IsValid checks if the order status is valid
func (s OrderStatus) IsValid() bool {
	switch s {
	case OrderStatusPending, OrderStatusFailed, OrderStatusConfirmed, OrderStatusCancelled,
		OrderStatusRefunded, OrderStatusShipped, OrderStatusDelivered:
		return true
	}
	return false
}

// OrderItem is one product line of an order. Price is the unit price at purchase time.
type OrderItem struct {
	ProductID uint
	Quantity  int
	Price     decimal.Decimal
}

// OrderDelivery is the chosen delivery method and destination
type OrderDelivery struct {
	MethodID   uint
	Address    string
	City       string
	PostalCode string
	Country    string
}

// OrderPayment is the chosen payment method
type OrderPayment struct {
	MethodID uint
}

// Order is a placed purchase. UserID is nil for guest checkouts.
type Order struct {
	ID           uint
	UserID       *uint
	FullName     string
	ContactEmail string
	ContactPhone string
	Message      string
	Items        []OrderItem
	Delivery     OrderDelivery
	Payment      OrderPayment
	Status       OrderStatus
	CreatedAt    time.Time
}

// NewOrder creates a pending order
func NewOrder(userID *uint, fullName, contactEmail string, items []OrderItem, delivery OrderDelivery, payment OrderPayment) (*Order, error) {
	if strings.TrimSpace(fullName) == "" {
		return nil, shared.NewDomainError("INVALID_NAME", "Order contact name cannot be empty")
	}
	if len(items) == 0 {
		return nil, shared.NewDomainError("EMPTY_ORDER", "Order must contain at least one item")
	}
	for i, item := range items {
		if item.ProductID == 0 {
			return nil, shared.NewDomainError("INVALID_ITEM", fmt.Sprintf("Item %d has no product", i))
		}
		if item.Quantity <= 0 {
			return nil, shared.NewDomainError("INVALID_ITEM", fmt.Sprintf("Item %d quantity must be positive", i))
		}
	}
	if delivery.MethodID == 0 {
		return nil, shared.NewDomainError("INVALID_DELIVERY", "Order must have a delivery method")
	}
	if payment.MethodID == 0 {
		return nil, shared.NewDomainError("INVALID_PAYMENT", "Order must have a payment method")
	}
	return &Order{
		UserID:       userID,
		FullName:     strings.TrimSpace(fullName),
		ContactEmail: contactEmail,
		Items:        items,
		Delivery:     delivery,
		Payment:      payment,
		Status:       OrderStatusPending,
	}, nil
}

// Total sums the item lines
func (o *Order) Total() decimal.Decimal {
	total := decimal.Zero
	for _, item := range o.Items {
		total = total.Add(item.Price.Mul(decimal.NewFromInt(int64(item.Quantity))))
	}
	return total
}

// OrderRepository persists orders together with their items
type OrderRepository interface {
	shared.BulkRepository[Order]
	UpdateStatus(ctx context.Context, id uint, status OrderStatus) error
}
