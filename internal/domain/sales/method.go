// Package sales holds checkout options, orders and returns.
package sales

import (
	"strings"

	"github.com/shopspring/decimal"
	"github.com/storefront/backend/internal/domain/shared"
)

// DeliveryMethod is a shipping option offered at checkout
type DeliveryMethod struct {
	ID          uint
	Name        string
	Description string
	Price       decimal.Decimal
	Active      bool
}

// PaymentMethod is a payment option offered at checkout
type PaymentMethod struct {
	ID          uint
	Name        string
	Description string
	Price       decimal.Decimal
	Active      bool
}

func validateMethod(name string, price decimal.Decimal) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", shared.NewDomainError("INVALID_NAME", "Method name cannot be empty")
	}
	if price.IsNegative() {
		return "", shared.NewDomainError("INVALID_PRICE", "Method price cannot be negative")
	}
	return name, nil
}

// NewDeliveryMethod creates a delivery method
func NewDeliveryMethod(name, description string, price decimal.Decimal, active bool) (*DeliveryMethod, error) {
	name, err := validateMethod(name, price)
	if err != nil {
		return nil, err
	}
	return &DeliveryMethod{Name: name, Description: description, Price: price, Active: active}, nil
}

// NewPaymentMethod creates a payment method
func NewPaymentMethod(name, description string, price decimal.Decimal, active bool) (*PaymentMethod, error) {
	name, err := validateMethod(name, price)
	if err != nil {
		return nil, err
	}
	return &PaymentMethod{Name: name, Description: description, Price: price, Active: active}, nil
}

// DeliveryMethodRepository persists delivery methods
type DeliveryMethodRepository interface {
	shared.BulkRepository[DeliveryMethod]
}

// PaymentMethodRepository persists payment methods
type PaymentMethodRepository interface {
	shared.BulkRepository[PaymentMethod]
}
