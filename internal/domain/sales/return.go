package sales

import (
	"time"

	"github.com/storefront/backend/internal/domain/shared"
)

// ReturnStatus is the lifecycle state of a return request
type ReturnStatus string

const (
	ReturnStatusOpen      ReturnStatus = "open"
	ReturnStatusAccepted  ReturnStatus = "accepted"
	ReturnStatusRejected  ReturnStatus = "rejected"
	ReturnStatusCancelled ReturnStatus = "cancelled"
)

// IsValid checks if the return status is valid
func (s ReturnStatus) IsValid() bool {
	switch s {
	case ReturnStatusOpen, ReturnStatusAccepted, ReturnStatusRejected, ReturnStatusCancelled:
		return true
	}
	return false
}

// Return is a customer's request to send back an order
type Return struct {
	ID        uint
	OrderID   uint
	Message   string
	Status    ReturnStatus
	CreatedAt time.Time
}

// NewReturn creates a return request
func NewReturn(orderID uint, message string, status ReturnStatus) (*Return, error) {
	if orderID == 0 {
		return nil, shared.NewDomainError("INVALID_ORDER", "Return must reference an order")
	}
	if status == "" {
		status = ReturnStatusOpen
	}
	if !status.IsValid() {
		return nil, shared.NewDomainError("INVALID_STATUS", "Invalid return status: "+string(status))
	}
	return &Return{OrderID: orderID, Message: message, Status: status}, nil
}

// ReturnRepository persists returns
type ReturnRepository interface {
	shared.BulkRepository[Return]
}
