package transferapp

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/storefront/backend/internal/domain/sales"
	"github.com/storefront/backend/internal/domain/transfer"
)

type methodRecord struct {
	ID          uint            `json:"id" validate:"required"`
	Name        string          `json:"name" validate:"required,max=100"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	Active      bool            `json:"active"`
}

func methodExport(id uint, name, description string, price decimal.Decimal, active bool) transfer.Record {
	return transfer.Record{
		"id":          id,
		"name":        name,
		"description": description,
		"price":       money(price),
		"active":      active,
	}
}

// DeliveryMethodsCollection transfers checkout delivery options.
type DeliveryMethodsCollection struct {
	repo sales.DeliveryMethodRepository
}

// Export implements transfer.Exporter
func (c *DeliveryMethodsCollection) Export(ctx context.Context) ([]transfer.Record, error) {
	all, err := c.repo.FindAll(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]transfer.Record, 0, len(all))
	for _, m := range all {
		out = append(out, methodExport(m.ID, m.Name, m.Description, m.Price, m.Active))
	}
	return out, nil
}

// Import implements transfer.Importer
func (c *DeliveryMethodsCollection) Import(ctx context.Context, records []transfer.Record, _ transfer.IDMaps) (transfer.IDMap, error) {
	rows, err := decodeRecords[methodRecord](transfer.DeliveryMethods, records)
	if err != nil {
		return nil, err
	}

	ids := make(transfer.IDMap, len(rows))
	for i, row := range rows {
		method, err := sales.NewDeliveryMethod(row.Name, row.Description, row.Price, row.Active)
		if err != nil {
			return nil, transfer.NewParseError(transfer.DeliveryMethods, i, err)
		}
		if err := c.repo.Create(ctx, method); err != nil {
			return nil, fmt.Errorf("create delivery method %q: %w", method.Name, err)
		}
		ids[row.ID] = method.ID
	}
	return ids, nil
}

// Clear implements transfer.Importer
func (c *DeliveryMethodsCollection) Clear(ctx context.Context) (int64, error) {
	return c.repo.DeleteAll(ctx)
}

// PaymentMethodsCollection transfers checkout payment options.
type PaymentMethodsCollection struct {
	repo sales.PaymentMethodRepository
}

// Export implements transfer.Exporter
func (c *PaymentMethodsCollection) Export(ctx context.Context) ([]transfer.Record, error) {
	all, err := c.repo.FindAll(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]transfer.Record, 0, len(all))
	for _, m := range all {
		out = append(out, methodExport(m.ID, m.Name, m.Description, m.Price, m.Active))
	}
	return out, nil
}

// Import implements transfer.Importer
func (c *PaymentMethodsCollection) Import(ctx context.Context, records []transfer.Record, _ transfer.IDMaps) (transfer.IDMap, error) {
	rows, err := decodeRecords[methodRecord](transfer.PaymentMethods, records)
	if err != nil {
		return nil, err
	}

	ids := make(transfer.IDMap, len(rows))
	for i, row := range rows {
		method, err := sales.NewPaymentMethod(row.Name, row.Description, row.Price, row.Active)
		if err != nil {
			return nil, transfer.NewParseError(transfer.PaymentMethods, i, err)
		}
		if err := c.repo.Create(ctx, method); err != nil {
			return nil, fmt.Errorf("create payment method %q: %w", method.Name, err)
		}
		ids[row.ID] = method.ID
	}
	return ids, nil
}

// Clear implements transfer.Importer
func (c *PaymentMethodsCollection) Clear(ctx context.Context) (int64, error) {
	return c.repo.DeleteAll(ctx)
}

type orderItemRecord struct {
	ProductID uint            `json:"productId" validate:"required"`
	Quantity  int             `json:"quantity" validate:"min=1"`
	Price     decimal.Decimal `json:"price"`
}

type orderDeliveryRecord struct {
	MethodID   uint   `json:"methodId" validate:"required"`
	Address    string `json:"address"`
	City       string `json:"city"`
	PostalCode string `json:"postalCode"`
	Country    string `json:"country"`
}

type orderPaymentRecord struct {
	MethodID uint `json:"methodId" validate:"required"`
}

type orderRecord struct {
	ID           uint                `json:"id" validate:"required"`
	UserID       *uint               `json:"userId"`
	FullName     string              `json:"fullName" validate:"required,max=200"`
	ContactEmail string              `json:"contactEmail" validate:"required,max=255"`
	ContactPhone string              `json:"contactPhone" validate:"max=50"`
	Message      string              `json:"message"`
	Items        []orderItemRecord   `json:"items" validate:"required,min=1,dive"`
	Delivery     orderDeliveryRecord `json:"delivery"`
	Payment      orderPaymentRecord  `json:"payment"`
	Status       string              `json:"status"`
	Created      time.Time           `json:"created"`
}

// OrdersCollection transfers orders with their items. Orders are created
// pending and moved to their archived status afterwards, the same way a
// live order progresses.
type OrdersCollection struct {
	repo sales.OrderRepository
}

// Export implements transfer.Exporter
func (c *OrdersCollection) Export(ctx context.Context) ([]transfer.Record, error) {
	all, err := c.repo.FindAll(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]transfer.Record, 0, len(all))
	for _, o := range all {
		var userID any
		if o.UserID != nil {
			userID = *o.UserID
		}
		items := make([]any, len(o.Items))
		for i, item := range o.Items {
			items[i] = map[string]any{
				"productId": item.ProductID,
				"quantity":  item.Quantity,
				"price":     money(item.Price),
			}
		}
		out = append(out, transfer.Record{
			"id":           o.ID,
			"userId":       userID,
			"fullName":     o.FullName,
			"contactEmail": o.ContactEmail,
			"contactPhone": o.ContactPhone,
			"message":      o.Message,
			"items":        items,
			"delivery": map[string]any{
				"methodId":   o.Delivery.MethodID,
				"address":    o.Delivery.Address,
				"city":       o.Delivery.City,
				"postalCode": o.Delivery.PostalCode,
				"country":    o.Delivery.Country,
			},
			"payment": map[string]any{
				"methodId": o.Payment.MethodID,
			},
			"status":  string(o.Status),
			"created": timestamp(o.CreatedAt),
		})
	}
	return out, nil
}

// Import implements transfer.Importer
func (c *OrdersCollection) Import(ctx context.Context, records []transfer.Record, idMaps transfer.IDMaps) (transfer.IDMap, error) {
	rows, err := decodeRecords[orderRecord](transfer.Orders, records)
	if err != nil {
		return nil, err
	}

	ids := make(transfer.IDMap, len(rows))
	for i, row := range rows {
		order, err := buildOrder(row, idMaps)
		if err != nil {
			return nil, transfer.NewParseError(transfer.Orders, i, err)
		}
		if err := c.repo.Create(ctx, order); err != nil {
			return nil, fmt.Errorf("create order %d: %w", row.ID, err)
		}
		ids[row.ID] = order.ID

		status := sales.OrderStatus(row.Status)
		if status != "" && status != order.Status {
			if err := c.repo.UpdateStatus(ctx, order.ID, status); err != nil {
				return nil, fmt.Errorf("set status of order %d: %w", row.ID, err)
			}
		}
	}
	return ids, nil
}

func buildOrder(row orderRecord, idMaps transfer.IDMaps) (*sales.Order, error) {
	if row.Status != "" && !sales.OrderStatus(row.Status).IsValid() {
		return nil, fmt.Errorf("invalid order status %q", row.Status)
	}

	userID, ok := idMaps.ResolveOptional(transfer.Users, row.UserID)
	if !ok {
		return nil, fmt.Errorf("unknown %s id %d", transfer.Users, *row.UserID)
	}

	items := make([]sales.OrderItem, len(row.Items))
	for i, item := range row.Items {
		productID, err := idMaps.MustResolve(transfer.Products, item.ProductID)
		if err != nil {
			return nil, err
		}
		items[i] = sales.OrderItem{ProductID: productID, Quantity: item.Quantity, Price: item.Price}
	}

	deliveryID, err := idMaps.MustResolve(transfer.DeliveryMethods, row.Delivery.MethodID)
	if err != nil {
		return nil, err
	}
	paymentID, err := idMaps.MustResolve(transfer.PaymentMethods, row.Payment.MethodID)
	if err != nil {
		return nil, err
	}

	order, err := sales.NewOrder(userID, row.FullName, row.ContactEmail, items,
		sales.OrderDelivery{
			MethodID:   deliveryID,
			Address:    row.Delivery.Address,
			City:       row.Delivery.City,
			PostalCode: row.Delivery.PostalCode,
			Country:    row.Delivery.Country,
		},
		sales.OrderPayment{MethodID: paymentID},
	)
	if err != nil {
		return nil, err
	}
	order.ContactPhone = row.ContactPhone
	order.Message = row.Message
	order.CreatedAt = row.Created
	return order, nil
}

// Clear implements transfer.Importer. Items go with their orders.
func (c *OrdersCollection) Clear(ctx context.Context) (int64, error) {
	return c.repo.DeleteAll(ctx)
}

type returnRecord struct {
	ID      uint      `json:"id" validate:"required"`
	OrderID uint      `json:"orderId" validate:"required"`
	Message string    `json:"message"`
	Status  string    `json:"status"`
	Created time.Time `json:"created"`
}

// ReturnsCollection transfers return requests.
type ReturnsCollection struct {
	repo sales.ReturnRepository
}

// Export implements transfer.Exporter
func (c *ReturnsCollection) Export(ctx context.Context) ([]transfer.Record, error) {
	all, err := c.repo.FindAll(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]transfer.Record, 0, len(all))
	for _, r := range all {
		out = append(out, transfer.Record{
			"id":      r.ID,
			"orderId": r.OrderID,
			"message": r.Message,
			"status":  string(r.Status),
			"created": timestamp(r.CreatedAt),
		})
	}
	return out, nil
}

// Import implements transfer.Importer
func (c *ReturnsCollection) Import(ctx context.Context, records []transfer.Record, idMaps transfer.IDMaps) (transfer.IDMap, error) {
	rows, err := decodeRecords[returnRecord](transfer.Returns, records)
	if err != nil {
		return nil, err
	}

	ids := make(transfer.IDMap, len(rows))
	for i, row := range rows {
		orderID, err := idMaps.MustResolve(transfer.Orders, row.OrderID)
		if err != nil {
			return nil, transfer.NewParseError(transfer.Returns, i, err)
		}
		ret, err := sales.NewReturn(orderID, row.Message, sales.ReturnStatus(row.Status))
		if err != nil {
			return nil, transfer.NewParseError(transfer.Returns, i, err)
		}
		ret.CreatedAt = row.Created
		if err := c.repo.Create(ctx, ret); err != nil {
			return nil, fmt.Errorf("create return %d: %w", row.ID, err)
		}
		ids[row.ID] = ret.ID
	}
	return ids, nil
}

// Clear implements transfer.Importer
func (c *ReturnsCollection) Clear(ctx context.Context) (int64, error) {
	return c.repo.DeleteAll(ctx)
}
