package entity

import (
	"errors"
	"fmt"
	"time"
)

// Shipping is free above the threshold, otherwise a flat fee applies. Both
// values are in currency minor units.
const (
	FreeShippingThreshold int64 = 50000
	FlatShippingFee       int64 = 5000
)

// ShippingFee returns the shipping cost for a given cart subtotal.
func ShippingFee(subtotal int64) int64 {
	if subtotal >= FreeShippingThreshold {
		return 0
	}
	return FlatShippingFee
}

type OrderStatus string

const (
	StatusConfirmed OrderStatus = "CONFIRMED"
)

type OrderLine struct {
	ProductID string `json:"product_id"`
	Name      string `json:"name"`
	UnitPrice int64  `json:"unit_price"`
	Quantity  int    `json:"quantity"`
	Subtotal  int64  `json:"subtotal"`
}

func NewOrderLine(productID, name string, unitPrice int64, quantity int) (*OrderLine, error) {
	if productID == "" {
		return nil, errors.New("product ID cannot be empty")
	}
	if quantity < 1 {
		return nil, errors.New("order line quantity must be at least 1")
	}
	if unitPrice < 0 {
		return nil, errors.New("order line unit price cannot be negative")
	}
	return &OrderLine{
		ProductID: productID,
		Name:      name,
		UnitPrice: unitPrice,
		Quantity:  quantity,
		Subtotal:  unitPrice * int64(quantity),
	}, nil
}

// Order is the ephemeral confirmation snapshot produced by a successful
// checkout. It is surfaced to the caller and never persisted.
type Order struct {
	ID        string      `json:"id"`
	UserID    string      `json:"user_id"`
	Lines     []OrderLine `json:"lines"`
	Subtotal  int64       `json:"subtotal"`
	Shipping  int64       `json:"shipping"`
	Total     int64       `json:"total"`
	Status    OrderStatus `json:"status"`
	CreatedAt time.Time   `json:"created_at"`
}

func NewOrder(userID string, lines []OrderLine) (*Order, error) {
	if userID == "" {
		return nil, errors.New("user ID cannot be empty")
	}
	if len(lines) == 0 {
		return nil, errors.New("order must contain at least one line")
	}

	now := time.Now().UTC()
	order := &Order{
		ID:        fmt.Sprintf("ORD-%d", now.UnixNano()),
		UserID:    userID,
		Lines:     lines,
		Status:    StatusConfirmed,
		CreatedAt: now,
	}
	for _, line := range lines {
		order.Subtotal += line.Subtotal
	}
	order.Shipping = ShippingFee(order.Subtotal)
	order.Total = order.Subtotal + order.Shipping
	return order, nil
}
