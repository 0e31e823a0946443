package entity

import (
	"errors"
	"time"
)

var (
	ErrQuantityNotPositive = errors.New("cart line quantity must be at least 1")
	ErrLineNotFound        = errors.New("line not found in cart")
)

// CartLine is one product-quantity pairing in a user's pending purchase.
// Name and UnitPrice are snapshots taken when the line was added; UnitPrice is
// in currency minor units.
type CartLine struct {
	ProductID string `json:"product_id"`
	Name      string `json:"name"`
	UnitPrice int64  `json:"unit_price"`
	Quantity  int    `json:"quantity"`
}

func NewCartLine(productID, name string, unitPrice int64, quantity int) (*CartLine, error) {
	if productID == "" {
		return nil, errors.New("product ID cannot be empty for cart line")
	}
	if quantity < 1 {
		return nil, ErrQuantityNotPositive
	}
	if unitPrice < 0 {
		return nil, errors.New("cart line unit price cannot be negative")
	}
	return &CartLine{ProductID: productID, Name: name, UnitPrice: unitPrice, Quantity: quantity}, nil
}

// Cart keeps lines in insertion order, unique by product ID.
type Cart struct {
	UserID    string     `json:"user_id"`
	Lines     []CartLine `json:"lines"`
	UpdatedAt time.Time  `json:"updated_at"`
}

func NewCart(userID string) *Cart {
	return &Cart{
		UserID:    userID,
		Lines:     make([]CartLine, 0),
		UpdatedAt: time.Now().UTC(),
	}
}

func (c *Cart) Line(productID string) (*CartLine, int) {
	for i, line := range c.Lines {
		if line.ProductID == productID {
			return &c.Lines[i], i
		}
	}
	return nil, -1
}

// AddLine inserts a new line or increments the quantity of an existing one.
func (c *Cart) AddLine(productID, name string, unitPrice int64, quantity int) error {
	if quantity < 1 {
		return ErrQuantityNotPositive
	}

	line, _ := c.Line(productID)
	if line != nil {
		line.Quantity += quantity
	} else {
		newLine, err := NewCartLine(productID, name, unitPrice, quantity)
		if err != nil {
			return err
		}
		c.Lines = append(c.Lines, *newLine)
	}
	c.UpdatedAt = time.Now().UTC()
	return nil
}

// UpdateQuantity sets the quantity of an existing line. Quantities below 1 are
// rejected; deletion has to go through RemoveLine.
func (c *Cart) UpdateQuantity(productID string, quantity int) error {
	if quantity < 1 {
		return ErrQuantityNotPositive
	}
	line, _ := c.Line(productID)
	if line == nil {
		return ErrLineNotFound
	}
	line.Quantity = quantity
	c.UpdatedAt = time.Now().UTC()
	return nil
}

// RemoveLine deletes a line if present, no-op otherwise.
func (c *Cart) RemoveLine(productID string) {
	_, index := c.Line(productID)
	if index == -1 {
		return
	}
	c.Lines = append(c.Lines[:index], c.Lines[index+1:]...)
	c.UpdatedAt = time.Now().UTC()
}

func (c *Cart) Clear() {
	c.Lines = make([]CartLine, 0)
	c.UpdatedAt = time.Now().UTC()
}

func (c *Cart) IsEmpty() bool {
	return len(c.Lines) == 0
}

// Total is the cart subtotal in minor units, before shipping.
func (c *Cart) Total() int64 {
	var total int64
	for _, line := range c.Lines {
		total += line.UnitPrice * int64(line.Quantity)
	}
	return total
}

// Count is the total number of units across all lines.
func (c *Cart) Count() int {
	var count int
	for _, line := range c.Lines {
		count += line.Quantity
	}
	return count
}
