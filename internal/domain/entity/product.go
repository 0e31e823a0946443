package entity

import "fmt"

// Product is the storefront's view of a record owned by the remote product
// service. Stock and price can change between any two reads; nothing here is
// a consistency guarantee.
type Product struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Price int64  `json:"price"`
	Stock int    `json:"stock"`
}

// StockInsufficientError blocks a checkout or a cart quantity change when the
// requested quantity exceeds the remotely available stock.
type StockInsufficientError struct {
	ProductID string
	Name      string
	Available int
	Requested int
}

func (e *StockInsufficientError) Error() string {
	name := e.Name
	if name == "" {
		name = e.ProductID
	}
	return fmt.Sprintf("insufficient stock for product %s, available: %d", name, e.Available)
}
