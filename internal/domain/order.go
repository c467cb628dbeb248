package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Common lifecycle labels. Status is stored as free-form text, so callers
// may supply other values.
const (
	OrderStatusPending   = "pending"
	OrderStatusShipped   = "shipped"
	OrderStatusDelivered = "delivered"
	OrderStatusCancelled = "cancelled"
)

// UserRef is the owning user of an order with the name resolved from the
// user directory.
type UserRef struct {
	ID   string `json:"id"`
	Name string `json:"name,omitempty"`
}

// OrderItem is a (product, quantity) line entry owned by exactly one order.
// Price is the product's unit price captured when the order was placed.
type OrderItem struct {
	ID        string          `json:"id"`
	ProductID string          `json:"product"`
	Quantity  int             `json:"quantity"`
	Price     decimal.Decimal `json:"price"`
	Product   *Product        `json:"productDetails,omitempty"`
}

type Order struct {
	ID               string          `json:"id"`
	Items            []OrderItem     `json:"orderItems"`
	ShippingAddress1 string          `json:"shippingAddress1"`
	ShippingAddress2 string          `json:"shippingAddress2,omitempty"`
	City             string          `json:"city"`
	Zip              string          `json:"zip"`
	Country          string          `json:"country"`
	Phone            string          `json:"phone"`
	Status           string          `json:"status"`
	TotalPrice       decimal.Decimal `json:"totalPrice"`
	User             UserRef         `json:"user"`
	DateOrdered      time.Time       `json:"dateOrdered"`
}

// OrderTotal sums quantity times unit price over the given items. The unit
// prices must already be captured, so the result reflects product prices at
// creation time and is never recomputed from the catalog afterwards.
func OrderTotal(items []OrderItem) decimal.Decimal {
	total := decimal.Zero
	for _, item := range items {
		total = total.Add(item.Price.Mul(decimal.NewFromInt(int64(item.Quantity))))
	}
	return total
}
