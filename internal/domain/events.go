package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type OrderCreatedEvent struct {
	OrderID    string           `json:"order_id"`
	UserID     string           `json:"user_id"`
	Items      []OrderItemEvent `json:"items"`
	TotalPrice decimal.Decimal  `json:"total_price"`
	Timestamp  time.Time        `json:"timestamp"`
}

type OrderItemEvent struct {
	ProductID string `json:"product_id"`
	Quantity  int    `json:"quantity"`
}
