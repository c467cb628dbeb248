package domain

import "github.com/shopspring/decimal"

type Category struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Icon  string `json:"icon,omitempty"`
	Color string `json:"color,omitempty"`
}

// Product is a catalog record. CountInStock is decremented when an order is
// placed and may go negative.
type Product struct {
	ID           string          `json:"id"`
	Name         string          `json:"name"`
	Price        decimal.Decimal `json:"price"`
	CountInStock int             `json:"countInStock"`
	CategoryID   string          `json:"category"`
	Category     *Category       `json:"categoryDetails,omitempty"`
}
