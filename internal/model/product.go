// Package model defines the core entities of the stock and billing system.
package model

import (
	"github.com/shopspring/decimal"
)

// ExpiryDateLayout is the ISO calendar date format used for product expiry dates.
const ExpiryDateLayout = "2006-01-02"

// Product represents a single catalog entry. The ID is immutable once
// assigned; all other fields change only through catalog operations.
type Product struct {
	Name       string
	ExpiryDate string // ISO date, e.g. "2025-05-10"
	Category   string
	Price      decimal.Decimal
	ID         int
	Quantity   int
}

// StockValue returns the inventory value of this product (price × quantity).
func (p Product) StockValue() decimal.Decimal {
	return p.Price.Mul(decimal.NewFromInt(int64(p.Quantity)))
}

// Category is a unique label products may reference. Membership only, no
// attributes beyond the name.
type Category struct {
	Name string
}

// CatalogSummary contains the aggregate figures shown on the dashboard.
type CatalogSummary struct {
	InventoryValue decimal.Decimal
	ProductCount   int
	TotalStock     int
	CategoryCount  int
}
