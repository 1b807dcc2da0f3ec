package model

import (
	"github.com/shopspring/decimal"
)

// CartLine is a staged reservation of a product quantity. Name and unit
// price are snapshots taken when the line was added; later catalog changes
// do not affect them.
type CartLine struct {
	Name      string
	UnitPrice decimal.Decimal
	ProductID int
	Quantity  int
}

// Total returns the line total (unit price × quantity).
func (l CartLine) Total() decimal.Decimal {
	return l.UnitPrice.Mul(decimal.NewFromInt(int64(l.Quantity)))
}
