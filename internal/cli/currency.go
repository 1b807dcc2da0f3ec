package cli

import (
	"github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"
)

// DefaultCurrency is the display currency when none is configured.
const DefaultCurrency = money.INR

// FormatAmount renders a decimal amount in the given display currency,
// e.g. "₹708.75". Formatting only: all arithmetic stays in decimals.
func FormatAmount(amount decimal.Decimal, currencyCode string) string {
	if currencyCode == "" {
		currencyCode = DefaultCurrency
	}
	currency := money.GetCurrency(currencyCode)
	if currency == nil {
		currency = money.GetCurrency(DefaultCurrency)
	}

	minor := amount.Shift(int32(currency.Fraction)).Round(0)
	return money.New(minor.IntPart(), currency.Code).Display()
}
