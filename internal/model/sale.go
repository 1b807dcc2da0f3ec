package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// SaleTimeLayout is the display format for sale timestamps.
const SaleTimeLayout = "2006-01-02 15:04:05"

// Sale is an immutable record of a committed bill. Lines are a snapshot
// copy of the cart at commit time and never alias live cart state.
type Sale struct {
	Timestamp      time.Time
	Customer       string
	Lines          []CartLine
	Subtotal       decimal.Decimal
	DiscountAmount decimal.Decimal
	TaxAmount      decimal.Decimal
	Total          decimal.Decimal
}

// SaleRecord pairs a sale with its canonical 1-based number, which is the
// sale's insertion position in the ledger regardless of how a query was
// filtered or sorted.
type SaleRecord struct {
	Sale
	Number int
}

// SaleRow is one exported row per item per sale, in the column order the
// downstream tabular export expects.
type SaleRow struct {
	SaleNumber int             `csv:"Sale #"`
	Date       string          `csv:"Date"`
	Customer   string          `csv:"Customer"`
	Product    string          `csv:"Product"`
	Quantity   int             `csv:"Quantity"`
	Price      decimal.Decimal `csv:"Price"`
	ItemTotal  decimal.Decimal `csv:"Item Total"`
	BillTotal  decimal.Decimal `csv:"Bill Total"`
}

// LedgerSummary contains aggregate metrics over the whole sales history.
type LedgerSummary struct {
	TotalSales       decimal.Decimal
	AverageSale      decimal.Decimal
	TransactionCount int
}
