// Package ledger provides the in-memory append-only history of committed
// sales.
package ledger

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/shopspring/decimal"

	"github.com/tillworks/till/internal/model"
	"github.com/tillworks/till/internal/service"
)

// Ledger stores committed sales in insertion order. The stored slice is
// never reordered or mutated after append; the insertion index is the
// canonical sale number.
type Ledger struct {
	sales []model.Sale
	mu    sync.RWMutex
}

var _ service.SalesHistory = (*Ledger)(nil)

// New creates an empty ledger.
func New() *Ledger {
	return &Ledger{}
}

// AppendSale appends a sale and returns its 1-based sale number.
func (l *Ledger) AppendSale(_ context.Context, sale model.Sale) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.sales = append(l.sales, sale)
	return len(l.sales), nil
}

// ListSales returns a filtered, sorted copy of the history. The default
// order is insertion order (oldest first); amount sorts are stable, so
// equal totals keep their relative insertion order. Each record carries
// its canonical sale number even when the view is filtered or reordered.
func (l *Ledger) ListSales(_ context.Context, q service.SaleQuery) ([]model.SaleRecord, error) {
	l.mu.RLock()
	sales := make([]model.SaleRecord, 0, len(l.sales))
	for i, s := range l.sales {
		sales = append(sales, model.SaleRecord{Sale: s, Number: i + 1})
	}
	l.mu.RUnlock()

	if q.Customer != "" {
		needle := strings.ToLower(q.Customer)
		filtered := sales[:0]
		for _, s := range sales {
			if strings.Contains(strings.ToLower(s.Customer), needle) {
				filtered = append(filtered, s)
			}
		}
		sales = filtered
	}

	switch q.Sort {
	case service.SortNewestFirst:
		for i, j := 0, len(sales)-1; i < j; i, j = i+1, j-1 {
			sales[i], sales[j] = sales[j], sales[i]
		}
	case service.SortHighestAmount:
		sort.SliceStable(sales, func(i, j int) bool {
			return sales[i].Total.GreaterThan(sales[j].Total)
		})
	case service.SortLowestAmount:
		sort.SliceStable(sales, func(i, j int) bool {
			return sales[i].Total.LessThan(sales[j].Total)
		})
	}

	return sales, nil
}

// Aggregate computes totals over the whole history. The average is zero
// when the history is empty.
func (l *Ledger) Aggregate(_ context.Context) (model.LedgerSummary, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	summary := model.LedgerSummary{
		TotalSales:       decimal.Zero,
		AverageSale:      decimal.Zero,
		TransactionCount: len(l.sales),
	}
	for _, s := range l.sales {
		summary.TotalSales = summary.TotalSales.Add(s.Total)
	}
	if summary.TransactionCount > 0 {
		summary.AverageSale = summary.TotalSales.Div(decimal.NewFromInt(int64(summary.TransactionCount)))
	}
	return summary, nil
}

// ExportRows flattens the history to one row per item per sale, in
// insertion order.
func (l *Ledger) ExportRows(_ context.Context) ([]model.SaleRow, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	var rows []model.SaleRow
	for i, sale := range l.sales {
		for _, line := range sale.Lines {
			rows = append(rows, model.SaleRow{
				SaleNumber: i + 1,
				Date:       sale.Timestamp.Format(model.SaleTimeLayout),
				Customer:   sale.Customer,
				Product:    line.Name,
				Quantity:   line.Quantity,
				Price:      line.UnitPrice,
				ItemTotal:  line.Total(),
				BillTotal:  sale.Total,
			})
		}
	}
	return rows, nil
}
