package storage

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/tillworks/till/internal/model"
	"github.com/tillworks/till/internal/service"
)

// AppendSale appends a sale and its line items in one transaction and
// returns the 1-based sale number. Sales are never updated or deleted, so
// the rowid sequence is the canonical sale numbering.
func (s *SQLiteStore) AppendSale(ctx context.Context, sale model.Sale) (int, error) {
	if err := validateContext(ctx); err != nil {
		return 0, err
	}
	if err := validateSale(&sale); err != nil {
		return 0, err
	}

	tx, err := s.beginTx(ctx)
	if err != nil {
		return 0, err
	}
	defer func() { _ = tx.Rollback() }()

	result, err := tx.ExecContext(ctx, `
		INSERT INTO sales (customer, subtotal, discount_amount, tax_amount, total, sold_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		sale.Customer,
		sale.Subtotal.String(),
		sale.DiscountAmount.String(),
		sale.TaxAmount.String(),
		sale.Total.String(),
		sale.Timestamp)
	if err != nil {
		return 0, fmt.Errorf("failed to insert sale: %w", err)
	}

	saleID, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get sale id: %w", err)
	}

	for _, line := range sale.Lines {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO sale_items (sale_id, product_id, name, unit_price, quantity)
			VALUES (?, ?, ?, ?, ?)`,
			saleID, line.ProductID, line.Name, line.UnitPrice.String(), line.Quantity); err != nil {
			return 0, fmt.Errorf("failed to insert sale item: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit sale: %w", err)
	}

	slog.Info("sale appended", "sale", saleID, "customer", sale.Customer, "total", sale.Total.String())
	return int(saleID), nil
}

// ListSales returns a filtered, sorted view of the history. Records load
// in insertion order and carry their canonical sale number; amount sorts
// are stable with respect to equal totals.
func (s *SQLiteStore) ListSales(ctx context.Context, q service.SaleQuery) ([]model.SaleRecord, error) {
	records, err := s.loadSales(ctx)
	if err != nil {
		return nil, err
	}

	if q.Customer != "" {
		needle := strings.ToLower(q.Customer)
		filtered := records[:0]
		for _, r := range records {
			if strings.Contains(strings.ToLower(r.Customer), needle) {
				filtered = append(filtered, r)
			}
		}
		records = filtered
	}

	switch q.Sort {
	case service.SortNewestFirst:
		for i, j := 0, len(records)-1; i < j; i, j = i+1, j-1 {
			records[i], records[j] = records[j], records[i]
		}
	case service.SortHighestAmount:
		sort.SliceStable(records, func(i, j int) bool {
			return records[i].Total.GreaterThan(records[j].Total)
		})
	case service.SortLowestAmount:
		sort.SliceStable(records, func(i, j int) bool {
			return records[i].Total.LessThan(records[j].Total)
		})
	}

	return records, nil
}

// Aggregate computes totals over the whole history. The average is zero
// when the history is empty.
func (s *SQLiteStore) Aggregate(ctx context.Context) (model.LedgerSummary, error) {
	records, err := s.loadSales(ctx)
	if err != nil {
		return model.LedgerSummary{}, err
	}

	summary := model.LedgerSummary{
		TotalSales:       decimal.Zero,
		AverageSale:      decimal.Zero,
		TransactionCount: len(records),
	}
	for _, r := range records {
		summary.TotalSales = summary.TotalSales.Add(r.Total)
	}
	if summary.TransactionCount > 0 {
		summary.AverageSale = summary.TotalSales.Div(decimal.NewFromInt(int64(summary.TransactionCount)))
	}
	return summary, nil
}

// ExportRows flattens the history to one row per item per sale, in
// insertion order.
func (s *SQLiteStore) ExportRows(ctx context.Context) ([]model.SaleRow, error) {
	records, err := s.loadSales(ctx)
	if err != nil {
		return nil, err
	}

	var rows []model.SaleRow
	for _, r := range records {
		for _, line := range r.Lines {
			rows = append(rows, model.SaleRow{
				SaleNumber: r.Number,
				Date:       r.Timestamp.Format(model.SaleTimeLayout),
				Customer:   r.Customer,
				Product:    line.Name,
				Quantity:   line.Quantity,
				Price:      line.UnitPrice,
				ItemTotal:  line.Total(),
				BillTotal:  r.Total,
			})
		}
	}
	return rows, nil
}

// loadSales reads the entire history in insertion order with line items
// attached.
func (s *SQLiteStore) loadSales(ctx context.Context) ([]model.SaleRecord, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, customer, subtotal, discount_amount, tax_amount, total, sold_at
		FROM sales ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to query sales: %w", err)
	}
	defer rows.Close()

	records := make([]model.SaleRecord, 0)
	index := make(map[int64]int)
	for rows.Next() {
		var (
			id                                   int64
			subtotal, discount, taxAmount, total string
			record                               model.SaleRecord
		)
		if err := rows.Scan(&id, &record.Customer, &subtotal, &discount, &taxAmount, &total, &record.Timestamp); err != nil {
			return nil, fmt.Errorf("failed to scan sale: %w", err)
		}
		if record.Subtotal, err = decimal.NewFromString(subtotal); err != nil {
			return nil, fmt.Errorf("invalid stored subtotal %q: %w", subtotal, err)
		}
		if record.DiscountAmount, err = decimal.NewFromString(discount); err != nil {
			return nil, fmt.Errorf("invalid stored discount %q: %w", discount, err)
		}
		if record.TaxAmount, err = decimal.NewFromString(taxAmount); err != nil {
			return nil, fmt.Errorf("invalid stored tax %q: %w", taxAmount, err)
		}
		if record.Total, err = decimal.NewFromString(total); err != nil {
			return nil, fmt.Errorf("invalid stored total %q: %w", total, err)
		}

		record.Number = len(records) + 1
		index[id] = len(records)
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating sales: %w", err)
	}

	itemRows, err := s.db.QueryContext(ctx, `
		SELECT sale_id, product_id, name, unit_price, quantity
		FROM sale_items ORDER BY sale_id, id`)
	if err != nil {
		return nil, fmt.Errorf("failed to query sale items: %w", err)
	}
	defer itemRows.Close()

	for itemRows.Next() {
		var (
			saleID    int64
			unitPrice string
			line      model.CartLine
		)
		if err := itemRows.Scan(&saleID, &line.ProductID, &line.Name, &unitPrice, &line.Quantity); err != nil {
			return nil, fmt.Errorf("failed to scan sale item: %w", err)
		}
		if line.UnitPrice, err = decimal.NewFromString(unitPrice); err != nil {
			return nil, fmt.Errorf("invalid stored unit price %q: %w", unitPrice, err)
		}

		if i, ok := index[saleID]; ok {
			records[i].Lines = append(records[i].Lines, line)
		}
	}
	if err := itemRows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating sale items: %w", err)
	}

	return records, nil
}
