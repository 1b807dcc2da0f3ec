package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/tillworks/till/internal/common"
	"github.com/tillworks/till/internal/model"
	"github.com/tillworks/till/internal/service"
)

// AddProduct inserts a new product, assigning an ID from the monotonic
// counter when the caller passes zero. The product row, the category row
// and the counter update land in one transaction.
func (s *SQLiteStore) AddProduct(ctx context.Context, p model.Product) (model.Product, error) {
	if err := p.ValidateNew(); err != nil {
		return model.Product{}, err
	}

	tx, err := s.beginTx(ctx)
	if err != nil {
		return model.Product{}, err
	}
	defer func() { _ = tx.Rollback() }()

	if p.ID == 0 {
		var next int
		if err := tx.QueryRowContext(ctx, `SELECT value FROM counters WHERE name = 'next_product_id'`).Scan(&next); err != nil {
			return model.Product{}, fmt.Errorf("failed to read id counter: %w", err)
		}
		p.ID = next
	}

	var exists int
	err = tx.QueryRowContext(ctx, `SELECT 1 FROM products WHERE id = ?`, p.ID).Scan(&exists)
	if err == nil {
		return model.Product{}, fmt.Errorf("%w: %d", common.ErrDuplicateID, p.ID)
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return model.Product{}, fmt.Errorf("failed to check existing product: %w", err)
	}

	p.Name = strings.TrimSpace(p.Name)
	p.Category = strings.TrimSpace(p.Category)

	_, err = tx.ExecContext(ctx, `
		INSERT INTO products (id, name, price, quantity, expiry_date, category)
		VALUES (?, ?, ?, ?, ?, ?)`,
		p.ID, p.Name, p.Price.String(), p.Quantity, p.ExpiryDate, p.Category)
	if err != nil {
		return model.Product{}, fmt.Errorf("failed to insert product: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `INSERT OR IGNORE INTO categories (name) VALUES (?)`, p.Category); err != nil {
		return model.Product{}, fmt.Errorf("failed to insert category: %w", err)
	}

	// The counter only advances, even for explicit IDs below the maximum.
	if _, err := tx.ExecContext(ctx, `
		UPDATE counters SET value = MAX(value, ?) WHERE name = 'next_product_id'`, p.ID+1); err != nil {
		return model.Product{}, fmt.Errorf("failed to advance id counter: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return model.Product{}, fmt.Errorf("failed to commit: %w", err)
	}

	slog.Info("product added", "id", p.ID, "name", p.Name, "category", p.Category)
	return p, nil
}

// RemoveProduct deletes a product unconditionally. Sales history keeps its
// own snapshots, so no referential check is made.
func (s *SQLiteStore) RemoveProduct(ctx context.Context, id int) error {
	if err := validateContext(ctx); err != nil {
		return err
	}

	result, err := s.db.ExecContext(ctx, `DELETE FROM products WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete product: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check delete result: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("%w: %d", common.ErrNotFound, id)
	}

	slog.Info("product removed", "id", id)
	return nil
}

// AdjustStock applies delta to the product's quantity in a single guarded
// update, so the stock can never be driven negative.
func (s *SQLiteStore) AdjustStock(ctx context.Context, id, delta int) (model.Product, error) {
	if err := validateContext(ctx); err != nil {
		return model.Product{}, err
	}

	result, err := s.db.ExecContext(ctx, `
		UPDATE products SET quantity = quantity + ?
		WHERE id = ? AND quantity + ? >= 0`,
		delta, id, delta)
	if err != nil {
		return model.Product{}, fmt.Errorf("failed to adjust stock: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return model.Product{}, fmt.Errorf("failed to check update result: %w", err)
	}
	if affected == 0 {
		// Distinguish a missing product from a rejected decrement.
		p, getErr := s.GetProduct(ctx, id)
		if getErr != nil {
			return model.Product{}, getErr
		}
		return model.Product{}, fmt.Errorf("%w: product %d has %d units, requested change %d",
			common.ErrInsufficientStock, id, p.Quantity, delta)
	}

	p, err := s.GetProduct(ctx, id)
	if err != nil {
		return model.Product{}, err
	}

	slog.Debug("stock adjusted", "id", id, "delta", delta, "quantity", p.Quantity)
	return p, nil
}

// GetProduct returns the product with the given ID.
func (s *SQLiteStore) GetProduct(ctx context.Context, id int) (model.Product, error) {
	if err := validateContext(ctx); err != nil {
		return model.Product{}, err
	}

	row := s.db.QueryRowContext(ctx, `
		SELECT id, name, price, quantity, expiry_date, category
		FROM products WHERE id = ?`, id)

	p, err := scanProduct(row)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Product{}, fmt.Errorf("%w: %d", common.ErrNotFound, id)
	}
	if err != nil {
		return model.Product{}, fmt.Errorf("failed to query product: %w", err)
	}
	return p, nil
}

// ListProducts returns products matching the filter, ordered by ID.
func (s *SQLiteStore) ListProducts(ctx context.Context, filter service.ProductFilter) ([]model.Product, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	query := `SELECT id, name, price, quantity, expiry_date, category FROM products`
	var conds []string
	var args []any
	if filter.Name != "" {
		conds = append(conds, `name LIKE '%' || ? || '%' COLLATE NOCASE`)
		args = append(args, filter.Name)
	}
	if filter.Category != "" {
		conds = append(conds, `category = ?`)
		args = append(args, filter.Category)
	}
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	query += " ORDER BY id"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query products: %w", err)
	}
	defer rows.Close()

	products := make([]model.Product, 0)
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan product: %w", err)
		}
		products = append(products, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating products: %w", err)
	}
	return products, nil
}

// AddCategory inserts a category by name; inserting an existing name is a
// no-op.
func (s *SQLiteStore) AddCategory(ctx context.Context, name string) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return fmt.Errorf("%w: category name cannot be empty", common.ErrInvalidInput)
	}

	if _, err := s.db.ExecContext(ctx, `INSERT OR IGNORE INTO categories (name) VALUES (?)`, name); err != nil {
		return fmt.Errorf("failed to insert category: %w", err)
	}
	return nil
}

// ListCategories returns all category names in sorted order.
func (s *SQLiteStore) ListCategories(ctx context.Context) ([]string, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `SELECT name FROM categories ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("failed to query categories: %w", err)
	}
	defer rows.Close()

	names := make([]string, 0)
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("failed to scan category: %w", err)
		}
		names = append(names, name)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating categories: %w", err)
	}
	return names, nil
}

// Summary computes the dashboard aggregates over the whole catalog.
func (s *SQLiteStore) Summary(ctx context.Context) (model.CatalogSummary, error) {
	products, err := s.ListProducts(ctx, service.ProductFilter{})
	if err != nil {
		return model.CatalogSummary{}, err
	}

	summary := model.CatalogSummary{
		ProductCount:   len(products),
		InventoryValue: decimal.Zero,
	}
	for _, p := range products {
		summary.TotalStock += p.Quantity
		summary.InventoryValue = summary.InventoryValue.Add(p.StockValue())
	}

	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM categories`).Scan(&summary.CategoryCount); err != nil {
		return model.CatalogSummary{}, fmt.Errorf("failed to count categories: %w", err)
	}
	return summary, nil
}

// NextProductID returns the ID the next automatic assignment would use.
func (s *SQLiteStore) NextProductID(ctx context.Context) (int, error) {
	if err := validateContext(ctx); err != nil {
		return 0, err
	}

	var next int
	if err := s.db.QueryRowContext(ctx, `SELECT value FROM counters WHERE name = 'next_product_id'`).Scan(&next); err != nil {
		return 0, fmt.Errorf("failed to read id counter: %w", err)
	}
	return next, nil
}

// scanner covers both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanProduct(row scanner) (model.Product, error) {
	var p model.Product
	var price string
	if err := row.Scan(&p.ID, &p.Name, &price, &p.Quantity, &p.ExpiryDate, &p.Category); err != nil {
		return model.Product{}, err
	}

	parsed, err := decimal.NewFromString(price)
	if err != nil {
		return model.Product{}, fmt.Errorf("invalid stored price %q: %w", price, err)
	}
	p.Price = parsed
	return p, nil
}
