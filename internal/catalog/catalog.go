// Package catalog provides the in-memory product catalog: the authoritative
// set of available products and categories.
package catalog

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"sync"

	"github.com/shopspring/decimal"

	"github.com/tillworks/till/internal/common"
	"github.com/tillworks/till/internal/model"
	"github.com/tillworks/till/internal/service"
)

// Catalog holds products keyed by ID plus the category set. All methods
// are safe for concurrent use; the mutex is the mutual-exclusion boundary
// around every read-modify-write.
type Catalog struct {
	products   map[int]model.Product
	categories map[string]struct{}
	nextID     int
	mu         sync.RWMutex
}

// Compile-time check that Catalog satisfies the inventory contract.
var _ service.Inventory = (*Catalog)(nil)

// New creates an empty catalog.
func New() *Catalog {
	return &Catalog{
		products:   make(map[int]model.Product),
		categories: make(map[string]struct{}),
		nextID:     1,
	}
}

// AddProduct inserts a new product. A zero ID requests automatic assignment.
func (c *Catalog) AddProduct(_ context.Context, p model.Product) (model.Product, error) {
	if err := p.ValidateNew(); err != nil {
		return model.Product{}, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if p.ID == 0 {
		p.ID = c.nextID
	}
	if _, exists := c.products[p.ID]; exists {
		return model.Product{}, fmt.Errorf("%w: %d", common.ErrDuplicateID, p.ID)
	}

	p.Name = strings.TrimSpace(p.Name)
	p.Category = strings.TrimSpace(p.Category)

	c.products[p.ID] = p
	c.categories[p.Category] = struct{}{}

	// The counter only ever advances, even when a caller supplies an
	// explicit ID below the current maximum.
	if p.ID >= c.nextID {
		c.nextID = p.ID + 1
	}

	slog.Info("product added", "id", p.ID, "name", p.Name, "category", p.Category)
	return p, nil
}

// RemoveProduct deletes a product unconditionally. Historical sales keep
// their own snapshots and are unaffected; the next-id counter never
// decreases, so a removed ID is not reused.
func (c *Catalog) RemoveProduct(_ context.Context, id int) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.products[id]; !exists {
		return fmt.Errorf("%w: %d", common.ErrNotFound, id)
	}
	delete(c.products, id)

	slog.Info("product removed", "id", id)
	return nil
}

// AdjustStock applies delta to the product's quantity. A delta that would
// drive the quantity negative fails and leaves the product unchanged.
func (c *Catalog) AdjustStock(_ context.Context, id, delta int) (model.Product, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	p, exists := c.products[id]
	if !exists {
		return model.Product{}, fmt.Errorf("%w: %d", common.ErrNotFound, id)
	}
	if p.Quantity+delta < 0 {
		return model.Product{}, fmt.Errorf("%w: product %d has %d units, requested change %d",
			common.ErrInsufficientStock, id, p.Quantity, delta)
	}

	p.Quantity += delta
	c.products[id] = p

	slog.Debug("stock adjusted", "id", id, "delta", delta, "quantity", p.Quantity)
	return p, nil
}

// GetProduct returns a snapshot of the product with the given ID.
func (c *Catalog) GetProduct(_ context.Context, id int) (model.Product, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	p, exists := c.products[id]
	if !exists {
		return model.Product{}, fmt.Errorf("%w: %d", common.ErrNotFound, id)
	}
	return p, nil
}

// ListProducts returns a snapshot of products matching the filter, ordered
// by ID.
func (c *Catalog) ListProducts(_ context.Context, filter service.ProductFilter) ([]model.Product, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	products := make([]model.Product, 0, len(c.products))
	for _, p := range c.products {
		if filter.Name != "" && !strings.Contains(strings.ToLower(p.Name), strings.ToLower(filter.Name)) {
			continue
		}
		if filter.Category != "" && p.Category != filter.Category {
			continue
		}
		products = append(products, p)
	}

	sort.Slice(products, func(i, j int) bool { return products[i].ID < products[j].ID })
	return products, nil
}

// AddCategory inserts a category by name. Inserting an existing name is a
// no-op; an empty name is invalid.
func (c *Catalog) AddCategory(_ context.Context, name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return fmt.Errorf("%w: category name cannot be empty", common.ErrInvalidInput)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.categories[name]; !exists {
		c.categories[name] = struct{}{}
		slog.Info("category added", "name", name)
	}
	return nil
}

// ListCategories returns all category names in sorted order. Categories are
// never auto-deleted, even when no product references them.
func (c *Catalog) ListCategories(_ context.Context) ([]string, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	names := make([]string, 0, len(c.categories))
	for name := range c.categories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

// Summary computes the dashboard aggregates over the whole catalog.
func (c *Catalog) Summary(_ context.Context) (model.CatalogSummary, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	summary := model.CatalogSummary{
		ProductCount:   len(c.products),
		CategoryCount:  len(c.categories),
		InventoryValue: decimal.Zero,
	}
	for _, p := range c.products {
		summary.TotalStock += p.Quantity
		summary.InventoryValue = summary.InventoryValue.Add(p.StockValue())
	}
	return summary, nil
}

// NextProductID returns the ID the next automatic assignment would use.
func (c *Catalog) NextProductID(_ context.Context) (int, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.nextID, nil
}
