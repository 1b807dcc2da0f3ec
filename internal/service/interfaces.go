// Package service defines the interfaces for all application services.
package service

import (
	"context"

	"github.com/tillworks/till/internal/model"
)

// SortOrder selects how sales history queries are ordered.
type SortOrder string

// Supported sale sort orders. The zero value sorts oldest first, which is
// the canonical insertion order of the ledger.
const (
	SortOldestFirst   SortOrder = "oldest"
	SortNewestFirst   SortOrder = "newest"
	SortHighestAmount SortOrder = "highest"
	SortLowestAmount  SortOrder = "lowest"
)

// ProductFilter defines filtering options for catalog queries. Zero values
// match everything.
type ProductFilter struct {
	Name     string // case-insensitive substring match on product name
	Category string // exact category match
}

// SaleQuery defines filtering and sorting options for sales history queries.
type SaleQuery struct {
	Customer string // case-insensitive substring match on customer name
	Sort     SortOrder
}

// Inventory is the contract for the product catalog: products plus the
// category set. Stock never goes negative and product IDs are unique for
// the lifetime of the catalog.
type Inventory interface {
	// AddProduct inserts a new product. A zero ID requests automatic
	// assignment from the monotonic next-id counter.
	AddProduct(ctx context.Context, p model.Product) (model.Product, error)
	RemoveProduct(ctx context.Context, id int) error
	// AdjustStock applies delta to the product's quantity as a single
	// atomic step and returns the updated product.
	AdjustStock(ctx context.Context, id, delta int) (model.Product, error)
	GetProduct(ctx context.Context, id int) (model.Product, error)
	ListProducts(ctx context.Context, filter ProductFilter) ([]model.Product, error)
	AddCategory(ctx context.Context, name string) error
	ListCategories(ctx context.Context) ([]string, error)
	Summary(ctx context.Context) (model.CatalogSummary, error)
	NextProductID(ctx context.Context) (int, error)
}

// SalesHistory is the contract for the append-only ledger of committed
// sales. Entries are never edited or removed after creation.
type SalesHistory interface {
	// AppendSale appends a sale and returns its 1-based sale number.
	AppendSale(ctx context.Context, sale model.Sale) (int, error)
	ListSales(ctx context.Context, q SaleQuery) ([]model.SaleRecord, error)
	Aggregate(ctx context.Context) (model.LedgerSummary, error)
	// ExportRows flattens the history to one row per item per sale.
	ExportRows(ctx context.Context) ([]model.SaleRow, error)
}

// Store combines the inventory and sales history behind one backend.
type Store interface {
	Inventory
	SalesHistory
	Close() error
}
