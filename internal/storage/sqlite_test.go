package storage

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tillworks/till/internal/common"
	"github.com/tillworks/till/internal/model"
	"github.com/tillworks/till/internal/service"
)

func createTestStore(t *testing.T) *SQLiteStore {
	t.Helper()

	store, err := NewSQLiteStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = store.Close()
	})

	require.NoError(t, store.Migrate(context.Background()))
	return store
}

func testProduct(name string) model.Product {
	return model.Product{
		Name:       name,
		Price:      decimal.NewFromInt(150),
		Quantity:   50,
		ExpiryDate: "2026-05-10",
		Category:   "Cosmetics",
	}
}

func testSale(customer string, total string, lines ...model.CartLine) model.Sale {
	return model.Sale{
		Timestamp:      time.Date(2025, 1, 15, 9, 30, 42, 0, time.UTC),
		Customer:       customer,
		Lines:          lines,
		Subtotal:       decimal.RequireFromString(total),
		DiscountAmount: decimal.Zero,
		TaxAmount:      decimal.Zero,
		Total:          decimal.RequireFromString(total),
	}
}

func TestNewSQLiteStore(t *testing.T) {
	t.Run("rejects empty path", func(t *testing.T) {
		_, err := NewSQLiteStore("")
		assert.Error(t, err)
	})

	t.Run("migrates to the expected version", func(t *testing.T) {
		store := createTestStore(t)

		var version int
		require.NoError(t, store.db.QueryRow("PRAGMA user_version").Scan(&version))
		assert.Equal(t, ExpectedSchemaVersion, version)
	})

	t.Run("migrate is idempotent", func(t *testing.T) {
		store := createTestStore(t)
		require.NoError(t, store.Migrate(context.Background()))
	})
}

func TestStoreAddProduct(t *testing.T) {
	ctx := context.Background()

	t.Run("assigns sequential ids", func(t *testing.T) {
		store := createTestStore(t)

		p1, err := store.AddProduct(ctx, testProduct("Soap"))
		require.NoError(t, err)
		assert.Equal(t, 1, p1.ID)

		p2, err := store.AddProduct(ctx, testProduct("Oil"))
		require.NoError(t, err)
		assert.Equal(t, 2, p2.ID)
	})

	t.Run("round-trips the price exactly", func(t *testing.T) {
		store := createTestStore(t)

		p := testProduct("Soap")
		p.Price = decimal.RequireFromString("149.99")
		added, err := store.AddProduct(ctx, p)
		require.NoError(t, err)

		got, err := store.GetProduct(ctx, added.ID)
		require.NoError(t, err)
		assert.True(t, got.Price.Equal(decimal.RequireFromString("149.99")), "got %s", got.Price)
	})

	t.Run("rejects duplicate explicit id", func(t *testing.T) {
		store := createTestStore(t)

		p := testProduct("Soap")
		p.ID = 7
		_, err := store.AddProduct(ctx, p)
		require.NoError(t, err)

		q := testProduct("Oil")
		q.ID = 7
		_, err = store.AddProduct(ctx, q)
		assert.ErrorIs(t, err, common.ErrDuplicateID)
	})

	t.Run("rejects invalid input", func(t *testing.T) {
		store := createTestStore(t)

		p := testProduct("Soap")
		p.Price = decimal.Zero
		_, err := store.AddProduct(ctx, p)
		assert.ErrorIs(t, err, common.ErrInvalidInput)
	})

	t.Run("creates the category implicitly", func(t *testing.T) {
		store := createTestStore(t)

		_, err := store.AddProduct(ctx, testProduct("Soap"))
		require.NoError(t, err)

		categories, err := store.ListCategories(ctx)
		require.NoError(t, err)
		assert.Equal(t, []string{"Cosmetics"}, categories)
	})

	t.Run("counter survives removal", func(t *testing.T) {
		store := createTestStore(t)

		p, err := store.AddProduct(ctx, testProduct("Soap"))
		require.NoError(t, err)
		require.NoError(t, store.RemoveProduct(ctx, p.ID))

		next, err := store.NextProductID(ctx)
		require.NoError(t, err)
		assert.Equal(t, 2, next)

		replacement, err := store.AddProduct(ctx, testProduct("Oil"))
		require.NoError(t, err)
		assert.Equal(t, 2, replacement.ID)
	})

	t.Run("explicit id advances the counter", func(t *testing.T) {
		store := createTestStore(t)

		p := testProduct("Soap")
		p.ID = 10
		_, err := store.AddProduct(ctx, p)
		require.NoError(t, err)

		next, err := store.NextProductID(ctx)
		require.NoError(t, err)
		assert.Equal(t, 11, next)
	})
}

func TestStoreRemoveProduct(t *testing.T) {
	ctx := context.Background()
	store := createTestStore(t)

	p, err := store.AddProduct(ctx, testProduct("Soap"))
	require.NoError(t, err)

	require.NoError(t, store.RemoveProduct(ctx, p.ID))
	_, err = store.GetProduct(ctx, p.ID)
	assert.ErrorIs(t, err, common.ErrNotFound)

	err = store.RemoveProduct(ctx, p.ID)
	assert.ErrorIs(t, err, common.ErrNotFound)
}

func TestStoreAdjustStock(t *testing.T) {
	ctx := context.Background()

	t.Run("applies deltas within bounds", func(t *testing.T) {
		store := createTestStore(t)
		p, err := store.AddProduct(ctx, testProduct("Soap"))
		require.NoError(t, err)

		updated, err := store.AdjustStock(ctx, p.ID, -5)
		require.NoError(t, err)
		assert.Equal(t, 45, updated.Quantity)

		updated, err = store.AdjustStock(ctx, p.ID, -45)
		require.NoError(t, err)
		assert.Equal(t, 0, updated.Quantity)
	})

	t.Run("guarded update rejects a negative result", func(t *testing.T) {
		store := createTestStore(t)
		p, err := store.AddProduct(ctx, testProduct("Soap"))
		require.NoError(t, err)

		_, err = store.AdjustStock(ctx, p.ID, -51)
		assert.ErrorIs(t, err, common.ErrInsufficientStock)

		got, err := store.GetProduct(ctx, p.ID)
		require.NoError(t, err)
		assert.Equal(t, 50, got.Quantity)
	})

	t.Run("fails for unknown id", func(t *testing.T) {
		store := createTestStore(t)
		_, err := store.AdjustStock(ctx, 42, 1)
		assert.ErrorIs(t, err, common.ErrNotFound)
	})
}

func TestStoreListProducts(t *testing.T) {
	ctx := context.Background()
	store := createTestStore(t)

	soap := testProduct("Soap")
	_, err := store.AddProduct(ctx, soap)
	require.NoError(t, err)

	oil := testProduct("Olive Oil")
	oil.Category = "Grocery"
	_, err = store.AddProduct(ctx, oil)
	require.NoError(t, err)

	t.Run("name filter matches substrings case-insensitively", func(t *testing.T) {
		products, err := store.ListProducts(ctx, service.ProductFilter{Name: "oil"})
		require.NoError(t, err)
		require.Len(t, products, 1)
		assert.Equal(t, "Olive Oil", products[0].Name)
	})

	t.Run("category filter is exact", func(t *testing.T) {
		products, err := store.ListProducts(ctx, service.ProductFilter{Category: "Cosmetics"})
		require.NoError(t, err)
		require.Len(t, products, 1)
		assert.Equal(t, "Soap", products[0].Name)
	})

	t.Run("unfiltered list is ordered by id", func(t *testing.T) {
		products, err := store.ListProducts(ctx, service.ProductFilter{})
		require.NoError(t, err)
		require.Len(t, products, 2)
		assert.Equal(t, 1, products[0].ID)
		assert.Equal(t, 2, products[1].ID)
	})
}

func TestStoreCategories(t *testing.T) {
	ctx := context.Background()
	store := createTestStore(t)

	require.NoError(t, store.AddCategory(ctx, "Grocery"))
	require.NoError(t, store.AddCategory(ctx, "Grocery"))
	require.NoError(t, store.AddCategory(ctx, "Cosmetics"))

	err := store.AddCategory(ctx, "  ")
	assert.ErrorIs(t, err, common.ErrInvalidInput)

	categories, err := store.ListCategories(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"Cosmetics", "Grocery"}, categories)
}

func TestStoreSummary(t *testing.T) {
	ctx := context.Background()
	store := createTestStore(t)

	soap := testProduct("Soap")
	_, err := store.AddProduct(ctx, soap)
	require.NoError(t, err)

	oil := testProduct("Oil")
	oil.Price = decimal.NewFromInt(200)
	oil.Quantity = 40
	oil.Category = "Grocery"
	_, err = store.AddProduct(ctx, oil)
	require.NoError(t, err)

	summary, err := store.Summary(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, summary.ProductCount)
	assert.Equal(t, 90, summary.TotalStock)
	assert.Equal(t, 2, summary.CategoryCount)
	assert.True(t, summary.InventoryValue.Equal(decimal.NewFromInt(15500)),
		"got %s", summary.InventoryValue)
}

func TestStoreAppendSale(t *testing.T) {
	ctx := context.Background()

	t.Run("returns sequential sale numbers", func(t *testing.T) {
		store := createTestStore(t)

		line := model.CartLine{ProductID: 1, Name: "Soap", UnitPrice: decimal.NewFromInt(150), Quantity: 5}
		n, err := store.AppendSale(ctx, testSale("Asha", "750", line))
		require.NoError(t, err)
		assert.Equal(t, 1, n)

		n, err = store.AppendSale(ctx, testSale("Ravi", "150", line))
		require.NoError(t, err)
		assert.Equal(t, 2, n)
	})

	t.Run("round-trips lines and amounts", func(t *testing.T) {
		store := createTestStore(t)

		sale := testSale("Asha", "870",
			model.CartLine{ProductID: 1, Name: "Soap", UnitPrice: decimal.NewFromInt(150), Quantity: 5},
			model.CartLine{ProductID: 4, Name: "Biscuit", UnitPrice: decimal.NewFromInt(40), Quantity: 3},
		)
		_, err := store.AppendSale(ctx, sale)
		require.NoError(t, err)

		records, err := store.ListSales(ctx, service.SaleQuery{})
		require.NoError(t, err)
		require.Len(t, records, 1)

		got := records[0]
		assert.Equal(t, 1, got.Number)
		assert.Equal(t, "Asha", got.Customer)
		assert.True(t, got.Total.Equal(decimal.NewFromInt(870)))
		require.Len(t, got.Lines, 2)
		assert.Equal(t, "Soap", got.Lines[0].Name)
		assert.Equal(t, 5, got.Lines[0].Quantity)
		assert.True(t, got.Lines[0].UnitPrice.Equal(decimal.NewFromInt(150)))
		assert.Equal(t, "Biscuit", got.Lines[1].Name)
	})

	t.Run("rejects an incomplete sale", func(t *testing.T) {
		store := createTestStore(t)

		sale := testSale("", "100",
			model.CartLine{ProductID: 1, Name: "Soap", UnitPrice: decimal.NewFromInt(150), Quantity: 1})
		_, err := store.AppendSale(ctx, sale)
		assert.ErrorIs(t, err, common.ErrInvalidInput)

		noLines := testSale("Asha", "100")
		_, err = store.AppendSale(ctx, noLines)
		assert.ErrorIs(t, err, common.ErrInvalidInput)
	})
}

func TestStoreListSales(t *testing.T) {
	ctx := context.Background()
	store := createTestStore(t)

	line := model.CartLine{ProductID: 1, Name: "Soap", UnitPrice: decimal.NewFromInt(150), Quantity: 1}
	for _, s := range []model.Sale{
		testSale("Asha", "300", line),
		testSale("Ravi", "100", line),
		testSale("Asha Kumar", "300", line),
	} {
		_, err := store.AppendSale(ctx, s)
		require.NoError(t, err)
	}

	numbers := func(records []model.SaleRecord) []int {
		out := make([]int, len(records))
		for i, r := range records {
			out[i] = r.Number
		}
		return out
	}

	t.Run("default order is oldest first", func(t *testing.T) {
		records, err := store.ListSales(ctx, service.SaleQuery{})
		require.NoError(t, err)
		assert.Equal(t, []int{1, 2, 3}, numbers(records))
	})

	t.Run("newest first", func(t *testing.T) {
		records, err := store.ListSales(ctx, service.SaleQuery{Sort: service.SortNewestFirst})
		require.NoError(t, err)
		assert.Equal(t, []int{3, 2, 1}, numbers(records))
	})

	t.Run("highest amount keeps ties in insertion order", func(t *testing.T) {
		records, err := store.ListSales(ctx, service.SaleQuery{Sort: service.SortHighestAmount})
		require.NoError(t, err)
		assert.Equal(t, []int{1, 3, 2}, numbers(records))
	})

	t.Run("customer filter keeps canonical numbers", func(t *testing.T) {
		records, err := store.ListSales(ctx, service.SaleQuery{Customer: "asha"})
		require.NoError(t, err)
		require.Len(t, records, 2)
		assert.Equal(t, 1, records[0].Number)
		assert.Equal(t, 3, records[1].Number)
	})
}

func TestStoreAggregateAndExport(t *testing.T) {
	ctx := context.Background()
	store := createTestStore(t)

	t.Run("empty history aggregates to zero", func(t *testing.T) {
		summary, err := store.Aggregate(ctx)
		require.NoError(t, err)
		assert.Equal(t, 0, summary.TransactionCount)
		assert.True(t, summary.AverageSale.IsZero())
	})

	_, err := store.AppendSale(ctx, testSale("Asha", "100",
		model.CartLine{ProductID: 1, Name: "Soap", UnitPrice: decimal.NewFromInt(100), Quantity: 1}))
	require.NoError(t, err)
	_, err = store.AppendSale(ctx, testSale("Ravi", "200",
		model.CartLine{ProductID: 2, Name: "Oil", UnitPrice: decimal.NewFromInt(100), Quantity: 2}))
	require.NoError(t, err)

	t.Run("aggregates totals and average", func(t *testing.T) {
		summary, err := store.Aggregate(ctx)
		require.NoError(t, err)
		assert.Equal(t, 2, summary.TransactionCount)
		assert.True(t, summary.TotalSales.Equal(decimal.NewFromInt(300)))
		assert.True(t, summary.AverageSale.Equal(decimal.NewFromInt(150)))
	})

	t.Run("exports one row per item", func(t *testing.T) {
		rows, err := store.ExportRows(ctx)
		require.NoError(t, err)
		require.Len(t, rows, 2)
		assert.Equal(t, 1, rows[0].SaleNumber)
		assert.Equal(t, "Soap", rows[0].Product)
		assert.Equal(t, 2, rows[1].SaleNumber)
		assert.Equal(t, "Oil", rows[1].Product)
		assert.True(t, rows[1].ItemTotal.Equal(decimal.NewFromInt(200)))
	})
}
