package billing

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tillworks/till/internal/cart"
	"github.com/tillworks/till/internal/catalog"
	"github.com/tillworks/till/internal/common"
	"github.com/tillworks/till/internal/ledger"
	"github.com/tillworks/till/internal/model"
	"github.com/tillworks/till/internal/service"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

type fixture struct {
	catalog *catalog.Catalog
	ledger  *ledger.Ledger
	cart    *cart.Cart
	engine  *Engine
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()

	cat := catalog.New()
	_, err := cat.AddProduct(ctx, model.Product{
		Name:     "Soap",
		Price:    decimal.NewFromInt(150),
		Quantity: 50,
		Category: "Cosmetics",
	})
	require.NoError(t, err)
	_, err = cat.AddProduct(ctx, model.Product{
		Name:     "Oil",
		Price:    decimal.NewFromInt(200),
		Quantity: 40,
		Category: "Grocery",
	})
	require.NoError(t, err)

	led := ledger.New()
	return &fixture{
		catalog: cat,
		ledger:  led,
		cart:    cart.New(cat),
		engine:  NewEngine(cat, led),
	}
}

func TestQuote(t *testing.T) {
	ctx := context.Background()

	t.Run("computes discount then tax", func(t *testing.T) {
		f := newFixture(t)
		_, err := f.cart.AddItem(ctx, 1, 5) // 750
		require.NoError(t, err)

		quote, err := f.engine.Quote(f.cart, dec("10"), dec("5"))
		require.NoError(t, err)

		assert.True(t, quote.Subtotal.Equal(dec("750")), "subtotal %s", quote.Subtotal)
		assert.True(t, quote.DiscountAmount.Equal(dec("75")), "discount %s", quote.DiscountAmount)
		assert.True(t, quote.TaxAmount.Equal(dec("33.75")), "tax %s", quote.TaxAmount)
		assert.True(t, quote.Total.Equal(dec("708.75")), "total %s", quote.Total)
	})

	t.Run("zero percents leave the subtotal untouched", func(t *testing.T) {
		f := newFixture(t)
		_, err := f.cart.AddItem(ctx, 2, 2) // 400
		require.NoError(t, err)

		quote, err := f.engine.Quote(f.cart, decimal.Zero, decimal.Zero)
		require.NoError(t, err)
		assert.True(t, quote.Total.Equal(dec("400")))
	})

	t.Run("rejects percents outside range", func(t *testing.T) {
		f := newFixture(t)

		_, err := f.engine.Quote(f.cart, dec("-1"), decimal.Zero)
		assert.ErrorIs(t, err, common.ErrInvalidInput)

		_, err = f.engine.Quote(f.cart, decimal.Zero, dec("100.5"))
		assert.ErrorIs(t, err, common.ErrInvalidInput)
	})
}

func TestCommit(t *testing.T) {
	ctx := context.Background()

	t.Run("decrements stock, appends sale, clears cart", func(t *testing.T) {
		f := newFixture(t)
		_, err := f.cart.AddItem(ctx, 1, 5)
		require.NoError(t, err)

		quote, err := f.engine.Quote(f.cart, dec("10"), dec("5"))
		require.NoError(t, err)

		sale, err := f.engine.Commit(ctx, f.cart, "Asha", dec("10"), dec("5"))
		require.NoError(t, err)

		// quote/commit round-trip with identical parameters.
		assert.True(t, sale.Total.Equal(quote.Total), "quote %s, sale %s", quote.Total, sale.Total)
		assert.True(t, sale.Total.Equal(dec("708.75")))
		assert.False(t, sale.Timestamp.IsZero())

		p, err := f.catalog.GetProduct(ctx, 1)
		require.NoError(t, err)
		assert.Equal(t, 45, p.Quantity)

		records, err := f.ledger.ListSales(ctx, service.SaleQuery{})
		require.NoError(t, err)
		require.Len(t, records, 1)
		assert.Equal(t, "Asha", records[0].Customer)

		assert.Equal(t, 0, f.cart.Len())
	})

	t.Run("sale lines do not alias the cart", func(t *testing.T) {
		f := newFixture(t)
		_, err := f.cart.AddItem(ctx, 1, 1)
		require.NoError(t, err)

		sale, err := f.engine.Commit(ctx, f.cart, "Asha", decimal.Zero, decimal.Zero)
		require.NoError(t, err)

		_, err = f.cart.AddItem(ctx, 2, 1)
		require.NoError(t, err)
		require.Len(t, sale.Lines, 1)
		assert.Equal(t, "Soap", sale.Lines[0].Name)
	})

	t.Run("rejects empty customer", func(t *testing.T) {
		f := newFixture(t)
		_, err := f.cart.AddItem(ctx, 1, 1)
		require.NoError(t, err)

		_, err = f.engine.Commit(ctx, f.cart, "  ", decimal.Zero, decimal.Zero)
		assert.ErrorIs(t, err, common.ErrInvalidInput)
		assert.Equal(t, 1, f.cart.Len())
	})

	t.Run("rejects empty cart", func(t *testing.T) {
		f := newFixture(t)
		_, err := f.engine.Commit(ctx, f.cart, "Asha", decimal.Zero, decimal.Zero)
		assert.ErrorIs(t, err, common.ErrInvalidInput)
	})

	t.Run("re-validates against live stock", func(t *testing.T) {
		f := newFixture(t)
		_, err := f.cart.AddItem(ctx, 1, 5)
		require.NoError(t, err)

		// Stock shrinks between staging and commit.
		_, err = f.catalog.AdjustStock(ctx, 1, -48)
		require.NoError(t, err)

		_, err = f.engine.Commit(ctx, f.cart, "Asha", decimal.Zero, decimal.Zero)
		assert.ErrorIs(t, err, common.ErrInsufficientStock)

		// Nothing changed: stock, history and cart are as before the call.
		p, err := f.catalog.GetProduct(ctx, 1)
		require.NoError(t, err)
		assert.Equal(t, 2, p.Quantity)

		summary, err := f.ledger.Aggregate(ctx)
		require.NoError(t, err)
		assert.Equal(t, 0, summary.TransactionCount)

		assert.Equal(t, 1, f.cart.Len())
	})

	t.Run("sums repeated lines of one product before validating", func(t *testing.T) {
		f := newFixture(t)
		_, err := f.cart.AddItem(ctx, 1, 30)
		require.NoError(t, err)
		_, err = f.cart.AddItem(ctx, 1, 30)
		require.NoError(t, err)

		// Each line fits on its own, their sum does not.
		_, err = f.engine.Commit(ctx, f.cart, "Asha", decimal.Zero, decimal.Zero)
		assert.ErrorIs(t, err, common.ErrInsufficientStock)

		p, err := f.catalog.GetProduct(ctx, 1)
		require.NoError(t, err)
		assert.Equal(t, 50, p.Quantity)
	})

	t.Run("rolls back applied decrements when one fails", func(t *testing.T) {
		f := newFixture(t)
		faulty := &faultyInventory{Inventory: f.catalog, failID: 2}
		engine := NewEngine(faulty, f.ledger)

		c := cart.New(f.catalog)
		_, err := c.AddItem(ctx, 1, 5)
		require.NoError(t, err)
		_, err = c.AddItem(ctx, 2, 3)
		require.NoError(t, err)

		_, err = engine.Commit(ctx, c, "Asha", decimal.Zero, decimal.Zero)
		require.Error(t, err)

		p1, err := f.catalog.GetProduct(ctx, 1)
		require.NoError(t, err)
		assert.Equal(t, 50, p1.Quantity)
		p2, err := f.catalog.GetProduct(ctx, 2)
		require.NoError(t, err)
		assert.Equal(t, 40, p2.Quantity)

		summary, err := f.ledger.Aggregate(ctx)
		require.NoError(t, err)
		assert.Equal(t, 0, summary.TransactionCount)
		assert.Equal(t, 2, c.Len())
	})
}

// faultyInventory fails decrements for one product to exercise the
// commit rollback path.
type faultyInventory struct {
	service.Inventory
	failID int
}

func (f *faultyInventory) AdjustStock(ctx context.Context, id, delta int) (model.Product, error) {
	if id == f.failID && delta < 0 {
		return model.Product{}, errors.New("injected failure")
	}
	return f.Inventory.AdjustStock(ctx, id, delta)
}
