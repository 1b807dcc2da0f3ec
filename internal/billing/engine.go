// Package billing computes bill quotes and turns carts into committed
// sales. Commit is the only path that mutates stock and sales history.
package billing

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/tillworks/till/internal/cart"
	"github.com/tillworks/till/internal/common"
	"github.com/tillworks/till/internal/model"
	"github.com/tillworks/till/internal/service"
)

var oneHundred = decimal.NewFromInt(100)

// Quote is the priced breakdown of a cart before commit.
type Quote struct {
	Subtotal       decimal.Decimal
	DiscountAmount decimal.Decimal
	TaxAmount      decimal.Decimal
	Total          decimal.Decimal
}

// Engine quotes and commits bills against an inventory and a sales history.
type Engine struct {
	inventory service.Inventory
	history   service.SalesHistory
	now       func() time.Time
	mu        sync.Mutex
}

// NewEngine creates a billing engine over the given backends.
func NewEngine(inventory service.Inventory, history service.SalesHistory) *Engine {
	return &Engine{
		inventory: inventory,
		history:   history,
		now:       time.Now,
	}
}

// Quote computes subtotal, discount, tax and total for the cart. It is pure
// and touches neither stock nor history. The discount applies to the
// subtotal; tax applies to the discounted amount.
func (e *Engine) Quote(c *cart.Cart, discountPct, taxPct decimal.Decimal) (Quote, error) {
	return quoteLines(c.Lines(), discountPct, taxPct)
}

func quoteLines(lines []model.CartLine, discountPct, taxPct decimal.Decimal) (Quote, error) {
	if err := validatePercent(discountPct, "discount"); err != nil {
		return Quote{}, err
	}
	if err := validatePercent(taxPct, "tax"); err != nil {
		return Quote{}, err
	}

	subtotal := decimal.Zero
	for _, line := range lines {
		subtotal = subtotal.Add(line.Total())
	}

	discount := subtotal.Mul(discountPct).Div(oneHundred)
	discounted := subtotal.Sub(discount)
	tax := discounted.Mul(taxPct).Div(oneHundred)

	return Quote{
		Subtotal:       subtotal,
		DiscountAmount: discount,
		TaxAmount:      tax,
		Total:          discounted.Add(tax),
	}, nil
}

// Commit turns the cart into an immutable sale: it re-validates every line
// against live stock, decrements stock, appends the sale to history and
// clears the cart. The stock decrements and the history append are one
// logical transaction; on any failure all applied decrements are reverted
// and the cart is left untouched.
func (e *Engine) Commit(ctx context.Context, c *cart.Cart, customer string, discountPct, taxPct decimal.Decimal) (model.Sale, error) {
	customer = strings.TrimSpace(customer)
	if customer == "" {
		return model.Sale{}, fmt.Errorf("%w: customer name cannot be empty", common.ErrInvalidInput)
	}

	lines := c.Lines()
	if len(lines) == 0 {
		return model.Sale{}, fmt.Errorf("%w: cart is empty", common.ErrInvalidInput)
	}

	quote, err := quoteLines(lines, discountPct, taxPct)
	if err != nil {
		return model.Sale{}, err
	}

	// Serialize commits: the validate-decrement-append sequence spans
	// multiple products and must not interleave with another commit.
	e.mu.Lock()
	defer e.mu.Unlock()

	// Re-validate against current stock, not the stock at add time. Lines
	// for the same product are summed so the check matches what the
	// decrements below will actually take.
	required := make(map[int]int)
	for _, line := range lines {
		required[line.ProductID] += line.Quantity
	}
	for _, line := range lines {
		p, err := e.inventory.GetProduct(ctx, line.ProductID)
		if err != nil {
			return model.Sale{}, fmt.Errorf("validating %q: %w", line.Name, err)
		}
		if required[line.ProductID] > p.Quantity {
			return model.Sale{}, fmt.Errorf("%w: %q has %d units, cart needs %d",
				common.ErrInsufficientStock, p.Name, p.Quantity, required[line.ProductID])
		}
	}

	applied := make([]model.CartLine, 0, len(lines))
	rollback := func() {
		for _, line := range applied {
			if _, err := e.inventory.AdjustStock(ctx, line.ProductID, line.Quantity); err != nil {
				common.LogError(err, "rollback failed; stock may be inconsistent", common.Fields{
					"product_id": line.ProductID,
					"quantity":   line.Quantity,
				})
			}
		}
	}

	for _, line := range lines {
		if _, err := e.inventory.AdjustStock(ctx, line.ProductID, -line.Quantity); err != nil {
			rollback()
			return model.Sale{}, fmt.Errorf("decrementing stock for %q: %w", line.Name, err)
		}
		applied = append(applied, line)
	}

	sale := model.Sale{
		Customer:       customer,
		Lines:          append([]model.CartLine(nil), lines...),
		Subtotal:       quote.Subtotal,
		DiscountAmount: quote.DiscountAmount,
		TaxAmount:      quote.TaxAmount,
		Total:          quote.Total,
		Timestamp:      e.now(),
	}

	number, err := e.history.AppendSale(ctx, sale)
	if err != nil {
		rollback()
		return model.Sale{}, fmt.Errorf("appending sale: %w", err)
	}

	c.Clear()

	slog.Info("sale committed",
		"sale", number,
		"customer", customer,
		"lines", len(sale.Lines),
		"total", sale.Total.String())
	return sale, nil
}

func validatePercent(pct decimal.Decimal, name string) error {
	if pct.IsNegative() || pct.GreaterThan(oneHundred) {
		return fmt.Errorf("%w: %s percent must be between 0 and 100", common.ErrInvalidInput, name)
	}
	return nil
}
