// Package cart provides the transient staging list for a single pending
// sale. Lines snapshot price at add time; stock is checked but never
// reserved until the bill commits.
package cart

import (
	"context"
	"fmt"
	"sync"

	"github.com/shopspring/decimal"

	"github.com/tillworks/till/internal/common"
	"github.com/tillworks/till/internal/model"
)

// ProductFinder looks up live products for validation at add time.
type ProductFinder interface {
	GetProduct(ctx context.Context, id int) (model.Product, error)
}

// Cart is an ordered sequence of staged cart lines. Its lifetime is one
// pending transaction; it is cleared on commit or explicit Clear.
type Cart struct {
	finder ProductFinder
	lines  []model.CartLine
	mu     sync.Mutex
}

// New creates an empty cart validating against the given product finder.
func New(finder ProductFinder) *Cart {
	return &Cart{finder: finder}
}

// AddItem stages quantity units of the product. The product must exist and
// have at least that much stock right now; the stock itself is not
// decremented until commit.
func (c *Cart) AddItem(ctx context.Context, productID, quantity int) (model.CartLine, error) {
	if quantity <= 0 {
		return model.CartLine{}, fmt.Errorf("%w: quantity must be positive", common.ErrInvalidInput)
	}

	p, err := c.finder.GetProduct(ctx, productID)
	if err != nil {
		return model.CartLine{}, err
	}
	if quantity > p.Quantity {
		return model.CartLine{}, fmt.Errorf("%w: product %d has %d units, requested %d",
			common.ErrInsufficientStock, productID, p.Quantity, quantity)
	}

	line := model.CartLine{
		ProductID: p.ID,
		Name:      p.Name,
		UnitPrice: p.Price,
		Quantity:  quantity,
	}

	c.mu.Lock()
	c.lines = append(c.lines, line)
	c.mu.Unlock()

	return line, nil
}

// Clear empties the cart unconditionally.
func (c *Cart) Clear() {
	c.mu.Lock()
	c.lines = nil
	c.mu.Unlock()
}

// Lines returns a copy of the staged lines in insertion order.
func (c *Cart) Lines() []model.CartLine {
	c.mu.Lock()
	defer c.mu.Unlock()

	lines := make([]model.CartLine, len(c.lines))
	copy(lines, c.lines)
	return lines
}

// Len returns the number of staged lines.
func (c *Cart) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.lines)
}

// Subtotal returns the sum of all line totals.
func (c *Cart) Subtotal() decimal.Decimal {
	c.mu.Lock()
	defer c.mu.Unlock()

	subtotal := decimal.Zero
	for _, line := range c.lines {
		subtotal = subtotal.Add(line.Total())
	}
	return subtotal
}
