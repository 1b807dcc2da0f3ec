package model

import (
	"fmt"
	"strings"
	"time"

	"github.com/tillworks/till/internal/common"
)

// ValidateNew checks the fields of a product about to enter the catalog.
// ID zero is allowed (it requests automatic assignment); a negative ID,
// empty name or category, non-positive price, negative quantity, or a
// malformed expiry date are all invalid input.
func (p Product) ValidateNew() error {
	if p.ID < 0 {
		return fmt.Errorf("%w: product ID must be positive", common.ErrInvalidInput)
	}
	if strings.TrimSpace(p.Name) == "" {
		return fmt.Errorf("%w: product name cannot be empty", common.ErrInvalidInput)
	}
	if !p.Price.IsPositive() {
		return fmt.Errorf("%w: price must be greater than 0", common.ErrInvalidInput)
	}
	if p.Quantity < 0 {
		return fmt.Errorf("%w: quantity cannot be negative", common.ErrInvalidInput)
	}
	if strings.TrimSpace(p.Category) == "" {
		return fmt.Errorf("%w: category cannot be empty", common.ErrInvalidInput)
	}
	if p.ExpiryDate != "" {
		if _, err := time.Parse(ExpiryDateLayout, p.ExpiryDate); err != nil {
			return fmt.Errorf("%w: expiry date must be %s: %v", common.ErrInvalidInput, ExpiryDateLayout, err)
		}
	}
	return nil
}
