package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/tillworks/till/internal/common"
	"github.com/tillworks/till/internal/model"
)

// Validation errors.
var (
	ErrNilContext  = errors.New("context cannot be nil")
	ErrEmptyString = errors.New("string parameter cannot be empty")
)

// validateContext ensures the context is not nil.
func validateContext(ctx context.Context) error {
	if ctx == nil {
		return ErrNilContext
	}
	return nil
}

// validateString ensures a string parameter is not empty.
func validateString(s string, paramName string) error {
	if strings.TrimSpace(s) == "" {
		return fmt.Errorf("%w: %s", ErrEmptyString, paramName)
	}
	return nil
}

// validateSale validates a sale about to be appended to history.
func validateSale(sale *model.Sale) error {
	if strings.TrimSpace(sale.Customer) == "" {
		return fmt.Errorf("%w: customer name cannot be empty", common.ErrInvalidInput)
	}
	if len(sale.Lines) == 0 {
		return fmt.Errorf("%w: sale must have at least one line", common.ErrInvalidInput)
	}
	if sale.Timestamp.IsZero() {
		return fmt.Errorf("%w: sale timestamp missing", common.ErrInvalidInput)
	}
	return nil
}
