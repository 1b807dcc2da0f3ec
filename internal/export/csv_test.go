package export

import (
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tillworks/till/internal/model"
)

func TestWriteCSV(t *testing.T) {
	rows := []model.SaleRow{
		{
			SaleNumber: 1,
			Date:       "2025-01-15 09:30:42",
			Customer:   "Asha",
			Product:    "Soap",
			Quantity:   5,
			Price:      decimal.NewFromInt(150),
			ItemTotal:  decimal.NewFromInt(750),
			BillTotal:  decimal.RequireFromString("708.75"),
		},
	}

	var buf strings.Builder
	require.NoError(t, WriteCSV(&buf, rows))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, "Sale #,Date,Customer,Product,Quantity,Price,Item Total,Bill Total", lines[0])
	assert.Equal(t, "1,2025-01-15 09:30:42,Asha,Soap,5,150,750,708.75", lines[1])
}

func TestWriteCSVEmpty(t *testing.T) {
	var buf strings.Builder
	require.NoError(t, WriteCSV(&buf, nil))

	// Header only.
	assert.Equal(t, "Sale #,Date,Customer,Product,Quantity,Price,Item Total,Bill Total",
		strings.TrimSpace(buf.String()))
}

func TestDefaultFilename(t *testing.T) {
	at := time.Date(2025, 1, 15, 9, 30, 42, 0, time.UTC)
	assert.Equal(t, "sales_history_20250115_093042.csv", DefaultFilename(at))
}
