package main

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/spf13/viper"

	"github.com/tillworks/till/internal/catalog"
	"github.com/tillworks/till/internal/cli"
	"github.com/tillworks/till/internal/config"
	"github.com/tillworks/till/internal/ledger"
	"github.com/tillworks/till/internal/model"
	"github.com/tillworks/till/internal/service"
	"github.com/tillworks/till/internal/storage"
)

// backends bundles the inventory and history implementations selected by
// configuration, plus their cleanup.
type backends struct {
	inventory service.Inventory
	history   service.SalesHistory
	close     func() error
}

// openBackends initializes the configured storage backend with
// auto-migration. "memory" keeps everything process-scoped; "sqlite" is
// the default and persists under the configured database path.
func openBackends(ctx context.Context) (*backends, error) {
	switch backend := viper.GetString("storage.backend"); backend {
	case "memory":
		return &backends{
			inventory: catalog.New(),
			history:   ledger.New(),
			close:     func() error { return nil },
		}, nil
	case "sqlite", "":
		store, err := storage.NewSQLiteStore(config.DatabasePath())
		if err != nil {
			return nil, fmt.Errorf("failed to open storage: %w", err)
		}
		if err := store.Migrate(ctx); err != nil {
			_ = store.Close()
			return nil, fmt.Errorf("failed to migrate storage: %w", err)
		}
		return &backends{
			inventory: store,
			history:   store,
			close:     store.Close,
		}, nil
	default:
		return nil, fmt.Errorf("unknown storage backend: %q", backend)
	}
}

// currencyCode returns the configured display currency.
func currencyCode() string {
	return viper.GetString("currency")
}

// parseItemSpec parses an "ID:QTY" argument.
func parseItemSpec(spec string) (id, qty int, err error) {
	parts := strings.SplitN(spec, ":", 2)
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("invalid item %q: expected ID:QTY", spec)
	}
	if id, err = strconv.Atoi(parts[0]); err != nil || id <= 0 {
		return 0, 0, fmt.Errorf("invalid product ID in %q", spec)
	}
	if qty, err = strconv.Atoi(parts[1]); err != nil || qty <= 0 {
		return 0, 0, fmt.Errorf("invalid quantity in %q", spec)
	}
	return id, qty, nil
}

// printProductsTable renders products in a tab-aligned table.
func printProductsTable(products []model.Product) {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	defer w.Flush()

	fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n",
		cli.TableHeaderStyle.Render("ID"),
		cli.TableHeaderStyle.Render("Name"),
		cli.TableHeaderStyle.Render("Price"),
		cli.TableHeaderStyle.Render("Stock"),
		cli.TableHeaderStyle.Render("Category"),
		cli.TableHeaderStyle.Render("Expiry"))

	for _, p := range products {
		stock := strconv.Itoa(p.Quantity)
		switch {
		case p.Quantity <= 5:
			stock = cli.ErrorStyle.Render(stock)
		case p.Quantity <= 20:
			stock = cli.WarningStyle.Render(stock)
		default:
			stock = cli.SuccessStyle.Render(stock)
		}
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\t%s\n",
			p.ID, p.Name, cli.FormatAmount(p.Price, currencyCode()), stock, p.Category, p.ExpiryDate)
	}
}
