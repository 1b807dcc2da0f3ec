package main

import (
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/tillworks/till/internal/cli"
	"github.com/tillworks/till/internal/model"
	"github.com/tillworks/till/internal/service"
)

// seedProducts is the demo catalog the system traditionally starts with.
var seedProducts = []model.Product{
	{ID: 1, Name: "Soap", Price: decimal.NewFromInt(150), Quantity: 50, ExpiryDate: "2025-05-10", Category: "Cosmetics"},
	{ID: 2, Name: "Oil", Price: decimal.NewFromInt(200), Quantity: 40, ExpiryDate: "2026-05-10", Category: "Grocery"},
	{ID: 3, Name: "Shampoo", Price: decimal.NewFromInt(300), Quantity: 78, ExpiryDate: "2027-09-10", Category: "Cosmetics"},
	{ID: 4, Name: "Biscuit", Price: decimal.NewFromInt(40), Quantity: 69, ExpiryDate: "2027-09-10", Category: "Grocery"},
}

func seedCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Seed the catalog with demo products",
		Long:  `Populate an empty catalog with the demo products (Soap, Oil, Shampoo, Biscuit).`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			b, err := openBackends(ctx)
			if err != nil {
				return err
			}
			defer b.close()

			existing, err := b.inventory.ListProducts(ctx, service.ProductFilter{})
			if err != nil {
				return fmt.Errorf("failed to inspect catalog: %w", err)
			}
			if len(existing) > 0 {
				return fmt.Errorf("catalog already has %d product(s); seed only works on an empty catalog", len(existing))
			}

			for _, p := range seedProducts {
				added, err := b.inventory.AddProduct(ctx, p)
				if err != nil {
					return fmt.Errorf("failed to seed %q: %w", p.Name, err)
				}
				fmt.Println(cli.FormatSuccess(fmt.Sprintf("Seeded %q (ID %d, %d units)", added.Name, added.ID, added.Quantity)))
			}
			return nil
		},
	}
}
