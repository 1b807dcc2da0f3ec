package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tillworks/till/internal/cli"
	"github.com/tillworks/till/internal/service"
)

func dashboardCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "dashboard",
		Short: "Show catalog and stock overview",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			b, err := openBackends(ctx)
			if err != nil {
				return err
			}
			defer b.close()

			summary, err := b.inventory.Summary(ctx)
			if err != nil {
				return fmt.Errorf("failed to summarize catalog: %w", err)
			}

			fmt.Println(cli.FormatTitle("Dashboard Overview"))
			fmt.Printf("Total Products:        %d\n", summary.ProductCount)
			fmt.Printf("Total Inventory Value: %s\n", cli.FormatAmount(summary.InventoryValue, currencyCode()))
			fmt.Printf("Total Stock:           %d\n", summary.TotalStock)
			fmt.Printf("Categories:            %d\n\n", summary.CategoryCount)

			products, err := b.inventory.ListProducts(ctx, service.ProductFilter{})
			if err != nil {
				return fmt.Errorf("failed to list products: %w", err)
			}
			if len(products) == 0 {
				fmt.Println(cli.InfoStyle.Render("No products to display."))
				return nil
			}

			fmt.Println(cli.TableHeaderStyle.Render("Stock Levels"))
			printProductsTable(products)
			return nil
		},
	}
}
