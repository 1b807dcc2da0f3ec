package main

import (
	"fmt"
	"strconv"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/tillworks/till/internal/cli"
	"github.com/tillworks/till/internal/model"
	"github.com/tillworks/till/internal/service"
)

func productsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "products",
		Short: "Manage the product catalog",
		Long:  `List, add, and remove products in the stock catalog.`,
	}

	cmd.AddCommand(listProductsCmd())
	cmd.AddCommand(addProductCmd())
	cmd.AddCommand(removeProductCmd())

	return cmd
}

func listProductsCmd() *cobra.Command {
	var (
		search   string
		category string
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List available products",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			b, err := openBackends(ctx)
			if err != nil {
				return err
			}
			defer b.close()

			products, err := b.inventory.ListProducts(ctx, service.ProductFilter{
				Name:     search,
				Category: category,
			})
			if err != nil {
				return fmt.Errorf("failed to list products: %w", err)
			}

			if len(products) == 0 {
				fmt.Println(cli.InfoStyle.Render("No products match. Use 'till products add' to create one."))
				return nil
			}

			printProductsTable(products)
			return nil
		},
	}

	cmd.Flags().StringVar(&search, "search", "", "filter by name substring")
	cmd.Flags().StringVar(&category, "category", "", "filter by category")

	return cmd
}

func addProductCmd() *cobra.Command {
	var (
		id       int
		name     string
		price    float64
		quantity int
		expiry   string
		category string
	)

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add a new product",
		Long:  `Add a product to the catalog. Without --id the next free ID is assigned.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			b, err := openBackends(ctx)
			if err != nil {
				return err
			}
			defer b.close()

			p, err := b.inventory.AddProduct(ctx, model.Product{
				ID:         id,
				Name:       name,
				Price:      decimal.NewFromFloat(price),
				Quantity:   quantity,
				ExpiryDate: expiry,
				Category:   category,
			})
			if err != nil {
				return fmt.Errorf("failed to add product: %w", err)
			}

			fmt.Println(cli.FormatSuccess(fmt.Sprintf("Added %q with ID %d", p.Name, p.ID)))
			return nil
		},
	}

	cmd.Flags().IntVar(&id, "id", 0, "explicit product ID (default: auto-assigned)")
	cmd.Flags().StringVar(&name, "name", "", "product name")
	cmd.Flags().Float64Var(&price, "price", 0, "unit price")
	cmd.Flags().IntVar(&quantity, "quantity", 0, "initial stock quantity")
	cmd.Flags().StringVar(&expiry, "expiry", "", "expiry date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&category, "category", "", "product category")
	_ = cmd.MarkFlagRequired("name")
	_ = cmd.MarkFlagRequired("price")
	_ = cmd.MarkFlagRequired("category")

	return cmd
}

func removeProductCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "remove <id>",
		Short: "Remove a product",
		Long:  `Delete a product from the catalog. Sales history keeps its own snapshots and is unaffected.`,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			id, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("invalid product ID: %w", err)
			}

			b, err := openBackends(ctx)
			if err != nil {
				return err
			}
			defer b.close()

			if err := b.inventory.RemoveProduct(ctx, id); err != nil {
				return fmt.Errorf("failed to remove product: %w", err)
			}

			fmt.Println(cli.FormatSuccess(fmt.Sprintf("Removed product %d", id)))
			return nil
		},
	}
}
