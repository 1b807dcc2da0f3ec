package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/tillworks/till/internal/cli"
)

func stockCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stock",
		Short: "Update product stock levels",
	}

	cmd.AddCommand(stockAddCmd())
	cmd.AddCommand(stockRemoveCmd())

	return cmd
}

func stockAddCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "add <id> <quantity>",
		Short: "Add units to a product's stock",
		Args:  cobra.ExactArgs(2),
		RunE:  runStockAdjust(1),
	}
}

func stockRemoveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "remove <id> <quantity>",
		Short: "Remove units from a product's stock",
		Long:  `Remove units from stock. Fails if the product does not have that many units.`,
		Args:  cobra.ExactArgs(2),
		RunE:  runStockAdjust(-1),
	}
}

func runStockAdjust(sign int) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		id, err := strconv.Atoi(args[0])
		if err != nil {
			return fmt.Errorf("invalid product ID: %w", err)
		}
		qty, err := strconv.Atoi(args[1])
		if err != nil || qty < 0 {
			return fmt.Errorf("invalid quantity: %q", args[1])
		}

		b, err := openBackends(ctx)
		if err != nil {
			return err
		}
		defer b.close()

		p, err := b.inventory.AdjustStock(ctx, id, sign*qty)
		if err != nil {
			return fmt.Errorf("failed to adjust stock: %w", err)
		}

		fmt.Println(cli.FormatSuccess(fmt.Sprintf("%q now has %d units", p.Name, p.Quantity)))
		return nil
	}
}
