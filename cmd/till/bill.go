package main

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/tillworks/till/internal/billing"
	"github.com/tillworks/till/internal/cli"
	"github.com/tillworks/till/internal/model"
	"github.com/tillworks/till/internal/service"
)

func billCmd() *cobra.Command {
	var (
		customer string
		items    []string
		discount float64
		tax      float64
		dryRun   bool
	)

	cmd := &cobra.Command{
		Use:   "bill",
		Short: "Generate a bill from a cart of items",
		Long: `Stage items into a cart, compute discount and tax, and commit the sale.
Each --item takes ID:QTY. With --dry-run the quote is printed and nothing
is committed.`,
		Example: `  till bill --customer "Asha" --item 1:5 --item 2:2 --discount 10 --tax 5`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			if len(items) == 0 {
				return fmt.Errorf("at least one --item is required")
			}

			b, err := openBackends(ctx)
			if err != nil {
				return err
			}
			defer b.close()

			session := service.NewSession(b.inventory, b.history)
			for _, spec := range items {
				id, qty, err := parseItemSpec(spec)
				if err != nil {
					return err
				}
				line, err := session.Cart.AddItem(ctx, id, qty)
				if err != nil {
					return fmt.Errorf("failed to add item %s: %w", spec, err)
				}
				fmt.Println(cli.FormatSuccess(fmt.Sprintf("%s × %d = %s",
					line.Name, line.Quantity, cli.FormatAmount(line.Total(), currencyCode()))))
			}

			if !cmd.Flags().Changed("discount") {
				discount = viper.GetFloat64("billing.discount")
			}
			if !cmd.Flags().Changed("tax") {
				tax = viper.GetFloat64("billing.tax")
			}
			discountPct := decimal.NewFromFloat(discount)
			taxPct := decimal.NewFromFloat(tax)

			engine := billing.NewEngine(session.Inventory, session.History)

			if dryRun {
				quote, err := engine.Quote(session.Cart, discountPct, taxPct)
				if err != nil {
					return fmt.Errorf("failed to quote: %w", err)
				}
				fmt.Println(renderQuote(quote, discountPct, taxPct))
				return nil
			}

			sale, err := engine.Commit(ctx, session.Cart, customer, discountPct, taxPct)
			if err != nil {
				return fmt.Errorf("failed to commit bill: %w", err)
			}

			fmt.Println(renderReceipt(sale, discountPct, taxPct))
			return nil
		},
	}

	cmd.Flags().StringVar(&customer, "customer", "", "customer name (required unless --dry-run)")
	cmd.Flags().StringArrayVar(&items, "item", nil, "cart item as ID:QTY (repeatable)")
	cmd.Flags().Float64Var(&discount, "discount", 0, "discount percent [0,100]")
	cmd.Flags().Float64Var(&tax, "tax", 0, "tax/GST percent [0,100]")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "print the quote without committing")

	return cmd
}

func renderQuote(q billing.Quote, discountPct, taxPct decimal.Decimal) string {
	cur := currencyCode()
	var sb strings.Builder
	fmt.Fprintf(&sb, "Subtotal:       %s\n", cli.FormatAmount(q.Subtotal, cur))
	fmt.Fprintf(&sb, "Discount (%s%%): -%s\n", discountPct.String(), cli.FormatAmount(q.DiscountAmount, cur))
	fmt.Fprintf(&sb, "Tax/GST (%s%%):  +%s\n", taxPct.String(), cli.FormatAmount(q.TaxAmount, cur))
	fmt.Fprintf(&sb, "%s", cli.BoldStyle.Render(fmt.Sprintf("Grand Total:    %s", cli.FormatAmount(q.Total, cur))))
	return cli.RenderBox("💰 Bill Summary", sb.String())
}

func renderReceipt(sale model.Sale, discountPct, taxPct decimal.Decimal) string {
	cur := currencyCode()
	var sb strings.Builder
	fmt.Fprintf(&sb, "Customer: %s\n", sale.Customer)
	fmt.Fprintf(&sb, "Date:     %s\n\n", sale.Timestamp.Format(model.SaleTimeLayout))
	for _, line := range sale.Lines {
		fmt.Fprintf(&sb, "%s × %d = %s\n", line.Name, line.Quantity, cli.FormatAmount(line.Total(), cur))
	}
	fmt.Fprintf(&sb, "\nSubtotal:       %s\n", cli.FormatAmount(sale.Subtotal, cur))
	fmt.Fprintf(&sb, "Discount (%s%%): -%s\n", discountPct.String(), cli.FormatAmount(sale.DiscountAmount, cur))
	fmt.Fprintf(&sb, "Tax/GST (%s%%):  +%s\n", taxPct.String(), cli.FormatAmount(sale.TaxAmount, cur))
	fmt.Fprintf(&sb, "%s\n\n", cli.BoldStyle.Render(fmt.Sprintf("Grand Total:    %s", cli.FormatAmount(sale.Total, cur))))
	sb.WriteString(cli.SubtleStyle.Render("Thank you for your business!"))
	return cli.RenderBox(cli.ReceiptIcon+" INVOICE", sb.String())
}
