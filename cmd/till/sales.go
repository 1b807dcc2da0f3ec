package main

import (
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/tillworks/till/internal/cli"
	"github.com/tillworks/till/internal/export"
	"github.com/tillworks/till/internal/model"
	"github.com/tillworks/till/internal/service"
)

func salesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sales",
		Short: "Inspect and export the sales history",
	}

	cmd.AddCommand(listSalesCmd())
	cmd.AddCommand(salesSummaryCmd())
	cmd.AddCommand(exportSalesCmd())

	return cmd
}

func listSalesCmd() *cobra.Command {
	var (
		customer string
		sortBy   string
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List committed sales",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			var sortOrder service.SortOrder
			switch sortBy {
			case "oldest", "":
				sortOrder = service.SortOldestFirst
			case "newest":
				sortOrder = service.SortNewestFirst
			case "highest":
				sortOrder = service.SortHighestAmount
			case "lowest":
				sortOrder = service.SortLowestAmount
			default:
				return fmt.Errorf("invalid sort order %q (want oldest, newest, highest or lowest)", sortBy)
			}

			b, err := openBackends(ctx)
			if err != nil {
				return err
			}
			defer b.close()

			records, err := b.history.ListSales(ctx, service.SaleQuery{
				Customer: customer,
				Sort:     sortOrder,
			})
			if err != nil {
				return fmt.Errorf("failed to list sales: %w", err)
			}

			if len(records) == 0 {
				fmt.Println(cli.InfoStyle.Render("No sales history available yet."))
				return nil
			}

			fmt.Printf("Showing %d transaction(s)\n\n", len(records))

			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			defer w.Flush()

			cur := currencyCode()
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
				cli.TableHeaderStyle.Render("Sale #"),
				cli.TableHeaderStyle.Render("Date"),
				cli.TableHeaderStyle.Render("Customer"),
				cli.TableHeaderStyle.Render("Items"),
				cli.TableHeaderStyle.Render("Total"))
			for _, r := range records {
				fmt.Fprintf(w, "%d\t%s\t%s\t%d\t%s\n",
					r.Number,
					r.Timestamp.Format(model.SaleTimeLayout),
					r.Customer,
					len(r.Lines),
					cli.FormatAmount(r.Total, cur))
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&customer, "customer", "", "filter by customer name substring")
	cmd.Flags().StringVar(&sortBy, "sort", "oldest", "sort order: oldest, newest, highest, lowest")

	return cmd
}

func salesSummaryCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "summary",
		Short: "Show aggregate sales metrics",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			b, err := openBackends(ctx)
			if err != nil {
				return err
			}
			defer b.close()

			summary, err := b.history.Aggregate(ctx)
			if err != nil {
				return fmt.Errorf("failed to aggregate sales: %w", err)
			}

			cur := currencyCode()
			fmt.Println(cli.FormatTitle("Sales Summary"))
			fmt.Printf("Total Sales:        %s\n", cli.FormatAmount(summary.TotalSales, cur))
			fmt.Printf("Total Transactions: %d\n", summary.TransactionCount)
			fmt.Printf("Average Sale:       %s\n", cli.FormatAmount(summary.AverageSale, cur))
			return nil
		},
	}
}

func exportSalesCmd() *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export the sales history as CSV",
		Long:  `Write one CSV row per item per sale, in insertion order.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			b, err := openBackends(ctx)
			if err != nil {
				return err
			}
			defer b.close()

			rows, err := b.history.ExportRows(ctx)
			if err != nil {
				return fmt.Errorf("failed to build export rows: %w", err)
			}

			if output == "" {
				output = export.DefaultFilename(time.Now())
			}

			f, err := os.Create(output)
			if err != nil {
				return fmt.Errorf("failed to create %s: %w", output, err)
			}
			defer f.Close()

			if err := export.WriteCSV(f, rows); err != nil {
				return err
			}

			fmt.Println(cli.FormatSuccess(fmt.Sprintf("Exported %d row(s) to %s", len(rows), output)))
			return nil
		},
	}

	cmd.Flags().StringVar(&output, "output", "", "output file (default: sales_history_<timestamp>.csv)")

	return cmd
}
