package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tillworks/till/internal/cli"
)

func categoriesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "categories",
		Short: "Manage product categories",
		Long:  `List and add product categories. Categories are never auto-deleted.`,
	}

	cmd.AddCommand(listCategoriesCmd())
	cmd.AddCommand(addCategoryCmd())

	return cmd
}

func listCategoriesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List all categories",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			b, err := openBackends(ctx)
			if err != nil {
				return err
			}
			defer b.close()

			categories, err := b.inventory.ListCategories(ctx)
			if err != nil {
				return fmt.Errorf("failed to list categories: %w", err)
			}

			if len(categories) == 0 {
				fmt.Println(cli.InfoStyle.Render("No categories found. Use 'till categories add' to create one."))
				return nil
			}

			for _, name := range categories {
				fmt.Printf("📁 %s\n", name)
			}
			return nil
		},
	}
}

func addCategoryCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "add <name>",
		Short: "Add a new category",
		Long:  `Create a category by name. Adding an existing category is a no-op.`,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			b, err := openBackends(ctx)
			if err != nil {
				return err
			}
			defer b.close()

			if err := b.inventory.AddCategory(ctx, args[0]); err != nil {
				return fmt.Errorf("failed to add category: %w", err)
			}

			fmt.Println(cli.FormatSuccess(fmt.Sprintf("Category %q added", args[0])))
			return nil
		},
	}
}
