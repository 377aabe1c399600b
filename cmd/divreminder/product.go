package main

import (
	"fmt"
	"strings"

	"github.com/divreminder/divreminder/domain"
	"github.com/spf13/cobra"
)

func newProductCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "product",
		Short: "Manage tracked products",
	}

	list := &cobra.Command{
		Use:   "list",
		Short: "List products with their sectors",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			products, err := app.Repo.GetProductsWithSectors()
			if err != nil {
				return err
			}
			rows := make([][]string, 0, len(products))
			for _, p := range products {
				names := make([]string, 0, len(p.Sectors))
				for _, s := range p.Sectors {
					names = append(names, s.Name)
				}
				rows = append(rows, []string{formatID(p.Product.ID), p.Product.Ticker, p.Product.Name, p.Product.ISIN, strings.Join(names, ", ")})
			}
			printTable(cmd.OutOrStdout(), []string{"ID", "Ticker", "Name", "ISIN", "Sectors"}, rows)
			return nil
		},
	}

	var ticker, name, isin string
	var sectors []int64
	add := &cobra.Command{
		Use:   "add",
		Short: "Add a product",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := app.AddProduct(&domain.Product{Ticker: ticker, Name: name, ISIN: isin}, sectors...)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "added product %d\n", id)
			return nil
		},
	}
	add.Flags().StringVar(&ticker, "ticker", "", "exchange ticker")
	add.Flags().StringVar(&name, "name", "", "display name")
	add.Flags().StringVar(&isin, "isin", "", "ISIN")
	add.Flags().Int64SliceVar(&sectors, "sector", nil, "sector id, repeatable")
	add.MarkFlagRequired("ticker")
	add.MarkFlagRequired("name")

	update := &cobra.Command{
		Use:   "update <id>",
		Short: "Update a product, flags left out keep their value",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			product, err := app.Repo.GetProduct(id)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("ticker") {
				product.Ticker = ticker
			}
			if cmd.Flags().Changed("name") {
				product.Name = name
			}
			if cmd.Flags().Changed("isin") {
				product.ISIN = isin
			}
			var sectorIDs []int64
			if cmd.Flags().Changed("sector") {
				sectorIDs = append([]int64{}, sectors...)
			}
			if err := app.UpdateProduct(product, sectorIDs); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "updated product %d\n", id)
			return nil
		},
	}
	update.Flags().StringVar(&ticker, "ticker", "", "exchange ticker")
	update.Flags().StringVar(&name, "name", "", "display name")
	update.Flags().StringVar(&isin, "isin", "", "ISIN")
	update.Flags().Int64SliceVar(&sectors, "sector", nil, "sector id, repeatable; replaces every link")

	del := &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a product with its dividends",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			if err := app.Repo.DeleteProduct(id); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "deleted product %d\n", id)
			return nil
		},
	}

	show := &cobra.Command{
		Use:   "show <id>",
		Short: "Show a product with its sectors and dividends",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			withSectors, err := app.Repo.GetProductWithSectors(id)
			if err != nil {
				return err
			}
			withDividends, err := app.Repo.GetProductWithDividends(id)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			p := withSectors.Product
			printTitle(out, fmt.Sprintf("%s  %s  %s", p.Ticker, p.Name, p.ISIN))
			for _, s := range withSectors.Sectors {
				fmt.Fprintf(out, "  sector: %s (%s)\n", s.Name, s.ProviderName)
			}
			rows := make([][]string, 0, len(withDividends.Dividends))
			for _, d := range withDividends.Dividends {
				rows = append(rows, []string{formatID(d.ID), d.Date.Format(domain.DateLayout), d.Amount.StringFixed(2)})
			}
			printTable(out, []string{"ID", "Date", "Amount"}, rows)
			return nil
		},
	}

	cmd.AddCommand(list, add, update, del, show)
	return cmd
}
