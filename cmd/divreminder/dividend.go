package main

import (
	"fmt"
	"time"

	"github.com/divreminder/divreminder/domain"
	"github.com/spf13/cobra"
)

func newDividendCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "dividend",
		Short: "Record and list dividend payments",
	}

	var productID int64
	var upcoming int
	list := &cobra.Command{
		Use:   "list",
		Short: "List dividends ordered by date",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var dividends []*domain.Dividend
			var err error
			switch {
			case productID > 0:
				dividends, err = app.Repo.GetDividendsByProduct(productID)
			case cmd.Flags().Changed("upcoming"):
				today := time.Now()
				start := time.Date(today.Year(), today.Month(), today.Day(), 0, 0, 0, 0, time.UTC)
				dividends, err = app.Repo.GetUpcomingDividends(start, start.AddDate(0, 0, upcoming))
			default:
				dividends, err = app.Repo.GetDividends()
			}
			if err != nil {
				return err
			}

			tickers := map[int64]string{}
			products, err := app.Repo.GetProducts()
			if err != nil {
				return err
			}
			for _, p := range products {
				tickers[p.ID] = p.Ticker
			}

			rows := make([][]string, 0, len(dividends))
			for _, d := range dividends {
				rows = append(rows, []string{formatID(d.ID), tickers[d.ProductID], d.Date.Format(domain.DateLayout), d.Amount.StringFixed(2)})
			}
			printTable(cmd.OutOrStdout(), []string{"ID", "Ticker", "Date", "Amount"}, rows)
			return nil
		},
	}
	list.Flags().Int64Var(&productID, "product", 0, "only dividends of this product id")
	list.Flags().IntVar(&upcoming, "upcoming", 7, "only dividends due within this many days")

	add := &cobra.Command{
		Use:   "add <product-id> <YYYY-MM-DD> <amount>",
		Short: "Record a dividend",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			date, err := time.Parse(domain.DateLayout, args[1])
			if err != nil {
				return fmt.Errorf("invalid date %q, expected YYYY-MM-DD", args[1])
			}
			amount, err := parseAmount(args[2])
			if err != nil {
				return err
			}
			dividend, err := app.AddDividend(id, date, amount)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "added dividend %d\n", dividend.ID)
			return nil
		},
	}

	var date, amount string
	update := &cobra.Command{
		Use:   "update <id>",
		Short: "Change the date, amount or product of a dividend",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			dividend, err := app.Repo.GetDividend(id)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("date") {
				if dividend.Date, err = time.Parse(domain.DateLayout, date); err != nil {
					return fmt.Errorf("invalid date %q, expected YYYY-MM-DD", date)
				}
			}
			if cmd.Flags().Changed("amount") {
				if dividend.Amount, err = parseAmount(amount); err != nil {
					return err
				}
			}
			if cmd.Flags().Changed("product") {
				dividend.ProductID = productID
			}
			if err := app.Repo.UpdateDividend(dividend); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "updated dividend %d\n", id)
			return nil
		},
	}
	update.Flags().StringVar(&date, "date", "", "payment date, YYYY-MM-DD")
	update.Flags().StringVar(&amount, "amount", "", "amount per share")
	update.Flags().Int64Var(&productID, "product", 0, "product id")

	del := &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a dividend",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			if err := app.Repo.DeleteDividend(id); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "deleted dividend %d\n", id)
			return nil
		},
	}

	cmd.AddCommand(list, add, update, del)
	return cmd
}
