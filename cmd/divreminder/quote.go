package main

import (
	"github.com/spf13/cobra"
)

func newQuoteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "quote [symbol...]",
		Short: "Look up current stock quotes, of every product when no symbol is given",
		RunE: func(cmd *cobra.Command, args []string) error {
			stocks, err := app.LookupQuotes(cmd.Context(), args...)
			if err != nil {
				return err
			}
			rows := make([][]string, 0, len(stocks))
			for _, s := range stocks {
				price := "N/A"
				if s.Price.Valid {
					price = s.Price.Decimal.StringFixed(2)
				}
				rows = append(rows, []string{s.Symbol, s.Name(), price, s.Currency, s.Exchange})
			}
			printTable(cmd.OutOrStdout(), []string{"Symbol", "Name", "Price", "Currency", "Exchange"}, rows)
			return nil
		},
	}
}
