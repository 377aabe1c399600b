package main

import (
	"fmt"
	"time"

	"github.com/divreminder/divreminder/reminder"
	"github.com/spf13/cobra"
)

func newStatsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show totals about products and dividends",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			today := time.Now()
			stats, err := app.Stats(today)
			if err != nil {
				return err
			}
			currency := app.Config.Reminder.Currency
			printTable(cmd.OutOrStdout(), []string{"Figure", "Value"}, [][]string{
				{"Products", fmt.Sprint(stats.Products)},
				{"Sectors", fmt.Sprint(stats.Sectors)},
				{"Dividends", fmt.Sprint(stats.Dividends)},
				{fmt.Sprintf("Due in %d days", app.Config.Reminder.WindowDays), reminder.FormatAmount(stats.UpcomingTotal, currency)},
				{fmt.Sprintf("Total %d", today.Year()), reminder.FormatAmount(stats.YearTotal, currency)},
			})
			return nil
		},
	}
}
