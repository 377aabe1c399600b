package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

func newLogCmd() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "log",
		Short: "Show the activity log",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			logs, err := app.Repo.GetLogs()
			if err != nil {
				return err
			}
			if limit > 0 && len(logs) > limit {
				logs = logs[len(logs)-limit:]
			}
			rows := make([][]string, 0, len(logs))
			for _, l := range logs {
				product := ""
				if l.ProductID != nil {
					product = formatID(*l.ProductID)
				}
				rows = append(rows, []string{l.Timestamp.Format(time.DateTime), l.Level, l.Message, product})
			}
			printTable(cmd.OutOrStdout(), []string{"Time", "Level", "Message", "Product"}, rows)
			fmt.Fprintf(cmd.ErrOrStderr(), "%d entries\n", len(rows))
			return nil
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 50, "show only the latest entries, 0 for all")
	return cmd
}
