package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

func newSyncCmd() *cobra.Command {
	var dump, history bool

	cmd := &cobra.Command{
		Use:   "sync [url]",
		Short: "Import dividends scraped from a web page",
		Long: `Downloads the page (the configured sync.url by default), extracts the
dividend records it publishes and stores those not recorded yet. Unknown tickers
become new products.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			if history {
				runs, err := app.Repo.GetSyncRuns()
				if err != nil {
					return err
				}
				rows := make([][]string, 0, len(runs))
				for _, run := range runs {
					finished := "running"
					if run.FinishedAt != nil {
						finished = run.FinishedAt.Format(time.DateTime)
					}
					rows = append(rows, []string{
						run.StartedAt.Format(time.DateTime), finished, run.URL,
						fmt.Sprint(run.ProductsCreated), fmt.Sprint(run.DividendsAdded), fmt.Sprint(run.DividendsSkipped), run.Error,
					})
				}
				printTable(out, []string{"Started", "Finished", "URL", "Products", "Added", "Skipped", "Error"}, rows)
				return nil
			}

			url := ""
			if len(args) == 1 {
				url = args[0]
			}

			if dump {
				page, body, err := app.DumpPage(cmd.Context(), url)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.ErrOrStderr(), "%s %d %s (%s)\n", page.URL, page.StatusCode, page.ContentType, page.Kind())
				_, err = out.Write(body)
				return err
			}

			result, err := app.SyncDividends(cmd.Context(), url)
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "Sync completed: %d products created, %d dividends added, %d skipped\n",
				result.ProductsCreated, result.DividendsAdded, result.DividendsSkipped)
			return nil
		},
	}
	cmd.Flags().BoolVar(&dump, "dump", false, "print the prettified page instead of importing it")
	cmd.Flags().BoolVar(&history, "history", false, "list previous imports")
	return cmd
}
