// Command divreminder tracks dividend-paying products from the terminal.
package main

import (
	"fmt"
	"os"

	"github.com/divreminder/divreminder"
	"github.com/divreminder/divreminder/logging"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	// Global flags
	configDir string
	logLevel  string

	app    *divreminder.App
	logger *zap.Logger
)

func newRootCmd() *cobra.Command {
	configDir = ""
	logLevel = ""

	rootCmd := &cobra.Command{
		Use:   "divreminder",
		Short: "Track dividend-paying products and get reminded of upcoming payments",
		Long: `divreminder keeps a local SQLite database of products, sectors and dividends.

It imports dividends scraped from a blog page, reminds about payments due within
the next days, exports everything to CSV, looks up stock quotes and forwards
free-text prompts to OpenAI or Gemini with your own api keys.`,
		SilenceUsage:      true,
		PersistentPreRunE: setup,
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			teardown()
		},
	}

	rootCmd.PersistentFlags().StringVar(&configDir, "config-dir", "", "configuration directory (default: user config dir/divreminder)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level overriding the configuration (debug, info, warn, error)")

	rootCmd.AddCommand(
		newProductCmd(),
		newSectorCmd(),
		newDividendCmd(),
		newSyncCmd(),
		newQuoteCmd(),
		newExportCmd(),
		newPromptCmd(),
		newApiKeyCmd(),
		newRemindCmd(),
		newStatsCmd(),
		newLogCmd(),
		newConfigCmd(),
	)
	return rootCmd
}

// setup loads the configuration, builds the logger and opens the database.
func setup(cmd *cobra.Command, args []string) error {
	dir := configDir
	if dir == "" {
		var err error
		if dir, err = divreminder.DefaultConfigDir(); err != nil {
			return err
		}
	}

	cfg, err := divreminder.LoadConfig(dir)
	if err != nil {
		return err
	}

	level := cfg.LogLevel
	if logLevel != "" {
		level = logLevel
	}
	if logger, err = logging.New(level); err != nil {
		return err
	}

	app, err = divreminder.New(
		divreminder.WithConfig(cfg),
		divreminder.WithLogger(logger),
		divreminder.WithDatabase(""),
	)
	if err != nil {
		return err
	}
	logger.Debug("database opened", zap.String("path", cfg.DatabasePath()))
	return nil
}

func teardown() {
	if app != nil {
		if err := app.Close(); err != nil && logger != nil {
			logger.Warn("closing app", zap.Error(err))
		}
		app = nil
	}
	if logger != nil {
		_ = logger.Sync()
	}
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		teardown()
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
