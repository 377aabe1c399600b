package divreminder

import (
	"errors"
	"fmt"

	"github.com/divreminder/divreminder/db"
	"github.com/divreminder/divreminder/quote"
	"github.com/divreminder/divreminder/scraper"
	"github.com/divreminder/divreminder/webfetch"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

// defaultConfig holds the built-in defaults without touching the file system.
func defaultConfig() *Config {
	v := viper.New()
	setDefaults(v)
	cfg := &Config{}
	// Decoding the built-in defaults cannot fail.
	_ = v.Unmarshal(cfg)
	return cfg
}

// WithConfigDir loads config.yaml (and .env) from appConfigDir, creating both the
// directory and the file on first use.
func WithConfigDir(appConfigDir string) func(*App) error {
	return func(app *App) error {
		cfg, err := LoadConfig(appConfigDir)
		if err != nil {
			return err
		}
		app.Config = cfg
		return nil
	}
}

// WithConfig uses an already loaded configuration.
func WithConfig(cfg *Config) func(*App) error {
	return func(app *App) error {
		if cfg == nil {
			return errors.New("config cannot be nil")
		}
		app.Config = cfg
		return nil
	}
}

// WithLogger sets the structured logger. A nil logger is ignored.
func WithLogger(logger *zap.Logger) func(*App) error {
	return func(app *App) error {
		if logger != nil {
			app.Logger = logger
		}
		return nil
	}
}

// WithRepo sets the repository, closing a previously configured one.
func WithRepo(repo Repository) func(*App) error {
	return func(app *App) error {
		if app.Repo != nil {
			if err := app.Repo.Close(); err != nil {
				return err
			}
			app.Repo = nil
		}
		app.Repo = repo
		return nil
	}
}

// WithDatabase opens and migrates the SQLite database at path. An empty path
// uses the configured database, so it has to come after WithConfigDir.
func WithDatabase(path string) func(*App) error {
	return func(app *App) error {
		if path == "" {
			if app.Config == nil {
				app.Config = defaultConfig()
			}
			path = app.Config.DatabasePath()
		}
		conn, err := db.New(path)
		if err != nil {
			return fmt.Errorf("opening database %s : %w", path, err)
		}
		return WithRepo(db.NewRepository(conn))(app)
	}
}

// WithFetcher replaces the page fetcher used for scraping and quotes.
func WithFetcher(fetcher *webfetch.Client) func(*App) error {
	return func(app *App) error {
		app.Fetcher = fetcher
		return nil
	}
}

// WithScraper replaces the dividend page scraper.
func WithScraper(s *scraper.Scraper) func(*App) error {
	return func(app *App) error {
		app.Scraper = s
		return nil
	}
}

// WithQuoteClient replaces the stock quote client.
func WithQuoteClient(c *quote.Client) func(*App) error {
	return func(app *App) error {
		app.Quotes = c
		return nil
	}
}
