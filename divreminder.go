// Package divreminder tracks dividend-paying products and reminds about upcoming payments.
// It is the orchestration layer shared by the command line tool: the App ties the
// SQLite repository to the page scraper, the quote client, the language model
// providers and the reminder scheduler.
//
// The core functionality includes:
//   - products, sectors and dividends stored in SQLite with incremental migrations
//   - bulk import of dividends scraped from a web page
//   - daily reminders for dividends paid within a window
//   - CSV export, stock quote lookup and free-text prompts to OpenAI or Gemini
package divreminder

import (
	"errors"
	"fmt"
	"strings"

	"github.com/divreminder/divreminder/core"
	"github.com/divreminder/divreminder/domain"
	"github.com/divreminder/divreminder/quote"
	"github.com/divreminder/divreminder/scraper"
	"github.com/divreminder/divreminder/webfetch"
	"go.uber.org/zap"
)

// Repository defines the storage consumed by the App.
// *db.Repository implements it.
type Repository interface {
	domain.ProductRepository
	domain.SectorRepository
	domain.DividendRepository
	domain.ApiKeyRepository
	domain.SyncRunRepository
	domain.LogRepository
	domain.StatsRepository
	Close() error
}

// App is the main struct that coordinates storage, imports, quotes, prompts and reminders.
type App struct {
	Config  *Config          // Loaded configuration, defaults when no config dir is used
	Repo    Repository       // Storage backend
	Logger  *zap.Logger      // Structured logger, a no-op logger unless set
	Fetcher *webfetch.Client // Page fetcher shared by the scraper and the quote client
	Scraper *scraper.Scraper // Dividend page scraper
	Quotes  *quote.Client    // Stock quote client

	OnLog func(log *domain.Log) // Called after a log entry was stored
}

// New creates an App and applies options in order. Components left unset by the
// options are built from the configuration.
func New(options ...func(*App) error) (*App, error) {
	app := &App{
		Logger: zap.NewNop(),
	}
	if err := app.WithOptions(options...); err != nil {
		return nil, err
	}

	if app.Config == nil {
		app.Config = defaultConfig()
	}
	if app.Fetcher == nil {
		app.Fetcher = webfetch.NewClient(
			webfetch.WithTimeout(app.Config.HTTP.Timeout),
			webfetch.WithRateLimit(app.Config.HTTP.Rate, 1),
			webfetch.WithLogger(app.Logger),
		)
	}
	if app.Scraper == nil {
		app.Scraper = scraper.New(app.Fetcher, scraper.WithLogger(app.Logger))
	}
	if app.Quotes == nil {
		app.Quotes = quote.NewClient(app.Fetcher,
			quote.WithBaseURL(app.Config.Quote.BaseURL),
			quote.WithCacheTTL(app.Config.Quote.CacheTTL),
			quote.WithLogger(app.Logger),
		)
	}
	return app, nil
}

// WithOptions applies a series of configuration functions to the app.
func (app *App) WithOptions(options ...func(*App) error) error {
	for _, option := range options {
		if err := option(app); err != nil {
			return fmt.Errorf("applying option on divreminder : %w", err)
		}
	}
	return nil
}

// Close closes the repository.
func (app *App) Close() error {
	if app.Repo == nil {
		return nil
	}
	if err := app.Repo.Close(); err != nil {
		return fmt.Errorf("closing repository : %w", err)
	}
	return nil
}

var errNoRepo = errors.New("no repository configured")

func (app *App) repo() (Repository, error) {
	if app.Repo == nil {
		return nil, errNoRepo
	}
	return app.Repo, nil
}

// WriteLog stores an entry in the activity log. Level is one of DEBUG, INFO, WARN or ERROR.
func (app *App) WriteLog(level string, message string, options ...core.LogOption) error {
	level = strings.ToUpper(level)
	switch level {
	case "DEBUG", "INFO", "WARN", "ERROR":
	default:
		return fmt.Errorf("level should be either: debug, info, warn, error")
	}

	repo, err := app.repo()
	if err != nil {
		return err
	}

	log, err := core.NewLog(level, message, options...)
	if err != nil {
		return err
	}
	if err := repo.InsertLog(log); err != nil {
		return fmt.Errorf("writing log : %w", err)
	}
	if app.OnLog != nil {
		app.OnLog(log)
	}
	return nil
}
