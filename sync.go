package divreminder

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/divreminder/divreminder/core"
	"github.com/divreminder/divreminder/domain"
	"github.com/divreminder/divreminder/scraper"
	"github.com/divreminder/divreminder/webfetch"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// SyncResult summarises one dividend import.
type SyncResult struct {
	Run              *domain.SyncRun
	ProductsCreated  int
	DividendsAdded   int
	DividendsSkipped int
}

// SyncDividends scrapes url (the configured sync URL when empty) and stores every
// dividend not recorded yet, creating products for unknown tickers. Records that
// fail to import are counted as skipped. The run is stored in sync_runs and
// summarised in the activity log.
func (app *App) SyncDividends(ctx context.Context, url string) (*SyncResult, error) {
	repo, err := app.repo()
	if err != nil {
		return nil, err
	}
	if url == "" {
		url = app.Config.Sync.URL
	}

	id, err := uuid.NewV7()
	if err != nil {
		return nil, fmt.Errorf("generating sync run id : %w", err)
	}
	run := &domain.SyncRun{ID: id, URL: url, StartedAt: time.Now()}
	if err := repo.InsertSyncRun(run); err != nil {
		return nil, fmt.Errorf("recording sync run : %w", err)
	}
	ctx = ContextWithSyncRun(ctx, id, url)

	result := &SyncResult{Run: run}
	syncErr := app.importDividends(ctx, repo, result)

	finished := time.Now()
	run.FinishedAt = &finished
	run.ProductsCreated = result.ProductsCreated
	run.DividendsAdded = result.DividendsAdded
	run.DividendsSkipped = result.DividendsSkipped
	if syncErr != nil {
		run.Error = syncErr.Error()
	}
	if err := repo.FinishSyncRun(run); err != nil {
		app.Logger.Warn("finishing sync run", zap.Stringer("run", id), zap.Error(err))
	}

	app.logSyncRun(run, syncErr)
	return result, syncErr
}

func (app *App) importDividends(ctx context.Context, repo Repository, result *SyncResult) error {
	url, _ := SyncURLFromContext(ctx)
	records, err := app.Scraper.FetchDividends(ctx, url)
	if err != nil {
		return fmt.Errorf("fetching dividends from %s : %w", url, err)
	}
	app.Logger.Info("scraped dividend records", zap.String("url", url), zap.Int("records", len(records)))

	products := make(map[string]*domain.Product)
	for _, record := range records {
		if err := ctx.Err(); err != nil {
			return err
		}
		added, created, err := app.importRecord(ctx, repo, products, record)
		if created {
			result.ProductsCreated++
		}
		switch {
		case err != nil:
			result.DividendsSkipped++
			app.Logger.Warn("skipping dividend record", zap.String("ticker", record.Ticker), zap.Error(err))
		case added:
			result.DividendsAdded++
		default:
			result.DividendsSkipped++
		}
	}
	return nil
}

// importRecord stores one scraped record. It reports whether a dividend was added
// and whether a product had to be created for it.
func (app *App) importRecord(ctx context.Context, repo Repository, products map[string]*domain.Product, record scraper.DividendData) (added, created bool, err error) {
	product, ok := products[record.Ticker]
	if !ok {
		product, created, err = findOrCreateProduct(repo, record)
		if err != nil {
			return false, false, err
		}
		products[record.Ticker] = product
		if created {
			app.logRecord(ctx, "INFO", fmt.Sprintf("created product %s", product.Ticker), product.ID)
		}
	}

	exists, err := repo.DividendExists(product.ID, record.PaymentDate, record.Amount)
	if err != nil {
		return false, created, err
	}
	if exists {
		return false, created, nil
	}

	dividend := &domain.Dividend{ProductID: product.ID, Date: record.PaymentDate, Amount: record.Amount}
	if _, err := repo.InsertDividend(dividend); err != nil {
		return false, created, err
	}
	return true, created, nil
}

func findOrCreateProduct(repo Repository, record scraper.DividendData) (*domain.Product, bool, error) {
	product, err := repo.GetProductByTicker(record.Ticker)
	if err == nil {
		return product, false, nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return nil, false, err
	}

	name := record.Company
	if name == "" {
		name = record.Ticker
	}
	product = &domain.Product{Ticker: record.Ticker, Name: name, ISIN: record.ISIN}
	id, err := repo.InsertProduct(product)
	if err != nil {
		return nil, false, fmt.Errorf("creating product %s : %w", record.Ticker, err)
	}
	product.ID = id
	return product, true, nil
}

func (app *App) logRecord(ctx context.Context, level, message string, productID int64) {
	options := []core.LogOption{core.LogWithProductID(productID)}
	if id, ok := SyncRunIDFromContext(ctx); ok {
		options = append(options, core.LogWithSyncRunID(id))
	}
	if err := app.WriteLog(level, message, options...); err != nil {
		app.Logger.Warn("writing activity log", zap.Error(err))
	}
}

func (app *App) logSyncRun(run *domain.SyncRun, syncErr error) {
	level := "INFO"
	message := fmt.Sprintf("imported %d dividends, %d products created, %d skipped",
		run.DividendsAdded, run.ProductsCreated, run.DividendsSkipped)
	if syncErr != nil {
		level = "ERROR"
		message = fmt.Sprintf("dividend import failed: %v", syncErr)
	}

	err := app.WriteLog(level, message,
		core.LogWithSyncRunID(run.ID),
		core.LogWithContext(map[string]any{
			"url":               run.URL,
			"products_created":  run.ProductsCreated,
			"dividends_added":   run.DividendsAdded,
			"dividends_skipped": run.DividendsSkipped,
		}),
	)
	if err != nil {
		app.Logger.Warn("writing activity log", zap.Error(err))
	}
}

// DumpPage downloads url and returns its body prettified, to inspect what the
// scraper sees.
func (app *App) DumpPage(ctx context.Context, url string) (*webfetch.Page, []byte, error) {
	if url == "" {
		url = app.Config.Sync.URL
	}
	page, err := app.Fetcher.Get(ctx, url)
	if err != nil {
		return nil, nil, fmt.Errorf("fetching %s : %w", url, err)
	}
	pretty, err := webfetch.Prettify(page.Body)
	if err != nil {
		app.Logger.Debug("prettifying page", zap.String("url", url), zap.Error(err))
		return page, page.Body, nil
	}
	if len(pretty) == 0 {
		return page, page.Body, nil
	}
	return page, pretty, nil
}
