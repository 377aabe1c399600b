package domain

import (
	"time"

	"github.com/google/uuid"
)

// SyncRunRepository defines the interface for recording dividend imports.
type SyncRunRepository interface {
	// InsertSyncRun records the start of an import.
	InsertSyncRun(run *SyncRun) error

	// FinishSyncRun stores the outcome of an import started with InsertSyncRun.
	FinishSyncRun(run *SyncRun) error

	// GetSyncRuns retrieves all recorded imports, newest first.
	GetSyncRuns() ([]*SyncRun, error)
}

// SyncRun is one import of dividend records from a web page.
type SyncRun struct {
	ID               uuid.UUID  // Unique identifier of the run.
	URL              string     // The page the records were scraped from.
	StartedAt        time.Time  // When the import started.
	FinishedAt       *time.Time // When the import finished, nil while running.
	ProductsCreated  int        // Products created for unknown tickers.
	DividendsAdded   int        // Dividends inserted.
	DividendsSkipped int        // Duplicates and records that failed to import.
	Error            string     // Failure message if the whole import failed.
}
