package db

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/divreminder/divreminder/domain"
	"github.com/google/uuid"
)

var _ domain.SyncRunRepository = (*Repository)(nil)

// dbSyncRun represents an import run as stored in the database.
type dbSyncRun struct {
	ID               uuid.UUID    `db:"id"`
	URL              string       `db:"url"`
	StartedAt        time.Time    `db:"started_at"`
	FinishedAt       sql.NullTime `db:"finished_at"`
	ProductsCreated  int          `db:"products_created"`
	DividendsAdded   int          `db:"dividends_added"`
	DividendsSkipped int          `db:"dividends_skipped"`
	Error            string       `db:"error"`
}

func toDomainSyncRun(dbRun *dbSyncRun) *domain.SyncRun {
	run := &domain.SyncRun{
		ID:               dbRun.ID,
		URL:              dbRun.URL,
		StartedAt:        dbRun.StartedAt,
		ProductsCreated:  dbRun.ProductsCreated,
		DividendsAdded:   dbRun.DividendsAdded,
		DividendsSkipped: dbRun.DividendsSkipped,
		Error:            dbRun.Error,
	}
	if dbRun.FinishedAt.Valid {
		finished := dbRun.FinishedAt.Time
		run.FinishedAt = &finished
	}
	return run
}

func fromDomainSyncRun(run *domain.SyncRun) *dbSyncRun {
	dbRun := &dbSyncRun{
		ID:               run.ID,
		URL:              run.URL,
		StartedAt:        run.StartedAt,
		ProductsCreated:  run.ProductsCreated,
		DividendsAdded:   run.DividendsAdded,
		DividendsSkipped: run.DividendsSkipped,
		Error:            run.Error,
	}
	if run.FinishedAt != nil {
		dbRun.FinishedAt = sql.NullTime{Time: *run.FinishedAt, Valid: true}
	}
	return dbRun
}

// InsertSyncRun records the start of an import.
func (repo *Repository) InsertSyncRun(run *domain.SyncRun) error {
	query := `INSERT INTO sync_runs (id, url, started_at, finished_at, products_created, dividends_added, dividends_skipped, error)
	          VALUES (:id, :url, :started_at, :finished_at, :products_created, :dividends_added, :dividends_skipped, :error)`

	_, err := repo.dbConn.NamedExec(query, fromDomainSyncRun(run))
	if err != nil {
		return fmt.Errorf("inserting sync run %s: %w", run.ID, err)
	}
	return nil
}

// FinishSyncRun stores the counters, error and finish time of an import.
func (repo *Repository) FinishSyncRun(run *domain.SyncRun) error {
	query := `UPDATE sync_runs
	          SET finished_at = :finished_at, products_created = :products_created,
	              dividends_added = :dividends_added, dividends_skipped = :dividends_skipped, error = :error
	          WHERE id = :id`

	result, err := repo.dbConn.NamedExec(query, fromDomainSyncRun(run))
	if err != nil {
		return fmt.Errorf("finishing sync run %s: %w", run.ID, err)
	}
	return expectRows(result, "sync run", run.ID)
}

// GetSyncRuns retrieves all runs, newest first.
func (repo *Repository) GetSyncRuns() ([]*domain.SyncRun, error) {
	var dbRuns []*dbSyncRun
	query := `SELECT id, url, started_at, finished_at, products_created, dividends_added, dividends_skipped, error
	          FROM sync_runs ORDER BY started_at DESC, id DESC`

	if err := repo.dbConn.Select(&dbRuns, query); err != nil {
		return nil, fmt.Errorf("getting sync runs: %w", err)
	}

	runs := make([]*domain.SyncRun, len(dbRuns))
	for i, r := range dbRuns {
		runs[i] = toDomainSyncRun(r)
	}
	return runs, nil
}
