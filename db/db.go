package db

import (
	"embed"
	"fmt"

	_ "github.com/divreminder/divreminder/db/migrations"

	"github.com/jmoiron/sqlx"
	"github.com/pressly/goose/v3"
	_ "modernc.org/sqlite"
)

//go:embed migrations/*.sql migrations/*.go
var embedMigrations embed.FS

// Repository provides a centralized structure for database operations, embedding the database connection.
// It acts as a receiver for methods that implement the various repository interfaces defined in the domain package.
type Repository struct {
	dbConn *sqlx.DB // dbConn is the active database connection pool.
}

// NewRepository initializes a new Repository with the given sqlx.DB database connection.
func NewRepository(db *sqlx.DB) *Repository {
	return &Repository{
		dbConn: db,
	}
}

// Close terminates the database connection.
func (repo *Repository) Close() error {
	err := repo.dbConn.Close()
	if err != nil {
		return fmt.Errorf("closing repo : %w", err)
	}
	return nil
}

// New opens the SQLite database file at `name` and applies all pending migrations.
// Foreign keys are enabled so that deleting a product cascades to its dividends and sector links.
//
// A single open connection is kept so that the foreign key pragma applies to every statement.
func New(name string) (*sqlx.DB, error) {
	db, err := Open(name)
	if err != nil {
		return nil, err
	}

	if err := Migrate(db, 0); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}

// Migrate applies the embedded migrations up to `version`. A zero version applies all of them.
func Migrate(db *sqlx.DB, version int64) error {
	goose.SetBaseFS(embedMigrations)
	goose.SetLogger(goose.NopLogger())

	if err := goose.SetDialect(string(goose.DialectSQLite3)); err != nil {
		return fmt.Errorf("setting dialect for migrations : %w", err)
	}

	if version > 0 {
		if err := goose.UpTo(db.DB, "migrations", version); err != nil {
			return fmt.Errorf("applying migrations up to %d : %w", version, err)
		}
		return nil
	}

	if err := goose.Up(db.DB, "migrations"); err != nil {
		return fmt.Errorf("applying migration : %w", err)
	}
	return nil
}

// Open connects to the database at `name` without applying migrations.
// It is used by tests that need to seed an older schema version.
func Open(name string) (*sqlx.DB, error) {
	db, err := sqlx.Connect("sqlite", fmt.Sprintf("%s?_journal=WAL&_timeout=5000&_fk=true", name))
	if err != nil {
		return nil, fmt.Errorf("connecting to db : %w", err)
	}
	db.SetMaxOpenConns(1)
	if _, err := db.Exec("PRAGMA foreign_keys = ON;"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enabling foreign keys: %w", err)
	}
	return db, nil
}
