// Package db provides the database layer for divreminder.
// It encapsulates all interactions with the underlying SQLite database, managing
// persistence for products, sectors, dividends, provider API keys, import runs
// and the activity log.
//
// This package is responsible for:
// - Establishing the database connection and applying migrations (`db.go`).
// - Defining database-specific data structures that map to SQL table schemas.
// - Implementing the repository interfaces of the `domain` package
//   (e.g., `ProductRepository`, `DividendRepository`).
// - Converting between domain structs and database-friendly structs, including
//   `sql.Null*` types for nullable columns and ISO date strings for dividend dates.
// - Managing the incremental schema migrations (`migrations/`).
// - Providing common database utility types (`types.go`).
package db
