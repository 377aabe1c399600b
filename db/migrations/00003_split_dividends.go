package migrations

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/pressly/goose/v3"
	_ "modernc.org/sqlite"
)

const legacyDateLayout = time.DateOnly

func init() {
	goose.AddMigrationContext(upSplitDividends, downMergeDividends)
}

type legacyDividend struct {
	productID int64
	date      string
	amount    float64
}

func upSplitDividends(ctx context.Context, tx *sql.Tx) error {
	rows, err := tx.QueryContext(ctx, "SELECT id, dividend_date, dividend_amount FROM products")
	if err != nil {
		return fmt.Errorf("getting legacy dividend columns: %w", err)
	}
	var legacy []legacyDividend
	for rows.Next() {
		var id int64
		var date sql.NullString
		var amount sql.NullFloat64
		if err := rows.Scan(&id, &date, &amount); err != nil {
			rows.Close()
			return fmt.Errorf("scanning product row: %w", err)
		}
		if !date.Valid || date.String == "" || !amount.Valid {
			continue
		}
		if _, err := time.Parse(legacyDateLayout, date.String); err != nil {
			rows.Close()
			return fmt.Errorf("parsing dividend date %q for product %d: %w", date.String, id, err)
		}
		legacy = append(legacy, legacyDividend{productID: id, date: date.String, amount: amount.Float64})
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return fmt.Errorf("iterating rows: %w", err)
	}
	rows.Close()

	statements := []struct {
		query string
		step  string
	}{
		{`CREATE TABLE products_new (
			id INTEGER PRIMARY KEY AUTOINCREMENT NOT NULL,
			ticker TEXT NOT NULL,
			name TEXT NOT NULL,
			isin TEXT NOT NULL
		)`, "creating products_new"},
		{"INSERT INTO products_new (id, ticker, name, isin) SELECT id, ticker, name, isin FROM products", "copying products"},
		{"DROP TABLE products", "dropping legacy products"},
		{"ALTER TABLE products_new RENAME TO products", "renaming products_new"},
		{`CREATE TABLE dividends (
			id INTEGER PRIMARY KEY AUTOINCREMENT NOT NULL,
			product_id INTEGER NOT NULL REFERENCES products(id) ON DELETE CASCADE,
			dividend_date TEXT NOT NULL,
			dividend_amount REAL NOT NULL
		)`, "creating dividends"},
		{"CREATE INDEX idx_dividends_product_id ON dividends(product_id)", "indexing dividends product"},
		{"CREATE INDEX idx_dividends_dividend_date ON dividends(dividend_date)", "indexing dividends date"},
		{`CREATE TABLE product_sector_cross_ref_new (
			product_id INTEGER NOT NULL REFERENCES products(id) ON DELETE CASCADE,
			sector_id INTEGER NOT NULL REFERENCES sectors(id) ON DELETE CASCADE,
			PRIMARY KEY (product_id, sector_id)
		)`, "creating product_sector_cross_ref_new"},
		{`INSERT INTO product_sector_cross_ref_new (product_id, sector_id)
			SELECT c.product_id, c.sector_id FROM product_sector_cross_ref c
			WHERE EXISTS (SELECT 1 FROM products p WHERE p.id = c.product_id)
			AND EXISTS (SELECT 1 FROM sectors s WHERE s.id = c.sector_id)`, "copying cross refs"},
		{"DROP TABLE product_sector_cross_ref", "dropping legacy cross refs"},
		{"ALTER TABLE product_sector_cross_ref_new RENAME TO product_sector_cross_ref", "renaming cross refs"},
		{"CREATE INDEX idx_cross_ref_sector_id ON product_sector_cross_ref(sector_id)", "indexing cross refs"},
	}
	for _, s := range statements {
		if _, err := tx.ExecContext(ctx, s.query); err != nil {
			return fmt.Errorf("%s: %w", s.step, err)
		}
	}

	for _, d := range legacy {
		_, err := tx.ExecContext(ctx,
			"INSERT INTO dividends (product_id, dividend_date, dividend_amount) VALUES (?, ?, ?)",
			d.productID, d.date, d.amount)
		if err != nil {
			return fmt.Errorf("moving dividend for product %d: %w", d.productID, err)
		}
	}
	return nil
}

// downMergeDividends keeps only the latest dividend of each product since the
// legacy schema stores a single date and amount per product.
func downMergeDividends(ctx context.Context, tx *sql.Tx) error {
	statements := []struct {
		query string
		step  string
	}{
		{`CREATE TABLE products_old (
			id INTEGER PRIMARY KEY AUTOINCREMENT NOT NULL,
			ticker TEXT NOT NULL,
			name TEXT NOT NULL,
			isin TEXT NOT NULL,
			dividend_date TEXT,
			dividend_amount REAL
		)`, "creating products_old"},
		{`INSERT INTO products_old (id, ticker, name, isin, dividend_date, dividend_amount)
			SELECT p.id, p.ticker, p.name, p.isin,
				(SELECT d.dividend_date FROM dividends d WHERE d.product_id = p.id ORDER BY d.dividend_date DESC LIMIT 1),
				(SELECT d.dividend_amount FROM dividends d WHERE d.product_id = p.id ORDER BY d.dividend_date DESC LIMIT 1)
			FROM products p`, "copying products with latest dividend"},
		{`CREATE TABLE product_sector_cross_ref_old (
			product_id INTEGER NOT NULL,
			sector_id INTEGER NOT NULL,
			PRIMARY KEY (product_id, sector_id)
		)`, "creating product_sector_cross_ref_old"},
		{"INSERT INTO product_sector_cross_ref_old SELECT product_id, sector_id FROM product_sector_cross_ref", "copying cross refs"},
		{"DROP TABLE product_sector_cross_ref", "dropping cross refs"},
		{"DROP TABLE dividends", "dropping dividends"},
		{"DROP TABLE products", "dropping products"},
		{"ALTER TABLE products_old RENAME TO products", "renaming products_old"},
		{"ALTER TABLE product_sector_cross_ref_old RENAME TO product_sector_cross_ref", "renaming cross refs"},
	}
	for _, s := range statements {
		if _, err := tx.ExecContext(ctx, s.query); err != nil {
			return fmt.Errorf("%s: %w", s.step, err)
		}
	}
	return nil
}
