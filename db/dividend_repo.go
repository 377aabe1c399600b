package db

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/divreminder/divreminder/domain"
	"github.com/shopspring/decimal"
)

var _ domain.DividendRepository = (*Repository)(nil)

// dbDividend represents a dividend as stored in the database.
// Dates are kept as ISO text so they compare lexicographically in SQL.
type dbDividend struct {
	ID        int64   `db:"id"`
	ProductID int64   `db:"product_id"`
	Date      string  `db:"dividend_date"`
	Amount    float64 `db:"dividend_amount"`
}

const dividendColumns = `id, product_id, dividend_date, dividend_amount`

// toDomainDividend converts a dbDividend to a domain.Dividend.
func toDomainDividend(dbDividend *dbDividend) (*domain.Dividend, error) {
	date, err := time.Parse(domain.DateLayout, dbDividend.Date)
	if err != nil {
		return nil, fmt.Errorf("parsing date of dividend %d: %w", dbDividend.ID, err)
	}
	return &domain.Dividend{
		ID:        dbDividend.ID,
		ProductID: dbDividend.ProductID,
		Date:      date,
		Amount:    decimal.NewFromFloat(dbDividend.Amount),
	}, nil
}

// fromDomainDividend converts a domain.Dividend to a dbDividend.
func fromDomainDividend(dividend *domain.Dividend) *dbDividend {
	return &dbDividend{
		ID:        dividend.ID,
		ProductID: dividend.ProductID,
		Date:      formatDate(dividend.Date),
		Amount:    dividend.Amount.InexactFloat64(),
	}
}

func formatDate(t time.Time) string {
	return t.Format(domain.DateLayout)
}

func (repo *Repository) selectDividends(query string, args ...any) ([]*domain.Dividend, error) {
	var dbDividends []*dbDividend
	if err := repo.dbConn.Select(&dbDividends, query, args...); err != nil {
		return nil, err
	}

	dividends := make([]*domain.Dividend, len(dbDividends))
	for i, d := range dbDividends {
		dividend, err := toDomainDividend(d)
		if err != nil {
			return nil, err
		}
		dividends[i] = dividend
	}
	return dividends, nil
}

// GetDividends retrieves all dividends ordered by date.
func (repo *Repository) GetDividends() ([]*domain.Dividend, error) {
	dividends, err := repo.selectDividends(`SELECT ` + dividendColumns + ` FROM dividends ORDER BY dividend_date, id`)
	if err != nil {
		return nil, fmt.Errorf("getting dividends: %w", err)
	}
	return dividends, nil
}

// GetDividendsByProduct retrieves the dividends of one product ordered by date.
func (repo *Repository) GetDividendsByProduct(productID int64) ([]*domain.Dividend, error) {
	query := `SELECT ` + dividendColumns + ` FROM dividends WHERE product_id = ? ORDER BY dividend_date, id`
	dividends, err := repo.selectDividends(query, productID)
	if err != nil {
		return nil, fmt.Errorf("getting dividends of product %d: %w", productID, err)
	}
	return dividends, nil
}

// GetFutureDividends retrieves dividends dated strictly after the given day.
func (repo *Repository) GetFutureDividends(after time.Time) ([]*domain.Dividend, error) {
	query := `SELECT ` + dividendColumns + ` FROM dividends WHERE dividend_date > ? ORDER BY dividend_date, id`
	dividends, err := repo.selectDividends(query, formatDate(after))
	if err != nil {
		return nil, fmt.Errorf("getting dividends after %s: %w", formatDate(after), err)
	}
	return dividends, nil
}

// GetDividendsSince retrieves dividends dated on or after the given day.
func (repo *Repository) GetDividendsSince(start time.Time) ([]*domain.Dividend, error) {
	query := `SELECT ` + dividendColumns + ` FROM dividends WHERE dividend_date >= ? ORDER BY dividend_date, id`
	dividends, err := repo.selectDividends(query, formatDate(start))
	if err != nil {
		return nil, fmt.Errorf("getting dividends since %s: %w", formatDate(start), err)
	}
	return dividends, nil
}

// GetUpcomingDividends retrieves dividends between start and end inclusive.
func (repo *Repository) GetUpcomingDividends(start, end time.Time) ([]*domain.Dividend, error) {
	query := `SELECT ` + dividendColumns + ` FROM dividends
	          WHERE dividend_date >= ? AND dividend_date <= ?
	          ORDER BY dividend_date, id`
	dividends, err := repo.selectDividends(query, formatDate(start), formatDate(end))
	if err != nil {
		return nil, fmt.Errorf("getting dividends between %s and %s: %w", formatDate(start), formatDate(end), err)
	}
	return dividends, nil
}

// GetDividend retrieves a dividend by ID.
func (repo *Repository) GetDividend(id int64) (*domain.Dividend, error) {
	var d dbDividend
	query := `SELECT ` + dividendColumns + ` FROM dividends WHERE id = ?`

	err := repo.dbConn.Get(&d, query, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("getting dividend %d: %w", id, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("getting dividend %d: %w", id, err)
	}
	return toDomainDividend(&d)
}

// DividendExists reports whether a matching dividend is already recorded.
// Amounts match when they differ by less than 0.01.
func (repo *Repository) DividendExists(productID int64, date time.Time, amount decimal.Decimal) (bool, error) {
	var exists bool
	query := `SELECT COUNT(*) > 0 FROM dividends
	          WHERE product_id = ? AND dividend_date = ? AND ABS(dividend_amount - ?) < 0.01`

	err := repo.dbConn.Get(&exists, query, productID, formatDate(date), amount.InexactFloat64())
	if err != nil {
		return false, fmt.Errorf("checking dividend of product %d on %s: %w", productID, formatDate(date), err)
	}
	return exists, nil
}

// InsertDividend stores a dividend and returns the generated ID.
func (repo *Repository) InsertDividend(dividend *domain.Dividend) (int64, error) {
	query := `INSERT INTO dividends (product_id, dividend_date, dividend_amount)
	          VALUES (:product_id, :dividend_date, :dividend_amount)`

	result, err := repo.dbConn.NamedExec(query, fromDomainDividend(dividend))
	if err != nil {
		return 0, fmt.Errorf("inserting dividend for product %d: %w", dividend.ProductID, err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("fetching dividend id: %w", err)
	}
	return id, nil
}

// InsertDividends stores several dividends in a single transaction.
func (repo *Repository) InsertDividends(dividends []*domain.Dividend) error {
	tx, err := repo.dbConn.Beginx()
	if err != nil {
		return fmt.Errorf("starting transaction: %w", err)
	}
	defer tx.Rollback()

	query := `INSERT INTO dividends (product_id, dividend_date, dividend_amount)
	          VALUES (:product_id, :dividend_date, :dividend_amount)`
	for _, d := range dividends {
		if _, err := tx.NamedExec(query, fromDomainDividend(d)); err != nil {
			return fmt.Errorf("inserting dividend for product %d: %w", d.ProductID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing dividends: %w", err)
	}
	return nil
}

// UpdateDividend overwrites product, date and amount of a dividend.
func (repo *Repository) UpdateDividend(dividend *domain.Dividend) error {
	query := `UPDATE dividends SET product_id = :product_id, dividend_date = :dividend_date, dividend_amount = :dividend_amount
	          WHERE id = :id`

	result, err := repo.dbConn.NamedExec(query, fromDomainDividend(dividend))
	if err != nil {
		return fmt.Errorf("updating dividend %d: %w", dividend.ID, err)
	}
	return expectRows(result, "dividend", dividend.ID)
}

// DeleteDividend removes a dividend by ID.
func (repo *Repository) DeleteDividend(id int64) error {
	result, err := repo.dbConn.Exec(`DELETE FROM dividends WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting dividend %d: %w", id, err)
	}
	return expectRows(result, "dividend", id)
}

// DeleteDividendsByProduct removes every dividend of a product.
func (repo *Repository) DeleteDividendsByProduct(productID int64) error {
	_, err := repo.dbConn.Exec(`DELETE FROM dividends WHERE product_id = ?`, productID)
	if err != nil {
		return fmt.Errorf("deleting dividends of product %d: %w", productID, err)
	}
	return nil
}
