package db

import (
	"fmt"
	"time"

	"github.com/divreminder/divreminder/domain"
	"github.com/shopspring/decimal"
)

var _ domain.StatsRepository = (*Repository)(nil)

// CountProducts returns the total number of tracked products.
func (repo *Repository) CountProducts() (int, error) {
	var count int
	query := `SELECT COUNT(*) FROM products`

	err := repo.dbConn.Get(&count, query)
	if err != nil {
		return 0, fmt.Errorf("getting product count: %w", err)
	}

	return count, nil
}

// CountSectors returns the total number of sectors.
func (repo *Repository) CountSectors() (int, error) {
	var count int
	query := `SELECT COUNT(*) FROM sectors`

	err := repo.dbConn.Get(&count, query)
	if err != nil {
		return 0, fmt.Errorf("getting sector count: %w", err)
	}

	return count, nil
}

// CountDividends returns the total number of recorded dividends.
func (repo *Repository) CountDividends() (int, error) {
	var count int
	query := `SELECT COUNT(*) FROM dividends`

	err := repo.dbConn.Get(&count, query)
	if err != nil {
		return 0, fmt.Errorf("getting dividend count: %w", err)
	}

	return count, nil
}

// SumDividends returns the sum of dividend amounts dated between from and to.
func (repo *Repository) SumDividends(from, to time.Time) (decimal.Decimal, error) {
	var amounts []float64
	query := `SELECT dividend_amount FROM dividends WHERE dividend_date >= ? AND dividend_date <= ?`

	err := repo.dbConn.Select(&amounts, query, formatDate(from), formatDate(to))
	if err != nil {
		return decimal.Zero, fmt.Errorf("summing dividends: %w", err)
	}

	total := decimal.Zero
	for _, a := range amounts {
		total = total.Add(decimal.NewFromFloat(a))
	}
	return total, nil
}
