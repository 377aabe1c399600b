package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// StatsRepository defines the interface for retrieving aggregate figures about the stored data.
type StatsRepository interface {
	// CountProducts returns the number of tracked products.
	CountProducts() (int, error)
	// CountSectors returns the number of sectors.
	CountSectors() (int, error)
	// CountDividends returns the number of recorded dividends.
	CountDividends() (int, error)
	// SumDividends returns the total amount of dividends dated between from and to, inclusive.
	SumDividends(from, to time.Time) (decimal.Decimal, error)
}
