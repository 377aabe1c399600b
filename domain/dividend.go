package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// DateLayout is the layout dividend dates are stored and exchanged with.
const DateLayout = time.DateOnly

// DividendRepository defines the interface for recording and querying dividend payments.
type DividendRepository interface {
	// GetDividends retrieves all dividends ordered by date.
	GetDividends() ([]*Dividend, error)

	// GetDividendsByProduct retrieves the dividends of one product ordered by date.
	GetDividendsByProduct(productID int64) ([]*Dividend, error)

	// GetFutureDividends retrieves dividends strictly after the given date.
	GetFutureDividends(after time.Time) ([]*Dividend, error)

	// GetDividendsSince retrieves dividends on or after the given date.
	GetDividendsSince(start time.Time) ([]*Dividend, error)

	// GetUpcomingDividends retrieves dividends between start and end, both inclusive.
	GetUpcomingDividends(start, end time.Time) ([]*Dividend, error)

	// GetDividend retrieves a dividend by ID. It returns ErrNotFound if it does not exist.
	GetDividend(id int64) (*Dividend, error)

	// DividendExists reports whether the product already has a dividend on that date
	// whose amount differs by less than one cent.
	DividendExists(productID int64, date time.Time, amount decimal.Decimal) (bool, error)

	// InsertDividend stores a dividend and returns its generated ID.
	// The product it references must exist.
	InsertDividend(dividend *Dividend) (int64, error)

	// InsertDividends stores several dividends in one transaction.
	InsertDividends(dividends []*Dividend) error

	// UpdateDividend overwrites the product, date and amount of a dividend.
	UpdateDividend(dividend *Dividend) error

	// DeleteDividend removes a dividend by ID.
	DeleteDividend(id int64) error

	// DeleteDividendsByProduct removes every dividend of a product.
	DeleteDividendsByProduct(productID int64) error
}

// Dividend is a dated cash payment associated with a product.
type Dividend struct {
	ID        int64           // Database identifier.
	ProductID int64           // The product paying the dividend.
	Date      time.Time       // Payment date, day precision.
	Amount    decimal.Decimal // Cash amount per share.
}

// DaysUntil returns the number of whole days between today and the dividend date.
func (d *Dividend) DaysUntil(today time.Time) int {
	from := time.Date(today.Year(), today.Month(), today.Day(), 0, 0, 0, 0, time.UTC)
	to := time.Date(d.Date.Year(), d.Date.Month(), d.Date.Day(), 0, 0, 0, 0, time.UTC)
	return int(to.Sub(from).Hours() / 24)
}
