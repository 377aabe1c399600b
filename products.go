package divreminder

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/divreminder/divreminder/domain"
	"github.com/shopspring/decimal"
)

var (
	// ErrInvalidProduct is returned when a product misses its ticker or name.
	ErrInvalidProduct = errors.New("product needs a ticker and a name")
	// ErrInvalidDividend is returned for dividends without a date or with a negative amount.
	ErrInvalidDividend = errors.New("dividend needs a date and a non-negative amount")
)

// DefaultSectors are inserted by SeedSectors into an empty database.
var DefaultSectors = []domain.Sector{
	{Name: "Technology", ProviderName: "NASDAQ"},
	{Name: "Healthcare", ProviderName: "NYSE"},
	{Name: "Finance", ProviderName: "NYSE"},
	{Name: "Energy", ProviderName: "NYSE"},
	{Name: "Consumer Goods", ProviderName: "NASDAQ"},
}

func normalizeProduct(product *domain.Product) error {
	product.Ticker = strings.ToUpper(strings.TrimSpace(product.Ticker))
	product.Name = strings.TrimSpace(product.Name)
	product.ISIN = strings.ToUpper(strings.TrimSpace(product.ISIN))
	if product.Ticker == "" || product.Name == "" {
		return ErrInvalidProduct
	}
	return nil
}

// AddProduct stores a new product and links it to sectorIDs.
func (app *App) AddProduct(product *domain.Product, sectorIDs ...int64) (int64, error) {
	repo, err := app.repo()
	if err != nil {
		return 0, err
	}
	if err := normalizeProduct(product); err != nil {
		return 0, err
	}

	id, err := repo.InsertProduct(product)
	if err != nil {
		return 0, fmt.Errorf("adding product %s : %w", product.Ticker, err)
	}
	product.ID = id

	if len(sectorIDs) > 0 {
		if err := repo.SetProductSectors(id, sectorIDs); err != nil {
			return id, fmt.Errorf("linking sectors of product %s : %w", product.Ticker, err)
		}
	}
	return id, nil
}

// UpdateProduct overwrites a product. When sectorIDs is non-nil the sector links
// are replaced by it; an empty non-nil slice removes every link.
func (app *App) UpdateProduct(product *domain.Product, sectorIDs []int64) error {
	repo, err := app.repo()
	if err != nil {
		return err
	}
	if err := normalizeProduct(product); err != nil {
		return err
	}

	if err := repo.UpdateProduct(product); err != nil {
		return fmt.Errorf("updating product %d : %w", product.ID, err)
	}
	if sectorIDs != nil {
		if err := repo.SetProductSectors(product.ID, sectorIDs); err != nil {
			return fmt.Errorf("linking sectors of product %d : %w", product.ID, err)
		}
	}
	return nil
}

// AddDividend records a dividend for an existing product.
func (app *App) AddDividend(productID int64, date time.Time, amount decimal.Decimal) (*domain.Dividend, error) {
	repo, err := app.repo()
	if err != nil {
		return nil, err
	}
	if date.IsZero() || amount.IsNegative() {
		return nil, ErrInvalidDividend
	}
	if _, err := repo.GetProduct(productID); err != nil {
		return nil, fmt.Errorf("adding dividend : %w", err)
	}

	dividend := &domain.Dividend{ProductID: productID, Date: date, Amount: amount}
	id, err := repo.InsertDividend(dividend)
	if err != nil {
		return nil, fmt.Errorf("adding dividend : %w", err)
	}
	dividend.ID = id
	return dividend, nil
}

// SeedSectors inserts DefaultSectors when no sector exists yet and reports
// how many were inserted.
func (app *App) SeedSectors() (int, error) {
	repo, err := app.repo()
	if err != nil {
		return 0, err
	}

	count, err := repo.CountSectors()
	if err != nil {
		return 0, fmt.Errorf("counting sectors : %w", err)
	}
	if count > 0 {
		return 0, nil
	}

	for _, sector := range DefaultSectors {
		if _, err := repo.InsertSector(&sector); err != nil {
			return 0, fmt.Errorf("seeding sector %s : %w", sector.Name, err)
		}
	}
	return len(DefaultSectors), nil
}
