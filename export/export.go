// Package export writes recorded dividends as CSV.
package export

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"sort"

	"github.com/divreminder/divreminder/domain"
)

// ErrNothingToExport is returned when there is no dividend to write.
var ErrNothingToExport = errors.New("no dividends to export")

// Header is the first CSV record.
var Header = []string{"Product Name", "Product Ticker", "Dividend Date", "Dividend Amount (€)"}

// Row is one exported dividend.
type Row struct {
	ProductName   string
	ProductTicker string
	Dividend      *domain.Dividend
}

// Rows flattens products into one row per dividend, sorted by dividend date.
// Dividends on the same date keep the product order.
func Rows(products []*domain.ProductWithDividends) []Row {
	var rows []Row
	for _, p := range products {
		for _, d := range p.Dividends {
			rows = append(rows, Row{ProductName: p.Product.Name, ProductTicker: p.Product.Ticker, Dividend: d})
		}
	}
	sort.SliceStable(rows, func(i, j int) bool {
		return rows[i].Dividend.Date.Before(rows[j].Dividend.Date)
	})
	return rows
}

// WriteCSV writes the header and one record per dividend to w.
// Fields containing commas, quotes or newlines are quoted.
func WriteCSV(w io.Writer, products []*domain.ProductWithDividends) (int, error) {
	rows := Rows(products)
	if len(rows) == 0 {
		return 0, ErrNothingToExport
	}

	cw := csv.NewWriter(w)
	if err := cw.Write(Header); err != nil {
		return 0, fmt.Errorf("writing header: %w", err)
	}
	for _, row := range rows {
		record := []string{
			row.ProductName,
			row.ProductTicker,
			row.Dividend.Date.Format(domain.DateLayout),
			row.Dividend.Amount.StringFixed(2),
		}
		if err := cw.Write(record); err != nil {
			return 0, fmt.Errorf("writing dividend %d: %w", row.Dividend.ID, err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return 0, fmt.Errorf("flushing csv: %w", err)
	}
	return len(rows), nil
}
