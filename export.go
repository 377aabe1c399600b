package divreminder

import (
	"fmt"
	"io"

	"github.com/divreminder/divreminder/export"
)

// ExportCSV writes every recorded dividend to w as CSV and returns the number of rows.
// It returns export.ErrNothingToExport when no dividend is recorded.
func (app *App) ExportCSV(w io.Writer) (int, error) {
	repo, err := app.repo()
	if err != nil {
		return 0, err
	}
	products, err := repo.GetProductsWithDividends()
	if err != nil {
		return 0, fmt.Errorf("getting dividends to export : %w", err)
	}
	return export.WriteCSV(w, products)
}
