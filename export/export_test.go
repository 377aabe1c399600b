package export

import (
	"bytes"
	"errors"
	"testing"
	"time"

	"github.com/divreminder/divreminder/domain"
	"github.com/shopspring/decimal"
)

func dividend(id int64, date string, amount string) *domain.Dividend {
	d, err := time.Parse(domain.DateLayout, date)
	if err != nil {
		panic(err)
	}
	return &domain.Dividend{ID: id, Date: d, Amount: decimal.RequireFromString(amount)}
}

func TestWriteCSV(t *testing.T) {
	t.Run("should write rows sorted by date", func(t *testing.T) {
		products := []*domain.ProductWithDividends{
			{
				Product:   &domain.Product{ID: 1, Ticker: "TTE", Name: "TotalEnergies"},
				Dividends: []*domain.Dividend{dividend(1, "2025-06-01", "0.79"), dividend(2, "2025-01-10", "0.8")},
			},
			{
				Product:   &domain.Product{ID: 2, Ticker: "BRK", Name: `Berkshire "B", Inc`},
				Dividends: []*domain.Dividend{dividend(3, "2025-03-15", "1.234")},
			},
			{
				Product: &domain.Product{ID: 3, Ticker: "NONE", Name: "No dividends"},
			},
		}

		var buf bytes.Buffer
		n, err := WriteCSV(&buf, products)
		if err != nil {
			t.Fatalf("\nwanted:\nnil\ngot:\n%v", err)
		}

		want := "Product Name,Product Ticker,Dividend Date,Dividend Amount (€)\n" +
			"TotalEnergies,TTE,2025-01-10,0.80\n" +
			"\"Berkshire \"\"B\"\", Inc\",BRK,2025-03-15,1.23\n" +
			"TotalEnergies,TTE,2025-06-01,0.79\n"
		if buf.String() != want {
			t.Fatalf("\nwanted:\n%v\ngot:\n%v", want, buf.String())
		}
		if n != 3 {
			t.Fatalf("\nwanted:\n3\ngot:\n%d", n)
		}
	})

	t.Run("should keep product order for dividends on the same date", func(t *testing.T) {
		products := []*domain.ProductWithDividends{
			{Product: &domain.Product{Ticker: "B", Name: "Beta"}, Dividends: []*domain.Dividend{dividend(1, "2025-01-01", "1")}},
			{Product: &domain.Product{Ticker: "A", Name: "Alpha"}, Dividends: []*domain.Dividend{dividend(2, "2025-01-01", "2")}},
		}

		rows := Rows(products)
		if rows[0].ProductTicker != "B" || rows[1].ProductTicker != "A" {
			t.Fatalf("\nwanted:\nB, A\ngot:\n%s, %s", rows[0].ProductTicker, rows[1].ProductTicker)
		}
	})

	t.Run("should return ErrNothingToExport without dividends", func(t *testing.T) {
		var buf bytes.Buffer
		_, err := WriteCSV(&buf, []*domain.ProductWithDividends{{Product: &domain.Product{Ticker: "X"}}})
		if !errors.Is(err, ErrNothingToExport) {
			t.Fatalf("\nwanted:\n%v\ngot:\n%v", ErrNothingToExport, err)
		}
		if buf.Len() != 0 {
			t.Fatalf("\nwanted:\nempty output\ngot:\n%q", buf.String())
		}
	})
}
