package scraper

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/divreminder/divreminder/webfetch"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fetcherFunc func(ctx context.Context, url string) (*webfetch.Page, error)

func (f fetcherFunc) Get(ctx context.Context, url string) (*webfetch.Page, error) {
	return f(ctx, url)
}

func fixture(t *testing.T, name string) []byte {
	t.Helper()
	data, err := os.ReadFile(filepath.Join("testdata", name))
	require.NoError(t, err)
	return data
}

func day(t *testing.T, value string) time.Time {
	t.Helper()
	d, err := time.Parse(DateLayout, value)
	require.NoError(t, err)
	return d
}

type wantDividend struct {
	ticker, company, isin string
	exDate, paymentDate   string
	amount                string
	kind                  string
}

func assertDividends(t *testing.T, want []wantDividend, got []DividendData) {
	t.Helper()
	require.Len(t, got, len(want))
	for i, w := range want {
		g := got[i]
		assert.Equal(t, w.ticker, g.Ticker, "ticker of entry %d", i)
		assert.Equal(t, w.company, g.Company, "company of entry %d", i)
		assert.Equal(t, w.isin, g.ISIN, "isin of entry %d", i)
		assert.True(t, day(t, w.exDate).Equal(g.ExDate), "ex-date of entry %d: %s", i, g.ExDate)
		assert.True(t, day(t, w.paymentDate).Equal(g.PaymentDate), "payment date of entry %d: %s", i, g.PaymentDate)
		assert.True(t, decimal.RequireFromString(w.amount).Equal(g.Amount), "amount of entry %d: %s", i, g.Amount)
		assert.Equal(t, w.kind, g.Type, "type of entry %d", i)
	}
}

func TestParse(t *testing.T) {
	tests := []struct {
		name    string
		fixture string
		want    []wantDividend
	}{
		{
			name:    "should read the dividend-data script object",
			fixture: "script_object.html",
			want: []wantDividend{
				{"TTE", "TotalEnergies", "FR0000120271", "2026-01-02", "2026-01-06", "0.85", "interim"},
				{"SAN", "Sanofi", "", "2026-05-10", "2026-05-14", "3.92", "final"},
			},
		},
		{
			name:    "should wrap a dividend-data script array",
			fixture: "script_array.html",
			want: []wantDividend{
				{"AI", "Air Liquide", "FR0000120073", "2026-05-18", "2026-05-20", "3.3", "final"},
			},
		},
		{
			name:    "should find an inline JSON object in a script",
			fixture: "inline_object.html",
			want: []wantDividend{
				{"OR", "L'Oreal", "FR0000120321", "2026-04-24", "2026-04-28", "7", "final"},
				{"BN", "Danone", "", "2026-05-05", "2026-05-07", "2.15", "final"},
			},
		},
		{
			name:    "should read rows tagged with data attributes",
			fixture: "tagged_rows.html",
			want: []wantDividend{
				{"TTE", "TotalEnergies", "FR0000120271", "2026-01-02", "2026-01-06", "0.85", "final"},
				{"MC", "LVMH Moët Hennessy", "LVMH Moët Hennessy", "2026-04-23", "2026-04-25", "7.5", "final"},
			},
		},
		{
			name:    "should fall back to a plain table",
			fixture: "plain_table.html",
			want: []wantDividend{
				{"TTE", "", "FR0000120271", "2026-01-02", "2026-01-06", "0.85", "interim"},
				{"SAN", "Sanofi SA", "", "2026-05-10", "2026-05-14", "1003.92", "final"},
			},
		},
		{
			name:    "should read the first array of a JSON body",
			fixture: "flat.json",
			want: []wantDividend{
				{"TTE", "TotalEnergies", "FR0000120271", "2026-01-02", "2026-01-06", "0.85", "final"},
			},
		},
		{
			name:    "should return nothing for a page without data",
			fixture: "empty_page.html",
			want:    nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := New(nil).Parse(fixture(t, tt.fixture))
			require.NoError(t, err)
			assertDividends(t, tt.want, got)
		})
	}

	t.Run("should fail on a JSON body without any array", func(t *testing.T) {
		_, err := New(nil).Parse(fixture(t, "no_array.json"))
		assert.ErrorContains(t, err, "no 'tickers' array found")
	})

	t.Run("should fail on a blank body", func(t *testing.T) {
		_, err := New(nil).Parse([]byte(" \n "))
		assert.ErrorIs(t, err, ErrEmptyResponse)
	})
}

func TestFetchDividends(t *testing.T) {
	t.Run("should parse the fetched page", func(t *testing.T) {
		s := New(fetcherFunc(func(ctx context.Context, url string) (*webfetch.Page, error) {
			assert.Equal(t, "https://example.com/dividends", url)
			return &webfetch.Page{URL: url, StatusCode: 200, Body: fixture(t, "script_array.html")}, nil
		}))

		got, err := s.FetchDividends(context.Background(), "https://example.com/dividends")
		require.NoError(t, err)
		require.Len(t, got, 1)
		assert.Equal(t, "AI", got[0].Ticker)
	})

	t.Run("should return ErrNoData for a page without dividends", func(t *testing.T) {
		s := New(fetcherFunc(func(ctx context.Context, url string) (*webfetch.Page, error) {
			return &webfetch.Page{URL: url, StatusCode: 200, Body: fixture(t, "empty_page.html")}, nil
		}))

		_, err := s.FetchDividends(context.Background(), "https://example.com")
		assert.ErrorIs(t, err, ErrNoData)
	})

	t.Run("should wrap fetch errors", func(t *testing.T) {
		fetchErr := errors.New("connection refused")
		s := New(fetcherFunc(func(ctx context.Context, url string) (*webfetch.Page, error) {
			return nil, fetchErr
		}))

		_, err := s.FetchDividends(context.Background(), "https://example.com")
		assert.ErrorIs(t, err, fetchErr)
	})
}

func TestParseAmount(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{in: "0.85", want: "0.85"},
		{in: "€1,234.50", want: "1234.5"},
		{in: " £ 12 ", want: "12"},
		{in: "3.92$", want: "3.92"},
	}
	for _, tt := range tests {
		t.Run("should parse "+tt.in, func(t *testing.T) {
			got, err := ParseAmount(tt.in)
			require.NoError(t, err)
			assert.True(t, decimal.RequireFromString(tt.want).Equal(got), "got %s", got)
		})
	}

	t.Run("should reject text", func(t *testing.T) {
		_, err := ParseAmount("n/a")
		assert.Error(t, err)
	})
}
