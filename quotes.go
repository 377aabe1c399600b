package divreminder

import (
	"context"
	"fmt"

	"github.com/divreminder/divreminder/quote"
)

// LookupQuote returns the current quote of a ticker.
func (app *App) LookupQuote(ctx context.Context, symbol string) (*quote.Stock, error) {
	stock, err := app.Quotes.Lookup(ctx, symbol)
	if err != nil {
		return nil, fmt.Errorf("looking up %s : %w", symbol, err)
	}
	return stock, nil
}

// LookupQuotes returns the quotes of several tickers in the given order.
// Without symbols it looks up every tracked product.
func (app *App) LookupQuotes(ctx context.Context, symbols ...string) ([]*quote.Stock, error) {
	if len(symbols) == 0 {
		repo, err := app.repo()
		if err != nil {
			return nil, err
		}
		products, err := repo.GetProducts()
		if err != nil {
			return nil, fmt.Errorf("getting products : %w", err)
		}
		for _, product := range products {
			symbols = append(symbols, product.Ticker)
		}
	}
	if len(symbols) == 0 {
		return nil, nil
	}
	return app.Quotes.LookupMany(ctx, symbols)
}
