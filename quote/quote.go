// Package quote looks up stock quotes on the Yahoo Finance chart endpoint.
package quote

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/PaesslerAG/jsonpath"
	"github.com/divreminder/divreminder/webfetch"
	"github.com/patrickmn/go-cache"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// DefaultBaseURL is the public Yahoo Finance API host.
const DefaultBaseURL = "https://query1.finance.yahoo.com"

// ErrBlankSymbol is returned when the symbol is empty after trimming.
var ErrBlankSymbol = errors.New("symbol cannot be blank")

// Stock is the quote of a single symbol.
type Stock struct {
	Symbol    string
	LongName  string
	ShortName string
	Price     decimal.NullDecimal // last non-null close, invalid when unknown
	Currency  string
	Exchange  string
}

// Name returns the long name, the short name or "N/A".
func (s *Stock) Name() string {
	switch {
	case s.LongName != "":
		return s.LongName
	case s.ShortName != "":
		return s.ShortName
	default:
		return "N/A"
	}
}

// PageFetcher downloads a page. *webfetch.Client satisfies it.
type PageFetcher interface {
	Get(ctx context.Context, url string) (*webfetch.Page, error)
}

// Client looks up quotes and caches them.
type Client struct {
	fetcher     PageFetcher
	baseURL     string
	cache       *cache.Cache
	concurrency int
	logger      *zap.Logger
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithBaseURL replaces DefaultBaseURL, typically with a test server.
func WithBaseURL(baseURL string) ClientOption {
	return func(c *Client) {
		c.baseURL = strings.TrimRight(baseURL, "/")
	}
}

// WithCacheTTL sets how long a quote is served from memory.
// A zero TTL disables caching.
func WithCacheTTL(ttl time.Duration) ClientOption {
	return func(c *Client) {
		if ttl <= 0 {
			c.cache = nil
			return
		}
		c.cache = cache.New(ttl, 2*ttl)
	}
}

// WithConcurrency bounds the number of lookups LookupMany runs at once.
func WithConcurrency(n int) ClientOption {
	return func(c *Client) {
		if n > 0 {
			c.concurrency = n
		}
	}
}

// WithLogger sets the logger.
func WithLogger(logger *zap.Logger) ClientOption {
	return func(c *Client) {
		c.logger = logger
	}
}

// NewClient returns a Client fetching through fetcher with a 15 minute cache.
func NewClient(fetcher PageFetcher, options ...ClientOption) *Client {
	c := &Client{
		fetcher:     fetcher,
		baseURL:     DefaultBaseURL,
		cache:       cache.New(15*time.Minute, 30*time.Minute),
		concurrency: 4,
		logger:      zap.NewNop(),
	}
	for _, option := range options {
		option(c)
	}
	return c
}

// NormalizeSymbol trims and upper-cases a symbol.
func NormalizeSymbol(symbol string) (string, error) {
	clean := strings.ToUpper(strings.TrimSpace(symbol))
	if clean == "" {
		return "", ErrBlankSymbol
	}
	return clean, nil
}

// Lookup returns the quote of symbol.
func (c *Client) Lookup(ctx context.Context, symbol string) (*Stock, error) {
	clean, err := NormalizeSymbol(symbol)
	if err != nil {
		return nil, err
	}

	if c.cache != nil {
		if cached, ok := c.cache.Get(clean); ok {
			c.logger.Debug("quote cache hit", zap.String("symbol", clean))
			stock := *cached.(*Stock)
			return &stock, nil
		}
	}

	endpoint := fmt.Sprintf("%s/v8/finance/chart/%s", c.baseURL, url.PathEscape(clean))
	page, err := c.fetcher.Get(ctx, endpoint)
	if err != nil {
		var statusErr *webfetch.StatusError
		if errors.As(err, &statusErr) {
			if description, ok := chartError(statusErr.Body); ok {
				return nil, fmt.Errorf("API error for %s: %s", clean, description)
			}
			return nil, fmt.Errorf("HTTP %d: failed to fetch stock data for %s", statusErr.StatusCode, clean)
		}
		return nil, fmt.Errorf("fetching stock information for %s: %w", clean, err)
	}
	if strings.TrimSpace(string(page.Body)) == "" {
		return nil, fmt.Errorf("empty response for %s", clean)
	}

	stock, err := parseChart(clean, page.Body)
	if err != nil {
		return nil, err
	}

	if c.cache != nil {
		cached := *stock
		c.cache.SetDefault(clean, &cached)
	}
	return stock, nil
}

// LookupMany looks up symbols concurrently. The result keeps the order of
// symbols; the first failure cancels the remaining lookups.
func (c *Client) LookupMany(ctx context.Context, symbols []string) ([]*Stock, error) {
	stocks := make([]*Stock, len(symbols))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(c.concurrency)
	for i, symbol := range symbols {
		g.Go(func() error {
			stock, err := c.Lookup(ctx, symbol)
			if err != nil {
				return err
			}
			stocks[i] = stock
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return stocks, nil
}

// chartError extracts chart.error.description from a body.
func chartError(body []byte) (string, bool) {
	var doc any
	if err := json.Unmarshal(body, &doc); err != nil {
		return "", false
	}
	errValue, ok := lookup(doc, "$.chart.error")
	if !ok || errValue == nil {
		return "", false
	}
	if description, ok := lookupString(doc, "$.chart.error.description"); ok && description != "" {
		return description, true
	}
	return "Unknown error", true
}

func parseChart(symbol string, body []byte) (*Stock, error) {
	var doc any
	if err := json.Unmarshal(body, &doc); err != nil {
		return nil, fmt.Errorf("decoding chart of %s: %w", symbol, err)
	}

	if _, ok := lookup(doc, "$.chart"); !ok {
		return nil, fmt.Errorf("decoding chart of %s: missing chart object", symbol)
	}
	if description, ok := chartError(body); ok {
		return nil, fmt.Errorf("API error for %s: %s", symbol, description)
	}

	results, _ := lookup(doc, "$.chart.result")
	if list, ok := results.([]any); !ok || len(list) == 0 {
		return nil, fmt.Errorf("no data available for symbol: %s", symbol)
	}

	quotes, _ := lookup(doc, "$.chart.result[0].indicators.quote")
	if list, ok := quotes.([]any); !ok || len(list) == 0 {
		return nil, fmt.Errorf("no quote data available for symbol: %s", symbol)
	}

	stock := &Stock{Symbol: symbol}
	stock.LongName, _ = lookupString(doc, "$.chart.result[0].meta.longName")
	stock.ShortName, _ = lookupString(doc, "$.chart.result[0].meta.shortName")
	stock.Currency, _ = lookupString(doc, "$.chart.result[0].meta.currency")
	stock.Exchange, _ = lookupString(doc, "$.chart.result[0].meta.exchangeName")

	if closes, ok := lookup(doc, "$.chart.result[0].indicators.quote[0].close"); ok {
		if list, ok := closes.([]any); ok {
			for i := len(list) - 1; i >= 0; i-- {
				if price, ok := list[i].(float64); ok {
					stock.Price = decimal.NewNullDecimal(decimal.NewFromFloat(price))
					break
				}
			}
		}
	}

	if stock.ShortName == "" && stock.LongName == "" && !stock.Price.Valid {
		return nil, fmt.Errorf("no valid data available for symbol: %s", symbol)
	}
	return stock, nil
}

func lookup(doc any, path string) (any, bool) {
	value, err := jsonpath.Get(path, doc)
	if err != nil {
		return nil, false
	}
	return value, true
}

// lookupString returns a non-blank string at path.
func lookupString(doc any, path string) (string, bool) {
	value, ok := lookup(doc, path)
	if !ok {
		return "", false
	}
	s, ok := value.(string)
	s = strings.TrimSpace(s)
	return s, ok && s != ""
}
