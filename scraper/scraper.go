// Package scraper extracts dividend announcements from a web page.
//
// Pages are parsed best effort: an embedded JSON document is preferred, then
// table rows annotated with data-* attributes, then any plain table whose rows
// look like ticker, company or ISIN, ex-date, payment date, amount and type.
// Entries that cannot be parsed are skipped.
package scraper

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/divreminder/divreminder/webfetch"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// DateLayout is the only date format accepted in pages.
const DateLayout = time.DateOnly

// DefaultType is used when an entry does not say which kind of dividend it is.
const DefaultType = "final"

var (
	// ErrNoData is returned when a page holds no parsable dividend entry.
	ErrNoData = errors.New("no dividend data found on the page")

	// ErrEmptyResponse is returned when the page body is blank.
	ErrEmptyResponse = errors.New("empty response from server")
)

// DividendData is one dividend announcement found on a page.
type DividendData struct {
	Ticker      string
	Company     string
	ISIN        string
	ExDate      time.Time
	PaymentDate time.Time
	Amount      decimal.Decimal
	Type        string
}

// PageFetcher downloads a page. *webfetch.Client satisfies it.
type PageFetcher interface {
	Get(ctx context.Context, url string) (*webfetch.Page, error)
}

// Scraper fetches pages and extracts dividend data from them.
type Scraper struct {
	fetcher PageFetcher
	logger  *zap.Logger
}

// Option configures a Scraper.
type Option func(*Scraper)

// WithLogger sets the logger that reports skipped entries at debug level.
func WithLogger(logger *zap.Logger) Option {
	return func(s *Scraper) {
		s.logger = logger
	}
}

// New returns a Scraper downloading pages with fetcher.
func New(fetcher PageFetcher, options ...Option) *Scraper {
	s := &Scraper{
		fetcher: fetcher,
		logger:  zap.NewNop(),
	}
	for _, option := range options {
		option(s)
	}
	return s
}

// FetchDividends downloads url and extracts its dividend entries.
// It returns ErrNoData when the page parses but contains nothing usable.
func (s *Scraper) FetchDividends(ctx context.Context, url string) ([]DividendData, error) {
	page, err := s.fetcher.Get(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("fetching dividends: %w", err)
	}

	dividends, err := s.Parse(page.Body)
	if err != nil {
		return nil, fmt.Errorf("fetching dividends from %s: %w", url, err)
	}
	if len(dividends) == 0 {
		return nil, ErrNoData
	}
	return dividends, nil
}

// Parse extracts dividend entries from a page body.
func (s *Scraper) Parse(body []byte) ([]DividendData, error) {
	if len(bytes.TrimSpace(body)) == 0 {
		return nil, ErrEmptyResponse
	}

	if webfetch.Detect(body) == webfetch.KindJSON {
		doc, err := decodeDocument(body)
		if err != nil {
			return nil, fmt.Errorf("decoding JSON page: %w", err)
		}
		return s.parseDocument(doc)
	}

	if doc := s.embeddedDocument(body); doc != nil {
		return s.parseDocument(doc)
	}

	return s.parseHTML(body)
}

var (
	dividendScriptPattern = regexp.MustCompile(`(?is)<script[^>]*id\s*=\s*["']dividend-data["'][^>]*>(.*?)</script>`)
	jsonObjectPattern     = regexp.MustCompile(`(?is)\{\s*"[^"]*"\s*:\s*\[\s*\{[^}]*"(?:symbol|ticker)"[^}]*\}[^\]]*\]`)
	jsonArrayPattern      = regexp.MustCompile(`(?is)\[\s*\{[^}]*"ticker"[^}]*\}[^\]]*\]`)
)

// embeddedDocument looks for dividend JSON inside an HTML page. It returns nil
// when nothing decodes, in which case the page is parsed as HTML.
func (s *Scraper) embeddedDocument(body []byte) *document {
	if m := dividendScriptPattern.FindSubmatch(body); m != nil {
		content := bytes.TrimSpace(m[1])
		if doc, err := decodeDocument(content); err == nil {
			return doc
		}
		s.logger.Debug("dividend-data script is not valid JSON")
	}

	if m := jsonObjectPattern.Find(body); m != nil {
		// the pattern stops at the first closing bracket, the object may still be open
		for _, candidate := range [][]byte{m, append(append([]byte{}, m...), '}')} {
			if doc, err := decodeDocument(candidate); err == nil {
				return doc
			}
		}
		s.logger.Debug("inline JSON object is not valid JSON")
	}

	if m := jsonArrayPattern.Find(body); m != nil {
		if doc, err := decodeDocument(m); err == nil {
			return doc
		}
		s.logger.Debug("inline JSON array is not valid JSON")
	}

	return nil
}

var amountReplacer = regexp.MustCompile(`[€$£,\s]`)

// ParseAmount reads an amount such as "€1,234.50" or "0.79 $".
// Currency symbols, thousands separators and whitespace are ignored.
func ParseAmount(value string) (decimal.Decimal, error) {
	cleaned := amountReplacer.ReplaceAllString(value, "")
	amount, err := decimal.NewFromString(cleaned)
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid amount format: %s", value)
	}
	return amount, nil
}

func parseDate(value string) (time.Time, error) {
	return time.Parse(DateLayout, strings.TrimSpace(value))
}
