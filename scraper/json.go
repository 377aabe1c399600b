package scraper

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// document is a decoded top-level JSON object. Keys keep their order so that
// the first array-valued key can be found.
type document struct {
	keys   []string
	values map[string]json.RawMessage
}

// decodeDocument decodes a JSON object, or an array wrapped as {"tickers": [...]}.
func decodeDocument(data []byte) (*document, error) {
	data = bytes.TrimSpace(data)
	switch {
	case bytes.HasPrefix(data, []byte("[")):
		if !json.Valid(data) {
			return nil, errors.New("invalid JSON array")
		}
		return &document{
			keys:   []string{"tickers"},
			values: map[string]json.RawMessage{"tickers": json.RawMessage(data)},
		}, nil
	case bytes.HasPrefix(data, []byte("{")):
	default:
		return nil, errors.New("not a JSON object or array")
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	if _, err := dec.Token(); err != nil {
		return nil, err
	}

	doc := &document{values: make(map[string]json.RawMessage)}
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		key, ok := tok.(string)
		if !ok {
			return nil, fmt.Errorf("unexpected token %v", tok)
		}
		var value json.RawMessage
		if err := dec.Decode(&value); err != nil {
			return nil, err
		}
		if _, seen := doc.values[key]; !seen {
			doc.keys = append(doc.keys, key)
		}
		doc.values[key] = value
	}
	if _, err := dec.Token(); err != nil {
		return nil, err
	}
	return doc, nil
}

// parseDocument reads either the nested layout
//
//	{"tickers": [{"symbol": "TTE", "company": "...", "isin": "...", "dividends": [{"exDate": "...", "paymentDate": "...", "amount": 0.79, "type": "final"}]}]}
//
// or, without a tickers key, the first array of flat entries carrying
// ticker, company, isin, exDate, paymentDate, amount and type.
func (s *Scraper) parseDocument(doc *document) ([]DividendData, error) {
	if raw, ok := doc.values["tickers"]; ok && isArray(raw) {
		var tickers []json.RawMessage
		if err := json.Unmarshal(raw, &tickers); err != nil {
			return nil, fmt.Errorf("decoding tickers: %w", err)
		}

		var dividends []DividendData
		for i, rawTicker := range tickers {
			entry, err := decodeEntry(rawTicker)
			if err != nil {
				s.logger.Debug("skipping ticker entry", zap.Int("index", i), zap.Error(err))
				continue
			}
			ticker := entry.firstString("symbol", "ticker")
			company := entry.text("company")
			isin := entry.text("isin")

			var items []json.RawMessage
			if rawItems, ok := entry["dividends"]; ok && isArray(rawItems) {
				if err := json.Unmarshal(rawItems, &items); err != nil {
					s.logger.Debug("skipping ticker dividends", zap.String("ticker", ticker), zap.Error(err))
					continue
				}
			}
			for _, rawItem := range items {
				item, err := decodeEntry(rawItem)
				if err != nil {
					s.logger.Debug("skipping dividend entry", zap.String("ticker", ticker), zap.Error(err))
					continue
				}
				d, err := item.dividend(ticker, company, isin)
				if err != nil {
					s.logger.Debug("skipping dividend entry", zap.String("ticker", ticker), zap.Error(err))
					continue
				}
				dividends = append(dividends, d)
			}
		}
		return dividends, nil
	}

	for _, key := range doc.keys {
		raw := doc.values[key]
		if !isArray(raw) {
			continue
		}

		var items []json.RawMessage
		if err := json.Unmarshal(raw, &items); err != nil {
			return nil, fmt.Errorf("decoding %s: %w", key, err)
		}

		var dividends []DividendData
		for i, rawItem := range items {
			item, err := decodeEntry(rawItem)
			if err != nil {
				s.logger.Debug("skipping flat entry", zap.Int("index", i), zap.Error(err))
				continue
			}
			d, err := item.dividend(item.firstString("ticker", "symbol"), item.text("company"), item.text("isin"))
			if err != nil {
				s.logger.Debug("skipping flat entry", zap.Int("index", i), zap.Error(err))
				continue
			}
			dividends = append(dividends, d)
		}
		return dividends, nil
	}

	return nil, errors.New("unable to parse JSON structure: no 'tickers' array found")
}

func isArray(raw json.RawMessage) bool {
	return bytes.HasPrefix(bytes.TrimSpace(raw), []byte("["))
}

// entry is a JSON object with lazily decoded fields.
type entry map[string]json.RawMessage

func decodeEntry(raw json.RawMessage) (entry, error) {
	var e entry
	if err := json.Unmarshal(raw, &e); err != nil {
		return nil, err
	}
	if e == nil {
		return nil, errors.New("null entry")
	}
	return e, nil
}

// text returns the field as a string. Numbers and booleans are returned as
// written; missing and null fields return "".
func (e entry) text(key string) string {
	raw, ok := e[key]
	if !ok {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	if trimmed := bytes.TrimSpace(raw); !bytes.Equal(trimmed, []byte("null")) {
		return string(trimmed)
	}
	return ""
}

// firstString returns the first present key among keys.
func (e entry) firstString(keys ...string) string {
	for _, key := range keys {
		if raw, ok := e[key]; ok && !bytes.Equal(bytes.TrimSpace(raw), []byte("null")) {
			return e.text(key)
		}
	}
	return ""
}

func (e entry) dividend(ticker, company, isin string) (DividendData, error) {
	if ticker == "" {
		return DividendData{}, errors.New("missing ticker")
	}

	exDate, err := parseDate(e.text("exDate"))
	if err != nil {
		return DividendData{}, fmt.Errorf("parsing exDate: %w", err)
	}
	paymentDate, err := parseDate(e.text("paymentDate"))
	if err != nil {
		return DividendData{}, fmt.Errorf("parsing paymentDate: %w", err)
	}

	amount, err := e.amount()
	if err != nil {
		return DividendData{}, err
	}

	dividendType := DefaultType
	if _, ok := e["type"]; ok {
		dividendType = e.text("type")
	}

	return DividendData{
		Ticker:      ticker,
		Company:     company,
		ISIN:        isin,
		ExDate:      exDate,
		PaymentDate: paymentDate,
		Amount:      amount,
		Type:        dividendType,
	}, nil
}

// amount accepts a JSON number or a formatted string.
func (e entry) amount() (decimal.Decimal, error) {
	raw, ok := e["amount"]
	if !ok || bytes.Equal(bytes.TrimSpace(raw), []byte("null")) {
		return decimal.Zero, errors.New("missing amount field")
	}

	var number json.Number
	if err := json.Unmarshal(raw, &number); err == nil {
		return decimal.NewFromString(number.String())
	}

	var text string
	if err := json.Unmarshal(raw, &text); err != nil {
		return decimal.Zero, fmt.Errorf("decoding amount: %w", err)
	}
	return ParseAmount(text)
}
