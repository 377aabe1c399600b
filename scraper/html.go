package scraper

import (
	"bytes"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

var isinPattern = regexp.MustCompile(`^[A-Z]{2}[0-9]{10}$`)

// parseHTML reads rows tagged with data-ticker and falls back to a plain
// table when none of them yields a dividend.
func (s *Scraper) parseHTML(body []byte) ([]DividendData, error) {
	root, err := html.Parse(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("parsing HTML: %w", err)
	}

	rows := findAll(root, atom.Tr)

	var dividends []DividendData
	for _, row := range rows {
		ticker, ok := attr(row, "data-ticker")
		if !ok || ticker == "" {
			continue
		}
		d, err := parseTaggedRow(row, ticker)
		if err != nil {
			s.logger.Debug("skipping tagged row", zap.String("ticker", ticker), zap.Error(err))
			continue
		}
		dividends = append(dividends, d)
	}
	if len(dividends) > 0 {
		return dividends, nil
	}

	for i, row := range rows {
		if i == 0 {
			continue
		}
		d, err := parsePlainRow(row)
		if err != nil {
			s.logger.Debug("skipping table row", zap.Int("row", i), zap.Error(err))
			continue
		}
		dividends = append(dividends, d)
	}
	return dividends, nil
}

// parseTaggedRow reads data-* attributes of the row or its descendants,
// falling back to the cells company(1), ex-date(2), payment date(3) and amount(4).
func parseTaggedRow(row *html.Node, ticker string) (DividendData, error) {
	cells := rowCells(row)
	value := func(name string, cell int) (string, bool) {
		if v, ok := deepAttr(row, name); ok {
			return v, true
		}
		if cell < len(cells) {
			return cells[cell], true
		}
		return "", false
	}

	exDateStr, okEx := value("data-ex-date", 2)
	paymentDateStr, okPay := value("data-payment-date", 3)
	amountStr, okAmount := value("data-amount", 4)
	if !okEx || !okPay || !okAmount {
		return DividendData{}, errors.New("missing ex-date, payment date or amount")
	}
	company, _ := value("data-company", 1)
	isin, _ := value("data-isin", 1)

	amount, err := ParseAmount(amountStr)
	if err != nil {
		return DividendData{}, err
	}
	exDate, err := parseDate(exDateStr)
	if err != nil {
		return DividendData{}, fmt.Errorf("parsing ex-date: %w", err)
	}
	paymentDate, err := parseDate(paymentDateStr)
	if err != nil {
		return DividendData{}, fmt.Errorf("parsing payment date: %w", err)
	}

	return DividendData{
		Ticker:      ticker,
		Company:     company,
		ISIN:        isin,
		ExDate:      exDate,
		PaymentDate: paymentDate,
		Amount:      amount,
		Type:        DefaultType,
	}, nil
}

// parsePlainRow reads ticker, company or ISIN, ex-date, payment date, amount
// and an optional type from the first cells of a row.
func parsePlainRow(row *html.Node) (DividendData, error) {
	cells := rowCells(row)
	if len(cells) < 5 {
		return DividendData{}, fmt.Errorf("expected at least 5 cells, got %d", len(cells))
	}

	ticker := cells[0]
	companyOrISIN := cells[1]
	if ticker == "" || cells[2] == "" || cells[3] == "" || cells[4] == "" {
		return DividendData{}, errors.New("blank ticker, date or amount")
	}

	amount, err := ParseAmount(cells[4])
	if err != nil {
		return DividendData{}, err
	}
	exDate, err := parseDate(cells[2])
	if err != nil {
		return DividendData{}, fmt.Errorf("parsing ex-date: %w", err)
	}
	paymentDate, err := parseDate(cells[3])
	if err != nil {
		return DividendData{}, fmt.Errorf("parsing payment date: %w", err)
	}

	d := DividendData{
		Ticker:      ticker,
		ExDate:      exDate,
		PaymentDate: paymentDate,
		Amount:      amount,
		Type:        DefaultType,
	}
	if isinPattern.MatchString(companyOrISIN) {
		d.ISIN = companyOrISIN
	} else {
		d.Company = companyOrISIN
	}
	if len(cells) > 5 {
		d.Type = cells[5]
	}
	return d, nil
}

func findAll(n *html.Node, a atom.Atom) []*html.Node {
	var found []*html.Node
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && n.DataAtom == a {
			found = append(found, n)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return found
}

func attr(n *html.Node, name string) (string, bool) {
	for _, a := range n.Attr {
		if strings.EqualFold(a.Key, name) {
			return strings.TrimSpace(a.Val), true
		}
	}
	return "", false
}

// deepAttr looks for a non-empty attribute on n first, then on its descendants.
func deepAttr(n *html.Node, name string) (string, bool) {
	if v, ok := attr(n, name); ok && v != "" {
		return v, true
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type != html.ElementNode {
			continue
		}
		if v, ok := deepAttr(c, name); ok {
			return v, true
		}
	}
	return "", false
}

// rowCells returns the text of the td and th cells directly in the row.
func rowCells(row *html.Node) []string {
	var cells []string
	for c := row.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode && (c.DataAtom == atom.Td || c.DataAtom == atom.Th) {
			cells = append(cells, cellText(c))
		}
	}
	return cells
}

// cellText concatenates the text nodes of a cell. Entities are already decoded
// by the parser; non-breaking spaces become regular spaces.
func cellText(n *html.Node) string {
	var b strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			b.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return strings.TrimSpace(strings.ReplaceAll(b.String(), "\u00a0", " "))
}
