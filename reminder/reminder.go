// Package reminder notifies about dividends that are about to be paid.
//
// A Checker looks up the dividends dated within a window after today, turns
// them into a single Message and hands it to a Notifier. A Scheduler runs the
// check on a cron schedule.
package reminder

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/divreminder/divreminder/core"
	"github.com/divreminder/divreminder/domain"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const (
	// DefaultWindowDays is how many days ahead dividends are reminded of.
	DefaultWindowDays = 7
	// DefaultCurrency is the ISO code amounts are formatted in.
	DefaultCurrency = "EUR"
)

// Reminder is one upcoming dividend.
type Reminder struct {
	Dividend  *domain.Dividend
	Ticker    string // Ticker of the paying product, empty if the product is gone.
	DaysUntil int
}

// Message is the notification sent for a set of upcoming dividends.
type Message struct {
	Title     string
	Body      string
	Reminders []Reminder
	Total     decimal.Decimal
}

// Notifier delivers a reminder message.
type Notifier interface {
	Notify(ctx context.Context, msg *Message) error
}

// Checker finds upcoming dividends and notifies about them.
type Checker struct {
	dividends domain.DividendRepository
	products  domain.ProductRepository
	logs      domain.LogRepository
	notifier  Notifier
	window    int
	currency  string
	logger    *zap.Logger
}

// CheckerOption configures a Checker.
type CheckerOption func(*Checker)

// WithWindowDays sets how many days after today are included. Values below zero are ignored.
func WithWindowDays(days int) CheckerOption {
	return func(c *Checker) {
		if days >= 0 {
			c.window = days
		}
	}
}

// WithCurrency sets the currency amounts are displayed in.
func WithCurrency(code string) CheckerOption {
	return func(c *Checker) {
		if code != "" {
			c.currency = code
		}
	}
}

// WithLogger sets the logger of the checker.
func WithLogger(logger *zap.Logger) CheckerOption {
	return func(c *Checker) {
		c.logger = logger
	}
}

// WithLogRepository records every sent reminder in the activity log.
func WithLogRepository(logs domain.LogRepository) CheckerOption {
	return func(c *Checker) {
		c.logs = logs
	}
}

// NewChecker creates a Checker reading from the given repositories.
func NewChecker(dividends domain.DividendRepository, products domain.ProductRepository, notifier Notifier, opts ...CheckerOption) *Checker {
	c := &Checker{
		dividends: dividends,
		products:  products,
		notifier:  notifier,
		window:    DefaultWindowDays,
		currency:  DefaultCurrency,
		logger:    zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Upcoming returns the reminders for dividends dated between today and
// today plus the window, both inclusive, ordered by date.
func (c *Checker) Upcoming(today time.Time) ([]Reminder, error) {
	start := truncateDay(today)
	end := start.AddDate(0, 0, c.window)

	dividends, err := c.dividends.GetUpcomingDividends(start, end)
	if err != nil {
		return nil, fmt.Errorf("getting upcoming dividends: %w", err)
	}

	tickers := make(map[int64]string)
	reminders := make([]Reminder, 0, len(dividends))
	for _, d := range dividends {
		ticker, ok := tickers[d.ProductID]
		if !ok {
			product, err := c.products.GetProduct(d.ProductID)
			switch {
			case errors.Is(err, domain.ErrNotFound):
			case err != nil:
				return nil, fmt.Errorf("getting product %d: %w", d.ProductID, err)
			default:
				ticker = product.Ticker
			}
			tickers[d.ProductID] = ticker
		}
		reminders = append(reminders, Reminder{Dividend: d, Ticker: ticker, DaysUntil: d.DaysUntil(start)})
	}
	return reminders, nil
}

// Check notifies about the upcoming dividends. It returns nil without
// notifying when there is none.
func (c *Checker) Check(ctx context.Context, today time.Time) (*Message, error) {
	reminders, err := c.Upcoming(today)
	if err != nil {
		return nil, err
	}
	if len(reminders) == 0 {
		c.logger.Debug("no upcoming dividends", zap.Time("today", today), zap.Int("window_days", c.window))
		return nil, nil
	}

	msg := BuildMessage(reminders, c.currency)
	if err := c.notifier.Notify(ctx, msg); err != nil {
		return nil, fmt.Errorf("sending reminder: %w", err)
	}
	c.logger.Info("reminder sent", zap.String("title", msg.Title), zap.Int("dividends", len(reminders)))

	if c.logs != nil {
		c.record(msg)
	}
	return msg, nil
}

// record stores the sent message in the activity log. Failures are only logged
// since the notification already went out.
func (c *Checker) record(msg *Message) {
	ids := make([]int64, 0, len(msg.Reminders))
	for _, r := range msg.Reminders {
		ids = append(ids, r.Dividend.ID)
	}
	opts := []core.LogOption{core.LogWithContext(map[string]any{
		"title":        msg.Title,
		"dividend_ids": ids,
		"total":        msg.Total.String(),
	})}
	if len(msg.Reminders) == 1 {
		opts = append(opts, core.LogWithProductID(msg.Reminders[0].Dividend.ProductID))
	}

	entry, err := core.NewLog("INFO", msg.Body, opts...)
	if err == nil {
		err = c.logs.InsertLog(entry)
	}
	if err != nil {
		c.logger.Warn("recording reminder", zap.Error(err))
	}
}

// BuildMessage renders the title and body for a non-empty set of reminders.
func BuildMessage(reminders []Reminder, currency string) *Message {
	total := decimal.Zero
	for _, r := range reminders {
		total = total.Add(r.Dividend.Amount)
	}

	msg := &Message{Reminders: reminders, Total: total}
	if len(reminders) == 1 {
		r := reminders[0]
		msg.Title = "Dividend Reminder"
		msg.Body = fmt.Sprintf("Dividend of %s for %s in %d days", FormatAmount(r.Dividend.Amount, currency), r.Ticker, r.DaysUntil)
		if r.Ticker == "" {
			msg.Body = fmt.Sprintf("Dividend of %s in %d days", FormatAmount(r.Dividend.Amount, currency), r.DaysUntil)
		}
		return msg
	}

	msg.Title = fmt.Sprintf("%d Dividend Reminders", len(reminders))
	msg.Body = fmt.Sprintf("%d dividends totaling %s coming soon", len(reminders), FormatAmount(total, currency))
	return msg
}

func truncateDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
