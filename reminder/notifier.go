package reminder

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/mailgun/mailgun-go/v4"
	"go.uber.org/zap"
)

// LogNotifier writes reminders to a zap logger.
type LogNotifier struct {
	logger *zap.Logger
}

// NewLogNotifier creates a notifier logging at info level.
func NewLogNotifier(logger *zap.Logger) *LogNotifier {
	return &LogNotifier{logger: logger}
}

// Notify logs the message and one line per dividend.
func (n *LogNotifier) Notify(_ context.Context, msg *Message) error {
	n.logger.Info(msg.Title, zap.String("body", msg.Body), zap.String("total", msg.Total.String()))
	for _, r := range msg.Reminders {
		n.logger.Info("upcoming dividend",
			zap.String("ticker", r.Ticker),
			zap.Time("date", r.Dividend.Date),
			zap.String("amount", r.Dividend.Amount.String()),
			zap.Int("days_until", r.DaysUntil),
		)
	}
	return nil
}

// mailSender is the part of the mailgun client the notifier uses.
type mailSender interface {
	NewMessage(from, subject, text string, to ...string) *mailgun.Message
	Send(ctx context.Context, m *mailgun.Message) (string, string, error)
}

// MailgunConfig holds the settings of the email notifier.
type MailgunConfig struct {
	Domain    string
	APIKey    string
	Sender    string
	Recipient string
	Currency  string
	Timeout   time.Duration
}

// ErrMailgunConfig is returned when a required mailgun setting is empty.
var ErrMailgunConfig = errors.New("mailgun configuration incomplete")

// MailgunNotifier sends reminders as plain text email.
type MailgunNotifier struct {
	mg     mailSender
	cfg    MailgunConfig
	logger *zap.Logger
}

// NewMailgunNotifier creates a notifier sending through the Mailgun API.
func NewMailgunNotifier(cfg MailgunConfig, logger *zap.Logger) (*MailgunNotifier, error) {
	var missing []string
	for name, value := range map[string]string{
		"domain":    cfg.Domain,
		"api_key":   cfg.APIKey,
		"sender":    cfg.Sender,
		"recipient": cfg.Recipient,
	} {
		if value == "" {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		sort.Strings(missing)
		return nil, fmt.Errorf("%w: missing %s", ErrMailgunConfig, strings.Join(missing, ", "))
	}

	mg := mailgun.NewMailgun(cfg.Domain, cfg.APIKey)
	return newMailgunNotifier(mg, cfg, logger), nil
}

func newMailgunNotifier(mg mailSender, cfg MailgunConfig, logger *zap.Logger) *MailgunNotifier {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 20 * time.Second
	}
	if cfg.Currency == "" {
		cfg.Currency = DefaultCurrency
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &MailgunNotifier{mg: mg, cfg: cfg, logger: logger}
}

// Notify emails the message to the configured recipient.
func (n *MailgunNotifier) Notify(ctx context.Context, msg *Message) error {
	message := n.mg.NewMessage(n.cfg.Sender, msg.Title, EmailBody(msg, n.cfg.Currency), n.cfg.Recipient)

	ctx, cancel := context.WithTimeout(ctx, n.cfg.Timeout)
	defer cancel()

	resp, id, err := n.mg.Send(ctx, message)
	if err != nil {
		return fmt.Errorf("mailgun send failed: %w. Response: %s", err, resp)
	}
	n.logger.Info("reminder email sent", zap.String("to", n.cfg.Recipient), zap.String("id", id))
	return nil
}

// EmailBody renders the plain text email for a message.
func EmailBody(msg *Message, currency string) string {
	var b strings.Builder
	b.WriteString(msg.Body)
	b.WriteString("\n\n")
	for _, r := range msg.Reminders {
		ticker := r.Ticker
		if ticker == "" {
			ticker = "(unknown product)"
		}
		fmt.Fprintf(&b, "- %s: %s on %s (in %d days)\n",
			ticker, FormatAmount(r.Dividend.Amount, currency), r.Dividend.Date.Format(time.DateOnly), r.DaysUntil)
	}
	return b.String()
}
