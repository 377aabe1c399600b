package divreminder

import (
	"context"
	"fmt"
	"time"

	"github.com/divreminder/divreminder/reminder"
)

// Notifier builds the reminder notifier selected by reminder.notifier.
func (app *App) Notifier() (reminder.Notifier, error) {
	switch app.Config.Reminder.Notifier {
	case "", "log":
		return reminder.NewLogNotifier(app.Logger), nil
	case "mailgun":
		m := app.Config.Mailgun
		return reminder.NewMailgunNotifier(reminder.MailgunConfig{
			Domain:    m.Domain,
			APIKey:    m.APIKey,
			Sender:    m.Sender,
			Recipient: m.Recipient,
			Currency:  app.Config.Reminder.Currency,
			Timeout:   app.Config.HTTP.Timeout,
		}, app.Logger)
	default:
		return nil, fmt.Errorf("unknown notifier %q, expected log or mailgun", app.Config.Reminder.Notifier)
	}
}

// Checker builds a reminder checker over the repository sending through notifier.
func (app *App) Checker(notifier reminder.Notifier) (*reminder.Checker, error) {
	repo, err := app.repo()
	if err != nil {
		return nil, err
	}
	return reminder.NewChecker(repo, repo, notifier,
		reminder.WithWindowDays(app.Config.Reminder.WindowDays),
		reminder.WithCurrency(app.Config.Reminder.Currency),
		reminder.WithLogRepository(repo),
		reminder.WithLogger(app.Logger),
	), nil
}

// RunReminder checks once for dividends due within the window after today and
// notifies about them. It returns nil when nothing is due.
func (app *App) RunReminder(ctx context.Context, today time.Time) (*reminder.Message, error) {
	notifier, err := app.Notifier()
	if err != nil {
		return nil, err
	}
	checker, err := app.Checker(notifier)
	if err != nil {
		return nil, err
	}
	return checker.Check(ctx, today)
}

// StartScheduler runs the reminder check on the configured schedule until the
// returned scheduler is stopped.
func (app *App) StartScheduler() (*reminder.Scheduler, error) {
	notifier, err := app.Notifier()
	if err != nil {
		return nil, err
	}
	checker, err := app.Checker(notifier)
	if err != nil {
		return nil, err
	}
	loc, err := app.Config.Location()
	if err != nil {
		return nil, err
	}

	scheduler, err := reminder.NewScheduler(checker, app.Config.Reminder.Schedule, loc, app.Logger)
	if err != nil {
		return nil, err
	}
	scheduler.Start()
	return scheduler, nil
}
