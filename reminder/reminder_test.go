package reminder

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/divreminder/divreminder/db"
	"github.com/divreminder/divreminder/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingNotifier struct {
	messages []*Message
	err      error
}

func (n *recordingNotifier) Notify(_ context.Context, msg *Message) error {
	if n.err != nil {
		return n.err
	}
	n.messages = append(n.messages, msg)
	return nil
}

func setupRepo(t *testing.T) *db.Repository {
	t.Helper()

	conn, err := db.New(filepath.Join(t.TempDir(), "reminder.db"))
	require.NoError(t, err)
	repo := db.NewRepository(conn)
	t.Cleanup(func() { repo.Close() })
	return repo
}

func day(t *testing.T, value string) time.Time {
	t.Helper()

	d, err := time.Parse(domain.DateLayout, value)
	require.NoError(t, err)
	return d
}

func addDividend(t *testing.T, repo *db.Repository, productID int64, date, amount string) *domain.Dividend {
	t.Helper()

	d := &domain.Dividend{ProductID: productID, Date: day(t, date), Amount: decimal.RequireFromString(amount)}
	id, err := repo.InsertDividend(d)
	require.NoError(t, err)
	d.ID = id
	return d
}

func addProduct(t *testing.T, repo *db.Repository, ticker string) int64 {
	t.Helper()

	id, err := repo.InsertProduct(&domain.Product{Ticker: ticker, Name: ticker})
	require.NoError(t, err)
	return id
}

func TestChecker(t *testing.T) {
	t.Run("should notify about a single upcoming dividend", func(t *testing.T) {
		repo := setupRepo(t)
		tte := addProduct(t, repo, "TTE")
		addDividend(t, repo, tte, "2025-06-05", "0.79")
		addDividend(t, repo, tte, "2025-07-01", "0.79")

		notifier := &recordingNotifier{}
		checker := NewChecker(repo, repo, notifier, WithCurrency("USD"), WithLogRepository(repo))

		msg, err := checker.Check(context.Background(), day(t, "2025-06-01"))
		require.NoError(t, err)
		require.NotNil(t, msg)
		assert.Equal(t, "Dividend Reminder", msg.Title)
		assert.Equal(t, "Dividend of $0.79 for TTE in 4 days", msg.Body)
		assert.Len(t, notifier.messages, 1)

		logs, err := repo.GetLogs()
		require.NoError(t, err)
		require.Len(t, logs, 1)
		assert.Equal(t, msg.Body, logs[0].Message)
		require.NotNil(t, logs[0].ProductID)
		assert.Equal(t, tte, *logs[0].ProductID)
	})

	t.Run("should summarise several dividends", func(t *testing.T) {
		repo := setupRepo(t)
		tte := addProduct(t, repo, "TTE")
		ko := addProduct(t, repo, "KO")
		addDividend(t, repo, tte, "2025-06-01", "0.79")
		addDividend(t, repo, ko, "2025-06-08", "0.51")

		notifier := &recordingNotifier{}
		checker := NewChecker(repo, repo, notifier, WithCurrency("USD"))

		msg, err := checker.Check(context.Background(), day(t, "2025-06-01"))
		require.NoError(t, err)
		require.NotNil(t, msg)
		assert.Equal(t, "2 Dividend Reminders", msg.Title)
		assert.Equal(t, "2 dividends totaling $1.30 coming soon", msg.Body)
		require.Len(t, msg.Reminders, 2)
		assert.Equal(t, 0, msg.Reminders[0].DaysUntil)
		assert.Equal(t, 7, msg.Reminders[1].DaysUntil)
	})

	t.Run("should not notify when nothing is due", func(t *testing.T) {
		repo := setupRepo(t)
		tte := addProduct(t, repo, "TTE")
		addDividend(t, repo, tte, "2025-05-31", "0.79")
		addDividend(t, repo, tte, "2025-06-09", "0.79")

		notifier := &recordingNotifier{}
		checker := NewChecker(repo, repo, notifier)

		msg, err := checker.Check(context.Background(), day(t, "2025-06-01"))
		require.NoError(t, err)
		assert.Nil(t, msg)
		assert.Empty(t, notifier.messages)
	})

	t.Run("should honour a custom window", func(t *testing.T) {
		repo := setupRepo(t)
		tte := addProduct(t, repo, "TTE")
		addDividend(t, repo, tte, "2025-06-20", "0.79")

		checker := NewChecker(repo, repo, &recordingNotifier{}, WithWindowDays(30))

		reminders, err := checker.Upcoming(day(t, "2025-06-01"))
		require.NoError(t, err)
		require.Len(t, reminders, 1)
		assert.Equal(t, 19, reminders[0].DaysUntil)
	})

	t.Run("should return the notifier error", func(t *testing.T) {
		repo := setupRepo(t)
		tte := addProduct(t, repo, "TTE")
		addDividend(t, repo, tte, "2025-06-02", "0.79")

		boom := errors.New("boom")
		checker := NewChecker(repo, repo, &recordingNotifier{err: boom}, WithLogRepository(repo))

		_, err := checker.Check(context.Background(), day(t, "2025-06-01"))
		assert.ErrorIs(t, err, boom)

		logs, err := repo.GetLogs()
		require.NoError(t, err)
		assert.Empty(t, logs)
	})
}

func TestFormatAmount(t *testing.T) {
	t.Run("should round to the currency minor unit", func(t *testing.T) {
		assert.Equal(t, "$1.24", FormatAmount(decimal.RequireFromString("1.235"), "USD"))
		assert.Equal(t, "$1,234.50", FormatAmount(decimal.RequireFromString("1234.5"), "USD"))
	})

	t.Run("should fall back for unknown currencies", func(t *testing.T) {
		assert.Equal(t, "2.50 XXZ", FormatAmount(decimal.RequireFromString("2.5"), "XXZ"))
	})
}

func TestBuildMessage(t *testing.T) {
	t.Run("should omit the ticker when the product is unknown", func(t *testing.T) {
		msg := BuildMessage([]Reminder{{
			Dividend:  &domain.Dividend{Amount: decimal.RequireFromString("3")},
			DaysUntil: 2,
		}}, "USD")
		assert.Equal(t, "Dividend of $3.00 in 2 days", msg.Body)
	})
}
