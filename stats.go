package divreminder

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// Stats are aggregate figures about the stored data.
type Stats struct {
	Products      int
	Sectors       int
	Dividends     int
	UpcomingTotal decimal.Decimal // Sum of dividends within the reminder window
	YearTotal     decimal.Decimal // Sum of dividends in the calendar year of today
}

// Stats counts products, sectors and dividends and sums the dividends due soon
// and during the current year.
func (app *App) Stats(today time.Time) (*Stats, error) {
	repo, err := app.repo()
	if err != nil {
		return nil, err
	}

	stats := &Stats{}
	if stats.Products, err = repo.CountProducts(); err != nil {
		return nil, fmt.Errorf("counting products : %w", err)
	}
	if stats.Sectors, err = repo.CountSectors(); err != nil {
		return nil, fmt.Errorf("counting sectors : %w", err)
	}
	if stats.Dividends, err = repo.CountDividends(); err != nil {
		return nil, fmt.Errorf("counting dividends : %w", err)
	}

	day := time.Date(today.Year(), today.Month(), today.Day(), 0, 0, 0, 0, time.UTC)
	if stats.UpcomingTotal, err = repo.SumDividends(day, day.AddDate(0, 0, app.Config.Reminder.WindowDays)); err != nil {
		return nil, fmt.Errorf("summing upcoming dividends : %w", err)
	}
	yearStart := time.Date(day.Year(), time.January, 1, 0, 0, 0, 0, time.UTC)
	if stats.YearTotal, err = repo.SumDividends(yearStart, yearStart.AddDate(1, 0, -1)); err != nil {
		return nil, fmt.Errorf("summing dividends of %d : %w", day.Year(), err)
	}
	return stats, nil
}
