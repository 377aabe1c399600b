package reminder

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// DefaultSchedule runs the check every day at 09:00.
const DefaultSchedule = "0 9 * * *"

// Scheduler runs a Checker on a cron schedule.
type Scheduler struct {
	checker *Checker
	cron    *cron.Cron
	loc     *time.Location
	logger  *zap.Logger
	now     func() time.Time
}

// NewScheduler registers the check under the cron schedule in the given location.
// A nil location means the local time zone.
func NewScheduler(checker *Checker, schedule string, loc *time.Location, logger *zap.Logger) (*Scheduler, error) {
	if loc == nil {
		loc = time.Local
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if schedule == "" {
		schedule = DefaultSchedule
	}

	s := &Scheduler{
		checker: checker,
		cron:    cron.New(cron.WithLocation(loc)),
		loc:     loc,
		logger:  logger,
		now:     time.Now,
	}
	if _, err := s.cron.AddFunc(schedule, s.run); err != nil {
		return nil, fmt.Errorf("unable to schedule reminder check %q: %w", schedule, err)
	}
	return s, nil
}

// run performs one check. A failure is logged and the next tick tries again.
func (s *Scheduler) run() {
	today := s.now().In(s.loc)
	s.logger.Info("starting reminder check", zap.String("today", today.Format(time.DateOnly)))

	msg, err := s.checker.Check(context.Background(), today)
	if err != nil {
		s.logger.Error("reminder check failed", zap.Error(err))
		return
	}
	if msg == nil {
		s.logger.Info("reminder check completed, nothing due")
		return
	}
	s.logger.Info("reminder check completed", zap.Int("dividends", len(msg.Reminders)))
}

// Start runs the scheduler in its own goroutine.
func (s *Scheduler) Start() {
	s.cron.Start()
	for _, entry := range s.cron.Entries() {
		s.logger.Info("reminder scheduler started", zap.Time("next", entry.Next))
	}
}

// Stop stops the scheduler and waits for a running check to complete or ctx to end.
func (s *Scheduler) Stop(ctx context.Context) error {
	done := s.cron.Stop()
	select {
	case <-done.Done():
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Next returns the next time the check runs. It is the zero time before Start.
func (s *Scheduler) Next() time.Time {
	entries := s.cron.Entries()
	if len(entries) == 0 {
		return time.Time{}
	}
	return entries[0].Next
}
