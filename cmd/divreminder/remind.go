package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/divreminder/divreminder/domain"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newRemindCmd() *cobra.Command {
	var date string
	var daemon bool

	cmd := &cobra.Command{
		Use:   "remind",
		Short: "Notify about dividends due within the reminder window",
		Long: `Checks once for dividends paid within reminder.window_days and sends a
reminder through the configured notifier. With --daemon the check runs on the
reminder.schedule cron expression until interrupted.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if daemon {
				return runDaemon(cmd.Context())
			}

			today := time.Now()
			if date != "" {
				var err error
				if today, err = time.Parse(domain.DateLayout, date); err != nil {
					return fmt.Errorf("invalid date %q, expected YYYY-MM-DD", date)
				}
			}

			msg, err := app.RunReminder(cmd.Context(), today)
			if err != nil {
				return err
			}
			if msg == nil {
				fmt.Fprintln(cmd.OutOrStdout(), "No upcoming dividends.")
				return nil
			}
			printTitle(cmd.OutOrStdout(), msg.Title)
			fmt.Fprintln(cmd.OutOrStdout(), msg.Body)
			return nil
		},
	}
	cmd.Flags().StringVar(&date, "date", "", "check as if today were this date, YYYY-MM-DD")
	cmd.Flags().BoolVar(&daemon, "daemon", false, "keep running and check on the configured schedule")
	return cmd
}

func runDaemon(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	scheduler, err := app.StartScheduler()
	if err != nil {
		return err
	}
	logger.Info("waiting for the next reminder check", zap.Time("next", scheduler.Next()))

	<-ctx.Done()
	logger.Info("stopping reminder scheduler")

	stopCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	return scheduler.Stop(stopCtx)
}
