package main

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/spf13/cobra"

	"github.com/Veraticus/finsight/internal/cli"
	"github.com/Veraticus/finsight/internal/common"
)

var scheduleParser = cron.NewParser(
	cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor,
)

// scheduledJob is one recurring task run by serve.
type scheduledJob struct {
	name     string
	schedule string
	run      func(ctx context.Context)
}

// newScheduler registers jobs on a cron runner. Every job gets ctx, so
// jobs end when serve shuts down.
func newScheduler(ctx context.Context, jobs []scheduledJob) (*cron.Cron, error) {
	c := cron.New(cron.WithParser(scheduleParser), cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger)))
	for _, job := range jobs {
		job := job
		if job.schedule == "" {
			slog.Info("Scheduled job disabled", "job", job.name)
			continue
		}
		if _, err := c.AddFunc(job.schedule, func() { job.run(ctx) }); err != nil {
			return nil, fmt.Errorf("invalid schedule %q for %s: %w", job.schedule, job.name, err)
		}
		slog.Info("Scheduled job", "job", job.name, "schedule", job.schedule)
	}
	return c, nil
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Retrain the model and check festival alerts on a schedule",
		Long: `Run in the foreground, retraining the model from recorded corrections and
checking for upcoming festivals on the schedules in the serve section of the
config. Stop with Ctrl-C.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			return withApp(ctx, func(a *app) error {
				scheduler, err := newScheduler(ctx, []scheduledJob{
					{
						name:     "retrain",
						schedule: a.cfg.Serve.RetrainSchedule,
						run:      func(context.Context) { a.retrainer.Trigger() },
					},
					{
						name:     "festival-alerts",
						schedule: a.cfg.Serve.AlertSchedule,
						run: func(ctx context.Context) {
							alerts, err := a.festivals.Upcoming(ctx, time.Now(), -1)
							if err != nil {
								common.LogError(err, "Festival alert check failed", common.Fields{"job": "festival-alerts"})
								return
							}
							for _, alert := range alerts {
								slog.Info("Festival coming up", "festival", alert.Name, "date", alert.Date,
									"days_until", alert.DaysUntil, "suggested_saving", alert.SuggestedSaving)
							}
							if len(alerts) > 0 {
								printAlerts(cmd.OutOrStdout(), alerts)
							}
						},
					},
				})
				if err != nil {
					return err
				}

				scheduler.Start()
				fmt.Fprintln(cmd.OutOrStdout(), cli.FormatInfo("finsight is running. Press Ctrl-C to stop."))

				<-ctx.Done()
				<-scheduler.Stop().Done()
				slog.Info("Scheduler stopped")
				return nil
			})
		},
	}
}
