package batchimpl

import (
	"context"
	"fmt"
	"time"

	"github.com/go-co-op/gocron/v2"
)

// ScheduleBatchRuns registers the recurring batch job. Without a cron
// expression configured it does nothing; the HTTP trigger and a one-shot
// invocation still work.
func (b *Impl) ScheduleBatchRuns(ctx context.Context) error {
	if b.Config.Batch.Cron == "" {
		b.Logger.Info("No batch cron configured, skipping scheduler")
		return nil
	}

	scheduler, err := gocron.NewScheduler()
	if err != nil {
		return fmt.Errorf("failed to create batch scheduler: %w", err)
	}

	_, err = scheduler.NewJob(
		gocron.CronJob(b.Config.Batch.Cron, false),
		gocron.NewTask(func() {
			if ctx.Err() != nil {
				b.Logger.Info("Context cancelled, stopping scheduled batch run")
				return
			}

			b.Logger.Info("Starting scheduled batch run", "cron", b.Config.Batch.Cron)
			if _, err := b.RunBatch(ctx); err != nil {
				b.Logger.Error("Scheduled batch run failed", "error", err)
				b.Notifier.SendMessage("Scheduled batch run failed: " + err.Error())
			}
		}),
	)
	if err != nil {
		return fmt.Errorf("failed to schedule batch runs: %w", err)
	}

	scheduler.Start()

	go func() {
		<-ctx.Done()
		b.Logger.Info("Stopping batch scheduler")
		if err := scheduler.Shutdown(); err != nil {
			b.Logger.Error("Failed to shut down batch scheduler", "error", err)
		}
	}()

	return nil
}

// ScheduleMediaCleanup sets up a daily job that prunes old rows from the
// media_items table, keeping the metadata store from growing unbounded.
func (b *Impl) ScheduleMediaCleanup(ctx context.Context) error {
	scheduler, err := gocron.NewScheduler()
	if err != nil {
		return fmt.Errorf("failed to create cleanup scheduler: %w", err)
	}

	// At 3:00 AM every day.
	_, err = scheduler.NewJob(
		gocron.DailyJob(
			1,
			gocron.NewAtTimes(gocron.NewAtTime(3, 0, 0)),
		),
		gocron.NewTask(func() {
			if ctx.Err() != nil {
				b.Logger.Info("Context cancelled, stopping media cleanup job")
				return
			}

			cleanupCtx, cancel := context.WithTimeout(ctx, 5*time.Minute)
			defer cancel()
			b.runCleanup(cleanupCtx)
		}),
	)
	if err != nil {
		return fmt.Errorf("failed to schedule media cleanup: %w", err)
	}

	scheduler.Start()

	go func() {
		<-ctx.Done()
		b.Logger.Info("Stopping media cleanup scheduler")
		if err := scheduler.Shutdown(); err != nil {
			b.Logger.Error("Failed to shut down media cleanup scheduler", "error", err)
		}
	}()

	return nil
}

func (b *Impl) runCleanup(ctx context.Context) {
	retention := b.Config.Processor.MediaRetention
	deleted, err := b.MediaRepo.CleanupOldRecords(ctx, retention)
	if err != nil {
		b.Logger.Error("Failed to clean up old media records", "error", err)
		return
	}
	b.Logger.Info("Media cleanup finished", "rows_deleted", deleted, "retention", retention)
}
