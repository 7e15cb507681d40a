// File: internal/jobs/notification_retention.go
package jobs

import (
	"context"
	"fmt"
	"time"

	"companyos_backend/internal/config"
	"companyos_backend/internal/notification"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// NotificationRetentionJob periodically hard-deletes notifications that have
// been soft-deleted for longer than the configured retention window. Clients
// never see soft-deleted rows, so purging them is invisible to the API.
type NotificationRetentionJob struct {
	notificationService notification.Service
	logger              *zap.Logger
	cfg                 *config.Config
	cronScheduler       *cron.Cron
}

// NewNotificationRetentionJob creates a new NotificationRetentionJob.
func NewNotificationRetentionJob(
	notificationService notification.Service,
	logger *zap.Logger,
	cfg *config.Config,
) *NotificationRetentionJob {
	scheduler := cron.New(cron.WithLogger(NewCronLogger(logger.Named("cron"))))

	return &NotificationRetentionJob{
		notificationService: notificationService,
		logger:              logger.Named("NotificationRetentionJob"),
		cfg:                 cfg,
		cronScheduler:       scheduler,
	}
}

// SetupAndStart schedules and starts the cron job. An empty schedule disables
// the job without failing startup.
func (j *NotificationRetentionJob) SetupAndStart() error {
	jobSpec := j.cfg.NotificationRetentionJobSchedule // e.g. "@daily", "0 2 * * *"
	if jobSpec == "" {
		j.logger.Warn("Notification retention job schedule not defined (NOTIFICATION_RETENTION_JOB_SCHEDULE). Job will not run.")
		return nil
	}

	jobID, err := j.cronScheduler.AddFunc(jobSpec, j.runJob)
	if err != nil {
		j.logger.Error("Failed to schedule notification retention job", zap.String("spec", jobSpec), zap.Error(err))
		return err
	}

	j.logger.Info("Notification retention job scheduled",
		zap.String("spec", jobSpec),
		zap.Int("retention_days", j.cfg.NotificationRetentionDays),
		zap.Any("jobID", jobID))
	j.cronScheduler.Start()
	return nil
}

// runJob is the actual work performed by the cron job.
func (j *NotificationRetentionJob) runJob() {
	j.logger.Info("Starting notification retention job run...")
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	retention := time.Duration(j.cfg.NotificationRetentionDays) * 24 * time.Hour
	purgedCount, err := j.notificationService.PurgeSoftDeleted(ctx, retention)
	if err != nil {
		j.logger.Error("Notification retention job run failed", zap.Error(err))
	} else {
		j.logger.Info("Notification retention job run completed", zap.Int64("notifications_purged", purgedCount))
	}
}

// Stop gracefully stops the cron scheduler.
func (j *NotificationRetentionJob) Stop() {
	if j.cronScheduler != nil {
		j.logger.Info("Stopping notification retention job scheduler...")
		stopCtx := j.cronScheduler.Stop()
		select {
		case <-stopCtx.Done():
			j.logger.Info("Notification retention job scheduler stopped gracefully.")
		case <-time.After(10 * time.Second):
			j.logger.Warn("Notification retention job scheduler stop timed out.")
		}
	}
}

// --- Cron Logger Adapter ---

// cronLogger adapts zap.Logger to cron.Logger interface.
type cronLogger struct {
	zl *zap.Logger
}

// NewCronLogger creates a new cronLogger.
func NewCronLogger(zl *zap.Logger) cron.Logger {
	return &cronLogger{zl: zl}
}

// Info logs routine messages from cron.
func (cl *cronLogger) Info(msg string, keysAndValues ...interface{}) {
	cl.zl.Info(msg, cl.parseKeysAndValues(keysAndValues...)...)
}

// Error logs error messages from cron.
func (cl *cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	fields := cl.parseKeysAndValues(keysAndValues...)
	fields = append(fields, zap.Error(err))
	cl.zl.Error(msg, fields...)
}

func (cl *cronLogger) parseKeysAndValues(keysAndValues ...interface{}) []zap.Field {
	var fields []zap.Field
	for i := 0; i < len(keysAndValues); i += 2 {
		if i+1 < len(keysAndValues) {
			fields = append(fields, zap.Any(fmt.Sprintf("%v", keysAndValues[i]), keysAndValues[i+1]))
		} else {
			fields = append(fields, zap.Any(fmt.Sprintf("%v", keysAndValues[i]), "MISSING_VALUE"))
		}
	}
	return fields
}
