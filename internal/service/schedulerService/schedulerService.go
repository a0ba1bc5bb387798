package schedulerService

import (
	"context"
	"fmt"
	"time"

	"commercial-file-service/internal/model/fileInfo"
	"commercial-file-service/internal/model/notification"
	"commercial-file-service/pkg/clock"
	"commercial-file-service/pkg/logger"

	"go.uber.org/zap"
)

const (
	ExpirySweepName         = "expiry-sweep"
	NotificationCleanupName = "notification-cleanup"

	summarySubject = "File Expiry Check Summary"
	alertSubject   = "File Management System Error"
)

type FileRepository interface {
	ListExpiringBetween(ctx context.Context, from, to time.Time) ([]*fileInfo.File, error)
}

type ExpiryNotifier interface {
	NotifyExpiry(ctx context.Context, file *fileInfo.File, days int) (*notification.Notification, error)
}

type SystemMailer interface {
	SendSystem(ctx context.Context, subject, body string) bool
}

type NotificationCleaner interface {
	Cleanup(ctx context.Context, daysOld int) (string, int64, error)
}

// ExpirySweepTask reminds KARs about files expiring within the lookahead window
// and mails a summary of every run to the ops address.
type ExpirySweepTask struct {
	files     FileRepository
	notifier  ExpiryNotifier
	mail      SystemMailer
	clock     clock.Clock
	lookahead int
}

func NewExpirySweepTask(files FileRepository, notifier ExpiryNotifier, mail SystemMailer, clk clock.Clock, lookaheadDays int) *ExpirySweepTask {
	return &ExpirySweepTask{files: files, notifier: notifier, mail: mail, clock: clk, lookahead: lookaheadDays}
}

func (t *ExpirySweepTask) Name() string {
	return ExpirySweepName
}

func (t *ExpirySweepTask) Run(ctx context.Context) error {
	log := logger.GetLogger(ctx)
	today := t.clock.Today()

	files, err := t.files.ListExpiringBetween(ctx, today, today.AddDate(0, 0, t.lookahead))
	if err != nil {
		t.mail.SendSystem(ctx, alertSubject, "Error occurred during expiring files check: "+err.Error())
		return fmt.Errorf("failed to list expiring files: %w", err)
	}

	failed := 0
	for _, f := range files {
		if err := t.remind(ctx, f); err != nil {
			failed++
			log.Error("expiry reminder failed", zap.String("file_id", f.ID.String()), zap.Error(err))
		}
	}

	t.mail.SendSystem(ctx, summarySubject,
		fmt.Sprintf("File expiry check completed. Found %d files expiring in %d days.", len(files), t.lookahead))

	log.Info("expiry sweep completed",
		zap.Int("found", len(files)), zap.Int("failed", failed), zap.Int("lookahead_days", t.lookahead))
	return nil
}

func (t *ExpirySweepTask) remind(ctx context.Context, f *fileInfo.File) (err error) {
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("panic: %v", p)
		}
	}()
	_, err = t.notifier.NotifyExpiry(ctx, f, t.lookahead)
	return err
}

// CleanupTask soft-deletes notifications older than the retention period.
type CleanupTask struct {
	cleaner       NotificationCleaner
	retentionDays int
}

func NewCleanupTask(cleaner NotificationCleaner, retentionDays int) *CleanupTask {
	return &CleanupTask{cleaner: cleaner, retentionDays: retentionDays}
}

func (t *CleanupTask) Name() string {
	return NotificationCleanupName
}

func (t *CleanupTask) Run(ctx context.Context) error {
	msg, n, err := t.cleaner.Cleanup(ctx, t.retentionDays)
	if err != nil {
		return fmt.Errorf("notification cleanup failed: %w", err)
	}
	logger.GetLogger(ctx).Info(msg, zap.Int64("deactivated", n), zap.Int("retention_days", t.retentionDays))
	return nil
}
