package notificationRepo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"commercial-file-service/internal/model/notification"
	"commercial-file-service/pkg/database/postgres"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const notificationColumns = `id, file_id, target_user_id, notification_type, title, message,
	scheduled_time, sent_time, status, days_until_expiry, active`

type NotificationRepository struct {
	db postgres.DB
}

func New(db postgres.DB) *NotificationRepository {
	return &NotificationRepository{db: db}
}

func (r *NotificationRepository) conn(ctx context.Context) postgres.DB {
	return postgres.Conn(ctx, r.db)
}

func (r *NotificationRepository) Create(ctx context.Context, n *notification.Notification) error {
	_, err := r.conn(ctx).Exec(ctx,
		`INSERT INTO file_notifications (`+notificationColumns+`)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		n.ID, n.FileID, n.TargetUserID, string(n.Type), n.Title, n.Message,
		n.ScheduledTime, n.SentTime, string(n.Status), n.DaysUntilExpiry, n.Active)
	if err != nil {
		return fmt.Errorf("failed to insert notification: %w", err)
	}
	return nil
}

func (r *NotificationRepository) GetByID(ctx context.Context, id uuid.UUID) (*notification.Notification, error) {
	row := r.conn(ctx).QueryRow(ctx,
		`SELECT `+notificationColumns+` FROM file_notifications WHERE id = $1 AND active = true`, id)
	n, err := scanNotification(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get notification: %w", err)
	}
	return n, nil
}

func (r *NotificationRepository) ListByFile(ctx context.Context, fileID uuid.UUID) ([]*notification.Notification, error) {
	return r.list(ctx,
		`SELECT `+notificationColumns+` FROM file_notifications
		 WHERE file_id = $1 AND active = true ORDER BY scheduled_time DESC`, fileID)
}

// ListByUser includes soft-deleted rows; ListActiveByUser does not.
func (r *NotificationRepository) ListByUser(ctx context.Context, userID uint32) ([]*notification.Notification, error) {
	return r.list(ctx,
		`SELECT `+notificationColumns+` FROM file_notifications
		 WHERE target_user_id = $1 ORDER BY scheduled_time DESC`, userID)
}

func (r *NotificationRepository) ListActiveByUser(ctx context.Context, userID uint32) ([]*notification.Notification, error) {
	return r.list(ctx,
		`SELECT `+notificationColumns+` FROM file_notifications
		 WHERE target_user_id = $1 AND active = true ORDER BY scheduled_time DESC`, userID)
}

func (r *NotificationRepository) ListByStatus(ctx context.Context, status notification.Status) ([]*notification.Notification, error) {
	return r.list(ctx,
		`SELECT `+notificationColumns+` FROM file_notifications
		 WHERE status = $1 AND active = true ORDER BY scheduled_time DESC`, string(status))
}

func (r *NotificationRepository) ListExpiryRemindersByDays(ctx context.Context, days int) ([]*notification.Notification, error) {
	return r.list(ctx,
		`SELECT `+notificationColumns+` FROM file_notifications
		 WHERE notification_type = $1 AND days_until_expiry = $2 AND active = true
		 ORDER BY scheduled_time DESC`,
		string(notification.TypeExpiryReminder), days)
}

func (r *NotificationRepository) ListScheduledBetween(ctx context.Context, from, to time.Time) ([]*notification.Notification, error) {
	return r.list(ctx,
		`SELECT `+notificationColumns+` FROM file_notifications
		 WHERE scheduled_time BETWEEN $1 AND $2 AND active = true ORDER BY scheduled_time DESC`,
		from, to)
}

func (r *NotificationRepository) ListAll(ctx context.Context) ([]*notification.Notification, error) {
	return r.list(ctx,
		`SELECT `+notificationColumns+` FROM file_notifications WHERE active = true ORDER BY scheduled_time DESC`)
}

func (r *NotificationRepository) CountByUserAndStatus(ctx context.Context, userID uint32, status notification.Status) (int64, error) {
	var count int64
	err := r.conn(ctx).QueryRow(ctx,
		`SELECT COUNT(*) FROM file_notifications WHERE target_user_id = $1 AND status = $2`,
		userID, string(status)).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count notifications: %w", err)
	}
	return count, nil
}

func (r *NotificationRepository) SoftDelete(ctx context.Context, id uuid.UUID) (bool, error) {
	tag, err := r.conn(ctx).Exec(ctx,
		`UPDATE file_notifications SET active = false WHERE id = $1 AND active = true`, id)
	if err != nil {
		return false, fmt.Errorf("failed to delete notification: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

func (r *NotificationRepository) SoftDeleteByFile(ctx context.Context, fileID uuid.UUID) (int64, error) {
	tag, err := r.conn(ctx).Exec(ctx,
		`UPDATE file_notifications SET active = false WHERE file_id = $1 AND active = true`, fileID)
	if err != nil {
		return 0, fmt.Errorf("failed to delete notifications for file: %w", err)
	}
	return tag.RowsAffected(), nil
}

// DeactivateScheduledBefore soft-deletes active notifications scheduled strictly before cutoff.
func (r *NotificationRepository) DeactivateScheduledBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	tag, err := r.conn(ctx).Exec(ctx,
		`UPDATE file_notifications SET active = false WHERE scheduled_time < $1 AND active = true`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to clean up notifications: %w", err)
	}
	return tag.RowsAffected(), nil
}

func (r *NotificationRepository) list(ctx context.Context, query string, args ...any) ([]*notification.Notification, error) {
	rows, err := r.conn(ctx).Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query notifications: %w", err)
	}
	defer rows.Close()

	result := make([]*notification.Notification, 0)
	for rows.Next() {
		n, err := scanNotification(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan notification: %w", err)
		}
		result = append(result, n)
	}
	return result, rows.Err()
}

func scanNotification(row pgx.Row) (*notification.Notification, error) {
	var (
		n               notification.Notification
		typ, status     string
		daysUntilExpiry *int32
	)
	if err := row.Scan(
		&n.ID, &n.FileID, &n.TargetUserID, &typ, &n.Title, &n.Message,
		&n.ScheduledTime, &n.SentTime, &status, &daysUntilExpiry, &n.Active,
	); err != nil {
		return nil, err
	}
	n.Type = notification.Type(typ)
	n.Status = notification.Status(status)
	if daysUntilExpiry != nil {
		d := int(*daysUntilExpiry)
		n.DaysUntilExpiry = &d
	}
	return &n, nil
}
