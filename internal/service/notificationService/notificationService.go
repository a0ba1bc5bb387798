package notificationService

import (
	"context"
	"fmt"
	"time"

	"commercial-file-service/internal/mailer"
	"commercial-file-service/internal/model/fileInfo"
	"commercial-file-service/internal/model/notification"
	"commercial-file-service/internal/model/reference"
	"commercial-file-service/internal/model/user"
	"commercial-file-service/pkg/apperr"
	"commercial-file-service/pkg/clock"
	"commercial-file-service/pkg/logger"
	"commercial-file-service/pkg/metrics"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	assignmentTitle   = "New File Assigned to You"
	assignmentSubject = "New File Assigned - Action Required"
	expiryTitle       = "File Expiry Reminder"

	dateLayout     = "2006-01-02"
	dateTimeLayout = "2006-01-02 15:04"
)

type NotificationRepository interface {
	Create(ctx context.Context, n *notification.Notification) error
	GetByID(ctx context.Context, id uuid.UUID) (*notification.Notification, error)
	ListByFile(ctx context.Context, fileID uuid.UUID) ([]*notification.Notification, error)
	ListByUser(ctx context.Context, userID uint32) ([]*notification.Notification, error)
	ListActiveByUser(ctx context.Context, userID uint32) ([]*notification.Notification, error)
	ListByStatus(ctx context.Context, status notification.Status) ([]*notification.Notification, error)
	ListExpiryRemindersByDays(ctx context.Context, days int) ([]*notification.Notification, error)
	ListScheduledBetween(ctx context.Context, from, to time.Time) ([]*notification.Notification, error)
	ListAll(ctx context.Context) ([]*notification.Notification, error)
	CountByUserAndStatus(ctx context.Context, userID uint32, status notification.Status) (int64, error)
	SoftDelete(ctx context.Context, id uuid.UUID) (bool, error)
	SoftDeleteByFile(ctx context.Context, fileID uuid.UUID) (int64, error)
	DeactivateScheduledBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

type UserRepository interface {
	GetByID(ctx context.Context, id uint32) (*user.User, error)
}

type ReferenceLookup interface {
	GetRegion(ctx context.Context, id int64) (*reference.Region, error)
	GetChannelPartnerType(ctx context.Context, id int64) (*reference.ChannelPartnerType, error)
}

type NotificationService struct {
	repo   NotificationRepository
	users  UserRepository
	refs   ReferenceLookup
	sender mailer.Sender
	clock  clock.Clock
}

func New(repo NotificationRepository, users UserRepository, refs ReferenceLookup, sender mailer.Sender, clk clock.Clock) *NotificationService {
	return &NotificationService{repo: repo, users: users, refs: refs, sender: sender, clock: clk}
}

type CreateRequest struct {
	File            *fileInfo.File
	Target          *user.User
	Type            notification.Type
	Title           string
	Message         string
	DaysUntilExpiry *int
}

// Create builds a notification, tries to email it once and stores the outcome.
// The stored record is SENT or FAILED, never PENDING.
func (s *NotificationService) Create(ctx context.Context, req CreateRequest) (*notification.Notification, error) {
	n := &notification.Notification{
		ID:              uuid.New(),
		FileID:          req.File.ID,
		TargetUserID:    req.Target.ID,
		Type:            req.Type,
		Title:           req.Title,
		Message:         req.Message,
		ScheduledTime:   s.clock.Now(),
		Status:          notification.StatusPending,
		DaysUntilExpiry: req.DaysUntilExpiry,
		Active:          true,
	}

	if s.safeSend(ctx, req.Target.Email, req.Title, req.Message) {
		n.MarkSent(s.clock.Now())
	} else {
		n.MarkFailed()
	}
	metrics.NotificationsTotal.WithLabelValues(string(n.Type), string(n.Status)).Inc()

	if err := s.repo.Create(ctx, n); err != nil {
		return nil, fmt.Errorf("failed to save notification: %w", err)
	}
	return n, nil
}

// safeSend turns a panicking sender into a failed delivery.
func (s *NotificationService) safeSend(ctx context.Context, to, subject, body string) (ok bool) {
	defer func() {
		if r := recover(); r != nil {
			logger.GetLogger(ctx).Error("email sender panicked",
				zap.String("to", to), zap.Any("panic", r))
			ok = false
		}
	}()
	return s.sender.Send(ctx, to, subject, body)
}

// NotifyAssignment records an ASSIGNMENT notification for the file's KAR and, separately,
// sends the KAR a direct email. Either delivery may fail without affecting the other.
func (s *NotificationService) NotifyAssignment(ctx context.Context, file *fileInfo.File, actor *user.User, comment string) error {
	kar, err := s.users.GetByID(ctx, file.AssignedKARID)
	if err != nil {
		return fmt.Errorf("failed to load assigned KAR: %w", err)
	}
	if kar == nil {
		return apperr.NotFound("KAR user not found with id: %d", file.AssignedKARID)
	}
	region, err := s.refs.GetRegion(ctx, file.RegionID)
	if err != nil {
		return err
	}
	cpt, err := s.refs.GetChannelPartnerType(ctx, file.ChannelPartnerTypeID)
	if err != nil {
		return err
	}

	description := file.Description
	if description == "" {
		description = "N/A"
	}

	message := fmt.Sprintf("A new file has been assigned to you by %s %s.\n\n"+
		"File Details:\n"+
		"• File Name: %s\n"+
		"• Description: %s\n"+
		"• Region: %s\n"+
		"• Channel Partner Type: %s\n"+
		"• Upload Date: %s\n"+
		"• Expiry Date: %s\n\n"+
		"Instructions from Uploader:\n%s\n\n"+
		"Please review the file and ensure it meets all requirements.",
		actor.FirstName, actor.LastName,
		file.FileName, description, region.RegionName, cpt.TypeName,
		file.UploadDate.Format(dateTimeLayout), file.ExpiryDate.Format(dateLayout),
		comment)

	_, recordErr := s.Create(ctx, CreateRequest{
		File:    file,
		Target:  kar,
		Type:    notification.TypeAssignment,
		Title:   assignmentTitle,
		Message: message,
	})
	if recordErr != nil {
		logger.GetLogger(ctx).Error("failed to record assignment notification",
			zap.String("file_id", file.ID.String()), zap.Error(recordErr))
	}

	body := fmt.Sprintf("Dear KAR,\n\n"+
		"A new file has been assigned to you in the File Management System.\n\n"+
		"File Details:\n"+
		"• File Name: %s\n"+
		"• Uploaded By: %s\n"+
		"• Description: %s\n"+
		"• Region: %s\n"+
		"• Channel Partner Type: %s\n"+
		"• Expiry Date: %s\n\n"+
		"Comment from Uploader:\n%s\n\n"+
		"Please review the file and ensure all details are correct. "+
		"You are responsible for managing this file until its expiry date.\n\n"+
		"Best regards,\nFile Management System",
		file.FileName, actor.FullName(), description, region.RegionName, cpt.TypeName,
		file.ExpiryDate.Format(dateLayout), comment)

	if !s.safeSend(ctx, kar.Email, assignmentSubject, body) {
		logger.GetLogger(ctx).Warn("direct assignment email not delivered",
			zap.String("file_id", file.ID.String()), zap.String("to", kar.Email))
	}

	return recordErr
}

func (s *NotificationService) NotifyExpiry(ctx context.Context, file *fileInfo.File, days int) (*notification.Notification, error) {
	kar, err := s.users.GetByID(ctx, file.AssignedKARID)
	if err != nil {
		return nil, fmt.Errorf("failed to load assigned KAR: %w", err)
	}
	if kar == nil {
		return nil, apperr.NotFound("KAR user not found with id: %d", file.AssignedKARID)
	}

	message := fmt.Sprintf("The file '%s' will expire in %d days. Please review and take necessary action.",
		file.FileName, days)
	return s.Create(ctx, CreateRequest{
		File:            file,
		Target:          kar,
		Type:            notification.TypeExpiryReminder,
		Title:           expiryTitle,
		Message:         message,
		DaysUntilExpiry: &days,
	})
}

func (s *NotificationService) GetByID(ctx context.Context, id uuid.UUID) (*notification.Notification, error) {
	n, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if n == nil {
		return nil, apperr.NotFound("notification not found with id: %s", id)
	}
	return n, nil
}

func (s *NotificationService) ByFile(ctx context.Context, fileID uuid.UUID) ([]*notification.Notification, error) {
	return s.repo.ListByFile(ctx, fileID)
}

func (s *NotificationService) ByUser(ctx context.Context, userID uint32) ([]*notification.Notification, error) {
	return s.repo.ListByUser(ctx, userID)
}

// ActiveByUser lists the user's live notifications that were actually delivered.
func (s *NotificationService) ActiveByUser(ctx context.Context, userID uint32) ([]*notification.Notification, error) {
	all, err := s.repo.ListActiveByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	sent := make([]*notification.Notification, 0, len(all))
	for _, n := range all {
		if n.Status == notification.StatusSent {
			sent = append(sent, n)
		}
	}
	return sent, nil
}

func (s *NotificationService) ByStatus(ctx context.Context, status string) ([]*notification.Notification, error) {
	st, err := notification.ParseStatus(status)
	if err != nil {
		return nil, apperr.Validation("invalid status: %s. Valid statuses: SENT, FAILED", status)
	}
	return s.repo.ListByStatus(ctx, st)
}

func (s *NotificationService) ExpiryRemindersByDays(ctx context.Context, days int) ([]*notification.Notification, error) {
	return s.repo.ListExpiryRemindersByDays(ctx, days)
}

func (s *NotificationService) ScheduledBetween(ctx context.Context, from, to time.Time) ([]*notification.Notification, error) {
	if to.Before(from) {
		return nil, apperr.Validation("end time must not be before start time")
	}
	return s.repo.ListScheduledBetween(ctx, from, to)
}

func (s *NotificationService) All(ctx context.Context) ([]*notification.Notification, error) {
	return s.repo.ListAll(ctx)
}

func (s *NotificationService) UserStats(ctx context.Context, userID uint32) (*notification.UserStats, error) {
	sent, err := s.repo.CountByUserAndStatus(ctx, userID, notification.StatusSent)
	if err != nil {
		return nil, err
	}
	failed, err := s.repo.CountByUserAndStatus(ctx, userID, notification.StatusFailed)
	if err != nil {
		return nil, err
	}
	return &notification.UserStats{UserID: userID, Sent: sent, Failed: failed}, nil
}

func (s *NotificationService) Delete(ctx context.Context, id uuid.UUID) error {
	ok, err := s.repo.SoftDelete(ctx, id)
	if err != nil {
		return err
	}
	if !ok {
		return apperr.NotFound("notification not found with id: %s", id)
	}
	return nil
}

func (s *NotificationService) DeleteAllForFile(ctx context.Context, fileID uuid.UUID) (int64, error) {
	return s.repo.SoftDeleteByFile(ctx, fileID)
}

// Cleanup soft-deletes notifications scheduled more than daysOld days ago.
func (s *NotificationService) Cleanup(ctx context.Context, daysOld int) (string, int64, error) {
	if daysOld <= 0 {
		return "", 0, apperr.Validation("daysOld must be positive")
	}
	cutoff := s.clock.Now().AddDate(0, 0, -daysOld)
	n, err := s.repo.DeactivateScheduledBefore(ctx, cutoff)
	if err != nil {
		return "", 0, err
	}
	if n == 0 {
		return "No old notifications found to cleanup", 0, nil
	}
	return fmt.Sprintf("Cleaned up %d old notifications", n), n, nil
}
