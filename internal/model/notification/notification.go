package notification

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

type Type string

const (
	TypeExpiryReminder Type = "EXPIRY_REMINDER"
	TypeExpired        Type = "EXPIRED"
	TypeNewVersion     Type = "NEW_VERSION"
	TypeAssignment     Type = "ASSIGNMENT"
)

type Status string

const (
	StatusPending Status = "PENDING"
	StatusSent    Status = "SENT"
	StatusFailed  Status = "FAILED"
)

func ParseStatus(s string) (Status, error) {
	switch st := Status(s); st {
	case StatusPending, StatusSent, StatusFailed:
		return st, nil
	}
	return "", fmt.Errorf("unknown notification status %q", s)
}

type Notification struct {
	ID              uuid.UUID  `json:"id"`
	FileID          uuid.UUID  `json:"file_id"`
	TargetUserID    uint32     `json:"target_user_id"`
	Type            Type       `json:"notification_type"`
	Title           string     `json:"title"`
	Message         string     `json:"message"`
	ScheduledTime   time.Time  `json:"scheduled_time"`
	SentTime        *time.Time `json:"sent_time,omitempty"`
	Status          Status     `json:"status"`
	DaysUntilExpiry *int       `json:"days_until_expiry,omitempty"`
	Active          bool       `json:"active"`
}

func (n *Notification) MarkSent(at time.Time) {
	n.Status = StatusSent
	n.SentTime = &at
}

func (n *Notification) MarkFailed() {
	n.Status = StatusFailed
	n.SentTime = nil
}

type UserStats struct {
	UserID uint32 `json:"user_id"`
	Sent   int64  `json:"sent"`
	Failed int64  `json:"failed"`
}
