package notificationService_test

import (
	"context"
	"time"

	"commercial-file-service/internal/model/notification"
	"commercial-file-service/internal/model/reference"
	"commercial-file-service/internal/model/user"
	"commercial-file-service/pkg/apperr"

	"github.com/google/uuid"
)

type fakeRepo struct {
	rows []*notification.Notification
}

func (r *fakeRepo) Create(_ context.Context, n *notification.Notification) error {
	r.rows = append(r.rows, n)
	return nil
}

func (r *fakeRepo) GetByID(_ context.Context, id uuid.UUID) (*notification.Notification, error) {
	for _, n := range r.rows {
		if n.ID == id && n.Active {
			return n, nil
		}
	}
	return nil, nil
}

func (r *fakeRepo) where(keep func(*notification.Notification) bool) []*notification.Notification {
	out := make([]*notification.Notification, 0)
	for _, n := range r.rows {
		if keep(n) {
			out = append(out, n)
		}
	}
	return out
}

func (r *fakeRepo) ListByFile(_ context.Context, fileID uuid.UUID) ([]*notification.Notification, error) {
	return r.where(func(n *notification.Notification) bool { return n.FileID == fileID && n.Active }), nil
}

func (r *fakeRepo) ListByUser(_ context.Context, userID uint32) ([]*notification.Notification, error) {
	return r.where(func(n *notification.Notification) bool { return n.TargetUserID == userID }), nil
}

func (r *fakeRepo) ListActiveByUser(_ context.Context, userID uint32) ([]*notification.Notification, error) {
	return r.where(func(n *notification.Notification) bool { return n.TargetUserID == userID && n.Active }), nil
}

func (r *fakeRepo) ListByStatus(_ context.Context, st notification.Status) ([]*notification.Notification, error) {
	return r.where(func(n *notification.Notification) bool { return n.Status == st && n.Active }), nil
}

func (r *fakeRepo) ListExpiryRemindersByDays(_ context.Context, days int) ([]*notification.Notification, error) {
	return r.where(func(n *notification.Notification) bool {
		return n.Type == notification.TypeExpiryReminder && n.DaysUntilExpiry != nil && *n.DaysUntilExpiry == days && n.Active
	}), nil
}

func (r *fakeRepo) ListScheduledBetween(_ context.Context, from, to time.Time) ([]*notification.Notification, error) {
	return r.where(func(n *notification.Notification) bool {
		return !n.ScheduledTime.Before(from) && !n.ScheduledTime.After(to) && n.Active
	}), nil
}

func (r *fakeRepo) ListAll(_ context.Context) ([]*notification.Notification, error) {
	return r.where(func(n *notification.Notification) bool { return n.Active }), nil
}

func (r *fakeRepo) CountByUserAndStatus(_ context.Context, userID uint32, st notification.Status) (int64, error) {
	return int64(len(r.where(func(n *notification.Notification) bool {
		return n.TargetUserID == userID && n.Status == st
	}))), nil
}

func (r *fakeRepo) SoftDelete(_ context.Context, id uuid.UUID) (bool, error) {
	for _, n := range r.rows {
		if n.ID == id && n.Active {
			n.Active = false
			return true, nil
		}
	}
	return false, nil
}

func (r *fakeRepo) SoftDeleteByFile(_ context.Context, fileID uuid.UUID) (int64, error) {
	var count int64
	for _, n := range r.rows {
		if n.FileID == fileID && n.Active {
			n.Active = false
			count++
		}
	}
	return count, nil
}

func (r *fakeRepo) DeactivateScheduledBefore(_ context.Context, cutoff time.Time) (int64, error) {
	var count int64
	for _, n := range r.rows {
		if n.Active && n.ScheduledTime.Before(cutoff) {
			n.Active = false
			count++
		}
	}
	return count, nil
}

type fakeUsers map[uint32]*user.User

func (f fakeUsers) GetByID(_ context.Context, id uint32) (*user.User, error) {
	return f[id], nil
}

type fakeRefs struct{}

func (fakeRefs) GetRegion(_ context.Context, id int64) (*reference.Region, error) {
	if id != 1 {
		return nil, apperr.NotFound("region not found with id: %d", id)
	}
	return &reference.Region{ID: 1, RegionName: "Harare", RegionCode: "HRE", Active: true}, nil
}

func (fakeRefs) GetChannelPartnerType(_ context.Context, id int64) (*reference.ChannelPartnerType, error) {
	if id != 1 {
		return nil, apperr.NotFound("channel partner type not found with id: %d", id)
	}
	return &reference.ChannelPartnerType{ID: 1, TypeName: "Dealer", Active: true}, nil
}

type email struct {
	to, subject, body string
}

// fakeSender fails for addresses in fail and panics for addresses in panics.
type fakeSender struct {
	sent   []email
	fail   map[string]bool
	panics map[string]bool
}

func (f *fakeSender) Send(_ context.Context, to, subject, body string) bool {
	if f.panics[to] {
		panic("smtp client exploded")
	}
	f.sent = append(f.sent, email{to: to, subject: subject, body: body})
	return !f.fail[to]
}
