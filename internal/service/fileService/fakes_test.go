package fileService_test

import (
	"bytes"
	"context"
	"errors"
	"io"
	"time"

	"commercial-file-service/internal/model/fileInfo"
	"commercial-file-service/internal/model/reference"
	"commercial-file-service/internal/model/user"
	"commercial-file-service/internal/repository/fileRepo"
	"commercial-file-service/pkg/apperr"

	"github.com/google/uuid"
)

type fakeFiles struct {
	byID      map[uuid.UUID]*fileInfo.File
	createErr error
	updateErr error

	lastExpiringFrom, lastExpiringTo time.Time
}

func newFakeFiles() *fakeFiles {
	return &fakeFiles{byID: map[uuid.UUID]*fileInfo.File{}}
}

func (r *fakeFiles) Create(_ context.Context, f *fileInfo.File) error {
	if r.createErr != nil {
		return r.createErr
	}
	cp := *f
	r.byID[f.ID] = &cp
	return nil
}

func (r *fakeFiles) GetByID(_ context.Context, id uuid.UUID) (*fileInfo.File, error) {
	f, ok := r.byID[id]
	if !ok || !f.Active {
		return nil, nil
	}
	cp := *f
	return &cp, nil
}

func (r *fakeFiles) Update(_ context.Context, f *fileInfo.File) error {
	if r.updateErr != nil {
		return r.updateErr
	}
	stored, ok := r.byID[f.ID]
	if !ok || stored.LockVersion != f.LockVersion {
		return apperr.Conflict("file %s was modified concurrently", f.ID)
	}
	f.LockVersion++
	cp := *f
	r.byID[f.ID] = &cp
	return nil
}

func (r *fakeFiles) SoftDelete(_ context.Context, id uuid.UUID) (bool, error) {
	f, ok := r.byID[id]
	if !ok || !f.Active {
		return false, nil
	}
	f.Active = false
	return true, nil
}

func (r *fakeFiles) where(keep func(*fileInfo.File) bool) []*fileInfo.File {
	out := make([]*fileInfo.File, 0)
	for _, f := range r.byID {
		if f.Active && keep(f) {
			cp := *f
			out = append(out, &cp)
		}
	}
	return out
}

func (r *fakeFiles) ListActive(context.Context) ([]*fileInfo.File, error) {
	return r.where(func(*fileInfo.File) bool { return true }), nil
}

func (r *fakeFiles) ListByKAR(_ context.Context, karID uint32) ([]*fileInfo.File, error) {
	return r.where(func(f *fileInfo.File) bool { return f.AssignedKARID == karID }), nil
}

func (r *fakeFiles) ListByRegion(_ context.Context, regionID int64) ([]*fileInfo.File, error) {
	return r.where(func(f *fileInfo.File) bool { return f.RegionID == regionID }), nil
}

func (r *fakeFiles) ListByChannelPartnerType(_ context.Context, typeID int64) ([]*fileInfo.File, error) {
	return r.where(func(f *fileInfo.File) bool { return f.ChannelPartnerTypeID == typeID }), nil
}

func (r *fakeFiles) ListByKAROrUploader(_ context.Context, userID uint32) ([]*fileInfo.File, error) {
	return r.where(func(f *fileInfo.File) bool { return f.AssignedKARID == userID || f.UploadedByID == userID }), nil
}

func (r *fakeFiles) ListExpiringBetween(_ context.Context, from, to time.Time) ([]*fileInfo.File, error) {
	r.lastExpiringFrom, r.lastExpiringTo = from, to
	return r.where(func(f *fileInfo.File) bool { return !f.ExpiryDate.Before(from) && !f.ExpiryDate.After(to) }), nil
}

func (r *fakeFiles) ListExpired(_ context.Context, today time.Time) ([]*fileInfo.File, error) {
	return r.where(func(f *fileInfo.File) bool { return f.ExpiryDate.Before(today) }), nil
}

func (r *fakeFiles) Search(_ context.Context, s fileRepo.SearchFilter) ([]*fileInfo.File, error) {
	return r.where(func(f *fileInfo.File) bool {
		return s.RegionID == nil || f.RegionID == *s.RegionID
	}), nil
}

type fakeUsers map[uint32]*user.User

func (f fakeUsers) GetByID(_ context.Context, id uint32) (*user.User, error) {
	return f[id], nil
}

type fakeRefs struct{}

func (fakeRefs) GetRegion(_ context.Context, id int64) (*reference.Region, error) {
	if id != 1 && id != 2 {
		return nil, apperr.NotFound("region not found with id: %d", id)
	}
	return &reference.Region{ID: id, RegionName: "Region", Active: true}, nil
}

func (fakeRefs) GetChannelPartnerType(_ context.Context, id int64) (*reference.ChannelPartnerType, error) {
	if id != 1 {
		return nil, apperr.NotFound("channel partner type not found with id: %d", id)
	}
	return &reference.ChannelPartnerType{ID: id, TypeName: "Dealer", Active: true}, nil
}

type fakeHistory struct {
	snapshots    []*fileInfo.FileHistory
	deletedFiles []uuid.UUID
}

func (h *fakeHistory) RecordBestEffort(_ context.Context, f *fileInfo.File, actorID uint32, description string) *fileInfo.FileHistory {
	snap := fileInfo.Snapshot(f, actorID, description, time.Now())
	h.snapshots = append(h.snapshots, snap)
	return snap
}

func (h *fakeHistory) DeleteAllForFile(_ context.Context, fileID uuid.UUID) (int64, error) {
	h.deletedFiles = append(h.deletedFiles, fileID)
	return 1, nil
}

type assignment struct {
	fileID  uuid.UUID
	karID   uint32
	actorID uint32
	comment string
}

type fakeNotifier struct {
	assignments  []assignment
	deletedFiles []uuid.UUID
	err          error
}

func (n *fakeNotifier) NotifyAssignment(_ context.Context, f *fileInfo.File, actor *user.User, comment string) error {
	n.assignments = append(n.assignments, assignment{fileID: f.ID, karID: f.AssignedKARID, actorID: actor.ID, comment: comment})
	return n.err
}

func (n *fakeNotifier) DeleteAllForFile(_ context.Context, fileID uuid.UUID) (int64, error) {
	n.deletedFiles = append(n.deletedFiles, fileID)
	return 0, nil
}

type fakeStorage struct {
	objects   map[string][]byte
	uploadErr error
}

func newFakeStorage() *fakeStorage {
	return &fakeStorage{objects: map[string][]byte{}}
}

func (s *fakeStorage) Upload(_ context.Context, key string, data io.Reader, _ int64, _ string) error {
	if s.uploadErr != nil {
		return s.uploadErr
	}
	b, err := io.ReadAll(data)
	if err != nil {
		return err
	}
	s.objects[key] = b
	return nil
}

func (s *fakeStorage) Download(_ context.Context, key string) (io.ReadCloser, error) {
	b, ok := s.objects[key]
	if !ok {
		return nil, errors.New("no such key")
	}
	return io.NopCloser(bytes.NewReader(b)), nil
}

func (s *fakeStorage) Delete(_ context.Context, key string) error {
	delete(s.objects, key)
	return nil
}

type passTx struct{}

func (passTx) WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}
