package fileService

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"commercial-file-service/internal/model/fileInfo"
	"commercial-file-service/internal/model/reference"
	"commercial-file-service/internal/model/user"
	"commercial-file-service/internal/repository/fileRepo"
	"commercial-file-service/internal/storage"
	"commercial-file-service/pkg/apperr"
	"commercial-file-service/pkg/clock"
	"commercial-file-service/pkg/logger"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const defaultReassignComment = "File reassigned to you. Please review."

type FileRepository interface {
	Create(ctx context.Context, file *fileInfo.File) error
	GetByID(ctx context.Context, id uuid.UUID) (*fileInfo.File, error)
	Update(ctx context.Context, file *fileInfo.File) error
	SoftDelete(ctx context.Context, id uuid.UUID) (bool, error)
	ListActive(ctx context.Context) ([]*fileInfo.File, error)
	ListByKAR(ctx context.Context, karID uint32) ([]*fileInfo.File, error)
	ListByRegion(ctx context.Context, regionID int64) ([]*fileInfo.File, error)
	ListByChannelPartnerType(ctx context.Context, typeID int64) ([]*fileInfo.File, error)
	ListByKAROrUploader(ctx context.Context, userID uint32) ([]*fileInfo.File, error)
	ListExpiringBetween(ctx context.Context, from, to time.Time) ([]*fileInfo.File, error)
	ListExpired(ctx context.Context, today time.Time) ([]*fileInfo.File, error)
	Search(ctx context.Context, f fileRepo.SearchFilter) ([]*fileInfo.File, error)
}

type UserRepository interface {
	GetByID(ctx context.Context, id uint32) (*user.User, error)
}

type ReferenceLookup interface {
	GetRegion(ctx context.Context, id int64) (*reference.Region, error)
	GetChannelPartnerType(ctx context.Context, id int64) (*reference.ChannelPartnerType, error)
}

type HistoryRecorder interface {
	RecordBestEffort(ctx context.Context, file *fileInfo.File, actorID uint32, description string) *fileInfo.FileHistory
	DeleteAllForFile(ctx context.Context, fileID uuid.UUID) (int64, error)
}

type Notifier interface {
	NotifyAssignment(ctx context.Context, file *fileInfo.File, actor *user.User, comment string) error
	DeleteAllForFile(ctx context.Context, fileID uuid.UUID) (int64, error)
}

type Transactor interface {
	WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

// Content is an uploaded document body.
type Content struct {
	Name        string
	ContentType string
	Size        int64
	Reader      io.Reader
}

type UploadRequest struct {
	FileName             string
	Description          string
	Comment              string
	ValidityDate         *time.Time
	ExpiryDate           *time.Time
	AssignedKARID        uint32
	RegionID             int64
	ChannelPartnerTypeID int64
}

// UpdateRequest changes only the fields that are set.
type UpdateRequest struct {
	FileName             *string
	Description          *string
	Comment              *string
	ValidityDate         *time.Time
	ExpiryDate           *time.Time
	AssignedKARID        *uint32
	RegionID             *int64
	ChannelPartnerTypeID *int64
}

// FileView is a file plus its state as of today.
type FileView struct {
	*fileInfo.File
	Expired bool `json:"expired"`
	Valid   bool `json:"valid"`
}

type Deps struct {
	Files      FileRepository
	Users      UserRepository
	References ReferenceLookup
	History    HistoryRecorder
	Notifier   Notifier
	Storage    storage.Storage
	Tx         Transactor
	Clock      clock.Clock
}

type FileService struct {
	files    FileRepository
	users    UserRepository
	refs     ReferenceLookup
	history  HistoryRecorder
	notifier Notifier
	storage  storage.Storage
	tx       Transactor
	clock    clock.Clock
	maxSize  int64
}

func New(d Deps, maxUploadBytes int64) *FileService {
	return &FileService{
		files:    d.Files,
		users:    d.Users,
		refs:     d.References,
		history:  d.History,
		notifier: d.Notifier,
		storage:  d.Storage,
		tx:       d.Tx,
		clock:    d.Clock,
		maxSize:  maxUploadBytes,
	}
}

func (s *FileService) view(f *fileInfo.File) *FileView {
	today := s.clock.Today()
	return &FileView{File: f, Expired: f.IsExpired(today), Valid: f.IsValid(today)}
}

func (s *FileService) views(files []*fileInfo.File) []*FileView {
	out := make([]*FileView, 0, len(files))
	for _, f := range files {
		out = append(out, s.view(f))
	}
	return out
}

func (s *FileService) user(ctx context.Context, id uint32, what string) (*user.User, error) {
	u, err := s.users.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load %s: %w", what, err)
	}
	if u == nil {
		return nil, apperr.NotFound("%s not found with id: %d", what, id)
	}
	return u, nil
}

func (s *FileService) Upload(ctx context.Context, actorID uint32, req UploadRequest, content *Content) (*FileView, error) {
	if err := s.validateContent(content); err != nil {
		return nil, err
	}
	if strings.TrimSpace(req.Comment) == "" {
		return nil, apperr.Validation("comment is required")
	}
	if req.ExpiryDate == nil {
		return nil, apperr.Validation("expiry date is required")
	}
	if req.AssignedKARID == 0 || req.RegionID == 0 || req.ChannelPartnerTypeID == 0 {
		return nil, apperr.Validation("assigned KAR, region and channel partner type are required")
	}
	if req.ValidityDate != nil && clock.DateOf(*req.ValidityDate).After(clock.DateOf(*req.ExpiryDate)) {
		return nil, apperr.Validation("validity date must not be after expiry date")
	}

	actor, err := s.user(ctx, actorID, "uploading user")
	if err != nil {
		return nil, err
	}
	if _, err := s.user(ctx, req.AssignedKARID, "assigned KAR user"); err != nil {
		return nil, err
	}
	if _, err := s.refs.GetRegion(ctx, req.RegionID); err != nil {
		return nil, err
	}
	if _, err := s.refs.GetChannelPartnerType(ctx, req.ChannelPartnerTypeID); err != nil {
		return nil, err
	}

	name := strings.TrimSpace(req.FileName)
	if name == "" {
		name = content.Name
	}
	if name == "" {
		name = "unnamed_file"
	}

	var validity *time.Time
	if req.ValidityDate != nil {
		v := clock.DateOf(*req.ValidityDate)
		validity = &v
	}

	file := &fileInfo.File{
		ID:                   uuid.New(),
		FileName:             name,
		FileSize:             content.Size,
		FileType:             content.ContentType,
		UploadDate:           s.clock.Now(),
		ValidityDate:         validity,
		ExpiryDate:           clock.DateOf(*req.ExpiryDate),
		FileVersion:          fileInfo.InitialVersion,
		Description:          req.Description,
		UploadedByID:         actor.ID,
		AssignedKARID:        req.AssignedKARID,
		RegionID:             req.RegionID,
		ChannelPartnerTypeID: req.ChannelPartnerTypeID,
		Active:               true,
	}
	file.FileURL = storage.ObjectKey(file.ID, file.FileVersion, content.Name)

	if err := s.storage.Upload(ctx, file.FileURL, content.Reader, content.Size, content.ContentType); err != nil {
		return nil, fmt.Errorf("failed to store file: %w", err)
	}
	if err := s.files.Create(ctx, file); err != nil {
		s.discard(ctx, file.FileURL)
		return nil, fmt.Errorf("failed to save file: %w", err)
	}

	if err := s.notifier.NotifyAssignment(ctx, file, actor, req.Comment); err != nil {
		logger.GetLogger(ctx).Warn("assignment notification failed",
			zap.String("file_id", file.ID.String()), zap.Error(err))
	}

	logger.GetLogger(ctx).Info("file uploaded",
		zap.String("file_id", file.ID.String()), zap.Uint32("kar_id", file.AssignedKARID))
	return s.view(file), nil
}

// discard removes an object whose database row was never written or was rolled back.
func (s *FileService) discard(ctx context.Context, key string) {
	if err := s.storage.Delete(ctx, key); err != nil {
		logger.GetLogger(ctx).Error("failed to remove orphaned object", zap.String("key", key), zap.Error(err))
	}
}

func (s *FileService) load(ctx context.Context, id uuid.UUID) (*fileInfo.File, error) {
	f, err := s.files.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if f == nil {
		return nil, apperr.NotFound("file not found with id: %s", id)
	}
	return f, nil
}

// Update snapshots the file into history, applies req and optionally new content,
// and saves everything in one transaction. A changed KAR is notified after commit.
func (s *FileService) Update(ctx context.Context, id uuid.UUID, actorID uint32, req UpdateRequest, content *Content) (*FileView, error) {
	if content != nil {
		if err := s.validateContent(content); err != nil {
			return nil, err
		}
	}
	actor, err := s.user(ctx, actorID, "updating user")
	if err != nil {
		return nil, err
	}

	var (
		updated     *fileInfo.File
		karChanged  bool
		uploadedKey string
	)
	err = s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		file, err := s.load(ctx, id)
		if err != nil {
			return err
		}
		karChanged = req.AssignedKARID != nil && *req.AssignedKARID != file.AssignedKARID

		s.history.RecordBestEffort(ctx, file, actorID, "File updated")

		if err := s.apply(ctx, file, req); err != nil {
			return err
		}

		if content != nil {
			version := fileInfo.IncrementVersion(file.FileVersion)
			key := storage.ObjectKey(file.ID, version, content.Name)
			if err := s.storage.Upload(ctx, key, content.Reader, content.Size, content.ContentType); err != nil {
				return fmt.Errorf("failed to store file: %w", err)
			}
			uploadedKey = key
			file.FileURL = key
			file.FileSize = content.Size
			file.FileType = content.ContentType
			file.FileVersion = version
		}

		if err := s.files.Update(ctx, file); err != nil {
			return err
		}
		updated = file
		return nil
	})
	if err != nil {
		if uploadedKey != "" {
			s.discard(ctx, uploadedKey)
		}
		return nil, err
	}

	if karChanged {
		comment := defaultReassignComment
		if req.Comment != nil {
			comment = *req.Comment
		}
		if err := s.notifier.NotifyAssignment(ctx, updated, actor, comment); err != nil {
			logger.GetLogger(ctx).Warn("reassignment notification failed",
				zap.String("file_id", updated.ID.String()), zap.Error(err))
		}
	}
	return s.view(updated), nil
}

func (s *FileService) apply(ctx context.Context, file *fileInfo.File, req UpdateRequest) error {
	if req.FileName != nil {
		name := strings.TrimSpace(*req.FileName)
		if name == "" {
			return apperr.Validation("file name must not be blank")
		}
		file.FileName = name
	}
	if req.Description != nil {
		file.Description = *req.Description
	}
	if req.ExpiryDate != nil {
		file.ExpiryDate = clock.DateOf(*req.ExpiryDate)
	}
	if req.ValidityDate != nil {
		v := clock.DateOf(*req.ValidityDate)
		file.ValidityDate = &v
	}
	if file.ValidityDate != nil && file.ValidityDate.After(file.ExpiryDate) {
		return apperr.Validation("validity date must not be after expiry date")
	}
	if req.AssignedKARID != nil {
		if _, err := s.user(ctx, *req.AssignedKARID, "assigned KAR user"); err != nil {
			return err
		}
		file.AssignedKARID = *req.AssignedKARID
	}
	if req.RegionID != nil {
		if _, err := s.refs.GetRegion(ctx, *req.RegionID); err != nil {
			return err
		}
		file.RegionID = *req.RegionID
	}
	if req.ChannelPartnerTypeID != nil {
		if _, err := s.refs.GetChannelPartnerType(ctx, *req.ChannelPartnerTypeID); err != nil {
			return err
		}
		file.ChannelPartnerTypeID = *req.ChannelPartnerTypeID
	}
	return nil
}

// UpdateVersion sets an explicit version label, optionally with new content.
func (s *FileService) UpdateVersion(ctx context.Context, id uuid.UUID, actorID uint32, version string, content *Content) (*FileView, error) {
	if err := validateVersion(version); err != nil {
		return nil, err
	}
	if content != nil {
		if err := s.validateContent(content); err != nil {
			return nil, err
		}
	}
	if _, err := s.user(ctx, actorID, "updating user"); err != nil {
		return nil, err
	}

	var (
		updated     *fileInfo.File
		uploadedKey string
	)
	err := s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		file, err := s.load(ctx, id)
		if err != nil {
			return err
		}
		s.history.RecordBestEffort(ctx, file, actorID, "Version updated to "+version)

		if content != nil {
			key := storage.ObjectKey(file.ID, version, content.Name)
			if err := s.storage.Upload(ctx, key, content.Reader, content.Size, content.ContentType); err != nil {
				return fmt.Errorf("failed to store file: %w", err)
			}
			uploadedKey = key
			file.FileURL = key
			file.FileSize = content.Size
			file.FileType = content.ContentType
		}
		file.FileVersion = version

		if err := s.files.Update(ctx, file); err != nil {
			return err
		}
		updated = file
		return nil
	})
	if err != nil {
		if uploadedKey != "" {
			s.discard(ctx, uploadedKey)
		}
		return nil, err
	}
	return s.view(updated), nil
}

// Delete soft-deletes the file together with its history and notifications.
func (s *FileService) Delete(ctx context.Context, id uuid.UUID) error {
	return s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		ok, err := s.files.SoftDelete(ctx, id)
		if err != nil {
			return err
		}
		if !ok {
			return apperr.NotFound("file not found with id: %s", id)
		}
		if _, err := s.history.DeleteAllForFile(ctx, id); err != nil {
			return err
		}
		if _, err := s.notifier.DeleteAllForFile(ctx, id); err != nil {
			return err
		}
		return nil
	})
}

func (s *FileService) Get(ctx context.Context, id uuid.UUID) (*FileView, error) {
	f, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.view(f), nil
}

func (s *FileService) list(files []*fileInfo.File, err error) ([]*FileView, error) {
	if err != nil {
		return nil, err
	}
	return s.views(files), nil
}

func (s *FileService) List(ctx context.Context) ([]*FileView, error) {
	return s.list(s.files.ListActive(ctx))
}

func (s *FileService) ByKAR(ctx context.Context, karID uint32) ([]*FileView, error) {
	return s.list(s.files.ListByKAR(ctx, karID))
}

func (s *FileService) ByRegion(ctx context.Context, regionID int64) ([]*FileView, error) {
	return s.list(s.files.ListByRegion(ctx, regionID))
}

func (s *FileService) ByChannelPartnerType(ctx context.Context, typeID int64) ([]*FileView, error) {
	return s.list(s.files.ListByChannelPartnerType(ctx, typeID))
}

// Expiring lists active files expiring between today and today+days inclusive.
func (s *FileService) Expiring(ctx context.Context, days int) ([]*FileView, error) {
	if days < 0 {
		return nil, apperr.Validation("days must not be negative")
	}
	today := s.clock.Today()
	return s.list(s.files.ListExpiringBetween(ctx, today, today.AddDate(0, 0, days)))
}

func (s *FileService) Expired(ctx context.Context) ([]*FileView, error) {
	return s.list(s.files.ListExpired(ctx, s.clock.Today()))
}

func (s *FileService) Search(ctx context.Context, filter fileRepo.SearchFilter) ([]*FileView, error) {
	if filter.FileName != nil && strings.TrimSpace(*filter.FileName) == "" {
		filter.FileName = nil
	}
	return s.list(s.files.Search(ctx, filter))
}

func (s *FileService) MyFiles(ctx context.Context, userID uint32) ([]*FileView, error) {
	return s.list(s.files.ListByKAR(ctx, userID))
}

func (s *FileService) UserFiles(ctx context.Context, userID uint32) ([]*FileView, error) {
	return s.list(s.files.ListByKAROrUploader(ctx, userID))
}

// Download opens the current content of the file. The caller closes the reader.
func (s *FileService) Download(ctx context.Context, id uuid.UUID) (io.ReadCloser, *fileInfo.File, error) {
	f, err := s.load(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	rc, err := s.storage.Download(ctx, f.FileURL)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read file content: %w", err)
	}
	return rc, f, nil
}
