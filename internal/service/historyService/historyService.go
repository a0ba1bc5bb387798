package historyService

import (
	"context"
	"fmt"

	"commercial-file-service/internal/model/fileInfo"
	"commercial-file-service/pkg/apperr"
	"commercial-file-service/pkg/clock"
	"commercial-file-service/pkg/logger"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type HistoryRepository interface {
	Create(ctx context.Context, h *fileInfo.FileHistory) error
	GetByID(ctx context.Context, id uuid.UUID) (*fileInfo.FileHistory, error)
	ListByFile(ctx context.Context, fileID uuid.UUID) ([]*fileInfo.FileHistory, error)
	ListByFileAndStatus(ctx context.Context, fileID uuid.UUID, active bool) ([]*fileInfo.FileHistory, error)
	ListByModifier(ctx context.Context, userID uint32) ([]*fileInfo.FileHistory, error)
	ListAll(ctx context.Context) ([]*fileInfo.FileHistory, error)
	CountActive(ctx context.Context, fileID uuid.UUID) (int64, error)
	Previous(ctx context.Context, fileID uuid.UUID, currentVersion string) (*fileInfo.FileHistory, error)
	Latest(ctx context.Context, fileID uuid.UUID) (*fileInfo.FileHistory, error)
	SoftDelete(ctx context.Context, id uuid.UUID) (bool, error)
	SoftDeleteByFile(ctx context.Context, fileID uuid.UUID) (int64, error)
}

type Transactor interface {
	WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

type HistoryService struct {
	repo  HistoryRepository
	tx    Transactor
	clock clock.Clock
}

func New(repo HistoryRepository, tx Transactor, clk clock.Clock) *HistoryService {
	return &HistoryService{repo: repo, tx: tx, clock: clk}
}

// Record snapshots file as it is now. Call it before applying changes.
func (s *HistoryService) Record(ctx context.Context, file *fileInfo.File, actorID uint32, description string) (*fileInfo.FileHistory, error) {
	h := fileInfo.Snapshot(file, actorID, description, s.clock.Now())
	if err := s.repo.Create(ctx, h); err != nil {
		return nil, fmt.Errorf("failed to record history for file %s: %w", file.ID, err)
	}
	return h, nil
}

// RecordBestEffort runs Record in a nested transaction and swallows its failure,
// so the caller's transaction survives a broken history append.
func (s *HistoryService) RecordBestEffort(ctx context.Context, file *fileInfo.File, actorID uint32, description string) *fileInfo.FileHistory {
	var h *fileInfo.FileHistory
	err := s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		var err error
		h, err = s.Record(ctx, file, actorID, description)
		return err
	})
	if err != nil {
		logger.GetLogger(ctx).Warn("history append skipped",
			zap.String("file_id", file.ID.String()),
			zap.String("description", description),
			zap.Error(err))
		return nil
	}
	return h
}

func (s *HistoryService) GetByID(ctx context.Context, id uuid.UUID) (*fileInfo.FileHistory, error) {
	h, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if h == nil {
		return nil, apperr.NotFound("file history not found with id: %s", id)
	}
	return h, nil
}

func (s *HistoryService) ByFile(ctx context.Context, fileID uuid.UUID) ([]*fileInfo.FileHistory, error) {
	return s.repo.ListByFile(ctx, fileID)
}

func (s *HistoryService) ByFileAndStatus(ctx context.Context, fileID uuid.UUID, active bool) ([]*fileInfo.FileHistory, error) {
	return s.repo.ListByFileAndStatus(ctx, fileID, active)
}

func (s *HistoryService) ByModifier(ctx context.Context, userID uint32) ([]*fileInfo.FileHistory, error) {
	return s.repo.ListByModifier(ctx, userID)
}

func (s *HistoryService) All(ctx context.Context) ([]*fileInfo.FileHistory, error) {
	return s.repo.ListAll(ctx)
}

func (s *HistoryService) CountActive(ctx context.Context, fileID uuid.UUID) (int64, error) {
	return s.repo.CountActive(ctx, fileID)
}

// Previous returns the newest active entry whose version differs from currentVersion.
func (s *HistoryService) Previous(ctx context.Context, fileID uuid.UUID, currentVersion string) (*fileInfo.FileHistory, error) {
	h, err := s.repo.Previous(ctx, fileID, currentVersion)
	if err != nil {
		return nil, err
	}
	if h == nil {
		return nil, apperr.NotFound("no previous version for file %s", fileID)
	}
	return h, nil
}

func (s *HistoryService) Latest(ctx context.Context, fileID uuid.UUID) (*fileInfo.FileHistory, error) {
	h, err := s.repo.Latest(ctx, fileID)
	if err != nil {
		return nil, err
	}
	if h == nil {
		return nil, apperr.NotFound("no history for file %s", fileID)
	}
	return h, nil
}

func (s *HistoryService) Delete(ctx context.Context, id uuid.UUID) error {
	ok, err := s.repo.SoftDelete(ctx, id)
	if err != nil {
		return err
	}
	if !ok {
		return apperr.NotFound("file history not found with id: %s", id)
	}
	return nil
}

func (s *HistoryService) DeleteAllForFile(ctx context.Context, fileID uuid.UUID) (int64, error) {
	return s.repo.SoftDeleteByFile(ctx, fileID)
}
