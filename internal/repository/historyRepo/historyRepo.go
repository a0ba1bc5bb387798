package historyRepo

import (
	"context"
	"errors"
	"fmt"

	"commercial-file-service/internal/model/fileInfo"
	"commercial-file-service/pkg/database/postgres"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const historyColumns = `id, file_id, file_version, file_url, file_name, file_size, file_type,
	modified_date, change_description, modified_by_id, active`

type HistoryRepository struct {
	db postgres.DB
}

func New(db postgres.DB) *HistoryRepository {
	return &HistoryRepository{db: db}
}

func (r *HistoryRepository) conn(ctx context.Context) postgres.DB {
	return postgres.Conn(ctx, r.db)
}

func (r *HistoryRepository) Create(ctx context.Context, h *fileInfo.FileHistory) error {
	_, err := r.conn(ctx).Exec(ctx,
		`INSERT INTO file_history (`+historyColumns+`)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		h.ID, h.FileID, h.FileVersion, h.FileURL, h.FileName, h.FileSize, h.FileType,
		h.ModifiedDate, h.ChangeDescription, h.ModifiedByID, h.Active)
	if err != nil {
		return fmt.Errorf("failed to insert file history: %w", err)
	}
	return nil
}

func (r *HistoryRepository) GetByID(ctx context.Context, id uuid.UUID) (*fileInfo.FileHistory, error) {
	row := r.conn(ctx).QueryRow(ctx,
		`SELECT `+historyColumns+` FROM file_history WHERE id = $1 AND active = true`, id)
	h, err := scanHistory(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get file history: %w", err)
	}
	return h, nil
}

// ListByFile returns active entries for the file, newest first.
func (r *HistoryRepository) ListByFile(ctx context.Context, fileID uuid.UUID) ([]*fileInfo.FileHistory, error) {
	return r.ListByFileAndStatus(ctx, fileID, true)
}

func (r *HistoryRepository) ListByFileAndStatus(ctx context.Context, fileID uuid.UUID, active bool) ([]*fileInfo.FileHistory, error) {
	return r.list(ctx,
		`SELECT `+historyColumns+` FROM file_history
		 WHERE file_id = $1 AND active = $2
		 ORDER BY modified_date DESC`,
		fileID, active)
}

func (r *HistoryRepository) ListByModifier(ctx context.Context, userID uint32) ([]*fileInfo.FileHistory, error) {
	return r.list(ctx,
		`SELECT `+historyColumns+` FROM file_history
		 WHERE modified_by_id = $1 AND active = true
		 ORDER BY modified_date DESC`,
		userID)
}

func (r *HistoryRepository) ListAll(ctx context.Context) ([]*fileInfo.FileHistory, error) {
	return r.list(ctx,
		`SELECT `+historyColumns+` FROM file_history WHERE active = true ORDER BY modified_date DESC`)
}

func (r *HistoryRepository) CountActive(ctx context.Context, fileID uuid.UUID) (int64, error) {
	var count int64
	err := r.conn(ctx).QueryRow(ctx,
		`SELECT COUNT(*) FROM file_history WHERE file_id = $1 AND active = true`, fileID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count file history: %w", err)
	}
	return count, nil
}

// Previous is the newest active entry whose version label differs from currentVersion.
func (r *HistoryRepository) Previous(ctx context.Context, fileID uuid.UUID, currentVersion string) (*fileInfo.FileHistory, error) {
	row := r.conn(ctx).QueryRow(ctx,
		`SELECT `+historyColumns+` FROM file_history
		 WHERE file_id = $1 AND file_version <> $2 AND active = true
		 ORDER BY modified_date DESC
		 LIMIT 1`,
		fileID, currentVersion)
	h, err := scanHistory(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get previous version: %w", err)
	}
	return h, nil
}

func (r *HistoryRepository) Latest(ctx context.Context, fileID uuid.UUID) (*fileInfo.FileHistory, error) {
	row := r.conn(ctx).QueryRow(ctx,
		`SELECT `+historyColumns+` FROM file_history
		 WHERE file_id = $1 AND active = true
		 ORDER BY modified_date DESC
		 LIMIT 1`,
		fileID)
	h, err := scanHistory(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get latest history: %w", err)
	}
	return h, nil
}

func (r *HistoryRepository) SoftDelete(ctx context.Context, id uuid.UUID) (bool, error) {
	tag, err := r.conn(ctx).Exec(ctx,
		`UPDATE file_history SET active = false WHERE id = $1 AND active = true`, id)
	if err != nil {
		return false, fmt.Errorf("failed to delete file history: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

func (r *HistoryRepository) SoftDeleteByFile(ctx context.Context, fileID uuid.UUID) (int64, error) {
	tag, err := r.conn(ctx).Exec(ctx,
		`UPDATE file_history SET active = false WHERE file_id = $1 AND active = true`, fileID)
	if err != nil {
		return 0, fmt.Errorf("failed to delete history for file: %w", err)
	}
	return tag.RowsAffected(), nil
}

func (r *HistoryRepository) list(ctx context.Context, query string, args ...any) ([]*fileInfo.FileHistory, error) {
	rows, err := r.conn(ctx).Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query file history: %w", err)
	}
	defer rows.Close()

	entries := make([]*fileInfo.FileHistory, 0)
	for rows.Next() {
		h, err := scanHistory(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan file history: %w", err)
		}
		entries = append(entries, h)
	}
	return entries, rows.Err()
}

func scanHistory(row pgx.Row) (*fileInfo.FileHistory, error) {
	var h fileInfo.FileHistory
	if err := row.Scan(
		&h.ID, &h.FileID, &h.FileVersion, &h.FileURL, &h.FileName, &h.FileSize, &h.FileType,
		&h.ModifiedDate, &h.ChangeDescription, &h.ModifiedByID, &h.Active,
	); err != nil {
		return nil, err
	}
	return &h, nil
}
