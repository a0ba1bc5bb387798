package fileRepo

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"commercial-file-service/internal/model/fileInfo"
	"commercial-file-service/pkg/apperr"
	"commercial-file-service/pkg/database/postgres"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const fileColumns = `id, file_name, file_url, file_size, file_type, upload_date, validity_date, expiry_date,
	file_version, description, uploaded_by_id, assigned_kar_id, region_id, channel_partner_type_id,
	lock_version, active`

type FileRepository struct {
	db postgres.DB
}

func New(db postgres.DB) *FileRepository {
	return &FileRepository{db: db}
}

type SearchFilter struct {
	FileName             *string
	RegionID             *int64
	ChannelPartnerTypeID *int64
	AssignedKARID        *uint32
}

func (r *FileRepository) conn(ctx context.Context) postgres.DB {
	return postgres.Conn(ctx, r.db)
}

func (r *FileRepository) Create(ctx context.Context, file *fileInfo.File) error {
	_, err := r.conn(ctx).Exec(ctx,
		`INSERT INTO files (`+fileColumns+`)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)`,
		file.ID, file.FileName, file.FileURL, file.FileSize, file.FileType, file.UploadDate,
		file.ValidityDate, file.ExpiryDate, file.FileVersion, file.Description, file.UploadedByID,
		file.AssignedKARID, file.RegionID, file.ChannelPartnerTypeID, file.LockVersion, file.Active)
	if err != nil {
		return fmt.Errorf("failed to insert file: %w", err)
	}
	return nil
}

// GetByID returns nil, nil when no active file has the id.
func (r *FileRepository) GetByID(ctx context.Context, id uuid.UUID) (*fileInfo.File, error) {
	row := r.conn(ctx).QueryRow(ctx,
		`SELECT `+fileColumns+` FROM files WHERE id = $1 AND active = true`, id)

	file, err := scanFile(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get file: %w", err)
	}
	return file, nil
}

// Update writes every mutable column. The row must still carry file.LockVersion;
// otherwise someone else saved in between and ErrConflict is returned.
func (r *FileRepository) Update(ctx context.Context, file *fileInfo.File) error {
	tag, err := r.conn(ctx).Exec(ctx,
		`UPDATE files SET
			file_name = $2, file_url = $3, file_size = $4, file_type = $5, validity_date = $6,
			expiry_date = $7, file_version = $8, description = $9, assigned_kar_id = $10,
			region_id = $11, channel_partner_type_id = $12, lock_version = lock_version + 1
		 WHERE id = $1 AND lock_version = $13 AND active = true`,
		file.ID, file.FileName, file.FileURL, file.FileSize, file.FileType, file.ValidityDate,
		file.ExpiryDate, file.FileVersion, file.Description, file.AssignedKARID,
		file.RegionID, file.ChannelPartnerTypeID, file.LockVersion)
	if err != nil {
		return fmt.Errorf("failed to update file: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperr.Conflict("file %s was modified concurrently", file.ID)
	}
	file.LockVersion++
	return nil
}

func (r *FileRepository) SoftDelete(ctx context.Context, id uuid.UUID) (bool, error) {
	tag, err := r.conn(ctx).Exec(ctx,
		`UPDATE files SET active = false, lock_version = lock_version + 1 WHERE id = $1 AND active = true`, id)
	if err != nil {
		return false, fmt.Errorf("failed to delete file: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

func (r *FileRepository) ListActive(ctx context.Context) ([]*fileInfo.File, error) {
	return r.list(ctx, `SELECT `+fileColumns+` FROM files WHERE active = true ORDER BY upload_date DESC`)
}

func (r *FileRepository) ListByKAR(ctx context.Context, karID uint32) ([]*fileInfo.File, error) {
	return r.list(ctx,
		`SELECT `+fileColumns+` FROM files WHERE assigned_kar_id = $1 AND active = true ORDER BY upload_date DESC`,
		karID)
}

func (r *FileRepository) ListByRegion(ctx context.Context, regionID int64) ([]*fileInfo.File, error) {
	return r.list(ctx,
		`SELECT `+fileColumns+` FROM files WHERE region_id = $1 AND active = true ORDER BY upload_date DESC`,
		regionID)
}

func (r *FileRepository) ListByChannelPartnerType(ctx context.Context, typeID int64) ([]*fileInfo.File, error) {
	return r.list(ctx,
		`SELECT `+fileColumns+` FROM files WHERE channel_partner_type_id = $1 AND active = true ORDER BY upload_date DESC`,
		typeID)
}

func (r *FileRepository) ListByKAROrUploader(ctx context.Context, userID uint32) ([]*fileInfo.File, error) {
	return r.list(ctx,
		`SELECT `+fileColumns+` FROM files
		 WHERE (assigned_kar_id = $1 OR uploaded_by_id = $1) AND active = true
		 ORDER BY upload_date DESC`,
		userID)
}

// ListExpiringBetween returns active files whose expiry date is in [from, to].
func (r *FileRepository) ListExpiringBetween(ctx context.Context, from, to time.Time) ([]*fileInfo.File, error) {
	return r.list(ctx,
		`SELECT `+fileColumns+` FROM files
		 WHERE expiry_date >= $1 AND expiry_date <= $2 AND active = true
		 ORDER BY expiry_date`,
		from, to)
}

func (r *FileRepository) ListExpired(ctx context.Context, today time.Time) ([]*fileInfo.File, error) {
	return r.list(ctx,
		`SELECT `+fileColumns+` FROM files WHERE expiry_date < $1 AND active = true ORDER BY expiry_date`,
		today)
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// Search matches FileName as a literal substring; % and _ in it are not wildcards.
func (r *FileRepository) Search(ctx context.Context, f SearchFilter) ([]*fileInfo.File, error) {
	var name *string
	if f.FileName != nil {
		escaped := likeEscaper.Replace(*f.FileName)
		name = &escaped
	}
	var karID *int64
	if f.AssignedKARID != nil {
		id := int64(*f.AssignedKARID)
		karID = &id
	}
	return r.list(ctx,
		`SELECT `+fileColumns+` FROM files
		 WHERE ($1::text IS NULL OR file_name ILIKE '%' || $1 || '%' ESCAPE '\')
		   AND ($2::bigint IS NULL OR region_id = $2)
		   AND ($3::bigint IS NULL OR channel_partner_type_id = $3)
		   AND ($4::bigint IS NULL OR assigned_kar_id = $4)
		   AND active = true
		 ORDER BY upload_date DESC`,
		name, f.RegionID, f.ChannelPartnerTypeID, karID)
}

func (r *FileRepository) list(ctx context.Context, query string, args ...any) ([]*fileInfo.File, error) {
	rows, err := r.conn(ctx).Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query files: %w", err)
	}
	defer rows.Close()

	files := make([]*fileInfo.File, 0)
	for rows.Next() {
		file, err := scanFile(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan file: %w", err)
		}
		files = append(files, file)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate files: %w", err)
	}
	return files, nil
}

func scanFile(row pgx.Row) (*fileInfo.File, error) {
	var file fileInfo.File
	err := row.Scan(
		&file.ID, &file.FileName, &file.FileURL, &file.FileSize, &file.FileType, &file.UploadDate,
		&file.ValidityDate, &file.ExpiryDate, &file.FileVersion, &file.Description, &file.UploadedByID,
		&file.AssignedKARID, &file.RegionID, &file.ChannelPartnerTypeID, &file.LockVersion, &file.Active,
	)
	if err != nil {
		return nil, err
	}
	return &file, nil
}
