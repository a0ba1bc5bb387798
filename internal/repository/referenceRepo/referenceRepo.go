package referenceRepo

import (
	"context"
	"errors"
	"fmt"

	"commercial-file-service/internal/model/reference"
	"commercial-file-service/pkg/database/postgres"

	"github.com/jackc/pgx/v5"
)

type ReferenceRepository struct {
	db postgres.DB
}

func New(db postgres.DB) *ReferenceRepository {
	return &ReferenceRepository{db: db}
}

func (r *ReferenceRepository) conn(ctx context.Context) postgres.DB {
	return postgres.Conn(ctx, r.db)
}

func (r *ReferenceRepository) CreateRegion(ctx context.Context, region *reference.Region) error {
	err := r.conn(ctx).QueryRow(ctx,
		`INSERT INTO region (region_name, region_code, description, active)
		 VALUES ($1, $2, $3, true) RETURNING id`,
		region.RegionName, region.RegionCode, region.Description).Scan(&region.ID)
	if err != nil {
		return fmt.Errorf("failed to insert region: %w", err)
	}
	region.Active = true
	return nil
}

func (r *ReferenceRepository) GetRegion(ctx context.Context, id int64) (*reference.Region, error) {
	var region reference.Region
	err := r.conn(ctx).QueryRow(ctx,
		`SELECT id, region_name, region_code, description, active FROM region WHERE id = $1 AND active = true`, id).
		Scan(&region.ID, &region.RegionName, &region.RegionCode, &region.Description, &region.Active)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get region: %w", err)
	}
	return &region, nil
}

func (r *ReferenceRepository) ListRegions(ctx context.Context) ([]*reference.Region, error) {
	rows, err := r.conn(ctx).Query(ctx,
		`SELECT id, region_name, region_code, description, active FROM region WHERE active = true ORDER BY region_name`)
	if err != nil {
		return nil, fmt.Errorf("failed to list regions: %w", err)
	}
	defer rows.Close()

	regions := make([]*reference.Region, 0)
	for rows.Next() {
		var region reference.Region
		if err := rows.Scan(&region.ID, &region.RegionName, &region.RegionCode, &region.Description, &region.Active); err != nil {
			return nil, err
		}
		regions = append(regions, &region)
	}
	return regions, rows.Err()
}

func (r *ReferenceRepository) CreateChannelPartnerType(ctx context.Context, cpt *reference.ChannelPartnerType) error {
	err := r.conn(ctx).QueryRow(ctx,
		`INSERT INTO channel_partner_type (type_name, description, active) VALUES ($1, $2, true) RETURNING id`,
		cpt.TypeName, cpt.Description).Scan(&cpt.ID)
	if err != nil {
		return fmt.Errorf("failed to insert channel partner type: %w", err)
	}
	cpt.Active = true
	return nil
}

func (r *ReferenceRepository) GetChannelPartnerType(ctx context.Context, id int64) (*reference.ChannelPartnerType, error) {
	var cpt reference.ChannelPartnerType
	err := r.conn(ctx).QueryRow(ctx,
		`SELECT id, type_name, description, active FROM channel_partner_type WHERE id = $1 AND active = true`, id).
		Scan(&cpt.ID, &cpt.TypeName, &cpt.Description, &cpt.Active)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get channel partner type: %w", err)
	}
	return &cpt, nil
}

func (r *ReferenceRepository) ListChannelPartnerTypes(ctx context.Context) ([]*reference.ChannelPartnerType, error) {
	rows, err := r.conn(ctx).Query(ctx,
		`SELECT id, type_name, description, active FROM channel_partner_type WHERE active = true ORDER BY type_name`)
	if err != nil {
		return nil, fmt.Errorf("failed to list channel partner types: %w", err)
	}
	defer rows.Close()

	types := make([]*reference.ChannelPartnerType, 0)
	for rows.Next() {
		var cpt reference.ChannelPartnerType
		if err := rows.Scan(&cpt.ID, &cpt.TypeName, &cpt.Description, &cpt.Active); err != nil {
			return nil, err
		}
		types = append(types, &cpt)
	}
	return types, rows.Err()
}
