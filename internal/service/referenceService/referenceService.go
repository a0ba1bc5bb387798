package referenceService

import (
	"context"
	"strings"
	"time"

	"commercial-file-service/internal/model/reference"
	"commercial-file-service/pkg/apperr"
	"commercial-file-service/pkg/metrics"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

type ReferenceRepository interface {
	CreateRegion(ctx context.Context, region *reference.Region) error
	GetRegion(ctx context.Context, id int64) (*reference.Region, error)
	ListRegions(ctx context.Context) ([]*reference.Region, error)
	CreateChannelPartnerType(ctx context.Context, cpt *reference.ChannelPartnerType) error
	GetChannelPartnerType(ctx context.Context, id int64) (*reference.ChannelPartnerType, error)
	ListChannelPartnerTypes(ctx context.Context) ([]*reference.ChannelPartnerType, error)
}

// ReferenceService serves regions and channel partner types. Lookups by id go
// through a per-process LRU with TTL; creates purge it.
type ReferenceService struct {
	repo    ReferenceRepository
	regions *expirable.LRU[int64, *reference.Region]
	types   *expirable.LRU[int64, *reference.ChannelPartnerType]
}

func New(repo ReferenceRepository, size int, ttl time.Duration) *ReferenceService {
	return &ReferenceService{
		repo:    repo,
		regions: expirable.NewLRU[int64, *reference.Region](size, nil, ttl),
		types:   expirable.NewLRU[int64, *reference.ChannelPartnerType](size, nil, ttl),
	}
}

func (s *ReferenceService) GetRegion(ctx context.Context, id int64) (*reference.Region, error) {
	if r, ok := s.regions.Get(id); ok {
		metrics.CacheHitsTotal.WithLabelValues("region").Inc()
		return r, nil
	}
	metrics.CacheMissesTotal.WithLabelValues("region").Inc()

	r, err := s.repo.GetRegion(ctx, id)
	if err != nil {
		return nil, err
	}
	if r == nil || !r.Active {
		return nil, apperr.NotFound("region not found with id: %d", id)
	}
	s.regions.Add(id, r)
	return r, nil
}

func (s *ReferenceService) ListRegions(ctx context.Context) ([]*reference.Region, error) {
	return s.repo.ListRegions(ctx)
}

func (s *ReferenceService) CreateRegion(ctx context.Context, region *reference.Region) error {
	region.RegionName = strings.TrimSpace(region.RegionName)
	if region.RegionName == "" {
		return apperr.Validation("region name is required")
	}
	region.Active = true
	if err := s.repo.CreateRegion(ctx, region); err != nil {
		return err
	}
	s.regions.Purge()
	return nil
}

func (s *ReferenceService) GetChannelPartnerType(ctx context.Context, id int64) (*reference.ChannelPartnerType, error) {
	if t, ok := s.types.Get(id); ok {
		metrics.CacheHitsTotal.WithLabelValues("channel_partner_type").Inc()
		return t, nil
	}
	metrics.CacheMissesTotal.WithLabelValues("channel_partner_type").Inc()

	t, err := s.repo.GetChannelPartnerType(ctx, id)
	if err != nil {
		return nil, err
	}
	if t == nil || !t.Active {
		return nil, apperr.NotFound("channel partner type not found with id: %d", id)
	}
	s.types.Add(id, t)
	return t, nil
}

func (s *ReferenceService) ListChannelPartnerTypes(ctx context.Context) ([]*reference.ChannelPartnerType, error) {
	return s.repo.ListChannelPartnerTypes(ctx)
}

func (s *ReferenceService) CreateChannelPartnerType(ctx context.Context, cpt *reference.ChannelPartnerType) error {
	cpt.TypeName = strings.TrimSpace(cpt.TypeName)
	if cpt.TypeName == "" {
		return apperr.Validation("channel partner type name is required")
	}
	cpt.Active = true
	if err := s.repo.CreateChannelPartnerType(ctx, cpt); err != nil {
		return err
	}
	s.types.Purge()
	return nil
}
