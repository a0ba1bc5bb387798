package referenceService_test

import (
	"context"
	"testing"
	"time"

	"commercial-file-service/internal/model/reference"
	"commercial-file-service/internal/service/referenceService"
	"commercial-file-service/pkg/apperr"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingRepo struct {
	regions    map[int64]*reference.Region
	types      map[int64]*reference.ChannelPartnerType
	regionGets int
	typeGets   int
}

func newRepo() *countingRepo {
	return &countingRepo{
		regions: map[int64]*reference.Region{
			1: {ID: 1, RegionName: "Harare", RegionCode: "HRE", Active: true},
			2: {ID: 2, RegionName: "Old", Active: false},
		},
		types: map[int64]*reference.ChannelPartnerType{
			1: {ID: 1, TypeName: "Dealer", Active: true},
		},
	}
}

func (r *countingRepo) CreateRegion(_ context.Context, region *reference.Region) error {
	region.ID = int64(len(r.regions) + 1)
	r.regions[region.ID] = region
	return nil
}

func (r *countingRepo) GetRegion(_ context.Context, id int64) (*reference.Region, error) {
	r.regionGets++
	return r.regions[id], nil
}

func (r *countingRepo) ListRegions(_ context.Context) ([]*reference.Region, error) {
	out := make([]*reference.Region, 0, len(r.regions))
	for _, v := range r.regions {
		out = append(out, v)
	}
	return out, nil
}

func (r *countingRepo) CreateChannelPartnerType(_ context.Context, cpt *reference.ChannelPartnerType) error {
	cpt.ID = int64(len(r.types) + 1)
	r.types[cpt.ID] = cpt
	return nil
}

func (r *countingRepo) GetChannelPartnerType(_ context.Context, id int64) (*reference.ChannelPartnerType, error) {
	r.typeGets++
	return r.types[id], nil
}

func (r *countingRepo) ListChannelPartnerTypes(_ context.Context) ([]*reference.ChannelPartnerType, error) {
	out := make([]*reference.ChannelPartnerType, 0, len(r.types))
	for _, v := range r.types {
		out = append(out, v)
	}
	return out, nil
}

func TestGetRegion_Cached(t *testing.T) {
	ctx := context.Background()
	repo := newRepo()
	svc := referenceService.New(repo, 16, time.Minute)

	for range 3 {
		r, err := svc.GetRegion(ctx, 1)
		require.NoError(t, err)
		assert.Equal(t, "Harare", r.RegionName)
	}
	assert.Equal(t, 1, repo.regionGets)

	_, err := svc.GetRegion(ctx, 2)
	assert.ErrorIs(t, err, apperr.ErrNotFound)
	_, err = svc.GetRegion(ctx, 42)
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestCreateRegion_InvalidatesCache(t *testing.T) {
	ctx := context.Background()
	repo := newRepo()
	svc := referenceService.New(repo, 16, time.Minute)

	_, err := svc.GetRegion(ctx, 1)
	require.NoError(t, err)

	region := &reference.Region{RegionName: "  Bulawayo ", RegionCode: "BYO"}
	require.NoError(t, svc.CreateRegion(ctx, region))
	assert.Equal(t, "Bulawayo", region.RegionName)
	assert.True(t, region.Active)

	_, err = svc.GetRegion(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, 2, repo.regionGets)

	assert.ErrorIs(t, svc.CreateRegion(ctx, &reference.Region{RegionName: " "}), apperr.ErrValidation)
}

func TestChannelPartnerTypes(t *testing.T) {
	ctx := context.Background()
	repo := newRepo()
	svc := referenceService.New(repo, 16, time.Minute)

	_, err := svc.GetChannelPartnerType(ctx, 1)
	require.NoError(t, err)
	_, err = svc.GetChannelPartnerType(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, 1, repo.typeGets)

	require.NoError(t, svc.CreateChannelPartnerType(ctx, &reference.ChannelPartnerType{TypeName: "Franchise"}))
	list, err := svc.ListChannelPartnerTypes(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 2)

	_, err = svc.GetChannelPartnerType(ctx, 9)
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}
