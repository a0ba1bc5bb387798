package referenceRepo_test

import (
	"context"
	"testing"

	"commercial-file-service/internal/model/reference"
	"commercial-file-service/internal/repository/referenceRepo"

	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReferenceRepository(t *testing.T) {
	ctx := context.Background()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()
	repo := referenceRepo.New(mock)

	t.Run("CreateRegion", func(t *testing.T) {
		region := &reference.Region{RegionName: "Harare", RegionCode: "HRE"}
		mock.ExpectQuery("INSERT INTO region").WithArgs("Harare", "HRE", "").
			WillReturnRows(pgxmock.NewRows([]string{"id"}).AddRow(int64(1)))

		assert.NoError(t, repo.CreateRegion(ctx, region))
		assert.Equal(t, int64(1), region.ID)
		assert.True(t, region.Active)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("GetChannelPartnerType", func(t *testing.T) {
		mock.ExpectQuery("FROM channel_partner_type WHERE id").WithArgs(int64(4)).
			WillReturnRows(pgxmock.NewRows([]string{"id", "type_name", "description", "active"}).
				AddRow(int64(4), "Dealer", "", true))

		cpt, err := repo.GetChannelPartnerType(ctx, 4)
		require.NoError(t, err)
		assert.Equal(t, "Dealer", cpt.TypeName)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("GetRegion missing", func(t *testing.T) {
		mock.ExpectQuery("FROM region WHERE id").WithArgs(int64(9)).WillReturnError(pgx.ErrNoRows)

		region, err := repo.GetRegion(ctx, 9)
		assert.NoError(t, err)
		assert.Nil(t, region)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
