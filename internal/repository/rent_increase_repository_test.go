package repository

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/taichu-system/rental-management/internal/model"
	"github.com/taichu-system/rental-management/internal/testutil"
	"gorm.io/gorm"
)

func TestRentIncreaseRepository_OnePerYear(t *testing.T) {
	db := testutil.NewDB(t)
	tenant := testutil.Tenant(t, db, "tenant-a")
	lease := testutil.Lease(t, db, tenant)
	repo := NewRentIncreaseRepository(db)
	ctx := testutil.Context(tenant)

	first := &model.RentIncrease{
		LeaseID:            lease.ID,
		OldRent:            1000,
		NewRent:            1030,
		IncreasePercentage: 3,
		EffectiveDate:      testutil.Date(2025, time.February, 1),
		AppliedBy:          "user-tenant-a",
	}
	require.NoError(t, repo.Create(ctx, first))
	assert.Equal(t, 2025, first.EffectiveYear)

	exists, err := repo.ExistsForYear(ctx, lease.ID, 2025)
	require.NoError(t, err)
	assert.True(t, exists)

	second := &model.RentIncrease{
		LeaseID:            lease.ID,
		OldRent:            1030,
		NewRent:            1100,
		IncreasePercentage: 6.8,
		EffectiveDate:      testutil.Date(2025, time.November, 1),
		AppliedBy:          "user-tenant-a",
	}
	assert.ErrorIs(t, repo.Create(ctx, second), gorm.ErrDuplicatedKey)

	increases, err := repo.ListByLease(ctx, lease.ID)
	require.NoError(t, err)
	assert.Len(t, increases, 1)
}
