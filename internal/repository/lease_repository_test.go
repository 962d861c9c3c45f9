package repository

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/taichu-system/rental-management/internal/model"
	"github.com/taichu-system/rental-management/internal/tenancy"
	"github.com/taichu-system/rental-management/internal/testutil"
	"gorm.io/gorm"
)

func TestLeaseRepository_TenantIsolation(t *testing.T) {
	db := testutil.NewDB(t)
	tenantA := testutil.Tenant(t, db, "tenant-a")
	tenantB := testutil.Tenant(t, db, "tenant-b")
	leaseA := testutil.Lease(t, db, tenantA)
	leaseB := testutil.Lease(t, db, tenantB)

	repo := NewLeaseRepository(db)
	ctxA := testutil.Context(tenantA)

	got, err := repo.GetByID(ctxA, leaseA.ID)
	require.NoError(t, err)
	assert.Equal(t, leaseA.ID, got.ID)

	_, err = repo.GetByID(ctxA, leaseB.ID)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)

	leases, err := repo.ListByStatus(ctxA, model.LeaseStatusActive)
	require.NoError(t, err)
	require.Len(t, leases, 1)
	assert.Equal(t, tenantA.ID, leases[0].TenantID)
}

func TestLeaseRepository_RequiresContext(t *testing.T) {
	db := testutil.NewDB(t)
	tenant := testutil.Tenant(t, db, "tenant-a")
	lease := testutil.Lease(t, db, tenant)

	repo := NewLeaseRepository(db)

	_, err := repo.GetByID(context.Background(), lease.ID)
	assert.ErrorIs(t, err, tenancy.ErrContextMissing)

	err = repo.Create(context.Background(), &model.Lease{UnitID: uuid.New()})
	assert.ErrorIs(t, err, tenancy.ErrContextMissing)
}

func TestLeaseRepository_BypassSeesAllTenants(t *testing.T) {
	db := testutil.NewDB(t)
	testutil.Lease(t, db, testutil.Tenant(t, db, "tenant-a"))
	testutil.Lease(t, db, testutil.Tenant(t, db, "tenant-b"))

	leases, err := NewLeaseRepository(db).ListByStatus(tenancy.WithBypass(context.Background()), model.LeaseStatusActive)
	require.NoError(t, err)
	assert.Len(t, leases, 2)
}

func TestLeaseRepository_CreateStampsContextTenant(t *testing.T) {
	db := testutil.NewDB(t)
	tenantA := testutil.Tenant(t, db, "tenant-a")
	tenantB := testutil.Tenant(t, db, "tenant-b")
	unit := testutil.Unit(t, db, tenantA)

	lease := &model.Lease{
		TenantID:    tenantB.ID,
		UnitID:      unit.ID,
		StartDate:   testutil.Date(2024, time.January, 1),
		EndDate:     testutil.Date(2024, time.December, 31),
		MonthlyRent: 800,
		Status:      model.LeaseStatusDraft,
	}
	require.NoError(t, NewLeaseRepository(db).Create(testutil.Context(tenantA), lease))
	assert.Equal(t, tenantA.ID, lease.TenantID)
	assert.Equal(t, model.DefaultNoticeRequiredDays, lease.NoticeRequiredDays)
}

func TestLeaseRepository_UpdateOutsideTenantIsNotFound(t *testing.T) {
	db := testutil.NewDB(t)
	tenantA := testutil.Tenant(t, db, "tenant-a")
	tenantB := testutil.Tenant(t, db, "tenant-b")
	leaseB := testutil.Lease(t, db, tenantB)

	leaseB.MonthlyRent = 1
	err := NewLeaseRepository(db).Update(testutil.Context(tenantA), leaseB)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)

	var stored model.Lease
	require.NoError(t, db.First(&stored, "id = ?", leaseB.ID).Error)
	assert.Equal(t, 1000.0, stored.MonthlyRent)
	assert.Equal(t, tenantB.ID, stored.TenantID)
}

func TestLeaseRepository_ListActiveEndingBefore(t *testing.T) {
	db := testutil.NewDB(t)
	tenant := testutil.Tenant(t, db, "tenant-a")
	expired := testutil.Lease(t, db, tenant, testutil.WithTerm(
		testutil.Date(2023, time.March, 1), testutil.Date(2024, time.February, 29)))
	testutil.Lease(t, db, tenant, testutil.WithTerm(
		testutil.Date(2023, time.March, 1), testutil.Date(2024, time.March, 1)))
	testutil.Lease(t, db, tenant,
		testutil.WithStatus(model.LeaseStatusTerminated),
		testutil.WithTerm(testutil.Date(2022, time.March, 1), testutil.Date(2023, time.March, 1)))

	leases, err := NewLeaseRepository(db).ListActiveEndingBefore(testutil.Context(tenant), testutil.Date(2024, time.March, 1))
	require.NoError(t, err)
	require.Len(t, leases, 1)
	assert.Equal(t, expired.ID, leases[0].ID)
}

func TestLeaseRepository_CountOverlapping(t *testing.T) {
	db := testutil.NewDB(t)
	tenant := testutil.Tenant(t, db, "tenant-a")
	lease := testutil.Lease(t, db, tenant)
	repo := NewLeaseRepository(db)
	ctx := testutil.Context(tenant)

	count, err := repo.CountOverlapping(ctx, lease.UnitID, testutil.Date(2024, time.June, 1), testutil.Date(2025, time.May, 31), uuid.Nil)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)

	count, err = repo.CountOverlapping(ctx, lease.UnitID, testutil.Date(2025, time.January, 15), testutil.Date(2026, time.January, 14), uuid.Nil)
	require.NoError(t, err)
	assert.Zero(t, count)

	count, err = repo.CountOverlapping(ctx, lease.UnitID, lease.StartDate, lease.EndDate, lease.ID)
	require.NoError(t, err)
	assert.Zero(t, count)
}
