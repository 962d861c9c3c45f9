package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/taichu-system/rental-management/internal/constants"
	"github.com/taichu-system/rental-management/internal/logger"
	"github.com/taichu-system/rental-management/internal/model"
	"github.com/taichu-system/rental-management/internal/repository"
	"github.com/taichu-system/rental-management/internal/tenancy"
	"github.com/taichu-system/rental-management/internal/testutil"
	"github.com/taichu-system/rental-management/internal/utils"
	"gorm.io/gorm"
)

func newTenants(t *testing.T) (*TenantService, *gorm.DB, *memoryStatusCache, *recordingAudit) {
	db := testutil.NewDB(t)
	cache := newMemoryStatusCache()
	sink := &recordingAudit{}
	return NewTenantService(repository.NewStore(db), cache, sink, logger.Discard()), db, cache, sink
}

func adminContext() context.Context {
	return tenancy.WithContext(context.Background(), tenancy.TenantContext{UserID: "root", Role: tenancy.RoleSuperAdmin})
}

func TestProvisionTenant(t *testing.T) {
	svc, _, _, sink := newTenants(t)

	tenant, err := svc.ProvisionTenant(adminContext(), ProvisionTenantRequest{
		Name: "Acme Rentals", Slug: " Acme-Rentals ", Plan: "pro", Timezone: "Europe/Madrid",
	})
	require.NoError(t, err)
	assert.Equal(t, "acme-rentals", tenant.Slug)
	assert.Equal(t, model.TenantStatusActive, tenant.Status)
	assert.Equal(t, "Europe/Madrid", tenant.Config[model.ConfigKeyTimezone])
	assert.Equal(t, []string{constants.ActionCreate}, sink.actions())

	_, err = svc.ProvisionTenant(adminContext(), ProvisionTenantRequest{Name: "Other", Slug: "acme-rentals"})
	assertReason(t, err, utils.ReasonDuplicate)
}

func TestProvisionTenantValidates(t *testing.T) {
	svc, _, _, _ := newTenants(t)

	for _, req := range []ProvisionTenantRequest{
		{Name: "", Slug: "valid-slug"},
		{Name: "x", Slug: "a"},
		{Name: "x", Slug: "-leading"},
		{Name: "x", Slug: "has space"},
	} {
		_, err := svc.ProvisionTenant(adminContext(), req)
		assertReason(t, err, utils.ReasonInvalidInput)
	}
}

func TestGetStatusUsesCache(t *testing.T) {
	svc, db, cache, _ := newTenants(t)
	tenant := testutil.Tenant(t, db, "tenant-a")

	status, err := svc.GetStatus(context.Background(), tenant.ID)
	require.NoError(t, err)
	assert.Equal(t, model.TenantStatusActive, status)

	cached, ok := cache.Get(context.Background(), tenant.ID)
	require.True(t, ok)
	assert.Equal(t, model.TenantStatusActive, cached)

	cache.Set(context.Background(), tenant.ID, "STALE")
	status, err = svc.GetStatus(context.Background(), tenant.ID)
	require.NoError(t, err)
	assert.Equal(t, "STALE", status)
}

func TestSuspendAndReactivate(t *testing.T) {
	svc, db, cache, sink := newTenants(t)
	tenant := testutil.Tenant(t, db, "tenant-a")
	other := testutil.Tenant(t, db, "tenant-b")
	ctx := adminContext()

	_, err := svc.GetStatus(ctx, tenant.ID)
	require.NoError(t, err)

	suspended, err := svc.SuspendTenant(ctx, tenant.ID)
	require.NoError(t, err)
	assert.Equal(t, model.TenantStatusSuspended, suspended.Status)
	assert.Contains(t, cache.invalidated, tenant.ID)

	status, err := svc.GetStatus(ctx, tenant.ID)
	require.NoError(t, err)
	assert.Equal(t, model.TenantStatusSuspended, status)

	ids, err := svc.ListActiveTenantIDs(ctx)
	require.NoError(t, err)
	assert.Contains(t, ids, other.ID)
	assert.NotContains(t, ids, tenant.ID)

	_, err = svc.SuspendTenant(ctx, tenant.ID)
	require.NoError(t, err)

	reactivated, err := svc.ReactivateTenant(ctx, tenant.ID)
	require.NoError(t, err)
	assert.Equal(t, model.TenantStatusActive, reactivated.Status)

	assert.Equal(t, []string{constants.ActionSuspend, constants.ActionReactivate}, sink.actions())
}

func TestSuspendUnknownTenant(t *testing.T) {
	svc, _, _, _ := newTenants(t)
	_, err := svc.SuspendTenant(adminContext(), uuid.New())
	assert.True(t, utils.IsNotFound(err))
}
