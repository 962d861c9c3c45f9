package repository

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/taichu-system/rental-management/internal/model"
	"github.com/taichu-system/rental-management/internal/tenancy"
	"github.com/taichu-system/rental-management/internal/testutil"
)

func TestStore_TransactionRollsBack(t *testing.T) {
	db := testutil.NewDB(t)
	tenant := testutil.Tenant(t, db, "tenant-a")
	lease := testutil.Lease(t, db, tenant)
	store := NewStore(db)
	boom := errors.New("boom")

	err := store.Transaction(testutil.Context(tenant), func(tx *Tx) error {
		lease.MonthlyRent = 5000
		if err := tx.Leases.Update(testutil.Context(tenant), lease); err != nil {
			return err
		}
		return boom
	})
	assert.ErrorIs(t, err, boom)

	var stored model.Lease
	require.NoError(t, db.First(&stored, "id = ?", lease.ID).Error)
	assert.Equal(t, 1000.0, stored.MonthlyRent)
}

func TestOwnerFor(t *testing.T) {
	tenantID := uuid.New()
	other := uuid.New()

	owner, err := ownerFor(tenancy.WithContext(context.Background(), tenancy.System(tenantID)), other)
	require.NoError(t, err)
	assert.Equal(t, tenantID, owner)

	owner, err = ownerFor(tenancy.WithBypass(context.Background()), other)
	require.NoError(t, err)
	assert.Equal(t, other, owner)

	superAdmin := tenancy.WithContext(context.Background(), tenancy.TenantContext{UserID: "root", Role: tenancy.RoleSuperAdmin})
	owner, err = ownerFor(superAdmin, other)
	require.NoError(t, err)
	assert.Equal(t, other, owner)

	_, err = ownerFor(superAdmin, uuid.Nil)
	assert.ErrorIs(t, err, tenancy.ErrContextMissing)

	_, err = ownerFor(context.Background(), other)
	assert.ErrorIs(t, err, tenancy.ErrContextMissing)
}
