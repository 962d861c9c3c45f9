package repository

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/taichu-system/rental-management/internal/model"
	"github.com/taichu-system/rental-management/internal/testutil"
)

func newPendingPayment(lease *model.Lease, periodStart time.Time) *model.Payment {
	return &model.Payment{
		LeaseID:     lease.ID,
		Amount:      lease.MonthlyRent,
		PaymentDate: periodStart,
		PeriodStart: periodStart,
		PeriodEnd:   periodStart.AddDate(0, 1, 0),
		Status:      model.PaymentStatusPending,
	}
}

func TestPaymentRepository_CreateBatchSkipsExistingPeriods(t *testing.T) {
	db := testutil.NewDB(t)
	tenant := testutil.Tenant(t, db, "tenant-a")
	lease := testutil.Lease(t, db, tenant)
	repo := NewPaymentRepository(db)
	ctx := testutil.Context(tenant)

	march := testutil.Date(2024, time.March, 15)
	april := testutil.Date(2024, time.April, 15)

	created, err := repo.CreateBatch(ctx, []*model.Payment{newPendingPayment(lease, march)})
	require.NoError(t, err)
	assert.Equal(t, int64(1), created)

	created, err = repo.CreateBatch(ctx, []*model.Payment{
		newPendingPayment(lease, march),
		newPendingPayment(lease, april),
	})
	require.NoError(t, err)
	assert.Equal(t, int64(1), created)

	payments, err := repo.ListByLease(ctx, lease.ID)
	require.NoError(t, err)
	require.Len(t, payments, 2)
	for _, p := range payments {
		assert.Equal(t, tenant.ID, p.TenantID)
	}

	exists, err := repo.ExistsForPeriod(ctx, lease.ID, april)
	require.NoError(t, err)
	assert.True(t, exists)
}

func TestPaymentRepository_ExistsForPeriodIsTenantScoped(t *testing.T) {
	db := testutil.NewDB(t)
	tenantA := testutil.Tenant(t, db, "tenant-a")
	tenantB := testutil.Tenant(t, db, "tenant-b")
	lease := testutil.Lease(t, db, tenantA)
	repo := NewPaymentRepository(db)
	period := testutil.Date(2024, time.March, 15)

	_, err := repo.CreateBatch(testutil.Context(tenantA), []*model.Payment{newPendingPayment(lease, period)})
	require.NoError(t, err)

	exists, err := repo.ExistsForPeriod(testutil.Context(tenantB), lease.ID, period)
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestPaymentRepository_UpdateStatusRequiresExpectedStatus(t *testing.T) {
	db := testutil.NewDB(t)
	tenant := testutil.Tenant(t, db, "tenant-a")
	lease := testutil.Lease(t, db, tenant)
	repo := NewPaymentRepository(db)
	ctx := testutil.Context(tenant)

	_, err := repo.CreateBatch(ctx, []*model.Payment{newPendingPayment(lease, testutil.Date(2024, time.March, 15))})
	require.NoError(t, err)
	payments, err := repo.ListByLease(ctx, lease.ID)
	require.NoError(t, err)
	require.Len(t, payments, 1)

	first := *payments[0]
	first.Status = model.PaymentStatusCompleted
	first.Method = "transfer"
	require.NoError(t, repo.UpdateStatus(ctx, &first, model.PaymentStatusPending))

	second := *payments[0]
	second.Status = model.PaymentStatusCompleted
	second.Method = "cash"
	assert.ErrorIs(t, repo.UpdateStatus(ctx, &second, model.PaymentStatusPending), ErrStatusChanged)

	locked, err := repo.GetForUpdate(ctx, first.ID)
	require.NoError(t, err)
	assert.Equal(t, model.PaymentStatusCompleted, locked.Status)
	assert.Equal(t, "transfer", locked.Method)
}
