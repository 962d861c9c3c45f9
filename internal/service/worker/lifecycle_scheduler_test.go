package worker

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/taichu-system/rental-management/internal/config"
	"github.com/taichu-system/rental-management/internal/constants"
	"github.com/taichu-system/rental-management/internal/logger"
	"github.com/taichu-system/rental-management/internal/model"
	"github.com/taichu-system/rental-management/internal/repository"
	"github.com/taichu-system/rental-management/internal/service"
	"github.com/taichu-system/rental-management/internal/testutil"
	"gorm.io/gorm"
)

func newScheduler(t *testing.T, today time.Time, cfg config.SchedulerConfig) (*LifecycleScheduler, *gorm.DB) {
	db := testutil.NewDB(t)
	store := repository.NewStore(db)
	log := logger.Discard()
	audit := service.NopAuditSink{}
	clock := testutil.Clock(today)

	s := NewLifecycleScheduler(
		service.NewTenantService(store, nil, audit, log),
		service.NewRenewalService(store, audit, log, clock),
		service.NewPaymentGenerator(store, audit, log, clock),
		cfg,
		log,
	)
	return s, db
}

func suspend(t *testing.T, db *gorm.DB, tenant *model.Tenant) {
	t.Helper()
	require.NoError(t, db.Model(tenant).Update("status", model.TenantStatusSuspended).Error)
}

func storedLease(t *testing.T, db *gorm.DB, lease *model.Lease) model.Lease {
	t.Helper()
	var out model.Lease
	require.NoError(t, db.First(&out, "id = ?", lease.ID).Error)
	return out
}

func TestRunRenewalsSkipsSuspendedTenants(t *testing.T) {
	s, db := newScheduler(t, testutil.Date(2024, time.February, 1), config.SchedulerConfig{})
	active := testutil.Tenant(t, db, "tenant-a")
	suspended := testutil.Tenant(t, db, "tenant-b")
	suspend(t, db, suspended)

	term := testutil.WithTerm(testutil.Date(2023, time.January, 10), testutil.Date(2024, time.January, 9))
	renewable := testutil.Lease(t, db, active, term)
	frozen := testutil.Lease(t, db, suspended, term)

	summary := s.RunRenewals(context.Background())
	assert.Equal(t, constants.JobLeaseRenewal, summary.Job)
	assert.Equal(t, 1, summary.Tenants)
	assert.Zero(t, summary.FailedTenants)

	renewed := storedLease(t, db, renewable)
	assert.Equal(t, 1, renewed.RenewalCount)
	assert.Equal(t, "2025-01-09", renewed.EndDate.UTC().Format("2006-01-02"))
	assert.Zero(t, storedLease(t, db, frozen).RenewalCount)

	summary = s.RunRenewals(context.Background(), suspended.ID)
	assert.Zero(t, summary.Tenants)
	assert.Zero(t, storedLease(t, db, frozen).RenewalCount)
}

func TestRunPaymentsPerTenant(t *testing.T) {
	s, db := newScheduler(t, testutil.Date(2024, time.March, 20), config.SchedulerConfig{})
	tenantA := testutil.Tenant(t, db, "tenant-a")
	tenantB := testutil.Tenant(t, db, "tenant-b")
	leaseA := testutil.Lease(t, db, tenantA)
	leaseB := testutil.Lease(t, db, tenantB)

	summary := s.RunPayments(context.Background(), tenantA.ID)
	assert.Equal(t, 1, summary.Tenants)

	var countA, countB int64
	require.NoError(t, db.Model(&model.Payment{}).Where("lease_id = ?", leaseA.ID).Count(&countA).Error)
	require.NoError(t, db.Model(&model.Payment{}).Where("lease_id = ?", leaseB.ID).Count(&countB).Error)
	assert.Equal(t, int64(1), countA)
	assert.Zero(t, countB)

	summary = s.RunPayments(context.Background())
	assert.Equal(t, 2, summary.Tenants)

	var payments []model.Payment
	require.NoError(t, db.Find(&payments).Error)
	require.Len(t, payments, 2)
	for _, p := range payments {
		assert.Equal(t, "2024-03-15", p.PeriodStart.UTC().Format("2006-01-02"))
	}
}

func TestStartRejectsInvalidCron(t *testing.T) {
	s, _ := newScheduler(t, time.Now(), config.SchedulerConfig{RenewalCron: "not a cron", PaymentsCron: "0 30 1 * * *"})
	assert.Error(t, s.Start())
}

func TestStartAndStop(t *testing.T) {
	s, _ := newScheduler(t, time.Now(), config.SchedulerConfig{RenewalCron: "0 0 1 * * *", PaymentsCron: "0 30 1 * * *"})
	require.NoError(t, s.Start())

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	s.Stop(ctx)
}
