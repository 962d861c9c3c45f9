package database

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/taichu-system/rental-management/internal/config"
	"github.com/taichu-system/rental-management/internal/logger"
	"github.com/taichu-system/rental-management/internal/model"
	"github.com/taichu-system/rental-management/internal/tenancy"
	"github.com/taichu-system/rental-management/internal/utils"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func TestDSN(t *testing.T) {
	cfg := config.DatabaseConfig{
		Host: "db", Port: 5432, Username: "rental", Password: "secret",
		DBName: "rental", SSLMode: "disable", Timezone: "UTC",
	}
	assert.Equal(t, "host=db user=rental password=secret dbname=rental port=5432 sslmode=disable TimeZone=UTC", DSN(cfg))

	cfg.Options = "-c statement_timeout=5000"
	assert.Contains(t, DSN(cfg), " options='-c statement_timeout=5000'")
}

func TestMigrateSqlite(t *testing.T) {
	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{Logger: gormlogger.Default.LogMode(gormlogger.Silent)})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, Migrate(db, Options{RowSecurity: true}, logger.Discard()))
	for _, table := range model.TenantOwnedTables() {
		assert.True(t, db.Migrator().HasTable(table), table)
	}
	assert.True(t, db.Migrator().HasTable("tenants"))
}

const rlsRole = "rental_rls_test"

// openPostgres connects to TEST_POSTGRES_DSN. The role behind the DSN must
// be allowed to create roles.
func openPostgres(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := os.Getenv("TEST_POSTGRES_DSN")
	if dsn == "" {
		t.Skip("TEST_POSTGRES_DSN not set")
	}
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = Close(db) })

	require.NoError(t, Migrate(db, Options{RowSecurity: true}, logger.Discard()))
	require.NoError(t, db.Exec(`DO $$ BEGIN
		IF NOT EXISTS (SELECT FROM pg_roles WHERE rolname = '`+rlsRole+`') THEN
			CREATE ROLE `+rlsRole+` NOLOGIN NOSUPERUSER NOBYPASSRLS;
		END IF;
	END $$`).Error)
	require.NoError(t, db.Exec("GRANT SELECT, INSERT, UPDATE, DELETE ON ALL TABLES IN SCHEMA public TO "+rlsRole).Error)
	return db
}

func seedLease(t *testing.T, db *gorm.DB, slug string) (*model.Tenant, *model.Lease) {
	t.Helper()
	tenant := &model.Tenant{Name: slug, Slug: slug + "-" + uuid.NewString()[:8], Status: model.TenantStatusActive}
	require.NoError(t, db.Create(tenant).Error)
	unit := &model.Unit{TenantID: tenant.ID, Label: "A-1", Status: model.UnitStatusVacant}
	require.NoError(t, db.Create(unit).Error)
	lease := &model.Lease{
		TenantID: tenant.ID, UnitID: unit.ID,
		StartDate:   time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC),
		EndDate:     time.Date(2024, time.December, 31, 0, 0, 0, 0, time.UTC),
		MonthlyRent: 1000, Status: model.LeaseStatusActive,
	}
	require.NoError(t, db.Create(lease).Error)

	t.Cleanup(func() {
		db.Exec("DELETE FROM leases WHERE tenant_id = ?", tenant.ID)
		db.Exec("DELETE FROM units WHERE tenant_id = ?", tenant.ID)
		db.Exec("DELETE FROM tenants WHERE id = ?", tenant.ID)
	})
	return tenant, lease
}

// asTenant runs fn as the unprivileged role with the session setting for
// tenant applied, then rolls back.
func asTenant(t *testing.T, db *gorm.DB, tenant *model.Tenant, fn func(tx *gorm.DB)) {
	t.Helper()
	tx := db.Begin()
	require.NoError(t, tx.Error)
	defer tx.Rollback()

	require.NoError(t, tx.Exec("SET LOCAL ROLE "+rlsRole).Error)
	if tenant != nil {
		ctx := tenancy.WithContext(context.Background(), tenancy.System(tenant.ID))
		require.NoError(t, tenancy.ApplySession(ctx, tx))
	}
	fn(tx)
}

func TestRowSecurityIsolatesTenants(t *testing.T) {
	db := openPostgres(t)
	tenantA, leaseA := seedLease(t, db, "rls-a")
	tenantB, leaseB := seedLease(t, db, "rls-b")
	ids := []uuid.UUID{leaseA.ID, leaseB.ID}

	asTenant(t, db, tenantA, func(tx *gorm.DB) {
		var visible []uuid.UUID
		require.NoError(t, tx.Model(&model.Lease{}).Where("id IN ?", ids).Pluck("id", &visible).Error)
		assert.Equal(t, []uuid.UUID{leaseA.ID}, visible)

		res := tx.Model(&model.Lease{}).Where("id = ?", leaseB.ID).Update("monthly_rent", 1)
		require.NoError(t, res.Error)
		assert.Zero(t, res.RowsAffected)
	})

	asTenant(t, db, tenantA, func(tx *gorm.DB) {
		foreign := &model.Unit{TenantID: tenantB.ID, Label: "smuggled", Status: model.UnitStatusVacant}
		assert.Error(t, tx.Create(foreign).Error)
	})

	asTenant(t, db, nil, func(tx *gorm.DB) {
		var count int64
		require.NoError(t, tx.Model(&model.Lease{}).Where("id IN ?", ids).Count(&count).Error)
		assert.Zero(t, count)
	})

	// The bypass setting is ignored for roles outside tenancy.BypassRole.
	asTenant(t, db, nil, func(tx *gorm.DB) {
		require.NoError(t, tenancy.ApplySession(tenancy.WithBypass(context.Background()), tx))
		var count int64
		require.NoError(t, tx.Model(&model.Lease{}).Where("id IN ?", ids).Count(&count).Error)
		assert.Zero(t, count)
	})
}

func TestLeaseOverlapConstraint(t *testing.T) {
	db := openPostgres(t)
	tenant, lease := seedLease(t, db, "overlap")

	overlapping := &model.Lease{
		TenantID: tenant.ID, UnitID: lease.UnitID,
		StartDate:   time.Date(2024, time.December, 31, 0, 0, 0, 0, time.UTC),
		EndDate:     time.Date(2025, time.December, 30, 0, 0, 0, 0, time.UTC),
		MonthlyRent: 1000, Status: model.LeaseStatusDraft,
	}
	err := db.Create(overlapping).Error
	require.Error(t, err)
	assert.True(t, utils.IsConstraintViolation(err))

	overlapping.ID = uuid.Nil
	overlapping.Status = model.LeaseStatusTerminated
	assert.NoError(t, db.Create(overlapping).Error)
}
