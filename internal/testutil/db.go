// Package testutil provides database fixtures for package tests.
package testutil

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"github.com/taichu-system/rental-management/internal/model"
	"github.com/taichu-system/rental-management/internal/tenancy"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// NewDB opens a private in-memory sqlite database with the full schema.
func NewDB(t *testing.T) *gorm.DB {
	t.Helper()

	name := strings.NewReplacer("/", "_", " ", "_", "#", "_").Replace(t.Name())
	dsn := fmt.Sprintf("file:%s_%s?mode=memory&cache=shared", name, uuid.NewString()[:8])

	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, db.AutoMigrate(model.All()...))
	return db
}

// Date returns midnight UTC of the given day.
func Date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

// Clock returns a fixed clock.
func Clock(at time.Time) func() time.Time {
	return func() time.Time { return at }
}

// Tenant inserts an ACTIVE tenant.
func Tenant(t *testing.T, db *gorm.DB, slug string) *model.Tenant {
	t.Helper()
	tenant := &model.Tenant{Name: slug, Slug: slug, Status: model.TenantStatusActive, Plan: "basic"}
	require.NoError(t, db.Create(tenant).Error)
	return tenant
}

// Context returns a manager context for tenant.
func Context(tenant *model.Tenant) context.Context {
	return tenancy.WithContext(context.Background(), tenancy.TenantContext{
		TenantID: &tenant.ID,
		UserID:   "user-" + tenant.Slug,
		Role:     tenancy.RoleManager,
	})
}

// Unit inserts a vacant unit owned by tenant.
func Unit(t *testing.T, db *gorm.DB, tenant *model.Tenant) *model.Unit {
	t.Helper()
	unit := &model.Unit{TenantID: tenant.ID, Label: "A-" + uuid.NewString()[:4], Status: model.UnitStatusVacant}
	require.NoError(t, db.Create(unit).Error)
	return unit
}

// LeaseOption adjusts a fixture lease before insertion.
type LeaseOption func(*model.Lease)

func WithStatus(status string) LeaseOption {
	return func(l *model.Lease) { l.Status = status }
}

func WithTerm(start, end time.Time) LeaseOption {
	return func(l *model.Lease) {
		l.StartDate = start
		l.EndDate = end
	}
}

func WithRent(rent float64) LeaseOption {
	return func(l *model.Lease) { l.MonthlyRent = rent }
}

func WithLastIncrease(at time.Time) LeaseOption {
	return func(l *model.Lease) { l.LastIncreaseDate = &at }
}

// Lease inserts an ACTIVE one-year lease starting 2024-01-15 on a fresh unit.
func Lease(t *testing.T, db *gorm.DB, tenant *model.Tenant, opts ...LeaseOption) *model.Lease {
	t.Helper()
	unit := Unit(t, db, tenant)
	lease := &model.Lease{
		TenantID:    tenant.ID,
		UnitID:      unit.ID,
		RenterID:    uuid.New(),
		StartDate:   Date(2024, time.January, 15),
		EndDate:     Date(2025, time.January, 14),
		MonthlyRent: 1000,
		Status:      model.LeaseStatusActive,
	}
	for _, opt := range opts {
		opt(lease)
	}
	require.NoError(t, db.Create(lease).Error)
	return lease
}
