package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/taichu-system/rental-management/internal/tenancy"
	"gorm.io/gorm"
)

// Store opens units of work against the database. Every unit of work is a
// transaction whose session carries the tenant of its context, so both the
// repository filter and the row-security policy see the same tenant.
type Store struct {
	db *gorm.DB
}

func NewStore(db *gorm.DB) *Store {
	return &Store{db: db}
}

func (s *Store) DB() *gorm.DB {
	return s.db
}

// Tx exposes the repositories bound to one unit of work.
type Tx struct {
	db            *gorm.DB
	Tenants       *TenantRepository
	Units         *UnitRepository
	Leases        *LeaseRepository
	Payments      *PaymentRepository
	RentIncreases *RentIncreaseRepository
	ExitNotices   *ExitNoticeRepository
	Audit         *AuditRepository
}

func newTx(db *gorm.DB) *Tx {
	return &Tx{
		db:            db,
		Tenants:       NewTenantRepository(db),
		Units:         NewUnitRepository(db),
		Leases:        NewLeaseRepository(db),
		Payments:      NewPaymentRepository(db),
		RentIncreases: NewRentIncreaseRepository(db),
		ExitNotices:   NewExitNoticeRepository(db),
		Audit:         NewAuditRepository(db),
	}
}

func (t *Tx) DB() *gorm.DB {
	return t.db
}

// Transaction runs fn in a new unit of work scoped to the tenant of ctx.
// Returning an error rolls the whole unit back.
func (s *Store) Transaction(ctx context.Context, fn func(tx *Tx) error) error {
	return s.db.WithContext(ctx).Transaction(func(db *gorm.DB) error {
		if err := tenancy.ApplySession(ctx, db); err != nil {
			return fmt.Errorf("apply tenant session: %w", err)
		}
		return fn(newTx(db))
	})
}

// scoped applies the tenant predicate of ctx to every statement built from db.
func scoped(ctx context.Context, db *gorm.DB) *gorm.DB {
	return db.WithContext(ctx).Scopes(tenancy.Scope(ctx))
}

// ownerFor returns the tenant a new row must belong to. A tenant context
// always wins over whatever the caller set; trusted cross-tenant contexts
// keep the owner the caller chose.
func ownerFor(ctx context.Context, current uuid.UUID) (uuid.UUID, error) {
	owner, err := tenancy.OwnerID(ctx)
	if err == nil {
		return owner, nil
	}
	if current != uuid.Nil && trusted(ctx) {
		return current, nil
	}
	return uuid.Nil, err
}

func trusted(ctx context.Context) bool {
	if tenancy.IsBypassed(ctx) {
		return true
	}
	tc, err := tenancy.FromContext(ctx)
	return err == nil && tc.IsSuperAdmin()
}
