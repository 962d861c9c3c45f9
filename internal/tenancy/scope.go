package tenancy

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Column is the tenant discriminator carried by every tenant-owned table.
const Column = "tenant_id"

// Scope returns a gorm scope restricting a query to the tenant of ctx.
// Bypassed contexts and super administrators are not filtered. A query run
// without any context fails with ErrContextMissing.
func Scope(ctx context.Context) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if IsBypassed(ctx) {
			return db
		}
		tc, err := FromContext(ctx)
		if err != nil {
			_ = db.AddError(err)
			return db
		}
		if tc.TenantID == nil {
			if tc.IsSuperAdmin() {
				return db
			}
			_ = db.AddError(ErrContextMissing)
			return db
		}
		return db.Where(clause.Eq{
			Column: clause.Column{Table: clause.CurrentTable, Name: Column},
			Value:  *tc.TenantID,
		})
	}
}

// OwnerID returns the tenant id new rows created under ctx must carry.
func OwnerID(ctx context.Context) (uuid.UUID, error) {
	tc, err := FromContext(ctx)
	if err != nil {
		return uuid.Nil, err
	}
	if tc.TenantID == nil {
		return uuid.Nil, ErrContextMissing
	}
	return *tc.TenantID, nil
}
