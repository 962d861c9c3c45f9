package database

import (
	"fmt"
	"log/slog"

	"github.com/taichu-system/rental-management/internal/model"
	"github.com/taichu-system/rental-management/internal/tenancy"
	"gorm.io/gorm"
)

// leaseOverlapStatements keep two DRAFT or ACTIVE leases of one unit from
// covering the same day.
var leaseOverlapStatements = []string{
	"CREATE EXTENSION IF NOT EXISTS btree_gist",
	"ALTER TABLE leases DROP CONSTRAINT IF EXISTS leases_unit_no_overlap",
	`ALTER TABLE leases ADD CONSTRAINT leases_unit_no_overlap EXCLUDE USING gist (
		unit_id WITH =,
		daterange(start_date, end_date, '[]') WITH &&
	) WHERE (status IN ('DRAFT', 'ACTIVE'))`,
}

// tenantForeignKeys bind tenant_id of every tenant-owned table to tenants.
func tenantForeignKeys() []string {
	stmts := make([]string, 0, len(model.TenantOwnedTables())*2)
	for _, table := range model.TenantOwnedTables() {
		name := table + "_tenant_fk"
		stmts = append(stmts,
			fmt.Sprintf("ALTER TABLE %s DROP CONSTRAINT IF EXISTS %s", table, name),
			fmt.Sprintf("ALTER TABLE %s ADD CONSTRAINT %s FOREIGN KEY (tenant_id) REFERENCES tenants(id)", table, name),
		)
	}
	return stmts
}

// Options selects the optional migration steps.
type Options struct {
	RowSecurity bool
}

// Migrate creates or updates the schema. On Postgres it also installs the
// tenant foreign keys, the lease overlap constraint and, when requested,
// the row-security policies.
func Migrate(db *gorm.DB, opts Options, log *slog.Logger) error {
	log.Info("running schema migration")
	if err := db.AutoMigrate(model.All()...); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}

	if db.Dialector.Name() != "postgres" {
		return nil
	}

	stmts := append(tenantForeignKeys(), leaseOverlapStatements...)
	err := db.Transaction(func(tx *gorm.DB) error {
		for _, stmt := range stmts {
			if err := tx.Exec(stmt).Error; err != nil {
				return fmt.Errorf("constraint: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	if opts.RowSecurity {
		log.Info("enabling row security", "tables", model.TenantOwnedTables())
		if err := tenancy.EnableRowSecurity(db, model.TenantOwnedTables()...); err != nil {
			return err
		}
	}

	log.Info("schema migration completed")
	return nil
}
