package tenancy

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"gorm.io/gorm"
)

const (
	// SettingTenant holds the tenant id of the current transaction.
	SettingTenant = "app.current_tenant"
	// SettingBypass is set to 'on' for trusted cross-tenant transactions.
	// The policies honour it only for members of BypassRole.
	SettingBypass = "app.bypass_rls"
	// BypassRole is the database role whose members may use SettingBypass.
	BypassRole = "rental_bypass"

	policyName = "tenant_isolation"
)

// ParseTenantID validates the shape of an externally supplied tenant id.
func ParseTenantID(raw string) (uuid.UUID, error) {
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, fmt.Errorf("invalid tenant id %q: %w", raw, err)
	}
	if id == uuid.Nil {
		return uuid.Nil, fmt.Errorf("invalid tenant id %q", raw)
	}
	return id, nil
}

// ApplySession writes the tenant of ctx into the transaction-local settings
// read by the row-security policies. The id is bound as a statement
// parameter. Dialects without row security are left untouched.
func ApplySession(ctx context.Context, tx *gorm.DB) error {
	if tx.Dialector.Name() != "postgres" {
		return nil
	}
	if IsBypassed(ctx) {
		return tx.Exec("SELECT set_config('" + SettingBypass + "', 'on', true)").Error
	}
	tc, err := FromContext(ctx)
	if err != nil {
		return err
	}
	if tc.TenantID == nil {
		if tc.IsSuperAdmin() {
			return tx.Exec("SELECT set_config('" + SettingBypass + "', 'on', true)").Error
		}
		return ErrContextMissing
	}
	return tx.Exec("SELECT set_config('"+SettingTenant+"', ?, true)", tc.TenantID.String()).Error
}

// PolicyStatements returns the DDL enabling row security on table.
func PolicyStatements(table string) []string {
	t := pgx.Identifier{table}.Sanitize()
	predicate := fmt.Sprintf(
		"(current_setting('%s', true) = 'on' AND pg_has_role(current_user, '%s', 'MEMBER')) OR %s = NULLIF(current_setting('%s', true), '')::uuid",
		SettingBypass, BypassRole, Column, SettingTenant,
	)
	return []string{
		fmt.Sprintf("ALTER TABLE %s ENABLE ROW LEVEL SECURITY", t),
		fmt.Sprintf("ALTER TABLE %s FORCE ROW LEVEL SECURITY", t),
		fmt.Sprintf("DROP POLICY IF EXISTS %s ON %s", policyName, t),
		fmt.Sprintf("CREATE POLICY %s ON %s USING (%s) WITH CHECK (%s)", policyName, t, predicate, predicate),
	}
}

// BypassRoleStatements create BypassRole when missing and grant it to the
// migrating user, which is the role the service connects as.
func BypassRoleStatements() []string {
	role := pgx.Identifier{BypassRole}.Sanitize()
	return []string{
		fmt.Sprintf(`DO $$ BEGIN
	IF NOT EXISTS (SELECT FROM pg_roles WHERE rolname = '%s') THEN
		CREATE ROLE %s NOLOGIN;
	END IF;
END $$`, BypassRole, role),
		fmt.Sprintf("GRANT %s TO CURRENT_USER", role),
	}
}

// EnableRowSecurity installs the bypass role and the tenant isolation
// policy on every table.
func EnableRowSecurity(db *gorm.DB, tables ...string) error {
	if db.Dialector.Name() != "postgres" {
		return nil
	}
	return db.Transaction(func(tx *gorm.DB) error {
		for _, stmt := range BypassRoleStatements() {
			if err := tx.Exec(stmt).Error; err != nil {
				return fmt.Errorf("bypass role: %w", err)
			}
		}
		for _, table := range tables {
			for _, stmt := range PolicyStatements(table) {
				if err := tx.Exec(stmt).Error; err != nil {
					return fmt.Errorf("row security on %s: %w", table, err)
				}
			}
		}
		return nil
	})
}
