package tenancy

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newMockPostgres(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()
	sqlDB, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherEqual))
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })

	db, err := gorm.Open(postgres.New(postgres.Config{
		Conn:       sqlDB,
		DriverName: "postgres",
	}), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	return db, mock
}

func TestApplySessionBindsTenantID(t *testing.T) {
	db, mock := newMockPostgres(t)
	tenantID := uuid.New()
	ctx := WithContext(context.Background(), TenantContext{TenantID: &tenantID, UserID: "u1", Role: RoleManager})

	mock.ExpectExec("SELECT set_config('app.current_tenant', $1, true)").
		WithArgs(tenantID.String()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, ApplySession(ctx, db))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestApplySessionBypass(t *testing.T) {
	db, mock := newMockPostgres(t)

	mock.ExpectExec("SELECT set_config('app.bypass_rls', 'on', true)").
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, ApplySession(WithBypass(context.Background()), db))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestApplySessionSuperAdminBypasses(t *testing.T) {
	db, mock := newMockPostgres(t)
	ctx := WithContext(context.Background(), TenantContext{UserID: "root", Role: RoleSuperAdmin})

	mock.ExpectExec("SELECT set_config('app.bypass_rls', 'on', true)").
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, ApplySession(ctx, db))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestApplySessionWithoutContext(t *testing.T) {
	db, mock := newMockPostgres(t)

	err := ApplySession(context.Background(), db)
	assert.ErrorIs(t, err, ErrContextMissing)

	ctx := WithContext(context.Background(), TenantContext{UserID: "u1", Role: RoleManager})
	assert.ErrorIs(t, ApplySession(ctx, db), ErrContextMissing)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestEnableRowSecurity(t *testing.T) {
	db, mock := newMockPostgres(t)

	mock.ExpectBegin()
	for _, stmt := range BypassRoleStatements() {
		mock.ExpectExec(stmt).WillReturnResult(sqlmock.NewResult(0, 0))
	}
	for _, stmt := range PolicyStatements("leases") {
		mock.ExpectExec(stmt).WillReturnResult(sqlmock.NewResult(0, 0))
	}
	mock.ExpectCommit()

	require.NoError(t, EnableRowSecurity(db, "leases"))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPolicyStatementsQuoteTable(t *testing.T) {
	stmts := PolicyStatements("leases")
	require.Len(t, stmts, 4)
	assert.Equal(t, `ALTER TABLE "leases" ENABLE ROW LEVEL SECURITY`, stmts[0])
	assert.Equal(t, `ALTER TABLE "leases" FORCE ROW LEVEL SECURITY`, stmts[1])
	assert.Contains(t, stmts[3], "WITH CHECK")
	assert.Contains(t, stmts[3], "NULLIF(current_setting('app.current_tenant', true), '')::uuid")
}

func TestPolicyBypassRequiresRoleMembership(t *testing.T) {
	policy := PolicyStatements("leases")[3]
	assert.Contains(t, policy, "(current_setting('app.bypass_rls', true) = 'on' AND pg_has_role(current_user, 'rental_bypass', 'MEMBER'))")
	assert.NotContains(t, policy, "USING (current_setting('app.bypass_rls', true) = 'on' OR")

	roles := BypassRoleStatements()
	require.Len(t, roles, 2)
	assert.Contains(t, roles[0], `CREATE ROLE "rental_bypass" NOLOGIN`)
	assert.Equal(t, `GRANT "rental_bypass" TO CURRENT_USER`, roles[1])
}
