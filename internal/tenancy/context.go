package tenancy

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

// ErrContextMissing is returned when tenant-scoped code runs without an
// established TenantContext.
var ErrContextMissing = errors.New("tenant context missing")

const (
	RoleSuperAdmin = "superadmin"
	RoleAdmin      = "admin"
	RoleManager    = "manager"
	RoleSystem     = "system"

	// SystemActor is the synthetic user recorded for scheduled and scripted work.
	SystemActor = "SYSTEM"
)

// TenantContext identifies the caller of one request or one job invocation.
// TenantID is nil only for a super administrator.
type TenantContext struct {
	TenantID *uuid.UUID
	UserID   string
	Role     string
}

// IsSuperAdmin reports whether the context may operate across tenants.
func (tc TenantContext) IsSuperAdmin() bool {
	return tc.Role == RoleSuperAdmin && tc.TenantID == nil
}

// TenantIDString returns the tenant id or an empty string.
func (tc TenantContext) TenantIDString() string {
	if tc.TenantID == nil {
		return ""
	}
	return tc.TenantID.String()
}

// System builds the context used by scheduled jobs acting on one tenant.
func System(tenantID uuid.UUID) TenantContext {
	id := tenantID
	return TenantContext{TenantID: &id, UserID: SystemActor, Role: RoleSystem}
}

type contextKey struct{}

type bypassKey struct{}

// WithContext attaches tc to ctx. The stored value is a copy; later changes
// to tc are not observed.
func WithContext(ctx context.Context, tc TenantContext) context.Context {
	if tc.TenantID != nil {
		id := *tc.TenantID
		tc.TenantID = &id
	}
	return context.WithValue(ctx, contextKey{}, tc)
}

// FromContext returns the TenantContext attached to ctx.
func FromContext(ctx context.Context) (TenantContext, error) {
	if ctx == nil {
		return TenantContext{}, ErrContextMissing
	}
	tc, ok := ctx.Value(contextKey{}).(TenantContext)
	if !ok {
		return TenantContext{}, ErrContextMissing
	}
	return tc, nil
}

// Run executes fn inside tc. It is the only sanctioned entry point for
// tenant-scoped work started outside an HTTP request.
func Run(ctx context.Context, tc TenantContext, fn func(ctx context.Context) error) error {
	return fn(WithContext(ctx, tc))
}

// Detach returns a context carrying a copy of the tenant identity and bypass
// marker of ctx but none of its deadline or cancellation. Goroutines that
// outlive the request must use it.
func Detach(ctx context.Context) context.Context {
	out := context.Background()
	if tc, err := FromContext(ctx); err == nil {
		out = WithContext(out, tc)
	}
	if IsBypassed(ctx) {
		out = WithBypass(out)
	}
	return out
}

// WithBypass marks ctx as a trusted cross-tenant path (system listings,
// provisioning, global metrics). The application filter is skipped and the
// database session is opened with row security bypassed.
func WithBypass(ctx context.Context) context.Context {
	return context.WithValue(ctx, bypassKey{}, true)
}

// IsBypassed reports whether ctx was marked with WithBypass.
func IsBypassed(ctx context.Context) bool {
	if ctx == nil {
		return false
	}
	v, _ := ctx.Value(bypassKey{}).(bool)
	return v
}
