package middleware

import (
	"context"
	"log/slog"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/taichu-system/rental-management/internal/model"
	"github.com/taichu-system/rental-management/internal/tenancy"
	"github.com/taichu-system/rental-management/internal/utils"
	pkgutils "github.com/taichu-system/rental-management/pkg/utils"
)

// TenantStatusLookup resolves the lifecycle status of a tenant.
type TenantStatusLookup interface {
	GetStatus(ctx context.Context, tenantID uuid.UUID) (string, error)
}

// TenantGuard rejects requests of unknown or suspended tenants before any
// handler runs. Super administrators without a tenant pass through.
func TenantGuard(lookup TenantStatusLookup, log *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		tc, err := tenancy.FromContext(c.Request.Context())
		if err != nil {
			pkgutils.AbortWithError(c, utils.Unauthorized(utils.ReasonTenantContextRequired, "tenant context required"))
			return
		}
		if tc.TenantID == nil {
			if tc.IsSuperAdmin() {
				c.Next()
				return
			}
			pkgutils.AbortWithError(c, utils.Unauthorized(utils.ReasonTenantContextRequired, "tenant context required"))
			return
		}

		status, err := lookup.GetStatus(c.Request.Context(), *tc.TenantID)
		if err != nil {
			if utils.IsNotFound(err) {
				pkgutils.AbortWithError(c, utils.Unauthorized(utils.ReasonTenantNotFound, "tenant not found"))
				return
			}
			log.Error("tenant status lookup failed",
				slog.String("tenant_id", tc.TenantID.String()),
				slog.String("error", err.Error()),
			)
			pkgutils.AbortWithError(c, err)
			return
		}
		if status == model.TenantStatusSuspended {
			pkgutils.AbortWithError(c, utils.TenantSuspended())
			return
		}
		c.Next()
	}
}
