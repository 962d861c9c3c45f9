// Package routes wires the HTTP surface.
package routes

import (
	"log/slog"

	"github.com/gin-gonic/gin"
	"github.com/taichu-system/rental-management/internal/handler"
	"github.com/taichu-system/rental-management/internal/metrics"
	"github.com/taichu-system/rental-management/internal/middleware"
	"github.com/taichu-system/rental-management/internal/tenancy"
)

type Handlers struct {
	Lease      *handler.LeaseHandler
	Increase   *handler.IncreaseHandler
	ExitNotice *handler.ExitNoticeHandler
	Payment    *handler.PaymentHandler
	Tenant     *handler.TenantHandler
	Audit      *handler.AuditHandler
	Health     *handler.HealthHandler
}

type Options struct {
	JWTSecret    string
	JWTIssuer    string
	TenantStatus middleware.TenantStatusLookup
	Logger       *slog.Logger
}

func Setup(h Handlers, opts Options) *gin.Engine {
	r := gin.New()

	r.Use(gin.Recovery())
	r.Use(middleware.RequestLogger(opts.Logger))
	r.Use(metrics.GinMiddleware())

	r.GET("/healthz", h.Health.Live)
	r.GET("/readyz", h.Health.Ready)
	r.GET("/metrics", metrics.Handler())

	v1 := r.Group("/api/v1")
	v1.Use(middleware.JWTMiddleware(opts.JWTSecret, opts.JWTIssuer))
	v1.Use(middleware.TenantGuard(opts.TenantStatus, opts.Logger))
	{
		v1.GET("/audit", h.Audit.ListAuditEvents)

		leases := v1.Group("/leases")
		{
			leases.POST("", h.Lease.CreateLease)
			leases.GET("/increases/preview", h.Increase.PreviewIncreases)
			leases.POST("/increases/bulk", h.Increase.BulkApplyIncreases)

			leases.GET("/:id", h.Lease.GetLease)
			leases.POST("/:id/activate", h.Lease.ActivateLease)
			leases.POST("/:id/terminate", h.Lease.TerminateLease)
			leases.POST("/:id/renew", h.Lease.RenewLease)
			leases.PUT("/:id/contract", h.Lease.SetContract)
			leases.DELETE("/:id/contract", h.Lease.ClearContract)
			leases.POST("/:id/increases", h.Increase.ApplyIncrease)
			leases.POST("/:id/exit-notices", h.ExitNotice.CreateExitNotice)
			leases.GET("/:id/payments", h.Payment.ListLeasePayments)
		}

		exitNotices := v1.Group("/exit-notices")
		{
			exitNotices.POST("/:id/confirm", h.ExitNotice.ConfirmExitNotice)
			exitNotices.POST("/:id/cancel", h.ExitNotice.CancelExitNotice)
		}

		payments := v1.Group("/payments")
		{
			payments.POST("/generate", h.Payment.GeneratePayments)
			payments.POST("/:id/complete", h.Payment.CompletePayment)
		}

		ipc := v1.Group("/tenant/ipc")
		{
			ipc.GET("/:year", h.Increase.GetIPC)
			ipc.PUT("/:year", h.Increase.SetIPC)
		}

		admin := v1.Group("/admin", middleware.RoleMiddleware(tenancy.RoleSuperAdmin))
		{
			admin.POST("/tenants", h.Tenant.ProvisionTenant)
			admin.GET("/tenants/:id", h.Tenant.GetTenant)
			admin.POST("/tenants/:id/suspend", h.Tenant.SuspendTenant)
			admin.POST("/tenants/:id/reactivate", h.Tenant.ReactivateTenant)
		}
	}

	return r
}
