package main

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"github.com/taichu-system/rental-management/internal/config"
	"github.com/taichu-system/rental-management/internal/middleware"
	"github.com/taichu-system/rental-management/internal/model"
	"github.com/taichu-system/rental-management/internal/service"
	"github.com/taichu-system/rental-management/internal/tenancy"
)

// operatorContext identifies CLI actions in the audit trail.
func operatorContext(ctx context.Context) context.Context {
	return tenancy.WithContext(ctx, tenancy.TenantContext{UserID: "rentctl", Role: tenancy.RoleSuperAdmin})
}

func tenantsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tenants",
		Short: "Administer tenant accounts",
	}
	cmd.AddCommand(provisionCmd())
	cmd.AddCommand(tenantStatusCmd("suspend", "Suspend a tenant", (*service.TenantService).SuspendTenant))
	cmd.AddCommand(tenantStatusCmd("reactivate", "Reactivate a suspended tenant", (*service.TenantService).ReactivateTenant))
	return cmd
}

func provisionCmd() *cobra.Command {
	var req service.ProvisionTenantRequest
	cmd := &cobra.Command{
		Use:   "provision [slug]",
		Short: "Create an ACTIVE tenant",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			req.Slug = args[0]
			if req.Name == "" {
				req.Name = args[0]
			}

			a, err := openApp()
			if err != nil {
				return err
			}
			defer a.Close()

			tenant, err := a.tenantService().ProvisionTenant(operatorContext(cmd.Context()), req)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), tenant)
		},
	}
	cmd.Flags().StringVar(&req.Name, "name", "", "display name (defaults to the slug)")
	cmd.Flags().StringVar(&req.Plan, "plan", "basic", "subscription plan")
	cmd.Flags().StringVar(&req.Timezone, "timezone", "", "IANA timezone stored in the tenant config")
	return cmd
}

type statusFunc func(s *service.TenantService, ctx context.Context, id uuid.UUID) (*model.Tenant, error)

func tenantStatusCmd(use, short string, change statusFunc) *cobra.Command {
	return &cobra.Command{
		Use:   use + " [tenant-id]",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := tenancy.ParseTenantID(args[0])
			if err != nil {
				return err
			}

			a, err := openApp()
			if err != nil {
				return err
			}
			defer a.Close()

			tenant, err := change(a.tenantService(), operatorContext(cmd.Context()), id)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "tenant %s is %s\n", tenant.ID, tenant.Status)
			return nil
		},
	}
}

func tokenCmd() *cobra.Command {
	var (
		userID   string
		role     string
		tenantID string
		ttl      time.Duration
	)
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Sign an API token for operators and smoke tests",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if cfg.Auth.JWTSecret == "" {
				return fmt.Errorf("auth.jwt_secret is not configured")
			}

			var tenant *uuid.UUID
			if tenantID != "" {
				id, err := tenancy.ParseTenantID(tenantID)
				if err != nil {
					return err
				}
				tenant = &id
			}

			token, err := middleware.GenerateToken(userID, userID, role, tenant, cfg.Auth.JWTSecret, cfg.Auth.Issuer, ttl)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}
	cmd.Flags().StringVar(&userID, "user", "operator", "user id recorded in the token")
	cmd.Flags().StringVar(&role, "role", tenancy.RoleManager, "role: superadmin, admin or manager")
	cmd.Flags().StringVar(&tenantID, "tenant", "", "tenant id (omit only for superadmin)")
	cmd.Flags().DurationVar(&ttl, "ttl", time.Hour, "token lifetime")
	return cmd
}
