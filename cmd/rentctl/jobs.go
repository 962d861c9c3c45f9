package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"github.com/taichu-system/rental-management/internal/service/worker"
	"github.com/taichu-system/rental-management/internal/tenancy"
)

func jobsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "jobs",
		Short: "Run the daily lifecycle jobs once",
	}

	cmd.AddCommand(jobCmd("renew", "Renew every lease past its end date", (*worker.LifecycleScheduler).RunRenewals))
	cmd.AddCommand(jobCmd("payments", "Generate pending payments for the current billing periods", (*worker.LifecycleScheduler).RunPayments))
	return cmd
}

type jobFunc func(s *worker.LifecycleScheduler, ctx context.Context, tenantIDs ...uuid.UUID) worker.JobSummary

func jobCmd(use, short string, run jobFunc) *cobra.Command {
	var tenants []string
	cmd := &cobra.Command{
		Use:   use,
		Short: short,
		Long:  short + ".\n\nWithout --tenant every ACTIVE tenant is processed. Suspended tenants are always skipped.",
		RunE: func(cmd *cobra.Command, args []string) error {
			ids := make([]uuid.UUID, 0, len(tenants))
			for _, raw := range tenants {
				id, err := tenancy.ParseTenantID(raw)
				if err != nil {
					return err
				}
				ids = append(ids, id)
			}

			a, err := openApp()
			if err != nil {
				return err
			}
			defer a.Close()

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			summary := run(a.scheduler(), ctx, ids...)
			return printJSON(cmd.OutOrStdout(), summary)
		},
	}
	cmd.Flags().StringSliceVar(&tenants, "tenant", nil, "tenant id to process (repeatable)")
	return cmd
}
