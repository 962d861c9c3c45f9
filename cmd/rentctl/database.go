package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/taichu-system/rental-management/internal/database"
	"github.com/taichu-system/rental-management/internal/model"
	"github.com/taichu-system/rental-management/internal/tenancy"
)

func migrateCmd() *cobra.Command {
	var rowSecurity bool
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the schema and constraints",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp()
			if err != nil {
				return err
			}
			defer a.Close()

			enable := rowSecurity || a.cfg.Database.EnableRowSecurity
			if err := database.Migrate(a.db, database.Options{RowSecurity: enable}, a.log); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "migration completed")
			return nil
		},
	}
	cmd.Flags().BoolVar(&rowSecurity, "row-security", false, "also install the row-security policies")
	return cmd
}

func rlsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "rls",
		Short: "Manage row-level security policies",
	}

	var dryRun bool
	apply := &cobra.Command{
		Use:   "apply",
		Short: "Enable row security and the tenant isolation policy on every tenant-owned table",
		RunE: func(cmd *cobra.Command, args []string) error {
			if dryRun {
				for _, stmt := range tenancy.BypassRoleStatements() {
					fmt.Fprintln(cmd.OutOrStdout(), stmt+";")
				}
				for _, table := range model.TenantOwnedTables() {
					for _, stmt := range tenancy.PolicyStatements(table) {
						fmt.Fprintln(cmd.OutOrStdout(), stmt+";")
					}
				}
				return nil
			}

			a, err := openApp()
			if err != nil {
				return err
			}
			defer a.Close()

			if err := tenancy.EnableRowSecurity(a.db, model.TenantOwnedTables()...); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "row security enabled on %d tables\n", len(model.TenantOwnedTables()))
			return nil
		},
	}
	apply.Flags().BoolVar(&dryRun, "dry-run", false, "print the statements without executing them")

	cmd.AddCommand(apply)
	return cmd
}
