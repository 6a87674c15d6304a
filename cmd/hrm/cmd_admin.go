package main

import (
	"context"
	"fmt"

	"github.com/kettlegourmet/hrm/internal/config"
	"github.com/kettlegourmet/hrm/internal/models"
	"github.com/kettlegourmet/hrm/internal/repository"
	"github.com/kettlegourmet/hrm/internal/service"
	"github.com/kettlegourmet/hrm/internal/storage"
	"github.com/spf13/cobra"
)

func newAdminCmd(opts *globalOptions) *cobra.Command {
	admin := &cobra.Command{
		Use:   "admin",
		Short: "Manage administrator accounts directly in the database",
	}

	var req models.CreateUserRequest
	create := &cobra.Command{
		Use:   "create",
		Short: "Create an administrator account",
		Long: `Creates an ADMIN user without going through the API. Use it to bootstrap
the first account.

Example:
  hrm admin create --email ops@kettlegourmet.com --password 's3cret-pass' --first Ops`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(opts.configPath)
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}

			postgres, err := storage.NewPostgres(cfg.Database.DSN, cfg.Database.Verbose)
			if err != nil {
				return err
			}
			defer postgres.Close()

			users := service.NewUserService(
				repository.NewUserRepository(postgres),
				repository.NewLeaveQuotaRepository(postgres),
				nil,
				opts.logger,
			)

			req.Role = models.RoleAdmin
			user, err := users.CreateEmployee(cmd.Context(), service.Actor{RequestID: "cli"}, req)
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Created admin %s (id %d)\n", user.Email, user.ID)
			return nil
		},
	}

	create.Flags().StringVar(&req.Email, "email", "", "Email address (required)")
	create.Flags().StringVar(&req.Password, "password", "", "Password (required)")
	create.Flags().StringVar(&req.FirstName, "first", "", "First name (required)")
	create.Flags().StringVar(&req.LastName, "last", "", "Last name")
	create.Flags().StringVar(&req.Tier, "tier", "", "Leave tier")
	_ = create.MarkFlagRequired("email")
	_ = create.MarkFlagRequired("password")
	_ = create.MarkFlagRequired("first")

	admin.AddCommand(create)
	return admin
}

func newAuditCmd(opts *globalOptions) *cobra.Command {
	audit := &cobra.Command{
		Use:   "audit",
		Short: "Maintain the leave audit trail",
	}

	var days int
	prune := &cobra.Command{
		Use:   "prune",
		Short: "Delete audit entries older than the retention period",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(opts.configPath)
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}
			if days <= 0 {
				days = cfg.Audit.RetentionDays
			}

			postgres, err := storage.NewPostgres(cfg.Database.DSN, cfg.Database.Verbose)
			if err != nil {
				return err
			}
			defer postgres.Close()

			ctx, cancel := context.WithTimeout(cmd.Context(), opts.timeout)
			defer cancel()

			deleted, err := service.NewAuditService(repository.NewAuditRepository(postgres)).Prune(ctx, days)
			if err != nil {
				return fmt.Errorf("failed to prune audit entries: %w", err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Deleted %d audit entries older than %d days\n", deleted, days)
			return nil
		},
	}
	prune.Flags().IntVar(&days, "days", 0, "Retention in days (default from config)")

	audit.AddCommand(prune)
	return audit
}
