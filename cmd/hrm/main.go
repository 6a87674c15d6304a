package main

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/kettlegourmet/hrm/internal/logging"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

type globalOptions struct {
	configPath string
	apiURL     string
	token      string
	verbose    bool
	timeout    time.Duration

	logger *zap.Logger
}

func newRootCmd() *cobra.Command {
	opts := &globalOptions{}

	root := &cobra.Command{
		Use:   "hrm",
		Short: "Kettle Gourmet HRM leave quota service and admin tool",
		Long: `hrm runs the leave quota API and manages leave tiers and employee
quotas against a running server.

Server commands (serve, migrate, admin, audit) read config.json and .env.
Client commands (login, tiers, quotas) talk to --api with --token.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			// Load env if it exists
			_ = godotenv.Load()

			if opts.apiURL == "" {
				opts.apiURL = envOr("HRM_API_URL", "http://localhost:8080")
			}
			if opts.token == "" {
				opts.token = os.Getenv("HRM_TOKEN")
			}

			level := "warn"
			if opts.verbose {
				level = "debug"
			}
			logger, err := logging.New(envOr("ENVIRONMENT", "development"), level)
			if err != nil {
				return fmt.Errorf("failed to initialize logger: %w", err)
			}
			opts.logger = logger
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if opts.logger != nil {
				_ = opts.logger.Sync()
			}
		},
	}

	root.PersistentFlags().StringVar(&opts.configPath, "config", "config.json", "Server config file")
	root.PersistentFlags().StringVar(&opts.apiURL, "api", "", "HRM API base URL (or set HRM_API_URL)")
	root.PersistentFlags().StringVar(&opts.token, "token", "", "Bearer token (or set HRM_TOKEN)")
	root.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "Enable verbose logging")
	root.PersistentFlags().DurationVar(&opts.timeout, "timeout", 30*time.Second, "Timeout for client commands")

	root.AddCommand(
		newServeCmd(opts),
		newMigrateCmd(opts),
		newAdminCmd(opts),
		newAuditCmd(opts),
		newLoginCmd(opts),
		newTiersCmd(opts),
		newQuotasCmd(opts),
	)

	return root
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
