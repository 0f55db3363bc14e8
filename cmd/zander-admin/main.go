package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/JonMunkholm/zander/internal/admin"
	"github.com/JonMunkholm/zander/internal/auth"
	"github.com/JonMunkholm/zander/internal/config"
	"github.com/JonMunkholm/zander/internal/core"
	"github.com/JonMunkholm/zander/internal/logging"
	"github.com/JonMunkholm/zander/internal/store"
	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var (
	tenantFlag string
	userFlag   string
	emailFlag  string
	ttlFlag    time.Duration
	limitFlag  int
	forceFlag  bool
)

var rootCmd = &cobra.Command{
	Use:   "zander-admin",
	Short: "Operator tasks for the Zander product import service",
	Long: `Administrative commands that run against the server configuration
(the same environment variables and .env file as the server).`,
	SilenceUsage: true,
}

// tokenCmd mints a bearer token.
var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Mint a bearer token for a tenant user",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		tenant, err := tenantID()
		if err != nil {
			return err
		}
		issuer := auth.NewIssuer(cfg.Security.JWTSecret, cfg.Security.JWTIssuer)
		tok, err := admin.MintToken(issuer, tenant, userFlag, emailFlag, ttlFlag)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), tok)
		return nil
	},
}

// seedCmd loads the demo catalog.
var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Provision the demo product catalog for a tenant",
	Args:  cobra.NoArgs,
	RunE: withService(func(cmd *cobra.Command, svc *core.Service, tenant uuid.UUID) error {
		res, err := admin.Seed(cmd.Context(), svc, tenant)
		if res != nil {
			fmt.Fprintf(cmd.OutOrStdout(), "imported %d, updated %d, errors %d\n", res.Imported, res.Updated, res.Errors)
		}
		return err
	}),
}

// resetCmd deletes a tenant's catalog.
var resetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Delete every product of a tenant",
	Args:  cobra.NoArgs,
	RunE: withService(func(cmd *cobra.Command, svc *core.Service, tenant uuid.UUID) error {
		if !forceFlag {
			return fmt.Errorf("reset deletes every product of tenant %s; rerun with --force", tenant)
		}
		n, err := admin.Reset(cmd.Context(), svc, tenant)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "deleted %d products\n", n)
		return nil
	}),
}

// historyCmd prints the audit log.
var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show recent imports and resets for a tenant",
	Args:  cobra.NoArgs,
	RunE: withService(func(cmd *cobra.Command, svc *core.Service, tenant uuid.UUID) error {
		entries, err := svc.History(cmd.Context(), tenant, limitFlag)
		if err != nil {
			return err
		}
		return admin.WriteHistory(cmd.OutOrStdout(), entries)
	}),
}

// migrateCmd applies the schema.
var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply the database schema",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		backend, err := store.Open(cmd.Context(), cfg.Server.Store, cfg.Database)
		if err != nil {
			return err
		}
		defer backend.Close()

		if err := admin.Migrate(cmd.Context(), backend); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "schema applied")
		return nil
	},
}

func init() {
	for _, c := range []*cobra.Command{tokenCmd, seedCmd, resetCmd, historyCmd} {
		c.Flags().StringVar(&tenantFlag, "tenant", "", "Tenant id (uuid)")
		c.MarkFlagRequired("tenant")
	}
	tokenCmd.Flags().StringVar(&userFlag, "user", "", "User id placed in the sub claim")
	tokenCmd.Flags().StringVar(&emailFlag, "email", "", "User email")
	tokenCmd.Flags().DurationVar(&ttlFlag, "ttl", 24*time.Hour, "Token lifetime")
	historyCmd.Flags().IntVar(&limitFlag, "limit", core.DefaultAuditLimit, "Number of entries to show")
	resetCmd.Flags().BoolVar(&forceFlag, "force", false, "Confirm the deletion")

	rootCmd.AddCommand(tokenCmd, seedCmd, resetCmd, historyCmd, migrateCmd)
}

func loadConfig() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	logging.Setup(cfg.Logging.Level, cfg.Logging.Format)
	return cfg, nil
}

func tenantID() (uuid.UUID, error) {
	id, err := uuid.Parse(tenantFlag)
	if err != nil {
		return uuid.Nil, fmt.Errorf("invalid --tenant %q: %w", tenantFlag, err)
	}
	return id, nil
}

// withService opens the configured store and hands a service to fn.
func withService(fn func(cmd *cobra.Command, svc *core.Service, tenant uuid.UUID) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		tenant, err := tenantID()
		if err != nil {
			return err
		}
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		backend, err := store.Open(cmd.Context(), cfg.Server.Store, cfg.Database)
		if err != nil {
			return err
		}
		defer backend.Close()

		if cfg.Server.Store == "memory" {
			slog.Warn("memory store selected; changes are lost when this command exits")
		}

		svc := core.NewService(backend, core.Options{
			MaxRows:       cfg.Import.MaxRows,
			MaxConcurrent: cfg.Import.MaxConcurrent,
			MaxWait:       cfg.Import.MaxWaitTime,
		})
		return fn(cmd, svc, tenant)
	}
}

func main() {
	// Same precedence as the server: .env overrides the environment.
	_ = godotenv.Overload()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
