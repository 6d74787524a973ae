package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/morezero/typed-rpc/internal/config"
	"github.com/morezero/typed-rpc/internal/users"
	"github.com/morezero/typed-rpc/pkg/db"
)

func newEnsureDBCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "ensure-db",
		Short: "Create the database and users schema if missing",
		Long:  "Create the database named in DATABASE_URL on the same host, then create the users tables.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.LoadConfig()
			if err != nil {
				return err
			}
			if cfg.DatabaseURL == "" {
				return fmt.Errorf("rpcd ensure-db: DATABASE_URL is required")
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), time.Minute)
			defer cancel()

			if err := db.EnsureDatabase(ctx, cfg.DatabaseURL); err != nil {
				return fmt.Errorf("rpcd ensure-db: %w", err)
			}
			pool, err := db.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns)
			if err != nil {
				return fmt.Errorf("rpcd ensure-db: %w", err)
			}
			defer pool.Close()
			if err := users.NewPGStore(pool).EnsureSchema(ctx); err != nil {
				return fmt.Errorf("rpcd ensure-db: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), "database ready")
			return nil
		},
	}
}
