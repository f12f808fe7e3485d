package cli

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/spf13/cobra"

	"storefront-backend/internal/config"
	"storefront-backend/internal/store/postgres"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply or roll back the PostgreSQL schema",
	Long: `Run the embedded PostgreSQL migrations against DATABASE_URL.

Subcommands:
  up      - Apply pending migrations
  down    - Roll back every migration`,
}

var migrateUpCmd = &cobra.Command{
	Use:   "up",
	Short: "Apply pending migrations",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runMigrate(cmd, postgres.MigrateUp)
	},
}

var migrateDownCmd = &cobra.Command{
	Use:   "down",
	Short: "Roll back every migration",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runMigrate(cmd, postgres.MigrateDown)
	},
}

func init() {
	rootCmd.AddCommand(migrateCmd)
	migrateCmd.AddCommand(migrateUpCmd)
	migrateCmd.AddCommand(migrateDownCmd)
}

func runMigrate(cmd *cobra.Command, apply func(*sql.DB) error) error {
	cfg, err := config.Load(envFile)
	if err != nil {
		return err
	}
	if cfg.Driver != config.DriverPostgres {
		return fmt.Errorf("migrations apply to the postgres driver only, DB_DRIVER is %q", cfg.Driver)
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), connectTimeout)
	defer cancel()
	st, err := postgres.Open(ctx, cfg.DatabaseURL)
	if err != nil {
		return err
	}
	defer st.Close()

	if err := apply(st.DB()); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "migrate %s: done\n", cmd.Name())
	return nil
}
