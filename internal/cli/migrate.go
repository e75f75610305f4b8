package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/spec-kit/helpdesk-service/internal/persistence"
)

func newMigrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply SQL migrations to the configured database",
		Args:  cobra.NoArgs,
		RunE:  runMigrate,
	}
	cmd.Flags().String("dir", "", "migrations directory (defaults to POSTGRES_MIGRATIONS_DIR)")
	return cmd
}

func runMigrate(cmd *cobra.Command, _ []string) error {
	rt, err := loadRuntime()
	if err != nil {
		return err
	}
	defer rt.logger.Sync() //nolint:errcheck

	dir, _ := cmd.Flags().GetString("dir")
	if dir == "" {
		dir = rt.cfg.Postgres.MigrationsDir
	}

	pg, err := rt.openPostgres(cmd.Context())
	if err != nil {
		return err
	}
	defer pg.Close()

	if err := persistence.RunMigrations(cmd.Context(), pg.Pool, dir, rt.logger); err != nil {
		return fmt.Errorf("running migrations: %w", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "migrations from %s applied\n", dir)
	return nil
}
