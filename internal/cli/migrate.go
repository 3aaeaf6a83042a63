package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/healthguard/healthguard/internal/infrastructure/postgres"
	pgutil "github.com/healthguard/healthguard/pkg/postgres"
)

func (a *app) newMigrateCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply or roll back the assessment database schema",
	}
	cmd.PersistentFlags().String(keyDatabaseURL, "", "PostgreSQL connection URL (also read from DATABASE_URL)")
	cmd.PersistentFlags().String(keyMigrations, "", "migrations directory (embedded migrations when empty)")
	_ = a.v.BindPFlag(keyDatabaseURL, cmd.PersistentFlags().Lookup(keyDatabaseURL))
	_ = a.v.BindPFlag(keyMigrations, cmd.PersistentFlags().Lookup(keyMigrations))
	_ = a.v.BindEnv(keyDatabaseURL, envPrefix+"_DATABASE_URL", "DATABASE_URL")

	up := &cobra.Command{
		Use:   "up",
		Short: "Apply all pending migrations",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			return a.migrate(pgutil.Up)
		},
	}

	var confirmed bool
	down := &cobra.Command{
		Use:   "down",
		Short: "Roll back every migration, dropping stored assessments",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			if !confirmed {
				return errors.New("migrate down drops all stored assessments; pass --yes to continue")
			}
			return a.migrate(pgutil.Down)
		},
	}
	down.Flags().BoolVar(&confirmed, "yes", false, "confirm the rollback")

	cmd.AddCommand(up, down)
	return cmd
}

func (a *app) migrate(direction pgutil.Direction) error {
	dsn := a.v.GetString(keyDatabaseURL)
	if dsn == "" {
		return errors.New("a database URL is required (--database-url or HEALTHGUARD_DATABASE_URL)")
	}
	if err := postgres.Migrate(dsn, a.v.GetString(keyMigrations), direction); err != nil {
		return fmt.Errorf("failed to migrate %s: %w", direction, err)
	}
	fmt.Fprintf(a.out, "migrations applied (%s)\n", direction)
	return nil
}
