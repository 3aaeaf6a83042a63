package postgres

import (
	"embed"
	"fmt"

	pgutil "github.com/healthguard/healthguard/pkg/postgres"
)

//go:embed migrations/*.sql
var migrationFiles embed.FS

// Migrate applies the schema migrations in the given direction. An empty dir
// uses the migrations compiled into the binary.
func Migrate(dsn, dir string, direction pgutil.Direction) error {
	if dir == "" {
		return pgutil.RunEmbeddedMigrations(dsn, migrationFiles, "migrations", direction)
	}

	switch direction {
	case pgutil.Up:
		return pgutil.RunMigrations(dsn, dir)
	case pgutil.Down:
		return pgutil.RunMigrationsDown(dsn, dir)
	default:
		return fmt.Errorf("unknown migration direction %q", direction)
	}
}
