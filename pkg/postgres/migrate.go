package postgres

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres" // register postgres driver
	_ "github.com/golang-migrate/migrate/v4/source/file"       // register file source driver
	"github.com/golang-migrate/migrate/v4/source/iofs"
)

// Direction selects which way migrations are applied.
type Direction string

const (
	Up   Direction = "up"
	Down Direction = "down"
)

// SourceURL turns a plain directory into a file:// source URL. Values that
// already carry a scheme are returned untouched.
func SourceURL(dir string) string {
	if strings.Contains(dir, "://") {
		return dir
	}
	return "file://" + dir
}

// RunMigrations applies all pending migrations found in dir.
// No pending migrations is not an error.
func RunMigrations(dsn, dir string) error {
	m, err := migrate.New(SourceURL(dir), dsn)
	if err != nil {
		return fmt.Errorf("postgres: create migrator: %w", err)
	}
	return run(m, Up)
}

// RunMigrationsDown rolls back every migration found in dir.
func RunMigrationsDown(dsn, dir string) error {
	m, err := migrate.New(SourceURL(dir), dsn)
	if err != nil {
		return fmt.Errorf("postgres: create migrator: %w", err)
	}
	return run(m, Down)
}

// RunEmbeddedMigrations applies migrations stored under path inside fsys,
// typically an embed.FS compiled into the binary.
func RunEmbeddedMigrations(dsn string, fsys fs.FS, path string, dir Direction) error {
	src, err := iofs.New(fsys, path)
	if err != nil {
		return fmt.Errorf("postgres: open embedded migrations: %w", err)
	}

	m, err := migrate.NewWithSourceInstance("iofs", src, dsn)
	if err != nil {
		return fmt.Errorf("postgres: create migrator: %w", err)
	}
	return run(m, dir)
}

func run(m *migrate.Migrate, dir Direction) error {
	defer m.Close()

	var err error
	switch dir {
	case Up:
		err = m.Up()
	case Down:
		err = m.Down()
	default:
		return fmt.Errorf("postgres: unknown migration direction %q", dir)
	}

	if err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("postgres: run migrations %s: %w", dir, err)
	}
	return nil
}
