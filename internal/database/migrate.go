package database

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"sort"
	"strconv"
	"strings"

	"giftshare/internal/middleware"

	"github.com/golang-migrate/migrate/v4"
	pgxmigrate "github.com/golang-migrate/migrate/v4/database/pgx/v5"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	_ "github.com/jackc/pgx/v5/stdlib" // registers the "pgx" database/sql driver
)

// Migration describes one versioned SQL migration.
type Migration struct {
	Version uint
	Name    string
}

func (m Migration) String() string {
	return fmt.Sprintf("%06d_%s", m.Version, m.Name)
}

// MigrationsFS holds the versioned Postgres schema.
//
//go:embed migrations/*.sql
var MigrationsFS embed.FS

// GetMigrations lists the embedded migrations ordered by version.
func GetMigrations() ([]Migration, error) {
	entries, err := fs.ReadDir(MigrationsFS, "migrations")
	if err != nil {
		return nil, fmt.Errorf("failed to read migrations directory: %w", err)
	}

	var out []Migration
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasSuffix(name, ".up.sql") {
			continue
		}
		base := strings.TrimSuffix(name, ".up.sql")
		parts := strings.SplitN(base, "_", 2)
		if len(parts) != 2 {
			middleware.Logger.Warn("Skipping migration with invalid naming", slog.String("file", name))
			continue
		}
		version, err := strconv.ParseUint(parts[0], 10, 64)
		if err != nil {
			middleware.Logger.Warn("Skipping migration with invalid version", slog.String("file", name))
			continue
		}
		out = append(out, Migration{Version: uint(version), Name: parts[1]})
	}

	sort.Slice(out, func(i, j int) bool { return out[i].Version < out[j].Version })
	return out, nil
}

// NewMigrator opens a dedicated connection to dsn and binds it to the
// embedded migrations. Callers must Close the returned migrator.
func NewMigrator(dsn string) (*migrate.Migrate, error) {
	src, err := iofs.New(MigrationsFS, "migrations")
	if err != nil {
		return nil, fmt.Errorf("open migration source: %w", err)
	}

	sqlDB, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("open migration connection: %w", err)
	}

	driver, err := pgxmigrate.WithInstance(sqlDB, &pgxmigrate.Config{})
	if err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("init migration driver: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", src, "pgx5", driver)
	if err != nil {
		_ = driver.Close()
		return nil, fmt.Errorf("init migrator: %w", err)
	}
	return m, nil
}

// RunMigrations applies every pending migration against dsn.
func RunMigrations(dsn string) error {
	m, err := NewMigrator(dsn)
	if err != nil {
		return err
	}
	defer closeMigrator(m)

	before, _, _ := currentVersion(m)
	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("apply migrations: %w", err)
	}
	after, _, _ := currentVersion(m)
	if after != before {
		middleware.Logger.Info("Migrations applied", slog.Uint64("from", uint64(before)), slog.Uint64("to", uint64(after)))
	} else {
		middleware.Logger.Debug("No pending migrations", slog.Uint64("version", uint64(after)))
	}
	return nil
}

// RollbackMigration reverts the most recently applied migration.
func RollbackMigration(dsn string) error {
	m, err := NewMigrator(dsn)
	if err != nil {
		return err
	}
	defer closeMigrator(m)

	version, dirty, err := currentVersion(m)
	if err != nil {
		return err
	}
	if version == 0 {
		return errors.New("no migration has been applied")
	}
	if dirty {
		return fmt.Errorf("schema version %d is dirty, fix it manually before rolling back", version)
	}

	middleware.Logger.Info("Rolling back migration", slog.Uint64("version", uint64(version)))
	if err := m.Steps(-1); err != nil {
		return fmt.Errorf("rollback migration %d: %w", version, err)
	}
	return nil
}

// MigrationVersion reports the applied schema version; 0 means none.
func MigrationVersion(dsn string) (version uint, dirty bool, err error) {
	m, err := NewMigrator(dsn)
	if err != nil {
		return 0, false, err
	}
	defer closeMigrator(m)
	return currentVersion(m)
}

func currentVersion(m *migrate.Migrate) (uint, bool, error) {
	version, dirty, err := m.Version()
	if errors.Is(err, migrate.ErrNilVersion) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("read schema version: %w", err)
	}
	return version, dirty, nil
}

func closeMigrator(m *migrate.Migrate) {
	srcErr, dbErr := m.Close()
	if srcErr != nil || dbErr != nil {
		middleware.Logger.Warn("Failed to close migrator",
			slog.Any("source_error", srcErr), slog.Any("database_error", dbErr))
	}
}
