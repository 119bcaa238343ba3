package database

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"giftshare/internal/config"
	"giftshare/internal/middleware"

	"gorm.io/gorm"
)

// Supported DB_SCHEMA_MODE values.
const (
	SchemaModeHybrid = "hybrid"
	SchemaModeSQL    = "sql"
	SchemaModeAuto   = "auto"
)

// SchemaStatus describes what ApplySchema would do and where the schema stands.
type SchemaStatus struct {
	Mode               string
	Environment        string
	Driver             string
	WillRunSQL         bool
	WillRunAutoMigrate bool
	CurrentVersion     uint
	Dirty              bool
	PendingMigrations  []Migration
}

func isProdLikeEnv(env string) bool {
	e := strings.ToLower(strings.TrimSpace(env))
	return e == "production" || e == "prod" || e == "staging" || e == "stage"
}

func normalizedSchemaMode(cfg *config.Config) string {
	mode := strings.ToLower(strings.TrimSpace(cfg.DBSchemaMode))
	if mode == "" {
		return SchemaModeHybrid
	}
	return mode
}

// schemaPolicy decides between versioned SQL migrations and GORM AutoMigrate.
// The SQL migrations are Postgres-only, so SQLite always uses AutoMigrate.
func schemaPolicy(cfg *config.Config) (runSQL bool, runAuto bool, err error) {
	mode := normalizedSchemaMode(cfg)
	prodLike := isProdLikeEnv(cfg.Env)

	if cfg.DBDriver == config.DriverSQLite {
		if mode == SchemaModeSQL {
			return false, false, fmt.Errorf("DB_SCHEMA_MODE=sql requires DB_DRIVER=postgres")
		}
		if mode != SchemaModeAuto && mode != SchemaModeHybrid {
			return false, false, fmt.Errorf("unsupported DB_SCHEMA_MODE %q", mode)
		}
		return false, true, nil
	}

	switch mode {
	case SchemaModeSQL:
		return true, false, nil
	case SchemaModeAuto:
		if prodLike && !cfg.DBAutoMigrateAllowDestructive {
			return false, false, fmt.Errorf("refusing DB_SCHEMA_MODE=auto in %q without DB_AUTOMIGRATE_ALLOW_DESTRUCTIVE=true", cfg.Env)
		}
		return false, true, nil
	case SchemaModeHybrid:
		return true, !prodLike, nil
	default:
		return false, false, fmt.Errorf("unsupported DB_SCHEMA_MODE %q", mode)
	}
}

// AutoMigrate creates or updates the tables of PersistentModels.
func AutoMigrate(ctx context.Context, db *gorm.DB) error {
	return db.WithContext(ctx).AutoMigrate(PersistentModels()...)
}

// ApplySchema brings the schema up to date according to DB_SCHEMA_MODE.
func ApplySchema(ctx context.Context, db *gorm.DB, cfg *config.Config) error {
	runSQL, runAuto, err := schemaPolicy(cfg)
	if err != nil {
		return err
	}

	if runSQL {
		if err := RunMigrations(PostgresDSN(cfg)); err != nil {
			return fmt.Errorf("run sql migrations: %w", err)
		}
	}

	if runAuto {
		mode := normalizedSchemaMode(cfg)
		if mode == SchemaModeAuto && cfg.DBAutoMigrateAllowDestructive {
			middleware.Logger.Warn("DB_AUTOMIGRATE_ALLOW_DESTRUCTIVE=true set for DB_SCHEMA_MODE=auto; review schema diffs before production deployment")
		}
		middleware.Logger.Info("Running GORM AutoMigrate",
			slog.String("mode", mode), slog.String("env", cfg.Env), slog.String("driver", cfg.DBDriver))
		if err := AutoMigrate(ctx, db); err != nil {
			return fmt.Errorf("auto-migrate: %w", err)
		}
	}

	return nil
}

// GetSchemaStatus reports the schema policy and, for SQL mode, the pending migrations.
func GetSchemaStatus(cfg *config.Config) (*SchemaStatus, error) {
	runSQL, runAuto, err := schemaPolicy(cfg)
	if err != nil {
		return nil, err
	}

	status := &SchemaStatus{
		Mode:               normalizedSchemaMode(cfg),
		Environment:        cfg.Env,
		Driver:             cfg.DBDriver,
		WillRunSQL:         runSQL,
		WillRunAutoMigrate: runAuto,
	}
	if !runSQL {
		return status, nil
	}

	version, dirty, err := MigrationVersion(PostgresDSN(cfg))
	if err != nil {
		return nil, err
	}
	status.CurrentVersion = version
	status.Dirty = dirty

	all, err := GetMigrations()
	if err != nil {
		return nil, err
	}
	status.PendingMigrations = pendingAfter(all, version)
	return status, nil
}

func pendingAfter(all []Migration, version uint) []Migration {
	var pending []Migration
	for _, m := range all {
		if m.Version > version {
			pending = append(pending, m)
		}
	}
	return pending
}
