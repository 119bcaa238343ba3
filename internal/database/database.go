// Package database handles database connections and migrations.
package database

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"giftshare/internal/config"
	"giftshare/internal/middleware"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var (
	// DB is the global primary database connection.
	DB *gorm.DB
	// ReadDB is the optional read replica connection.
	ReadDB *gorm.DB
)

// CustomGormLogger integrates GORM with slog
type CustomGormLogger struct {
	logger *slog.Logger
	Config logger.Config
}

// LogMode sets the logging level and returns a new interface instance.
func (l *CustomGormLogger) LogMode(level logger.LogLevel) logger.Interface {
	newlogger := *l
	newlogger.Config.LogLevel = level
	return &newlogger
}

// Info logs an informational message with context.
func (l *CustomGormLogger) Info(ctx context.Context, msg string, data ...any) {
	if l.Config.LogLevel >= logger.Info {
		l.logger.InfoContext(ctx, fmt.Sprintf(msg, data...))
	}
}

// Warn logs a warning message with context.
func (l *CustomGormLogger) Warn(ctx context.Context, msg string, data ...any) {
	if l.Config.LogLevel >= logger.Warn {
		l.logger.WarnContext(ctx, fmt.Sprintf(msg, data...))
	}
}

func (l *CustomGormLogger) Error(ctx context.Context, msg string, data ...any) {
	if l.Config.LogLevel >= logger.Error {
		l.logger.ErrorContext(ctx, fmt.Sprintf(msg, data...))
	}
}

// Trace logs trace-level information including SQL queries and execution time.
func (l *CustomGormLogger) Trace(ctx context.Context, begin time.Time, fc func() (string, int64), err error) {
	if l.Config.LogLevel <= logger.Silent {
		return
	}

	elapsed := time.Since(begin)
	sql, rows := fc()

	switch {
	case err != nil && l.Config.LogLevel >= logger.Error && !errors.Is(err, gorm.ErrRecordNotFound):
		l.logger.ErrorContext(ctx, "GORM query error",
			slog.String("sql", sql),
			slog.Int64("rows", rows),
			slog.Duration("elapsed", elapsed),
			slog.String("error", err.Error()),
		)
	case elapsed > l.Config.SlowThreshold && l.Config.SlowThreshold != 0 && l.Config.LogLevel >= logger.Warn:
		l.logger.WarnContext(ctx, "GORM slow query",
			slog.String("sql", sql),
			slog.Int64("rows", rows),
			slog.Duration("elapsed", elapsed),
		)
	case l.Config.LogLevel >= logger.Info:
		l.logger.InfoContext(ctx, "GORM query",
			slog.String("sql", sql),
			slog.Int64("rows", rows),
			slog.Duration("elapsed", elapsed),
		)
	}
}

// ConnectOptions controls side effects of ConnectWithOptions.
type ConnectOptions struct {
	ApplySchema bool
}

// PostgresDSN builds a keyword/value connection string for the primary database.
func PostgresDSN(cfg *config.Config) string {
	return postgresDSN(cfg.DBHost, cfg.DBPort, cfg.DBUser, cfg.DBPassword, cfg.DBName, cfg.DBSSLMode)
}

func postgresDSN(host, port, user, password, name, sslMode string) string {
	if sslMode == "" {
		sslMode = "disable"
	}
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		host, port, user, password, name, sslMode,
	)
}

// SQLiteDSN builds a SQLite DSN with foreign key enforcement enabled.
func SQLiteDSN(path string) string {
	if path == "" {
		path = "giftshare.db"
	}
	sep := "?"
	if strings.Contains(path, "?") {
		sep = "&"
	}
	return path + sep + "_foreign_keys=on&_busy_timeout=5000"
}

func newGormLogger() *CustomGormLogger {
	return &CustomGormLogger{
		logger: middleware.Logger,
		Config: logger.Config{
			SlowThreshold:             200 * time.Millisecond,
			LogLevel:                  logger.Warn,
			IgnoreRecordNotFoundError: true,
			Colorful:                  false,
		},
	}
}

func gormConfig() *gorm.Config {
	return &gorm.Config{
		Logger:         newGormLogger(),
		TranslateError: true,
	}
}

// Connect opens the primary database and applies the schema.
func Connect(cfg *config.Config) (*gorm.DB, error) {
	return ConnectWithOptions(cfg, ConnectOptions{ApplySchema: true})
}

// ConnectWithOptions opens the primary database selected by DB_DRIVER.
func ConnectWithOptions(cfg *config.Config, opts ConnectOptions) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch cfg.DBDriver {
	case config.DriverSQLite:
		dialector = sqlite.Open(SQLiteDSN(cfg.DBSQLitePath))
	case config.DriverPostgres, "":
		dialector = postgres.Open(PostgresDSN(cfg))
	default:
		return nil, fmt.Errorf("unsupported DB_DRIVER %q", cfg.DBDriver)
	}

	dbInstance, err := gorm.Open(dialector, gormConfig())
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if cfg.DBDriver == config.DriverSQLite {
		if err := dbInstance.Exec("PRAGMA foreign_keys = ON").Error; err != nil {
			closeQuietly(dbInstance)
			return nil, fmt.Errorf("enable sqlite foreign keys: %w", err)
		}
	}

	if err := configurePool(dbInstance, cfg); err != nil {
		closeQuietly(dbInstance)
		return nil, err
	}

	middleware.Logger.Info("Database connected successfully", slog.String("driver", cfg.DBDriver))

	if opts.ApplySchema {
		if err := ApplySchema(context.Background(), dbInstance, cfg); err != nil {
			closeQuietly(dbInstance)
			return nil, err
		}
		middleware.Logger.Info("Database schema ready")
	}

	DB = dbInstance
	return DB, nil
}

// ConnectRead opens the read replica when DB_READ_HOST is set. Without a
// replica, or when it is unreachable, reads fall back to the primary.
func ConnectRead(cfg *config.Config) *gorm.DB {
	if cfg.DBDriver != config.DriverPostgres || cfg.DBReadHost == "" {
		ReadDB = nil
		return nil
	}

	port := firstNonEmpty(cfg.DBReadPort, cfg.DBPort)
	user := firstNonEmpty(cfg.DBReadUser, cfg.DBUser)
	password := firstNonEmpty(cfg.DBReadPassword, cfg.DBPassword)
	dsn := postgresDSN(cfg.DBReadHost, port, user, password, cfg.DBName, cfg.DBSSLMode)

	readInstance, err := gorm.Open(postgres.Open(dsn), gormConfig())
	if err == nil {
		err = configurePool(readInstance, cfg)
	}
	if err != nil {
		middleware.Logger.Warn("Read replica unavailable, reads use the primary",
			slog.String("host", cfg.DBReadHost), slog.String("error", err.Error()))
		ReadDB = nil
		return nil
	}

	middleware.Logger.Info("Read replica connected", slog.String("host", cfg.DBReadHost))
	ReadDB = readInstance
	return ReadDB
}

// GetReadDB returns the read replica, or nil when none is configured.
func GetReadDB() *gorm.DB {
	return ReadDB
}

// Close closes the primary and replica connections.
func Close() error {
	var errs []error
	for _, db := range []*gorm.DB{ReadDB, DB} {
		if db == nil {
			continue
		}
		sqlDB, err := db.DB()
		if err != nil {
			errs = append(errs, err)
			continue
		}
		errs = append(errs, sqlDB.Close())
	}
	ReadDB = nil
	DB = nil
	return errors.Join(errs...)
}

func closeQuietly(db *gorm.DB) {
	if sqlDB, err := db.DB(); err == nil {
		_ = sqlDB.Close()
	}
}

func configurePool(db *gorm.DB, cfg *config.Config) error {
	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("get sql db: %w", err)
	}
	if cfg.DBDriver == config.DriverSQLite {
		// SQLite serializes writers; a single connection avoids SQLITE_BUSY.
		sqlDB.SetMaxOpenConns(1)
		return nil
	}
	if cfg.DBMaxOpenConns > 0 {
		sqlDB.SetMaxOpenConns(cfg.DBMaxOpenConns)
	}
	if cfg.DBMaxIdleConns > 0 {
		sqlDB.SetMaxIdleConns(cfg.DBMaxIdleConns)
	}
	if cfg.DBConnMaxLifetimeMinutes > 0 {
		sqlDB.SetConnMaxLifetime(time.Duration(cfg.DBConnMaxLifetimeMinutes) * time.Minute)
	}
	return nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
