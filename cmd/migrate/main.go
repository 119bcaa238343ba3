// Command migrate runs schema operations for the backend.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"strings"

	"giftshare/internal/config"
	"giftshare/internal/database"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func usage() error {
	return fmt.Errorf("usage: go run ./cmd/migrate <up|auto|status|down>")
}

func run() error {
	flag.Parse()
	if flag.NArg() < 1 {
		return usage()
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	ctx := context.Background()
	cmd := strings.ToLower(strings.TrimSpace(flag.Arg(0)))
	switch cmd {
	case "up":
		if cfg.DBDriver != config.DriverPostgres {
			return fmt.Errorf("sql migrations require DB_DRIVER=postgres, use auto for %s", cfg.DBDriver)
		}
		if err := database.RunMigrations(database.PostgresDSN(cfg)); err != nil {
			return fmt.Errorf("sql migrations failed: %w", err)
		}
		log.Println("sql migrations applied")
	case "auto":
		db, err := database.ConnectWithOptions(cfg, database.ConnectOptions{ApplySchema: false})
		if err != nil {
			return fmt.Errorf("connect database: %w", err)
		}
		defer func() { _ = database.Close() }()
		if err := database.AutoMigrate(ctx, db); err != nil {
			return fmt.Errorf("auto schema apply failed: %w", err)
		}
		log.Println("automigrations applied")
	case "status":
		status, err := database.GetSchemaStatus(cfg)
		if err != nil {
			return fmt.Errorf("schema status failed: %w", err)
		}
		log.Printf("mode=%s env=%s driver=%s run_sql=%t run_auto=%t version=%d dirty=%t pending=%d",
			status.Mode, status.Environment, status.Driver, status.WillRunSQL, status.WillRunAutoMigrate,
			status.CurrentVersion, status.Dirty, len(status.PendingMigrations))
		for _, m := range status.PendingMigrations {
			log.Printf("pending: %s", m)
		}
	case "down":
		if cfg.DBDriver != config.DriverPostgres {
			return fmt.Errorf("rollback requires DB_DRIVER=postgres")
		}
		if err := database.RollbackMigration(database.PostgresDSN(cfg)); err != nil {
			return fmt.Errorf("rollback failed: %w", err)
		}
		log.Println("rolled back one migration")
	default:
		return usage()
	}

	return nil
}
