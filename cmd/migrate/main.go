package main

import (
	"database/sql"
	"flag"
	"log"
	"os"

	_ "github.com/lib/pq"
	"go.uber.org/zap"

	"github.com/pantrychef/backend/config"
	"github.com/pantrychef/backend/internal/database"
	"github.com/pantrychef/backend/internal/logger"
)

func main() {
	direction := flag.String("direction", "up", "Migration direction: up or down")
	steps := flag.Int("steps", 1, "Number of migrations to roll back when direction is down")
	flag.Parse()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	zl, err := logger.New(logger.Config{Level: cfg.LogLevel, Format: cfg.LogFormat, Development: cfg.Environment.Verbose()})
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer func() { _ = zl.Sync() }()

	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		dsn = cfg.DatabaseURL()
	}

	db, err := sql.Open("postgres", dsn)
	if err != nil {
		zl.Fatal("failed to open database", zap.Error(err))
	}
	defer db.Close()

	m, err := database.NewMigrator(db, zl)
	if err != nil {
		zl.Fatal("failed to create migrator", zap.Error(err))
	}

	switch *direction {
	case "up":
		err = m.Up()
	case "down":
		err = m.Down(*steps)
	default:
		zl.Fatal("unknown direction", zap.String("direction", *direction))
	}
	if err != nil {
		zl.Fatal("migration failed", zap.String("direction", *direction), zap.Error(err))
	}
}
