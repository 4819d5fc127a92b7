package database

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/pantrychef/backend/internal/models"
)

//go:embed migrations/*.sql
var migrationFiles embed.FS

// Models lists every table owned by the service, in dependency order.
func Models() []interface{} {
	return []interface{}{
		&models.User{},
		&models.Ingredient{},
		&models.Recipe{},
		&models.RecipeIngredient{},
		&models.PantryItem{},
		&models.Restriction{},
	}
}

// RunMigrations brings the schema up to date. sqlite uses gorm
// auto-migration; PostgreSQL runs the embedded SQL migrations.
func RunMigrations(db *gorm.DB, logger *zap.Logger) error {
	if db.Dialector.Name() == "sqlite" {
		logger.Info("using gorm auto-migration for sqlite")
		return db.AutoMigrate(Models()...)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("failed to get database handle: %w", err)
	}
	m, err := NewMigrator(sqlDB, logger)
	if err != nil {
		return err
	}
	return m.Up()
}

// Migrator applies the embedded PostgreSQL migrations.
type Migrator struct {
	migrate *migrate.Migrate
	logger  *zap.Logger
}

func NewMigrator(db *sql.DB, logger *zap.Logger) (*Migrator, error) {
	source, err := iofs.New(migrationFiles, "migrations")
	if err != nil {
		return nil, fmt.Errorf("failed to create migration source: %w", err)
	}

	driver, err := postgres.WithInstance(db, &postgres.Config{
		MigrationsTable: "schema_migrations",
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create migration driver: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", source, "postgres", driver)
	if err != nil {
		return nil, fmt.Errorf("failed to create migrate instance: %w", err)
	}

	return &Migrator{migrate: m, logger: logger.Named("migrate")}, nil
}

// Up runs all pending migrations
func (m *Migrator) Up() error {
	from, _ := m.version()

	if err := m.migrate.Up(); err != nil {
		if errors.Is(err, migrate.ErrNoChange) {
			m.logger.Info("no migrations to run", zap.Uint("version", from))
			return nil
		}
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	to, _ := m.version()
	m.logger.Info("migrations applied", zap.Uint("from_version", from), zap.Uint("to_version", to))
	return nil
}

// Down rolls back the given number of migrations.
func (m *Migrator) Down(steps int) error {
	if steps <= 0 {
		return fmt.Errorf("steps must be positive, got %d", steps)
	}
	if err := m.migrate.Steps(-steps); err != nil {
		return fmt.Errorf("failed to roll back migrations: %w", err)
	}
	to, _ := m.version()
	m.logger.Info("migrations rolled back", zap.Int("steps", steps), zap.Uint("version", to))
	return nil
}

func (m *Migrator) version() (uint, error) {
	v, _, err := m.migrate.Version()
	if errors.Is(err, migrate.ErrNilVersion) {
		return 0, nil
	}
	return v, err
}
