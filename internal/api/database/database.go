// Package database opens the account datastore selected by configuration.
package database

import (
	"fmt"

	"golang-stock-tracker/internal/entity"
	pkgconfig "golang-stock-tracker/pkg/config"
	"golang-stock-tracker/pkg/postgres"
	"golang-stock-tracker/pkg/sqlite"

	"gorm.io/gorm"
)

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// Open connects to PostgreSQL or SQLite depending on cfg.Driver.
// SQLite schemas are created with AutoMigrate; PostgreSQL schemas are owned by the migrate command.
func Open(cfg pkgconfig.Database) (*postgres.DB, error) {
	switch cfg.Driver {
	case "", DriverPostgres:
		return postgres.NewDB(PostgresConfig(cfg))
	case DriverSQLite:
		db, err := sqlite.NewDB(sqlite.Config{Path: cfg.SQLitePath, LogLevel: cfg.LogLevel})
		if err != nil {
			return nil, err
		}
		if err := AutoMigrate(db.DB); err != nil {
			return nil, fmt.Errorf("failed to migrate sqlite schema: %w", err)
		}
		return db, nil
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}
}

// PostgresConfig maps the shared database settings onto postgres.Config.
func PostgresConfig(cfg pkgconfig.Database) postgres.Config {
	return postgres.Config{
		Host:            cfg.Host,
		Port:            cfg.Port,
		User:            cfg.User,
		Password:        cfg.Password,
		DBName:          cfg.DBName,
		SSLMode:         cfg.SSLMode,
		TimeZone:        cfg.TimeZone,
		MaxIdleConns:    cfg.MaxIdleConns,
		MaxOpenConns:    cfg.MaxOpenConns,
		ConnMaxLifetime: cfg.ConnMaxLifetime,
		LogLevel:        cfg.LogLevel,
	}
}

// AutoMigrate creates or updates the tables for every persisted entity.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&entity.Account{},
		&entity.WatchlistEntry{},
		&entity.PredictionRecord{},
		&entity.Stock{},
	)
}
