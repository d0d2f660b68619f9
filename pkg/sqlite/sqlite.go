// Package sqlite opens a gorm connection backed by the pure-Go SQLite driver.
// It serves local development and repository tests.
package sqlite

import (
	"fmt"

	"golang-stock-tracker/pkg/postgres"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// Config holds the settings for a SQLite database file.
type Config struct {
	Path     string
	LogLevel string
}

// NewDB opens (creating if needed) the SQLite database at cfg.Path.
// The returned value has the same shape as postgres.NewDB so callers can switch drivers freely.
func NewDB(cfg Config) (*postgres.DB, error) {
	path := cfg.Path
	if path == "" {
		path = "stock-tracker.db"
	}
	dsn := fmt.Sprintf("%s?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)", path)

	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         gormlogger.Default.LogMode(postgres.ParseLogLevel(cfg.LogLevel)),
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	// SQLite serialises writers; a single connection avoids "database is locked" under concurrent requests.
	sqlDB.SetMaxOpenConns(1)

	return &postgres.DB{DB: db}, nil
}
