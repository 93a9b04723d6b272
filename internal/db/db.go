// Package db provides the local SQLite deployment journal.
package db

import (
	"context"
	"embed"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"ferry/internal/constants"
	"ferry/internal/xdg"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/sqlite3"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3" // SQLite driver
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// Config represents journal database configuration
type Config struct {
	// DSN is the SQLite database path
	DSN string
	// MaxOpenConns is the maximum number of open connections
	MaxOpenConns int
	// MaxIdleConns is the maximum number of idle connections
	MaxIdleConns int
	// ConnMaxLifetime is the maximum lifetime of a connection
	ConnMaxLifetime time.Duration
	// ConnMaxIdleTime is the maximum idle time of a connection
	ConnMaxIdleTime time.Duration
}

// getDefaultDatabasePath returns the XDG-compliant database path
func getDefaultDatabasePath() string {
	dataDir, err := xdg.DataDir()
	if err != nil {
		homeDir, _ := os.UserHomeDir()
		return filepath.Join(homeDir, ".local", "share", "ferry", "ferry.db")
	}
	return filepath.Join(dataDir, "ferry.db")
}

// DefaultConfig returns the default SQLite configuration
func DefaultConfig() *Config {
	return &Config{
		DSN:             getDefaultDatabasePath(),
		MaxOpenConns:    constants.DefaultMaxOpenConnections,
		MaxIdleConns:    constants.DefaultMaxIdleConnections,
		ConnMaxLifetime: constants.DefaultConnectionTimeout,
		ConnMaxIdleTime: constants.DefaultIdleTimeout,
	}
}

// DB wraps sqlx.DB with migration support
type DB struct {
	*sqlx.DB
	config *Config
}

// New creates a new journal database connection
func New(cfg *Config) (*DB, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}

	if err := os.MkdirAll(filepath.Dir(cfg.DSN), constants.DirPermissions); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	db, err := sqlx.Open("sqlite3", cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	db.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	return &DB{
		DB:     db,
		config: cfg,
	}, nil
}

// Migrate runs database migrations
func (db *DB) Migrate() error {
	sourceDriver, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return fmt.Errorf("failed to create migration source: %w", err)
	}

	dbInstance, err := sqlite3.WithInstance(db.DB.DB, &sqlite3.Config{})
	if err != nil {
		return fmt.Errorf("failed to create sqlite3 driver instance: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", sourceDriver, "sqlite3", dbInstance)
	if err != nil {
		return fmt.Errorf("failed to create migrator: %w", err)
	}

	if err := m.Up(); err != nil && err != migrate.ErrNoChange {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	return nil
}

// Close closes the database connection
func (db *DB) Close() error {
	return db.DB.Close()
}
