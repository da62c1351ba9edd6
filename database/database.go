// Package database opens the platform's SQLite handle. The pure-Go
// modernc driver keeps the binary cgo-free; connections are tuned for a
// single writer with WAL so readers never block behind it.
package database

import (
	"database/sql"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"
)

// Config holds connection settings for the platform database.
type Config struct {
	Path            string        `yaml:"path" env:"DB_PATH" default:"platform.db"`
	MaxOpenConns    int           `yaml:"max_open_conns" env:"DB_MAX_OPEN_CONNS" default:"1"`
	MaxIdleConns    int           `yaml:"max_idle_conns" env:"DB_MAX_IDLE_CONNS" default:"1"`
	ConnMaxLifetime time.Duration `yaml:"conn_max_lifetime" env:"DB_CONN_MAX_LIFETIME" default:"1h"`
}

// ErrPathRequired is returned when no database path is configured.
var ErrPathRequired = fmt.Errorf("database path is required")

// Open opens the SQLite database at cfg.Path, applies connection pool
// limits, and verifies the handle with a ping. The caller owns Close.
func Open(cfg *Config) (*sql.DB, error) {
	if strings.TrimSpace(cfg.Path) == "" {
		return nil, ErrPathRequired
	}

	cleanPath := filepath.Clean(cfg.Path)
	dsn := cleanPath + "?_journal_mode=WAL&_foreign_keys=ON&_busy_timeout=5000&_synchronous=NORMAL"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	// modernc sqlite serializes writes; one open conn avoids SQLITE_BUSY
	// churn under concurrent writers.
	if cfg.MaxOpenConns > 0 {
		db.SetMaxOpenConns(cfg.MaxOpenConns)
	}
	if cfg.MaxIdleConns > 0 {
		db.SetMaxIdleConns(cfg.MaxIdleConns)
	}
	if cfg.ConnMaxLifetime > 0 {
		db.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	}

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	return db, nil
}
