// Package db provides database driver abstraction and connection management
// for the bridge's credential and identity tables.
package db

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/ricky-lee-athena/odoo-demo/internal/logger"

	// Database drivers
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
)

// Driver represents the type of database driver
type Driver string

const (
	SQLite     Driver = "sqlite3"
	PostgreSQL Driver = "postgres"
)

// DetectDriver determines the database driver from the connection string
func DetectDriver(connectionString string) Driver {
	connectionString = strings.ToLower(connectionString)

	switch {
	case strings.HasPrefix(connectionString, "postgres://") ||
		strings.HasPrefix(connectionString, "postgresql://") ||
		strings.Contains(connectionString, "host="):
		return PostgreSQL
	default:
		// Plain paths, file: URLs and :memory: are all SQLite
		return SQLite
	}
}

// Open opens a database connection with driver-appropriate pool settings.
func Open(connectionString string) (*sql.DB, Driver, error) {
	driver := DetectDriver(connectionString)

	maxOpen, maxIdle := 25, 5
	var maxLifetime time.Duration = 5 * time.Minute

	if driver == SQLite {
		// SQLite does not benefit from pooling; a single connection also
		// keeps :memory: databases coherent across queries.
		maxOpen, maxIdle, maxLifetime = 1, 1, 0
		if !strings.Contains(connectionString, "?") && connectionString != ":memory:" {
			connectionString += "?_busy_timeout=10000&_journal_mode=WAL&_foreign_keys=on"
		}
	}

	logger.Info("Opening database connection",
		"driver", string(driver),
		"maxOpenConns", maxOpen,
		"maxIdleConns", maxIdle)

	db, err := sql.Open(string(driver), connectionString)
	if err != nil {
		return nil, driver, fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(maxOpen)
	db.SetMaxIdleConns(maxIdle)
	db.SetConnMaxLifetime(maxLifetime)

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, driver, fmt.Errorf("failed to ping database: %w", err)
	}

	if driver == SQLite {
		if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
			_ = db.Close()
			return nil, driver, fmt.Errorf("failed to enable foreign keys: %w", err)
		}
	}

	return db, driver, nil
}

// Rebind converts ?-style placeholders to the driver's positional syntax.
func Rebind(driver Driver, query string) string {
	if driver != PostgreSQL {
		return query
	}
	var sb strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			sb.WriteString(fmt.Sprintf("$%d", n))
			continue
		}
		sb.WriteRune(r)
	}
	return sb.String()
}
