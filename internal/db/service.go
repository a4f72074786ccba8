package db

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/ricky-lee-athena/odoo-demo/internal/config"
	"github.com/ricky-lee-athena/odoo-demo/internal/logger"
)

// Service wraps the database connection and provides access to it for the
// repository layer.
type Service struct {
	db     *sql.DB
	driver Driver
}

// NewService opens the configured database and ensures the bridge schema.
func NewService(cfg *config.Config) (*Service, error) {
	db, driver, err := Open(cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	svc := &Service{db: db, driver: driver}

	if err := svc.EnsureSchema(context.Background()); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ensure schema: %w", err)
	}

	logger.Info("Database service initialized", "driver", string(driver))

	return svc, nil
}

// Close closes the database connection
func (s *Service) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// DB returns the underlying database connection
func (s *Service) DB() *sql.DB {
	return s.db
}

// Driver returns the database driver type
func (s *Service) Driver() Driver {
	return s.driver
}

// Rebind converts ?-style placeholders for the active driver.
func (s *Service) Rebind(query string) string {
	return Rebind(s.driver, query)
}

// WithTx runs fn inside a transaction, committing on nil error.
func (s *Service) WithTx(ctx context.Context, fn func(*sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			logger.Error("Transaction rollback failed", "error", rbErr)
		}
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}
