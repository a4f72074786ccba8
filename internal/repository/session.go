package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/ricky-lee-athena/odoo-demo/internal/db"
	"github.com/segmentio/ksuid"
)

// sessionRepository implements SessionRepository
type sessionRepository struct {
	dbService *db.Service
}

// CreateSession records an authenticated session
func (r *sessionRepository) CreateSession(ctx context.Context, params CreateSessionParams) (*SessionDetail, error) {
	now := time.Now().UTC()
	id := ksuid.New().String()

	query := r.dbService.Rebind(`
		INSERT INTO bridge_sessions (id, user_id, login, created_at, expires_at)
		VALUES (?, ?, ?, ?, ?)`)

	_, err := r.dbService.DB().ExecContext(ctx, query, id, params.UserID, params.Login, now, params.ExpiresAt.UTC())
	if err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	return &SessionDetail{
		ID:        id,
		UserID:    params.UserID,
		Login:     params.Login,
		CreatedAt: now,
		ExpiresAt: params.ExpiresAt.UTC(),
	}, nil
}

// GetSession retrieves a session by id
func (r *sessionRepository) GetSession(ctx context.Context, id string) (*SessionDetail, error) {
	query := r.dbService.Rebind(`
		SELECT id, user_id, login, created_at, expires_at
		FROM bridge_sessions
		WHERE id = ?`)

	var s SessionDetail
	err := r.dbService.DB().QueryRowContext(ctx, query, id).Scan(
		&s.ID, &s.UserID, &s.Login, &s.CreatedAt, &s.ExpiresAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrSessionNotFound
		}
		return nil, fmt.Errorf("failed to get session: %w", err)
	}
	return &s, nil
}
