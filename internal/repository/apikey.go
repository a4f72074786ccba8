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

// apiKeyRepository implements APIKeyRepository
type apiKeyRepository struct {
	dbService *db.Service
}

// CreateKey inserts a key record without touching existing keys. Manual keys
// enter through this path.
func (r *apiKeyRepository) CreateKey(ctx context.Context, params CreateAPIKeyParams) (*APIKeyDetail, error) {
	now := time.Now().UTC()
	id := ksuid.New().String()

	query := r.dbService.Rebind(`
		INSERT INTO res_users_apikeys (id, user_id, name, provenance, key_hash, created_at, expires_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`)

	var expiresAt any
	if params.ExpiresAt != nil {
		expiresAt = params.ExpiresAt.UTC()
	}
	if _, err := r.dbService.DB().ExecContext(ctx, query,
		id, params.UserID, params.Name, params.Provenance, params.KeyHash, now, expiresAt,
	); err != nil {
		return nil, fmt.Errorf("failed to insert api key: %w", err)
	}

	return &APIKeyDetail{
		ID:         id,
		UserID:     params.UserID,
		Name:       params.Name,
		Provenance: params.Provenance,
		KeyHash:    params.KeyHash,
		CreatedAt:  now,
		ExpiresAt:  params.ExpiresAt,
	}, nil
}

// ReplaceOAuthKey atomically removes every OAuth-provenance key for the user
// and inserts the new record. Running both statements in one transaction is
// what keeps concurrent logins from leaving more than one live bridge key.
func (r *apiKeyRepository) ReplaceOAuthKey(ctx context.Context, params CreateAPIKeyParams) (*APIKeyDetail, error) {
	now := time.Now().UTC()
	id := ksuid.New().String()

	deleteQuery := r.dbService.Rebind(`DELETE FROM res_users_apikeys WHERE user_id = ? AND provenance = ?`)
	insertQuery := r.dbService.Rebind(`
		INSERT INTO res_users_apikeys (id, user_id, name, provenance, key_hash, created_at, expires_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`)

	err := r.dbService.WithTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, deleteQuery, params.UserID, ProvenanceOAuth); err != nil {
			return fmt.Errorf("failed to delete previous oauth keys: %w", err)
		}

		var expiresAt any
		if params.ExpiresAt != nil {
			expiresAt = params.ExpiresAt.UTC()
		}
		if _, err := tx.ExecContext(ctx, insertQuery,
			id, params.UserID, params.Name, params.Provenance, params.KeyHash, now, expiresAt,
		); err != nil {
			return fmt.Errorf("failed to insert api key: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return &APIKeyDetail{
		ID:         id,
		UserID:     params.UserID,
		Name:       params.Name,
		Provenance: params.Provenance,
		KeyHash:    params.KeyHash,
		CreatedAt:  now,
		ExpiresAt:  params.ExpiresAt,
	}, nil
}

// DeleteByProvenance removes all keys with the given provenance for a user
// and returns how many were removed. Removing zero keys is not an error.
func (r *apiKeyRepository) DeleteByProvenance(ctx context.Context, userID, provenance string) (int64, error) {
	query := r.dbService.Rebind(`DELETE FROM res_users_apikeys WHERE user_id = ? AND provenance = ?`)
	res, err := r.dbService.DB().ExecContext(ctx, query, userID, provenance)
	if err != nil {
		return 0, fmt.Errorf("failed to delete api keys: %w", err)
	}
	count, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to count deleted api keys: %w", err)
	}
	return count, nil
}

// GetByHash retrieves a key record by the hash of its secret
func (r *apiKeyRepository) GetByHash(ctx context.Context, keyHash string) (*APIKeyDetail, error) {
	query := r.dbService.Rebind(`
		SELECT id, user_id, name, provenance, key_hash, created_at, expires_at
		FROM res_users_apikeys
		WHERE key_hash = ?`)

	key, err := scanAPIKey(r.dbService.DB().QueryRowContext(ctx, query, keyHash))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrAPIKeyNotFound
		}
		return nil, fmt.Errorf("failed to get api key: %w", err)
	}
	return key, nil
}

// ListByUser retrieves all key records for a user, newest first
func (r *apiKeyRepository) ListByUser(ctx context.Context, userID string) ([]*APIKeyDetail, error) {
	query := r.dbService.Rebind(`
		SELECT id, user_id, name, provenance, key_hash, created_at, expires_at
		FROM res_users_apikeys
		WHERE user_id = ?
		ORDER BY created_at DESC`)

	rows, err := r.dbService.DB().QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list api keys: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var keys []*APIKeyDetail
	for rows.Next() {
		var k APIKeyDetail
		var expiresAt sql.NullTime
		if err := rows.Scan(&k.ID, &k.UserID, &k.Name, &k.Provenance, &k.KeyHash, &k.CreatedAt, &expiresAt); err != nil {
			return nil, fmt.Errorf("failed to scan api key: %w", err)
		}
		if expiresAt.Valid {
			t := expiresAt.Time
			k.ExpiresAt = &t
		}
		keys = append(keys, &k)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate api keys: %w", err)
	}
	return keys, nil
}

func scanAPIKey(row *sql.Row) (*APIKeyDetail, error) {
	var k APIKeyDetail
	var expiresAt sql.NullTime
	if err := row.Scan(&k.ID, &k.UserID, &k.Name, &k.Provenance, &k.KeyHash, &k.CreatedAt, &expiresAt); err != nil {
		return nil, err
	}
	if expiresAt.Valid {
		t := expiresAt.Time
		k.ExpiresAt = &t
	}
	return &k, nil
}
