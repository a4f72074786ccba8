package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/ricky-lee-athena/odoo-demo/internal/db"
)

// providerRepository implements ProviderRepository
type providerRepository struct {
	dbService *db.Service
}

// GetProvider retrieves a provider configuration row by id
func (r *providerRepository) GetProvider(ctx context.Context, id int64) (*ProviderDetail, error) {
	query := r.dbService.Rebind(`
		SELECT id, name, enabled, client_id, auth_endpoint, validation_endpoint, jwks_uri, scope
		FROM auth_oauth_provider
		WHERE id = ?`)

	var p ProviderDetail
	err := r.dbService.DB().QueryRowContext(ctx, query, id).Scan(
		&p.ID, &p.Name, &p.Enabled, &p.ClientID,
		&p.AuthEndpoint, &p.ValidationEndpoint, &p.JWKSURI, &p.Scope,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrProviderNotFound
		}
		return nil, fmt.Errorf("failed to get provider: %w", err)
	}

	return &p, nil
}

// CreateProvider inserts a provider configuration row
func (r *providerRepository) CreateProvider(ctx context.Context, params CreateProviderParams) (*ProviderDetail, error) {
	query := r.dbService.Rebind(`
		INSERT INTO auth_oauth_provider
			(id, name, enabled, client_id, auth_endpoint, validation_endpoint, jwks_uri, scope)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`)

	_, err := r.dbService.DB().ExecContext(ctx, query,
		params.ID, params.Name, params.Enabled, params.ClientID,
		params.AuthEndpoint, params.ValidationEndpoint, params.JWKSURI, params.Scope,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create provider: %w", err)
	}

	return &ProviderDetail{
		ID:                 params.ID,
		Name:               params.Name,
		Enabled:            params.Enabled,
		ClientID:           params.ClientID,
		AuthEndpoint:       params.AuthEndpoint,
		ValidationEndpoint: params.ValidationEndpoint,
		JWKSURI:            params.JWKSURI,
		Scope:              params.Scope,
	}, nil
}
