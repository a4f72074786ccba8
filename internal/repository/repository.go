package repository

import (
	"context"
	"time"

	"github.com/ricky-lee-athena/odoo-demo/internal/db"
)

// Credential provenance values. Keys minted by the OAuth bridge carry
// ProvenanceOAuth so rotation and revocation never touch keys a user created
// by hand, regardless of how those keys are labeled.
const (
	ProvenanceManual = "manual"
	ProvenanceOAuth  = "oauth"
)

// ProviderRepository provides access to OAuth provider configuration rows
type ProviderRepository interface {
	GetProvider(ctx context.Context, id int64) (*ProviderDetail, error)
	CreateProvider(ctx context.Context, params CreateProviderParams) (*ProviderDetail, error)
}

// UserRepository provides high-level operations on user and group records
type UserRepository interface {
	GetUser(ctx context.Context, id string) (*UserDetail, error)
	GetUserByLogin(ctx context.Context, login string) (*UserDetail, error)
	GetUserByOAuth(ctx context.Context, providerID int64, oauthUID string) (*UserDetail, error)
	CreateUser(ctx context.Context, params CreateUserParams) (*UserDetail, error)
	SetOAuthToken(ctx context.Context, userID, accessToken string) error
	SetActive(ctx context.Context, userID string, active bool) error
	MaxKeyDuration(ctx context.Context, userID string) (int64, error)
	CreateGroup(ctx context.Context, params CreateGroupParams) error
	AddUserToGroup(ctx context.Context, userID string, groupID int64) error
}

// APIKeyRepository provides operations on API key records
type APIKeyRepository interface {
	CreateKey(ctx context.Context, params CreateAPIKeyParams) (*APIKeyDetail, error)
	ReplaceOAuthKey(ctx context.Context, params CreateAPIKeyParams) (*APIKeyDetail, error)
	DeleteByProvenance(ctx context.Context, userID, provenance string) (int64, error)
	GetByHash(ctx context.Context, keyHash string) (*APIKeyDetail, error)
	ListByUser(ctx context.Context, userID string) ([]*APIKeyDetail, error)
}

// SessionRepository provides operations on authenticated session records
type SessionRepository interface {
	CreateSession(ctx context.Context, params CreateSessionParams) (*SessionDetail, error)
	GetSession(ctx context.Context, id string) (*SessionDetail, error)
}

// Repository aggregates all repository interfaces
type Repository interface {
	Providers() ProviderRepository
	Users() UserRepository
	APIKeys() APIKeyRepository
	Sessions() SessionRepository
}

// CreateProviderParams represents parameters for creating a provider row
type CreateProviderParams struct {
	ID                 int64
	Name               string
	Enabled            bool
	ClientID           string
	AuthEndpoint       string
	ValidationEndpoint string
	JWKSURI            string
	Scope              string
}

// ProviderDetail represents an OAuth provider configuration
type ProviderDetail struct {
	ID                 int64  `json:"id"`
	Name               string `json:"name"`
	Enabled            bool   `json:"enabled"`
	ClientID           string `json:"client_id"`
	AuthEndpoint       string `json:"auth_endpoint"`
	ValidationEndpoint string `json:"validation_endpoint"`
	JWKSURI            string `json:"jwks_uri"`
	Scope              string `json:"scope"`
}

// CreateUserParams represents parameters for creating a user
type CreateUserParams struct {
	Login           string
	Name            string
	Email           string
	OAuthProviderID int64
	OAuthUID        string
	AccessToken     string
}

// UserDetail represents a user record as the bridge sees it
type UserDetail struct {
	ID              string    `json:"id"`
	Login           string    `json:"login"`
	Name            string    `json:"name"`
	Email           string    `json:"email"`
	Active          bool      `json:"active"`
	OAuthProviderID int64     `json:"oauth_provider_id,omitempty"`
	OAuthUID        string    `json:"oauth_uid,omitempty"`
	OAuthToken      string    `json:"-"`
	CreatedAt       time.Time `json:"created_at"`
}

// CreateGroupParams represents parameters for creating a group
type CreateGroupParams struct {
	ID             int64
	Name           string
	APIKeyDuration int64
}

// CreateAPIKeyParams represents parameters for creating an API key record
type CreateAPIKeyParams struct {
	UserID     string
	Name       string
	Provenance string
	KeyHash    string
	ExpiresAt  *time.Time
}

// APIKeyDetail represents a stored API key record. The plaintext secret is
// never part of this struct; only its hash is persisted.
type APIKeyDetail struct {
	ID         string     `json:"id"`
	UserID     string     `json:"user_id"`
	Name       string     `json:"name"`
	Provenance string     `json:"provenance"`
	KeyHash    string     `json:"-"`
	CreatedAt  time.Time  `json:"created_at"`
	ExpiresAt  *time.Time `json:"expires_at,omitempty"`
}

// CreateSessionParams represents parameters for creating a session
type CreateSessionParams struct {
	UserID    string
	Login     string
	ExpiresAt time.Time
}

// SessionDetail represents an authenticated session
type SessionDetail struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Login     string    `json:"login"`
	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

// repositoryImpl implements the Repository interface using the database service
type repositoryImpl struct {
	providers ProviderRepository
	users     UserRepository
	apiKeys   APIKeyRepository
	sessions  SessionRepository
}

// NewRepository creates a new repository instance
func NewRepository(dbService *db.Service) Repository {
	return &repositoryImpl{
		providers: &providerRepository{dbService: dbService},
		users:     &userRepository{dbService: dbService},
		apiKeys:   &apiKeyRepository{dbService: dbService},
		sessions:  &sessionRepository{dbService: dbService},
	}
}

func (r *repositoryImpl) Providers() ProviderRepository { return r.providers }
func (r *repositoryImpl) Users() UserRepository         { return r.users }
func (r *repositoryImpl) APIKeys() APIKeyRepository     { return r.apiKeys }
func (r *repositoryImpl) Sessions() SessionRepository   { return r.sessions }
