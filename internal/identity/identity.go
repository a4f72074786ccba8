// Package identity resolves provider OAuth tokens to local user records,
// creating users on first login when signup is allowed.
package identity

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/ricky-lee-athena/odoo-demo/internal/config"
	"github.com/ricky-lee-athena/odoo-demo/internal/jwtutil"
	"github.com/ricky-lee-athena/odoo-demo/internal/logger"
	"github.com/ricky-lee-athena/odoo-demo/internal/repository"
)

// CallbackParams carries the provider-supplied material from the callback.
type CallbackParams struct {
	AccessToken string
	IDToken     string
}

// Resolution is the outcome of a successful identity resolution.
type Resolution struct {
	Login       string
	AccessToken string
	UserID      string
}

// externalIdentity is what the provider asserts about the token holder.
type externalIdentity struct {
	UID   string
	Email string
	Name  string
}

// Store authenticates external identities against their provider and maps
// them onto local users. The mapping is keyed on (provider, external uid), so
// the same external account always resolves to the same local user.
type Store struct {
	cfg        *config.Config
	users      repository.UserRepository
	providers  repository.ProviderRepository
	httpClient *http.Client
}

// NewStore creates an identity store. A nil client falls back to a default
// with a sane timeout; the provider round-trip is the only blocking call.
func NewStore(cfg *config.Config, users repository.UserRepository, providers repository.ProviderRepository, client *http.Client) *Store {
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	return &Store{cfg: cfg, users: users, providers: providers, httpClient: client}
}

// AuthenticateOrCreate validates the callback token with the provider and
// returns the resolved login plus the provider token. An unknown external
// account becomes a new local user when signup is allowed; the operation is
// idempotent per external identity.
func (s *Store) AuthenticateOrCreate(ctx context.Context, providerID int64, params CallbackParams) (*Resolution, error) {
	if params.AccessToken == "" {
		return nil, fmt.Errorf("%w: no access token provided", ErrAccessDenied)
	}

	provider, err := s.providers.GetProvider(ctx, providerID)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve provider %d: %w", providerID, err)
	}

	ext, err := s.validate(ctx, provider, params)
	if err != nil {
		return nil, err
	}

	user, err := s.users.GetUserByOAuth(ctx, providerID, ext.UID)
	switch {
	case err == nil:
		if err := s.users.SetOAuthToken(ctx, user.ID, params.AccessToken); err != nil {
			return nil, fmt.Errorf("failed to store provider token: %w", err)
		}
	case errors.Is(err, repository.ErrUserNotFound):
		if !s.cfg.SignupAllowed {
			return nil, fmt.Errorf("%w: signup disabled for unknown identity", ErrAccessDenied)
		}
		user, err = s.signup(ctx, providerID, ext, params.AccessToken)
		if err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}

	return &Resolution{Login: user.Login, AccessToken: params.AccessToken, UserID: user.ID}, nil
}

// validate asks the provider who the token belongs to, preferring id_token
// verification over the validation-endpoint round trip when both are usable.
func (s *Store) validate(ctx context.Context, provider *repository.ProviderDetail, params CallbackParams) (*externalIdentity, error) {
	if params.IDToken != "" && provider.JWKSURI != "" {
		keySet, err := jwtutil.FetchKeySet(ctx, provider.JWKSURI)
		if err != nil {
			return nil, fmt.Errorf("failed to fetch provider keys: %w", err)
		}
		claims, err := jwtutil.ParseAndValidate(ctx, params.IDToken, keySet)
		if err != nil {
			return nil, fmt.Errorf("%w: id_token rejected", ErrAccessDenied)
		}
		return &externalIdentity{UID: claims.Sub, Email: claims.Email, Name: claims.Name}, nil
	}
	return s.validateAccessToken(ctx, provider, params.AccessToken)
}

// validateAccessToken calls the provider's validation endpoint with the
// access token and parses the asserted identity.
func (s *Store) validateAccessToken(ctx context.Context, provider *repository.ProviderDetail, accessToken string) (*externalIdentity, error) {
	if provider.ValidationEndpoint == "" {
		return nil, fmt.Errorf("provider %s has no validation endpoint", provider.Name)
	}

	endpoint := provider.ValidationEndpoint + "?" + url.Values{"access_token": {accessToken}}.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build validation request: %w", err)
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("provider validation request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		logger.Warn("Provider rejected access token",
			"provider", provider.Name, "status", resp.StatusCode)
		return nil, fmt.Errorf("%w: provider rejected token", ErrAccessDenied)
	}

	var body struct {
		Sub    string `json:"sub"`
		UserID string `json:"user_id"`
		Email  string `json:"email"`
		Name   string `json:"name"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("failed to decode validation response: %w", err)
	}

	uid := body.Sub
	if uid == "" {
		uid = body.UserID
	}
	if uid == "" {
		return nil, fmt.Errorf("%w: validation response carries no subject", ErrAccessDenied)
	}

	return &externalIdentity{UID: uid, Email: body.Email, Name: body.Name}, nil
}

// signup creates the local user for a first-time external identity.
func (s *Store) signup(ctx context.Context, providerID int64, ext *externalIdentity, accessToken string) (*repository.UserDetail, error) {
	login := ext.Email
	if login == "" {
		login = fmt.Sprintf("oauth_%d_%s", providerID, ext.UID)
	}
	name := ext.Name
	if name == "" {
		name = login
	}

	user, err := s.users.CreateUser(ctx, repository.CreateUserParams{
		Login:           login,
		Name:            name,
		Email:           ext.Email,
		OAuthProviderID: providerID,
		OAuthUID:        ext.UID,
		AccessToken:     accessToken,
	})
	if err != nil {
		// Concurrent first logins for the same account race on the insert;
		// the unique constraint makes the loser re-read the winner's row.
		if errors.Is(err, repository.ErrDuplicateLogin) {
			return s.users.GetUserByOAuth(ctx, providerID, ext.UID)
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	logger.Info("Created user from oauth signup", "login", user.Login, "provider", providerID)
	return user, nil
}
