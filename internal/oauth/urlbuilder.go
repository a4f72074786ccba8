package oauth

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/ricky-lee-athena/odoo-demo/internal/config"
	"github.com/ricky-lee-athena/odoo-demo/internal/repository"
	"golang.org/x/oauth2"
)

// CallbackPath is the fixed callback endpoint registered with providers. The
// provider redirects here, never to the frontend directly.
const CallbackPath = "/auth_oauth/api_signin"

// AuthorizationURL is the result handed back to the frontend script.
type AuthorizationURL struct {
	URL      string `json:"url"`
	Provider string `json:"provider"`
}

// URLBuilder constructs provider authorization URLs carrying bridge state.
type URLBuilder struct {
	cfg       *config.Config
	providers repository.ProviderRepository
}

// NewURLBuilder creates a URLBuilder backed by the provider registry.
func NewURLBuilder(cfg *config.Config, providers repository.ProviderRepository) *URLBuilder {
	return &URLBuilder{cfg: cfg, providers: providers}
}

// BuildAuthorizationURL validates the database and provider, then builds the
// provider's authorization URL for the implicit flow with the bridge state
// embedded. Read-only; all failures are configuration errors.
func (b *URLBuilder) BuildAuthorizationURL(ctx context.Context, providerID int64, database, redirectURI string) (*AuthorizationURL, error) {
	if !b.cfg.AllowedDatabase(database) {
		return nil, ErrUnknownDatabase
	}

	provider, err := b.providers.GetProvider(ctx, providerID)
	if err != nil {
		if errors.Is(err, repository.ErrProviderNotFound) {
			return nil, ErrProviderNotFound
		}
		return nil, fmt.Errorf("failed to resolve provider: %w", err)
	}
	if !provider.Enabled {
		return nil, ErrProviderDisabled
	}

	state, err := EncodeState(StateToken{
		Database:   database,
		ProviderID: providerID,
		RedirectTo: redirectURI,
		Frontend:   true,
	})
	if err != nil {
		return nil, err
	}

	conf := &oauth2.Config{
		ClientID:    provider.ClientID,
		RedirectURL: strings.TrimRight(b.cfg.PublicBaseURL, "/") + CallbackPath,
		Scopes:      strings.Fields(provider.Scope),
		Endpoint:    oauth2.Endpoint{AuthURL: provider.AuthEndpoint},
	}

	// The provider returns the token in the redirect fragment, so the flow
	// asks for response_type=token instead of the default code.
	authURL := conf.AuthCodeURL(state, oauth2.SetAuthURLParam("response_type", "token"))

	return &AuthorizationURL{URL: authURL, Provider: provider.Name}, nil
}
