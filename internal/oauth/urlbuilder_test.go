package oauth

import (
	"context"
	"errors"
	"net/url"
	"testing"

	"github.com/ricky-lee-athena/odoo-demo/internal/config"
	"github.com/ricky-lee-athena/odoo-demo/internal/repository"
	"github.com/ricky-lee-athena/odoo-demo/internal/testutil"
)

func newTestBuilder(t *testing.T) (*URLBuilder, repository.Repository) {
	t.Helper()

	dbService := testutil.TestDatabase(t)
	repo := repository.NewRepository(dbService)
	cfg := &config.Config{
		AppEnv:         config.EnvTest,
		DatabaseFilter: "odoo",
		PublicBaseURL:  "http://localhost:8069",
	}
	return NewURLBuilder(cfg, repo.Providers()), repo
}

func TestBuildAuthorizationURL(t *testing.T) {
	builder, repo := newTestBuilder(t)
	testutil.CreateTestProvider(t, repo, 3)

	result, err := builder.BuildAuthorizationURL(context.Background(), 3, "odoo", "http://localhost:3000/oauth-callback")
	if err != nil {
		t.Fatalf("BuildAuthorizationURL error: %v", err)
	}
	if result.Provider != "Google" {
		t.Errorf("expected provider name Google, got %s", result.Provider)
	}

	u, err := url.Parse(result.URL)
	if err != nil {
		t.Fatalf("result URL does not parse: %v", err)
	}
	q := u.Query()

	if got := q.Get("response_type"); got != "token" {
		t.Errorf("response_type = %q, want token", got)
	}
	if got := q.Get("client_id"); got != "test-client-id" {
		t.Errorf("client_id = %q, want test-client-id", got)
	}
	if got := q.Get("redirect_uri"); got != "http://localhost:8069"+CallbackPath {
		t.Errorf("redirect_uri = %q, want bridge callback", got)
	}
	if got := q.Get("scope"); got != "openid email profile" {
		t.Errorf("scope = %q, want provider scope", got)
	}

	state, err := DecodeState(q.Get("state"))
	if err != nil {
		t.Fatalf("state parameter does not decode: %v", err)
	}
	want := StateToken{Database: "odoo", ProviderID: 3, RedirectTo: "http://localhost:3000/oauth-callback", Frontend: true}
	if *state != want {
		t.Errorf("state = %+v, want %+v", *state, want)
	}
}

func TestBuildAuthorizationURL_Errors(t *testing.T) {
	builder, repo := newTestBuilder(t)
	testutil.CreateTestProvider(t, repo, 3)

	if _, err := repo.Providers().CreateProvider(context.Background(), repository.CreateProviderParams{
		ID: 4, Name: "Disabled", Enabled: false,
	}); err != nil {
		t.Fatalf("failed to create disabled provider: %v", err)
	}

	tests := []struct {
		name       string
		providerID int64
		database   string
		wantErr    error
	}{
		{"unknown database", 3, "other", ErrUnknownDatabase},
		{"empty database", 3, "", ErrUnknownDatabase},
		{"missing provider", 99, "odoo", ErrProviderNotFound},
		{"disabled provider", 4, "odoo", ErrProviderDisabled},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := builder.BuildAuthorizationURL(context.Background(), tt.providerID, tt.database, "http://localhost:3000/cb")
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("got %v, want %v", err, tt.wantErr)
			}
		})
	}
}
