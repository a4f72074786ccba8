// Package testutil provides shared helpers for database-backed tests.
package testutil

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/ricky-lee-athena/odoo-demo/internal/config"
	"github.com/ricky-lee-athena/odoo-demo/internal/db"
	"github.com/ricky-lee-athena/odoo-demo/internal/repository"
)

// TestDatabase creates an in-memory SQLite database with the bridge schema.
func TestDatabase(t *testing.T) *db.Service {
	t.Helper()

	cfg := &config.Config{
		DatabaseURL: ":memory:",
		AppEnv:      config.EnvTest,
	}

	dbService, err := db.NewService(cfg)
	if err != nil {
		t.Fatalf("Failed to create test database: %v", err)
	}

	t.Cleanup(func() {
		if err := dbService.Close(); err != nil {
			t.Errorf("Failed to close test database: %v", err)
		}
	})

	return dbService
}

// TestServer creates a test HTTP server - mux should be set up by the test
func TestServer(t *testing.T, mux *http.ServeMux) *httptest.Server {
	t.Helper()

	server := httptest.NewServer(mux)
	t.Cleanup(func() {
		server.Close()
	})

	return server
}

// CreateTestProvider inserts an enabled provider row and returns it.
func CreateTestProvider(t *testing.T, repo repository.Repository, id int64) *repository.ProviderDetail {
	t.Helper()

	provider, err := repo.Providers().CreateProvider(context.Background(), repository.CreateProviderParams{
		ID:                 id,
		Name:               "Google",
		Enabled:            true,
		ClientID:           "test-client-id",
		AuthEndpoint:       "https://accounts.example.com/o/oauth2/auth",
		ValidationEndpoint: "https://accounts.example.com/tokeninfo",
		Scope:              "openid email profile",
	})
	if err != nil {
		t.Fatalf("Failed to create test provider: %v", err)
	}
	return provider
}

// CreateTestUser inserts a user bound to the given provider and returns it.
func CreateTestUser(t *testing.T, repo repository.Repository, providerID int64, login string) *repository.UserDetail {
	t.Helper()

	user, err := repo.Users().CreateUser(context.Background(), repository.CreateUserParams{
		Login:           login,
		Name:            "Test User",
		Email:           login,
		OAuthProviderID: providerID,
		OAuthUID:        "ext-" + login,
		AccessToken:     "provider-token-" + login,
	})
	if err != nil {
		t.Fatalf("Failed to create test user: %v", err)
	}
	return user
}
