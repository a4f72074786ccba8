package identity

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/ricky-lee-athena/odoo-demo/internal/config"
	"github.com/ricky-lee-athena/odoo-demo/internal/repository"
	"github.com/ricky-lee-athena/odoo-demo/internal/testutil"
)

// fakeProvider serves a minimal token validation endpoint. Tokens in the
// valid map resolve to the mapped subject; everything else is rejected.
func fakeProvider(t *testing.T, valid map[string]string) *httptest.Server {
	t.Helper()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := r.URL.Query().Get("access_token")
		sub, ok := valid[token]
		if !ok {
			http.Error(w, `{"error": "invalid_token"}`, http.StatusUnauthorized)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"sub": "` + sub + `", "email": "` + sub + `@example.com", "name": "User ` + sub + `"}`))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func newTestStore(t *testing.T, validationURL string, signupAllowed bool) (*Store, repository.Repository) {
	t.Helper()

	dbService := testutil.TestDatabase(t)
	repo := repository.NewRepository(dbService)

	if _, err := repo.Providers().CreateProvider(context.Background(), repository.CreateProviderParams{
		ID:                 3,
		Name:               "Google",
		Enabled:            true,
		ClientID:           "test-client-id",
		AuthEndpoint:       "https://accounts.example.com/o/oauth2/auth",
		ValidationEndpoint: validationURL,
		Scope:              "openid email profile",
	}); err != nil {
		t.Fatalf("failed to create provider: %v", err)
	}

	cfg := &config.Config{AppEnv: config.EnvTest, SignupAllowed: signupAllowed}
	return NewStore(cfg, repo.Users(), repo.Providers(), nil), repo
}

func TestAuthenticateOrCreate_SignupThenReuse(t *testing.T) {
	srv := fakeProvider(t, map[string]string{"tok-1": "ext-42", "tok-2": "ext-42"})
	store, repo := newTestStore(t, srv.URL, true)
	ctx := context.Background()

	first, err := store.AuthenticateOrCreate(ctx, 3, CallbackParams{AccessToken: "tok-1"})
	if err != nil {
		t.Fatalf("first login error: %v", err)
	}
	if first.Login != "ext-42@example.com" {
		t.Errorf("login = %q, want provider email", first.Login)
	}

	// The same external account must resolve to the same local user.
	second, err := store.AuthenticateOrCreate(ctx, 3, CallbackParams{AccessToken: "tok-2"})
	if err != nil {
		t.Fatalf("second login error: %v", err)
	}
	if second.UserID != first.UserID {
		t.Errorf("second login mapped to a different user: %q vs %q", second.UserID, first.UserID)
	}

	// The stored provider token follows the latest login.
	user, err := repo.Users().GetUser(ctx, first.UserID)
	if err != nil {
		t.Fatalf("GetUser error: %v", err)
	}
	if user.OAuthToken != "tok-2" {
		t.Errorf("stored token = %q, want tok-2", user.OAuthToken)
	}
}

func TestAuthenticateOrCreate_RejectedToken(t *testing.T) {
	srv := fakeProvider(t, map[string]string{})
	store, _ := newTestStore(t, srv.URL, true)

	_, err := store.AuthenticateOrCreate(context.Background(), 3, CallbackParams{AccessToken: "bogus"})
	if !errors.Is(err, ErrAccessDenied) {
		t.Errorf("got %v, want ErrAccessDenied", err)
	}
}

func TestAuthenticateOrCreate_MissingToken(t *testing.T) {
	srv := fakeProvider(t, map[string]string{"tok-1": "ext-42"})
	store, _ := newTestStore(t, srv.URL, true)

	_, err := store.AuthenticateOrCreate(context.Background(), 3, CallbackParams{})
	if !errors.Is(err, ErrAccessDenied) {
		t.Errorf("got %v, want ErrAccessDenied", err)
	}
}

func TestAuthenticateOrCreate_SignupDisabled(t *testing.T) {
	srv := fakeProvider(t, map[string]string{"tok-1": "ext-42"})
	store, _ := newTestStore(t, srv.URL, false)

	_, err := store.AuthenticateOrCreate(context.Background(), 3, CallbackParams{AccessToken: "tok-1"})
	if !errors.Is(err, ErrAccessDenied) {
		t.Errorf("got %v, want ErrAccessDenied when signup is disabled", err)
	}
}

func TestAuthenticateOrCreate_UnknownProvider(t *testing.T) {
	srv := fakeProvider(t, map[string]string{"tok-1": "ext-42"})
	store, _ := newTestStore(t, srv.URL, true)

	if _, err := store.AuthenticateOrCreate(context.Background(), 99, CallbackParams{AccessToken: "tok-1"}); err == nil {
		t.Error("expected error for unknown provider")
	}
}
