// Package auth implements the OAuth-to-API-key bridge endpoints: the
// authorization URL builder, the provider callback, and key revocation.
package auth

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/url"

	"github.com/ricky-lee-athena/odoo-demo/internal/apikey"
	"github.com/ricky-lee-athena/odoo-demo/internal/config"
	"github.com/ricky-lee-athena/odoo-demo/internal/httputil"
	"github.com/ricky-lee-athena/odoo-demo/internal/identity"
	"github.com/ricky-lee-athena/odoo-demo/internal/logger"
	"github.com/ricky-lee-athena/odoo-demo/internal/middleware"
	"github.com/ricky-lee-athena/odoo-demo/internal/oauth"
	"github.com/ricky-lee-athena/odoo-demo/internal/repository"
	"github.com/ricky-lee-athena/odoo-demo/internal/session"
	"github.com/ricky-lee-athena/odoo-demo/internal/svrlib"
	"github.com/ricky-lee-athena/odoo-demo/internal/web"
)

// Error codes surfaced to the frontend in the redirect query string. Nothing
// more specific ever leaks into a URL.
const (
	errCodeAccessDenied = "access_denied"
	errCodeServerError  = "server_error"
)

// oauthKeyLabel is the fixed label on bridge-issued keys. Provenance is
// tracked structurally; the label is informational.
const oauthKeyLabel = "Google OAuth Login"

// Deps bundles the collaborators the bridge endpoints drive.
type Deps struct {
	URLBuilder *oauth.URLBuilder
	Identities *identity.Store
	Sessions   *session.Service
	Keys       *apikey.Service
	Users      repository.UserRepository
	// Legacy receives callbacks whose state lacks the frontend flag. Nil
	// installs a redirect to the configured web login.
	Legacy http.Handler
}

// AuthRouter carries the route configuration and collaborators.
type AuthRouter struct {
	*svrlib.Router
	deps Deps
}

// RegisterRoutes registers the bridge endpoints on the given mux.
func RegisterRoutes(mux *http.ServeMux, cfg *config.Config, deps Deps) {
	if deps.Legacy == nil {
		deps.Legacy = legacySigninRedirect(cfg)
	}
	router := &AuthRouter{svrlib.NewRouter(mux, "/auth_oauth", cfg), deps}

	mux.HandleFunc("/auth_oauth/get_oauth_url", router.GetOAuthURLHandler)
	mux.HandleFunc(oauth.CallbackPath, router.APISigninHandler)

	authed := middleware.APIKeyAuth(deps.Keys)
	mux.Handle("/auth_oauth/revoke", authed(http.HandlerFunc(router.RevokeHandler)))
	mux.Handle("/auth_oauth/session", authed(http.HandlerFunc(router.SessionHandler)))
}

type oauthURLRequest struct {
	ProviderID  int64  `json:"provider_id"`
	Database    string `json:"database"`
	RedirectURI string `json:"redirect_uri"`
}

// GetOAuthURLHandler handles POST /auth_oauth/get_oauth_url. It is called
// synchronously by a frontend script, so failures come back as a JSON error
// field rather than a transport fault.
func (rt *AuthRouter) GetOAuthURLHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req oauthURLRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteSuccess(w, httputil.ErrorResponse{Error: "invalid request body"})
		return
	}

	result, err := rt.deps.URLBuilder.BuildAuthorizationURL(r.Context(), req.ProviderID, req.Database, req.RedirectURI)
	if err != nil {
		switch {
		case errors.Is(err, oauth.ErrUnknownDatabase),
			errors.Is(err, oauth.ErrProviderNotFound),
			errors.Is(err, oauth.ErrProviderDisabled):
			httputil.WriteSuccess(w, httputil.ErrorResponse{Error: err.Error()})
		default:
			logger.Error("Error generating OAuth URL", "error", err, "provider", req.ProviderID)
			httputil.WriteSuccess(w, httputil.ErrorResponse{Error: "internal error"})
		}
		return
	}

	httputil.WriteSuccess(w, result)
}

// APISigninHandler handles the provider callback. Everything after state
// parsing resolves to a redirect; the browser never sees a fault page.
func (rt *AuthRouter) APISigninHandler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	q := r.URL.Query()

	// The implicit flow delivers the token in the URL fragment, which never
	// reaches the server. A bare request gets a bounce page that re-requests
	// the callback with the fragment converted to a query string.
	if len(q) == 0 {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write([]byte(fragmentBouncePage))
		return
	}

	// Extract the return address before anything can fail so errors always
	// have somewhere sane to land.
	redirectURL := rt.Config.DefaultRedirectURL
	state, err := oauth.DecodeState(q.Get("state"))
	if err != nil {
		logger.Error("OAuth callback with undecodable state", "error", err)
		rt.failRedirect(w, r, redirectURL, errCodeServerError)
		return
	}
	if state.RedirectTo != "" {
		redirectURL = state.RedirectTo
	}

	logger.Info("OAuth callback received",
		"provider", state.ProviderID,
		"database", state.Database,
		"frontend", state.Frontend,
		"hasToken", q.Get("access_token") != "")

	if !state.Frontend {
		// Not ours; the standard web login flow owns this callback.
		rt.deps.Legacy.ServeHTTP(w, r)
		return
	}

	if !rt.Config.AllowedDatabase(state.Database) {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}

	accessToken := q.Get("access_token")
	if accessToken == "" {
		logger.Warn("OAuth callback without access token", "provider", state.ProviderID)
		rt.failRedirect(w, r, redirectURL, errCodeAccessDenied)
		return
	}

	resolution, err := rt.deps.Identities.AuthenticateOrCreate(ctx, state.ProviderID, identity.CallbackParams{
		AccessToken: accessToken,
		IDToken:     q.Get("id_token"),
	})
	if err != nil {
		if errors.Is(err, identity.ErrAccessDenied) {
			logger.Warn("OAuth API signin failed", "error", err)
			rt.failRedirect(w, r, redirectURL, errCodeAccessDenied)
			return
		}
		logger.Error("Unexpected error resolving identity", "error", err)
		rt.failRedirect(w, r, redirectURL, errCodeServerError)
		return
	}

	authInfo, err := rt.deps.Sessions.Authenticate(ctx, session.Credential{
		Login: resolution.Login,
		Token: resolution.AccessToken,
		Kind:  session.KindOAuthToken,
	})
	if err != nil {
		if errors.Is(err, session.ErrInvalidCredentials) {
			logger.Warn("Session authentication rejected", "login", resolution.Login)
			rt.failRedirect(w, r, redirectURL, errCodeAccessDenied)
			return
		}
		logger.Error("Unexpected error establishing session", "error", err)
		rt.failRedirect(w, r, redirectURL, errCodeServerError)
		return
	}

	secret, err := rt.deps.Keys.IssueForUser(ctx, authInfo.UserID, oauthKeyLabel, int64(rt.Config.APIKeyDefaultDays))
	if err != nil {
		logger.Error("Failed to issue api key", "login", authInfo.Login, "error", err)
		rt.failRedirect(w, r, redirectURL, errCodeServerError)
		return
	}

	logger.Info("OAuth API signin successful", "login", authInfo.Login, "uid", authInfo.UserID)

	// The frontend may have double-encoded its return address inside the
	// state token.
	if unescaped, err := url.QueryUnescape(redirectURL); err == nil {
		redirectURL = unescaped
	}

	web.SetAPIKeyCookieWithEnv(w, secret, rt.Config.IsDev())
	http.Redirect(w, r, redirectURL, http.StatusSeeOther)
}

// RevokeHandler handles POST /auth_oauth/revoke for an authenticated key
// holder. Revoking zero keys is still a success.
func (rt *AuthRouter) RevokeHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	userID, ok := middleware.UserID(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	count, err := rt.deps.Keys.RevokeOAuthKeys(r.Context(), userID)
	if err != nil {
		httputil.WriteError(w, http.StatusInternalServerError, "failed to revoke keys", "error", err)
		return
	}

	web.ClearAPIKeyCookieWithEnv(w, rt.Config.IsDev())
	httputil.WriteSuccess(w, map[string]int64{"revoked": count})
}

// SessionHandler handles GET /auth_oauth/session: a cheap identity probe for
// the frontend's server routes.
func (rt *AuthRouter) SessionHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserID(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	user, err := rt.deps.Users.GetUser(r.Context(), userID)
	if err != nil {
		httputil.WriteError(w, http.StatusInternalServerError, "failed to load user", "error", err)
		return
	}

	httputil.WriteSuccess(w, map[string]string{
		"uid":   user.ID,
		"login": user.Login,
		"name":  user.Name,
		"email": user.Email,
	})
}

// failRedirect sends the browser back to the frontend with an opaque error
// code. The target is always the address extracted in the state-parsing step.
func (rt *AuthRouter) failRedirect(w http.ResponseWriter, r *http.Request, redirectURL, code string) {
	target := redirectURL
	if u, err := url.Parse(redirectURL); err == nil {
		query := u.Query()
		query.Set("oauth_error", code)
		u.RawQuery = query.Encode()
		target = u.String()
	}
	http.Redirect(w, r, target, http.StatusSeeOther)
}

// legacySigninRedirect hands non-frontend callbacks to the platform's web
// login, preserving the provider's parameters.
func legacySigninRedirect(cfg *config.Config) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		target := cfg.WebLoginURL
		if r.URL.RawQuery != "" {
			target += "?" + r.URL.RawQuery
		}
		http.Redirect(w, r, target, http.StatusSeeOther)
	})
}

// fragmentBouncePage converts the provider's fragment response into a query
// string the server can read, then re-requests the callback.
const fragmentBouncePage = `<!DOCTYPE html>
<html>
<head><title>Signing in…</title></head>
<body>
<script>
	if (window.location.hash) {
		window.location = window.location.pathname + "?" + window.location.hash.slice(1);
	} else {
		document.body.textContent = "Missing OAuth response.";
	}
</script>
</body>
</html>
`
