// Package web provides HTTP-specific utilities for delivering the bridge's
// credentials to browsers.
package web

import "net/http"

// APIKeyCookieName is the cookie the frontend's server routes read the
// bearer key from.
const APIKeyCookieName = "odoo_api_key"

// APIKeyCookieMaxAge matches the default key lifetime: 30 days.
const APIKeyCookieMaxAge = 30 * 24 * 60 * 60

// SetAPIKeyCookieWithEnv attaches the issued key with environment-specific
// security settings. HttpOnly keeps scripts away from the secret; Lax
// SameSite lets the OAuth redirect carry it while blocking cross-site POSTs.
func SetAPIKeyCookieWithEnv(w http.ResponseWriter, apiKey string, isDev bool) {
	http.SetCookie(w, &http.Cookie{
		Name:     APIKeyCookieName,
		Value:    apiKey,
		Path:     "/",
		HttpOnly: true,
		Secure:   !isDev,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   APIKeyCookieMaxAge,
	})
}

// SetAPIKeyCookie attaches the issued key with production security settings.
func SetAPIKeyCookie(w http.ResponseWriter, apiKey string) {
	SetAPIKeyCookieWithEnv(w, apiKey, false)
}

// ClearAPIKeyCookieWithEnv removes the key cookie.
func ClearAPIKeyCookieWithEnv(w http.ResponseWriter, isDev bool) {
	http.SetCookie(w, &http.Cookie{
		Name:     APIKeyCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   !isDev,
		SameSite: http.SameSiteLaxMode,
	})
}

// ClearAPIKeyCookie removes the key cookie with production settings.
func ClearAPIKeyCookie(w http.ResponseWriter) {
	ClearAPIKeyCookieWithEnv(w, false)
}

// GetAPIKeyCookie retrieves the key cookie value from the request.
func GetAPIKeyCookie(r *http.Request) (string, error) {
	cookie, err := r.Cookie(APIKeyCookieName)
	if err != nil {
		return "", err
	}
	return cookie.Value, nil
}
