// Package jwtutil verifies provider-issued identity tokens against the
// provider's published JWKS.
package jwtutil

import (
	"context"
	"fmt"

	"github.com/lestrrat-go/jwx/v2/jwk"
	"github.com/lestrrat-go/jwx/v2/jwt"
)

var (
	// ErrMissingSubject is returned when the token carries no subject
	ErrMissingSubject = fmt.Errorf("missing subject in token")
	// ErrInvalidToken is returned when the token is in an invalid format
	ErrInvalidToken = fmt.Errorf("invalid token format")
)

// IdentityClaims represents the claims the bridge needs from a provider
// id_token.
type IdentityClaims struct {
	Iss   string `json:"iss"`   // Issuer
	Sub   string `json:"sub"`   // Subject (external user id)
	Aud   string `json:"aud"`   // Audience (client id)
	Exp   int64  `json:"exp"`   // Expiry time
	Iat   int64  `json:"iat"`   // Issued at
	Email string `json:"email"` // Provider-asserted email
	Name  string `json:"name"`  // Provider-asserted display name
}

// FetchKeySet retrieves the provider's JWKS.
func FetchKeySet(ctx context.Context, jwksURI string) (jwk.Set, error) {
	keySet, err := jwk.Fetch(ctx, jwksURI)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch JWKS: %w", err)
	}
	return keySet, nil
}

// ParseAndValidate parses and verifies an id_token against the key set and
// extracts the identity claims the bridge consumes.
func ParseAndValidate(_ context.Context, tokenString string, keySet jwk.Set) (*IdentityClaims, error) {
	token, err := jwt.Parse([]byte(tokenString), jwt.WithKeySet(keySet), jwt.WithValidate(true))
	if err != nil {
		return nil, fmt.Errorf("failed to parse and verify token: %w", err)
	}

	claims := &IdentityClaims{
		Iss: token.Issuer(),
		Sub: token.Subject(),
		Exp: token.Expiration().Unix(),
		Iat: token.IssuedAt().Unix(),
	}
	if claims.Sub == "" {
		return nil, ErrMissingSubject
	}

	if aud := token.Audience(); len(aud) > 0 {
		claims.Aud = aud[0]
	}
	if v, ok := token.Get("email"); ok {
		if email, ok := v.(string); ok {
			claims.Email = email
		}
	}
	if v, ok := token.Get("name"); ok {
		if name, ok := v.(string); ok {
			claims.Name = name
		}
	}

	return claims, nil
}
