// Package apikey issues, resolves and revokes bearer API keys for
// OAuth-authenticated users.
package apikey

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/ricky-lee-athena/odoo-demo/internal/logger"
	"github.com/ricky-lee-athena/odoo-demo/internal/repository"
)

var (
	ErrInactiveUser = errors.New("cannot generate api key for inactive user")
	ErrKeyNotFound  = errors.New("api key not found")
	ErrKeyExpired   = errors.New("api key expired")
)

const secretBytes = 32

// Service implements key issuance with the rotation and duration-clamp
// policy. Issued keys carry the oauth provenance so rotation never touches
// manually created keys.
type Service struct {
	users repository.UserRepository
	keys  repository.APIKeyRepository
}

// NewService creates an api key service.
func NewService(users repository.UserRepository, keys repository.APIKeyRepository) *Service {
	return &Service{users: users, keys: keys}
}

// IssueForUser mints a fresh key for the user, replacing any previous
// OAuth-issued key in the same transaction. requestedDays is clamped to the
// largest api_key_duration among the user's groups; zero or negative means a
// key without expiration. The plaintext secret is returned exactly once.
func (s *Service) IssueForUser(ctx context.Context, userID, label string, requestedDays int64) (string, error) {
	user, err := s.users.GetUser(ctx, userID)
	if err != nil {
		return "", fmt.Errorf("failed to load user: %w", err)
	}
	if !user.Active {
		return "", ErrInactiveUser
	}

	var expiresAt *time.Time
	if requestedDays > 0 {
		maxDays, err := s.users.MaxKeyDuration(ctx, userID)
		if err != nil {
			return "", err
		}
		days := EffectiveDays(requestedDays, maxDays)
		if days < requestedDays {
			logger.Warn("API key duration reduced due to group limits",
				"login", user.Login, "requested", requestedDays, "granted", days)
		}
		t := time.Now().UTC().Add(time.Duration(days) * 24 * time.Hour)
		expiresAt = &t
	}

	secret, hash, err := generateSecret()
	if err != nil {
		return "", err
	}

	if _, err := s.keys.ReplaceOAuthKey(ctx, repository.CreateAPIKeyParams{
		UserID:     userID,
		Name:       label,
		Provenance: repository.ProvenanceOAuth,
		KeyHash:    hash,
		ExpiresAt:  expiresAt,
	}); err != nil {
		return "", err
	}

	expires := "never"
	if expiresAt != nil {
		expires = expiresAt.Format(time.RFC3339)
	}
	logger.Info("Generated api key", "login", user.Login, "expires", expires)

	return secret, nil
}

// RevokeOAuthKeys removes every OAuth-issued key for the user and returns
// how many were removed. Revoking a user with no keys is not an error.
func (s *Service) RevokeOAuthKeys(ctx context.Context, userID string) (int64, error) {
	count, err := s.keys.DeleteByProvenance(ctx, userID, repository.ProvenanceOAuth)
	if err != nil {
		return 0, err
	}
	if count > 0 {
		logger.Info("Revoked oauth api keys", "user", userID, "count", count)
	}
	return count, nil
}

// ResolveKey maps a presented plaintext secret to its key record, enforcing
// expiration.
func (s *Service) ResolveKey(ctx context.Context, secret string) (*repository.APIKeyDetail, error) {
	if secret == "" {
		return nil, ErrKeyNotFound
	}
	key, err := s.keys.GetByHash(ctx, hashSecret(secret))
	if err != nil {
		if errors.Is(err, repository.ErrAPIKeyNotFound) {
			return nil, ErrKeyNotFound
		}
		return nil, err
	}
	if key.ExpiresAt != nil && key.ExpiresAt.Before(time.Now()) {
		return nil, ErrKeyExpired
	}
	return key, nil
}

func generateSecret() (secret, hash string, err error) {
	buf := make([]byte, secretBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", "", fmt.Errorf("failed to generate key material: %w", err)
	}
	secret = hex.EncodeToString(buf)
	return secret, hashSecret(secret), nil
}

func hashSecret(secret string) string {
	sum := sha256.Sum256([]byte(secret))
	return hex.EncodeToString(sum[:])
}
