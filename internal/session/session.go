// Package session establishes authenticated sessions from typed credentials,
// mirroring the host platform's credential-kind dispatch.
package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ricky-lee-athena/odoo-demo/internal/logger"
	"github.com/ricky-lee-athena/odoo-demo/internal/repository"
)

// Credential kinds understood by Authenticate.
const (
	KindOAuthToken = "oauth_token"
)

// Session lifetime. Sessions only bracket the callback exchange; it is the
// API key that outlives them.
const sessionTTL = 7 * 24 * time.Hour

var (
	ErrInvalidCredentials = errors.New("invalid credentials or failed to create session")
	ErrUnknownKind        = errors.New("unknown credential kind")
)

// Credential is a typed login credential.
type Credential struct {
	Login string
	Token string
	Kind  string
}

// AuthInfo is the outcome of a successful authentication.
type AuthInfo struct {
	SessionID string
	UserID    string
	Login     string
}

// Service authenticates credentials and records sessions.
type Service struct {
	users    repository.UserRepository
	sessions repository.SessionRepository
}

// NewService creates a session service.
func NewService(users repository.UserRepository, sessions repository.SessionRepository) *Service {
	return &Service{users: users, sessions: sessions}
}

// Authenticate verifies the credential and opens a session for its user.
// Inactive users and token mismatches both come back as invalid credentials.
func (s *Service) Authenticate(ctx context.Context, cred Credential) (*AuthInfo, error) {
	if cred.Kind != KindOAuthToken {
		return nil, fmt.Errorf("%w: %s", ErrUnknownKind, cred.Kind)
	}

	user, err := s.users.GetUserByLogin(ctx, cred.Login)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}

	if !user.Active || cred.Token == "" || user.OAuthToken != cred.Token {
		return nil, ErrInvalidCredentials
	}

	sess, err := s.sessions.CreateSession(ctx, repository.CreateSessionParams{
		UserID:    user.ID,
		Login:     user.Login,
		ExpiresAt: time.Now().Add(sessionTTL),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	logger.Debug("Session authenticated", "login", user.Login, "session", sess.ID)

	return &AuthInfo{SessionID: sess.ID, UserID: user.ID, Login: user.Login}, nil
}
