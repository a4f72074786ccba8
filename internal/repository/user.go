package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/ricky-lee-athena/odoo-demo/internal/db"
	"github.com/segmentio/ksuid"
)

// userRepository implements UserRepository
type userRepository struct {
	dbService *db.Service
}

const userColumns = `id, login, name, email, active, oauth_provider_id, oauth_uid, oauth_access_token, created_at`

func scanUser(row *sql.Row) (*UserDetail, error) {
	var u UserDetail
	var providerID sql.NullInt64
	var oauthUID, oauthToken sql.NullString

	err := row.Scan(&u.ID, &u.Login, &u.Name, &u.Email, &u.Active,
		&providerID, &oauthUID, &oauthToken, &u.CreatedAt)
	if err != nil {
		return nil, err
	}

	u.OAuthProviderID = providerID.Int64
	u.OAuthUID = oauthUID.String
	u.OAuthToken = oauthToken.String
	return &u, nil
}

// GetUser retrieves a user by id
func (r *userRepository) GetUser(ctx context.Context, id string) (*UserDetail, error) {
	query := r.dbService.Rebind(`SELECT ` + userColumns + ` FROM res_users WHERE id = ?`)
	user, err := scanUser(r.dbService.DB().QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return user, nil
}

// GetUserByLogin retrieves a user by login
func (r *userRepository) GetUserByLogin(ctx context.Context, login string) (*UserDetail, error) {
	query := r.dbService.Rebind(`SELECT ` + userColumns + ` FROM res_users WHERE login = ?`)
	user, err := scanUser(r.dbService.DB().QueryRowContext(ctx, query, login))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user by login: %w", err)
	}
	return user, nil
}

// GetUserByOAuth retrieves the user bound to an external identity
func (r *userRepository) GetUserByOAuth(ctx context.Context, providerID int64, oauthUID string) (*UserDetail, error) {
	query := r.dbService.Rebind(`SELECT ` + userColumns + ` FROM res_users WHERE oauth_provider_id = ? AND oauth_uid = ?`)
	user, err := scanUser(r.dbService.DB().QueryRowContext(ctx, query, providerID, oauthUID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user by oauth identity: %w", err)
	}
	return user, nil
}

// CreateUser creates a new user bound to an external identity
func (r *userRepository) CreateUser(ctx context.Context, params CreateUserParams) (*UserDetail, error) {
	now := time.Now().UTC()
	id := ksuid.New().String()

	query := r.dbService.Rebind(`
		INSERT INTO res_users
			(id, login, name, email, active, oauth_provider_id, oauth_uid, oauth_access_token, created_at)
		VALUES (?, ?, ?, ?, TRUE, ?, ?, ?, ?)`)

	_, err := r.dbService.DB().ExecContext(ctx, query,
		id, params.Login, params.Name, params.Email,
		params.OAuthProviderID, params.OAuthUID, params.AccessToken, now,
	)
	if err != nil {
		if strings.Contains(strings.ToLower(err.Error()), "unique") {
			return nil, ErrDuplicateLogin
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	return &UserDetail{
		ID:              id,
		Login:           params.Login,
		Name:            params.Name,
		Email:           params.Email,
		Active:          true,
		OAuthProviderID: params.OAuthProviderID,
		OAuthUID:        params.OAuthUID,
		OAuthToken:      params.AccessToken,
		CreatedAt:       now,
	}, nil
}

// SetOAuthToken stores the latest provider access token on the user row
func (r *userRepository) SetOAuthToken(ctx context.Context, userID, accessToken string) error {
	query := r.dbService.Rebind(`UPDATE res_users SET oauth_access_token = ? WHERE id = ?`)
	res, err := r.dbService.DB().ExecContext(ctx, query, accessToken, userID)
	if err != nil {
		return fmt.Errorf("failed to update oauth token: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrUserNotFound
	}
	return nil
}

// SetActive toggles whether the user may authenticate or hold keys
func (r *userRepository) SetActive(ctx context.Context, userID string, active bool) error {
	query := r.dbService.Rebind(`UPDATE res_users SET active = ? WHERE id = ?`)
	res, err := r.dbService.DB().ExecContext(ctx, query, active, userID)
	if err != nil {
		return fmt.Errorf("failed to update user active flag: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrUserNotFound
	}
	return nil
}

// MaxKeyDuration returns the largest api_key_duration across the user's
// groups, in days. Zero means no group imposes a limit.
func (r *userRepository) MaxKeyDuration(ctx context.Context, userID string) (int64, error) {
	query := r.dbService.Rebind(`
		SELECT COALESCE(MAX(g.api_key_duration), 0)
		FROM res_groups g
		JOIN res_groups_users_rel rel ON rel.group_id = g.id
		WHERE rel.user_id = ?`)

	var max int64
	if err := r.dbService.DB().QueryRowContext(ctx, query, userID).Scan(&max); err != nil {
		return 0, fmt.Errorf("failed to get group key duration: %w", err)
	}
	return max, nil
}

// CreateGroup inserts a group row
func (r *userRepository) CreateGroup(ctx context.Context, params CreateGroupParams) error {
	query := r.dbService.Rebind(`INSERT INTO res_groups (id, name, api_key_duration) VALUES (?, ?, ?)`)
	if _, err := r.dbService.DB().ExecContext(ctx, query, params.ID, params.Name, params.APIKeyDuration); err != nil {
		return fmt.Errorf("failed to create group: %w", err)
	}
	return nil
}

// AddUserToGroup records a group membership
func (r *userRepository) AddUserToGroup(ctx context.Context, userID string, groupID int64) error {
	query := r.dbService.Rebind(`INSERT INTO res_groups_users_rel (user_id, group_id) VALUES (?, ?)`)
	if _, err := r.dbService.DB().ExecContext(ctx, query, userID, groupID); err != nil {
		return fmt.Errorf("failed to add user to group: %w", err)
	}
	return nil
}
