package db

import "context"

// Schema mirrors the handful of host-platform tables the bridge touches. The
// statements are portable between SQLite and PostgreSQL.
const schema = `
CREATE TABLE IF NOT EXISTS auth_oauth_provider (
	id                  INTEGER PRIMARY KEY,
	name                TEXT NOT NULL,
	enabled             BOOLEAN NOT NULL DEFAULT FALSE,
	client_id           TEXT NOT NULL DEFAULT '',
	auth_endpoint       TEXT NOT NULL DEFAULT '',
	validation_endpoint TEXT NOT NULL DEFAULT '',
	jwks_uri            TEXT NOT NULL DEFAULT '',
	scope               TEXT NOT NULL DEFAULT ''
);

CREATE TABLE IF NOT EXISTS res_users (
	id                 TEXT PRIMARY KEY,
	login              TEXT NOT NULL UNIQUE,
	name               TEXT NOT NULL DEFAULT '',
	email              TEXT NOT NULL DEFAULT '',
	active             BOOLEAN NOT NULL DEFAULT TRUE,
	oauth_provider_id  INTEGER,
	oauth_uid          TEXT,
	oauth_access_token TEXT,
	created_at         TIMESTAMP NOT NULL,
	UNIQUE (oauth_provider_id, oauth_uid)
);

CREATE TABLE IF NOT EXISTS res_groups (
	id               INTEGER PRIMARY KEY,
	name             TEXT NOT NULL,
	api_key_duration INTEGER NOT NULL DEFAULT 0
);

CREATE TABLE IF NOT EXISTS res_groups_users_rel (
	user_id  TEXT NOT NULL REFERENCES res_users (id),
	group_id INTEGER NOT NULL REFERENCES res_groups (id),
	PRIMARY KEY (user_id, group_id)
);

CREATE TABLE IF NOT EXISTS res_users_apikeys (
	id         TEXT PRIMARY KEY,
	user_id    TEXT NOT NULL REFERENCES res_users (id),
	name       TEXT NOT NULL,
	provenance TEXT NOT NULL DEFAULT 'manual',
	key_hash   TEXT NOT NULL,
	created_at TIMESTAMP NOT NULL,
	expires_at TIMESTAMP
);

CREATE INDEX IF NOT EXISTS res_users_apikeys_user_provenance
	ON res_users_apikeys (user_id, provenance);

CREATE TABLE IF NOT EXISTS bridge_sessions (
	id         TEXT PRIMARY KEY,
	user_id    TEXT NOT NULL REFERENCES res_users (id),
	login      TEXT NOT NULL,
	created_at TIMESTAMP NOT NULL,
	expires_at TIMESTAMP NOT NULL
);
`

// EnsureSchema creates the bridge tables when they do not exist yet.
func (s *Service) EnsureSchema(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, schema)
	return err
}
