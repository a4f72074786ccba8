package config

import (
	"strings"
	"testing"
)

func TestToSnakeCase(t *testing.T) {
	cases := map[string]string{
		"AppEnv":             "app_env",
		"DatabaseURL":        "database_url",
		"PublicBaseURL":      "public_base_url",
		"APIKeyDefaultDays":  "api_key_default_days",
		"DefaultRedirectURL": "default_redirect_url",
		"Port":               "port",
	}
	for in, want := range cases {
		if got := toSnakeCase(in); got != want {
			t.Errorf("toSnakeCase(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestAllowedDatabase(t *testing.T) {
	cfg := &Config{DatabaseFilter: "odoo, staging"}

	if !cfg.AllowedDatabase("odoo") {
		t.Error("expected odoo to pass the filter")
	}
	if !cfg.AllowedDatabase("staging") {
		t.Error("expected staging to pass the filter")
	}
	if cfg.AllowedDatabase("production") {
		t.Error("did not expect production to pass the filter")
	}
	if cfg.AllowedDatabase("") {
		t.Error("empty database name must never pass the filter")
	}
}

func TestSecretRedaction(t *testing.T) {
	cfg := &Config{DatabaseURL: "postgres://user:hunter2@db/odoo"}
	s := cfg.String()
	if !strings.Contains(s, "***REDACTED***") {
		t.Errorf("expected redaction marker in %s", s)
	}
	if strings.Contains(s, "hunter2") {
		t.Errorf("secret value leaked into config dump: %s", s)
	}
}
