package apikey

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/ricky-lee-athena/odoo-demo/internal/repository"
	"github.com/ricky-lee-athena/odoo-demo/internal/testutil"
)

func newTestService(t *testing.T) (*Service, repository.Repository) {
	t.Helper()

	dbService := testutil.TestDatabase(t)
	repo := repository.NewRepository(dbService)
	testutil.CreateTestProvider(t, repo, 3)
	return NewService(repo.Users(), repo.APIKeys()), repo
}

func TestIssueForUser_RotatesSingleKey(t *testing.T) {
	svc, repo := newTestService(t)
	user := testutil.CreateTestUser(t, repo, 3, "alice@example.com")
	ctx := context.Background()

	seen := map[string]bool{}
	for i := 0; i < 5; i++ {
		secret, err := svc.IssueForUser(ctx, user.ID, "Google OAuth Login", 30)
		if err != nil {
			t.Fatalf("IssueForUser error on login %d: %v", i, err)
		}
		if seen[secret] {
			t.Fatalf("secret repeated on login %d", i)
		}
		seen[secret] = true

		keys, err := repo.APIKeys().ListByUser(ctx, user.ID)
		if err != nil {
			t.Fatalf("ListByUser error: %v", err)
		}
		if len(keys) != 1 {
			t.Fatalf("after %d logins expected exactly 1 key, got %d", i+1, len(keys))
		}
		if keys[0].Provenance != repository.ProvenanceOAuth {
			t.Errorf("issued key provenance = %q, want oauth", keys[0].Provenance)
		}
	}
}

func TestIssueForUser_LeavesManualKeysAlone(t *testing.T) {
	svc, repo := newTestService(t)
	user := testutil.CreateTestUser(t, repo, 3, "alice@example.com")
	ctx := context.Background()

	// A hand-made key whose label even looks like ours must survive rotation.
	if _, err := repo.APIKeys().CreateKey(ctx, repository.CreateAPIKeyParams{
		UserID:     user.ID,
		Name:       "OAuth Promo",
		Provenance: repository.ProvenanceManual,
		KeyHash:    "manual-hash",
	}); err != nil {
		t.Fatalf("failed to create manual key: %v", err)
	}

	if _, err := svc.IssueForUser(ctx, user.ID, "Google OAuth Login", 30); err != nil {
		t.Fatalf("IssueForUser error: %v", err)
	}

	keys, err := repo.APIKeys().ListByUser(ctx, user.ID)
	if err != nil {
		t.Fatalf("ListByUser error: %v", err)
	}
	if len(keys) != 2 {
		t.Fatalf("expected manual + oauth key, got %d keys", len(keys))
	}
	var manualSurvived bool
	for _, k := range keys {
		if k.Provenance == repository.ProvenanceManual && k.Name == "OAuth Promo" {
			manualSurvived = true
		}
	}
	if !manualSurvived {
		t.Error("manual key was deleted by oauth rotation")
	}
}

func TestIssueForUser_GroupDurationClamp(t *testing.T) {
	svc, repo := newTestService(t)
	user := testutil.CreateTestUser(t, repo, 3, "alice@example.com")
	ctx := context.Background()

	if err := repo.Users().CreateGroup(ctx, repository.CreateGroupParams{ID: 1, Name: "Restricted", APIKeyDuration: 10}); err != nil {
		t.Fatalf("CreateGroup error: %v", err)
	}
	if err := repo.Users().AddUserToGroup(ctx, user.ID, 1); err != nil {
		t.Fatalf("AddUserToGroup error: %v", err)
	}

	if _, err := svc.IssueForUser(ctx, user.ID, "Google OAuth Login", 30); err != nil {
		t.Fatalf("IssueForUser error: %v", err)
	}

	keys, err := repo.APIKeys().ListByUser(ctx, user.ID)
	if err != nil {
		t.Fatalf("ListByUser error: %v", err)
	}
	if len(keys) != 1 || keys[0].ExpiresAt == nil {
		t.Fatal("expected one key with an expiration")
	}

	limit := time.Now().Add(10*24*time.Hour + time.Minute)
	if keys[0].ExpiresAt.After(limit) {
		t.Errorf("expiration %v exceeds the 10 day group limit", keys[0].ExpiresAt)
	}
}

func TestIssueForUser_NoExpirationWhenZeroDays(t *testing.T) {
	svc, repo := newTestService(t)
	user := testutil.CreateTestUser(t, repo, 3, "alice@example.com")

	if _, err := svc.IssueForUser(context.Background(), user.ID, "Google OAuth Login", 0); err != nil {
		t.Fatalf("IssueForUser error: %v", err)
	}

	keys, err := repo.APIKeys().ListByUser(context.Background(), user.ID)
	if err != nil {
		t.Fatalf("ListByUser error: %v", err)
	}
	if len(keys) != 1 || keys[0].ExpiresAt != nil {
		t.Fatal("expected one persistent key without expiration")
	}
}

func TestIssueForUser_InactiveUser(t *testing.T) {
	svc, repo := newTestService(t)
	user := testutil.CreateTestUser(t, repo, 3, "alice@example.com")
	ctx := context.Background()

	if err := repo.Users().SetActive(ctx, user.ID, false); err != nil {
		t.Fatalf("SetActive error: %v", err)
	}

	if _, err := svc.IssueForUser(ctx, user.ID, "Google OAuth Login", 30); !errors.Is(err, ErrInactiveUser) {
		t.Errorf("got %v, want ErrInactiveUser", err)
	}
}

func TestRevokeOAuthKeys_Idempotent(t *testing.T) {
	svc, repo := newTestService(t)
	user := testutil.CreateTestUser(t, repo, 3, "alice@example.com")
	ctx := context.Background()

	count, err := svc.RevokeOAuthKeys(ctx, user.ID)
	if err != nil {
		t.Fatalf("RevokeOAuthKeys error on empty set: %v", err)
	}
	if count != 0 {
		t.Errorf("revoke on empty set = %d, want 0", count)
	}

	if _, err := svc.IssueForUser(ctx, user.ID, "Google OAuth Login", 30); err != nil {
		t.Fatalf("IssueForUser error: %v", err)
	}

	count, err = svc.RevokeOAuthKeys(ctx, user.ID)
	if err != nil {
		t.Fatalf("RevokeOAuthKeys error: %v", err)
	}
	if count != 1 {
		t.Errorf("revoke after issuance = %d, want 1", count)
	}

	count, err = svc.RevokeOAuthKeys(ctx, user.ID)
	if err != nil {
		t.Fatalf("second RevokeOAuthKeys error: %v", err)
	}
	if count != 0 {
		t.Errorf("second revoke = %d, want 0", count)
	}
}

func TestResolveKey(t *testing.T) {
	svc, repo := newTestService(t)
	user := testutil.CreateTestUser(t, repo, 3, "alice@example.com")
	ctx := context.Background()

	secret, err := svc.IssueForUser(ctx, user.ID, "Google OAuth Login", 30)
	if err != nil {
		t.Fatalf("IssueForUser error: %v", err)
	}

	key, err := svc.ResolveKey(ctx, secret)
	if err != nil {
		t.Fatalf("ResolveKey error: %v", err)
	}
	if key.UserID != user.ID {
		t.Errorf("resolved key user = %q, want %q", key.UserID, user.ID)
	}

	if _, err := svc.ResolveKey(ctx, "no-such-secret"); !errors.Is(err, ErrKeyNotFound) {
		t.Errorf("unknown secret: got %v, want ErrKeyNotFound", err)
	}
	if _, err := svc.ResolveKey(ctx, ""); !errors.Is(err, ErrKeyNotFound) {
		t.Errorf("empty secret: got %v, want ErrKeyNotFound", err)
	}
}

func TestEffectiveDays(t *testing.T) {
	tests := []struct {
		requested, groupMax, want int64
	}{
		{30, 10, 10},
		{30, 0, 30},
		{5, 10, 5},
		{10, 10, 10},
		{0, 10, 0},
	}
	for _, tt := range tests {
		if got := EffectiveDays(tt.requested, tt.groupMax); got != tt.want {
			t.Errorf("EffectiveDays(%d, %d) = %d, want %d", tt.requested, tt.groupMax, got, tt.want)
		}
	}
}
