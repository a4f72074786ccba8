package jwtutil

import (
	"context"
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"testing"
	"time"

	"github.com/lestrrat-go/jwx/v2/jwa"
	"github.com/lestrrat-go/jwx/v2/jwk"
	"github.com/lestrrat-go/jwx/v2/jwt"
)

func signedTestToken(t *testing.T, mutate func(b *jwt.Builder)) (string, jwk.Set) {
	t.Helper()

	priv, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	if err != nil {
		t.Fatalf("failed to generate key: %v", err)
	}
	key, err := jwk.FromRaw(priv)
	if err != nil {
		t.Fatalf("failed to wrap key: %v", err)
	}
	_ = key.Set(jwk.KeyIDKey, "test-key")
	_ = key.Set(jwk.AlgorithmKey, jwa.ES256)

	pub, err := key.PublicKey()
	if err != nil {
		t.Fatalf("failed to derive public key: %v", err)
	}
	set := jwk.NewSet()
	if err := set.AddKey(pub); err != nil {
		t.Fatalf("failed to add key to set: %v", err)
	}

	b := jwt.NewBuilder().
		Issuer("https://accounts.example.com").
		Subject("ext-12345").
		Audience([]string{"test-client-id"}).
		IssuedAt(time.Now()).
		Expiration(time.Now().Add(time.Hour)).
		Claim("email", "alice@example.com").
		Claim("name", "Alice")
	if mutate != nil {
		mutate(b)
	}
	tok, err := b.Build()
	if err != nil {
		t.Fatalf("failed to build token: %v", err)
	}

	signed, err := jwt.Sign(tok, jwt.WithKey(jwa.ES256, key))
	if err != nil {
		t.Fatalf("failed to sign token: %v", err)
	}
	return string(signed), set
}

func TestParseAndValidate(t *testing.T) {
	signed, set := signedTestToken(t, nil)

	claims, err := ParseAndValidate(context.Background(), signed, set)
	if err != nil {
		t.Fatalf("ParseAndValidate error: %v", err)
	}
	if claims.Sub != "ext-12345" {
		t.Errorf("Sub = %q, want ext-12345", claims.Sub)
	}
	if claims.Email != "alice@example.com" {
		t.Errorf("Email = %q, want alice@example.com", claims.Email)
	}
	if claims.Name != "Alice" {
		t.Errorf("Name = %q, want Alice", claims.Name)
	}
	if claims.Aud != "test-client-id" {
		t.Errorf("Aud = %q, want test-client-id", claims.Aud)
	}
}

func TestParseAndValidate_Expired(t *testing.T) {
	signed, set := signedTestToken(t, func(b *jwt.Builder) {
		b.Expiration(time.Now().Add(-time.Hour))
	})

	if _, err := ParseAndValidate(context.Background(), signed, set); err == nil {
		t.Fatal("expected expired token to fail validation")
	}
}

func TestParseAndValidate_WrongKey(t *testing.T) {
	signed, _ := signedTestToken(t, nil)
	_, otherSet := signedTestToken(t, nil)

	if _, err := ParseAndValidate(context.Background(), signed, otherSet); err == nil {
		t.Fatal("expected verification with a different key set to fail")
	}
}
