package auth

import (
	"errors"
	"testing"
	"time"
)

func withSecret(t *testing.T, value string) {
	t.Helper()
	ResetSecretCache()
	t.Setenv("ATELIER_AUTH_SECRET", value)
	t.Cleanup(ResetSecretCache)
}

func TestGenerateAndParseToken(t *testing.T) {
	withSecret(t, "test-secret")

	token, err := GenerateToken(TokenSpec{
		UserID:         "user-42",
		Role:           "Director",
		OrganizationID: "org-7",
		SessionID:      "sess-1",
		TTL:            30 * time.Minute,
	})
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}

	claims, err := ParseAndValidate(token)
	if err != nil {
		t.Fatalf("ParseAndValidate: %v", err)
	}
	if claims.Subject != "user-42" {
		t.Fatalf("unexpected subject: %s", claims.Subject)
	}
	if claims.Role != "Director" || claims.OrganizationID != "org-7" || claims.SessionID != "sess-1" {
		t.Fatalf("claims not preserved: %+v", claims)
	}
	if claims.ID == "" {
		t.Fatal("expected jti")
	}
}

func TestGenerateTokenValidation(t *testing.T) {
	withSecret(t, "test-secret")

	if _, err := GenerateToken(TokenSpec{Role: "Director", TTL: time.Minute}); err == nil {
		t.Fatal("expected error for missing user id")
	}
	if _, err := GenerateToken(TokenSpec{UserID: "u1", Role: "Director"}); err == nil {
		t.Fatal("expected error for missing ttl")
	}
}

func TestParseRejectsGarbageAndExpired(t *testing.T) {
	withSecret(t, "test-secret")

	if _, err := ParseAndValidate(""); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}
	if _, err := ParseAndValidate("not.a.token"); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}

	token, err := GenerateToken(TokenSpec{UserID: "u1", Role: "Director", TTL: time.Millisecond})
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}
	time.Sleep(5 * time.Millisecond)
	if _, err := ParseAndValidate(token); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected expired token rejection, got %v", err)
	}
}

func TestMissingSecret(t *testing.T) {
	withSecret(t, "")

	if _, err := GenerateToken(TokenSpec{UserID: "u1", TTL: time.Minute}); err == nil {
		t.Fatal("expected error without configured secret")
	}
}

func TestIdentityContextRoundTrip(t *testing.T) {
	withSecret(t, "test-secret")

	token, err := GenerateToken(TokenSpec{UserID: "u-9", Role: "Finance", OrganizationID: "org-2", TTL: time.Minute})
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}
	claims, err := ParseAndValidate(token)
	if err != nil {
		t.Fatalf("ParseAndValidate: %v", err)
	}

	id := NewIdentity(claims)
	if v, ok := id.Claim("sub"); !ok || v != "u-9" {
		t.Fatalf("unexpected sub claim: %q, %v", v, ok)
	}
	if v, ok := id.Claim("role"); !ok || v != "Finance" {
		t.Fatalf("unexpected role claim: %q, %v", v, ok)
	}
	if _, ok := id.Claim("session_id"); ok {
		t.Fatal("expected absent session claim")
	}
}

func TestPasswordHashRoundTrip(t *testing.T) {
	hash, err := HashPassword("fitting-room-7")
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}
	if err := VerifyPassword(hash, "fitting-room-7"); err != nil {
		t.Fatalf("VerifyPassword: %v", err)
	}
	if err := VerifyPassword(hash, "wrong"); err == nil {
		t.Fatal("expected mismatch error")
	}
	if _, err := HashPassword(""); err == nil {
		t.Fatal("expected error for empty password")
	}
}
