package auth

import (
	"testing"
	"time"
)

func TestHashAndCheckPassword(t *testing.T) {
	hash, err := HashPassword("s3cret")
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}
	if hash == "s3cret" {
		t.Fatal("password must not be stored in plaintext")
	}
	if err := CheckPassword(hash, "s3cret"); err != nil {
		t.Fatalf("CheckPassword with correct password: %v", err)
	}
	if err := CheckPassword(hash, "wrong"); err == nil {
		t.Fatal("CheckPassword must fail for a wrong password")
	}
}

func TestTokenRoundTrip(t *testing.T) {
	m := NewTokenManager("test-secret", time.Hour)
	token, err := m.Sign("user-123")
	if err != nil {
		t.Fatalf("Sign: %v", err)
	}
	userID, err := m.Verify(token)
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if userID != "user-123" {
		t.Fatalf("Verify returned %q, want user-123", userID)
	}
}

func TestTokenWrongSecret(t *testing.T) {
	token, err := NewTokenManager("secret-a", time.Hour).Sign("user-123")
	if err != nil {
		t.Fatalf("Sign: %v", err)
	}
	if _, err := NewTokenManager("secret-b", time.Hour).Verify(token); err != ErrInvalidToken {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}
}

func TestTokenExpired(t *testing.T) {
	m := NewTokenManager("test-secret", time.Hour)
	m.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	token, err := m.Sign("user-123")
	if err != nil {
		t.Fatalf("Sign: %v", err)
	}
	m.now = time.Now
	if _, err := m.Verify(token); err != ErrInvalidToken {
		t.Fatalf("expected ErrInvalidToken for expired token, got %v", err)
	}
}

func TestTokenGarbage(t *testing.T) {
	m := NewTokenManager("test-secret", time.Hour)
	if _, err := m.Verify("not-a-token"); err != ErrInvalidToken {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}
}
