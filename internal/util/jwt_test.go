package util

import (
	"testing"
	"time"
)

func TestGenerateAndParseToken(t *testing.T) {
	token, err := GenerateToken("test-secret", 42, time.Hour)
	if err != nil {
		t.Fatalf("GenerateToken error = %v", err)
	}

	claims, err := ParseToken("test-secret", token)
	if err != nil {
		t.Fatalf("ParseToken error = %v", err)
	}
	if claims.UserID != 42 {
		t.Errorf("UserID = %d, want 42", claims.UserID)
	}
	if claims.ExpiresAt == nil || !claims.ExpiresAt.After(time.Now()) {
		t.Errorf("ExpiresAt = %v, want future", claims.ExpiresAt)
	}
}

func TestParseToken_WrongSecret(t *testing.T) {
	token, err := GenerateToken("secret-a", 1, time.Hour)
	if err != nil {
		t.Fatalf("GenerateToken error = %v", err)
	}
	if _, err := ParseToken("secret-b", token); err == nil {
		t.Error("ParseToken with wrong secret error = nil, want error")
	}
}

func TestGenerateToken_NonPositiveTTLFallsBack(t *testing.T) {
	token, err := GenerateToken("test-secret", 1, -time.Hour)
	if err != nil {
		t.Fatalf("GenerateToken error = %v", err)
	}
	claims, err := ParseToken("test-secret", token)
	if err != nil {
		t.Fatalf("ParseToken error = %v", err)
	}
	if claims.ExpiresAt == nil || !claims.ExpiresAt.After(time.Now()) {
		t.Errorf("fallback ttl should produce a future expiry, got %v", claims.ExpiresAt)
	}
}
