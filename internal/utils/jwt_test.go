package utils

import (
	"testing"

	"github.com/golang-jwt/jwt/v5"
)

func TestAccessTokenRoundTrip(t *testing.T) {
	tok, err := NewAccessToken("secret", 7, "customer", 15)
	if err != nil {
		t.Fatalf("NewAccessToken: %v", err)
	}

	claims, err := VerifyAccessToken("secret", tok.Token)
	if err != nil {
		t.Fatalf("VerifyAccessToken: %v", err)
	}
	if claims.UserID != 7 {
		t.Errorf("expected user id 7, got %d", claims.UserID)
	}
	if claims.Role != "customer" {
		t.Errorf("expected role customer, got %q", claims.Role)
	}
}

func TestVerifyAccessTokenRejectsWrongSecret(t *testing.T) {
	tok, err := NewAccessToken("secret", 7, "customer", 15)
	if err != nil {
		t.Fatalf("NewAccessToken: %v", err)
	}
	if _, err := VerifyAccessToken("other-secret", tok.Token); err == nil {
		t.Error("token signed with a different secret must be rejected")
	}
}

func TestVerifyAccessTokenRejectsExpired(t *testing.T) {
	tok, err := NewAccessToken("secret", 7, "customer", -1)
	if err != nil {
		t.Fatalf("NewAccessToken: %v", err)
	}
	if _, err := VerifyAccessToken("secret", tok.Token); err == nil {
		t.Error("expired token must be rejected")
	}
}

func TestVerifyAccessTokenRejectsUnsignedAlg(t *testing.T) {
	// alg=none carries no signature and must never pass.
	unsigned := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.MapClaims{"sub": 7, "role": "admin"})
	raw, err := unsigned.SignedString(jwt.UnsafeAllowNoneSignatureType)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	if _, err := VerifyAccessToken("secret", raw); err == nil {
		t.Error("alg=none token must be rejected")
	}
}

func TestVerifyAccessTokenRejectsGarbage(t *testing.T) {
	if _, err := VerifyAccessToken("secret", "not-a-jwt"); err == nil {
		t.Error("malformed token must be rejected")
	}
}

func TestRefreshTokenHashing(t *testing.T) {
	tok, err := NewRefreshToken(7)
	if err != nil {
		t.Fatalf("NewRefreshToken: %v", err)
	}
	if len(tok.Raw) != 96 {
		t.Errorf("expected 96 hex chars, got %d", len(tok.Raw))
	}

	h1 := HashRefreshRaw(tok.Raw)
	h2 := HashRefreshRaw(tok.Raw)
	if h1 != h2 {
		t.Error("hashing must be deterministic")
	}
	if h1 == tok.Raw {
		t.Error("stored hash must differ from the raw token")
	}

	other, err := NewRefreshToken(7)
	if err != nil {
		t.Fatalf("NewRefreshToken: %v", err)
	}
	if HashRefreshRaw(other.Raw) == h1 {
		t.Error("distinct tokens must hash differently")
	}
}

func TestPasswordHashing(t *testing.T) {
	hash, err := HashPassword("password123", 4)
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}
	if !VerifyPassword(hash, "password123") {
		t.Error("correct password should verify")
	}
	if VerifyPassword(hash, "wrong") {
		t.Error("wrong password must not verify")
	}
}
