package util

import (
	"net/http"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const testSecret = "unit-test-secret"

func signToken(t *testing.T, claims jwt.MapClaims, secret string) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(secret))
	if err != nil {
		t.Fatalf("signing token: %v", err)
	}
	return signed
}

func TestParseJWTValidToken(t *testing.T) {
	signed := signToken(t, jwt.MapClaims{
		"user_id": 42,
		"exp":     time.Now().Add(time.Hour).Unix(),
		"iat":     time.Now().Unix(),
	}, testSecret)

	userID, err := ParseJWT(signed, testSecret)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if userID != 42 {
		t.Fatalf("expected user 42, got %d", userID)
	}
}

func TestParseJWTWrongSecret(t *testing.T) {
	signed := signToken(t, jwt.MapClaims{
		"user_id": 42,
		"exp":     time.Now().Add(time.Hour).Unix(),
	}, testSecret)

	if _, err := ParseJWT(signed, "different-secret"); err == nil {
		t.Fatal("expected signature verification to fail")
	}
}

func TestParseJWTExpiredToken(t *testing.T) {
	signed := signToken(t, jwt.MapClaims{
		"user_id": 42,
		"exp":     time.Now().Add(-time.Hour).Unix(),
	}, testSecret)

	if _, err := ParseJWT(signed, testSecret); err == nil {
		t.Fatal("expected expired token to be rejected")
	}
}

func TestParseJWTMissingUserID(t *testing.T) {
	signed := signToken(t, jwt.MapClaims{
		"exp": time.Now().Add(time.Hour).Unix(),
	}, testSecret)

	if _, err := ParseJWT(signed, testSecret); err == nil {
		t.Fatal("expected token without user_id to be rejected")
	}
}

func TestExtractToken(t *testing.T) {
	req, _ := http.NewRequest(http.MethodGet, "/projects/1/schedule", nil)
	req.Header.Set("Authorization", "Bearer abc.def.ghi")
	if got := ExtractToken(req); got != "abc.def.ghi" {
		t.Fatalf("expected bearer token, got %q", got)
	}

	req.Header.Set("Authorization", "Basic dXNlcjpwYXNz")
	if got := ExtractToken(req); got != "" {
		t.Fatalf("expected empty token for non-bearer scheme, got %q", got)
	}

	req.Header.Del("Authorization")
	if got := ExtractToken(req); got != "" {
		t.Fatalf("expected empty token without header, got %q", got)
	}
}
