package auth_test

import (
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/twokhq/realtime-core/internal/auth"
)

const secret = "test-secret"

func sign(t *testing.T, claims jwt.MapClaims, key string) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	s, err := token.SignedString([]byte(key))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return s
}

func TestVerify_ValidToken(t *testing.T) {
	v := auth.NewJWTVerifier(secret)

	exp := time.Now().Add(time.Hour)
	tok := sign(t, jwt.MapClaims{"sub": "user-1", "exp": exp.Unix()}, secret)

	id, err := v.Verify(tok)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if id.UserID != "user-1" {
		t.Fatalf("expected user-1, got %q", id.UserID)
	}
	if id.ExpiresAt == nil || id.ExpiresAt.Unix() != exp.Unix() {
		t.Fatal("expected expiry to be captured")
	}
}

func TestVerify_IDClaimFallback(t *testing.T) {
	v := auth.NewJWTVerifier(secret)

	tok := sign(t, jwt.MapClaims{"id": "user-2"}, secret)
	id, err := v.Verify(tok)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if id.UserID != "user-2" {
		t.Fatalf("expected user-2, got %q", id.UserID)
	}
}

func TestVerify_Rejections(t *testing.T) {
	v := auth.NewJWTVerifier(secret)

	tests := []struct {
		name  string
		token string
	}{
		{"garbage", "not-a-token"},
		{"wrong key", sign(t, jwt.MapClaims{"sub": "user-1"}, "other-secret")},
		{"expired", sign(t, jwt.MapClaims{"sub": "user-1", "exp": time.Now().Add(-time.Hour).Unix()}, secret)},
		{"no subject", sign(t, jwt.MapClaims{"foo": "bar"}, secret)},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := v.Verify(tc.token); !errors.Is(err, auth.ErrInvalidToken) {
				t.Fatalf("expected ErrInvalidToken, got %v", err)
			}
		})
	}
}
