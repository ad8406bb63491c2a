// Package auth verifies the bearer credentials presented over realtime
// connections. Token issuance belongs to the main application; this
// package only checks signatures and expiry, and fails closed.
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrInvalidToken is returned for any credential that does not verify:
// bad signature, malformed, expired, or missing the subject claim.
var ErrInvalidToken = errors.New("invalid or expired token")

// Identity is the verified owner of a credential.
type Identity struct {
	UserID    string
	ExpiresAt *time.Time
}

// Verifier checks a bearer credential and returns the identity it
// belongs to.
type Verifier interface {
	Verify(token string) (Identity, error)
}

// JWTVerifier validates HMAC-signed JWTs issued by the main application.
type JWTVerifier struct {
	secret []byte
}

func NewJWTVerifier(secret string) *JWTVerifier {
	return &JWTVerifier{secret: []byte(secret)}
}

func (v *JWTVerifier) Verify(tokenString string) (Identity, error) {
	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return v.secret, nil
	})
	if err != nil || !token.Valid {
		return Identity{}, ErrInvalidToken
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return Identity{}, ErrInvalidToken
	}

	userID := subjectClaim(claims)
	if userID == "" {
		return Identity{}, ErrInvalidToken
	}

	id := Identity{UserID: userID}
	if exp, err := claims.GetExpirationTime(); err == nil && exp != nil {
		t := exp.Time
		id.ExpiresAt = &t
	}
	return id, nil
}

// subjectClaim accepts either the registered "sub" claim or the "id"
// field the main application embeds in its session tokens.
func subjectClaim(claims jwt.MapClaims) string {
	if sub, err := claims.GetSubject(); err == nil && sub != "" {
		return sub
	}
	if id, ok := claims["id"].(string); ok {
		return id
	}
	return ""
}

var _ Verifier = (*JWTVerifier)(nil)
