// Package auth implements the token-verification collaborator. Tokens are
// only verified here; issuing and refreshing them belongs to the identity
// provider.
package auth

import (
	"context"
	"fmt"

	"github.com/buybuddy/backend/internal/domain"
	"github.com/golang-jwt/jwt/v5"
)

// JWTVerifier validates HMAC-signed bearer tokens and resolves the caller
// identity from their claims.
type JWTVerifier struct {
	secret []byte
}

// NewJWTVerifier creates a verifier for tokens signed with the given secret.
func NewJWTVerifier(secret string) *JWTVerifier {
	return &JWTVerifier{secret: []byte(secret)}
}

// Verify parses and validates the token and returns the identity carried in
// its claims. The subject claim is the user id; expiry and signature are
// enforced by the parser.
func (v *JWTVerifier) Verify(ctx context.Context, token string) (*domain.Identity, error) {
	parsed, err := jwt.Parse(token, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return v.secret, nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrUnauthenticated, err)
	}

	claims, ok := parsed.Claims.(jwt.MapClaims)
	if !ok {
		return nil, fmt.Errorf("%w: unexpected claims type", domain.ErrUnauthenticated)
	}

	uid, err := claims.GetSubject()
	if err != nil || uid == "" {
		return nil, fmt.Errorf("%w: token has no subject", domain.ErrUnauthenticated)
	}

	email, _ := claims["email"].(string)

	return &domain.Identity{UID: uid, Email: email}, nil
}
