package auth

import (
	"context"
	"testing"
	"time"

	"github.com/buybuddy/backend/internal/domain"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "unit-test-secret"

func signToken(t *testing.T, secret string, claims jwt.MapClaims) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(secret))
	require.NoError(t, err)
	return signed
}

func TestVerify(t *testing.T) {
	ctx := context.Background()
	verifier := NewJWTVerifier(testSecret)

	t.Run("valid token resolves identity", func(t *testing.T) {
		token := signToken(t, testSecret, jwt.MapClaims{
			"sub":   "user-1",
			"email": "user1@example.com",
			"exp":   time.Now().Add(time.Hour).Unix(),
		})

		identity, err := verifier.Verify(ctx, token)
		require.NoError(t, err)
		assert.Equal(t, "user-1", identity.UID)
		assert.Equal(t, "user1@example.com", identity.Email)
	})

	t.Run("email claim is optional", func(t *testing.T) {
		token := signToken(t, testSecret, jwt.MapClaims{
			"sub": "user-1",
			"exp": time.Now().Add(time.Hour).Unix(),
		})

		identity, err := verifier.Verify(ctx, token)
		require.NoError(t, err)
		assert.Equal(t, "user-1", identity.UID)
		assert.Empty(t, identity.Email)
	})

	t.Run("wrong secret is rejected", func(t *testing.T) {
		token := signToken(t, "other-secret", jwt.MapClaims{
			"sub": "user-1",
			"exp": time.Now().Add(time.Hour).Unix(),
		})

		_, err := verifier.Verify(ctx, token)
		assert.ErrorIs(t, err, domain.ErrUnauthenticated)
	})

	t.Run("expired token is rejected", func(t *testing.T) {
		token := signToken(t, testSecret, jwt.MapClaims{
			"sub": "user-1",
			"exp": time.Now().Add(-time.Hour).Unix(),
		})

		_, err := verifier.Verify(ctx, token)
		assert.ErrorIs(t, err, domain.ErrUnauthenticated)
	})

	t.Run("missing subject is rejected", func(t *testing.T) {
		token := signToken(t, testSecret, jwt.MapClaims{
			"email": "user1@example.com",
			"exp":   time.Now().Add(time.Hour).Unix(),
		})

		_, err := verifier.Verify(ctx, token)
		assert.ErrorIs(t, err, domain.ErrUnauthenticated)
	})

	t.Run("garbage token is rejected", func(t *testing.T) {
		_, err := verifier.Verify(ctx, "not-a-token")
		assert.ErrorIs(t, err, domain.ErrUnauthenticated)
	})

	t.Run("unsigned token is rejected", func(t *testing.T) {
		token := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.MapClaims{"sub": "user-1"})
		signed, err := token.SignedString(jwt.UnsafeAllowNoneSignatureType)
		require.NoError(t, err)

		_, err = verifier.Verify(ctx, signed)
		assert.ErrorIs(t, err, domain.ErrUnauthenticated)
	})
}
