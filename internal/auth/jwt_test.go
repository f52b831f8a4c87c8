package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenVerifier(t *testing.T) {
	v := NewTokenVerifier("secret")

	t.Run("round trip", func(t *testing.T) {
		tok, err := v.Issue(&Identity{UserID: "u-1", Email: "admin@example.com", Role: RoleAdmin}, time.Hour)
		require.NoError(t, err)

		id, err := v.Verify("Bearer " + tok)
		require.NoError(t, err)
		assert.Equal(t, &Identity{UserID: "u-1", Email: "admin@example.com", Role: RoleAdmin}, id)
	})

	t.Run("missing role defaults to customer", func(t *testing.T) {
		tok, err := v.Issue(&Identity{UserID: "u-2"}, time.Hour)
		require.NoError(t, err)

		id, err := v.Verify(tok)
		require.NoError(t, err)
		assert.Equal(t, RoleCustomer, id.Role)
	})

	t.Run("rejected tokens", func(t *testing.T) {
		expired, err := v.Issue(&Identity{UserID: "u-1"}, -time.Minute)
		require.NoError(t, err)

		foreign, err := NewTokenVerifier("other").Issue(&Identity{UserID: "u-1"}, time.Hour)
		require.NoError(t, err)

		anonymous, err := v.Issue(&Identity{}, time.Hour)
		require.NoError(t, err)

		none, err := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.RegisteredClaims{Subject: "u-1"}).
			SignedString(jwt.UnsafeAllowNoneSignatureType)
		require.NoError(t, err)

		for name, raw := range map[string]string{
			"empty":     "",
			"garbage":   "Bearer not.a.token",
			"expired":   expired,
			"foreign":   foreign,
			"anonymous": anonymous,
			"alg none":  none,
		} {
			_, err := v.Verify(raw)
			assert.ErrorIs(t, err, ErrInvalidToken, name)
		}
	})
}
