package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"
)

const testSecret = "a-test-secret-that-is-long-enough-0123"

func TestTokenIssuer_GenerateAndValidate(t *testing.T) {
	req := require.New(t)
	issuer := NewTokenIssuer(testSecret, time.Hour)

	token, err := issuer.Generate("user-1", []string{"user"})
	req.NoError(err)

	claims, err := issuer.Validate(token)
	req.NoError(err)
	req.Equal("user-1", claims.UserID)
	req.Equal("user-1", claims.Subject)
	req.Equal([]string{"user"}, claims.Roles)
	req.Equal(issuerName, claims.Issuer)
}

func TestTokenIssuer_Rejects(t *testing.T) {
	req := require.New(t)
	issuer := NewTokenIssuer(testSecret, time.Hour)

	// Signed with another secret
	foreign, err := NewTokenIssuer("another-secret-that-is-long-enough-456", time.Hour).Generate("user-1", nil)
	req.NoError(err)
	_, err = issuer.Validate(foreign)
	req.ErrorIs(err, jwt.ErrTokenSignatureInvalid)

	// Expired
	expired, err := NewTokenIssuer(testSecret, -time.Minute).Generate("user-1", nil)
	req.NoError(err)
	_, err = issuer.Validate(expired)
	req.ErrorIs(err, jwt.ErrTokenExpired)

	// Wrong issuer
	other := jwt.NewWithClaims(jwt.SigningMethodHS256, &CustomClaims{
		UserID: "user-1",
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    "someone-else",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	})
	signed, err := other.SignedString([]byte(testSecret))
	req.NoError(err)
	_, err = issuer.Validate(signed)
	req.ErrorIs(err, jwt.ErrTokenInvalidIssuer)

	// Garbage
	_, err = issuer.Validate("not.a.token")
	req.Error(err)
}
