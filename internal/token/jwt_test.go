package token

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func TestJWT_AccessToken_Roundtrip(t *testing.T) {
	j := NewJWT("secret", time.Hour)
	u := uuid.New()

	access, err := j.GenerateAccessToken(u)
	require.NoError(t, err)
	got, err := j.ParseAccessToken(access)
	require.NoError(t, err)
	require.Equal(t, u, got)
}

func TestJWT_WrongSecret(t *testing.T) {
	access, err := NewJWT("secret", time.Hour).GenerateAccessToken(uuid.New())
	require.NoError(t, err)

	_, err = NewJWT("other", time.Hour).ParseAccessToken(access)
	require.Error(t, err)
}

func TestJWT_Expired(t *testing.T) {
	j := &JWT{secretKey: []byte("secret"), accessTTL: -time.Minute}

	access, err := j.GenerateAccessToken(uuid.New())
	require.NoError(t, err)

	_, err = j.ParseAccessToken(access)
	require.Error(t, err)
}

func signClaims(t *testing.T, issuer, kind string) string {
	t.Helper()
	now := time.Now()
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			Subject:   uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour)),
		},
		Kind: kind,
	})
	signed, err := tok.SignedString([]byte("secret"))
	require.NoError(t, err)
	return signed
}

func TestJWT_TokenType_Mismatch(t *testing.T) {
	_, err := NewJWT("secret", time.Hour).ParseAccessToken(signClaims(t, "gophchat", "refresh"))
	require.ErrorIs(t, err, errWrongTokenType)
}

func TestJWT_ForeignIssuer(t *testing.T) {
	_, err := NewJWT("secret", time.Hour).ParseAccessToken(signClaims(t, "someone-else", typeAccess))
	require.ErrorIs(t, err, jwt.ErrTokenInvalidIssuer)
}

func TestJWT_Garbage(t *testing.T) {
	_, err := NewJWT("secret", time.Hour).ParseAccessToken("not-a-token")
	require.Error(t, err)
}
