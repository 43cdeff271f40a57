package token

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/dtroode/gophchat-server/internal/model"
)

const (
	issuer     = "gophchat"
	typeAccess = "access"
)

var errWrongTokenType = errors.New("token type mismatch")

// Claims carries the user id in Subject plus the token kind.
type Claims struct {
	jwt.RegisteredClaims
	Kind string `json:"kind"`
}

// JWT signs and checks HS256 access tokens issued on login.
type JWT struct {
	secretKey []byte
	accessTTL time.Duration
}

// NewJWT creates a token manager signing with secretKey. Tokens expire after accessTTL.
func NewJWT(secretKey string, accessTTL time.Duration) model.TokenManager {
	return &JWT{secretKey: []byte(secretKey), accessTTL: accessTTL}
}

func (j *JWT) GenerateAccessToken(userID uuid.UUID) (string, error) {
	now := time.Now()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			Subject:   userID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(j.accessTTL)),
		},
		Kind: typeAccess,
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(j.secretKey)
	if err != nil {
		return "", fmt.Errorf("failed to sign access token: %w", err)
	}
	return signed, nil
}

// ParseAccessToken returns the user id of a valid, unexpired access token.
func (j *JWT) ParseAccessToken(tokenString string) (uuid.UUID, error) {
	var claims Claims
	_, err := jwt.ParseWithClaims(tokenString, &claims, func(*jwt.Token) (any, error) {
		return j.secretKey, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(issuer),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to parse access token: %w", err)
	}
	if claims.Kind != typeAccess {
		return uuid.Nil, fmt.Errorf("%w: %q", errWrongTokenType, claims.Kind)
	}

	userID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to parse token subject: %w", err)
	}
	return userID, nil
}
