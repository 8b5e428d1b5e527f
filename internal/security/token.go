package security

import (
	"errors"
	"time"

	"github.com/cornucopia-shop/cornucopia-backend/internal/models"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var (
	// ErrTokenExpired means the signature checked out but the token is past
	// its embedded expiry.
	ErrTokenExpired = errors.New("token expired")

	// ErrTokenInvalid covers signature mismatch, malformed structure and
	// algorithm confusion.
	ErrTokenInvalid = errors.New("token invalid")
)

// TokenService issues and validates HS256-signed access and refresh tokens.
type TokenService struct {
	key []byte
}

// NewTokenService fails on an empty signing key so a misconfigured process
// dies at startup instead of minting unverifiable tokens.
func NewTokenService(key []byte) (*TokenService, error) {

	if len(key) == 0 {
		return nil, errors.New("token signing key must not be empty")
	}

	return &TokenService{key: key}, nil
}

// Issue signs a token of the given type for the user, expiring after ttl.
func (s *TokenService) Issue(userID uuid.UUID, username, tokenType string, ttl time.Duration) (string, error) {

	now := time.Now()

	claims := &models.Claims{
		UserID:    userID,
		Username:  username,
		TokenType: tokenType,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	return token.SignedString(s.key)
}

// Validate verifies signature and expiry and returns the embedded claims.
// The signing method is pinned to HMAC; anything else is ErrTokenInvalid.
func (s *TokenService) Validate(tokenString string) (*models.Claims, error) {

	claims := &models.Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrTokenInvalid
		}

		return s.key, nil
	})

	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}

		return nil, ErrTokenInvalid
	}

	if !token.Valid {
		return nil, ErrTokenInvalid
	}

	return claims, nil
}
