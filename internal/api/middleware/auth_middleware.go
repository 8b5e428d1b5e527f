package middleware

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	apperrors "github.com/cornucopia-shop/cornucopia-backend/internal/errors"
	"github.com/cornucopia-shop/cornucopia-backend/internal/models"
	"github.com/cornucopia-shop/cornucopia-backend/internal/security"
	"github.com/cornucopia-shop/cornucopia-backend/internal/utils/response"
)

type userContextKey string

const UserContextKey = userContextKey("user")

type AuthMiddleware struct {
	tokens *security.TokenService
}

func NewAuthMiddleware(tokens *security.TokenService) *AuthMiddleware {
	return &AuthMiddleware{tokens: tokens}
}

// Authenticate rejects requests without a valid Bearer access token.
func (m *AuthMiddleware) Authenticate(next http.Handler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {

		logger := LoggerFromContext(r.Context())

		claims, err := m.claimsFromRequest(r)
		if err != nil {
			logger.Warn("Authentication failed", slog.String("error", err.Error()))
			response.Error(w, err)
			return
		}

		next.ServeHTTP(w, r.WithContext(withClaims(r.Context(), claims)))
	}
}

// AuthenticateOptional resolves the caller's identity when a valid Bearer
// access token is present and lets the request through anonymously
// otherwise. Cart endpoints serve both kinds of caller.
func (m *AuthMiddleware) AuthenticateOptional(next http.Handler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {

		if r.Header.Get("Authorization") == "" {
			next.ServeHTTP(w, r)
			return
		}

		claims, err := m.claimsFromRequest(r)
		if err != nil {
			next.ServeHTTP(w, r)
			return
		}

		next.ServeHTTP(w, r.WithContext(withClaims(r.Context(), claims)))
	}
}

func (m *AuthMiddleware) claimsFromRequest(r *http.Request) (*models.Claims, error) {

	// Get token from Authorization header
	authHeader := r.Header.Get("Authorization")

	if authHeader == "" {
		return nil, apperrors.UnauthorizedError("Authorization header is required")
	}

	// Token is of format : "Bearer <token>"
	tokenParts := strings.Split(authHeader, " ")

	if len(tokenParts) != 2 || tokenParts[0] != "Bearer" {
		return nil, apperrors.UnauthorizedError("Invalid authorization format")
	}

	claims, err := m.tokens.Validate(tokenParts[1])
	if err != nil {

		if errors.Is(err, security.ErrTokenExpired) {
			return nil, apperrors.UnauthorizedError("Access token expired")
		}

		return nil, apperrors.UnauthorizedError("Invalid access token")
	}

	// Refresh tokens never authenticate a request directly.
	if claims.TokenType != models.TokenTypeAccess {
		return nil, apperrors.UnauthorizedError("Invalid access token")
	}

	return claims, nil
}

func withClaims(ctx context.Context, claims *models.Claims) context.Context {

	ctx = context.WithValue(ctx, UserContextKey, claims)

	requestScopedLogger := LoggerFromContext(ctx).With(slog.String("userId", claims.UserID.String()))

	return context.WithValue(ctx, LoggerKey, requestScopedLogger)
}

// ClaimsFromContext returns the authenticated principal, or nil for an
// anonymous request.
func ClaimsFromContext(ctx context.Context) *models.Claims {

	if claims, ok := ctx.Value(UserContextKey).(*models.Claims); ok {
		return claims
	}

	return nil
}
