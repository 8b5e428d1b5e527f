package middleware

import (
	"log/slog"
	"net/http"

	apperrors "github.com/cornucopia-shop/cornucopia-backend/internal/errors"
	"github.com/cornucopia-shop/cornucopia-backend/internal/security"
	"github.com/cornucopia-shop/cornucopia-backend/internal/utils/response"
)

// ProtectMiddleware guards state-changing endpoints: the Origin/Referer
// allow-list check runs first, then CSRF double-submit validation. The CSRF
// token may arrive in the X-CSRF-Token header or the csrftoken cookie;
// either is accepted as long as it validates on its own.
type ProtectMiddleware struct {
	origins *security.OriginValidator
	csrf    *security.CSRFGuard
}

func NewProtectMiddleware(origins *security.OriginValidator, csrf *security.CSRFGuard) *ProtectMiddleware {
	return &ProtectMiddleware{origins: origins, csrf: csrf}
}

func (m *ProtectMiddleware) Protect(next http.Handler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {

		logger := LoggerFromContext(r.Context())

		if err := m.origins.ValidateRequest(r); err != nil {
			logger.Warn("Origin validation failed", slog.String("error", err.Error()))
			response.Error(w, err)
			return
		}

		token := r.Header.Get(security.CSRFHeaderName)

		if token == "" {
			if cookie, err := r.Cookie(security.CSRFCookieName); err == nil {
				token = cookie.Value
			}
		}

		if token == "" {
			logger.Warn("CSRF token missing")
			response.Error(w, apperrors.ForbiddenError("CSRF token missing"))
			return
		}

		if !m.csrf.Validate(token) {
			logger.Warn("CSRF token rejected")
			response.Error(w, apperrors.ForbiddenError("Invalid or expired CSRF token"))
			return
		}

		next.ServeHTTP(w, r)
	}
}
