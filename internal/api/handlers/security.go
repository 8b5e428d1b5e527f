package handlers

import (
	"net/http"

	"github.com/cornucopia-shop/cornucopia-backend/internal/security"
	"github.com/cornucopia-shop/cornucopia-backend/internal/utils/response"
)

type SecurityHandler struct {
	csrf *security.CSRFGuard
}

func NewSecurityHandler(csrf *security.CSRFGuard) *SecurityHandler {
	return &SecurityHandler{csrf: csrf}
}

type csrfTokenResponse struct {
	CSRFToken string `json:"csrf_token"`
}

// CSRFToken hands a fresh anti-forgery token to the client, both in the
// body and as a script-readable cookie for the double-submit pattern. CSRF
// tokens are not secret, so the endpoint needs no authentication.
func (h *SecurityHandler) CSRFToken() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {

		token := h.csrf.Generate()

		setCSRFCookie(w, security.CSRFCookieName, token, h.csrf.TTL())

		response.WriteJson(w, http.StatusOK, csrfTokenResponse{CSRFToken: token})
	}
}
