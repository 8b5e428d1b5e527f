package handlers

import (
	"net/http"
	"time"
)

const (
	RefreshTokenCookie = "refresh_token"
	CartSessionCookie  = "cart_session_id"
	refreshCookiePath  = "/user"
)

// setRefreshCookie scopes the refresh token to the auth path so it never
// rides along on cart traffic.
func setRefreshCookie(w http.ResponseWriter, token string, ttl time.Duration) {
	http.SetCookie(w, &http.Cookie{
		Name:     RefreshTokenCookie,
		Value:    token,
		MaxAge:   int(ttl.Seconds()),
		Path:     refreshCookiePath,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

func clearRefreshCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     RefreshTokenCookie,
		Value:    "",
		MaxAge:   -1,
		Path:     refreshCookiePath,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

// setCSRFCookie must stay readable by script; the double-submit pattern
// depends on the client echoing it back in a header.
func setCSRFCookie(w http.ResponseWriter, name, token string, ttl time.Duration) {
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    token,
		MaxAge:   int(ttl.Seconds()),
		Path:     "/",
		HttpOnly: false,
		SameSite: http.SameSiteStrictMode,
	})
}

func setCartSessionCookie(w http.ResponseWriter, sessionID string, ttl time.Duration) {
	http.SetCookie(w, &http.Cookie{
		Name:     CartSessionCookie,
		Value:    sessionID,
		MaxAge:   int(ttl.Seconds()),
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteStrictMode,
	})
}

func cookieValue(r *http.Request, name string) string {

	cookie, err := r.Cookie(name)
	if err != nil {
		return ""
	}

	return cookie.Value
}
