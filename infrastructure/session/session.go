package session

import (
	"net/http"
	"time"
)

const CookieName = "X-Session-Token"

// Lifetime bounds one shift plus overtime.
const Lifetime = 12 * time.Hour

func SessionCookie(value string, maxAge int) *http.Cookie {
	return &http.Cookie{
		Name:     CookieName,
		Value:    value,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		Secure:   false,
	}
}

// NewSessionCookie issues the cookie for a freshly created session.
func NewSessionCookie(value string) *http.Cookie {
	return SessionCookie(value, int(Lifetime.Seconds()))
}

// ClearedCookie expires the session cookie in the browser.
func ClearedCookie() *http.Cookie {
	return SessionCookie("", -1)
}

func DefaultExpiry() time.Time {
	return time.Now().Add(Lifetime)
}
