package http

import (
	"crypto/rand"
	"crypto/subtle"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"fleetcheck/frontend/shared/html"
	sessioncookie "fleetcheck/infrastructure/session"
)

const csrfCookieName = html.CSRFCookieName

// CSRFMiddleware implements a double-submit cookie check. Every response
// carries the token cookie; unsafe requests must echo it in the header or the
// form field and must not come from a foreign Origin.
func (s *Server) CSRFMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := csrfCookieToken(w, r)
		if isSafeMethod(r.Method) {
			next.ServeHTTP(w, r)
			return
		}

		if !sameOrigin(r) {
			slog.Warn("csrf: cross-origin request", slog.String("origin", r.Header.Get("Origin")), slog.String("path", r.URL.Path))
			http.Error(w, "cross-origin request rejected", http.StatusForbidden)
			return
		}
		if !tokensMatch(token, submittedCSRFToken(r)) {
			slog.Warn("csrf: token mismatch", slog.String("method", r.Method), slog.String("path", r.URL.Path))
			http.Error(w, "invalid csrf token", http.StatusForbidden)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func isSafeMethod(method string) bool {
	return method == http.MethodGet || method == http.MethodHead || method == http.MethodOptions
}

// csrfCookieToken returns the request's token, issuing a new cookie when the
// browser has none yet.
func csrfCookieToken(w http.ResponseWriter, r *http.Request) string {
	if c, err := r.Cookie(csrfCookieName); err == nil {
		if v := strings.TrimSpace(c.Value); v != "" {
			return v
		}
	}
	token := rand.Text()
	http.SetCookie(w, &http.Cookie{
		Name:     csrfCookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(sessioncookie.Lifetime.Seconds()),
		SameSite: http.SameSiteStrictMode,
		Secure:   r.TLS != nil,
	})
	return token
}

func submittedCSRFToken(r *http.Request) string {
	if v := strings.TrimSpace(r.Header.Get(html.CSRFHeaderName)); v != "" {
		return v
	}
	return strings.TrimSpace(r.FormValue(html.CSRFFieldName))
}

func tokensMatch(want, got string) bool {
	if want == "" || got == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(want), []byte(got)) == 1
}

// sameOrigin accepts requests without an Origin header, which older browsers
// and the CLI omit; the token check still applies to them.
func sameOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}
	u, err := url.Parse(origin)
	if err != nil {
		return false
	}
	return strings.EqualFold(u.Host, r.Host)
}
