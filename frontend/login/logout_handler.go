package login

import (
	"log/slog"
	"net/http"

	"fleetcheck/infrastructure/cache"
	sessioncookie "fleetcheck/infrastructure/session"
	"fleetcheck/infrastructure/sqlite"
)

// LogoutHandler ends the session in cache and database, then clears the cookie.
// A missing or unknown cookie still lands on the login screen.
func LogoutHandler(db *sqlite.DB, sessionCache *cache.UserSessionCache) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			http.SetCookie(w, sessioncookie.ClearedCookie())
			http.Redirect(w, r, "/login", http.StatusSeeOther)
		}()

		cookie, err := r.Cookie(sessioncookie.CookieName)
		if err != nil || cookie.Value == "" {
			return
		}
		token := cookie.Value
		if s, ok := sessionCache.FindSessionBySessionToken(token); ok {
			slog.Info("logout", slog.String("actor", s.ActorKey()), slog.String("role", s.Role))
		}
		sessionCache.DeleteSessionBySessionToken(token)
		if err := DeleteSessionByToken(r.Context(), db, token); err != nil {
			slog.Error("delete session failed", slog.String("session_id", token), slog.Any("err", err))
		}
	}
}
