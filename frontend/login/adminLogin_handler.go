package login

import (
	"database/sql"
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"fleetcheck/infrastructure/cache"
	"fleetcheck/infrastructure/rbac"
	sessioncookie "fleetcheck/infrastructure/session"
	"fleetcheck/infrastructure/sqlite"
	"fleetcheck/models"
)

// CreateAdminLoginHandler authenticates a local admin account.
func CreateAdminLoginHandler(db *sqlite.DB, sessionCache *cache.UserSessionCache, userCache *cache.UserCache, defaultLanguage string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			http.Redirect(w, r, "/login/admin?error="+url.QueryEscape("invalid form data"), http.StatusSeeOther)
			return
		}

		username := strings.TrimSpace(r.FormValue("username"))
		password := strings.TrimSpace(r.FormValue("password"))
		if username == "" || password == "" {
			http.Redirect(w, r, "/login/admin?error="+url.QueryEscape("username and password are required"), http.StatusSeeOther)
			return
		}

		user, err := authenticateUser(r.Context(), db, username, password)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				http.Redirect(w, r, "/login/admin?error="+url.QueryEscape("invalid username or password"), http.StatusSeeOther)
				return
			}
			slog.Error("admin login failed", slog.String("username", username), slog.Any("err", err))
			http.Redirect(w, r, "/login/admin?error="+url.QueryEscape("authentication failed"), http.StatusSeeOther)
			return
		}

		session := newAdminSession(user)
		if err := startSession(r.Context(), db, sessionCache, &session, defaultLanguage); err != nil {
			http.Redirect(w, r, "/login/admin?error="+url.QueryEscape("failed to create session"), http.StatusSeeOther)
			return
		}
		userCache.Add(user.Username, user)

		http.SetCookie(w, sessioncookie.NewSessionCookie(session.ID))
		http.Redirect(w, r, rbac.LandingPath(session.Role), http.StatusSeeOther)
	}
}

func newAdminSession(user models.User) models.Session {
	return models.Session{
		ID:          newSessionToken(adminTokenPrefix),
		UserID:      user.ID,
		DisplayName: user.Username,
		Role:        user.Role,
		UserRoles:   []string{user.Role},
		ExpiresAt:   sessioncookie.DefaultExpiry(),
	}
}
