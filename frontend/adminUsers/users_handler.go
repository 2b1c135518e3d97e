package adminusers

import (
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"fleetcheck/frontend/shared/context"
	"fleetcheck/frontend/shared/nav"
	"fleetcheck/infrastructure/audit"
	"fleetcheck/infrastructure/cache"
	"fleetcheck/infrastructure/sqlite"
)

// UsersPageQueryHandler renders the local account list.
func UsersPageQueryHandler(db *sqlite.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		session, ok := context.GetSessionFromContext(r.Context())
		if !ok {
			http.Redirect(w, r, "/login", http.StatusSeeOther)
			return
		}

		users, err := LoadUsers(r.Context(), db)
		if err != nil {
			slog.Error("admin users: failed to load data", slog.Any("err", err))
			http.Error(w, "failed to load users", http.StatusInternalServerError)
			return
		}
		data := PageData{
			TopNav:       nav.BuildTopNavData(session, "/tasker/admin/users"),
			Users:        users,
			Roles:        LocalRoles,
			Status:       r.URL.Query().Get("status"),
			ErrorMessage: r.URL.Query().Get("error"),
		}

		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		if err := UsersListPage(data).Render(r.Context(), w); err != nil {
			http.Error(w, "failed to render users page", http.StatusInternalServerError)
			return
		}
	}
}

func CreateUserCommandHandler(db *sqlite.DB, auditSvc *audit.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			http.Redirect(w, r, "/tasker/admin/users?error="+url.QueryEscape("invalid form data"), http.StatusSeeOther)
			return
		}

		username := strings.TrimSpace(r.FormValue("username"))
		password := strings.TrimSpace(r.FormValue("password"))
		role := strings.TrimSpace(r.FormValue("role"))

		if err := CreateUser(r.Context(), db, username, password, role); err != nil {
			if !errors.Is(err, ErrUsernameExists) && !errors.Is(err, ErrInvalidRole) &&
				!errors.Is(err, ErrUsernameRequired) && !errors.Is(err, ErrPasswordRequired) &&
				!strings.HasPrefix(err.Error(), "password must") {
				slog.Error("admin users: create failed", slog.String("username", username), slog.Any("err", err))
			}
			http.Redirect(w, r, "/tasker/admin/users?error="+url.QueryEscape(err.Error()), http.StatusSeeOther)
			return
		}

		actor := context.Actor(r.Context())
		if err := auditSvc.Record(r.Context(), db, actor, "user.create", "users", username, map[string]string{"role": role}); err != nil {
			slog.Error("audit user create failed", slog.String("username", username), slog.Any("err", err))
		}
		http.Redirect(w, r, "/tasker/admin/users?status="+url.QueryEscape("user created"), http.StatusSeeOther)
	}
}

// ResetPasswordCommandHandler sets a new password and drops the cached account.
func ResetPasswordCommandHandler(db *sqlite.DB, userCache *cache.UserCache, auditSvc *audit.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
		if err != nil || userID <= 0 {
			http.Redirect(w, r, "/tasker/admin/users?error="+url.QueryEscape("invalid user"), http.StatusSeeOther)
			return
		}
		if err := r.ParseForm(); err != nil {
			http.Redirect(w, r, "/tasker/admin/users?error="+url.QueryEscape("invalid form data"), http.StatusSeeOther)
			return
		}

		username, err := ResetPassword(r.Context(), db, userID, strings.TrimSpace(r.FormValue("password")))
		if err != nil {
			http.Redirect(w, r, "/tasker/admin/users?error="+url.QueryEscape(err.Error()), http.StatusSeeOther)
			return
		}
		userCache.Delete(username)

		actor := context.Actor(r.Context())
		if err := auditSvc.Record(r.Context(), db, actor, "user.password_reset", "users", username, nil); err != nil {
			slog.Error("audit password reset failed", slog.String("username", username), slog.Any("err", err))
		}
		http.Redirect(w, r, "/tasker/admin/users?status="+url.QueryEscape("password updated for "+username), http.StatusSeeOther)
	}
}
