package login

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"fleetcheck/frontend/settings"
	"fleetcheck/infrastructure/cache"
	"fleetcheck/infrastructure/rbac"
	"fleetcheck/infrastructure/recordstore"
	sessioncookie "fleetcheck/infrastructure/session"
	"fleetcheck/infrastructure/sqlite"
	"fleetcheck/models"
)

// EmployeeDirectory resolves employee numbers against the record store.
type EmployeeDirectory interface {
	EmployeeLogin(ctx context.Context, employeeNumber string) (models.Employee, error)
}

// CreateLoginHandler signs an employee in by number and issues a session cookie.
func CreateLoginHandler(db *sqlite.DB, directory EmployeeDirectory, sessionCache *cache.UserSessionCache, defaultLanguage string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			http.Redirect(w, r, "/login?error="+url.QueryEscape("invalid form data"), http.StatusSeeOther)
			return
		}

		number := strings.TrimSpace(r.FormValue("employee_number"))
		if number == "" {
			http.Redirect(w, r, "/login?error="+url.QueryEscape("employee number is required"), http.StatusSeeOther)
			return
		}

		employee, err := directory.EmployeeLogin(r.Context(), number)
		if err != nil {
			if errors.Is(err, recordstore.ErrInvalidEmployee) {
				http.Redirect(w, r, "/login?error="+url.QueryEscape("invalid employee number"), http.StatusSeeOther)
				return
			}
			slog.Error("employee login failed", slog.String("employee_number", number), slog.Any("err", err))
			http.Redirect(w, r, "/login?error="+url.QueryEscape("record store unavailable"), http.StatusSeeOther)
			return
		}
		if employee.EmployeeNumber == "" {
			employee.EmployeeNumber = number
		}

		session := newEmployeeSession(employee)
		if err := startSession(r.Context(), db, sessionCache, &session, defaultLanguage); err != nil {
			slog.Error("create session failed", slog.String("employee_number", number), slog.Any("err", err))
			http.Redirect(w, r, "/login?error="+url.QueryEscape("failed to create session"), http.StatusSeeOther)
			return
		}

		http.SetCookie(w, sessioncookie.NewSessionCookie(session.ID))
		http.Redirect(w, r, rbac.LandingPath(session.Role), http.StatusSeeOther)
	}
}

func startSession(ctx context.Context, db *sqlite.DB, sessionCache *cache.UserSessionCache, session *models.Session, defaultLanguage string) error {
	if err := persistSession(ctx, db, *session); err != nil {
		return err
	}
	lang, err := settings.LoadLanguage(ctx, db, session.ActorKey(), defaultLanguage)
	if err != nil {
		slog.Warn("load language failed", slog.String("actor", session.ActorKey()), slog.Any("err", err))
	}
	session.Language = lang
	sessionCache.AddSession(*session)
	return nil
}

func newEmployeeSession(employee models.Employee) models.Session {
	role := rbac.RoleForEmployee(employee)
	name := strings.TrimSpace(employee.Name)
	if name == "" {
		name = employee.EmployeeNumber
	}
	return models.Session{
		ID:             newSessionToken(employeeTokenPrefix),
		EmployeeNumber: employee.EmployeeNumber,
		DisplayName:    name,
		Role:           role,
		UserRoles:      []string{role},
		ExpiresAt:      sessioncookie.DefaultExpiry(),
	}
}
