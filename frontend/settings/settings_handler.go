package settings

import (
	"log/slog"
	"net/http"
	"net/url"

	sessioncontext "fleetcheck/frontend/shared/context"
	"fleetcheck/frontend/shared/nav"
	"fleetcheck/infrastructure/cache"
	"fleetcheck/infrastructure/sqlite"
)

func SettingsPageHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		session, ok := sessioncontext.GetSessionFromContext(r.Context())
		if !ok {
			http.Redirect(w, r, "/login", http.StatusSeeOther)
			return
		}
		data := PageData{
			TopNav:   nav.BuildTopNavData(session, "/tasker/settings"),
			Language: nav.NormalizeLanguage(session.Language),
			Status:   r.URL.Query().Get("status"),
			Error:    r.URL.Query().Get("error"),
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		if err := SettingsPage(data).Render(r.Context(), w); err != nil {
			http.Error(w, "failed to render settings page", http.StatusInternalServerError)
			return
		}
	}
}

func LanguageUpdateHandler(db *sqlite.DB, sessionCache *cache.UserSessionCache) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		session, _ := sessioncontext.GetSessionFromContext(r.Context())
		if err := r.ParseForm(); err != nil {
			http.Redirect(w, r, "/tasker/settings?error="+url.QueryEscape("invalid form"), http.StatusSeeOther)
			return
		}
		requested := r.FormValue("language")
		lang := nav.NormalizeLanguage(requested)
		if lang != requested {
			http.Redirect(w, r, "/tasker/settings?error="+url.QueryEscape("unsupported language"), http.StatusSeeOther)
			return
		}
		actor := session.ActorKey()
		if err := SaveLanguage(r.Context(), db, actor, lang); err != nil {
			slog.Error("save language failed", slog.String("actor", actor), slog.Any("err", err))
			http.Redirect(w, r, "/tasker/settings?error="+url.QueryEscape("save failed"), http.StatusSeeOther)
			return
		}
		if sessionCache != nil {
			sessionCache.SetLanguage(actor, lang)
		}
		http.Redirect(w, r, "/tasker/settings?status=saved", http.StatusSeeOther)
	}
}
