package help

import (
	"net/http"

	sessioncontext "fleetcheck/frontend/shared/context"
	"fleetcheck/frontend/shared/nav"
	"fleetcheck/infrastructure/rbac"
)

type PageData struct {
	TopNav     nav.TopNavData
	IsAdmin    bool
	IsWorkshop bool
	IsOperator bool
}

func HelpPageQueryHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		session, ok := sessioncontext.GetSessionFromContext(r.Context())
		if !ok {
			http.Redirect(w, r, "/login", http.StatusSeeOther)
			return
		}

		data := PageData{
			TopNav:     nav.BuildTopNavData(session, "/tasker/help"),
			IsAdmin:    session.Role == rbac.RoleAdmin,
			IsWorkshop: session.Role == rbac.RoleWorkshop,
			IsOperator: session.Role == rbac.RoleOperator,
		}

		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		if err := HelpPage(data).Render(r.Context(), w); err != nil {
			http.Error(w, "failed to render help page", http.StatusInternalServerError)
			return
		}
	}
}
