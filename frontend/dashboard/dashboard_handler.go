package dashboard

import (
	"encoding/json"
	"log/slog"
	"net/http"

	dashboardsvc "fleetcheck/domain/dashboard"
	sessioncontext "fleetcheck/frontend/shared/context"
	"fleetcheck/frontend/shared/nav"
)

func DashboardPageQueryHandler(svc *dashboardsvc.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		session, ok := sessioncontext.GetSessionFromContext(r.Context())
		if !ok {
			http.Redirect(w, r, "/login", http.StatusSeeOther)
			return
		}

		data := PageData{
			TopNav:      nav.BuildTopNavData(session, "/tasker/dashboard"),
			Permissions: session.ScreenPermissions,
			Status:      r.URL.Query().Get("status"),
		}
		stats, err := svc.Stats(r.Context())
		if err != nil {
			slog.Error("dashboard stats failed", slog.Any("err", err))
			data.Error = "Record store unavailable: " + err.Error()
		}
		data.Stats = stats

		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		if err := DashboardPage(data).Render(r.Context(), w); err != nil {
			http.Error(w, "failed to render dashboard", http.StatusInternalServerError)
			return
		}
	}
}

// DashboardStatsAPIHandler serves the aggregated stats as JSON.
func DashboardStatsAPIHandler(svc *dashboardsvc.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		stats, err := svc.Stats(r.Context())
		w.Header().Set("Content-Type", "application/json")
		if err != nil {
			slog.Error("dashboard stats failed", slog.Any("err", err))
			w.WriteHeader(http.StatusBadGateway)
			_ = json.NewEncoder(w).Encode(map[string]string{"error": err.Error()})
			return
		}
		_ = json.NewEncoder(w).Encode(stats)
	}
}
