package repairs

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	repairsvc "fleetcheck/domain/repairs"
	sessioncontext "fleetcheck/frontend/shared/context"
	"fleetcheck/frontend/shared/nav"
	"fleetcheck/frontend/shared/photos"
)

// MakeLister lists known machine makes for the form's suggestions.
type MakeLister interface {
	Makes(ctx context.Context) ([]string, error)
}

func ReportPageQueryHandler(catalog MakeLister) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		session, ok := sessioncontext.GetSessionFromContext(r.Context())
		if !ok {
			http.Redirect(w, r, "/login", http.StatusSeeOther)
			return
		}
		makes, err := catalog.Makes(r.Context())
		if err != nil {
			slog.Warn("load machine makes failed", slog.Any("err", err))
		}
		data := ReportPageData{
			TopNav:    nav.BuildTopNavData(session, "/tasker/repairs/report"),
			Urgencies: repairsvc.UrgencyOptions,
			Makes:     makes,
			Status:    r.URL.Query().Get("status"),
			Error:     r.URL.Query().Get("error"),
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		if err := ReportPage(data).Render(r.Context(), w); err != nil {
			http.Error(w, "failed to render report form", http.StatusInternalServerError)
			return
		}
	}
}

func ReportCommandHandler(svc *repairsvc.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		session, _ := sessioncontext.GetSessionFromContext(r.Context())
		if err := parseRepairForm(r); err != nil {
			http.Redirect(w, r, withQuery("/tasker/repairs/report", "error", "invalid form"), http.StatusSeeOther)
			return
		}
		attached, err := photos.FromRequest(r, "photos", time.Now())
		if err != nil {
			http.Redirect(w, r, withQuery("/tasker/repairs/report", "error", err.Error()), http.StatusSeeOther)
			return
		}

		created, err := svc.Report(r.Context(), repairsvc.Report{
			EmployeeNumber: session.EmployeeNumber,
			StaffName:      session.DisplayName,
			MachineMake:    r.FormValue("machine_make"),
			MachineModel:   r.FormValue("machine_model"),
			Urgency:        r.FormValue("urgency"),
			Description:    r.FormValue("description"),
			Photos:         attached,
		})
		if err != nil {
			switch {
			case errors.Is(err, repairsvc.ErrMissingMachineIdent),
				errors.Is(err, repairsvc.ErrUnknownUrgency),
				errors.Is(err, repairsvc.ErrMissingDescription):
				http.Redirect(w, r, withQuery("/tasker/repairs/report", "error", err.Error()), http.StatusSeeOther)
			default:
				slog.Error("submit general repair failed", slog.Any("err", err))
				http.Redirect(w, r, withQuery("/tasker/repairs/report", "error", "submit failed: "+err.Error()), http.StatusSeeOther)
			}
			return
		}
		slog.Info("general repair reported", slog.String("record_id", created.ID), slog.String("actor", session.ActorKey()))
		http.Redirect(w, r, withQuery("/tasker/repairs/report", "status", "Repair reported"), http.StatusSeeOther)
	}
}
