package machines

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/go-chi/chi/v5"

	machinesvc "fleetcheck/domain/machines"
	sessioncontext "fleetcheck/frontend/shared/context"
	"fleetcheck/frontend/shared/nav"
	"fleetcheck/infrastructure/audit"
	"fleetcheck/infrastructure/sqlite"
)

// MakeLister lists known machine makes for the request form.
type MakeLister interface {
	Makes(ctx context.Context) ([]string, error)
}

func MachinesPageQueryHandler(svc *machinesvc.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		session, ok := sessioncontext.GetSessionFromContext(r.Context())
		if !ok {
			http.Redirect(w, r, "/login", http.StatusSeeOther)
			return
		}
		data := PageData{
			TopNav:         nav.BuildTopNavData(session, "/tasker/machines"),
			CanAcknowledge: session.ScreenPermissions["MACHINES_ACKNOWLEDGE"] == 1,
			Status:         r.URL.Query().Get("status"),
			Error:          r.URL.Query().Get("error"),
		}
		pending, err := svc.Pending(r.Context())
		if err != nil {
			slog.Error("load pending machines failed", slog.Any("err", err))
			data.Error = "Record store unavailable: " + err.Error()
		}
		data.Pending = pending

		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		if err := MachinesPage(data).Render(r.Context(), w); err != nil {
			http.Error(w, "failed to render machines page", http.StatusInternalServerError)
			return
		}
	}
}

func AcknowledgeMachineCommandHandler(svc *machinesvc.Service, db *sqlite.DB, auditSvc *audit.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		if v, err := url.PathUnescape(id); err == nil {
			id = v
		}

		if err := svc.Acknowledge(r.Context(), id); err != nil {
			if errors.Is(err, machinesvc.ErrRequestNotFound) {
				http.Redirect(w, r, "/tasker/machines?error="+url.QueryEscape(err.Error()), http.StatusSeeOther)
				return
			}
			slog.Error("acknowledge machine failed", slog.String("record_id", id), slog.Any("err", err))
			http.Redirect(w, r, "/tasker/machines?error="+url.QueryEscape("acknowledge failed"), http.StatusSeeOther)
			return
		}
		actor := sessioncontext.Actor(r.Context())
		if err := auditSvc.Record(r.Context(), db, actor, "machine.acknowledge", "machine_request", id, map[string]string{"state": "acknowledged"}); err != nil {
			slog.Error("audit machine acknowledge failed", slog.String("record_id", id), slog.Any("err", err))
		}
		http.Redirect(w, r, "/tasker/machines?status="+url.QueryEscape("Machine addition acknowledged"), http.StatusSeeOther)
	}
}

func RequestPageQueryHandler(catalog MakeLister) http.HandlerFunc {
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
		data := RequestPageData{
			TopNav: nav.BuildTopNavData(session, "/tasker/machines/new"),
			Makes:  makes,
			Status: r.URL.Query().Get("status"),
			Error:  r.URL.Query().Get("error"),
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		if err := RequestPage(data).Render(r.Context(), w); err != nil {
			http.Error(w, "failed to render machine request form", http.StatusInternalServerError)
			return
		}
	}
}

func RequestCommandHandler(svc *machinesvc.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		session, _ := sessioncontext.GetSessionFromContext(r.Context())
		if err := r.ParseForm(); err != nil {
			http.Redirect(w, r, "/tasker/machines/new?error="+url.QueryEscape("invalid form"), http.StatusSeeOther)
			return
		}

		created, err := svc.Submit(r.Context(), machinesvc.Request{
			EmployeeNumber: session.EmployeeNumber,
			StaffName:      session.DisplayName,
			Make:           r.FormValue("machine_make"),
			Model:          r.FormValue("machine_model"),
			Notes:          strings.TrimSpace(r.FormValue("notes")),
		})
		if err != nil {
			if errors.Is(err, machinesvc.ErrMissingMachine) {
				http.Redirect(w, r, "/tasker/machines/new?error="+url.QueryEscape(err.Error()), http.StatusSeeOther)
				return
			}
			slog.Error("submit machine request failed", slog.Any("err", err))
			http.Redirect(w, r, "/tasker/machines/new?error="+url.QueryEscape("submit failed: "+err.Error()), http.StatusSeeOther)
			return
		}
		slog.Info("machine addition requested", slog.String("record_id", created.ID), slog.String("actor", session.ActorKey()))
		http.Redirect(w, r, "/tasker/machines/new?status="+url.QueryEscape("Machine request sent"), http.StatusSeeOther)
	}
}
