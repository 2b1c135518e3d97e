package repairs

import (
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	repairsvc "fleetcheck/domain/repairs"
	sessioncontext "fleetcheck/frontend/shared/context"
	"fleetcheck/frontend/shared/nav"
	"fleetcheck/frontend/shared/photos"
	"fleetcheck/infrastructure/audit"
	"fleetcheck/infrastructure/sqlite"
)

func RepairsPageQueryHandler(svc *repairsvc.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		session, ok := sessioncontext.GetSessionFromContext(r.Context())
		if !ok {
			http.Redirect(w, r, "/login", http.StatusSeeOther)
			return
		}

		view := strings.TrimSpace(r.URL.Query().Get("view"))
		if view == "" {
			view = repairsvc.ViewNew
		}
		data := PageData{
			TopNav:         nav.BuildTopNavData(session, "/tasker/repairs"),
			View:           view,
			CanAcknowledge: session.ScreenPermissions["REPAIRS_ACKNOWLEDGE"] == 1,
			CanComplete:    session.ScreenPermissions["REPAIRS_COMPLETE"] == 1,
			CanExport:      session.ScreenPermissions["REPAIRS_EXPORT"] == 1,
			Status:         r.URL.Query().Get("status"),
			Error:          r.URL.Query().Get("error"),
		}

		board, err := svc.Load(r.Context())
		if err != nil {
			slog.Error("load repairs failed", slog.Any("err", err))
			data.Error = "Record store unavailable: " + err.Error()
		} else {
			views := board.Views()
			items, known := views.ByName(view)
			if !known {
				http.Redirect(w, r, "/tasker/repairs?error="+url.QueryEscape("unknown view"), http.StatusSeeOther)
				return
			}
			data.NewCount = len(views.New)
			data.DueCount = len(views.Due)
			data.CompletedCount = len(views.Completed)
			data.Items = make([]ItemView, 0, len(items))
			for _, item := range items {
				data.Items = append(data.Items, newItemView(item, board))
			}
		}

		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		if err := RepairsPage(data).Render(r.Context(), w); err != nil {
			http.Error(w, "failed to render repairs page", http.StatusInternalServerError)
			return
		}
	}
}

func RepairDetailQueryHandler(svc *repairsvc.Service, db *sqlite.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		session, ok := sessioncontext.GetSessionFromContext(r.Context())
		if !ok {
			http.Redirect(w, r, "/login", http.StatusSeeOther)
			return
		}
		id := repairIDParam(r)

		board, err := svc.Load(r.Context())
		if err != nil {
			slog.Error("load repairs failed", slog.String("repair_id", id), slog.Any("err", err))
			http.Redirect(w, r, "/tasker/repairs?error="+url.QueryEscape("record store unavailable"), http.StatusSeeOther)
			return
		}
		item, found := board.Find(id)
		if !found {
			http.Error(w, "repair not found", http.StatusNotFound)
			return
		}

		history, err := audit.List(r.Context(), db, "repair", id)
		if err != nil {
			slog.Error("load repair audit failed", slog.String("repair_id", id), slog.Any("err", err))
		}

		data := DetailData{
			TopNav:         nav.BuildTopNavData(session, "/tasker/repairs"),
			Item:           newItemView(item, board),
			Audit:          history,
			CanAcknowledge: session.ScreenPermissions["REPAIRS_ACKNOWLEDGE"] == 1,
			CanComplete:    session.ScreenPermissions["REPAIRS_COMPLETE"] == 1,
			Status:         r.URL.Query().Get("status"),
			Error:          r.URL.Query().Get("error"),
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		if err := RepairDetailPage(data).Render(r.Context(), w); err != nil {
			http.Error(w, "failed to render repair", http.StatusInternalServerError)
			return
		}
	}
}

func AcknowledgeRepairCommandHandler(svc *repairsvc.Service, db *sqlite.DB, auditSvc *audit.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := repairIDParam(r)
		back := returnPath(r, "/tasker/repairs?view=new")

		if err := svc.Acknowledge(r.Context(), id); err != nil {
			if errors.Is(err, repairsvc.ErrRepairNotFound) {
				http.Redirect(w, r, withQuery(back, "error", "repair not found"), http.StatusSeeOther)
				return
			}
			slog.Error("acknowledge repair failed", slog.String("repair_id", id), slog.Any("err", err))
			http.Redirect(w, r, withQuery(back, "error", "acknowledge failed"), http.StatusSeeOther)
			return
		}
		actor := sessioncontext.Actor(r.Context())
		if err := auditSvc.Record(r.Context(), db, actor, "repair.acknowledge", "repair", id, map[string]string{"state": repairsvc.StateAcknowledged.String()}); err != nil {
			slog.Error("audit acknowledge failed", slog.String("repair_id", id), slog.Any("err", err))
		}
		http.Redirect(w, r, withQuery(back, "status", "Repair acknowledged"), http.StatusSeeOther)
	}
}

func CompleteRepairCommandHandler(svc *repairsvc.Service, db *sqlite.DB, auditSvc *audit.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		session, _ := sessioncontext.GetSessionFromContext(r.Context())
		id := repairIDParam(r)
		detail := "/tasker/repairs/" + url.PathEscape(id)

		if err := parseRepairForm(r); err != nil {
			http.Redirect(w, r, withQuery(detail, "error", "invalid form"), http.StatusSeeOther)
			return
		}
		attached, err := photos.FromRequest(r, "photos", time.Now())
		if err != nil {
			http.Redirect(w, r, withQuery(detail, "error", err.Error()), http.StatusSeeOther)
			return
		}

		created, err := svc.Complete(r.Context(), id, repairsvc.Completion{
			Notes:          r.FormValue("notes"),
			EmployeeNumber: session.EmployeeNumber,
			StaffName:      session.DisplayName,
			Photos:         attached,
		})
		if err != nil {
			switch {
			case errors.Is(err, repairsvc.ErrEmptyCompletionNotes),
				errors.Is(err, repairsvc.ErrNotAcknowledged),
				errors.Is(err, repairsvc.ErrAlreadyCompleted):
				http.Redirect(w, r, withQuery(detail, "error", err.Error()), http.StatusSeeOther)
			case errors.Is(err, repairsvc.ErrRepairNotFound):
				http.Redirect(w, r, withQuery("/tasker/repairs", "error", err.Error()), http.StatusSeeOther)
			default:
				slog.Error("complete repair failed", slog.String("repair_id", id), slog.Any("err", err))
				http.Redirect(w, r, withQuery(detail, "error", "completion failed: "+err.Error()), http.StatusSeeOther)
			}
			return
		}

		after := map[string]string{"state": repairsvc.StateCompleted.String(), "record_id": created.ID}
		if err := auditSvc.Record(r.Context(), db, session.ActorKey(), "repair.complete", "repair", id, after); err != nil {
			slog.Error("audit completion failed", slog.String("repair_id", id), slog.Any("err", err))
		}
		http.Redirect(w, r, withQuery("/tasker/repairs?view=completed", "status", "Repair completed"), http.StatusSeeOther)
	}
}

func repairIDParam(r *http.Request) string {
	raw := chi.URLParam(r, "id")
	if v, err := url.PathUnescape(raw); err == nil {
		return v
	}
	return raw
}

func parseRepairForm(r *http.Request) error {
	if strings.HasPrefix(strings.ToLower(r.Header.Get("Content-Type")), "multipart/form-data") {
		return r.ParseMultipartForm(32 << 20)
	}
	return r.ParseForm()
}

// returnPath honours a same-site "return" form value.
func returnPath(r *http.Request, fallback string) string {
	v := strings.TrimSpace(r.FormValue("return"))
	if strings.HasPrefix(v, "/tasker/") && !strings.HasPrefix(v, "//") {
		return v
	}
	return fallback
}

func withQuery(path, key, value string) string {
	sep := "?"
	if strings.Contains(path, "?") {
		sep = "&"
	}
	return path + sep + key + "=" + url.QueryEscape(value)
}
