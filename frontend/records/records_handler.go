package records

import (
	"context"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"net/url"
	"path"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	sessioncontext "fleetcheck/frontend/shared/context"
	"fleetcheck/frontend/shared/nav"
	"fleetcheck/infrastructure/recordstore"
	"fleetcheck/infrastructure/sqlite"
	"fleetcheck/models"
)

type RecordLister interface {
	ListChecklists(ctx context.Context, limit int) ([]models.ChecklistRecord, error)
}

type Exporter interface {
	Export(ctx context.Context, format string) (*recordstore.Download, error)
}

func RecordsPageQueryHandler(records RecordLister, db *sqlite.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		session, ok := sessioncontext.GetSessionFromContext(r.Context())
		if !ok {
			http.Redirect(w, r, "/login", http.StatusSeeOther)
			return
		}
		limit := requestedLimit(r)
		data := PageData{
			TopNav:    nav.BuildTopNavData(session, "/tasker/records"),
			Limit:     limit,
			Limits:    Limits,
			CanExport: session.ScreenPermissions["RECORDS_EXPORT"] == 1,
			Status:    r.URL.Query().Get("status"),
			Error:     r.URL.Query().Get("error"),
		}

		list, err := records.ListChecklists(r.Context(), limit)
		if err != nil {
			slog.Error("list records failed", slog.Int("limit", limit), slog.Any("err", err))
			data.Error = "Record store unavailable: " + err.Error()
		}
		data.Rows = make([]RecordRow, 0, len(list))
		for _, rec := range list {
			data.Rows = append(data.Rows, RecordRow{ChecklistRecord: rec, Faults: faultCount(rec), Photos: photoCount(rec)})
		}

		if data.CanExport {
			runs, err := listExportRuns(r.Context(), db, 10)
			if err != nil {
				slog.Error("list export runs failed", slog.Any("err", err))
			}
			data.Exports = runs
		}

		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		if err := RecordsPage(data).Render(r.Context(), w); err != nil {
			http.Error(w, "failed to render records page", http.StatusInternalServerError)
			return
		}
	}
}

// RecordsExportHandler streams the record store's CSV or Excel export.
func RecordsExportHandler(exporter Exporter, db *sqlite.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		format := chi.URLParam(r, "format")
		if format != recordstore.ExportCSV && format != recordstore.ExportExcel {
			http.Error(w, "unknown export format", http.StatusNotFound)
			return
		}
		download, err := exporter.Export(r.Context(), format)
		if err != nil {
			slog.Error("record store export failed", slog.String("format", format), slog.Any("err", err))
			http.Redirect(w, r, "/tasker/records?error="+url.QueryEscape("Export failed: "+err.Error()), http.StatusSeeOther)
			return
		}
		defer download.Body.Close()

		contentType := download.ContentType
		if contentType == "" {
			contentType = "application/octet-stream"
		}
		w.Header().Set("Content-Type", contentType)
		w.Header().Set("Content-Disposition", attachment(download.FileName, "checklists."+exportExtension(format)))
		if _, err := io.Copy(w, download.Body); err != nil {
			slog.Error("stream export failed", slog.String("format", format), slog.Any("err", err))
			return
		}
		if err := RecordExportRun(r.Context(), db, sessioncontext.Actor(r.Context()), "records_"+format); err != nil {
			slog.Error("record export run failed", slog.String("type", "records_"+format), slog.Any("err", err))
		}
	}
}

// RecordsSummaryCSVHandler writes one line per listed record.
func RecordsSummaryCSVHandler(records RecordLister, db *sqlite.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit := requestedLimit(r)
		list, err := records.ListChecklists(r.Context(), limit)
		if err != nil {
			slog.Error("list records failed", slog.Int("limit", limit), slog.Any("err", err))
			http.Error(w, "record store unavailable", http.StatusBadGateway)
			return
		}
		w.Header().Set("Content-Type", "text/csv")
		w.Header().Set("Content-Disposition", attachment("records-summary-"+time.Now().Format("2006-01-02")+".csv", ""))
		if err := writeSummaryCSV(w, list); err != nil {
			http.Error(w, "failed to export csv", http.StatusInternalServerError)
			return
		}
		if err := RecordExportRun(r.Context(), db, sessioncontext.Actor(r.Context()), "records_summary_csv"); err != nil {
			slog.Error("record export run failed", slog.String("type", "records_summary_csv"), slog.Any("err", err))
		}
	}
}

func requestedLimit(r *http.Request) int {
	raw := strings.TrimSpace(r.URL.Query().Get("limit"))
	if raw == "" {
		return defaultLimit
	}
	limit, err := strconv.Atoi(raw)
	if err != nil || limit < 0 {
		return defaultLimit
	}
	return limit
}

// attachment builds a Content-Disposition value for name, which may come from
// upstream. Directory parts are dropped and the name is quoted or encoded as
// needed; fallback replaces an empty name.
func attachment(name, fallback string) string {
	name = path.Base(strings.ReplaceAll(strings.TrimSpace(name), "\\", "/"))
	if name == "." || name == "/" || name == "" {
		name = fallback
	}
	if v := mime.FormatMediaType("attachment", map[string]string{"filename": name}); v != "" {
		return v
	}
	return "attachment"
}

func exportExtension(format string) string {
	if format == recordstore.ExportExcel {
		return "xlsx"
	}
	return "csv"
}
