package uploads

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	sessioncontext "fleetcheck/frontend/shared/context"
	"fleetcheck/frontend/shared/nav"
	"fleetcheck/infrastructure/audit"
	"fleetcheck/infrastructure/recordstore"
	"fleetcheck/infrastructure/sqlite"
	"fleetcheck/models"
)

const maxUploadBytes = 10 << 20

// Uploader forwards a validated workbook to the record store.
type Uploader interface {
	UploadReference(ctx context.Context, kind, fileName string, content io.Reader) (recordstore.UploadResult, error)
}

func UploadsPageQueryHandler(db *sqlite.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		session, ok := sessioncontext.GetSessionFromContext(r.Context())
		if !ok {
			http.Redirect(w, r, "/login", http.StatusSeeOther)
			return
		}
		runs, err := ListUploadRuns(r.Context(), db, 20)
		if err != nil {
			http.Error(w, "failed to load upload history", http.StatusInternalServerError)
			return
		}
		data := PageData{
			TopNav: nav.BuildTopNavData(session, "/tasker/uploads"),
			Kinds:  Kinds,
			Runs:   runs,
			Status: r.URL.Query().Get("status"),
			Error:  r.URL.Query().Get("error"),
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		if err := UploadsPage(data).Render(r.Context(), w); err != nil {
			http.Error(w, "failed to render uploads page", http.StatusInternalServerError)
			return
		}
	}
}

func UploadCommandHandler(uploader Uploader, db *sqlite.DB, auditSvc *audit.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		fail := func(msg string) {
			http.Redirect(w, r, "/tasker/uploads?error="+url.QueryEscape(msg), http.StatusSeeOther)
		}

		if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
			fail("invalid upload")
			return
		}
		kind, ok := kindByName(r.FormValue("kind"))
		if !ok {
			fail("choose what the spreadsheet contains")
			return
		}
		file, header, err := r.FormFile("file")
		if err != nil {
			fail("file is required")
			return
		}
		defer file.Close()

		run := models.UploadRun{
			ID:       uuid.NewString(),
			Actor:    sessioncontext.Actor(r.Context()),
			Kind:     kind.Name,
			FileName: filepath.Base(header.Filename),
		}
		record := func(status, message string) {
			run.Status = status
			run.Message = message
			if err := RecordUploadRun(r.Context(), db, auditSvc, run); err != nil {
				slog.Error("record upload run failed", slog.String("upload_id", run.ID), slog.Any("err", err))
			}
		}

		if !strings.EqualFold(filepath.Ext(run.FileName), ".xlsx") {
			record(RunRejected, "only .xlsx files are accepted")
			fail("only .xlsx files are accepted")
			return
		}
		content, err := io.ReadAll(io.LimitReader(file, maxUploadBytes))
		if err != nil {
			fail("could not read upload")
			return
		}

		rows, err := ValidateWorkbook(kind, bytes.NewReader(content))
		if err != nil {
			record(RunRejected, err.Error())
			fail(err.Error())
			return
		}
		run.RowCount = rows

		result, err := uploader.UploadReference(r.Context(), kind.Name, run.FileName, bytes.NewReader(content))
		if err != nil {
			slog.Error("reference upload failed",
				slog.String("upload_id", run.ID),
				slog.String("kind", kind.Name),
				slog.Any("err", err))
			record(RunFailed, err.Error())
			fail("Record store rejected the upload: " + err.Error())
			return
		}

		message := result.Message
		if message == "" {
			message = fmt.Sprintf("Uploaded %d rows", rows)
		}
		record(RunForwarded, message)
		slog.Info("reference upload forwarded",
			slog.String("upload_id", run.ID),
			slog.String("kind", kind.Name),
			slog.Int("rows", rows))
		http.Redirect(w, r, "/tasker/uploads?status="+url.QueryEscape(message), http.StatusSeeOther)
	}
}
