package uploads

import (
	"bytes"
	"context"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/xuri/excelize/v2"

	sessioncontext "fleetcheck/frontend/shared/context"
	"fleetcheck/infrastructure/audit"
	"fleetcheck/infrastructure/recordstore"
	"fleetcheck/infrastructure/recordstore/recordstoretest"
	"fleetcheck/infrastructure/sqlite"
	"fleetcheck/models"
)

func openUploadsTestDB(t *testing.T) *sqlite.DB {
	t.Helper()
	db, err := sqlite.OpenDB(filepath.Join(t.TempDir(), "uploads-test.db"))
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	if err := sqlite.ApplyEmbeddedMigrations(context.Background(), db); err != nil {
		t.Fatalf("apply migrations: %v", err)
	}
	return db
}

func workbook(t *testing.T, rows ...[]any) []byte {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()
	sheet := f.GetSheetName(0)
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			t.Fatalf("cell name: %v", err)
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			t.Fatalf("set row: %v", err)
		}
	}
	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		t.Fatalf("write workbook: %v", err)
	}
	return buf.Bytes()
}

func TestValidateWorkbook(t *testing.T) {
	assets, _ := kindByName(recordstore.UploadAssets)
	staff, _ := kindByName(recordstore.UploadStaff)

	rows, err := ValidateWorkbook(assets, bytes.NewReader(workbook(t,
		[]any{"Machine Make", "Machine Name"},
		[]any{"Cat", "D6"},
		[]any{"", ""},
		[]any{"JCB", "3CX"},
	)))
	if err != nil || rows != 2 {
		t.Fatalf("expected 2 rows, got %d err=%v", rows, err)
	}

	_, err = ValidateWorkbook(staff, bytes.NewReader(workbook(t, []any{"Name", "Site"}, []any{"Ana", "North"})))
	if err == nil || !strings.Contains(err.Error(), "Employee Number") {
		t.Fatalf("expected missing employee number column, got %v", err)
	}

	if _, err := ValidateWorkbook(assets, bytes.NewReader(workbook(t, []any{"Make", "Model"}))); err != ErrNoDataRows {
		t.Fatalf("expected ErrNoDataRows, got %v", err)
	}
	if _, err := ValidateWorkbook(assets, strings.NewReader("make,model\nCat,D6\n")); err == nil {
		t.Fatalf("csv content should be rejected")
	}
}

func postUpload(t *testing.T, h http.Handler, kind, fileName string, content []byte) *httptest.ResponseRecorder {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	_ = mw.WriteField("kind", kind)
	part, err := mw.CreateFormFile("file", fileName)
	if err != nil {
		t.Fatalf("create form file: %v", err)
	}
	_, _ = part.Write(content)
	_ = mw.Close()

	req := httptest.NewRequest(http.MethodPost, "/tasker/uploads", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	session := models.Session{ID: "tok", UserID: 3, DisplayName: "office", Role: "admin"}
	req = req.WithContext(sessioncontext.NewContextWithSession(req.Context(), session))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestUploadForwardsValidWorkbookAndLogsRuns(t *testing.T) {
	db := openUploadsTestDB(t)
	store := recordstoretest.NewServer(t)
	client := recordstore.New(store.URL, 5*time.Second)
	h := UploadCommandHandler(client, db, audit.NewService())

	good := workbook(t, []any{"Name", "Employee Number"}, []any{"Ana", "12"}, []any{"Bo", "13"})
	rec := postUpload(t, h, recordstore.UploadStaff, "staff.xlsx", good)
	if loc := rec.Header().Get("Location"); !strings.Contains(loc, "status=Imported+staff") {
		t.Fatalf("unexpected redirect %s", loc)
	}

	bad := workbook(t, []any{"Name"}, []any{"Ana"})
	rec = postUpload(t, h, recordstore.UploadStaff, "staff.xlsx", bad)
	if loc := rec.Header().Get("Location"); !strings.Contains(loc, "error=") {
		t.Fatalf("expected rejection, got %s", loc)
	}
	rec = postUpload(t, h, recordstore.UploadAssets, "assets.csv", []byte("make,model\n"))
	if loc := rec.Header().Get("Location"); !strings.Contains(loc, "xlsx") {
		t.Fatalf("expected extension rejection, got %s", loc)
	}

	uploads := store.Uploads()
	if len(uploads) != 1 || uploads[0].Kind != recordstore.UploadStaff || uploads[0].FileName != "staff.xlsx" || uploads[0].Size != len(good) {
		t.Fatalf("unexpected forwarded uploads %+v", uploads)
	}

	runs, err := ListUploadRuns(context.Background(), db, 10)
	if err != nil {
		t.Fatalf("list runs: %v", err)
	}
	if len(runs) != 3 {
		t.Fatalf("expected 3 runs, got %d", len(runs))
	}
	statuses := map[string]int{}
	for _, run := range runs {
		statuses[run.Status]++
		if run.Actor != "admin:office" || len(run.ID) != 36 {
			t.Fatalf("unexpected run %+v", run)
		}
	}
	if statuses[RunForwarded] != 1 || statuses[RunRejected] != 2 {
		t.Fatalf("unexpected statuses %v", statuses)
	}

	history, err := audit.List(context.Background(), db, "upload_runs", runs[0].ID)
	if err != nil || len(history) != 1 || history[0].Action != "reference.upload" {
		t.Fatalf("expected audit row for run, got %+v err=%v", history, err)
	}
}

func TestUploadsPageShowsHistory(t *testing.T) {
	db := openUploadsTestDB(t)
	run := models.UploadRun{ID: "b7f1c3d2-0000-4000-8000-000000000001", Actor: "admin:office", Kind: "assets", FileName: "fleet.xlsx", RowCount: 9, Status: RunForwarded, Message: "Imported assets"}
	if err := RecordUploadRun(context.Background(), db, nil, run); err != nil {
		t.Fatalf("record run: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/tasker/uploads", nil)
	req = req.WithContext(sessioncontext.NewContextWithSession(req.Context(), models.Session{ID: "tok", UserID: 3, DisplayName: "office", Role: "admin"}))
	rec := httptest.NewRecorder()
	UploadsPageQueryHandler(db).ServeHTTP(rec, req)

	body := rec.Body.String()
	if rec.Code != http.StatusOK || !strings.Contains(body, "fleet.xlsx") || !strings.Contains(body, "Employee Number") {
		t.Fatalf("uploads page missing history or column help")
	}
}
