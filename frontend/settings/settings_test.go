package settings

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	sessioncontext "fleetcheck/frontend/shared/context"
	"fleetcheck/infrastructure/cache"
	"fleetcheck/infrastructure/sqlite"
	"fleetcheck/models"
)

func openSettingsTestDB(t *testing.T) *sqlite.DB {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "settings-test.db")
	db, err := sqlite.OpenDB(dbPath)
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	_, file, _, ok := runtime.Caller(0)
	if !ok {
		t.Fatalf("runtime caller unavailable")
	}
	migrationsDir := filepath.Join(filepath.Dir(file), "..", "..", "infrastructure", "sqlite", "migrations")
	if err := sqlite.ApplyMigrations(context.Background(), db, migrationsDir); err != nil {
		t.Fatalf("apply migrations: %v", err)
	}
	return db
}

func TestLanguageDefaultsAndUpsert(t *testing.T) {
	db := openSettingsTestDB(t)
	ctx := context.Background()

	lang, err := LoadLanguage(ctx, db, "employee:7", "lt")
	if err != nil {
		t.Fatalf("load default: %v", err)
	}
	if lang != "lt" {
		t.Fatalf("expected fallback lt, got %q", lang)
	}

	if err := SaveLanguage(ctx, db, "employee:7", "ro"); err != nil {
		t.Fatalf("save ro: %v", err)
	}
	if err := SaveLanguage(ctx, db, "employee:7", "bg"); err != nil {
		t.Fatalf("save bg: %v", err)
	}
	lang, err = LoadLanguage(ctx, db, "employee:7", "en")
	if err != nil {
		t.Fatalf("load saved: %v", err)
	}
	if lang != "bg" {
		t.Fatalf("expected latest language bg, got %q", lang)
	}
}

func TestLanguageUpdateHandler(t *testing.T) {
	db := openSettingsTestDB(t)
	sessions := cache.NewUserSessionCache()
	session := models.Session{ID: "tok", EmployeeNumber: "7", DisplayName: "Ana", Role: "operator"}
	sessions.AddSession(session)

	post := func(lang string) *httptest.ResponseRecorder {
		form := url.Values{"language": {lang}}
		req := httptest.NewRequest(http.MethodPost, "/tasker/settings/language", strings.NewReader(form.Encode()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		req = req.WithContext(sessioncontext.NewContextWithSession(req.Context(), session))
		rec := httptest.NewRecorder()
		LanguageUpdateHandler(db, sessions).ServeHTTP(rec, req)
		return rec
	}

	rec := post("lt")
	if rec.Code != http.StatusSeeOther || !strings.Contains(rec.Header().Get("Location"), "status=saved") {
		t.Fatalf("unexpected response %d %s", rec.Code, rec.Header().Get("Location"))
	}
	if cached, _ := sessions.FindSessionBySessionToken("tok"); cached.Language != "lt" {
		t.Fatalf("expected cached session language lt, got %q", cached.Language)
	}

	rec = post("fr")
	if !strings.Contains(rec.Header().Get("Location"), "error=") {
		t.Fatalf("expected unsupported language error, got %s", rec.Header().Get("Location"))
	}
}

func TestSettingsPageMarksCurrentLanguage(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/tasker/settings", nil)
	req = req.WithContext(sessioncontext.NewContextWithSession(req.Context(), models.Session{EmployeeNumber: "7", Role: "operator", Language: "ro"}))
	rec := httptest.NewRecorder()
	SettingsPageHandler().ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `value="ro" selected`) {
		t.Fatalf("current language not selected")
	}
}
