package login

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
	"time"

	"fleetcheck/frontend/settings"
	"fleetcheck/infrastructure/argon"
	"fleetcheck/infrastructure/cache"
	"fleetcheck/infrastructure/recordstore"
	"fleetcheck/infrastructure/recordstore/recordstoretest"
	sessioncookie "fleetcheck/infrastructure/session"
	"fleetcheck/infrastructure/sqlite"
	"fleetcheck/models"
)

func openLoginTestDB(t *testing.T) *sqlite.DB {
	t.Helper()
	db, err := sqlite.OpenDB(filepath.Join(t.TempDir(), "login-test.db"))
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

func postLogin(handler http.Handler, path string, form url.Values) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func sessionCookieFrom(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	for _, c := range rec.Result().Cookies() {
		if c.Name == sessioncookie.CookieName {
			return c.Value
		}
	}
	t.Fatalf("no session cookie set")
	return ""
}

func TestEmployeeLoginCreatesSessionWithRoleAndLanguage(t *testing.T) {
	db := openLoginTestDB(t)
	store := recordstoretest.NewServer(t)
	store.AddEmployee(models.Employee{EmployeeNumber: "1001", Name: "Maria Pop", WorkshopControl: "yes"})
	client := recordstore.New(store.URL, 5*time.Second)
	sessions := cache.NewUserSessionCache()

	if err := settings.SaveLanguage(context.Background(), db, "employee:1001", "ro"); err != nil {
		t.Fatalf("seed language: %v", err)
	}

	rec := postLogin(CreateLoginHandler(db, client, sessions, "en"), "/login", url.Values{"employee_number": {" 1001 "}})
	if rec.Code != http.StatusSeeOther {
		t.Fatalf("expected 303, got %d", rec.Code)
	}
	if loc := rec.Header().Get("Location"); loc != "/tasker/dashboard" {
		t.Fatalf("unexpected redirect %s", loc)
	}

	token := sessionCookieFrom(t, rec)
	if !strings.HasPrefix(token, employeeTokenPrefix) {
		t.Fatalf("token %q lacks its login prefix", token)
	}
	cached, ok := sessions.FindSessionBySessionToken(token)
	if !ok {
		t.Fatalf("session not cached")
	}
	if cached.Role != "workshop" || cached.DisplayName != "Maria Pop" || cached.Language != "ro" {
		t.Fatalf("unexpected cached session %+v", cached)
	}

	stored, err := LoadSessionByToken(context.Background(), db, token)
	if err != nil {
		t.Fatalf("load stored session: %v", err)
	}
	if stored.EmployeeNumber != "1001" || stored.ActorKey() != "employee:1001" {
		t.Fatalf("unexpected stored session %+v", stored)
	}
}

func TestEmployeeLoginRejectsUnknownNumber(t *testing.T) {
	db := openLoginTestDB(t)
	store := recordstoretest.NewServer(t)
	client := recordstore.New(store.URL, 5*time.Second)

	rec := postLogin(CreateLoginHandler(db, client, cache.NewUserSessionCache(), "en"), "/login", url.Values{"employee_number": {"9999"}})
	if loc := rec.Header().Get("Location"); !strings.Contains(loc, "invalid+employee+number") {
		t.Fatalf("unexpected redirect %s", loc)
	}

	rec = postLogin(CreateLoginHandler(db, client, cache.NewUserSessionCache(), "en"), "/login", url.Values{})
	if loc := rec.Header().Get("Location"); !strings.Contains(loc, "required") {
		t.Fatalf("unexpected redirect %s", loc)
	}
}

func TestAdminLoginWithArgonPassword(t *testing.T) {
	db := openLoginTestDB(t)
	if err := UpsertUserPasswordHash(context.Background(), db, "admin", "admin", "Workshop123!Admin"); err != nil {
		t.Fatalf("seed admin: %v", err)
	}
	sessions := cache.NewUserSessionCache()
	users := cache.NewUserCache()
	handler := CreateAdminLoginHandler(db, sessions, users, "en")

	rec := postLogin(handler, "/login/admin", url.Values{"username": {"admin"}, "password": {"wrong-password"}})
	if loc := rec.Header().Get("Location"); !strings.Contains(loc, "invalid+username+or+password") {
		t.Fatalf("unexpected redirect %s", loc)
	}

	rec = postLogin(handler, "/login/admin", url.Values{"username": {"ADMIN"}, "password": {"Workshop123!Admin"}})
	if loc := rec.Header().Get("Location"); loc != "/tasker/dashboard" {
		t.Fatalf("unexpected redirect %s", loc)
	}
	token := sessionCookieFrom(t, rec)
	if !strings.HasPrefix(token, adminTokenPrefix) {
		t.Fatalf("token %q lacks its login prefix", token)
	}
	if s, _ := sessions.FindSessionBySessionToken(token); s.Role != "admin" || s.UserID == 0 {
		t.Fatalf("unexpected admin session %+v", s)
	}
	if _, ok := users.Get("admin"); !ok {
		t.Fatalf("admin user not cached")
	}
}

func TestAdminLoginUpgradesWeakHash(t *testing.T) {
	db := openLoginTestDB(t)
	weak, err := argon.HashWith(argon.Params{Memory: 8 * 1024, Iterations: 1, Parallelism: 1, SaltLength: 8, KeyLength: 16}, "Workshop123!Admin")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	if _, err := db.WriteSQL.Exec(`INSERT INTO users (username, password_hash, role, created_at, updated_at) VALUES ('admin', ?, 'admin', ?, ?)`, weak, time.Now(), time.Now()); err != nil {
		t.Fatalf("insert user: %v", err)
	}

	if _, err := authenticateUser(context.Background(), db, "admin", "Workshop123!Admin"); err != nil {
		t.Fatalf("authenticate: %v", err)
	}

	var stored string
	if err := db.ReadSQL.QueryRow(`SELECT password_hash FROM users WHERE username = 'admin'`).Scan(&stored); err != nil {
		t.Fatalf("read hash: %v", err)
	}
	if stored == weak || argon.NeedsRehash(stored, argon.Default) {
		t.Fatalf("hash was not upgraded: %s", stored)
	}
	if ok, _ := argon.Verify("Workshop123!Admin", stored); !ok {
		t.Fatalf("upgraded hash does not verify")
	}
}

func TestLoadSessionByTokenDropsUnresolvableRows(t *testing.T) {
	db := openLoginTestDB(t)
	ctx := context.Background()

	orphan := models.Session{ID: "orphan", DisplayName: "ghost", Role: "operator", ExpiresAt: time.Now().Add(time.Hour)}
	if err := persistSession(ctx, db, orphan); err != nil {
		t.Fatalf("persist orphan: %v", err)
	}
	if _, err := LoadSessionByToken(ctx, db, "orphan"); err == nil {
		t.Fatalf("expected orphan session to be rejected")
	}

	expired := models.Session{ID: "old", EmployeeNumber: "5", DisplayName: "x", Role: "operator", ExpiresAt: time.Now().Add(-time.Hour)}
	if err := persistSession(ctx, db, expired); err != nil {
		t.Fatalf("persist expired: %v", err)
	}
	if _, err := LoadSessionByToken(ctx, db, "old"); err == nil {
		t.Fatalf("expected expired session to be rejected")
	}
	if n, err := DeleteExpiredSessions(ctx, db, time.Now()); err != nil || n != 0 {
		t.Fatalf("expected rejected rows already deleted, got n=%d err=%v", n, err)
	}
}

func TestLogoutClearsSession(t *testing.T) {
	db := openLoginTestDB(t)
	sessions := cache.NewUserSessionCache()
	s := models.Session{ID: "tok", EmployeeNumber: "5", DisplayName: "x", Role: "operator", ExpiresAt: time.Now().Add(time.Hour)}
	if err := persistSession(context.Background(), db, s); err != nil {
		t.Fatalf("persist: %v", err)
	}
	sessions.AddSession(s)

	req := httptest.NewRequest(http.MethodPost, "/logout", nil)
	req.AddCookie(sessioncookie.NewSessionCookie("tok"))
	rec := httptest.NewRecorder()
	LogoutHandler(db, sessions).ServeHTTP(rec, req)

	if rec.Header().Get("Location") != "/login" {
		t.Fatalf("unexpected redirect %s", rec.Header().Get("Location"))
	}
	if _, ok := sessions.FindSessionBySessionToken("tok"); ok {
		t.Fatalf("session still cached")
	}
	if _, err := LoadSessionByToken(context.Background(), db, "tok"); err == nil {
		t.Fatalf("session row still present")
	}
}
