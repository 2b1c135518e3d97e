package http

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"net"
	"net/http"
	"time"

	checklistsvc "fleetcheck/domain/checklists"
	dashboardsvc "fleetcheck/domain/dashboard"
	machinesvc "fleetcheck/domain/machines"
	repairsvc "fleetcheck/domain/repairs"
	loginflow "fleetcheck/frontend/login"
	"fleetcheck/frontend/settings"
	sessioncontext "fleetcheck/frontend/shared/context"
	"fleetcheck/infrastructure/audit"
	"fleetcheck/infrastructure/cache"
	"fleetcheck/infrastructure/ledger"
	"fleetcheck/infrastructure/rbac"
	"fleetcheck/infrastructure/recordstore"
	sessioncookie "fleetcheck/infrastructure/session"
	"fleetcheck/infrastructure/sqlite"
	"fleetcheck/models"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

//go:embed assets/*
var assets embed.FS

var ShutdownTimeout = 2 * time.Second

// Services are the record-store backed collaborators the routes call.
type Services struct {
	Store      *recordstore.Client
	Records    *cache.RecordCache
	Repairs    *repairsvc.Service
	Machines   *machinesvc.Service
	Dashboard  *dashboardsvc.Service
	Checklists *checklistsvc.Service
}

// NewServices builds the domain services over one record store. Listing and
// record creation go through the cache so writes invalidate cached lists.
func NewServices(store *recordstore.Client, records *cache.RecordCache, ledgerStore ledger.Store, requireAck bool) Services {
	return Services{
		Store:      store,
		Records:    records,
		Repairs:    repairsvc.NewService(records, ledgerStore, requireAck),
		Machines:   machinesvc.NewService(records, ledgerStore),
		Dashboard:  dashboardsvc.NewService(records, ledgerStore),
		Checklists: checklistsvc.NewService(store, records),
	}
}

// Server bundles dependencies and route wiring.
type Server struct {
	Addr   string
	ln     net.Listener
	server *http.Server
	router *chi.Mux

	DB              *sqlite.DB
	SessionCache    *cache.UserSessionCache
	UserCache       *cache.UserCache
	RbacCache       *cache.RbacRolesCache
	Rbac            *rbac.Rbac
	Audit           *audit.Service
	Services        Services
	DefaultLanguage string
}

// NewServer creates a new http server.
func NewServer(addr string, db *sqlite.DB, sessionCache *cache.UserSessionCache, userCache *cache.UserCache, r *rbac.Rbac, rbacCache *cache.RbacRolesCache, auditSvc *audit.Service, services Services, defaultLanguage string) *Server {
	s := &Server{
		Addr:            addr,
		router:          chi.NewRouter(),
		DB:              db,
		SessionCache:    sessionCache,
		UserCache:       userCache,
		RbacCache:       rbacCache,
		Rbac:            r,
		Audit:           auditSvc,
		Services:        services,
		DefaultLanguage: defaultLanguage,
		server: &http.Server{
			MaxHeaderBytes: 1 << 20,
		},
	}

	// Secure headers first.
	s.router.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")
			w.Header().Set("X-Content-Type-Options", "nosniff")
			w.Header().Set("X-Frame-Options", "DENY")
			w.Header().Set("X-XSS-Protection", "1; mode=block")
			next.ServeHTTP(w, r)
		})
	})

	s.router.Use(middleware.Logger)
	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.Compress(5))
	s.router.Use(s.CSRFMiddleware)

	// Root sends signed-in users to their role's landing page.
	s.router.Get("/", func(w http.ResponseWriter, r *http.Request) {
		sessionCookie, err := r.Cookie(sessioncookie.CookieName)
		if err != nil || sessionCookie.Value == "" {
			http.Redirect(w, r, "/login", http.StatusSeeOther)
			return
		}

		session, ok := s.resolveSession(r.Context(), sessionCookie.Value)
		if !ok || session.Expired() {
			http.SetCookie(w, sessioncookie.ClearedCookie())
			http.Redirect(w, r, "/login", http.StatusSeeOther)
			return
		}
		http.Redirect(w, r, rbac.LandingPath(session.Role), http.StatusSeeOther)
	})

	s.router.Get("/health", s.healthHandler)

	// Serve assets from embedded FS.
	var assetsFS fs.FS = assets
	if sub, err := fs.Sub(assets, "assets"); err == nil {
		assetsFS = sub
	} else {
		slog.Error("assets subfs init failed; serving fallback fs", slog.Any("err", err))
	}
	s.router.Handle("/assets/*", http.StripPrefix("/assets/", http.FileServer(http.FS(assetsFS))))

	s.RegisterLoginRoutes()

	s.router.Group(func(r chi.Router) {
		r.Route("/tasker", func(r chi.Router) {
			r.Use(s.AuthenticateMiddleware)
			s.RegisterFrontendRoutes(r)
			s.RegisterAdminRoutes(r)
		})
	})

	s.server.Handler = s.router
	return s
}

// healthHandler answers ok when the local database responds. A failing record
// store is reported in the body but does not fail the check.
func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	if err := s.DB.ReadSQL.PingContext(r.Context()); err != nil {
		slog.Error("health: database ping failed", slog.Any("err", err))
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte("database unavailable"))
		return
	}
	body := "ok"
	if s.Services.Store != nil {
		if err := s.Services.Store.Health(r.Context()); err != nil {
			slog.Warn("health: record store unreachable", slog.Any("err", err))
			body = "ok (record store unreachable)"
		}
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(body))
}

// AuthenticateMiddleware loads session and applies RBAC checks.
func (s *Server) AuthenticateMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sessionCookie, err := r.Cookie(sessioncookie.CookieName)
		if err != nil || sessionCookie.Value == "" {
			http.Redirect(w, r, "/login", http.StatusSeeOther)
			return
		}

		sessionToken := sessionCookie.Value
		session, ok := s.resolveSession(r.Context(), sessionToken)
		if !ok {
			slog.Warn("session not found", slog.String("method", r.Method), slog.String("path", r.URL.Path))
			http.SetCookie(w, sessioncookie.ClearedCookie())
			http.Redirect(w, r, "/login", http.StatusSeeOther)
			return
		}

		if session.Expired() {
			http.SetCookie(w, sessioncookie.ClearedCookie())
			s.SessionCache.DeleteSessionBySessionToken(sessionToken)
			if err := DeleteSessionByID(s.DB, sessionToken); err != nil {
				slog.Error("cannot delete session from DB", slog.String("session_id", sessionToken), slog.Any("err", err))
			}
			http.Redirect(w, r, "/login", http.StatusSeeOther)
			return
		}

		path := r.URL.Path
		skipRBAC := false
		if hasRole(session.UserRoles, rbac.RoleAdmin) {
			session.ScreenPermissions = s.RbacCache.AllCodes()
			skipRBAC = true
		}
		if session.ScreenPermissions == nil {
			session.ScreenPermissions = s.RbacCache.CodesForRoles(session.UserRoles)
		}

		if !skipRBAC && !s.RbacValidation(session.UserRoles, path, r.Method) {
			slog.Warn("rbac denied", slog.String("role", session.Role), slog.String("method", r.Method), slog.String("path", path))
			http.Redirect(w, r, rbac.LandingPath(session.Role)+"?error=access+denied", http.StatusSeeOther)
			return
		}

		ctx := sessioncontext.NewContextWithSession(r.Context(), session)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// resolveSession reads the cache first and falls back to the sessions table,
// restoring the saved language for sessions that outlived a restart.
func (s *Server) resolveSession(ctx context.Context, token string) (session models.Session, ok bool) {
	if cached, found := s.SessionCache.FindSessionBySessionToken(token); found {
		return cached, true
	}

	dbSession, err := loginflow.LoadSessionByToken(ctx, s.DB, token)
	if err != nil {
		if !errors.Is(err, sql.ErrNoRows) {
			slog.Error("load session from db failed", slog.String("session_id", token), slog.Any("err", err))
		}
		return session, false
	}

	lang, err := settings.LoadLanguage(ctx, s.DB, dbSession.ActorKey(), s.DefaultLanguage)
	if err != nil {
		slog.Warn("load language failed", slog.String("actor", dbSession.ActorKey()), slog.Any("err", err))
	}
	dbSession.Language = lang
	s.SessionCache.AddSession(dbSession)
	return dbSession, true
}

func hasRole(roles []string, role string) bool {
	for _, r := range roles {
		if r == role {
			return true
		}
	}
	return false
}

func (s *Server) RbacValidation(userRoles []string, url, method string) bool {
	if len(userRoles) == 0 {
		return false
	}
	resources := s.RbacCache.GetRolesAndResources(userRoles)
	if len(resources) == 0 {
		return false
	}
	return rbac.ValidateResourceAccess(resources, url, method)
}

// Start starts the HTTP server.
func (s *Server) Start() error {
	var err error
	if s.ln, err = net.Listen("tcp", s.Addr); err != nil {
		return err
	}
	go s.server.Serve(s.ln)
	return nil
}

// Stop gracefully shuts down the server.
func (s *Server) Stop() error {
	if s.ln == nil {
		return fmt.Errorf("HTTP server has not been started or is already stopped")
	}
	ctx, cancel := context.WithTimeout(context.Background(), ShutdownTimeout)
	defer cancel()
	if err := s.server.Shutdown(ctx); err != nil {
		return fmt.Errorf("failed to shutdown HTTP server: %v", err)
	}
	s.ln = nil
	return nil
}

// DeleteSessionByID deletes a session by its ID using a write transaction.
func DeleteSessionByID(db *sqlite.DB, sessionID string) error {
	return loginflow.DeleteSessionByToken(context.Background(), db, sessionID)
}
