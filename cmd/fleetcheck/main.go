package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"fleetcheck/frontend/login"
	"fleetcheck/infrastructure/audit"
	"fleetcheck/infrastructure/cache"
	"fleetcheck/infrastructure/config"
	httpserver "fleetcheck/infrastructure/http"
	"fleetcheck/infrastructure/ledger"
	"fleetcheck/infrastructure/rbac"
	"fleetcheck/infrastructure/recordstore"
	"fleetcheck/infrastructure/sqlite"
)

const sessionSweepInterval = 15 * time.Minute

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.LogLevel})))

	db, err := sqlite.OpenDB(cfg.SQLitePath)
	if err != nil {
		log.Fatalf("open db: %v", err)
	}
	defer db.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := sqlite.ApplyEmbeddedMigrations(ctx, db); err != nil {
		log.Fatalf("apply migrations: %v", err)
	}

	rdb, err := cache.NewRedisClient(ctx, cfg.RedisAddress)
	if err != nil {
		log.Fatalf("connect redis %s: %v", cfg.RedisAddress, err)
	}
	if rdb != nil {
		defer rdb.Close()
		slog.Info("record cache backed by redis", slog.String("addr", cfg.RedisAddress))
	}

	store := recordstore.New(cfg.RecordStoreURL, cfg.RecordStoreTimeout)
	records := cache.NewRecordCache(store, cfg.RecordCacheTTL, rdb)
	services := httpserver.NewServices(store, records, ledger.NewSQLiteStore(db), cfg.RequireAckBeforeComplete)

	sessionCache := cache.NewUserSessionCache()
	userCache := cache.NewUserCache()
	rbacCache := cache.NewRbacRolesCache()
	rbacSvc := rbac.New(rbacCache)
	auditSvc := audit.NewService()

	server := httpserver.NewServer(cfg.AppAddr, db, sessionCache, userCache, rbacSvc, rbacCache, auditSvc, services, cfg.DefaultLanguage)
	if err := server.Start(); err != nil {
		log.Fatalf("start server: %v", err)
	}
	slog.Info("fleetcheck listening",
		slog.String("addr", cfg.AppAddr),
		slog.String("record_store", store.BaseURL()))

	go sweepSessions(ctx, db, sessionCache)

	<-ctx.Done()

	if err := server.Stop(); err != nil {
		slog.Error("graceful shutdown error", slog.Any("err", err))
	}
}

// sweepSessions drops expired sessions from the cache and the database.
func sweepSessions(ctx context.Context, db *sqlite.DB, sessionCache *cache.UserSessionCache) {
	ticker := time.NewTicker(sessionSweepInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			cached := sessionCache.PruneExpired(now)
			stored, err := login.DeleteExpiredSessions(ctx, db, now)
			if err != nil {
				slog.Error("delete expired sessions failed", slog.Any("err", err))
				continue
			}
			if cached > 0 || stored > 0 {
				slog.Info("expired sessions removed", slog.Int("cached", cached), slog.Int64("stored", stored))
			}
		}
	}
}
