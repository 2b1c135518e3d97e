package main

import (
	"context"
	"errors"
	"fmt"
	"log"

	"fleetcheck/frontend/login"
	"fleetcheck/infrastructure/config"
	"fleetcheck/infrastructure/rbac"
	"fleetcheck/infrastructure/sqlite"
)

const adminUsername = "admin"

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	if err := seed(context.Background(), cfg.SQLitePath, cfg.AdminPassword); err != nil {
		log.Fatalf("seed admin: %v", err)
	}
	fmt.Printf("seeded admin user (username=%s) in %s\n", adminUsername, cfg.SQLitePath)
}

// seed migrates the database at dbPath and sets the local admin password.
func seed(ctx context.Context, dbPath, password string) error {
	if password == "" {
		return errors.New("ADMIN_PASSWORD is required")
	}
	db, err := sqlite.OpenDB(dbPath)
	if err != nil {
		return fmt.Errorf("open db: %w", err)
	}
	defer db.Close()

	if err := sqlite.ApplyEmbeddedMigrations(ctx, db); err != nil {
		return fmt.Errorf("apply migrations: %w", err)
	}
	return login.UpsertUserPasswordHash(ctx, db, adminUsername, rbac.RoleAdmin, password)
}
