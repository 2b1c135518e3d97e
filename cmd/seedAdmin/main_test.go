package main

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/uptrace/bun"

	"fleetcheck/infrastructure/sqlite"
)

func TestSeedCreatesAdminOnce(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "seed.db")

	if err := seed(context.Background(), dbPath, "Admin123!Fleetcheck"); err != nil {
		t.Fatalf("first seed: %v", err)
	}
	if err := seed(context.Background(), dbPath, "Changed456!Fleetcheck"); err != nil {
		t.Fatalf("second seed: %v", err)
	}

	db, err := sqlite.OpenDB(dbPath)
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	defer db.Close()

	var count int
	var role string
	err = db.WithReadTx(context.Background(), func(ctx context.Context, tx bun.Tx) error {
		if err := tx.NewRaw(`SELECT COUNT(*) FROM users WHERE username = ?`, adminUsername).Scan(ctx, &count); err != nil {
			return err
		}
		return tx.NewRaw(`SELECT role FROM users WHERE username = ?`, adminUsername).Scan(ctx, &role)
	})
	if err != nil {
		t.Fatalf("query users: %v", err)
	}
	if count != 1 || role != "admin" {
		t.Fatalf("expected one admin row, got count=%d role=%q", count, role)
	}
}

func TestSeedRejectsMissingOrWeakPassword(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "seed.db")
	if err := seed(context.Background(), dbPath, ""); err == nil {
		t.Fatalf("expected missing password error")
	}
	if err := seed(context.Background(), dbPath, "short"); err == nil {
		t.Fatalf("expected password policy error")
	}
}
