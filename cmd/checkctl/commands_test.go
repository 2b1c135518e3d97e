package main

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/uptrace/bun"

	dashboardsvc "fleetcheck/domain/dashboard"
	"fleetcheck/infrastructure/ledger"
	"fleetcheck/infrastructure/recordstore"
	"fleetcheck/infrastructure/recordstore/recordstoretest"
	"fleetcheck/infrastructure/sqlite"
	"fleetcheck/models"
)

type cliFixture struct {
	dbPath string
	store  *recordstoretest.Server
}

func newFixture(t *testing.T, migrate bool) *cliFixture {
	t.Helper()
	now := time.Now().Format(time.RFC3339)
	f := &cliFixture{
		dbPath: filepath.Join(t.TempDir(), "checkctl.db"),
		store: recordstoretest.NewServer(t,
			models.ChecklistRecord{
				ID: "m-1", StaffName: "Ana Pop", MachineMake: "JCB", MachineModel: "3CX",
				CheckType: models.CheckTypeNewMachine, WorkshopNotes: "arrived today", CompletedAt: now,
			},
			models.ChecklistRecord{
				ID: "rec-1", StaffName: "Ana Pop", MachineMake: "Volvo", MachineModel: "EC220",
				CheckType: models.CheckTypeDaily, CompletedAt: now,
				ChecklistItems: []models.ChecklistItem{
					{Item: "Hydraulic hoses", Status: models.ItemUnsatisfactory, Notes: "leaking"},
				},
			},
		),
	}

	if migrate {
		db := f.open(t)
		if err := sqlite.ApplyEmbeddedMigrations(context.Background(), db); err != nil {
			t.Fatalf("apply migrations: %v", err)
		}
		_ = db.Close()
	}

	prevOpen, prevColor := openEnv, noColor
	noColor = true
	openEnv = func(ctx context.Context) (*env, error) {
		db, err := sqlite.OpenDB(f.dbPath)
		if err != nil {
			return nil, err
		}
		return &env{
			db:     db,
			store:  recordstore.New(f.store.URL, 5*time.Second),
			ledger: ledger.NewSQLiteStore(db),
			actor:  "cli:test",
		}, nil
	}
	t.Cleanup(func() {
		openEnv, noColor = prevOpen, prevColor
	})
	return f
}

func (f *cliFixture) open(t *testing.T) *sqlite.DB {
	t.Helper()
	db, err := sqlite.OpenDB(f.dbPath)
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	return db
}

func (f *cliFixture) count(t *testing.T, query string, args ...any) int {
	t.Helper()
	db := f.open(t)
	defer db.Close()
	var n int
	err := db.WithReadTx(context.Background(), func(ctx context.Context, tx bun.Tx) error {
		return tx.NewRaw(query, args...).Scan(ctx, &n)
	})
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	return n
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs(args)
	defer rootCmd.SetArgs(nil)
	defer rootCmd.SetOut(nil)
	err := rootCmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestDashboardJSON(t *testing.T) {
	newFixture(t, true)

	out, err := execute(t, "dashboard", "--json")
	if err != nil {
		t.Fatalf("dashboard: %v", err)
	}
	var stats dashboardsvc.Stats
	if err := json.Unmarshal([]byte(out), &stats); err != nil {
		t.Fatalf("decode stats: %v\n%s", err, out)
	}
	if stats.Total != 2 || stats.NonAcknowledgedRepairs != 1 || stats.PendingMachineAdditions != 1 {
		t.Fatalf("unexpected stats %+v", stats)
	}
}

func TestDashboardText(t *testing.T) {
	newFixture(t, true)

	out, err := execute(t, "dashboard", "--json=false")
	if err != nil {
		t.Fatalf("dashboard: %v", err)
	}
	if !strings.Contains(out, "Awaiting acknowledgment: 1") || !strings.Contains(out, "Pending additions: 1") {
		t.Fatalf("unexpected dashboard output:\n%s", out)
	}
}

func TestAckMovesRepairToDue(t *testing.T) {
	f := newFixture(t, true)

	out, err := execute(t, "repairs", "--view", "new")
	if err != nil {
		t.Fatalf("repairs new: %v", err)
	}
	if !strings.Contains(out, "rec-1-0") || !strings.Contains(out, "Hydraulic hoses") {
		t.Fatalf("expected repair in new view:\n%s", out)
	}

	if _, err := execute(t, "ack", "rec-1-0"); err != nil {
		t.Fatalf("ack: %v", err)
	}

	out, err = execute(t, "repairs", "--view", "due")
	if err != nil {
		t.Fatalf("repairs due: %v", err)
	}
	if !strings.Contains(out, "rec-1-0") {
		t.Fatalf("expected repair in due view:\n%s", out)
	}
	if n := f.count(t, `SELECT COUNT(*) FROM ledger_entries WHERE ledger_key = ? AND entry_id = ? AND created_by = ?`,
		ledger.KeyAcknowledgedRepairs, "rec-1-0", "cli:test"); n != 1 {
		t.Fatalf("expected one ledger row by cli actor, got %d", n)
	}
	if n := f.count(t, `SELECT COUNT(*) FROM audit_logs WHERE action = 'repair.acknowledge' AND actor = 'cli:test'`); n != 1 {
		t.Fatalf("expected one audit row, got %d", n)
	}
}

func TestAckUnknownRepairFails(t *testing.T) {
	newFixture(t, true)

	if _, err := execute(t, "ack", "nope-0"); err == nil {
		t.Fatalf("expected error for unknown repair")
	}
}

func TestAckRequiresOneArgument(t *testing.T) {
	newFixture(t, true)

	if _, err := execute(t, "ack"); err == nil {
		t.Fatalf("expected argument error")
	}
}

func TestRepairsRejectsUnknownView(t *testing.T) {
	newFixture(t, true)

	_, err := execute(t, "repairs", "--view", "archived")
	if err == nil || !strings.Contains(err.Error(), "unknown view") {
		t.Fatalf("expected unknown view error, got %v", err)
	}
}

func TestMachinesListsPending(t *testing.T) {
	newFixture(t, true)

	out, err := execute(t, "machines")
	if err != nil {
		t.Fatalf("machines: %v", err)
	}
	if !strings.Contains(out, "m-1") || !strings.Contains(out, "3CX") {
		t.Fatalf("expected pending machine:\n%s", out)
	}
}

func TestExportWritesFileAndLogsRun(t *testing.T) {
	f := newFixture(t, true)
	outPath := filepath.Join(t.TempDir(), "exports", "all.csv")

	if _, err := execute(t, "export", "--format", "csv", "--out", outPath); err != nil {
		t.Fatalf("export: %v", err)
	}
	data, err := os.ReadFile(outPath)
	if err != nil {
		t.Fatalf("read export: %v", err)
	}
	if !strings.Contains(string(data), "rec-1") {
		t.Fatalf("expected record in export:\n%s", data)
	}
	if n := f.count(t, `SELECT COUNT(*) FROM export_runs WHERE actor = 'cli:test' AND export_type = 'cli_csv'`); n != 1 {
		t.Fatalf("expected one export run, got %d", n)
	}
}

func TestExportRejectsUnknownFormat(t *testing.T) {
	newFixture(t, true)

	if _, err := execute(t, "export", "--format", "pdf", "--out", "-"); err == nil {
		t.Fatalf("expected format error")
	}
}

func TestMigrateAppliesEmbeddedMigrations(t *testing.T) {
	newFixture(t, false)

	out, err := execute(t, "migrate")
	if err != nil {
		t.Fatalf("migrate: %v", err)
	}
	if !strings.Contains(out, "0001_init.sql") {
		t.Fatalf("expected init migration listed:\n%s", out)
	}

	out, err = execute(t, "migrate")
	if err != nil {
		t.Fatalf("second migrate: %v", err)
	}
	if strings.Count(out, "0001_init.sql") != 1 {
		t.Fatalf("migration should be listed once:\n%s", out)
	}
}
