package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"os/user"
	"syscall"

	"github.com/spf13/cobra"

	"fleetcheck/infrastructure/config"
	"fleetcheck/infrastructure/ledger"
	"fleetcheck/infrastructure/recordstore"
	"fleetcheck/infrastructure/sqlite"
)

var noColor bool

var rootCmd = &cobra.Command{
	Use:           "checkctl",
	Short:         "Operate the fleet checklist installation from a terminal",
	SilenceUsage:  true,
	SilenceErrors: true,
}

// env is what every command works against.
type env struct {
	db     *sqlite.DB
	store  *recordstore.Client
	ledger ledger.Store
	actor  string
}

func (e *env) Close() error {
	return e.db.Close()
}

// openEnv is replaced in tests.
var openEnv = func(ctx context.Context) (*env, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	db, err := sqlite.OpenDB(cfg.SQLitePath)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	return &env{
		db:     db,
		store:  recordstore.New(cfg.RecordStoreURL, cfg.RecordStoreTimeout),
		ledger: ledger.NewSQLiteStore(db),
		actor:  cliActor(),
	}, nil
}

func cliActor() string {
	if u, err := user.Current(); err == nil && u.Username != "" {
		return "cli:" + u.Username
	}
	return "cli"
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", os.Getenv("NO_COLOR") != "", "disable coloured output")

	rootCmd.AddCommand(dashboardCmd)
	rootCmd.AddCommand(repairsCmd)
	rootCmd.AddCommand(ackCmd)
	rootCmd.AddCommand(machinesCmd)
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(migrateCmd)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		printError("%v", err)
		os.Exit(1)
	}
}
