package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	dashboardsvc "fleetcheck/domain/dashboard"
	machinesvc "fleetcheck/domain/machines"
	repairsvc "fleetcheck/domain/repairs"
	"fleetcheck/frontend/records"
	"fleetcheck/infrastructure/audit"
	"fleetcheck/infrastructure/ledger"
	"fleetcheck/infrastructure/recordstore"
	"fleetcheck/infrastructure/sqlite"
)

// --- dashboard ---

var dashboardCmd = &cobra.Command{
	Use:   "dashboard",
	Short: "Show today's checklist counts and repair totals",
	RunE: func(cmd *cobra.Command, args []string) error {
		asJSON, _ := cmd.Flags().GetBool("json")

		e, err := openEnv(cmd.Context())
		if err != nil {
			return err
		}
		defer e.Close()

		stats, err := dashboardsvc.NewService(e.store, e.ledger).Stats(cmd.Context())
		if err != nil {
			return fmt.Errorf("loading dashboard: %w", err)
		}

		out := cmd.OutOrStdout()
		if asJSON {
			enc := json.NewEncoder(out)
			enc.SetIndent("", "  ")
			return enc.Encode(stats)
		}

		fmt.Fprintln(out, colorize(colorBold, "Checklists"))
		printStatus(out, "Total", "%d", stats.Total)
		printStatus(out, "Today", "%d", stats.TodayTotal)
		for _, c := range stats.TodayByType {
			printStatus(out, "  "+c.Category, "%d", c.Count)
		}
		fmt.Fprintln(out, colorize(colorBold, "Repairs"))
		printStatus(out, "Awaiting acknowledgment", "%d", stats.NonAcknowledgedRepairs)
		printStatus(out, "Due", "%d", stats.RepairsDue)
		printStatus(out, "Completed (7 days)", "%d", stats.RepairsCompletedLast7Days)
		fmt.Fprintln(out, colorize(colorBold, "Machines"))
		printStatus(out, "Pending additions", "%d", stats.PendingMachineAdditions)
		return nil
	},
}

// --- repairs ---

var repairsCmd = &cobra.Command{
	Use:   "repairs",
	Short: "List repair items in one view",
	Long: `List repair items in one view.

Examples:
  checkctl repairs
  checkctl repairs --view due`,
	RunE: func(cmd *cobra.Command, args []string) error {
		view, _ := cmd.Flags().GetString("view")

		e, err := openEnv(cmd.Context())
		if err != nil {
			return err
		}
		defer e.Close()

		board, err := repairsvc.NewService(e.store, e.ledger, false).Load(cmd.Context())
		if err != nil {
			return fmt.Errorf("loading repairs: %w", err)
		}
		items, ok := board.Views().ByName(view)
		if !ok {
			return fmt.Errorf("unknown view %q (want new, due or completed)", view)
		}
		if len(items) == 0 {
			printWarning("No repairs in the %s view", view)
			return nil
		}

		tw := newTable(cmd.OutOrStdout())
		fmt.Fprintln(tw, "ID\tPRIORITY\tMACHINE\tITEM\tREPORTED BY\tDATE")
		for _, item := range items {
			fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n",
				item.ID,
				repairsvc.Classify(item).Label(),
				item.Machine(),
				item.Item,
				item.StaffName,
				item.Date)
		}
		return tw.Flush()
	},
}

// --- ack ---

var ackCmd = &cobra.Command{
	Use:   "ack <repair-id>",
	Short: "Acknowledge a repair so it moves to the due list",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id := strings.TrimSpace(args[0])

		e, err := openEnv(cmd.Context())
		if err != nil {
			return err
		}
		defer e.Close()

		ctx := ledger.WithActor(cmd.Context(), e.actor)
		if err := repairsvc.NewService(e.store, e.ledger, false).Acknowledge(ctx, id); err != nil {
			return fmt.Errorf("acknowledging %s: %w", id, err)
		}
		after := map[string]string{"state": repairsvc.StateAcknowledged.String()}
		if err := audit.NewService().Record(ctx, e.db, e.actor, "repair.acknowledge", "repair", id, after); err != nil {
			printWarning("audit write failed: %v", err)
		}
		printSuccess("Acknowledged %s", id)
		return nil
	},
}

// --- machines ---

var machinesCmd = &cobra.Command{
	Use:   "machines",
	Short: "List machine additions awaiting acknowledgment",
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := openEnv(cmd.Context())
		if err != nil {
			return err
		}
		defer e.Close()

		pending, err := machinesvc.NewService(e.store, e.ledger).Pending(cmd.Context())
		if err != nil {
			return fmt.Errorf("loading machines: %w", err)
		}
		if len(pending) == 0 {
			printSuccess("No pending machine additions")
			return nil
		}

		tw := newTable(cmd.OutOrStdout())
		fmt.Fprintln(tw, "ID\tMAKE\tMODEL\tREQUESTED BY\tDATE\tNOTES")
		for _, rec := range pending {
			fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n",
				rec.ID, rec.MachineMake, rec.MachineModel, rec.StaffName, rec.CompletedAt, rec.WorkshopNotes)
		}
		return tw.Flush()
	},
}

// --- export ---

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Download all checklist records from the record store",
	Long: `Download all checklist records from the record store.

Examples:
  checkctl export --format csv --out checklists.csv
  checkctl export --format excel --out -`,
	RunE: func(cmd *cobra.Command, args []string) error {
		format, _ := cmd.Flags().GetString("format")
		outPath, _ := cmd.Flags().GetString("out")

		if format != recordstore.ExportCSV && format != recordstore.ExportExcel {
			return fmt.Errorf("--format must be %s or %s", recordstore.ExportCSV, recordstore.ExportExcel)
		}

		e, err := openEnv(cmd.Context())
		if err != nil {
			return err
		}
		defer e.Close()

		dl, err := e.store.Export(cmd.Context(), format)
		if err != nil {
			return fmt.Errorf("exporting: %w", err)
		}
		defer dl.Body.Close()

		if outPath == "" {
			outPath = dl.FileName
		}
		n, err := writeExport(cmd.OutOrStdout(), outPath, dl.Body)
		if err != nil {
			return err
		}
		if err := records.RecordExportRun(cmd.Context(), e.db, e.actor, "cli_"+format); err != nil {
			printWarning("export run not logged: %v", err)
		}
		if outPath != "-" {
			printSuccess("Wrote %d bytes to %s", n, outPath)
		}
		return nil
	},
}

func writeExport(stdout io.Writer, path string, body io.Reader) (int64, error) {
	if path == "-" {
		return io.Copy(stdout, body)
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return 0, fmt.Errorf("creating %s: %w", dir, err)
		}
	}
	f, err := os.Create(path)
	if err != nil {
		return 0, fmt.Errorf("creating %s: %w", path, err)
	}
	n, err := io.Copy(f, body)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return n, fmt.Errorf("writing %s: %w", path, err)
	}
	return n, nil
}

// --- migrate ---

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply pending database migrations",
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := openEnv(cmd.Context())
		if err != nil {
			return err
		}
		defer e.Close()

		if err := sqlite.ApplyEmbeddedMigrations(cmd.Context(), e.db); err != nil {
			return fmt.Errorf("applying migrations: %w", err)
		}
		applied, err := sqlite.AppliedMigrations(cmd.Context(), e.db)
		if err != nil {
			return fmt.Errorf("listing migrations: %w", err)
		}
		for _, name := range applied {
			fmt.Fprintln(cmd.OutOrStdout(), name)
		}
		printSuccess("%d migrations applied", len(applied))
		return nil
	},
}

func init() {
	dashboardCmd.Flags().Bool("json", false, "print stats as JSON")
	repairsCmd.Flags().String("view", repairsvc.ViewNew, "view to list: new, due or completed")
	exportCmd.Flags().String("format", recordstore.ExportCSV, "export format: csv or excel")
	exportCmd.Flags().String("out", "", "output file, - for stdout (default: the store's file name)")
}
