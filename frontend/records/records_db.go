package records

import (
	"context"
	"encoding/csv"
	"io"
	"strconv"

	"github.com/uptrace/bun"

	"fleetcheck/infrastructure/sqlite"
	"fleetcheck/models"
)

func writeSummaryCSV(w io.Writer, records []models.ChecklistRecord) error {
	writer := csv.NewWriter(w)
	defer writer.Flush()

	header := []string{"id", "completed_at", "employee_number", "staff_name", "machine_make", "machine_model", "check_type", "items", "faults", "workshop_notes"}
	if err := writer.Write(header); err != nil {
		return err
	}
	for _, rec := range records {
		row := []string{
			rec.ID,
			rec.CompletedAt,
			rec.EmployeeNumber,
			rec.StaffName,
			rec.MachineMake,
			rec.MachineModel,
			rec.CheckType,
			strconv.Itoa(len(rec.ChecklistItems)),
			strconv.Itoa(faultCount(rec)),
			rec.WorkshopNotes,
		}
		if err := writer.Write(row); err != nil {
			return err
		}
	}
	return writer.Error()
}

func faultCount(rec models.ChecklistRecord) int {
	n := 0
	for _, it := range rec.ChecklistItems {
		if it.Status == models.ItemUnsatisfactory {
			n++
		}
	}
	return n
}

func photoCount(rec models.ChecklistRecord) int {
	n := len(rec.WorkshopPhotos)
	for _, it := range rec.ChecklistItems {
		n += len(it.Photos)
	}
	return n
}

// RecordExportRun logs one export in export_runs.
func RecordExportRun(ctx context.Context, db *sqlite.DB, actor, exportType string) error {
	return db.WithWriteTx(ctx, func(ctx context.Context, tx bun.Tx) error {
		_, err := tx.ExecContext(ctx, `INSERT INTO export_runs (actor, export_type, created_at) VALUES (?, ?, CURRENT_TIMESTAMP)`, actor, exportType)
		return err
	})
}

func listExportRuns(ctx context.Context, db *sqlite.DB, limit int) ([]ExportRun, error) {
	rows := make([]ExportRun, 0)
	err := db.WithReadTx(ctx, func(ctx context.Context, tx bun.Tx) error {
		return tx.NewRaw(`
SELECT actor, export_type, created_at
FROM export_runs
ORDER BY id DESC
LIMIT ?`, limit).Scan(ctx, &rows)
	})
	if err != nil {
		return nil, err
	}
	return rows, nil
}
