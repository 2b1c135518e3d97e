package uploads

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/uptrace/bun"
	"github.com/xuri/excelize/v2"

	"fleetcheck/infrastructure/audit"
	"fleetcheck/infrastructure/sqlite"
	"fleetcheck/models"
)

var ErrNoDataRows = errors.New("the sheet must have a header row and at least one data row")

// ValidateWorkbook checks the first sheet of an .xlsx upload and returns the
// number of non-empty data rows.
func ValidateWorkbook(kind Kind, r io.Reader) (int, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return 0, fmt.Errorf("not a readable .xlsx workbook: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return 0, ErrNoDataRows
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return 0, fmt.Errorf("read sheet %q: %w", sheets[0], err)
	}
	if len(rows) < 2 {
		return 0, ErrNoDataRows
	}

	headers := make([]string, 0, len(rows[0]))
	for _, cell := range rows[0] {
		headers = append(headers, strings.ToLower(strings.TrimSpace(cell)))
	}
	missing := make([]string, 0)
	for _, rule := range kind.Required {
		if !hasHeader(headers, rule) {
			missing = append(missing, rule.Label)
		}
	}
	if len(missing) > 0 {
		return 0, fmt.Errorf("missing column(s): %s", strings.Join(missing, ", "))
	}

	count := 0
	for _, row := range rows[1:] {
		for _, cell := range row {
			if strings.TrimSpace(cell) != "" {
				count++
				break
			}
		}
	}
	if count == 0 {
		return 0, ErrNoDataRows
	}
	return count, nil
}

func hasHeader(headers []string, rule headerRule) bool {
	for _, h := range headers {
		for _, w := range rule.Words {
			if strings.Contains(h, w) {
				return true
			}
		}
	}
	return false
}

// RecordUploadRun stores the attempt and its audit row in one transaction.
func RecordUploadRun(ctx context.Context, db *sqlite.DB, auditSvc *audit.Service, run models.UploadRun) error {
	return db.WithWriteTx(ctx, func(ctx context.Context, tx bun.Tx) error {
		if _, err := tx.NewInsert().Model(&run).ExcludeColumn("created_at").Exec(ctx); err != nil {
			return err
		}
		if auditSvc != nil {
			after := map[string]any{"kind": run.Kind, "file": run.FileName, "rows": run.RowCount, "status": run.Status}
			if err := auditSvc.Write(ctx, tx, run.Actor, "reference.upload", "upload_runs", run.ID, nil, after); err != nil {
				return err
			}
		}
		return nil
	})
}

func ListUploadRuns(ctx context.Context, db *sqlite.DB, limit int) ([]models.UploadRun, error) {
	rows := make([]models.UploadRun, 0)
	err := db.WithReadTx(ctx, func(ctx context.Context, tx bun.Tx) error {
		return tx.NewSelect().Model(&rows).OrderExpr("ur.created_at DESC, ur.rowid DESC").Limit(limit).Scan(ctx)
	})
	return rows, err
}
