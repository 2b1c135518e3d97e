package repairs

import (
	"log/slog"
	"mime"
	"net/http"
	"time"

	"github.com/xuri/excelize/v2"

	repairsvc "fleetcheck/domain/repairs"
)

var workbookHeader = []string{"Repair ID", "Priority", "Machine", "Issue", "Notes", "Urgency", "Reported by", "Reported", "Check type", "Photos"}

// RepairsWorkbookHandler exports the three repair views as one workbook.
func RepairsWorkbookHandler(svc *repairsvc.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		board, err := svc.Load(r.Context())
		if err != nil {
			slog.Error("load repairs failed", slog.Any("err", err))
			http.Error(w, "record store unavailable", http.StatusBadGateway)
			return
		}
		f, err := buildRepairsWorkbook(board)
		if err != nil {
			slog.Error("build repairs workbook failed", slog.Any("err", err))
			http.Error(w, "failed to build workbook", http.StatusInternalServerError)
			return
		}
		defer f.Close()

		name := "repairs-" + time.Now().Format("2006-01-02") + ".xlsx"
		w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
		w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": name}))
		if err := f.Write(w); err != nil {
			slog.Error("write repairs workbook failed", slog.Any("err", err))
		}
	}
}

func buildRepairsWorkbook(board repairsvc.Board) (*excelize.File, error) {
	views := board.Views()
	sheets := []struct {
		name  string
		items []repairsvc.RepairItem
	}{
		{name: "Due", items: views.Due},
		{name: "New", items: views.New},
		{name: "Completed", items: views.Completed},
	}

	f := excelize.NewFile()
	if err := f.SetSheetName(f.GetSheetName(0), sheets[0].name); err != nil {
		return nil, err
	}
	headerStyle, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return nil, err
	}

	for i, sheet := range sheets {
		if i > 0 {
			if _, err := f.NewSheet(sheet.name); err != nil {
				return nil, err
			}
		}
		if err := f.SetSheetRow(sheet.name, "A1", &workbookHeader); err != nil {
			return nil, err
		}
		if err := f.SetRowStyle(sheet.name, 1, 1, headerStyle); err != nil {
			return nil, err
		}
		for n, item := range sheet.items {
			row := []any{
				item.ID,
				repairsvc.Classify(item).Label(),
				item.Machine(),
				item.Item,
				item.Notes,
				item.Urgency,
				item.StaffName,
				item.Date,
				item.CheckType,
				len(item.Photos),
			}
			cell, err := excelize.CoordinatesToCellName(1, n+2)
			if err != nil {
				return nil, err
			}
			if err := f.SetSheetRow(sheet.name, cell, &row); err != nil {
				return nil, err
			}
		}
		if err := f.SetColWidth(sheet.name, "A", "A", 22); err != nil {
			return nil, err
		}
		if err := f.SetColWidth(sheet.name, "C", "E", 32); err != nil {
			return nil, err
		}
	}
	f.SetActiveSheet(0)
	return f, nil
}
