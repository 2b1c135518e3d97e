package repairs

import (
	"bytes"
	"fmt"
	"image"
	"image/draw"
	"image/png"
	"log/slog"
	"mime"
	"net/http"
	"strings"
	"time"

	"github.com/boombuler/barcode"
	"github.com/boombuler/barcode/code128"
	"github.com/disintegration/imaging"
	"github.com/jung-kurt/gofpdf"

	dashboardsvc "fleetcheck/domain/dashboard"
	repairsvc "fleetcheck/domain/repairs"
	"fleetcheck/frontend/shared/photos"
)

// maxSheetPhotos bounds the photos printed on one job sheet.
const maxSheetPhotos = 3

// RepairJobSheetPDFHandler renders a printable job sheet for one repair.
func RepairJobSheetPDFHandler(svc *repairsvc.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := repairIDParam(r)
		board, err := svc.Load(r.Context())
		if err != nil {
			slog.Error("load repairs failed", slog.String("repair_id", id), slog.Any("err", err))
			http.Error(w, "record store unavailable", http.StatusBadGateway)
			return
		}
		item, ok := board.Find(id)
		if !ok {
			http.Error(w, "repair not found", http.StatusNotFound)
			return
		}

		pdfBytes, err := renderJobSheetPDF(newItemView(item, board), time.Now())
		if err != nil {
			slog.Error("render job sheet failed", slog.String("repair_id", id), slog.Any("err", err))
			http.Error(w, "failed to render job sheet", http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/pdf")
		w.Header().Set("Content-Disposition", mime.FormatMediaType("inline", map[string]string{"filename": "repair-" + safeFileName(id) + ".pdf"}))
		_, _ = w.Write(pdfBytes)
	}
}

func renderJobSheetPDF(item ItemView, printedAt time.Time) ([]byte, error) {
	barcodePNG, err := renderCode128PNG(item.ID, 1200, 220)
	if err != nil {
		return nil, fmt.Errorf("encode barcode: %w", err)
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetTitle("Repair Job Sheet "+item.ID, false)
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.AddPage()

	pageW, _ := pdf.GetPageSize()
	left, _, right, _ := pdf.GetMargins()
	contentW := pageW - left - right

	pdf.SetFont("Helvetica", "B", 22)
	pdf.CellFormat(contentW, 12, "REPAIR JOB SHEET", "", 1, "L", false, 0, "")

	r, g, b := priorityRGB(item.Priority)
	pdf.SetFillColor(r, g, b)
	pdf.SetTextColor(255, 255, 255)
	pdf.SetFont("Helvetica", "B", 12)
	pdf.CellFormat(contentW, 8, strings.ToUpper(item.Priority.Label()), "", 1, "C", true, 0, "")
	pdf.SetTextColor(0, 0, 0)
	pdf.Ln(3)

	opt := gofpdf.ImageOptions{ImageType: "PNG", ReadDpi: false}
	imageName := "repair-barcode-" + item.ID
	pdf.RegisterImageOptionsReader(imageName, opt, bytes.NewReader(barcodePNG))
	barcodeW := 120.0
	barcodeH := 22.0
	y := pdf.GetY()
	pdf.ImageOptions(imageName, left+(contentW-barcodeW)/2, y, barcodeW, barcodeH, false, opt, 0, "")
	pdf.SetY(y + barcodeH + 1)
	pdf.SetFont("Helvetica", "", 10)
	pdf.CellFormat(contentW, 6, item.ID, "", 1, "C", false, 0, "")
	pdf.Ln(2)

	machine := strings.TrimSpace(item.Machine())
	if machine == "" {
		machine = "Unknown machine"
	}
	reporter := strings.TrimSpace(item.StaffName)
	if reporter == "" {
		reporter = "-"
	}
	rows := [][2]string{
		{"Machine", machine},
		{"Reported by", reporter},
		{"Reported", displayDate(item.Date)},
		{"Check type", item.CheckType},
		{"State", item.State.String()},
	}
	if item.Urgency != "" {
		rows = append(rows, [2]string{"Urgency", item.Urgency})
	}
	labelW := 38.0
	for _, row := range rows {
		pdf.SetFont("Helvetica", "B", 11)
		pdf.CellFormat(labelW, 7, row[0]+":", "", 0, "L", false, 0, "")
		valueFont := fitFontSizeForWidth(pdf, "Helvetica", "", 11, 7, tr(row[1]), contentW-labelW)
		pdf.SetFont("Helvetica", "", valueFont)
		pdf.CellFormat(contentW-labelW, 7, tr(row[1]), "", 1, "L", false, 0, "")
	}
	pdf.Ln(3)

	pdf.SetFont("Helvetica", "B", 12)
	pdf.CellFormat(contentW, 7, "Issue", "B", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 11)
	pdf.MultiCell(contentW, 6, tr(item.Item), "", "L", false)
	if notes := strings.TrimSpace(item.Notes); notes != "" {
		pdf.SetFont("Helvetica", "I", 11)
		pdf.MultiCell(contentW, 6, tr(notes), "", "L", false)
	}
	pdf.Ln(2)

	if err := addSheetPhotos(pdf, item, left, contentW); err != nil {
		slog.Warn("job sheet photos skipped", slog.String("repair_id", item.ID), slog.Any("err", err))
	}

	for _, heading := range []string{"Work carried out", "Parts used"} {
		pdf.SetFont("Helvetica", "B", 12)
		pdf.CellFormat(contentW, 7, heading, "B", 1, "L", false, 0, "")
		for i := 0; i < 4; i++ {
			pdf.CellFormat(contentW, 8, "", "B", 1, "L", false, 0, "")
		}
		pdf.Ln(3)
	}

	pdf.SetFont("Helvetica", "", 11)
	half := contentW / 2
	pdf.CellFormat(half, 10, "Fitter: ____________________", "", 0, "L", false, 0, "")
	pdf.CellFormat(half, 10, "Date: ______________", "", 1, "R", false, 0, "")

	pdf.SetFont("Helvetica", "", 8)
	pdf.SetTextColor(110, 110, 110)
	pdf.CellFormat(contentW, 6, "Printed "+printedAt.Format("02/01/2006 15:04"), "", 1, "R", false, 0, "")

	var out bytes.Buffer
	if err := pdf.Output(&out); err != nil {
		return nil, err
	}
	return out.Bytes(), nil
}

func addSheetPhotos(pdf *gofpdf.Fpdf, item ItemView, left, contentW float64) error {
	n := len(item.Photos)
	if n == 0 {
		return nil
	}
	if n > maxSheetPhotos {
		n = maxSheetPhotos
	}
	slotW := (contentW - float64(maxSheetPhotos-1)*4) / maxSheetPhotos
	slotH := 45.0
	y := pdf.GetY()
	placed := 0
	var firstErr error
	for i := 0; i < n; i++ {
		img, err := photos.Image(item.Photos[i])
		if err != nil {
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		fitted := imaging.Fit(img, 600, 450, imaging.Lanczos)
		var buf bytes.Buffer
		if err := imaging.Encode(&buf, fitted, imaging.JPEG); err != nil {
			return err
		}
		opt := gofpdf.ImageOptions{ImageType: "JPG", ReadDpi: false}
		name := fmt.Sprintf("repair-photo-%s-%d", item.ID, i)
		pdf.RegisterImageOptionsReader(name, opt, &buf)
		w, h := fitBox(fitted.Bounds().Dx(), fitted.Bounds().Dy(), slotW, slotH)
		x := left + float64(placed)*(slotW+4)
		pdf.ImageOptions(name, x, y, w, h, false, opt, 0, "")
		placed++
	}
	if placed > 0 {
		pdf.SetY(y + slotH + 4)
	}
	return firstErr
}

// fitBox scales a pixel size into a box in mm keeping the aspect ratio.
func fitBox(pxW, pxH int, boxW, boxH float64) (float64, float64) {
	if pxW <= 0 || pxH <= 0 {
		return boxW, boxH
	}
	ratio := float64(pxW) / float64(pxH)
	if boxW/ratio <= boxH {
		return boxW, boxW / ratio
	}
	return boxH * ratio, boxH
}

func priorityRGB(p repairsvc.Priority) (int, int, int) {
	switch p.Color() {
	case "red":
		return 200, 30, 30
	case "orange":
		return 230, 120, 20
	case "yellow":
		return 200, 160, 0
	case "green":
		return 40, 140, 60
	}
	return 120, 120, 120
}

func displayDate(value string) string {
	if t, ok := dashboardsvc.ParseTimestamp(value, time.Local); ok {
		return t.Format("02/01/2006 15:04")
	}
	if value == "" {
		return "-"
	}
	return value
}

func safeFileName(id string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			return r
		}
		return '_'
	}, id)
}

func fitFontSizeForWidth(pdf *gofpdf.Fpdf, family, style string, base, min float64, text string, maxWidth float64) float64 {
	if maxWidth <= 0 {
		return min
	}
	size := base
	pdf.SetFont(family, style, size)
	for size > min && pdf.GetStringWidth(text) > maxWidth {
		size -= 0.5
		pdf.SetFont(family, style, size)
	}
	return size
}

func renderCode128PNG(value string, width, height int) ([]byte, error) {
	code, err := code128.Encode(value)
	if err != nil {
		return nil, err
	}
	scaled, err := barcode.Scale(code, width, height)
	if err != nil {
		return nil, err
	}
	var out bytes.Buffer
	if err := png.Encode(&out, toNRGBA(scaled)); err != nil {
		return nil, err
	}
	return out.Bytes(), nil
}

func toNRGBA(src image.Image) *image.NRGBA {
	bounds := src.Bounds()
	dst := image.NewNRGBA(bounds)
	draw.Draw(dst, bounds, src, bounds.Min, draw.Src)
	return dst
}
