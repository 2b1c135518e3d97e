package repairs

import (
	"bytes"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	repairsvc "fleetcheck/domain/repairs"
	"fleetcheck/frontend/shared/photos"
)

// RepairPhotoQueryHandler serves a repair photo as JPEG, a thumbnail unless
// full=1.
func RepairPhotoQueryHandler(svc *repairsvc.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := repairIDParam(r)
		index, err := strconv.Atoi(chi.URLParam(r, "index"))
		if err != nil || index < 0 {
			http.Error(w, "invalid photo index", http.StatusBadRequest)
			return
		}

		board, err := svc.Load(r.Context())
		if err != nil {
			slog.Error("load repairs failed", slog.String("repair_id", id), slog.Any("err", err))
			http.Error(w, "record store unavailable", http.StatusBadGateway)
			return
		}
		item, ok := board.Find(id)
		if !ok || index >= len(item.Photos) {
			http.Error(w, "photo not found", http.StatusNotFound)
			return
		}
		photo := item.Photos[index]

		width := 0
		if r.URL.Query().Get("full") != "1" {
			width = photos.ThumbWidth
			if v, err := strconv.Atoi(r.URL.Query().Get("w")); err == nil && v > 0 && v <= photos.MaxEdge {
				width = v
			}
		}

		var buf bytes.Buffer
		if width == 0 {
			err = photos.WriteJPEG(&buf, photo)
		} else {
			err = photos.WriteThumbnail(&buf, photo, width)
		}
		if err != nil {
			slog.Warn("photo unreadable", slog.String("repair_id", id), slog.Int("index", index), slog.Any("err", err))
			if errors.Is(err, photos.ErrNotImage) {
				http.Error(w, "photo is not an image", http.StatusUnsupportedMediaType)
				return
			}
			http.Error(w, "photo unreadable", http.StatusUnprocessableEntity)
			return
		}

		// Always a freshly encoded JPEG; the stored payload is never echoed.
		w.Header().Set("Content-Type", "image/jpeg")
		w.Header().Set("Content-Disposition", "inline")
		w.Header().Set("Content-Security-Policy", "default-src 'none'")
		w.Header().Set("Cache-Control", "private, max-age=300")
		_, _ = w.Write(buf.Bytes())
	}
}
