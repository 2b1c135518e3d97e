// Package photos converts uploaded images to embedded data URLs and back.
package photos

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"github.com/disintegration/imaging"

	"fleetcheck/models"
)

const (
	// MaxEdge bounds the longest side of a stored photo.
	MaxEdge = 1600
	// ThumbWidth is the width of generated thumbnails.
	ThumbWidth = 200
	// MaxUploadBytes bounds one uploaded photo.
	MaxUploadBytes = 10 << 20
)

var ErrNotImage = errors.New("photo must be an image file")

// FromRequest converts every file in the multipart field into a photo.
// Requests that are not multipart carry no photos.
func FromRequest(r *http.Request, field string, now time.Time) ([]models.Photo, error) {
	if r.MultipartForm == nil || r.MultipartForm.File == nil {
		return []models.Photo{}, nil
	}
	headers := r.MultipartForm.File[field]
	out := make([]models.Photo, 0, len(headers))
	for i, fh := range headers {
		p, err := FromUpload(fh, now.Add(time.Duration(i)*time.Millisecond))
		if err != nil {
			return nil, fmt.Errorf("%s: %w", fh.Filename, err)
		}
		out = append(out, p)
	}
	return out, nil
}

// FromUpload shrinks one uploaded image and embeds it as a JPEG data URL.
func FromUpload(fh *multipart.FileHeader, now time.Time) (models.Photo, error) {
	if fh.Size > MaxUploadBytes {
		return models.Photo{}, fmt.Errorf("photo exceeds %d bytes", MaxUploadBytes)
	}
	f, err := fh.Open()
	if err != nil {
		return models.Photo{}, err
	}
	defer f.Close()
	return FromReader(f, now)
}

// FromReader decodes an image and embeds it as a JPEG data URL.
func FromReader(r io.Reader, now time.Time) (models.Photo, error) {
	img, err := imaging.Decode(r, imaging.AutoOrientation(true))
	if err != nil {
		return models.Photo{}, ErrNotImage
	}
	b := img.Bounds()
	if b.Dx() > MaxEdge || b.Dy() > MaxEdge {
		img = imaging.Fit(img, MaxEdge, MaxEdge, imaging.Lanczos)
	}
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.JPEG, imaging.JPEGQuality(80)); err != nil {
		return models.Photo{}, err
	}
	return models.Photo{
		ID:        now.UnixMilli(),
		Data:      "data:image/jpeg;base64," + base64.StdEncoding.EncodeToString(buf.Bytes()),
		Timestamp: now.UTC().Format(time.RFC3339),
	}, nil
}

// Decode returns the raw image bytes of a data URL or bare base64 payload.
func Decode(p models.Photo) ([]byte, error) {
	data := strings.TrimSpace(p.Data)
	if data == "" {
		return nil, errors.New("photo has no data")
	}
	if strings.HasPrefix(data, "data:") {
		comma := strings.IndexByte(data, ',')
		if comma < 0 || !strings.Contains(data[:comma], ";base64") {
			return nil, errors.New("unsupported photo encoding")
		}
		data = data[comma+1:]
	}
	raw, err := base64.StdEncoding.DecodeString(data)
	if err != nil {
		return nil, fmt.Errorf("decode photo: %w", err)
	}
	return raw, nil
}

// Image decodes a stored photo into an image.
func Image(p models.Photo) (image.Image, error) {
	raw, err := Decode(p)
	if err != nil {
		return nil, err
	}
	img, err := imaging.Decode(bytes.NewReader(raw), imaging.AutoOrientation(true))
	if err != nil {
		return nil, ErrNotImage
	}
	return img, nil
}

// WriteThumbnail writes a JPEG of the photo scaled to width.
func WriteThumbnail(w io.Writer, p models.Photo, width int) error {
	img, err := Image(p)
	if err != nil {
		return err
	}
	if width <= 0 {
		width = ThumbWidth
	}
	thumb := imaging.Resize(img, width, 0, imaging.Lanczos)
	return imaging.Encode(w, thumb, imaging.JPEG)
}

// WriteJPEG re-encodes the photo at full size. Payloads that do not decode as
// an image return ErrNotImage, so stored bytes are never served as-is.
func WriteJPEG(w io.Writer, p models.Photo) error {
	img, err := Image(p)
	if err != nil {
		return err
	}
	return imaging.Encode(w, img, imaging.JPEG, imaging.JPEGQuality(90))
}
