// Package cover sets a playlist image from an artist picture.
package cover

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/jpeg"
	_ "image/png"
	"io"
	"time"

	"deepcut/internal/events"

	"github.com/fogleman/gg"
	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
)

const (
	// Size is the edge length of the uploaded square cover.
	Size = 300
	// MaxUploadBytes is the service's limit for a cover image.
	MaxUploadBytes = 256 * 1024
)

// Uploader stores a JPEG as a playlist's cover.
type Uploader interface {
	UploadCover(ctx context.Context, playlistID string, jpeg io.Reader) error
}

// Setter fetches, resizes and uploads covers.
type Setter struct {
	http     *resty.Client
	uploader Uploader
	logger   *zap.Logger
	sink     events.Sink
}

// NewSetter creates a cover setter.
func NewSetter(uploader Uploader, logger *zap.Logger, sink events.Sink) *Setter {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Setter{
		http:     resty.New().SetTimeout(15 * time.Second),
		uploader: uploader,
		logger:   logger,
		sink:     sink,
	}
}

// Set replaces the playlist cover with the image at imageURL. It is best
// effort: every failure is logged as a warning and reported as false.
func (s *Setter) Set(ctx context.Context, playlistID, imageURL string) bool {
	if imageURL == "" {
		s.sink.Logf(events.SeverityWarn, "No artist image found for the playlist cover")
		return false
	}

	if err := s.set(ctx, playlistID, imageURL); err != nil {
		s.logger.Warn("cover upload failed", zap.String("playlist_id", playlistID), zap.Error(err))
		s.sink.Logf(events.SeverityWarn, "Could not update the playlist cover: %v", err)
		return false
	}

	s.logger.Info("cover uploaded", zap.String("playlist_id", playlistID))
	s.sink.Logf(events.SeveritySuccess, "Playlist cover updated")
	return true
}

func (s *Setter) set(ctx context.Context, playlistID, imageURL string) error {
	resp, err := s.http.R().SetContext(ctx).Get(imageURL)
	if err != nil {
		return fmt.Errorf("fetching image: %w", err)
	}
	if resp.IsError() {
		return fmt.Errorf("fetching image: %s", resp.Status())
	}

	img, _, err := image.Decode(bytes.NewReader(resp.Body()))
	if err != nil {
		return fmt.Errorf("decoding image: %w", err)
	}

	data, err := Encode(img)
	if err != nil {
		return err
	}
	return s.uploader.UploadCover(ctx, playlistID, bytes.NewReader(data))
}

// Encode scales img to Size x Size and encodes it as JPEG, lowering the
// quality until it fits MaxUploadBytes.
func Encode(img image.Image) ([]byte, error) {
	resized := Resize(img, Size)

	var buf bytes.Buffer
	for _, quality := range []int{90, 75, 60, 40} {
		buf.Reset()
		if err := jpeg.Encode(&buf, resized, &jpeg.Options{Quality: quality}); err != nil {
			return nil, fmt.Errorf("encoding jpeg: %w", err)
		}
		if buf.Len() <= MaxUploadBytes {
			return buf.Bytes(), nil
		}
	}
	return nil, errors.New("cover image too large after compression")
}

// Resize stretches img to a size x size square.
func Resize(img image.Image, size int) image.Image {
	b := img.Bounds()
	dc := gg.NewContext(size, size)
	dc.Scale(float64(size)/float64(b.Dx()), float64(size)/float64(b.Dy()))
	dc.DrawImage(img, -b.Min.X, -b.Min.Y)
	return dc.Image()
}
