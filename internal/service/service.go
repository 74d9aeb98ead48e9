// Package service holds the business logic behind the HTTP handlers: batch
// shortlink creation, batch QR generation, WebP conversion and status checks.
package service

import (
	"context"
	"errors"
	"image/color"

	"github.com/MikhailRaia/utility-suite/internal/shortener"
	"github.com/MikhailRaia/utility-suite/internal/storage"
)

var (
	// ErrInvalidRequest is returned when a whole request is rejected before processing.
	ErrInvalidRequest = errors.New("invalid request")
	// ErrCodeInUse is returned when a caller-supplied short code is already taken.
	ErrCodeInUse = errors.New("custom code already in use")
	// ErrCodeSpaceExhausted is returned when generated codes keep colliding.
	ErrCodeSpaceExhausted = errors.New("could not allocate a unique short code")
	// ErrTooManyFiles is returned when an image batch is over the file limit.
	ErrTooManyFiles = errors.New("maximum 10 images allowed per batch")
)

// ExternalShortener shortens a URL through a third-party service. Failures are
// reported in the returned Result and never as a Go error.
type ExternalShortener interface {
	Shorten(ctx context.Context, longURL string) shortener.Result
}

// QRRenderer draws a QR symbol as a PNG.
type QRRenderer interface {
	RenderQR(payload string, fg, bg color.Color, size int) ([]byte, error)
}

// WebPEncoder re-encodes any supported raster image to WebP.
type WebPEncoder interface {
	ReencodeToWebP(data []byte, quality float32) ([]byte, error)
}

// ClickRecorder counts a visit to a short code.
type ClickRecorder interface {
	RecordClick(ctx context.Context, code string) error
}

// StoreClickRecorder increments clicks synchronously in the store.
type StoreClickRecorder struct {
	store storage.ShortlinkStorage
}

// NewStoreClickRecorder returns a recorder writing straight to store.
func NewStoreClickRecorder(store storage.ShortlinkStorage) *StoreClickRecorder {
	return &StoreClickRecorder{store: store}
}

// RecordClick adds one click to code.
func (r *StoreClickRecorder) RecordClick(ctx context.Context, code string) error {
	return r.store.IncrementClicks(ctx, code, 1)
}
