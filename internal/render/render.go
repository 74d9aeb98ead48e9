// Package render draws QR symbols and re-encodes raster images to WebP.
package render

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/color"
	_ "image/gif"
	_ "image/jpeg"
	"image/png"

	"github.com/MikhailRaia/utility-suite/internal/pool"
	"github.com/chai2010/webp"
	"github.com/lucasb-eyer/go-colorful"
	"github.com/skip2/go-qrcode"
	_ "golang.org/x/image/bmp"
	"golang.org/x/image/draw"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

const (
	// DefaultWebPQuality is the lossy quality used for conversions.
	DefaultWebPQuality = 75
	// MaxPixels bounds decoded image area.
	MaxPixels = 40_000_000

	bufferPoolSize = 16
)

var (
	// ErrEmptyPayload is returned when there is nothing to encode.
	ErrEmptyPayload = errors.New("no data to encode")
	// ErrImageTooLarge is returned for images above MaxPixels.
	ErrImageTooLarge = errors.New("image dimensions too large")
)

// Renderer is safe for concurrent use.
type Renderer struct {
	buffers *pool.Pool[*bytes.Buffer]
}

// NewRenderer returns a Renderer with its own buffer pool.
func NewRenderer() *Renderer {
	return &Renderer{
		buffers: pool.New(bufferPoolSize, func() *bytes.Buffer { return new(bytes.Buffer) }),
	}
}

// RenderQR encodes payload at the highest error correction level and returns
// a size x size PNG.
func (r *Renderer) RenderQR(payload string, fg, bg color.Color, size int) ([]byte, error) {
	if payload == "" {
		return nil, ErrEmptyPayload
	}

	qr, err := qrcode.New(payload, qrcode.Highest)
	if err != nil {
		return nil, err
	}
	qr.ForegroundColor = fg
	qr.BackgroundColor = bg

	// The symbol is drawn one pixel per module and scaled, since
	// go-qrcode grows the image past size when the symbol needs more room.
	symbol := qr.Image(-1)
	dst := image.NewRGBA(image.Rect(0, 0, size, size))
	draw.NearestNeighbor.Scale(dst, dst.Bounds(), symbol, symbol.Bounds(), draw.Src, nil)

	buf := r.buffers.Get()
	defer r.buffers.Put(buf)

	if err := png.Encode(buf, dst); err != nil {
		return nil, fmt.Errorf("error writing png: %w", err)
	}

	return bytes.Clone(buf.Bytes()), nil
}

// ReencodeToWebP decodes a PNG, JPEG, GIF, WebP, BMP or TIFF image, flattens
// any transparency onto white and encodes it as lossy WebP.
func (r *Renderer) ReencodeToWebP(data []byte, quality float32) ([]byte, error) {
	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("cannot identify image: %w", err)
	}
	if cfg.Width*cfg.Height > MaxPixels {
		return nil, ErrImageTooLarge
	}

	src, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("cannot decode image: %w", err)
	}

	bounds := src.Bounds()
	canvas := image.NewRGBA(bounds)
	draw.Draw(canvas, bounds, image.White, image.Point{}, draw.Src)
	draw.Draw(canvas, bounds, src, bounds.Min, draw.Over)

	buf := r.buffers.Get()
	defer r.buffers.Put(buf)

	if err := webp.Encode(buf, canvas, &webp.Options{Quality: quality}); err != nil {
		return nil, fmt.Errorf("error encoding webp: %w", err)
	}

	return bytes.Clone(buf.Bytes()), nil
}

// ParseColor parses "#RRGGBB" or "#RGB".
func ParseColor(hex string) (color.Color, error) {
	c, err := colorful.Hex(hex)
	if err != nil {
		return nil, fmt.Errorf("invalid color %q: %w", hex, err)
	}
	return c, nil
}
