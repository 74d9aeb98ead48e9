package service

import (
	"context"
	"encoding/base64"
	"fmt"
	"image/color"

	"github.com/rs/zerolog/log"

	"github.com/MikhailRaia/utility-suite/internal/encoder"
	"github.com/MikhailRaia/utility-suite/internal/model"
	"github.com/MikhailRaia/utility-suite/internal/pipeline"
	"github.com/MikhailRaia/utility-suite/internal/render"
)

const (
	MaxQRBatch     = 50
	DefaultQRSize  = 300
	MinQRSize      = 64
	MaxQRSize      = 2048
	DefaultFgColor = "#000000"
	DefaultBgColor = "#FFFFFF"
)

// QRService renders batches of QR codes.
type QRService struct {
	renderer    QRRenderer
	external    ExternalShortener
	concurrency int
}

// NewQRService returns a QRService. external may be nil.
func NewQRService(renderer QRRenderer, external ExternalShortener, concurrency int) *QRService {
	return &QRService{
		renderer:    renderer,
		external:    external,
		concurrency: concurrency,
	}
}

type qrStyle struct {
	fg, bg color.Color
	size   int
}

// GenerateBatch renders every item. Request-level problems fail the whole
// batch with ErrInvalidRequest; item failures are reported in their result.
func (s *QRService) GenerateBatch(ctx context.Context, req model.QRRequest) (model.QRBatchResponse, error) {
	style, err := validateQRRequest(req)
	if err != nil {
		return model.QRBatchResponse{}, err
	}

	useExternal := req.PreferExternal() && s.external != nil

	results := pipeline.Process(ctx, req.Items, s.concurrency, func(ctx context.Context, item model.QRItem) (model.QRResult, error) {
		return s.generateOne(ctx, item, style, useExternal)
	})

	resp := model.QRBatchResponse{Results: make([]model.QRResult, len(results))}
	for i, r := range results {
		if r.OK() {
			resp.Results[i] = r.Value
			continue
		}
		resp.Results[i] = model.QRResult{
			OriginalContent: req.Items[i].Content,
			FinalContent:    r.Value.FinalContent,
			Error:           r.Err.Error(),
		}
	}
	return resp, nil
}

func (s *QRService) generateOne(ctx context.Context, item model.QRItem, style qrStyle, useExternal bool) (model.QRResult, error) {
	contentType := item.ContentType
	if contentType == "" {
		contentType = model.ContentURL
	}

	payload := encoder.Encode(item.Content, contentType)

	if useExternal && contentType == model.ContentURL && payload != "" {
		res := s.external.Shorten(ctx, payload)
		if res.Success {
			payload = res.ShortURL
		} else {
			log.Debug().Str("url", payload).Str("reason", res.Error).Msg("External shortener failed, encoding original url")
		}
	}

	result := model.QRResult{OriginalContent: item.Content, FinalContent: payload}

	png, err := s.renderer.RenderQR(payload, style.fg, style.bg, style.size)
	if err != nil {
		return result, fmt.Errorf("failed to render QR code: %w", err)
	}

	result.ImageBase64 = base64.StdEncoding.EncodeToString(png)
	result.Success = true
	return result, nil
}

func validateQRRequest(req model.QRRequest) (qrStyle, error) {
	switch {
	case len(req.Items) == 0:
		return qrStyle{}, fmt.Errorf("%w: at least one item is required", ErrInvalidRequest)
	case len(req.Items) > MaxQRBatch:
		return qrStyle{}, fmt.Errorf("%w: maximum %d items allowed per batch", ErrInvalidRequest, MaxQRBatch)
	}

	style := qrStyle{size: req.Size}
	if style.size == 0 {
		style.size = DefaultQRSize
	}
	if style.size < MinQRSize || style.size > MaxQRSize {
		return qrStyle{}, fmt.Errorf("%w: size must be between %d and %d", ErrInvalidRequest, MinQRSize, MaxQRSize)
	}

	var err error
	if style.fg, err = parseColorOr(req.FgColor, DefaultFgColor); err != nil {
		return qrStyle{}, err
	}
	if style.bg, err = parseColorOr(req.BgColor, DefaultBgColor); err != nil {
		return qrStyle{}, err
	}
	return style, nil
}

func parseColorOr(hex, fallback string) (color.Color, error) {
	if hex == "" {
		hex = fallback
	}
	c, err := render.ParseColor(hex)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidRequest, err)
	}
	return c, nil
}
