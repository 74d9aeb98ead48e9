package service

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/MikhailRaia/utility-suite/internal/model"
	"github.com/MikhailRaia/utility-suite/internal/pipeline"
	"github.com/MikhailRaia/utility-suite/internal/render"
)

const (
	MaxImageFiles = 10
	MaxImageBytes = 5 << 20

	defaultImageName = "image"
)

var errFileTooLarge = errors.New("File exceeds 5MB limit")

// ImageService converts uploaded images to WebP.
type ImageService struct {
	encoder     WebPEncoder
	quality     float32
	concurrency int
}

// NewImageService returns an ImageService encoding at the default quality.
func NewImageService(encoder WebPEncoder, concurrency int) *ImageService {
	return &ImageService{
		encoder:     encoder,
		quality:     render.DefaultWebPQuality,
		concurrency: concurrency,
	}
}

// Convert re-encodes every file. A file that cannot be converted only fails
// its own entry.
func (s *ImageService) Convert(ctx context.Context, files []model.UploadedImage) (model.ImageConvertResponse, error) {
	if len(files) == 0 {
		return model.ImageConvertResponse{}, fmt.Errorf("%w: at least one file is required", ErrInvalidRequest)
	}
	if len(files) > MaxImageFiles {
		return model.ImageConvertResponse{}, ErrTooManyFiles
	}

	results := pipeline.Process(ctx, files, s.concurrency, s.convertOne)

	resp := model.ImageConvertResponse{Images: make([]model.ImageResult, len(results))}
	for i, r := range results {
		if r.OK() {
			resp.Images[i] = r.Value
			continue
		}
		resp.Images[i] = model.ImageResult{OriginalName: uploadName(files[i].Name), Error: r.Err.Error()}
	}
	return resp, nil
}

func (s *ImageService) convertOne(_ context.Context, file model.UploadedImage) (model.ImageResult, error) {
	if len(file.Data) > MaxImageBytes {
		return model.ImageResult{}, errFileTooLarge
	}

	out, err := s.encoder.ReencodeToWebP(file.Data, s.quality)
	if err != nil {
		return model.ImageResult{}, err
	}

	name := uploadName(file.Name)
	return model.ImageResult{
		OriginalName: name,
		NewName:      webpName(name),
		Success:      true,
		WebPBase64:   base64.StdEncoding.EncodeToString(out),
		SizeBytes:    len(out),
	}, nil
}

// uploadName falls back to defaultImageName for uploads sent without a
// filename.
func uploadName(name string) string {
	if strings.TrimSpace(name) == "" {
		return defaultImageName
	}
	return name
}

func webpName(name string) string {
	base := filepath.Base(name)
	if base == "." || base == string(filepath.Separator) {
		base = defaultImageName
	}
	return strings.TrimSuffix(base, filepath.Ext(base)) + ".webp"
}
