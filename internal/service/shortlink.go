package service

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/MikhailRaia/utility-suite/internal/generator"
	"github.com/MikhailRaia/utility-suite/internal/model"
	"github.com/MikhailRaia/utility-suite/internal/pipeline"
	"github.com/MikhailRaia/utility-suite/internal/storage"
)

const (
	// MaxShortlinkBatch is the largest number of urls accepted per request.
	MaxShortlinkBatch = 100
	// MaxCodeAttempts bounds regeneration after a generated code collides.
	MaxCodeAttempts  = 10
	maxCustomCodeLen = 32
)

var customCodePattern = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)

var errInvalidURL = errors.New("invalid URL: must be an absolute http(s) URL")

// ShortlinkService creates, resolves and deletes shortlinks.
type ShortlinkService struct {
	store       storage.ShortlinkStorage
	external    ExternalShortener
	codes       generator.CodeGenerator
	clicks      ClickRecorder
	concurrency int
	now         func() time.Time
}

// ShortlinkOption customises a ShortlinkService.
type ShortlinkOption func(*ShortlinkService)

// WithCodeGenerator replaces the default shortuuid code generator.
func WithCodeGenerator(g generator.CodeGenerator) ShortlinkOption {
	return func(s *ShortlinkService) { s.codes = g }
}

// WithClickRecorder replaces the synchronous store click recorder.
func WithClickRecorder(r ClickRecorder) ShortlinkOption {
	return func(s *ShortlinkService) { s.clicks = r }
}

// WithConcurrency bounds how many urls of one batch are processed at once.
func WithConcurrency(n int) ShortlinkOption {
	return func(s *ShortlinkService) { s.concurrency = n }
}

// WithClock overrides the creation timestamp source.
func WithClock(now func() time.Time) ShortlinkOption {
	return func(s *ShortlinkService) { s.now = now }
}

// NewShortlinkService builds a service over store. external may be nil, in
// which case every link is local.
func NewShortlinkService(store storage.ShortlinkStorage, external ExternalShortener, opts ...ShortlinkOption) *ShortlinkService {
	s := &ShortlinkService{
		store:       store,
		external:    external,
		codes:       generator.NewShortUUID(generator.CodeLength),
		concurrency: pipeline.DefaultLimit,
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.clicks == nil {
		s.clicks = NewStoreClickRecorder(store)
	}
	return s
}

// CreateBatch creates one shortlink per url. Failures are reported per item.
// When the request carried a custom code that was already taken the response
// is still returned, together with ErrCodeInUse.
func (s *ShortlinkService) CreateBatch(ctx context.Context, req model.ShortlinkCreateRequest) (model.ShortlinkBatchResponse, error) {
	if err := validateShortlinkRequest(req); err != nil {
		return model.ShortlinkBatchResponse{}, err
	}

	useExternal := req.PreferExternal() && req.CustomCode == "" && s.external != nil

	results := pipeline.Process(ctx, req.URLs, s.concurrency, func(ctx context.Context, raw string) (model.Shortlink, error) {
		return s.createOne(ctx, raw, req.CustomCode, useExternal)
	})

	resp := model.ShortlinkBatchResponse{Results: make([]model.ShortlinkResult, len(results))}
	resp.SuccessCount, resp.ErrorCount = pipeline.Count(results)

	var conflict bool
	for i, r := range results {
		if r.OK() {
			link := r.Value
			resp.Results[i] = model.ShortlinkResult{Shortlink: &link, OriginalURL: link.OriginalURL, Success: true}
			continue
		}
		if errors.Is(r.Err, ErrCodeInUse) {
			conflict = true
		}
		resp.Results[i] = model.ShortlinkResult{OriginalURL: req.URLs[i], Error: r.Err.Error()}
	}

	if conflict {
		return resp, ErrCodeInUse
	}
	return resp, nil
}

func (s *ShortlinkService) createOne(ctx context.Context, raw, customCode string, useExternal bool) (model.Shortlink, error) {
	originalURL := strings.TrimSpace(raw)
	if !isHTTPURL(originalURL) {
		return model.Shortlink{}, errInvalidURL
	}

	link := model.Shortlink{
		ID:          generator.NewID(),
		OriginalURL: originalURL,
		Provider:    model.ProviderLocal,
		CreatedAt:   s.now().UTC(),
	}

	if useExternal {
		res := s.external.Shorten(ctx, originalURL)
		if res.Success {
			link.Provider = model.ProviderExternal
			link.ShortURL = res.ShortURL
		} else {
			log.Debug().Str("url", originalURL).Str("reason", res.Error).Msg("External shortener failed, using local code")
		}
	}

	if customCode != "" {
		link.ShortCode = customCode
		if err := s.store.Insert(ctx, link); err != nil {
			if errors.Is(err, storage.ErrCodeExists) {
				return model.Shortlink{}, ErrCodeInUse
			}
			return model.Shortlink{}, fmt.Errorf("failed to save shortlink: %w", err)
		}
		return link, nil
	}

	for attempt := 0; attempt < MaxCodeAttempts; attempt++ {
		code, err := s.codes.Generate()
		if err != nil {
			return model.Shortlink{}, fmt.Errorf("failed to generate short code: %w", err)
		}
		link.ShortCode = code

		err = s.store.Insert(ctx, link)
		if err == nil {
			return link, nil
		}
		if !errors.Is(err, storage.ErrCodeExists) {
			return model.Shortlink{}, fmt.Errorf("failed to save shortlink: %w", err)
		}
		log.Debug().Str("code", code).Int("attempt", attempt+1).Msg("Short code collision, regenerating")
	}

	return model.Shortlink{}, ErrCodeSpaceExhausted
}

// List returns the newest shortlinks, at most storage.ShortlinkListLimit.
func (s *ShortlinkService) List(ctx context.Context) ([]model.Shortlink, error) {
	links, err := s.store.List(ctx, storage.ShortlinkListLimit)
	if err != nil {
		return nil, fmt.Errorf("error listing shortlinks: %w", err)
	}
	return links, nil
}

// Resolve returns the original url behind code and records a click.
// A failure to record the click does not fail the lookup.
func (s *ShortlinkService) Resolve(ctx context.Context, code string) (string, error) {
	link, err := s.store.FindByCode(ctx, code)
	if err != nil {
		return "", err
	}

	if err := s.clicks.RecordClick(ctx, code); err != nil {
		log.Error().Err(err).Str("code", code).Msg("Failed to record click")
	}

	return link.OriginalURL, nil
}

// Delete removes the shortlink with id, returning storage.ErrNotFound when
// there is none.
func (s *ShortlinkService) Delete(ctx context.Context, id string) error {
	deleted, err := s.store.DeleteByID(ctx, id)
	if err != nil {
		return fmt.Errorf("error deleting shortlink: %w", err)
	}
	if !deleted {
		return storage.ErrNotFound
	}
	return nil
}

func validateShortlinkRequest(req model.ShortlinkCreateRequest) error {
	switch {
	case len(req.URLs) == 0:
		return fmt.Errorf("%w: at least one url is required", ErrInvalidRequest)
	case len(req.URLs) > MaxShortlinkBatch:
		return fmt.Errorf("%w: maximum %d urls allowed per batch", ErrInvalidRequest, MaxShortlinkBatch)
	}

	if req.CustomCode == "" {
		return nil
	}
	if len(req.URLs) != 1 {
		return fmt.Errorf("%w: custom code requires exactly one url", ErrInvalidRequest)
	}
	if len(req.CustomCode) > maxCustomCodeLen || !customCodePattern.MatchString(req.CustomCode) {
		return fmt.Errorf("%w: custom code must be 1-%d letters, digits, '-' or '_'", ErrInvalidRequest, maxCustomCodeLen)
	}
	return nil
}

func isHTTPURL(raw string) bool {
	u, err := url.Parse(raw)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}
