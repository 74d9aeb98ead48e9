// Package handler exposes the utility services over HTTP.
package handler

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog/log"

	"github.com/MikhailRaia/utility-suite/internal/logger"
	"github.com/MikhailRaia/utility-suite/internal/middleware"
	"github.com/MikhailRaia/utility-suite/internal/model"
	"github.com/MikhailRaia/utility-suite/internal/service"
	"github.com/MikhailRaia/utility-suite/internal/storage"
	"github.com/MikhailRaia/utility-suite/internal/tools"
)

const (
	rootMessage    = "E1 Utility Suite API"
	maxUploadBytes = 64 << 20
	maxJSONBytes   = 4 << 20
)

type ShortlinkService interface {
	CreateBatch(ctx context.Context, req model.ShortlinkCreateRequest) (model.ShortlinkBatchResponse, error)
	List(ctx context.Context) ([]model.Shortlink, error)
	Resolve(ctx context.Context, code string) (string, error)
	Delete(ctx context.Context, id string) error
}

type QRService interface {
	GenerateBatch(ctx context.Context, req model.QRRequest) (model.QRBatchResponse, error)
}

type ImageService interface {
	Convert(ctx context.Context, files []model.UploadedImage) (model.ImageConvertResponse, error)
}

type StatusService interface {
	Create(ctx context.Context, clientName string) (model.StatusCheck, error)
	List(ctx context.Context) ([]model.StatusCheck, error)
}

type DBPinger interface {
	Ping(ctx context.Context) error
}

type Handler struct {
	shortlinks  ShortlinkService
	qr          QRService
	images      ImageService
	status      StatusService
	dbPinger    DBPinger
	corsOrigins []string
}

// Option customises a Handler.
type Option func(*Handler)

// WithCORSOrigins sets the origins allowed by the CORS middleware.
func WithCORSOrigins(origins []string) Option {
	return func(h *Handler) { h.corsOrigins = origins }
}

func NewHandler(shortlinks ShortlinkService, qr QRService, images ImageService, status StatusService, dbPinger DBPinger, opts ...Option) *Handler {
	h := &Handler{
		shortlinks: shortlinks,
		qr:         qr,
		images:     images,
		status:     status,
		dbPinger:   dbPinger,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

func (h *Handler) RegisterRoutes() http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)

	r.Use(logger.RequestLogger)

	r.Use(middleware.CORS(h.corsOrigins))
	r.Use(middleware.GzipReader)
	r.Use(middleware.Gzip)

	r.Get("/ping", h.handlePing)

	r.Route("/api", func(r chi.Router) {
		r.Get("/", h.handleRoot)

		r.Post("/status", h.handleCreateStatus)
		r.Get("/status", h.handleListStatus)

		r.Post("/qr/generate", h.handleGenerateQR)

		r.Post("/shortlinks/create", h.handleCreateShortlinks)
		r.Get("/shortlinks", h.handleListShortlinks)
		r.Get("/shortlinks/{code}", h.handleResolveShortlink)
		r.Delete("/shortlinks/{id}", h.handleDeleteShortlink)

		r.Post("/images/convert-to-webp", h.handleConvertToWebP)

		r.Post("/text-to-html", h.handleTextToHTML)
		r.Post("/password/generate", h.handleGeneratePassword)
		r.Post("/word-counter", h.handleWordCount)
		r.Post("/base64", h.handleBase64)
	})

	return r
}

func (h *Handler) handleRoot(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"message": rootMessage})
}

func (h *Handler) handlePing(w http.ResponseWriter, r *http.Request) {
	if h.dbPinger == nil {
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	if err := h.dbPinger.Ping(r.Context()); err != nil {
		log.Error().Err(err).Msg("Storage ping failed")
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusOK)
}

func (h *Handler) handleCreateStatus(w http.ResponseWriter, r *http.Request) {
	var req model.StatusCheckCreate
	if !decodeJSON(w, r, &req) {
		return
	}

	check, err := h.status.Create(r.Context(), req.ClientName)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, check)
}

func (h *Handler) handleListStatus(w http.ResponseWriter, r *http.Request) {
	checks, err := h.status.List(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, nonNil(checks))
}

func (h *Handler) handleGenerateQR(w http.ResponseWriter, r *http.Request) {
	var req model.QRRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	resp, err := h.qr.GenerateBatch(r.Context(), req)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) handleCreateShortlinks(w http.ResponseWriter, r *http.Request) {
	var req model.ShortlinkCreateRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	resp, err := h.shortlinks.CreateBatch(r.Context(), req)
	switch {
	case errors.Is(err, service.ErrCodeInUse):
		writeJSON(w, http.StatusConflict, resp)
	case err != nil:
		writeServiceError(w, err)
	default:
		writeJSON(w, http.StatusOK, resp)
	}
}

func (h *Handler) handleListShortlinks(w http.ResponseWriter, r *http.Request) {
	links, err := h.shortlinks.List(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, nonNil(links))
}

func (h *Handler) handleResolveShortlink(w http.ResponseWriter, r *http.Request) {
	code := chi.URLParam(r, "code")

	originalURL, err := h.shortlinks.Resolve(r.Context(), code)
	if errors.Is(err, storage.ErrNotFound) {
		writeError(w, http.StatusNotFound, "Shortlink not found")
		return
	}
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, model.ResolveResponse{OriginalURL: originalURL})
}

func (h *Handler) handleDeleteShortlink(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	err := h.shortlinks.Delete(r.Context(), id)
	if errors.Is(err, storage.ErrNotFound) {
		writeError(w, http.StatusNotFound, "Shortlink not found")
		return
	}
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "Shortlink deleted"})
}

func (h *Handler) handleConvertToWebP(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid multipart form")
		return
	}
	defer r.MultipartForm.RemoveAll()

	headers := r.MultipartForm.File["files"]
	files := make([]model.UploadedImage, 0, len(headers))
	for _, fh := range headers {
		f, err := fh.Open()
		if err != nil {
			writeError(w, http.StatusBadRequest, "Failed to read uploaded file")
			return
		}
		data, err := io.ReadAll(f)
		f.Close()
		if err != nil {
			writeError(w, http.StatusBadRequest, "Failed to read uploaded file")
			return
		}
		files = append(files, model.UploadedImage{Name: fh.Filename, Data: data})
	}

	resp, err := h.images.Convert(r.Context(), files)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) handleTextToHTML(w http.ResponseWriter, r *http.Request) {
	var req model.TextToHTMLRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	writeJSON(w, http.StatusOK, model.TextToHTMLResponse{HTML: tools.TextToHTML(req.Text, req.FormatType)})
}

func (h *Handler) handleGeneratePassword(w http.ResponseWriter, r *http.Request) {
	var req model.PasswordRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	password, strength, err := tools.GeneratePassword(passwordOptions(req))
	if errors.Is(err, tools.ErrNoCharacterSet) {
		writeError(w, http.StatusBadRequest, "At least one character type must be selected")
		return
	}
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, model.PasswordResponse{Password: password, Strength: strength})
}

func (h *Handler) handleWordCount(w http.ResponseWriter, r *http.Request) {
	var req model.WordCountRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	writeJSON(w, http.StatusOK, tools.CountWords(req.Text))
}

func (h *Handler) handleBase64(w http.ResponseWriter, r *http.Request) {
	var req model.Base64Request
	if !decodeJSON(w, r, &req) {
		return
	}

	op := req.Operation
	if op == "" {
		op = tools.OperationEncode
	}

	writeJSON(w, http.StatusOK, tools.Base64(req.Text, op))
}

func passwordOptions(req model.PasswordRequest) tools.PasswordOptions {
	opts := tools.DefaultPasswordOptions()
	if req.Length != nil {
		opts.Length = *req.Length
	}
	if req.Uppercase != nil {
		opts.Uppercase = *req.Uppercase
	}
	if req.Lowercase != nil {
		opts.Lowercase = *req.Lowercase
	}
	if req.Numbers != nil {
		opts.Digits = *req.Numbers
	}
	if req.Symbols != nil {
		opts.Symbols = *req.Symbols
	}
	return opts
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxJSONBytes)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return false
	}
	return true
}

func writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, service.ErrInvalidRequest), errors.Is(err, service.ErrTooManyFiles):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, storage.ErrNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, service.ErrCodeInUse):
		writeError(w, http.StatusConflict, err.Error())
	default:
		log.Error().Err(err).Msg("Request failed")
		writeError(w, http.StatusInternalServerError, "Internal server error")
	}
}

func writeError(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, map[string]string{"detail": detail})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		log.Error().Err(err).Msg("Failed to encode response")
	}
}

func nonNil[T any](items []T) []T {
	if items == nil {
		return []T{}
	}
	return items
}
