// Package middleware contains the HTTP middleware shared by every route.
package middleware

import (
	"compress/gzip"
	"io"
	"net/http"
	"strings"

	"github.com/rs/zerolog/log"
)

// gzipMinLength is the smallest body worth compressing.
const gzipMinLength = 256

var compressibleTypes = []string{"application/json", "text/html", "text/plain"}

// Gzip compresses JSON and text responses for clients that accept gzip.
// Small bodies and binary content pass through untouched.
func Gzip(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.Contains(r.Header.Get("Accept-Encoding"), "gzip") {
			next.ServeHTTP(w, r)
			return
		}

		buffered := &bufferedResponse{ResponseWriter: w, statusCode: http.StatusOK}
		next.ServeHTTP(buffered, r)

		w.Header().Add("Vary", "Accept-Encoding")

		if !compressible(w.Header().Get("Content-Type")) || len(buffered.body) < gzipMinLength {
			w.WriteHeader(buffered.statusCode)
			w.Write(buffered.body)
			return
		}

		gz, err := gzip.NewWriterLevel(w, gzip.BestSpeed)
		if err != nil {
			log.Error().Err(err).Msg("Failed to create gzip writer")
			w.WriteHeader(buffered.statusCode)
			w.Write(buffered.body)
			return
		}
		defer gz.Close()

		w.Header().Set("Content-Encoding", "gzip")
		w.Header().Del("Content-Length")
		w.WriteHeader(buffered.statusCode)
		gz.Write(buffered.body)
	})
}

func compressible(contentType string) bool {
	for _, t := range compressibleTypes {
		if strings.Contains(contentType, t) {
			return true
		}
	}
	return false
}

// bufferedResponse holds the status and body until the handler returns.
type bufferedResponse struct {
	http.ResponseWriter
	statusCode int
	body       []byte
}

func (w *bufferedResponse) WriteHeader(statusCode int) {
	w.statusCode = statusCode
}

func (w *bufferedResponse) Write(b []byte) (int, error) {
	w.body = append(w.body, b...)
	return len(b), nil
}

// GzipReader transparently decompresses gzipped request bodies.
func GzipReader(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Content-Encoding") != "gzip" {
			next.ServeHTTP(w, r)
			return
		}

		gzReader, err := gzip.NewReader(r.Body)
		if err != nil {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusBadRequest)
			_, _ = w.Write([]byte(`{"detail":"Failed to read gzipped request"}`))
			return
		}
		defer gzReader.Close()

		r.Body = io.NopCloser(gzReader)
		r.Header.Del("Content-Encoding")
		r.ContentLength = -1

		next.ServeHTTP(w, r)
	})
}
