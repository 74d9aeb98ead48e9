package shortener

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClient_Shorten(t *testing.T) {
	tests := []struct {
		name        string
		status      int
		body        string
		wantSuccess bool
		wantShort   string
		wantErr     string
	}{
		{
			name:        "Short URL returned",
			status:      http.StatusOK,
			body:        `{"shorturl":"https://is.gd/abc123"}`,
			wantSuccess: true,
			wantShort:   "https://is.gd/abc123",
		},
		{
			name:    "Service error message",
			status:  http.StatusOK,
			body:    `{"errorcode":1,"errormessage":"Please specify a valid URL to shorten."}`,
			wantErr: "Please specify a valid URL to shorten.",
		},
		{
			name:    "Empty object",
			status:  http.StatusOK,
			body:    `{}`,
			wantErr: "Unknown error",
		},
		{
			name:    "Non 2xx status",
			status:  http.StatusBadGateway,
			body:    `oops`,
			wantErr: "HTTP 502",
		},
		{
			name:    "Malformed body",
			status:  http.StatusOK,
			body:    `<html>`,
			wantErr: "invalid response",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, http.MethodGet, r.Method)
				assert.Equal(t, "json", r.URL.Query().Get("format"))
				assert.Equal(t, "https://example.com/long?q=1", r.URL.Query().Get("url"))

				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			}))
			defer server.Close()

			client := NewClient(server.URL, time.Second)
			res := client.Shorten(context.Background(), "https://example.com/long?q=1")

			assert.Equal(t, tt.wantSuccess, res.Success)
			assert.Equal(t, tt.wantShort, res.ShortURL)
			if tt.wantErr != "" {
				assert.Contains(t, res.Error, tt.wantErr)
			} else {
				assert.Empty(t, res.Error)
			}
		})
	}
}

func TestClient_ShortenTimeout(t *testing.T) {
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer server.Close()
	defer close(release)

	client := NewClient(server.URL, 50*time.Millisecond)

	start := time.Now()
	res := client.Shorten(context.Background(), "https://example.com")

	assert.False(t, res.Success)
	assert.NotEmpty(t, res.Error)
	assert.Less(t, time.Since(start), 5*time.Second)
}

func TestClient_ShortenUnreachable(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	endpoint := server.URL
	server.Close()

	res := NewClient(endpoint, time.Second).Shorten(context.Background(), "https://example.com")

	require.False(t, res.Success)
	assert.NotEmpty(t, res.Error)
}

func TestNewClient_Defaults(t *testing.T) {
	client := NewClient("", 0)

	assert.Equal(t, DefaultEndpoint, client.endpoint)
	assert.Equal(t, DefaultTimeout, client.httpClient.Timeout)
}
