// Package shortener is a client for is.gd compatible link-shortening services.
package shortener

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/rs/zerolog/log"
)

const (
	// DefaultEndpoint is the public is.gd creation endpoint.
	DefaultEndpoint = "https://is.gd/create.php"
	// DefaultTimeout bounds a single shorten call.
	DefaultTimeout = 10 * time.Second

	maxResponseSize = 1 << 20
)

// Result is the value-level outcome of a shorten call.
type Result struct {
	Success  bool
	ShortURL string
	Error    string
}

type isgdResponse struct {
	ShortURL     string `json:"shorturl"`
	ErrorMessage string `json:"errormessage"`
}

// Client performs one GET per shorten call and never retries.
type Client struct {
	httpClient *http.Client
	endpoint   string
}

// NewClient returns a client for endpoint. Zero values select the defaults.
func NewClient(endpoint string, timeout time.Duration) *Client {
	if endpoint == "" {
		endpoint = DefaultEndpoint
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		endpoint:   endpoint,
	}
}

// Shorten asks the service for a short URL. Every failure, including
// transport errors and malformed bodies, is reported in the Result.
func (c *Client) Shorten(ctx context.Context, longURL string) Result {
	query := url.Values{}
	query.Set("format", "json")
	query.Set("url", longURL)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint+"?"+query.Encode(), nil)
	if err != nil {
		return failure(err.Error())
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		log.Debug().Err(err).Str("url", longURL).Msg("External shortener request failed")
		return failure(err.Error())
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxResponseSize))
		return failure(fmt.Sprintf("HTTP %d", resp.StatusCode))
	}

	var body isgdResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxResponseSize)).Decode(&body); err != nil {
		return failure(fmt.Sprintf("invalid response: %v", err))
	}

	if body.ShortURL != "" {
		return Result{Success: true, ShortURL: body.ShortURL}
	}
	if body.ErrorMessage != "" {
		return failure(body.ErrorMessage)
	}
	return failure("Unknown error")
}

func failure(msg string) Result {
	return Result{Success: false, Error: msg}
}
