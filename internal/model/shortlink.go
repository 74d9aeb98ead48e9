package model

import "time"

// Provider identifies where a shortlink's short URL came from.
type Provider string

const (
	ProviderExternal Provider = "external"
	ProviderLocal    Provider = "local"
)

// Shortlink is a stored short code pointing at an original URL.
type Shortlink struct {
	ID          string    `json:"id"`
	OriginalURL string    `json:"original_url"`
	ShortCode   string    `json:"short_code"`
	ShortURL    string    `json:"short_url,omitempty"`
	Provider    Provider  `json:"provider"`
	Clicks      int64     `json:"clicks"`
	CreatedAt   time.Time `json:"created_at"`
}

// ShortlinkCreateRequest is the body of a batch shortlink creation.
type ShortlinkCreateRequest struct {
	URLs        []string `json:"urls"`
	UseExternal *bool    `json:"use_external,omitempty"`
	UseISGD     *bool    `json:"use_isgd,omitempty"`
	CustomCode  string   `json:"custom_code,omitempty"`
}

// PreferExternal reports whether the external shortener should be tried first.
// Both the current and the legacy field are honoured; absent means true.
func (r ShortlinkCreateRequest) PreferExternal() bool {
	if r.UseExternal != nil {
		return *r.UseExternal
	}
	if r.UseISGD != nil {
		return *r.UseISGD
	}
	return true
}

// ShortlinkResult is one entry of a batch creation response. On success the
// stored shortlink fields are flattened into the entry.
type ShortlinkResult struct {
	*Shortlink
	OriginalURL string `json:"original_url"`
	Success     bool   `json:"success"`
	Error       string `json:"error,omitempty"`
}

// ShortlinkBatchResponse is the body returned by batch shortlink creation.
type ShortlinkBatchResponse struct {
	Results      []ShortlinkResult `json:"results"`
	SuccessCount int               `json:"success_count"`
	ErrorCount   int               `json:"error_count"`
}

// ResolveResponse is returned when a short code is resolved.
type ResolveResponse struct {
	OriginalURL string `json:"original_url"`
}
