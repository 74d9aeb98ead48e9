package model

// ContentType selects how a QR item's content is turned into a payload.
type ContentType string

const (
	ContentURL   ContentType = "url"
	ContentText  ContentType = "text"
	ContentEmail ContentType = "email"
	ContentPhone ContentType = "phone"
	ContentWiFi  ContentType = "wifi"
)

// QRItem is a single entry of a QR batch.
type QRItem struct {
	Content     string      `json:"content"`
	ContentType ContentType `json:"content_type"`
}

// QRRequest is the body of a batch QR generation.
type QRRequest struct {
	Items       []QRItem `json:"items"`
	FgColor     string   `json:"fg_color"`
	BgColor     string   `json:"bg_color"`
	Size        int      `json:"size"`
	UseExternal *bool    `json:"use_external,omitempty"`
	UseISGD     *bool    `json:"use_isgd,omitempty"`
}

// PreferExternal reports whether url items should be shortened before rendering.
func (r QRRequest) PreferExternal() bool {
	if r.UseExternal != nil {
		return *r.UseExternal
	}
	if r.UseISGD != nil {
		return *r.UseISGD
	}
	return true
}

// QRResult is the outcome for one QR item.
type QRResult struct {
	OriginalContent string `json:"original_content"`
	FinalContent    string `json:"final_content"`
	ImageBase64     string `json:"image_base64"`
	Success         bool   `json:"success"`
	Error           string `json:"error,omitempty"`
}

// QRBatchResponse is the body returned by batch QR generation.
type QRBatchResponse struct {
	Results []QRResult `json:"results"`
}
