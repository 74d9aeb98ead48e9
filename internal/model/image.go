package model

// UploadedImage is a raw file received for conversion.
type UploadedImage struct {
	Name string
	Data []byte
}

// ImageResult is the conversion outcome for one uploaded file.
type ImageResult struct {
	OriginalName string `json:"original_name"`
	NewName      string `json:"new_name,omitempty"`
	Success      bool   `json:"success"`
	WebPBase64   string `json:"webp_base64,omitempty"`
	SizeBytes    int    `json:"size_bytes,omitempty"`
	Error        string `json:"error,omitempty"`
}

// ImageConvertResponse is the body returned by the WebP converter.
type ImageConvertResponse struct {
	Images []ImageResult `json:"images"`
}
