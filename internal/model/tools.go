package model

// TextToHTMLRequest asks for text to be converted to HTML.
type TextToHTMLRequest struct {
	Text       string `json:"text"`
	FormatType string `json:"format_type"`
}

// TextToHTMLResponse carries converted HTML.
type TextToHTMLResponse struct {
	HTML string `json:"html"`
}

// PasswordRequest configures password generation. Nil fields take their defaults.
type PasswordRequest struct {
	Length    *int  `json:"length,omitempty"`
	Uppercase *bool `json:"uppercase,omitempty"`
	Lowercase *bool `json:"lowercase,omitempty"`
	Numbers   *bool `json:"numbers,omitempty"`
	Symbols   *bool `json:"symbols,omitempty"`
}

// PasswordResponse carries a generated password and its strength rating.
type PasswordResponse struct {
	Password string `json:"password"`
	Strength string `json:"strength"`
}

// WordCountRequest carries text to be measured.
type WordCountRequest struct {
	Text string `json:"text"`
}

// WordCountResponse holds text statistics.
type WordCountResponse struct {
	Characters         int     `json:"characters"`
	CharactersNoSpaces int     `json:"characters_no_spaces"`
	Words              int     `json:"words"`
	Sentences          int     `json:"sentences"`
	Paragraphs         int     `json:"paragraphs"`
	ReadingTimeMinutes float64 `json:"reading_time_minutes"`
}

// Base64Request asks for text to be encoded or decoded.
type Base64Request struct {
	Text      string `json:"text"`
	Operation string `json:"operation"`
}

// Base64Response reports a base64 transform. Failures are reported in-band.
type Base64Response struct {
	Result  string `json:"result"`
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}
