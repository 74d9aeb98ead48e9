// Package encoder turns typed QR items into the literal payload embedded in a symbol.
package encoder

import (
	"strings"

	"github.com/MikhailRaia/utility-suite/internal/model"
)

const defaultWiFiEncryption = "WPA"

// Encode returns the payload for content of the given type. It never fails:
// content that does not fit a structured form is passed through as is.
func Encode(content string, contentType model.ContentType) string {
	switch contentType {
	case model.ContentEmail:
		return "mailto:" + content
	case model.ContentPhone:
		return "tel:" + content
	case model.ContentWiFi:
		return encodeWiFi(content)
	default:
		return content
	}
}

// encodeWiFi expects "SSID,PASSWORD[,ENCRYPTION]". Reserved characters are not escaped.
func encodeWiFi(content string) string {
	parts := strings.Split(content, ",")
	if len(parts) < 2 {
		return content
	}

	encryption := defaultWiFiEncryption
	if len(parts) > 2 {
		encryption = parts[2]
	}

	var b strings.Builder
	b.WriteString("WIFI:T:")
	b.WriteString(encryption)
	b.WriteString(";S:")
	b.WriteString(parts[0])
	b.WriteString(";P:")
	b.WriteString(parts[1])
	b.WriteString(";;")
	return b.String()
}
