package tools

import (
	"encoding/base64"
	"strings"
	"unicode/utf8"

	"github.com/MikhailRaia/utility-suite/internal/model"
)

const (
	OperationEncode = "encode"
	OperationDecode = "decode"
)

// Base64 encodes or decodes text. Whitespace in encoded input is ignored.
// Failures are reported in the response rather than as an error.
func Base64(text, operation string) model.Base64Response {
	switch operation {
	case OperationEncode:
		return model.Base64Response{Result: base64.StdEncoding.EncodeToString([]byte(text)), Success: true}
	case OperationDecode:
		decoded, err := base64.StdEncoding.DecodeString(strings.Join(strings.Fields(text), ""))
		if err != nil {
			return model.Base64Response{Error: err.Error()}
		}
		if !utf8.Valid(decoded) {
			return model.Base64Response{Error: "decoded data is not valid UTF-8 text"}
		}
		return model.Base64Response{Result: string(decoded), Success: true}
	default:
		return model.Base64Response{Error: "Invalid operation"}
	}
}
