// Package generator produces short codes and record identifiers.
package generator

import (
	"crypto/rand"
	"errors"
	"math/big"

	"github.com/google/uuid"
	"github.com/lithammer/shortuuid/v4"
)

// CodeLength is the length of locally generated short codes.
const CodeLength = 7

// Alphabet is the shortuuid alphabet: no 0, 1, I, O or l.
const Alphabet = "23456789ABCDEFGHJKLMNPQRSTUVWXYZabcdefghijkmnopqrstuvwxyz"

var errInvalidLength = errors.New("code length must be positive")

// CodeGenerator yields candidate short codes. Uniqueness is checked by the caller.
type CodeGenerator interface {
	Generate() (string, error)
}

// ShortUUID truncates random shortuuids to a fixed length.
type ShortUUID struct {
	length int
}

// NewShortUUID returns a generator of codes with the given length.
func NewShortUUID(length int) *ShortUUID {
	return &ShortUUID{length: length}
}

// Generate returns a new code.
func (g *ShortUUID) Generate() (string, error) {
	if g.length <= 0 {
		return "", errInvalidLength
	}

	id := shortuuid.New()
	for len(id) < g.length {
		id += shortuuid.New()
	}

	return id[:g.length], nil
}

// Random draws every character of a code from an alphabet using crypto/rand.
type Random struct {
	alphabet string
	length   int
}

// NewRandom returns a generator over alphabet. An empty alphabet falls back to Alphabet.
func NewRandom(alphabet string, length int) *Random {
	if alphabet == "" {
		alphabet = Alphabet
	}
	return &Random{alphabet: alphabet, length: length}
}

// Generate returns a new code.
func (g *Random) Generate() (string, error) {
	if g.length <= 0 {
		return "", errInvalidLength
	}

	limit := big.NewInt(int64(len(g.alphabet)))
	b := make([]byte, g.length)
	for i := range b {
		n, err := rand.Int(rand.Reader, limit)
		if err != nil {
			return "", err
		}
		b[i] = g.alphabet[n.Int64()]
	}

	return string(b), nil
}

// NewID returns an opaque record identifier.
func NewID() string {
	return uuid.NewString()
}
