// Package tools holds the stateless text utilities.
package tools

import (
	"crypto/rand"
	"errors"
	"math/big"
)

const (
	lowercaseChars = "abcdefghijklmnopqrstuvwxyz"
	uppercaseChars = "ABCDEFGHIJKLMNOPQRSTUVWXYZ"
	digitChars     = "0123456789"
	symbolChars    = "!@#$%^&*()_+-=[]{}|;:,.<>?"

	DefaultPasswordLength = 16
	MinPasswordLength     = 4
	MaxPasswordLength     = 128
)

// ErrNoCharacterSet is returned when every character class is disabled.
var ErrNoCharacterSet = errors.New("at least one character type must be selected")

// Strength ratings.
const (
	StrengthWeak   = "weak"
	StrengthMedium = "medium"
	StrengthStrong = "strong"
)

// PasswordOptions selects the length and character classes of a password.
type PasswordOptions struct {
	Length    int
	Lowercase bool
	Uppercase bool
	Digits    bool
	Symbols   bool
}

// DefaultPasswordOptions enables every class at the default length.
func DefaultPasswordOptions() PasswordOptions {
	return PasswordOptions{
		Length:    DefaultPasswordLength,
		Lowercase: true,
		Uppercase: true,
		Digits:    true,
		Symbols:   true,
	}
}

// GeneratePassword returns a random password and its strength rating. The
// length is clamped to [MinPasswordLength, MaxPasswordLength].
func GeneratePassword(opts PasswordOptions) (password, strength string, err error) {
	charset := ""
	classes := 0
	for _, c := range []struct {
		enabled bool
		chars   string
	}{
		{opts.Lowercase, lowercaseChars},
		{opts.Uppercase, uppercaseChars},
		{opts.Digits, digitChars},
		{opts.Symbols, symbolChars},
	} {
		if c.enabled {
			charset += c.chars
			classes++
		}
	}

	if charset == "" {
		return "", "", ErrNoCharacterSet
	}

	length := clamp(opts.Length, MinPasswordLength, MaxPasswordLength)

	limit := big.NewInt(int64(len(charset)))
	b := make([]byte, length)
	for i := range b {
		n, err := rand.Int(rand.Reader, limit)
		if err != nil {
			return "", "", err
		}
		b[i] = charset[n.Int64()]
	}

	return string(b), rateStrength(classes, length), nil
}

func rateStrength(classes, length int) string {
	score := classes
	switch {
	case length >= 16:
		score += 2
	case length >= 12:
		score++
	}

	switch {
	case score >= 5:
		return StrengthStrong
	case score >= 3:
		return StrengthMedium
	default:
		return StrengthWeak
	}
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
