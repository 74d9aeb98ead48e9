package generator

import (
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestShortUUID_Generate(t *testing.T) {
	tests := []struct {
		name    string
		length  int
		wantErr bool
	}{
		{
			name:   "Default code length",
			length: CodeLength,
		},
		{
			name:   "Longer than one shortuuid",
			length: 30,
		},
		{
			name:    "Zero length",
			length:  0,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := NewShortUUID(tt.length)

			got, err := g.Generate()
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)

			assert.Len(t, got, tt.length)
			for _, r := range got {
				assert.True(t, strings.ContainsRune(Alphabet, r), "unexpected rune %q", r)
			}

			got2, err := g.Generate()
			require.NoError(t, err)
			assert.NotEqual(t, got, got2)
		})
	}
}

func TestRandom_Generate(t *testing.T) {
	g := NewRandom("ab", 16)

	got, err := g.Generate()
	require.NoError(t, err)
	assert.Len(t, got, 16)
	assert.Empty(t, strings.Trim(got, "ab"))

	_, err = NewRandom("", -1).Generate()
	assert.Error(t, err)
}

func TestRandom_DefaultAlphabet(t *testing.T) {
	got, err := NewRandom("", CodeLength).Generate()
	require.NoError(t, err)

	for _, r := range got {
		assert.True(t, strings.ContainsRune(Alphabet, r))
	}
}

func TestNewID(t *testing.T) {
	id := NewID()

	parsed, err := uuid.Parse(id)
	require.NoError(t, err)
	assert.Equal(t, uuid.Version(4), parsed.Version())
	assert.NotEqual(t, id, NewID())
}
