package id

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewReference_Length(t *testing.T) {
	tests := []struct {
		name     string
		length   int
		expected int
	}{
		{"default length for zero", 0, DefaultReferenceLength},
		{"default length for negative", -5, DefaultReferenceLength},
		{"explicit short", 8, 8},
		{"explicit default", 25, 25},
		{"explicit long", 64, 64},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			ref, err := NewReference(tc.length)
			require.NoError(t, err)
			assert.Len(t, ref, tc.expected)
		})
	}
}

func TestNewReference_AlphabetOnly(t *testing.T) {
	for i := 0; i < 100; i++ {
		ref, err := NewReference(25)
		require.NoError(t, err)
		for _, c := range ref {
			assert.True(t, strings.ContainsRune(alphabet, c), "unexpected character %q in %q", c, ref)
		}
	}
}

func TestNewReference_Uniqueness(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 1000; i++ {
		ref := MustNewReference(25)
		assert.False(t, seen[ref], "duplicate reference generated: %s", ref)
		seen[ref] = true
	}
}

func TestNewReference_Distribution(t *testing.T) {
	// Over many draws every alphabet character should appear; a missing
	// character would indicate a truncated or biased selection range.
	counts := make(map[byte]int)
	const draws = 200
	for i := 0; i < draws; i++ {
		ref := MustNewReference(64)
		for j := 0; j < len(ref); j++ {
			counts[ref[j]]++
		}
	}

	assert.Len(t, counts, len(alphabet))

	// With 12800 samples over 62 symbols the expected count per symbol is
	// ~206; anything below a quarter of that suggests bias.
	for c, n := range counts {
		assert.Greater(t, n, 50, "character %q drawn suspiciously rarely", c)
	}
}
