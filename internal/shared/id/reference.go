// Package id generates opaque payment references.
package id

import (
	"crypto/rand"
	"fmt"
	"math/big"
)

const (
	// Base62 alphabet: 0-9, A-Z, a-z
	alphabet = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz"

	// DefaultReferenceLength matches the length Paystack references are
	// generated with at enrolment initiation.
	DefaultReferenceLength = 25
)

// NewReference creates a random payment reference of the given length,
// selecting each character independently and uniformly from the Base62
// alphabet. crypto/rand.Int rejection-samples internally, so no modulo
// bias is introduced.
func NewReference(length int) (string, error) {
	if length <= 0 {
		length = DefaultReferenceLength
	}

	result := make([]byte, length)
	alphabetLen := big.NewInt(int64(len(alphabet)))

	for i := 0; i < length; i++ {
		num, err := rand.Int(rand.Reader, alphabetLen)
		if err != nil {
			return "", fmt.Errorf("failed to generate random number: %w", err)
		}
		result[i] = alphabet[num.Int64()]
	}

	return string(result), nil
}

// MustNewReference creates a random reference and panics on error.
// Use this only when you're certain the generation won't fail.
func MustNewReference(length int) string {
	ref, err := NewReference(length)
	if err != nil {
		panic(err)
	}
	return ref
}
