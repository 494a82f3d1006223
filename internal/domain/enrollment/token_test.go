package enrollment

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "coursepay/internal/shared/errors"
)

func TestAccessToken_EncodeDecodeRoundTrip(t *testing.T) {
	tests := []struct {
		name  string
		token AccessToken
	}{
		{"small ids", AccessToken{UserID: 1, CourseID: 2, OfferID: 3}},
		{"typical ids", AccessToken{UserID: 7, CourseID: 42, OfferID: 3}},
		{"large ids", AccessToken{UserID: 4294967295, CourseID: 1000000, OfferID: 99999}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			decoded, err := DecodeToken(tc.token.Encode())
			require.NoError(t, err)
			assert.Equal(t, tc.token, decoded)
		})
	}
}

func TestDecodeToken_Valid(t *testing.T) {
	token, err := DecodeToken("7-42-3")
	require.NoError(t, err)
	assert.Equal(t, uint(7), token.UserID)
	assert.Equal(t, uint(42), token.CourseID)
	assert.Equal(t, uint(3), token.OfferID)
}

func TestDecodeToken_Malformed(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{"empty", ""},
		{"two segments", "7-42"},
		{"one segment", "7"},
		{"four segments", "7-42-3-9"},
		{"non-numeric segment", "7-abc-3"},
		{"zero segment", "0-42-3"},
		{"negative segment", "7--42-3"},
		{"trailing delimiter", "7-42-"},
		{"float segment", "7-4.2-3"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := DecodeToken(tc.raw)
			require.Error(t, err)
			assert.True(t, apperrors.IsValidationError(err), "expected validation error, got %v", err)
		})
	}
}
