package enrollment

import (
	"fmt"
	"strconv"
	"strings"

	apperrors "coursepay/internal/shared/errors"
)

// AccessToken correlates a payment attempt with the user, course, and offer
// it pays for. It travels through the gateway as the "custom" metadata field
// in the form "<userid>-<courseid>-<offerid>".
//
// IDs are unsigned integers, so the "-" delimiter cannot occur inside a
// segment. Tokens with anything other than exactly three positive integer
// segments are rejected.
type AccessToken struct {
	UserID   uint
	CourseID uint
	OfferID  uint
}

const tokenSegments = 3

// Encode renders the token in wire form.
func (t AccessToken) Encode() string {
	return fmt.Sprintf("%d-%d-%d", t.UserID, t.CourseID, t.OfferID)
}

// DecodeToken parses a wire-form access token.
func DecodeToken(raw string) (AccessToken, error) {
	if raw == "" {
		return AccessToken{}, apperrors.NewValidationError("malformed access token", "token is empty")
	}

	segments := strings.Split(raw, "-")
	if len(segments) != tokenSegments {
		return AccessToken{}, apperrors.NewValidationError(
			"malformed access token",
			fmt.Sprintf("expected %d segments, got %d", tokenSegments, len(segments)),
		)
	}

	ids := make([]uint, tokenSegments)
	for i, seg := range segments {
		n, err := strconv.ParseUint(seg, 10, 32)
		if err != nil || n == 0 {
			return AccessToken{}, apperrors.NewValidationError(
				"malformed access token",
				fmt.Sprintf("segment %q is not a positive integer", seg),
			)
		}
		ids[i] = uint(n)
	}

	return AccessToken{
		UserID:   ids[0],
		CourseID: ids[1],
		OfferID:  ids[2],
	}, nil
}
