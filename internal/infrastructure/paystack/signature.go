package paystack

import (
	"crypto/hmac"
	"crypto/sha512"
	"encoding/hex"
)

// SignatureValid reports whether the X-Paystack-Signature header matches
// the HMAC-SHA512 of the raw request body under the secret key. It must be
// called on the raw bytes as received; recomputing over a reparsed body
// will not match. A true return means the payload is authentic. An empty
// signature is always rejected.
func (c *Client) SignatureValid(body []byte, signature string) bool {
	return SignatureValid(body, signature, c.secretKey)
}

// SignatureValid is the standalone form used where no client is at hand.
func SignatureValid(body []byte, signature, secret string) bool {
	if signature == "" {
		return false
	}

	mac := hmac.New(sha512.New, []byte(secret))
	mac.Write(body)
	expected := hex.EncodeToString(mac.Sum(nil))

	// hmac.Equal gives a constant-time comparison.
	return hmac.Equal([]byte(expected), []byte(signature))
}

// Sign computes the hex HMAC-SHA512 signature for a payload. Used by tests
// and by tooling that replays webhook deliveries.
func Sign(body []byte, secret string) string {
	mac := hmac.New(sha512.New, []byte(secret))
	mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}
