package signature

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
)

// Sign computes the hex-encoded HMAC-SHA256 of body keyed by secret. Up sends
// this value in the X-Up-Authenticity-Signature header; the CLI uses it to
// forge test deliveries.
func Sign(body []byte, secret string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}

// Verify checks signatureHex against the HMAC-SHA256 of body. The body must be
// the raw bytes as received on the wire, before any JSON parsing. Returns
// false for a missing signature, invalid hex, or a digest of the wrong length.
func Verify(body []byte, signatureHex, secret string) bool {
	if signatureHex == "" {
		return false
	}
	received, err := hex.DecodeString(signatureHex)
	if err != nil {
		return false
	}

	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	expected := mac.Sum(nil)

	if len(received) != len(expected) {
		return false
	}
	return hmac.Equal(received, expected)
}
