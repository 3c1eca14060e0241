package server

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

const (
	SignaturePrefix = "sha256="
)

// VerifySignature verifies the HMAC-SHA256 signature of a GitHub webhook
// delivery against the raw request body.
//
// The header format is "sha256=<hex_digest>". Missing headers, wrong
// prefixes, and malformed hex all verify as false; no distinction is leaked
// to the caller. The comparison uses hmac.Equal, which is constant time.
func VerifySignature(payload []byte, signature, secret string) bool {
	if signature == "" {
		return false
	}

	if !strings.HasPrefix(signature, SignaturePrefix) {
		return false
	}

	// Decode the received digest; malformed hex is a verification failure,
	// not an error
	receivedMAC, err := hex.DecodeString(strings.TrimPrefix(signature, SignaturePrefix))
	if err != nil {
		return false
	}

	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(payload)
	expectedMAC := mac.Sum(nil)

	return hmac.Equal(expectedMAC, receivedMAC)
}
