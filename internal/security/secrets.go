package security

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"strings"
)

const (
	// MinSecretLength is the minimum allowed length for webhook secrets.
	MinSecretLength = 16
)

var forbiddenSecrets = map[string]bool{
	"replace-with-secret":     true,
	"github-webhook-password": true,
	"topsecret":               true,
	"secret":                  true,
	"password":                true,
	"changeme":                true,
}

// ValidateSecret ensures a webhook secret meets minimum requirements.
// Checks:
// - Minimum length
// - Not a well-known placeholder value
func ValidateSecret(secret string) error {
	if secret == "" {
		return fmt.Errorf("secret is required")
	}

	if len(secret) < MinSecretLength {
		return fmt.Errorf("secret too short (minimum %d characters, got %d)", MinSecretLength, len(secret))
	}

	secretLower := strings.ToLower(secret)
	if forbiddenSecrets[secretLower] {
		return fmt.Errorf("secret appears to be a placeholder value, please use a real secret")
	}

	if strings.Contains(secretLower, "replace") || strings.Contains(secretLower, "changeme") {
		return fmt.Errorf("secret appears to be a placeholder value")
	}

	return nil
}

// GenerateSecret creates a cryptographically secure random secret suitable
// for configuring a GitHub webhook.
func GenerateSecret(byteLen int) (string, error) {
	if byteLen < 24 {
		byteLen = 24
	}

	buf := make([]byte, byteLen)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to generate random secret: %w", err)
	}

	return base64.RawURLEncoding.EncodeToString(buf), nil
}
