// Package server implements the HTTP surface of the hookdeploy webhook
// receiver.
//
// This package provides:
//   - The GitHub webhook endpoint with HMAC-SHA256 signature verification
//   - Per-IP rate limiting applied before any signature work
//   - A health endpoint for monitoring
//   - Structured logging of all HTTP requests with delivery correlation
//
// The server integrates with other packages:
//   - internal/config: immutable startup configuration
//   - internal/hook: event routing (acknowledge / ignore / deploy)
//   - internal/dispatch: fire-and-forget deployment script execution
//
// Security properties:
//   - Signatures are verified against the exact raw request bytes, before
//     any JSON parsing, using a constant-time comparison
//   - Payload size is capped (1MB) before verification completes
//   - Signature failures return a generic 401 without detail
package server
