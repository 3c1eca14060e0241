package server

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"hookdeploy/internal/hook"
)

const (
	MaxPayloadBytes = 1_000_000 // 1 MB
)

// HandleWebhook handles GitHub webhook deliveries on POST /githubwebhook.
//
// Order matters: the rate limiter has already run; the raw body is captured
// and the signature verified before any JSON is trusted.
func (s *Server) HandleWebhook(w http.ResponseWriter, r *http.Request) {
	delivery := r.Header.Get("X-GitHub-Delivery")
	if delivery == "" {
		delivery = "unknown"
	}

	event := r.Header.Get("X-GitHub-Event")
	if event == "" {
		s.respondJSON(w, http.StatusBadRequest, map[string]string{"error": "Missing X-GitHub-Event header"})
		return
	}

	// Reject oversized payloads before doing any signature work.
	// ContentLength can be -1 when unset, so the reader below caps too.
	if r.ContentLength > MaxPayloadBytes {
		s.respondJSON(w, http.StatusRequestEntityTooLarge, map[string]string{"error": "Payload too large"})
		return
	}

	// Capture the exact wire bytes; signature verification is only sound
	// against the untouched body.
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, MaxPayloadBytes))
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			s.respondJSON(w, http.StatusRequestEntityTooLarge, map[string]string{"error": "Payload too large"})
			return
		}
		s.Logger.Error("Failed to read request body", "error", err, "delivery", delivery)
		s.respondJSON(w, http.StatusInternalServerError, map[string]string{"error": "Failed to read payload"})
		return
	}

	signature := r.Header.Get("X-Hub-Signature-256")
	if !VerifySignature(body, signature, s.Settings.Secret) {
		// Deliberately generic: no hint about which check failed
		s.Logger.Warn("Signature verification failed", "delivery", delivery, "event", event)
		s.respondJSON(w, http.StatusUnauthorized, map[string]string{"error": "Invalid signature"})
		return
	}

	if !json.Valid(body) {
		s.Logger.Warn("Malformed JSON payload", "delivery", delivery, "event", event)
		s.respondJSON(w, http.StatusBadRequest, map[string]string{"error": "Invalid JSON payload"})
		return
	}

	action, err := s.Hooks.Route(event, body)
	if err != nil {
		s.Logger.Warn("Failed to parse payload", "error", err, "delivery", delivery, "event", event)
		s.respondJSON(w, http.StatusBadRequest, map[string]string{"error": "Invalid payload"})
		return
	}

	switch action.Kind {
	case hook.KindAcknowledge:
		s.respondJSON(w, http.StatusOK, map[string]string{"message": action.Reason})

	case hook.KindIgnore:
		// Correct no-op handling of an authenticated delivery; the reason
		// distinguishes wrong-branch from unmapped-repository in the logs.
		s.Logger.Info("Delivery ignored", "reason", action.Reason, "delivery", delivery)
		s.respondJSON(w, http.StatusOK, map[string]string{"message": action.Reason})

	case hook.KindDeploy:
		// The script may have vanished since startup validation
		if err := s.Dispatcher.CheckScript(action.Target); err != nil {
			s.Logger.Error("Deployment script missing at dispatch time",
				"error", err, "repository", action.Context.Repository, "delivery", delivery)
			s.respondJSON(w, http.StatusInternalServerError, map[string]string{"error": "Deployment script missing"})
			return
		}

		// Respond before the script runs: execution is fire-and-forget and
		// GitHub times deliveries out after 10 seconds.
		s.respondJSON(w, http.StatusOK, map[string]string{
			"message":    "deployment started",
			"repository": action.Context.Repository,
		})

		s.Dispatcher.Dispatch(action.Target, action.Context, delivery)
	}
}

// HandleHealth handles health check requests.
func (s *Server) HandleHealth(w http.ResponseWriter, r *http.Request) {
	response := map[string]interface{}{
		"status":   "ok",
		"targets":  s.Settings.TargetCount(),
		"branches": s.Settings.Branches,
	}

	s.respondJSON(w, http.StatusOK, response)
}

// respondJSON sends a JSON response
func (s *Server) respondJSON(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.Logger.Error("Failed to encode JSON response", "error", err)
	}
}
