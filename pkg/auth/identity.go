package auth

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"net/http"
	"strconv"
	"strings"

	"civchat/pkg/config"
	"civchat/pkg/logger"
	"civchat/pkg/utils"
)

// Role represents the resolved caller role for a request.
type Role int

const (
	RoleUnauth Role = iota
	RoleFrontend // citizen mobile client keys
	RoleBackend  // admin console server keys
	RoleAdmin    // ops tooling keys
)

// SecConfig mirrors the security-related configuration used to drive
// authentication, CORS and rate limiting behavior. Put here so limiter.go
// and gateway.go can reference the shared type.
type SecConfig struct {
	AllowedOrigins []string
	RPS            float64
	Burst          int
	IPWhitelist    []string
	BackendKeys    map[string]struct{}
	FrontendKeys   map[string]struct{}
	AdminKeys      map[string]struct{}
}

type ctxParticipantKey struct{}

// RequireSignedParticipant verifies HMAC signature headers and injects the
// verified participant id into the request context. Frontend callers must
// sign X-User-ID with a backend key; backend/admin callers may act for any
// participant without a signature.
func RequireSignedParticipant(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		role := r.Header.Get("X-Role-Name")
		userID := strings.TrimSpace(r.Header.Get("X-User-ID"))
		sig := strings.TrimSpace(r.Header.Get("X-User-Signature"))

		// Backend/admin callers: allow missing signature entirely. If a
		// signature is present it is verified like any other.
		if (role == "backend" || role == "admin") && sig == "" {
			next.ServeHTTP(w, r)
			return
		}

		if sig == "" || userID == "" {
			logger.Warn("missing_signature_headers", "path", r.URL.Path, "remote", r.RemoteAddr)
			utils.JSONError(w, http.StatusUnauthorized, "missing signature headers")
			return
		}

		keys := config.GetSigningKeys()
		if len(keys) == 0 {
			logger.Error("no_signing_keys_configured")
			utils.JSONError(w, http.StatusInternalServerError, "server misconfigured: no signing secrets available")
			return
		}

		ok := false
		for k := range keys {
			mac := hmac.New(sha256.New, []byte(k))
			mac.Write([]byte(userID))
			expected := hex.EncodeToString(mac.Sum(nil))
			if hmac.Equal([]byte(expected), []byte(sig)) {
				ok = true
				break
			}
		}
		if !ok {
			logger.Warn("invalid_signature", "user", userID)
			utils.JSONError(w, http.StatusUnauthorized, "invalid signature")
			return
		}
		id, err := strconv.ParseInt(userID, 10, 64)
		if err != nil || id <= 0 {
			logger.Warn("invalid_participant_id", "user", userID)
			utils.JSONError(w, http.StatusBadRequest, "participant id must be a positive integer")
			return
		}
		logger.Debug("signature_verified", "participant", id)
		ctx := context.WithValue(r.Context(), ctxParticipantKey{}, id)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// ParticipantFromContext returns the verified participant id or zero.
func ParticipantFromContext(ctx context.Context) int64 {
	if v := ctx.Value(ctxParticipantKey{}); v != nil {
		if id, ok := v.(int64); ok {
			return id
		}
	}
	return 0
}

// ResolveParticipant is the canonical resolver handlers call to answer "who
// is self". It prefers a signature-verified id from context; backend/admin
// roles may supply one via the X-User-ID header without a signature.
// Returns (id, 0, "") on success or (0, status, message) on failure.
func ResolveParticipant(r *http.Request) (int64, int, string) {
	if id := ParticipantFromContext(r.Context()); id != 0 {
		return id, 0, ""
	}
	role := r.Header.Get("X-Role-Name")
	if role == "backend" || role == "admin" {
		h := strings.TrimSpace(r.Header.Get("X-User-ID"))
		if h == "" {
			return 0, http.StatusBadRequest, "X-User-ID required for backend requests"
		}
		id, err := strconv.ParseInt(h, 10, 64)
		if err != nil || id <= 0 {
			return 0, http.StatusBadRequest, "participant id must be a positive integer"
		}
		return id, 0, ""
	}
	return 0, http.StatusUnauthorized, "missing or invalid participant signature"
}
