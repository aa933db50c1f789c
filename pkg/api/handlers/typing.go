package handlers

import (
	"encoding/json"
	"net/http"

	"civchat/pkg/auth"
	"civchat/pkg/logger"
	"civchat/pkg/telemetry"
	"civchat/pkg/utils"
)

type typingRequest struct {
	Receiver int64 `json:"receiver_id"`
	Typing   bool  `json:"typing"`
}

// typingPing records a fire-and-forget typing signal. Tracker failures are
// degraded to an accepted response: nothing here may block the sender's
// input experience.
func (h *Handlers) typingPing(w http.ResponseWriter, r *http.Request) {
	self, status, msg := auth.ResolveParticipant(r)
	if status != 0 {
		utils.JSONError(w, status, msg)
		return
	}
	var req typingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.JSONError(w, http.StatusBadRequest, "invalid json")
		return
	}
	if req.Receiver <= 0 || req.Receiver == self {
		utils.JSONError(w, http.StatusBadRequest, "invalid receiver id")
		return
	}
	telemetry.TypingPings.Inc()
	if err := h.Tracker.SetTyping(r.Context(), self, req.Receiver, req.Typing); err != nil {
		logger.Warn("typing_ping_failed", "sender", self, "receiver", req.Receiver, "error", err)
		_ = utils.JSONWrite(w, http.StatusAccepted, map[string]string{"status": "degraded"})
		return
	}
	_ = utils.JSONWrite(w, http.StatusAccepted, map[string]string{"status": "ok"})
}

// typingQuery answers "is the peer typing to me" for the fast poll cadence.
func (h *Handlers) typingQuery(w http.ResponseWriter, r *http.Request) {
	self, status, msg := auth.ResolveParticipant(r)
	if status != 0 {
		utils.JSONError(w, status, msg)
		return
	}
	peer, ok := peerVar(r)
	if !ok {
		utils.JSONError(w, http.StatusBadRequest, "invalid peer id")
		return
	}
	typing, err := h.Tracker.IsTyping(r.Context(), peer, self)
	if err != nil {
		// a tracker outage must not break the open conversation; report
		// not-typing and let the next poll retry
		logger.Warn("typing_query_failed", "peer", peer, "self", self, "error", err)
		typing = false
	}
	_ = utils.JSONWrite(w, http.StatusOK, struct {
		Typing bool `json:"typing"`
	}{Typing: typing})
}
