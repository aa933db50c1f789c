package handlers

import (
	"encoding/json"
	"net/http"

	"civchat/pkg/auth"
	"civchat/pkg/logger"
	"civchat/pkg/store"
	"civchat/pkg/telemetry"
	"civchat/pkg/utils"
)

type sendRequest struct {
	Receiver int64  `json:"receiver_id"`
	Body     string `json:"body"`
}

// sendMessage appends a message from the authenticated participant. The
// response carries the assigned id and timestamp so the sender can
// reconcile its optimistic UI. Send is the one non-idempotent operation on
// this surface; clients must suppress duplicate submits themselves.
func (h *Handlers) sendMessage(w http.ResponseWriter, r *http.Request) {
	self, status, msg := auth.ResolveParticipant(r)
	if status != 0 {
		utils.JSONError(w, status, msg)
		return
	}
	var req sendRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.JSONError(w, http.StatusBadRequest, "invalid json")
		return
	}
	m, err := store.Append(self, req.Receiver, req.Body)
	if err != nil {
		writeError(w, err)
		return
	}
	telemetry.MessagesAppended.Inc()
	logger.Info("message_sent", "id", m.ID, "sender", self, "receiver", req.Receiver)
	_ = utils.JSONWrite(w, http.StatusOK, m)
}
