package handlers

import (
	"net/http"
	"strconv"

	"civchat/pkg/auth"
	"civchat/pkg/models"
	"civchat/pkg/store"
	"civchat/pkg/telemetry"
	"civchat/pkg/utils"
)

// listConversations serves the participant's conversation listing for the
// slower list-poll cadence.
func (h *Handlers) listConversations(w http.ResponseWriter, r *http.Request) {
	self, status, msg := auth.ResolveParticipant(r)
	if status != 0 {
		utils.JSONError(w, status, msg)
		return
	}
	views, err := h.Index.ListFor(r.Context(), self)
	if err != nil {
		writeError(w, err)
		return
	}
	_ = utils.JSONWrite(w, http.StatusOK, struct {
		Conversations []models.ConversationView `json:"conversations"`
	}{Conversations: views})
}

// fetchConversation returns the ascending message log with the peer and, by
// default, marks everything from the peer as read. Marking is idempotent so
// an open conversation may safely re-apply it on every poll tick; a
// background poll passes mark=0 to observe without asserting the user saw
// anything.
func (h *Handlers) fetchConversation(w http.ResponseWriter, r *http.Request) {
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

	limit := 0
	if limStr := r.URL.Query().Get("limit"); limStr != "" {
		if lim, err := strconv.Atoi(limStr); err == nil && lim > 0 {
			limit = lim
		}
	}
	msgs, err := store.ListBetween(self, peer, limit)
	if err != nil {
		writeError(w, err)
		return
	}

	marked := 0
	if r.URL.Query().Get("mark") != "0" {
		marked, err = store.MarkAllReadFor(self, peer)
		if err != nil {
			writeError(w, err)
			return
		}
		if marked > 0 {
			telemetry.ReadMarks.Add(float64(marked))
		}
	}

	if msgs == nil {
		msgs = []models.Message{}
	}
	_ = utils.JSONWrite(w, http.StatusOK, struct {
		Peer       int64            `json:"peer_id"`
		Messages   []models.Message `json:"messages"`
		MarkedRead int              `json:"marked_read"`
	}{Peer: peer, Messages: msgs, MarkedRead: marked})
}

// markConversationRead is the explicit read acknowledgement. Safe to call
// repeatedly; the second call with no new messages marks zero rows.
func (h *Handlers) markConversationRead(w http.ResponseWriter, r *http.Request) {
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
	marked, err := store.MarkAllReadFor(self, peer)
	if err != nil {
		writeError(w, err)
		return
	}
	if marked > 0 {
		telemetry.ReadMarks.Add(float64(marked))
	}
	_ = utils.JSONWrite(w, http.StatusOK, struct {
		Marked int `json:"marked"`
	}{Marked: marked})
}
