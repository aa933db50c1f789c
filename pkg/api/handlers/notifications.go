package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"civchat/pkg/auth"
	"civchat/pkg/notify"
	"civchat/pkg/telemetry"
	"civchat/pkg/utils"
)

type diffRequest struct {
	// Seen maps peer id (as a JSON string key) to the unread count the
	// client last rendered.
	Seen map[string]int `json:"seen"`
}

// notificationDiff compares the unread counts the client last rendered with
// the current conversation listing and returns one notification per peer
// whose unread count grew. Each delta is also handed to the configured push
// sink exactly once.
func (h *Handlers) notificationDiff(w http.ResponseWriter, r *http.Request) {
	self, status, msg := auth.ResolveParticipant(r)
	if status != 0 {
		utils.JSONError(w, status, msg)
		return
	}
	var req diffRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.JSONError(w, http.StatusBadRequest, "invalid json")
		return
	}
	prev := make(map[int64]int, len(req.Seen))
	for k, v := range req.Seen {
		id, err := strconv.ParseInt(k, 10, 64)
		if err != nil || id <= 0 {
			utils.JSONError(w, http.StatusBadRequest, "invalid peer id in seen map: "+k)
			return
		}
		prev[id] = v
	}

	views, err := h.Index.ListFor(r.Context(), self)
	if err != nil {
		writeError(w, err)
		return
	}
	deltas := h.Dispatcher.Observe(r.Context(), self, prev, views)
	if len(deltas) > 0 {
		telemetry.NotificationsPublished.Add(float64(len(deltas)))
	}
	if deltas == nil {
		deltas = []notify.Delta{}
	}
	_ = utils.JSONWrite(w, http.StatusOK, struct {
		Notifications []notify.Delta `json:"notifications"`
	}{Notifications: deltas})
}
