package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"civchat/pkg/conv"
	"civchat/pkg/logger"
	"civchat/pkg/notify"
	"civchat/pkg/presence"
	"civchat/pkg/store"
	"civchat/pkg/utils"
	"civchat/pkg/validation"

	"github.com/gorilla/mux"
)

// Handlers bundles the collaborators the gateway routes dispatch into.
type Handlers struct {
	Index      *conv.Index
	Tracker    presence.Tracker
	Dispatcher *notify.Dispatcher
}

// New builds the handler set.
func New(index *conv.Index, tracker presence.Tracker, dispatcher *notify.Dispatcher) *Handlers {
	return &Handlers{Index: index, Tracker: tracker, Dispatcher: dispatcher}
}

// Register mounts all messaging routes on the (already versioned) router.
func (h *Handlers) Register(r *mux.Router) {
	r.HandleFunc("/messages", h.sendMessage).Methods(http.MethodPost)
	r.HandleFunc("/conversations", h.listConversations).Methods(http.MethodGet)
	r.HandleFunc("/conversations/{peer}/messages", h.fetchConversation).Methods(http.MethodGet)
	r.HandleFunc("/conversations/{peer}/read", h.markConversationRead).Methods(http.MethodPost)
	r.HandleFunc("/typing", h.typingPing).Methods(http.MethodPost)
	r.HandleFunc("/typing/{peer}", h.typingQuery).Methods(http.MethodGet)
	r.HandleFunc("/notifications/diff", h.notificationDiff).Methods(http.MethodPost)
}

// peerVar parses the {peer} path variable.
func peerVar(r *http.Request) (int64, bool) {
	raw := mux.Vars(r)["peer"]
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

// writeError maps the error taxonomy onto HTTP statuses: validation
// failures are 4xx and never retried, missing rows are 404, everything else
// is a 500 the client may retry (reads) or surface (sends).
func writeError(w http.ResponseWriter, err error) {
	switch {
	case validation.IsValidation(err):
		utils.JSONError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, store.ErrNotFound):
		utils.JSONError(w, http.StatusNotFound, "not found")
	default:
		logger.Error("request_failed", "error", err)
		utils.JSONError(w, http.StatusInternalServerError, err.Error())
	}
}
