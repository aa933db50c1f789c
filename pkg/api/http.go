package api

import (
	"net/http"

	"civchat/pkg/api/handlers"
	"civchat/pkg/auth"

	"github.com/gorilla/mux"
)

// NewHandler returns the versioned messaging API. Every /v1 route runs
// behind the signed-participant middleware; the gateway middleware (API
// keys, CORS, rate limiting) wraps the whole server in internal/app.
func NewHandler(h *handlers.Handlers) http.Handler {
	r := mux.NewRouter()
	v1 := r.PathPrefix("/v1").Subrouter()
	v1.Use(mux.MiddlewareFunc(auth.RequireSignedParticipant))
	h.Register(v1)

	r.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"error":"not found"}`))
	})
	return r
}
