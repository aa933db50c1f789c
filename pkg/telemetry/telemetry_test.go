package telemetry

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestRouteLabelCollapsesIDs(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"/v1/conversations/42/messages", "/v1/conversations/{id}/messages"},
		{"/v1/typing/7", "/v1/typing/{id}"},
		{"/v1/conversations", "/v1/conversations"},
		{"/healthz", "/healthz"},
		{"/v1/conversations/9999999999/read", "/v1/conversations/{id}/read"},
	}
	for _, c := range cases {
		if got := routeLabel(c.in); got != c.want {
			t.Fatalf("routeLabel(%q) = %q; want %q", c.in, got, c.want)
		}
	}
}

func TestRouteLabelSameSeriesForDifferentPeers(t *testing.T) {
	a := routeLabel("/v1/conversations/1/messages")
	b := routeLabel("/v1/conversations/250/messages")
	if a != b {
		t.Fatalf("peer ids must share one label: %q vs %q", a, b)
	}
}

func TestMiddlewareRecordsStatus(t *testing.T) {
	h := Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))
	req := httptest.NewRequest(http.MethodGet, "/v1/conversations/3/messages", nil)
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	if rr.Code != http.StatusTeapot {
		t.Fatalf("middleware must pass the status through; got %d", rr.Code)
	}
}
