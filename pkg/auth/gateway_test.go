package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func newGateway(cfg SecConfig) http.Handler {
	inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	return AuthenticateRequestMiddleware(cfg)(inner)
}

func secCfg() SecConfig {
	return SecConfig{
		AllowedOrigins: []string{"https://app.example.org"},
		BackendKeys:    map[string]struct{}{"bk": {}},
		FrontendKeys:   map[string]struct{}{"fk": {}},
		AdminKeys:      map[string]struct{}{"ak": {}},
	}
}

func TestGatewayRejectsMissingKey(t *testing.T) {
	h := newGateway(secCfg())
	req := httptest.NewRequest(http.MethodGet, "/v1/conversations", nil)
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401; got %d", rr.Code)
	}
}

func TestGatewayRejectsUnknownKey(t *testing.T) {
	h := newGateway(secCfg())
	req := httptest.NewRequest(http.MethodGet, "/v1/conversations", nil)
	req.Header.Set("X-API-Key", "nope")
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401; got %d", rr.Code)
	}
}

func TestGatewaySetsRoleHeader(t *testing.T) {
	h := newGateway(secCfg())
	cases := []struct {
		key  string
		role string
	}{
		{"bk", "backend"},
		{"fk", "frontend"},
		{"ak", "admin"},
	}
	for _, c := range cases {
		req := httptest.NewRequest(http.MethodGet, "/v1/conversations", nil)
		req.Header.Set("Authorization", "Bearer "+c.key)
		rr := httptest.NewRecorder()
		h.ServeHTTP(rr, req)
		if rr.Code != http.StatusOK {
			t.Fatalf("key %s: expected 200; got %d", c.key, rr.Code)
		}
		if got := req.Header.Get("X-Role-Name"); got != c.role {
			t.Fatalf("key %s: expected role %s; got %s", c.key, c.role, got)
		}
	}
}

func TestGatewayFrontendScope(t *testing.T) {
	h := newGateway(secCfg())

	allowed := []struct {
		method string
		path   string
	}{
		{http.MethodPost, "/v1/messages"},
		{http.MethodGet, "/v1/conversations"},
		{http.MethodGet, "/v1/conversations/2/messages"},
		{http.MethodPost, "/v1/typing"},
		{http.MethodPost, "/v1/notifications/diff"},
	}
	for _, c := range allowed {
		req := httptest.NewRequest(c.method, c.path, nil)
		req.Header.Set("X-API-Key", "fk")
		rr := httptest.NewRecorder()
		h.ServeHTTP(rr, req)
		if rr.Code != http.StatusOK {
			t.Fatalf("%s %s: expected 200 for frontend; got %d", c.method, c.path, rr.Code)
		}
	}

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	req.Header.Set("X-API-Key", "fk")
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	if rr.Code != http.StatusForbidden {
		t.Fatalf("metrics: expected 403 for frontend; got %d", rr.Code)
	}
}

func TestGatewayHealthBypass(t *testing.T) {
	h := newGateway(secCfg())
	for _, path := range []string{"/healthz", "/readyz"} {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		rr := httptest.NewRecorder()
		h.ServeHTTP(rr, req)
		if rr.Code != http.StatusOK {
			t.Fatalf("%s: expected unauthenticated 200; got %d", path, rr.Code)
		}
	}
}

func TestGatewayCORSPreflight(t *testing.T) {
	h := newGateway(secCfg())
	req := httptest.NewRequest(http.MethodOptions, "/v1/messages", nil)
	req.Header.Set("Origin", "https://app.example.org")
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	if rr.Code != http.StatusNoContent {
		t.Fatalf("expected 204; got %d", rr.Code)
	}
	if got := rr.Header().Get("Access-Control-Allow-Origin"); got != "https://app.example.org" {
		t.Fatalf("expected origin echoed; got %q", got)
	}

	// unlisted origin gets no CORS headers
	req = httptest.NewRequest(http.MethodOptions, "/v1/messages", nil)
	req.Header.Set("Origin", "https://evil.example.org")
	rr = httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	if got := rr.Header().Get("Access-Control-Allow-Origin"); got != "" {
		t.Fatalf("unlisted origin must not be allowed; got %q", got)
	}
}

func TestGatewayIPWhitelist(t *testing.T) {
	cfg := secCfg()
	cfg.IPWhitelist = []string{"10.1.2.3"}
	h := newGateway(cfg)

	req := httptest.NewRequest(http.MethodGet, "/v1/conversations", nil)
	req.RemoteAddr = "192.0.2.5:1234"
	req.Header.Set("X-API-Key", "bk")
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	if rr.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for non-whitelisted ip; got %d", rr.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/v1/conversations", nil)
	req.RemoteAddr = "10.1.2.3:1234"
	req.Header.Set("X-API-Key", "bk")
	rr = httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200 for whitelisted ip; got %d", rr.Code)
	}
}

func TestGatewayRateLimit(t *testing.T) {
	cfg := secCfg()
	cfg.RPS = 1
	cfg.Burst = 2
	h := newGateway(cfg)

	limited := false
	for i := 0; i < 5; i++ {
		req := httptest.NewRequest(http.MethodGet, "/v1/conversations", nil)
		req.Header.Set("X-API-Key", "bk")
		rr := httptest.NewRecorder()
		h.ServeHTTP(rr, req)
		if rr.Code == http.StatusTooManyRequests {
			limited = true
			break
		}
	}
	if !limited {
		t.Fatalf("expected the burst to exhaust the limiter")
	}
}
