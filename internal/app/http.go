package app

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger"

	"civchat/pkg/api"
	"civchat/pkg/api/handlers"
	"civchat/pkg/auth"
	"civchat/pkg/conv"
	"civchat/pkg/store"
	"civchat/pkg/telemetry"
)

// setupHTTPHandlers sets up all HTTP handlers on the provided mux.
func (a *App) setupHTTPHandlers(mux *http.ServeMux) {
	index := conv.New(a.directory)
	h := handlers.New(index, a.tracker, a.dispatcher)

	mux.HandleFunc("/healthz", healthzHandler)
	mux.HandleFunc("/readyz", a.readyzHandler)
	mux.Handle("/", api.NewHandler(h))
	mux.Handle("/docs/", httpSwagger.Handler(httpSwagger.URL("/openapi.yaml")))
	mux.Handle("/openapi.yaml", http.FileServer(http.Dir("./docs")))
	mux.Handle("/metrics", promhttp.Handler())
}

// readyzHandler handles the /readyz endpoint.
func (a *App) readyzHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	if !store.Ready() {
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte("{\"status\":\"not ready\"}"))
		return
	}
	ver := a.version
	if ver == "" {
		ver = "dev"
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("{\"status\":\"ok\",\"version\":\"" + ver + "\"}"))
}

// healthzHandler handles the /healthz endpoint.
func healthzHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("{\"status\":\"ok\"}"))
}

// startHTTP builds the handler, starts the HTTP server in a goroutine and
// returns a channel that will contain any server error.
func (a *App) startHTTP() <-chan error {
	mux := http.NewServeMux()
	a.setupHTTPHandlers(mux)

	// build security config for auth middleware
	secCfg := auth.SecConfig{
		AllowedOrigins: append([]string{}, a.cfg.Security.CORS.AllowedOrigins...),
		RPS:            a.cfg.Security.RateLimit.RPS,
		Burst:          a.cfg.Security.RateLimit.Burst,
		IPWhitelist:    append([]string{}, a.cfg.Security.IPWhitelist...),
		BackendKeys:    map[string]struct{}{},
		FrontendKeys:   map[string]struct{}{},
		AdminKeys:      map[string]struct{}{},
	}
	for _, k := range a.cfg.Security.APIKeys.Backend {
		secCfg.BackendKeys[k] = struct{}{}
	}
	for _, k := range a.cfg.Security.APIKeys.Frontend {
		secCfg.FrontendKeys[k] = struct{}{}
	}
	for _, k := range a.cfg.Security.APIKeys.Admin {
		secCfg.AdminKeys[k] = struct{}{}
	}

	// wrap mux with auth middleware, then telemetry middleware
	wrapped := auth.AuthenticateRequestMiddleware(secCfg)(mux)
	wrapped = telemetry.Middleware(wrapped)

	a.srv = &http.Server{Addr: a.addr, Handler: wrapped}

	errCh := make(chan error, 1)
	go func() {
		cert := a.cfg.Server.TLS.CertFile
		key := a.cfg.Server.TLS.KeyFile
		if cert != "" && key != "" {
			errCh <- a.srv.ListenAndServeTLS(cert, key)
		} else {
			errCh <- a.srv.ListenAndServe()
		}
	}()
	return errCh
}
