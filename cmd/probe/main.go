package main

import (
	"flag"
	"fmt"
	"time"

	"github.com/valyala/fasthttp"
)

// probe is a lean health sidecar for deployments where the orchestrator
// cannot reach the main listener directly. It checks the chat server's
// /healthz and /readyz and reports an aggregate status.
func main() {
	addr := flag.String("addr", ":8081", "listen address for the probe")
	target := flag.String("target", "http://127.0.0.1:8080", "base URL of the chat server")
	ver := flag.String("version", "dev", "version string to return")
	flag.Parse()

	client := &fasthttp.Client{
		ReadTimeout:  2 * time.Second,
		WriteTimeout: 2 * time.Second,
	}

	check := func(path string) bool {
		code, _, err := client.GetTimeout(nil, *target+path, 2*time.Second)
		return err == nil && code == fasthttp.StatusOK
	}

	h := func(ctx *fasthttp.RequestCtx) {
		switch string(ctx.Path()) {
		case "/health", "/healthz":
			ctx.Response.Header.Set("Content-Type", "application/json")
			if check("/healthz") {
				ctx.SetStatusCode(fasthttp.StatusOK)
				_, _ = ctx.WriteString(fmt.Sprintf("{\"status\":\"ok\",\"version\":\"%s\"}", *ver))
			} else {
				ctx.SetStatusCode(fasthttp.StatusServiceUnavailable)
				_, _ = ctx.WriteString("{\"status\":\"unreachable\"}")
			}
		case "/ready", "/readyz":
			ctx.Response.Header.Set("Content-Type", "application/json")
			if check("/readyz") {
				ctx.SetStatusCode(fasthttp.StatusOK)
				_, _ = ctx.WriteString("{\"status\":\"ready\"}")
			} else {
				ctx.SetStatusCode(fasthttp.StatusServiceUnavailable)
				_, _ = ctx.WriteString("{\"status\":\"not ready\"}")
			}
		default:
			ctx.SetStatusCode(fasthttp.StatusNotFound)
		}
	}

	fmt.Printf("probe listening on %s, target %s\n", *addr, *target)
	srv := &fasthttp.Server{
		Handler:            h,
		Name:               "civchat-probe",
		ReadTimeout:        5 * time.Second,
		WriteTimeout:       5 * time.Second,
		MaxRequestBodySize: 1 << 20,
	}
	if err := srv.ListenAndServe(*addr); err != nil {
		fmt.Printf("probe server exit: %v\n", err)
	}
}
