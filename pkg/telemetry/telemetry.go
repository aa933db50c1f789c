// Package telemetry carries the server's Prometheus collectors and a
// low-overhead HTTP timing middleware. By default only slow requests are
// logged (see slowThreshold); counters are always collected.
package telemetry

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"civchat/pkg/logger"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var slowThreshold = 200 * time.Millisecond

var (
	// RequestDuration observes wall time per route/method/status.
	RequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "civchat",
		Subsystem: "http",
		Name:      "request_duration_seconds",
		Help:      "HTTP request latency.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"method", "path", "status"})

	// MessagesAppended counts messages accepted by the store.
	MessagesAppended = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "civchat",
		Name:      "messages_appended_total",
		Help:      "Messages appended to the log.",
	})

	// ReadMarks counts messages flipped from unread to read.
	ReadMarks = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "civchat",
		Name:      "read_marks_total",
		Help:      "Messages marked read.",
	})

	// TypingPings counts accepted typing signals.
	TypingPings = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "civchat",
		Name:      "typing_pings_total",
		Help:      "Typing signals received.",
	})

	// NotificationsPublished counts dispatched unread-increase notifications.
	NotificationsPublished = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "civchat",
		Name:      "notifications_published_total",
		Help:      "Notifications handed to the sink.",
	})
)

// SetSlowThreshold overrides the slow-request log threshold.
func SetSlowThreshold(d time.Duration) {
	if d > 0 {
		slowThreshold = d
	}
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// routeLabel collapses numeric path segments into a placeholder so each
// peer id does not mint its own histogram series.
func routeLabel(path string) string {
	if !strings.ContainsAny(path, "0123456789") {
		return path
	}
	segs := strings.Split(path, "/")
	for i, s := range segs {
		if s == "" {
			continue
		}
		if _, err := strconv.ParseInt(s, 10, 64); err == nil {
			segs[i] = "{id}"
		}
	}
	return strings.Join(segs, "/")
}

// Middleware records request timing into the duration histogram and logs
// requests slower than the threshold.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		elapsed := time.Since(start)

		RequestDuration.WithLabelValues(r.Method, routeLabel(r.URL.Path), strconv.Itoa(rec.status)).Observe(elapsed.Seconds())
		if elapsed >= slowThreshold {
			logger.Warn("slow_request",
				"method", r.Method,
				"path", r.URL.Path,
				"status", rec.status,
				"duration_ms", elapsed.Milliseconds(),
			)
		}
	})
}
