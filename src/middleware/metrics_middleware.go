package middleware

import (
	"net/http"
	"strconv"
	"time"

	"finhealth-server/src/metrics"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
)

// UnmatchedRoute labels requests no route matched, so arbitrary paths do not
// each become a series.
const UnmatchedRoute = "unmatched"

func metricsRoute(r *http.Request) string {
	if rctx := chi.RouteContext(r.Context()); rctx != nil {
		if p := rctx.RoutePattern(); p != "" {
			return p
		}
	}
	return UnmatchedRoute
}

// Metrics records request count and latency per route pattern.
func Metrics(m *metrics.HTTP) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()
			next.ServeHTTP(ww, r)

			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}
			m.Observe(r.Method, metricsRoute(r), strconv.Itoa(status), time.Since(start))
		})
	}
}
