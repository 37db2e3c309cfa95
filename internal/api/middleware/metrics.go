package middleware

import (
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/mcoot/teamscore/internal/metrics"
	"github.com/mcoot/teamscore/internal/middleware"
)

// Metrics records request counts and latency by route template
func Metrics(recorder *metrics.Recorder) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			wrapped := middleware.WrapResponseWriter(w)

			next.ServeHTTP(wrapped, r)

			recorder.HTTPRequest(routeTemplate(r), r.Method, wrapped.Status(), time.Since(start))
		})
	}
}

// routeTemplate keeps metric labels bounded by using the matched route
func routeTemplate(r *http.Request) string {
	if route := mux.CurrentRoute(r); route != nil {
		if tpl, err := route.GetPathTemplate(); err == nil {
			return tpl
		}
	}
	return "unmatched"
}
