package middleware

import (
	"fmt"
	"log/slog"
	"net/http"
	"runtime/debug"
)

// PanicHandler answers a request whose handler panicked with value
type PanicHandler func(w http.ResponseWriter, r *http.Request, value any)

// Recovery turns handler panics into a response written by onPanic. The
// panic value and stack are logged with the request id.
func Recovery(logger *slog.Logger, onPanic PanicHandler) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				value := recover()
				if value == nil {
					return
				}
				// The server aborts these connections itself
				if value == http.ErrAbortHandler {
					panic(value)
				}

				logger.LogAttrs(r.Context(), slog.LevelError, "handler panicked",
					slog.String("panic", fmt.Sprint(value)),
					slog.String("request_id", RequestID(r.Context())),
					slog.String("method", r.Method),
					slog.String("path", r.URL.Path),
					slog.String("stack", string(debug.Stack())),
				)
				onPanic(w, r, value)
			}()

			next.ServeHTTP(w, r)
		})
	}
}
