package middleware

import (
	"net/http"
	"runtime/debug"

	"github.com/pflegewerk/lohnmonitor/pkg/logger"
)

// RecoveryMiddleware turns a handler panic into a plain 500. The
// response body stays generic: panic values can embed personnel or
// salary data, so the detail and stack go to the log only. The log
// line goes through the request logger so it carries the trace id.
func RecoveryMiddleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rec := recover(); rec != nil {
					logger.From(r.Context()).Error("panic recovered",
						"panic", rec,
						"method", r.Method,
						"path", r.URL.Path,
						"stack", string(debug.Stack()))

					w.Header().Set("Content-Type", "application/json")
					w.WriteHeader(http.StatusInternalServerError)
					_, _ = w.Write([]byte(`{"error":"internal server error"}`))
				}
			}()

			next.ServeHTTP(w, r)
		})
	}
}
