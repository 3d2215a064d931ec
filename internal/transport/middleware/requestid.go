package middleware

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/pflegewerk/lohnmonitor/pkg/logger"
)

// TraceHeader carries the request trace id. A caller-supplied value is
// reused so the id survives a reverse proxy hop; otherwise one is
// minted here.
const TraceHeader = "X-Trace-ID"

// RequestID attaches a trace id to the request logger and echoes it on
// the response so support tickets can quote it.
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		traceID := r.Header.Get(TraceHeader)
		if traceID == "" {
			traceID = uuid.NewString()
		}

		ctx := logger.With(r.Context(), "trace_id", traceID)
		w.Header().Set(TraceHeader, traceID)

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
