package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/onsi/ginkgo/v2"
	"github.com/onsi/gomega"
)

func TestMiddleware(t *testing.T) {
	gomega.RegisterFailHandler(ginkgo.Fail)
	ginkgo.RunSpecs(t, "Transport Middleware Suite")
}

var _ = ginkgo.Describe("RequestID", func() {
	ginkgo.It("reuses a caller-supplied trace id and echoes it", func() {
		handler := RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNoContent)
		}))

		req := httptest.NewRequest(http.MethodGet, "/api/v1/ping", nil)
		req.Header.Set(TraceHeader, "trace-123")
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		gomega.Expect(rec.Header().Get(TraceHeader)).To(gomega.Equal("trace-123"))
	})

	ginkgo.It("mints a trace id when the caller sends none", func() {
		handler := RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNoContent)
		}))

		req := httptest.NewRequest(http.MethodGet, "/api/v1/ping", nil)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		gomega.Expect(rec.Header().Get(TraceHeader)).NotTo(gomega.BeEmpty())
	})
})

var _ = ginkgo.Describe("RecoveryMiddleware", func() {
	ginkgo.It("answers a panic with a generic 500 body", func() {
		handler := RecoveryMiddleware()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			panic("salary row for PN-1 corrupted")
		}))

		req := httptest.NewRequest(http.MethodGet, "/api/v1/employees/1/salary", nil)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		gomega.Expect(rec.Code).To(gomega.Equal(http.StatusInternalServerError))
		// the panic value never reaches the client
		gomega.Expect(rec.Body.String()).To(gomega.Equal(`{"error":"internal server error"}`))
	})

	ginkgo.It("stays out of the way of healthy handlers", func() {
		handler := RecoveryMiddleware()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusTeapot)
		}))

		req := httptest.NewRequest(http.MethodGet, "/api/v1/ping", nil)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		gomega.Expect(rec.Code).To(gomega.Equal(http.StatusTeapot))
	})
})
