// Package requestid assigns each request a correlation ID so handlers,
// services, and audit events can be stitched together in logs.
package requestid

import (
	"net/http"

	"github.com/google/uuid"

	"amlcase/pkg/requestcontext"
)

// Header is the inbound/outbound correlation header.
const Header = "X-Request-ID"

// Middleware reuses the caller-supplied X-Request-ID when present, otherwise
// generates one. The ID is echoed back on the response and stored in context.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := r.Header.Get(Header)
		if requestID == "" {
			requestID = uuid.NewString()
		}

		w.Header().Set(Header, requestID)
		ctx := requestcontext.WithRequestID(r.Context(), requestID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
