package middleware

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/huynhvq/inventory-tracker/pkg/correlationid"
)

// CorrelationID picks up the caller's correlation ID (or mints one) and
// makes it available on the request context and the response.
func CorrelationID() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := r.Header.Get(correlationid.Header)
			if id == "" {
				id = uuid.NewString()
			}

			ctx := correlationid.NewContext(r.Context(), id)
			w.Header().Set(correlationid.Header, id)

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
