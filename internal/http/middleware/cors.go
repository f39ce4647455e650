package middleware

import (
	"net/http"

	"github.com/go-chi/cors"
)

// Cors allows cross-origin calls to the API. The client is served from the
// same origin, so this only matters for external API consumers.
func Cors() func(http.Handler) http.Handler {
	return cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Correlation-Id"},
		MaxAge:         300,
	})
}
