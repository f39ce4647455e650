package web

import (
	"embed"
	"io/fs"
	"net/http"

	"github.com/go-chi/chi/v5"
)

//go:embed static
var staticFS embed.FS

// Register serves the embedded browser client at the root of the router.
// API routes are registered first and take precedence over the wildcard.
func Register(r chi.Router) {
	sub, err := fs.Sub(staticFS, "static")
	if err != nil {
		// embed contents are fixed at build time
		panic(err)
	}

	fileServer := http.FileServer(http.FS(sub))
	r.Handle("/*", fileServer)
}
