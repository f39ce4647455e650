package web_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/huynhvq/inventory-tracker/internal/http/web"
)

func get(t *testing.T, r chi.Router, path string) *httptest.ResponseRecorder {
	t.Helper()

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	return rec
}

func TestRegister(t *testing.T) {
	r := chi.NewRouter()
	web.Register(r)

	t.Run("Should serve the index page at the root", func(t *testing.T) {
		rec := get(t, r, "/")
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), "<title>Inventory Tracker</title>")
	})

	t.Run("Should serve the client script", func(t *testing.T) {
		rec := get(t, r, "/app.js")
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), `"/api/products"`)
	})

	t.Run("Should serve the stylesheet", func(t *testing.T) {
		rec := get(t, r, "/style.css")
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("Should 404 for files outside the bundle", func(t *testing.T) {
		rec := get(t, r, "/missing.js")
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}
