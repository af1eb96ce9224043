package handlers

import (
	"net/http"

	"github.com/MrSnakeDoc/muse/internal/envelope"
	"github.com/MrSnakeDoc/muse/internal/httpserver/deps"
)

// Catalog serves the personas, styles and facet options.
func Catalog(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Cache-Control", "public, max-age=300")
		envelope.Write(w, envelope.OK(*d.Catalog))
	}
}
