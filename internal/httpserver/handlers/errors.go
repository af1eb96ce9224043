package handlers

import (
	"net/http"
	"strings"

	"github.com/MrSnakeDoc/muse/internal/envelope"
)

// MethodNotAllowed answers with the fixed 405 envelope.
func MethodNotAllowed(w http.ResponseWriter, _ *http.Request) {
	envelope.Write(w, envelope.MethodNotAllowed())
}

// NotFound answers unknown /api routes with the 404 envelope and hands
// everything else to fallback.
func NotFound(fallback http.Handler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/api" || strings.HasPrefix(r.URL.Path, "/api/") {
			envelope.Write(w, envelope.NotFound())
			return
		}
		fallback.ServeHTTP(w, r)
	}
}
