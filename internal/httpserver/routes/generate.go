package routes

import (
	"github.com/go-chi/chi/v5"

	"github.com/MrSnakeDoc/muse/internal/httpserver/deps"
	"github.com/MrSnakeDoc/muse/internal/httpserver/handlers"
	"github.com/MrSnakeDoc/muse/internal/httpserver/mw"
)

func init() { Register(registerGenerate) }

func registerGenerate(r chi.Router, d deps.Deps) {
	// one limiter shared by the three routes
	limited := r.With(mw.RateLimit(mw.RateLimitConfig{
		Burst:      d.RateBurst,
		PerMinute:  d.RatePerMin,
		MaxClients: 10000,
		TrustProxy: d.TrustProxy,
	}))
	limited.Post("/api/generate/text", handlers.GenerateText(d))
	limited.Post("/api/generate/image", handlers.GenerateImage(d))
	limited.Post("/api/generate/inspiration", handlers.GenerateInspiration(d))
}
