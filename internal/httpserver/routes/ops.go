package routes

import (
	"github.com/go-chi/chi/v5"

	"github.com/MrSnakeDoc/muse/internal/httpserver/deps"
	"github.com/MrSnakeDoc/muse/internal/httpserver/handlers"
	"github.com/MrSnakeDoc/muse/internal/httpserver/mw"
)

func init() { Register(registerOps) }

func registerOps(r chi.Router, d deps.Deps) {
	ops := r.With(mw.OpsAccess(d.AllowedCIDRS, d.TrustProxy, d.Logger))
	ops.Get("/healthz", handlers.Healthz(d))
	ops.Get("/readyz", handlers.Readyz(d))
	ops.Get("/infra", handlers.Infra(d))
}
