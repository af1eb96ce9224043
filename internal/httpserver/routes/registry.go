package routes

import (
	"github.com/go-chi/chi/v5"

	"github.com/MrSnakeDoc/muse/internal/httpserver/deps"
)

// Registrar mounts one group of routes. Middlewares that need deps are
// applied inside the registrar with r.With.
type Registrar func(r chi.Router, d deps.Deps)

var registry []Registrar

// Register adds a registrar. Called from init() in each route file.
func Register(reg Registrar) {
	registry = append(registry, reg)
}

// RegisterAll mounts every registered group, in registration order.
// Called once from server.New().
func RegisterAll(r chi.Router, d deps.Deps) {
	for _, reg := range registry {
		reg(r, d)
	}
}
