package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/MrSnakeDoc/muse/internal/domain"
	"github.com/MrSnakeDoc/muse/internal/httpserver/deps"
)

// Generation modes reported by /infra.
const (
	modeCritical  = "critical"  // no provider can generate
	modeDegraded  = "degraded"  // some providers are missing from the chain
	modeRedundant = "redundant" // every known provider is in the chain
)

type healthz struct {
	Status        string  `json:"status"`
	UptimeSeconds float64 `json:"uptime_seconds"`
	Version       string  `json:"version,omitempty"`
	Commit        string  `json:"commit,omitempty"`
	BuildDate     string  `json:"build_date,omitempty"`
	GoVersion     string  `json:"go_version,omitempty"`
}

type readyz struct {
	Ready  bool   `json:"ready"`
	Reason string `json:"reason,omitempty"`
}

type providerStatus struct {
	Configured bool   `json:"ok"`
	Position   int    `json:"position,omitempty"` // 1-based place in the fallback chain
	Error      string `json:"error,omitempty"`
}

type catalogSummary struct {
	Personas int            `json:"personas"`
	Styles   int            `json:"styles"`
	Facets   map[string]int `json:"facets"`
}

type infra struct {
	GenerationMode  string                    `json:"generation_mode"`
	FallbackOrder   []string                  `json:"fallback_order"`
	ProviderTimeout string                    `json:"provider_timeout"`
	Providers       map[string]providerStatus `json:"providers"`
	Catalog         catalogSummary            `json:"catalog"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// Healthz reports liveness and build information.
func Healthz(d deps.Deps) http.HandlerFunc {
	now := d.TimeNow
	if now == nil {
		now = time.Now
	}
	return func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, healthz{
			Status:        "ok",
			UptimeSeconds: now().Sub(d.StartTime).Seconds(),
			Version:       d.Version,
			Commit:        d.Commit,
			BuildDate:     d.BuildDate,
			GoVersion:     d.GoVersion,
		})
	}
}

// Readyz is ready once at least one provider is configured.
func Readyz(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		if len(d.Service.FallbackOrder()) == 0 {
			writeJSON(w, http.StatusServiceUnavailable, readyz{Reason: domain.ErrNoProviderConfigured.Error()})
			return
		}
		writeJSON(w, http.StatusOK, readyz{Ready: true})
	}
}

// Infra reports the fallback chain, each provider's availability and the
// catalog size.
func Infra(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		order := d.Service.FallbackOrder()
		known := d.Service.Providers()

		providers := make(map[string]providerStatus, len(known))
		for id := range known {
			providers[id] = providerStatus{Error: domain.ErrNoProviderConfigured.Error()}
		}
		for i, id := range order {
			providers[id] = providerStatus{Configured: true, Position: i + 1}
		}

		mode := modeRedundant
		switch {
		case len(order) == 0:
			mode = modeCritical
		case len(order) < len(known):
			mode = modeDegraded
		}

		writeJSON(w, http.StatusOK, infra{
			GenerationMode:  mode,
			FallbackOrder:   order,
			ProviderTimeout: d.ProviderTimeout.String(),
			Providers:       providers,
			Catalog:         summarizeCatalog(d),
		})
	}
}

func summarizeCatalog(d deps.Deps) catalogSummary {
	out := catalogSummary{Facets: map[string]int{}}
	if d.Catalog == nil {
		return out
	}
	out.Personas = len(d.Catalog.Personas)
	out.Styles = len(d.Catalog.Styles)
	for kind, facets := range d.Catalog.Facets {
		out.Facets[kind] = len(facets)
	}
	return out
}
