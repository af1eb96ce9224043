package app

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/MrSnakeDoc/muse/internal/domain"
)

// Check is the outcome of one doctor probe.
type Check struct {
	Name   string        `json:"name"`
	OK     bool          `json:"ok"`
	Detail string        `json:"detail,omitempty"`
	Took   time.Duration `json:"took"`
}

// Doctor probes providers, catalog and storage concurrently. Each probe is
// bounded by timeout; a failed probe never cancels the others.
func (a *App) Doctor(ctx context.Context, timeout time.Duration) []Check {
	var (
		mu     sync.Mutex
		checks []Check
	)
	record := func(c Check) {
		mu.Lock()
		checks = append(checks, c)
		mu.Unlock()
	}

	probes := map[string]func(context.Context) (string, error){
		"providers": a.probeProviders,
		"catalog":   a.probeCatalog,
		"storage":   a.probeStorage,
	}

	var g errgroup.Group
	for name, probe := range probes {
		g.Go(func() error {
			pctx, cancel := context.WithTimeout(ctx, timeout)
			defer cancel()

			start := time.Now()
			detail, err := probe(pctx)
			c := Check{Name: name, OK: err == nil, Detail: detail, Took: time.Since(start)}
			if err != nil {
				c.Detail = err.Error()
			}
			record(c)
			return nil
		})
	}
	_ = g.Wait()

	sort.Slice(checks, func(i, j int) bool { return checks[i].Name < checks[j].Name })
	return checks
}

func (a *App) probeProviders(context.Context) (string, error) {
	var ids []string
	for _, p := range a.orch.Available() {
		ids = append(ids, p.ID())
	}
	if len(ids) == 0 {
		return "", domain.ErrNoProviderConfigured
	}
	return fmt.Sprintf("fallback order: %v", ids), nil
}

func (a *App) probeCatalog(context.Context) (string, error) {
	source := "embedded"
	if a.cfg.CatalogFile != "" {
		source = a.cfg.CatalogFile
	}
	return fmt.Sprintf("%s, %d styles, %d writing and %d drawing facets", source,
		len(a.catalog.Styles), len(a.catalog.FacetsFor(domain.KindWriting)), len(a.catalog.FacetsFor(domain.KindDrawing))), nil
}

func (a *App) probeStorage(ctx context.Context) (string, error) {
	store, err := a.Store(ctx)
	if err != nil {
		return "", err
	}
	if err := store.Ping(ctx); err != nil {
		return "", err
	}
	snap, err := store.Read(ctx)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s, %d history, %d favorites", a.cfg.Storage, len(snap.History), len(snap.Collections)), nil
}
