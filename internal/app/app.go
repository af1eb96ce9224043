// Package app wires configuration, providers, storage and the HTTP server
// into the running program.
package app

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/MrSnakeDoc/muse/internal/api"
	"github.com/MrSnakeDoc/muse/internal/catalog"
	"github.com/MrSnakeDoc/muse/internal/config"
	"github.com/MrSnakeDoc/muse/internal/domain"
	"github.com/MrSnakeDoc/muse/internal/httpserver"
	"github.com/MrSnakeDoc/muse/internal/httpserver/deps"
	"github.com/MrSnakeDoc/muse/internal/logger"
	"github.com/MrSnakeDoc/muse/internal/orchestrator"
	"github.com/MrSnakeDoc/muse/internal/persist"
	"github.com/MrSnakeDoc/muse/internal/provider"
	"github.com/MrSnakeDoc/muse/internal/provider/gemini"
	"github.com/MrSnakeDoc/muse/internal/provider/openai"
	"github.com/MrSnakeDoc/muse/internal/redis"
	redisstore "github.com/MrSnakeDoc/muse/internal/store/redis"
	"github.com/MrSnakeDoc/muse/internal/store/sqlite"
	"github.com/MrSnakeDoc/muse/internal/studio"
	"github.com/MrSnakeDoc/muse/internal/version"
)

type App struct {
	cfg     *config.Config
	logger  logger.Logger
	catalog *catalog.Catalog
	orch    *orchestrator.Orchestrator

	mu      sync.Mutex
	storage persist.Storage // opened on first use
	store   *persist.Store
}

// New builds the providers in fallback order (OpenAI, then Gemini) and
// loads the facet catalog. Storage is not opened.
func New(cfg *config.Config, loggerClient logger.Logger) (*App, error) {
	cat, err := catalog.Load(cfg.CatalogFile)
	if err != nil {
		return nil, err
	}

	httpClient := &http.Client{Timeout: cfg.ProviderTimeout + 5*time.Second}
	providers := []provider.Provider{
		openai.New(cfg.OpenAI),
		gemini.New(cfg.Gemini, httpClient),
	}
	return NewWithProviders(cfg, loggerClient, cat, providers), nil
}

// NewWithProviders is New with explicit providers and catalog.
func NewWithProviders(cfg *config.Config, loggerClient logger.Logger, cat *catalog.Catalog, providers []provider.Provider) *App {
	if loggerClient == nil {
		loggerClient = logger.NewNop()
	}
	orch := orchestrator.New(providers, cfg.ProviderTimeout, loggerClient.With(logger.Component("orchestrator")))
	for id, ok := range orch.Status() {
		loggerClient.Debug("provider", logger.String("id", id), logger.Bool("configured", ok))
	}
	return &App{
		cfg:     cfg,
		logger:  loggerClient,
		catalog: cat,
		orch:    orch,
	}
}

func (a *App) Config() *config.Config     { return a.cfg }
func (a *App) Logger() logger.Logger      { return a.logger }
func (a *App) Catalog() *catalog.Catalog  { return a.catalog }
func (a *App) Providers() map[string]bool { return a.orch.Status() }

// Store opens the configured snapshot storage once and returns the store
// over it.
func (a *App) Store(ctx context.Context) (*persist.Store, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.store != nil {
		return a.store, nil
	}
	storage, err := a.openStorage(ctx)
	if err != nil {
		return nil, err
	}
	a.storage = storage
	a.store = persist.NewStore(storage, a.cfg.StateKey, a.logger.With(logger.Component("persist")))
	return a.store, nil
}

func (a *App) openStorage(ctx context.Context) (persist.Storage, error) {
	switch a.cfg.Storage {
	case config.StorageMemory:
		return persist.NewMemoryStorage(), nil
	case config.StorageRedis:
		client, err := redis.Connect(ctx, redis.OptionsFromConfig(a.cfg), a.logger)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to redis: %w", err)
		}
		return redisstore.NewStore(client), nil
	case config.StorageSQLite, "":
		st, err := sqlite.Open(a.cfg.SQLitePath)
		if err != nil {
			return nil, fmt.Errorf("failed to open sqlite storage: %w", err)
		}
		a.logger.Debug("sqlite storage opened", logger.String("path", a.cfg.SQLitePath))
		return st, nil
	default:
		return nil, fmt.Errorf("unknown storage backend %q", a.cfg.Storage)
	}
}

// LastSaved reports when the snapshot was last written, when the backend
// tracks it.
func (a *App) LastSaved(ctx context.Context) (time.Time, bool) {
	a.mu.Lock()
	storage := a.storage
	a.mu.Unlock()

	switch s := storage.(type) {
	case *sqlite.Store:
		t, err := s.UpdatedAt(ctx, a.cfg.StateKey)
		return t, err == nil
	case *persist.MemoryStorage:
		t := s.LastWrite()
		return t, !t.IsZero()
	}
	return time.Time{}, false
}

// Service returns the envelope-returning operations. withStore controls
// whether history and favorites are available.
func (a *App) Service(ctx context.Context, withStore bool) (*api.Service, error) {
	var store *persist.Store
	if withStore {
		var err error
		if store, err = a.Store(ctx); err != nil {
			return nil, err
		}
	}
	return api.NewService(a.orch, store, a.logger.With(logger.Component("api"))), nil
}

// Studio opens storage and returns a state container hydrated from it.
func (a *App) Studio(ctx context.Context) (*studio.Studio, error) {
	store, err := a.Store(ctx)
	if err != nil {
		return nil, err
	}
	svc := api.NewService(a.orch, store, a.logger.With(logger.Component("api")))

	s := studio.New(svc, store, a.logger.With(logger.Component("studio")))
	s.Hydrate(ctx)
	return s, nil
}

// Serve runs the HTTP server until ctx is cancelled. Shutdown closes every
// opened resource alongside the server.
func (a *App) Serve(ctx context.Context) error {
	a.logger.Infof("🚀 Starting Muse %s on %s", version.String(), a.cfg.ListenPort)

	svc, err := a.Service(ctx, false)
	if err != nil {
		return err
	}
	if len(svc.FallbackOrder()) == 0 {
		a.logger.Warn("every generation will fail until a provider key is set",
			logger.Error(domain.ErrNoProviderConfigured))
	}

	server := httpserver.New(a.cfg, a.logger, a.deps(svc))

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := server.Start(gctx, a.cfg.ShutdownTimeout); err != nil {
			return fmt.Errorf("http server error: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		a.logger.Info("⏳ Shutting down gracefully...")
		return a.Close()
	})

	if err := g.Wait(); err != nil {
		return err
	}
	a.logger.Info("✅ Muse stopped cleanly")
	return nil
}

func (a *App) deps(svc *api.Service) deps.Deps {
	return deps.Deps{
		Logger:          a.logger,
		StartTime:       time.Now(),
		Version:         version.Version,
		Commit:          version.Commit,
		BuildDate:       version.BuildDate,
		GoVersion:       version.GoVersion,
		TimeNow:         time.Now,
		AllowedCIDRS:    a.cfg.AllowedCIDRS,
		TrustProxy:      a.cfg.TrustProxy,
		RateBurst:       a.cfg.RateBurst,
		RatePerMin:      a.cfg.RatePerMin,
		Service:         svc,
		Catalog:         a.catalog,
		ProviderTimeout: a.cfg.ProviderTimeout,
	}
}

// Close releases the storage backend, if one was opened.
func (a *App) Close() error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.storage == nil {
		return nil
	}
	err := a.storage.Close()
	if err != nil {
		a.logger.Warn("failed to close storage", logger.String("backend", a.cfg.Storage), logger.Error(err))
	}
	a.storage, a.store = nil, nil
	return err
}
