// Package studio owns the application state container: it funnels every
// change through the reducer, keeps the persisted snapshot in sync and runs
// the generation flow.
package studio

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/MrSnakeDoc/muse/internal/domain"
	"github.com/MrSnakeDoc/muse/internal/envelope"
	"github.com/MrSnakeDoc/muse/internal/logger"
	"github.com/MrSnakeDoc/muse/internal/persist"
	"github.com/MrSnakeDoc/muse/internal/state"
)

// ErrUnknownItem is returned when an id matches no history entry or favorite.
var ErrUnknownItem = errors.New("no history item or favorite with that id")

// Backend is the envelope-returning operation surface the studio drives.
type Backend interface {
	GenerateText(ctx context.Context, topic string, style domain.Style, keywords domain.Facets) envelope.Response[domain.Content]
	GenerateImage(ctx context.Context, prompt string, keywords domain.Facets) envelope.Response[domain.Content]
	GenerateInspiration(ctx context.Context) envelope.Response[domain.Content]
	ToggleFavorite(ctx context.Context, item domain.HistoryItem) envelope.Response[[]domain.FavoriteItem]
}

type Studio struct {
	backend Backend
	store   *persist.Store
	ids     *domain.IDGenerator
	now     func() time.Time
	log     logger.Logger

	mu    sync.Mutex
	state state.State
}

type Option func(*Studio)

// WithClock overrides the clock used to stamp history entries.
func WithClock(now func() time.Time) Option {
	return func(s *Studio) { s.now = now }
}

func New(backend Backend, store *persist.Store, log logger.Logger, opts ...Option) *Studio {
	if log == nil {
		log = logger.NewNop()
	}
	s := &Studio{
		backend: backend,
		store:   store,
		ids:     domain.NewIDGenerator(),
		now:     time.Now,
		log:     log,
		state:   state.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Hydrate loads the persisted snapshot into the state. It never fails: an
// unreadable snapshot leaves the defaults in place.
func (s *Studio) Hydrate(ctx context.Context) state.State {
	snap := s.store.Load(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = state.Reduce(s.state, state.LoadSnapshot{Snapshot: snap})
	return s.state
}

// State returns the current state.
func (s *Studio) State() state.State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Dispatch applies actions in order as one atomic update. When a persisted
// field changed, the snapshot is written before Dispatch returns. Write
// failures are logged and never surface to the caller.
func (s *Studio) Dispatch(ctx context.Context, actions ...state.Action) state.State {
	s.mu.Lock()
	defer s.mu.Unlock()

	prev := s.state
	next := prev
	for _, a := range actions {
		next = state.Reduce(next, a)
	}
	s.state = next

	if state.PersistedChanged(prev, next) {
		if err := s.store.Save(ctx, next.Snapshot()); err != nil {
			s.log.Warn("failed to persist state", logger.Error(err))
		}
	}
	return next
}
