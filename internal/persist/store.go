package persist

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/MrSnakeDoc/muse/internal/domain"
	"github.com/MrSnakeDoc/muse/internal/logger"
)

// Store reads and writes the snapshot blob under one fixed key.
type Store struct {
	storage Storage
	key     string
	log     logger.Logger
	now     func() time.Time

	// mu serializes read-modify-write cycles within this process.
	mu sync.Mutex
}

type Option func(*Store)

// WithClock overrides the clock used to stamp favorites.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

func NewStore(storage Storage, key string, log logger.Logger, opts ...Option) *Store {
	if log == nil {
		log = logger.NewNop()
	}
	s := &Store{storage: storage, key: key, log: log, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Read returns the persisted snapshot. On a missing key it returns the
// defaults and no error. On any other failure it returns the defaults
// together with a *domain.PersistenceError.
func (s *Store) Read(ctx context.Context) (Snapshot, error) {
	data, err := s.storage.Get(ctx, s.key)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return DefaultSnapshot(), nil
		}
		return DefaultSnapshot(), &domain.PersistenceError{Op: "read", Err: err}
	}

	snap, err := Decode(data)
	if err != nil {
		return snap, &domain.PersistenceError{Op: "decode", Err: err}
	}
	return snap, nil
}

// Load is Read for startup: failures are logged and never returned.
func (s *Store) Load(ctx context.Context) Snapshot {
	snap, err := s.Read(ctx)
	if err != nil {
		s.log.Warn("failed to load saved state, using defaults",
			logger.String("key", s.key),
			logger.Error(err),
		)
	}
	return snap
}

// Save replaces the persisted snapshot.
func (s *Store) Save(ctx context.Context, snap Snapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.write(ctx, snap)
}

func (s *Store) write(ctx context.Context, snap Snapshot) error {
	data, err := Encode(snap)
	if err != nil {
		return &domain.PersistenceError{Op: "write", Err: err}
	}
	if err := s.storage.Set(ctx, s.key, data); err != nil {
		return &domain.PersistenceError{Op: "write", Err: err}
	}
	return nil
}

// History returns the persisted history, most recent first.
func (s *Store) History(ctx context.Context) ([]domain.HistoryItem, error) {
	snap, err := s.Read(ctx)
	return snap.History, err
}

// Favorites returns the persisted favorites, most recent first.
func (s *Store) Favorites(ctx context.Context) ([]domain.FavoriteItem, error) {
	snap, err := s.Read(ctx)
	return snap.Collections, err
}

// ToggleFavorite removes item from the persisted favorites when present,
// otherwise pins a copy at the head. The updated list is written before
// returning. A blob that fails to decode counts as an empty favorites
// list. A backend read failure is returned and nothing is written.
func (s *Store) ToggleFavorite(ctx context.Context, item domain.HistoryItem) ([]domain.FavoriteItem, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap, err := s.Read(ctx)
	if err != nil {
		var pe *domain.PersistenceError
		if !errors.As(err, &pe) || pe.Op != "decode" {
			return nil, false, err
		}
		s.log.Warn("favorites unreadable, starting from empty",
			logger.String("key", s.key),
			logger.Error(err),
		)
	}

	favs, added := domain.ToggleFavorite(snap.Collections, item, s.now().UnixMilli())
	snap.Collections = favs
	if err := s.write(ctx, snap); err != nil {
		return favs, added, err
	}
	return favs, added, nil
}

// Ping checks the backend.
func (s *Store) Ping(ctx context.Context) error {
	return s.storage.Ping(ctx)
}

// Close releases the backend.
func (s *Store) Close() error {
	return s.storage.Close()
}
