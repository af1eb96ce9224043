// Package state holds the application state and the pure reducer that is
// the only way to change it.
package state

import (
	"github.com/MrSnakeDoc/muse/internal/domain"
	"github.com/MrSnakeDoc/muse/internal/persist"
)

// State is the whole in-memory application state.
type State struct {
	Theme         domain.Theme
	ActiveType    domain.CreationKind
	ActiveStyle   domain.Style
	Prompt        string
	Keywords      domain.Facets
	ImageKeywords domain.Facets
	Loading       bool
	Error         string
	Result        *domain.HistoryItem
	History       []domain.HistoryItem
	Collections   []domain.FavoriteItem
}

// Default is the state before anything is loaded.
func Default() State {
	return State{
		Theme:         domain.ThemeLight,
		ActiveType:    domain.KindWriting,
		ActiveStyle:   domain.StyleAncient,
		Keywords:      domain.Facets{},
		ImageKeywords: domain.Facets{},
		History:       []domain.HistoryItem{},
		Collections:   []domain.FavoriteItem{},
	}
}

// Snapshot extracts the persisted subset.
func (s State) Snapshot() persist.Snapshot {
	return persist.Snapshot{
		History:       s.History,
		Collections:   s.Collections,
		Theme:         s.Theme,
		ActiveStyle:   s.ActiveStyle,
		ActiveType:    s.ActiveType,
		Keywords:      s.Keywords,
		ImageKeywords: s.ImageKeywords,
	}
}

// IsFavorite reports whether id is among the favorites.
func (s State) IsFavorite(id string) bool {
	for _, f := range s.Collections {
		if f.ID == id {
			return true
		}
	}
	return false
}

// FindHistory returns the history entry with id.
func (s State) FindHistory(id string) (domain.HistoryItem, bool) {
	for _, h := range s.History {
		if h.ID == id {
			return h, true
		}
	}
	return domain.HistoryItem{}, false
}

// PersistedChanged reports whether any persisted field differs between a and b.
// Collections are compared by identity so a fresh slice with the same header
// still counts as a change.
func PersistedChanged(a, b State) bool {
	return a.Theme != b.Theme ||
		a.ActiveType != b.ActiveType ||
		a.ActiveStyle != b.ActiveStyle ||
		!sameFacets(a.Keywords, b.Keywords) ||
		!sameFacets(a.ImageKeywords, b.ImageKeywords) ||
		!sameSlice(a.History, b.History) ||
		!sameSlice(a.Collections, b.Collections)
}

func sameFacets(a, b domain.Facets) bool {
	if len(a) != len(b) {
		return false
	}
	for k, v := range a {
		if w, ok := b[k]; !ok || w != v {
			return false
		}
	}
	return true
}

func sameSlice[T any](a, b []T) bool {
	if len(a) != len(b) {
		return false
	}
	if len(a) == 0 {
		return true
	}
	return &a[0] == &b[0]
}
