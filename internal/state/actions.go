package state

import (
	"github.com/MrSnakeDoc/muse/internal/domain"
	"github.com/MrSnakeDoc/muse/internal/persist"
)

// Action is a state transition request. Each concrete type is one transition.
type Action interface {
	apply(State) State
}

type SetTheme struct{ Theme domain.Theme }

// SetKind switches the active creation kind and clears the in-progress
// input and the current result. History and favorites are untouched.
type SetKind struct{ Kind domain.CreationKind }

// SetStyle replaces the active style. Styles are a pure set, not a toggle.
type SetStyle struct{ Style domain.Style }

// ToggleKeyword selects Value for Key, or clears Key when Value is already active.
type ToggleKeyword struct{ Key, Value string }

// ToggleImageKeyword is ToggleKeyword for the drawing facets.
type ToggleImageKeyword struct{ Key, Value string }

// MergeKeywords applies every entry of Patch through ToggleKeyword.
type MergeKeywords struct{ Patch domain.Facets }

// MergeImageKeywords applies every entry of Patch through ToggleImageKeyword.
type MergeImageKeywords struct{ Patch domain.Facets }

type SetPrompt struct{ Prompt string }

type SetLoading struct{ Loading bool }

// SetError replaces the user-facing error message, empty clears it.
type SetError struct{ Message string }

// SetResult replaces the displayed result. A nil Item clears it.
type SetResult struct{ Item *domain.HistoryItem }

// AddHistory prepends Item and truncates to the history bound.
type AddHistory struct{ Item domain.HistoryItem }

type DeleteHistory struct{ ID string }

// SetFavorites replaces the favorites list wholesale.
type SetFavorites struct{ Items []domain.FavoriteItem }

// LoadSnapshot merges persisted fields into the state.
type LoadSnapshot struct{ Snapshot persist.Snapshot }

func (a SetTheme) apply(s State) State {
	if a.Theme.Valid() {
		s.Theme = a.Theme
	}
	return s
}

func (a SetKind) apply(s State) State {
	if !a.Kind.Valid() {
		return s
	}
	s.ActiveType = a.Kind
	s.Prompt = ""
	s.Keywords = domain.Facets{}
	s.ImageKeywords = domain.Facets{}
	s.Result = nil
	s.Error = ""
	return s
}

func (a SetStyle) apply(s State) State {
	if a.Style.Valid() {
		s.ActiveStyle = a.Style
	}
	return s
}

func (a ToggleKeyword) apply(s State) State {
	s.Keywords = domain.Toggle(s.Keywords, a.Key, a.Value)
	return s
}

func (a ToggleImageKeyword) apply(s State) State {
	s.ImageKeywords = domain.Toggle(s.ImageKeywords, a.Key, a.Value)
	return s
}

func (a MergeKeywords) apply(s State) State {
	s.Keywords = domain.Merge(s.Keywords, a.Patch)
	return s
}

func (a MergeImageKeywords) apply(s State) State {
	s.ImageKeywords = domain.Merge(s.ImageKeywords, a.Patch)
	return s
}

func (a SetPrompt) apply(s State) State {
	s.Prompt = a.Prompt
	return s
}

func (a SetLoading) apply(s State) State {
	s.Loading = a.Loading
	return s
}

func (a SetError) apply(s State) State {
	s.Error = a.Message
	return s
}

func (a SetResult) apply(s State) State {
	if a.Item == nil {
		s.Result = nil
		return s
	}
	item := a.Item.Clone()
	s.Result = &item
	return s
}

func (a AddHistory) apply(s State) State {
	s.History = domain.PrependHistory(s.History, a.Item)
	return s
}

func (a DeleteHistory) apply(s State) State {
	s.History = domain.RemoveHistory(s.History, a.ID)
	return s
}

func (a SetFavorites) apply(s State) State {
	items := make([]domain.FavoriteItem, len(a.Items))
	copy(items, a.Items)
	s.Collections = items
	return s
}

func (a LoadSnapshot) apply(s State) State {
	snap := a.Snapshot
	if snap.History != nil {
		n := min(len(snap.History), domain.HistoryLimit)
		s.History = append([]domain.HistoryItem{}, snap.History[:n]...)
	}
	if snap.Collections != nil {
		s.Collections = append([]domain.FavoriteItem{}, snap.Collections...)
	}
	if snap.Theme.Valid() {
		s.Theme = snap.Theme
	}
	if snap.ActiveStyle.Valid() {
		s.ActiveStyle = snap.ActiveStyle
	}
	if snap.ActiveType.Valid() {
		s.ActiveType = snap.ActiveType
	}
	if snap.Keywords != nil {
		s.Keywords = snap.Keywords.Clone()
	}
	if snap.ImageKeywords != nil {
		s.ImageKeywords = snap.ImageKeywords.Clone()
	}
	return s
}

// Reduce applies a to s and returns the new state. s is never modified.
// A nil action returns s unchanged.
func Reduce(s State, a Action) State {
	if a == nil {
		return s
	}
	return a.apply(s)
}
