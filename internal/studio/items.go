package studio

import (
	"context"

	"github.com/MrSnakeDoc/muse/internal/domain"
	"github.com/MrSnakeDoc/muse/internal/state"
)

// lookup finds id in history, then favorites, then the current result.
func lookup(st state.State, id string) (domain.HistoryItem, bool) {
	if h, ok := st.FindHistory(id); ok {
		return h, true
	}
	for _, f := range st.Collections {
		if f.ID == id {
			return f.HistoryItem, true
		}
	}
	if st.Result != nil && st.Result.ID == id {
		return *st.Result, true
	}
	return domain.HistoryItem{}, false
}

// Find returns the history entry, favorite or current result with id.
func (s *Studio) Find(id string) (domain.HistoryItem, bool) {
	return lookup(s.State(), id)
}

// ToggleFavorite pins or unpins the item with id. The backend persists the
// change itself; the state mirrors the returned list.
func (s *Studio) ToggleFavorite(ctx context.Context, id string) (bool, error) {
	item, ok := lookup(s.State(), id)
	if !ok {
		return false, ErrUnknownItem
	}

	resp := s.backend.ToggleFavorite(ctx, item)
	if err := resp.Err(); err != nil {
		s.Dispatch(ctx, state.SetError{Message: resp.Error})
		return false, err
	}

	st := s.Dispatch(ctx, state.SetFavorites{Items: *resp.Data})
	return st.IsFavorite(id), nil
}

// SelectHistory shows a past item again: its kind, style, keywords and
// prompt become the active inputs and it becomes the current result.
func (s *Studio) SelectHistory(ctx context.Context, id string) (domain.HistoryItem, error) {
	item, ok := lookup(s.State(), id)
	if !ok {
		return domain.HistoryItem{}, ErrUnknownItem
	}

	actions := []state.Action{state.SetKind{Kind: item.Kind}}
	if item.Style != "" {
		actions = append(actions, state.SetStyle{Style: item.Style})
	}
	if item.Keywords.HasAny() {
		actions = append(actions, state.MergeKeywords{Patch: item.Keywords})
	}
	if item.ImageKeywords.HasAny() {
		actions = append(actions, state.MergeImageKeywords{Patch: item.ImageKeywords})
	}
	actions = append(actions,
		state.SetPrompt{Prompt: item.Prompt},
		state.SetResult{Item: &item},
	)
	s.Dispatch(ctx, actions...)
	return item, nil
}

// DeleteHistory removes the history entry with id. Favorites keep their copy.
func (s *Studio) DeleteHistory(ctx context.Context, id string) error {
	if _, ok := s.State().FindHistory(id); !ok {
		return ErrUnknownItem
	}
	s.Dispatch(ctx, state.DeleteHistory{ID: id})
	return nil
}
