// Package persist reads and writes the application snapshot, a single JSON
// blob under a fixed key.
package persist

import (
	"encoding/json"
	"fmt"

	"github.com/MrSnakeDoc/muse/internal/domain"
)

// Snapshot is the persisted subset of application state. The loading flag,
// prompt text and current result are never persisted.
type Snapshot struct {
	History       []domain.HistoryItem  `json:"history"`
	Collections   []domain.FavoriteItem `json:"collections"`
	Theme         domain.Theme          `json:"theme"`
	ActiveStyle   domain.Style          `json:"activeStyle"`
	ActiveType    domain.CreationKind   `json:"activeType"`
	Keywords      domain.Facets         `json:"keywords"`
	ImageKeywords domain.Facets         `json:"imageKeywords"`
}

// DefaultSnapshot is what a first run, or an unreadable blob, starts from.
func DefaultSnapshot() Snapshot {
	return Snapshot{
		History:       []domain.HistoryItem{},
		Collections:   []domain.FavoriteItem{},
		Theme:         domain.ThemeLight,
		ActiveStyle:   domain.StyleAncient,
		ActiveType:    domain.KindWriting,
		Keywords:      domain.Facets{},
		ImageKeywords: domain.Facets{},
	}
}

// Encode serializes s. Nil collections are written as empty arrays.
func Encode(s Snapshot) ([]byte, error) {
	s = s.normalized()
	data, err := json.Marshal(s)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal snapshot: %w", err)
	}
	return data, nil
}

// Decode parses a blob field by field. A blob that is not a JSON object
// yields the defaults and an error. A field that is missing or has drifted
// to another shape falls back to its default without failing the rest, and
// so does a single unreadable history or favorite entry.
func Decode(data []byte) (Snapshot, error) {
	out := DefaultSnapshot()

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return out, fmt.Errorf("failed to parse snapshot: %w", err)
	}

	out.History = decodeList(fields["history"], domain.HistoryLimit,
		func(h domain.HistoryItem) string { return h.ID })
	out.Collections = decodeList(fields["collections"], domain.FavoritesLimit,
		func(f domain.FavoriteItem) string { return f.ID })

	var theme domain.Theme
	if decodeField(fields["theme"], &theme) && theme.Valid() {
		out.Theme = theme
	}
	var style domain.Style
	if decodeField(fields["activeStyle"], &style) && style.Valid() {
		out.ActiveStyle = style
	}
	var kind domain.CreationKind
	if decodeField(fields["activeType"], &kind) && kind.Valid() {
		out.ActiveType = kind
	}
	var kw domain.Facets
	if decodeField(fields["keywords"], &kw) && kw != nil {
		out.Keywords = kw
	}
	var ikw domain.Facets
	if decodeField(fields["imageKeywords"], &ikw) && ikw != nil {
		out.ImageKeywords = ikw
	}

	return out, nil
}

func decodeField(raw json.RawMessage, dst any) bool {
	if len(raw) == 0 {
		return false
	}
	return json.Unmarshal(raw, dst) == nil
}

// decodeList keeps at most limit readable entries that carry an id.
func decodeList[T any](raw json.RawMessage, limit int, id func(T) string) []T {
	out := []T{}
	var items []json.RawMessage
	if !decodeField(raw, &items) {
		return out
	}
	for _, item := range items {
		if len(out) == limit {
			break
		}
		var v T
		if json.Unmarshal(item, &v) != nil || id(v) == "" {
			continue
		}
		out = append(out, v)
	}
	return out
}

func (s Snapshot) normalized() Snapshot {
	if s.History == nil {
		s.History = []domain.HistoryItem{}
	}
	if s.Collections == nil {
		s.Collections = []domain.FavoriteItem{}
	}
	if s.Keywords == nil {
		s.Keywords = domain.Facets{}
	}
	if s.ImageKeywords == nil {
		s.ImageKeywords = domain.Facets{}
	}
	return s
}
