package domain

// CreationKind selects which persona produces content.
type CreationKind string

const (
	KindWriting     CreationKind = "writing"
	KindDrawing     CreationKind = "drawing"
	KindInspiration CreationKind = "inspiration"
)

// Valid reports whether k is one of the known creation kinds.
func (k CreationKind) Valid() bool {
	switch k {
	case KindWriting, KindDrawing, KindInspiration:
		return true
	}
	return false
}

// Style is the aesthetic preference applied to written pieces.
type Style string

const (
	StyleAncient   Style = "ancient"
	StyleModern    Style = "modern"
	StyleFantasy   Style = "fantasy"
	StyleCyberpunk Style = "cyberpunk"
	StyleCampus    Style = "campus"
)

// Valid reports whether s is one of the known styles.
func (s Style) Valid() bool {
	switch s {
	case StyleAncient, StyleModern, StyleFantasy, StyleCyberpunk, StyleCampus:
		return true
	}
	return false
}

// Theme is the persisted colour theme of the front end.
type Theme string

const (
	ThemeLight Theme = "light"
	ThemeDark  Theme = "dark"
)

// Valid reports whether t is light or dark.
func (t Theme) Valid() bool {
	return t == ThemeLight || t == ThemeDark
}

const (
	// HistoryLimit bounds the history list, most-recent-first.
	HistoryLimit = 10
	// FavoritesLimit bounds the favorites list, most-recent-first.
	FavoritesLimit = 10
)

// Content is the normalized artifact produced by any provider.
//
// Every field is optional. Which ones are populated depends on the
// generation kind:
//
//   - writing:     Title, Body, Pairings, PlotHooks, Traits
//   - drawing:     ImageURL, Description
//   - inspiration: Pairings, Description, Traits
//
// Content is never mutated after it is produced.
type Content struct {
	Title       string   `json:"title,omitempty"`
	Body        string   `json:"body,omitempty"`
	Pairings    string   `json:"pairings,omitempty"`
	Traits      []string `json:"traits,omitempty"`
	PlotHooks   []string `json:"plotHooks,omitempty"`
	ImageURL    string   `json:"imageUrl,omitempty"`
	Description string   `json:"description,omitempty"`
}

// IsEmpty reports whether no field carries a value.
func (c Content) IsEmpty() bool {
	return c.Title == "" && c.Body == "" && c.Pairings == "" &&
		len(c.Traits) == 0 && len(c.PlotHooks) == 0 &&
		c.ImageURL == "" && c.Description == ""
}

// HistoryItem records one successful generation event.
type HistoryItem struct {
	// ─────────────────────────────
	// Identity (immutable)
	// ─────────────────────────────

	// ID is time-ordered and monotonic within a process.
	ID string `json:"id"`

	// Kind is the persona that produced the content.
	Kind CreationKind `json:"type"`

	// ─────────────────────────────
	// Inputs
	// ─────────────────────────────

	// Style is only set for writing.
	Style Style `json:"style,omitempty"`

	Prompt string `json:"prompt"`

	// Keywords is only set for writing, ImageKeywords only for drawing.
	Keywords      Facets `json:"keywords,omitempty"`
	ImageKeywords Facets `json:"imageKeywords,omitempty"`

	// ─────────────────────────────
	// Output
	// ─────────────────────────────

	Content Content `json:"content"`

	// Timestamp is the creation time in Unix milliseconds.
	Timestamp int64 `json:"timestamp"`
}

// FavoriteItem is an independent copy of a HistoryItem pinned by the user.
type FavoriteItem struct {
	HistoryItem

	// CollectedAt is the pin time in Unix milliseconds.
	CollectedAt int64 `json:"collectedAt"`
}

// PrependHistory puts item at the head of list and truncates to HistoryLimit.
// The input slice is not modified.
func PrependHistory(list []HistoryItem, item HistoryItem) []HistoryItem {
	out := make([]HistoryItem, 0, min(len(list)+1, HistoryLimit))
	out = append(out, item)
	for _, h := range list {
		if len(out) == HistoryLimit {
			break
		}
		out = append(out, h)
	}
	return out
}

// RemoveHistory returns list without the entries whose id matches.
func RemoveHistory(list []HistoryItem, id string) []HistoryItem {
	out := make([]HistoryItem, 0, len(list))
	for _, h := range list {
		if h.ID != id {
			out = append(out, h)
		}
	}
	return out
}

// ToggleFavorite removes the favorite with item's id if present, otherwise
// prepends a copy of item stamped with collectedAt and truncates to
// FavoritesLimit. The second return value reports whether item is now a favorite.
func ToggleFavorite(list []FavoriteItem, item HistoryItem, collectedAt int64) ([]FavoriteItem, bool) {
	out := make([]FavoriteItem, 0, len(list)+1)
	removed := false
	for _, f := range list {
		if f.ID == item.ID {
			removed = true
			continue
		}
		out = append(out, f)
	}
	if removed {
		return out, false
	}

	fav := FavoriteItem{HistoryItem: item.Clone(), CollectedAt: collectedAt}
	out = append([]FavoriteItem{fav}, out...)
	if len(out) > FavoritesLimit {
		out = out[:FavoritesLimit]
	}
	return out, true
}

// Clone returns a deep copy so favorites never share backing arrays with history.
func (h HistoryItem) Clone() HistoryItem {
	c := h
	c.Keywords = h.Keywords.Clone()
	c.ImageKeywords = h.ImageKeywords.Clone()
	c.Content.Traits = cloneStrings(h.Content.Traits)
	c.Content.PlotHooks = cloneStrings(h.Content.PlotHooks)
	return c
}

func cloneStrings(in []string) []string {
	if in == nil {
		return nil
	}
	out := make([]string, len(in))
	copy(out, in)
	return out
}
