package domain

import "sort"

// Facets maps a keyword facet (e.g. "seme", "lighting") to its selected value.
// An absent key means the facet is unselected.
type Facets map[string]string

// Toggle returns a copy of f where key is set to value, unless value is
// already the active selection, in which case key is cleared.
// An empty value always clears key. f itself is never modified.
func Toggle(f Facets, key, value string) Facets {
	out := f.Clone()
	if out == nil {
		out = Facets{}
	}
	if value == "" || out[key] == value {
		delete(out, key)
		return out
	}
	out[key] = value
	return out
}

// Merge returns a copy of f with every entry of patch applied through Toggle.
func Merge(f Facets, patch Facets) Facets {
	out := f.Clone()
	for _, k := range patch.Keys() {
		out = Toggle(out, k, patch[k])
	}
	return out
}

// HasAny reports whether at least one facet carries a value.
func (f Facets) HasAny() bool {
	for _, v := range f {
		if v != "" {
			return true
		}
	}
	return false
}

// Get returns the value for key or def when unselected.
func (f Facets) Get(key, def string) string {
	if v, ok := f[key]; ok && v != "" {
		return v
	}
	return def
}

// Keys returns the selected facet keys in sorted order.
func (f Facets) Keys() []string {
	keys := make([]string, 0, len(f))
	for k := range f {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Clone returns a copy of f, or nil for a nil map.
func (f Facets) Clone() Facets {
	if f == nil {
		return nil
	}
	out := make(Facets, len(f))
	for k, v := range f {
		out[k] = v
	}
	return out
}
