package catalog

import (
	_ "embed"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/MrSnakeDoc/muse/internal/domain"
)

//go:embed catalog.yaml
var defaultCatalog []byte

// Catalog lists everything a user can pick before generating.
type Catalog struct {
	Personas []Persona          `yaml:"personas" json:"personas"`
	Styles   []StyleOption      `yaml:"styles" json:"styles"`
	Facets   map[string][]Facet `yaml:"facets" json:"facets"` // creation kind -> facets
	index    map[string]map[string]Facet
}

// Persona is the display identity behind a creation kind.
type Persona struct {
	Kind        domain.CreationKind `yaml:"kind" json:"kind"`
	Name        string              `yaml:"name" json:"name"`
	Persona     string              `yaml:"persona" json:"persona"`
	Description string              `yaml:"description" json:"description"`
}

// StyleOption is a selectable writing style.
type StyleOption struct {
	ID    domain.Style `yaml:"id" json:"id"`
	Label string       `yaml:"label" json:"label"`
}

// Facet is one keyword dimension with its selectable options.
type Facet struct {
	Key     string   `yaml:"key" json:"key"`
	Label   string   `yaml:"label" json:"label"`
	Options []string `yaml:"options" json:"options"`
}

// Default returns the embedded catalog.
func Default() *Catalog {
	c, err := Parse(defaultCatalog)
	if err != nil {
		panic(fmt.Sprintf("embedded catalog is invalid: %v", err))
	}
	return c
}

// Load reads a catalog file. An empty path yields the embedded default.
func Load(path string) (*Catalog, error) {
	if path == "" {
		return Default(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog file: %w", err)
	}
	return Parse(data)
}

// Parse decodes and validates catalog YAML.
func Parse(data []byte) (*Catalog, error) {
	var c Catalog
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("failed to parse catalog yaml: %w", err)
	}
	if err := c.build(); err != nil {
		return nil, err
	}
	return &c, nil
}

func (c *Catalog) build() error {
	for _, s := range c.Styles {
		if !s.ID.Valid() {
			return fmt.Errorf("catalog: unknown style %q", s.ID)
		}
	}
	c.index = make(map[string]map[string]Facet, len(c.Facets))
	for kind, facets := range c.Facets {
		if !domain.CreationKind(kind).Valid() {
			return fmt.Errorf("catalog: unknown creation kind %q", kind)
		}
		byKey := make(map[string]Facet, len(facets))
		for _, f := range facets {
			if f.Key == "" {
				return fmt.Errorf("catalog: facet without key under %q", kind)
			}
			if _, dup := byKey[f.Key]; dup {
				return fmt.Errorf("catalog: duplicate facet %q under %q", f.Key, kind)
			}
			byKey[f.Key] = f
		}
		c.index[kind] = byKey
	}
	return nil
}

// FacetsFor returns the facets of a creation kind in catalog order.
func (c *Catalog) FacetsFor(kind domain.CreationKind) []Facet {
	return c.Facets[string(kind)]
}

// HasFacet reports whether key is a facet of kind.
func (c *Catalog) HasFacet(kind domain.CreationKind, key string) bool {
	_, ok := c.index[string(kind)][key]
	return ok
}

// CheckFacet validates a facet key for kind. Values are free-form so users
// can type their own, only the key must be known.
func (c *Catalog) CheckFacet(kind domain.CreationKind, key string) error {
	if !c.HasFacet(kind, key) {
		return domain.NewValidationError("keywords", fmt.Sprintf("unknown %s keyword %q", kind, key))
	}
	return nil
}

// Persona returns the persona for kind.
func (c *Catalog) Persona(kind domain.CreationKind) (Persona, bool) {
	for _, p := range c.Personas {
		if p.Kind == kind {
			return p, true
		}
	}
	return Persona{}, false
}
