// Package forges describes the source-code hosting services forgescan knows
// about: the domain links are matched against, the PubMed term used to count
// articles and the metadata API able to describe their repositories.
package forges

import (
	_ "embed"
	"fmt"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed forges.yaml
var defaultForges []byte

// Forge is one source-code hosting service.
type Forge struct {
	Name    string   `yaml:"name"`
	Domain  string   `yaml:"domain"`
	Term    string   `yaml:"term"`
	API     string   `yaml:"api,omitempty"`
	Aliases []string `yaml:"aliases,omitempty"`
}

// HasAPI reports whether repository metadata can be fetched for this forge.
func (f Forge) HasAPI() bool {
	return f.API != ""
}

// Catalog is an ordered set of forges.
type Catalog struct {
	byKey  map[string]int
	forges []Forge
}

type document struct {
	Forges []Forge `yaml:"forges"`
}

// Default returns the built-in catalog.
func Default() *Catalog {
	c, err := Parse(defaultForges)
	if err != nil {
		panic(fmt.Sprintf("invalid embedded forge catalog: %v", err))
	}

	return c
}

// Parse reads a YAML catalog.
func Parse(data []byte) (*Catalog, error) {
	var doc document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse forge catalog: %w", err)
	}

	c := &Catalog{byKey: make(map[string]int)}

	for _, f := range doc.Forges {
		f.Name = strings.ToLower(strings.TrimSpace(f.Name))
		f.Domain = strings.ToLower(strings.TrimSpace(f.Domain))

		if f.Name == "" || f.Domain == "" {
			return nil, fmt.Errorf("forge entry needs both a name and a domain: %+v", f)
		}

		keys := append([]string{f.Name, f.Domain}, f.Aliases...)
		for _, key := range keys {
			key = strings.ToLower(strings.TrimSpace(key))
			if _, exists := c.byKey[key]; exists {
				return nil, fmt.Errorf("forge key %q declared twice", key)
			}

			c.byKey[key] = len(c.forges)
		}

		c.forges = append(c.forges, f)
	}

	if len(c.forges) == 0 {
		return nil, fmt.Errorf("forge catalog is empty")
	}

	return c, nil
}

// Lookup finds a forge by name, domain or alias, case-insensitively.
func (c *Catalog) Lookup(key string) (Forge, bool) {
	idx, ok := c.byKey[strings.ToLower(strings.TrimSpace(key))]
	if !ok {
		return Forge{}, false
	}

	return c.forges[idx], true
}

// All returns the forges in catalog order.
func (c *Catalog) All() []Forge {
	out := make([]Forge, len(c.forges))
	copy(out, c.forges)

	return out
}

// Names returns the forge names sorted alphabetically.
func (c *Catalog) Names() []string {
	names := make([]string, 0, len(c.forges))
	for _, f := range c.forges {
		names = append(names, f.Name)
	}

	sort.Strings(names)

	return names
}

// Select returns the forges named in keys, in the given order. An empty
// keys slice selects the whole catalog.
func (c *Catalog) Select(keys []string) ([]Forge, error) {
	if len(keys) == 0 {
		return c.All(), nil
	}

	out := make([]Forge, 0, len(keys))
	for _, key := range keys {
		f, ok := c.Lookup(key)
		if !ok {
			return nil, fmt.Errorf("unknown forge %q (known: %s)", key, strings.Join(c.Names(), ", "))
		}

		out = append(out, f)
	}

	return out, nil
}
