// Package benchmark holds the fixed benchmark catalog and the alias matcher
// that maps declared dataset and metric names onto catalog keys.
package benchmark

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// ErrInvalidCatalog is returned when a catalog definition is unusable.
var ErrInvalidCatalog = errors.New("invalid benchmark catalog")

var nonAlnum = regexp.MustCompile(`[^a-z0-9]+`)

// Normalize lowercases s and collapses every non-alphanumeric run to one space.
func Normalize(s string) string {
	if s == "" {
		return ""
	}
	return strings.TrimSpace(nonAlnum.ReplaceAllString(strings.ToLower(s), " "))
}

// Definition describes one benchmark.
type Definition struct {
	Key     string
	Label   string
	Aliases []string
}

// matches reports whether any normalized alias is contained in any field.
func (s Definition) matches(aliases []string, fields []string) bool {
	for _, alias := range aliases {
		for _, field := range fields {
			if strings.Contains(field, alias) {
				return true
			}
		}
	}
	return false
}

// Catalog is an ordered, immutable set of benchmark definitions.
// Match order is insertion order, and the first matching definition wins.
type Catalog struct {
	defs    []Definition
	aliases [][]string // normalized, empty aliases dropped
	index   map[string]int
}

// NewCatalog validates definitions and freezes them into a Catalog.
func NewCatalog(defs ...Definition) (*Catalog, error) {
	if len(defs) == 0 {
		return nil, fmt.Errorf("%w: no benchmarks", ErrInvalidCatalog)
	}
	c := &Catalog{
		defs:    make([]Definition, 0, len(defs)),
		aliases: make([][]string, 0, len(defs)),
		index:   make(map[string]int, len(defs)),
	}
	for _, s := range defs {
		key := strings.TrimSpace(s.Key)
		if key == "" {
			return nil, fmt.Errorf("%w: empty key", ErrInvalidCatalog)
		}
		if _, dup := c.index[key]; dup {
			return nil, fmt.Errorf("%w: duplicate key %q", ErrInvalidCatalog, key)
		}
		norm := make([]string, 0, len(s.Aliases))
		for _, a := range s.Aliases {
			if n := Normalize(a); n != "" {
				norm = append(norm, n)
			}
		}
		if len(norm) == 0 {
			return nil, fmt.Errorf("%w: %q has no usable alias", ErrInvalidCatalog, key)
		}
		label := s.Label
		if label == "" {
			label = key
		}
		c.index[key] = len(c.defs)
		c.defs = append(c.defs, Definition{Key: key, Label: label, Aliases: append([]string(nil), s.Aliases...)})
		c.aliases = append(c.aliases, norm)
	}
	return c, nil
}

// Default returns the built-in catalog.
func Default() *Catalog {
	c, err := NewCatalog(DefaultDefinitions()...)
	if err != nil {
		panic(err)
	}
	return c
}

// DefaultDefinitions returns the built-in benchmark definitions.
func DefaultDefinitions() []Definition {
	return []Definition{
		{
			Key:     "mmlu",
			Label:   "MMLU",
			Aliases: []string{"mmlu", "massive multitask language understanding"},
		},
		{
			Key:     "bigcodebench",
			Label:   "BigCodeBench",
			Aliases: []string{"bigcodebench", "big code bench"},
		},
		{
			Key:   "arc_mc",
			Label: "ARC MC",
			Aliases: []string{
				"arc mc",
				"arc-challenge",
				"arc challenge",
				"arc multiple choice",
				"arc c",
			},
		},
	}
}

// Match returns the first definition whose aliases occur in any of the raw fields.
// Fields are normalized here; empty ones are ignored.
func (c *Catalog) Match(fields ...string) (Definition, bool) {
	norm := make([]string, 0, len(fields))
	for _, f := range fields {
		if n := Normalize(f); n != "" {
			norm = append(norm, n)
		}
	}
	if len(norm) == 0 {
		return Definition{}, false
	}
	for i, s := range c.defs {
		if s.matches(c.aliases[i], norm) {
			return c.at(i), true
		}
	}
	return Definition{}, false
}

// at returns a copy of the i-th definition.
func (c *Catalog) at(i int) Definition {
	s := c.defs[i]
	s.Aliases = append([]string(nil), s.Aliases...)
	return s
}

// Lookup finds a definition by key.
func (c *Catalog) Lookup(key string) (Definition, bool) {
	i, ok := c.index[key]
	if !ok {
		return Definition{}, false
	}
	return c.at(i), true
}

// Keys returns catalog keys in match order.
func (c *Catalog) Keys() []string {
	keys := make([]string, len(c.defs))
	for i, s := range c.defs {
		keys[i] = s.Key
	}
	return keys
}

// Len returns the number of benchmarks.
func (c *Catalog) Len() int { return len(c.defs) }
