package loader

import (
	"sort"
	"strings"
)

// LocationCache maps plugin keys to the library file that provides them.
// The first path recorded for a key is kept.
type LocationCache struct {
	paths     map[PluginKey]string
	populated bool
}

// NewLocationCache creates an empty, unpopulated cache.
func NewLocationCache() *LocationCache {
	return &LocationCache{paths: make(map[PluginKey]string)}
}

// Populated reports whether a scan has completed.
func (c *LocationCache) Populated() bool { return c.populated }

// MarkPopulated records that a scan has completed, even one that found
// nothing.
func (c *LocationCache) MarkPopulated() { c.populated = true }

// Add records path for key unless the key is already known. It reports
// whether path was recorded.
func (c *LocationCache) Add(key PluginKey, path string) bool {
	if _, ok := c.paths[key]; ok {
		return false
	}
	c.paths[key] = path
	return true
}

// Lookup returns the library path for key.
func (c *LocationCache) Lookup(key PluginKey) (string, bool) {
	p, ok := c.paths[key]
	return p, ok
}

// Keys returns every key sorted by library then identifier.
func (c *LocationCache) Keys() []PluginKey {
	keys := make([]PluginKey, 0, len(c.paths))
	for k := range c.paths {
		keys = append(keys, k)
	}
	sortKeys(keys)
	return keys
}

// Len returns the number of keys.
func (c *LocationCache) Len() int { return len(c.paths) }

func sortKeys(keys []PluginKey) {
	sort.Slice(keys, func(i, j int) bool {
		return strings.Compare(keys[i].String(), keys[j].String()) < 0
	})
}

// Taxonomy maps plugin keys to category hierarchies. Later entries for a
// key replace earlier ones.
type Taxonomy struct {
	categories map[PluginKey][]string
	populated  bool
}

// NewTaxonomy creates an empty, unpopulated taxonomy.
func NewTaxonomy() *Taxonomy {
	return &Taxonomy{categories: make(map[PluginKey][]string)}
}

// Populated reports whether category files have been read.
func (t *Taxonomy) Populated() bool { return t.populated }

// MarkPopulated records that category files have been read.
func (t *Taxonomy) MarkPopulated() { t.populated = true }

// Set replaces the hierarchy for key.
func (t *Taxonomy) Set(key PluginKey, hierarchy []string) {
	t.categories[key] = append([]string(nil), hierarchy...)
}

// Category returns the hierarchy for key, root first, or an empty slice.
func (t *Taxonomy) Category(key PluginKey) []string {
	return append([]string{}, t.categories[key]...)
}

// Len returns the number of categorised keys.
func (t *Taxonomy) Len() int { return len(t.categories) }
