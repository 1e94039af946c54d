package selector

import (
	"slices"

	"github.com/goccy/go-yaml"
)

// Container is the mapping-like result of Pick and Omit.
type Container interface {
	Set(key string, value any)
	Get(key string) (any, bool)
	Keys() []string
	Len() int
}

// Factory builds an empty result container.
type Factory func() Container

// NewMap is the default Factory.
func NewMap() Container {
	return Map{}
}

// NewOrdered returns a Factory-compatible insertion-ordered container.
func NewOrdered() Container {
	return &Ordered{}
}

// Map is a plain map[string]any container.
type Map map[string]any

func (m Map) Set(key string, value any) { m[key] = value }

func (m Map) Get(key string) (any, bool) {
	value, ok := m[key]
	return value, ok
}

// Keys returns the keys in lexical order.
func (m Map) Keys() []string {
	keys := make([]string, 0, len(m))
	for key := range m {
		keys = append(keys, key)
	}
	slices.Sort(keys)
	return keys
}

func (m Map) Len() int { return len(m) }

// Entry is one key/value pair of an Ordered container.
type Entry struct {
	Key   string
	Value any
}

// Ordered preserves insertion order. Setting an existing key replaces its
// value in place.
type Ordered struct {
	entries []Entry
	index   map[string]int
}

func (o *Ordered) Set(key string, value any) {
	if i, ok := o.index[key]; ok {
		o.entries[i].Value = value
		return
	}
	if o.index == nil {
		o.index = make(map[string]int)
	}
	o.index[key] = len(o.entries)
	o.entries = append(o.entries, Entry{Key: key, Value: value})
}

func (o *Ordered) Get(key string) (any, bool) {
	if i, ok := o.index[key]; ok {
		return o.entries[i].Value, true
	}
	return nil, false
}

func (o *Ordered) Keys() []string {
	keys := make([]string, 0, len(o.entries))
	for _, entry := range o.entries {
		keys = append(keys, entry.Key)
	}
	return keys
}

func (o *Ordered) Len() int { return len(o.entries) }

// Entries returns a copy of the entries in insertion order.
func (o *Ordered) Entries() []Entry {
	return slices.Clone(o.entries)
}

// MarshalYAML emits the entries as a mapping in insertion order.
func (o *Ordered) MarshalYAML() (any, error) {
	out := make(yaml.MapSlice, 0, len(o.entries))
	for _, entry := range o.entries {
		out = append(out, yaml.MapItem{Key: entry.Key, Value: entry.Value})
	}
	return out, nil
}

// ToMap converts c, and every Container nested directly in its values, into
// plain map[string]any values.
func ToMap(c Container) map[string]any {
	out := make(map[string]any, c.Len())
	for _, key := range c.Keys() {
		value, _ := c.Get(key)
		if nested, ok := value.(Container); ok {
			value = ToMap(nested)
		}
		out[key] = value
	}
	return out
}
