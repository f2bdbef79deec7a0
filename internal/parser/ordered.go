package parser

import (
	"iter"
	"slices"
)

// Sortable is implemented by every entity stored in an OrderedMap so that
// sorting a mapping can recurse into its values.
type Sortable interface {
	Sort()
}

// OrderedMap is an insertion-ordered mapping whose Get creates missing
// entries through its factory. Values are expected to be pointers so that
// repeated Gets of the same key return the same entity.
type OrderedMap[V Sortable] struct {
	keys   []string
	values map[string]V
	newFn  func(key string) V
}

// NewOrderedMap returns an empty mapping that builds missing entries with newFn.
func NewOrderedMap[V Sortable](newFn func(key string) V) *OrderedMap[V] {
	return &OrderedMap[V]{
		values: make(map[string]V),
		newFn:  newFn,
	}
}

// Get returns the entry stored under key, creating and storing a default
// entry first if there is none.
func (m *OrderedMap[V]) Get(key string) V {
	if v, ok := m.values[key]; ok {
		return v
	}
	v := m.newFn(key)
	m.keys = append(m.keys, key)
	m.values[key] = v
	return v
}

// Lookup returns the entry stored under key without creating it.
func (m *OrderedMap[V]) Lookup(key string) (V, bool) {
	v, ok := m.values[key]
	return v, ok
}

// Len returns the number of entries.
func (m *OrderedMap[V]) Len() int {
	return len(m.keys)
}

// Keys returns a copy of the keys in order.
func (m *OrderedMap[V]) Keys() []string {
	return slices.Clone(m.keys)
}

// Values returns the entries in key order.
func (m *OrderedMap[V]) Values() []V {
	out := make([]V, 0, len(m.keys))
	for _, k := range m.keys {
		out = append(out, m.values[k])
	}
	return out
}

// All iterates over the entries in key order.
func (m *OrderedMap[V]) All() iter.Seq2[string, V] {
	return func(yield func(string, V) bool) {
		for _, k := range m.keys {
			if !yield(k, m.values[k]) {
				return
			}
		}
	}
}

// Sort sorts every value, then orders the keys lexicographically.
func (m *OrderedMap[V]) Sort() {
	for _, k := range m.keys {
		m.values[k].Sort()
	}
	slices.Sort(m.keys)
}
