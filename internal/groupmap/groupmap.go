// Package groupmap implements an xxhash-bucketed map keyed by
// dataset.GroupedKey, standing in for the original engine's
// AHashMap<GroupedKey, AggregateState> per window.
package groupmap

import "github.com/streamql/streamql/dataset"

type entry[V any] struct {
	key   dataset.GroupedKey
	value V
}

// Map is a hash map keyed by dataset.GroupedKey, bucketed on the key's
// xxhash with chaining for collisions.
type Map[V any] struct {
	buckets map[uint64][]entry[V]
	count   int
}

// New returns an empty Map.
func New[V any]() *Map[V] {
	return &Map[V]{buckets: make(map[uint64][]entry[V])}
}

// Get returns the value stored for key, if any.
func (m *Map[V]) Get(key dataset.GroupedKey) (V, bool) {
	h := key.Hash()
	for _, e := range m.buckets[h] {
		if e.key.Equal(key) {
			return e.value, true
		}
	}
	var zero V
	return zero, false
}

// Set inserts or overwrites the value stored for key.
func (m *Map[V]) Set(key dataset.GroupedKey, value V) {
	h := key.Hash()
	bucket := m.buckets[h]
	for i, e := range bucket {
		if e.key.Equal(key) {
			bucket[i].value = value
			return
		}
	}
	m.buckets[h] = append(bucket, entry[V]{key: key, value: value})
	m.count++
}

// GetOrInsert returns the existing value for key, or inserts and returns
// the value produced by makeValue if key is not yet present.
func (m *Map[V]) GetOrInsert(key dataset.GroupedKey, makeValue func() V) V {
	if v, ok := m.Get(key); ok {
		return v
	}
	v := makeValue()
	m.Set(key, v)
	return v
}

// Len returns the number of distinct keys stored.
func (m *Map[V]) Len() int {
	return m.count
}

// Each calls f for every (key, value) pair. Iteration order is unspecified.
func (m *Map[V]) Each(f func(dataset.GroupedKey, V)) {
	for _, bucket := range m.buckets {
		for _, e := range bucket {
			f(e.key, e.value)
		}
	}
}
