// Copyright 2024 Dominik Honnef and contributors
// SPDX-License-Identifier: Apache-2.0 OR MIT

// Package mem provides small allocation-conscious containers.
package mem

import (
	"cmp"
	"iter"
	"slices"
	"sort"

	"golang.org/x/exp/constraints"
)

// SortedMap is a map backed by a slice kept sorted by key. Iteration is in
// ascending key order. It is meant for maps with a few thousand entries that
// are iterated more often than they are modified.
type SortedMap[K constraints.Ordered, V any] struct {
	entries []SortedMapEntry[K, V]
}

type SortedMapEntry[K constraints.Ordered, V any] struct {
	Key   K
	Value V
}

func (m *SortedMap[K, V]) find(key K) (int, bool) {
	return sort.Find(len(m.entries), func(i int) int {
		return cmp.Compare(key, m.entries[i].Key)
	})
}

// Insert adds key or overwrites its value.
func (m *SortedMap[K, V]) Insert(key K, value V) {
	idx, ok := m.find(key)
	if ok {
		m.entries[idx].Value = value
		return
	}
	m.entries = slices.Insert(m.entries, idx, SortedMapEntry[K, V]{key, value})
}

func (m *SortedMap[K, V]) Get(key K) (V, bool) {
	if idx, ok := m.find(key); ok {
		return m.entries[idx].Value, true
	} else {
		return *new(V), false
	}
}

// Delete removes key and reports whether it was present.
func (m *SortedMap[K, V]) Delete(key K) bool {
	idx, ok := m.find(key)
	if !ok {
		return false
	}
	m.entries = slices.Delete(m.entries, idx, idx+1)
	return true
}

func (m *SortedMap[K, V]) Len() int { return len(m.entries) }

func (m *SortedMap[K, V]) Reset() {
	clear(m.entries)
	m.entries = m.entries[:0]
}

// Entries returns a copy of the entries in key order.
func (m *SortedMap[K, V]) Entries() []SortedMapEntry[K, V] {
	return slices.Clone(m.entries)
}

// All must not be used while the map is being modified.
func (m *SortedMap[K, V]) All() iter.Seq2[K, V] {
	return func(yield func(K, V) bool) {
		for _, e := range m.entries {
			if !yield(e.Key, e.Value) {
				return
			}
		}
	}
}

func (m *SortedMap[K, V]) Keys() iter.Seq[K] {
	return func(yield func(K) bool) {
		for _, e := range m.entries {
			if !yield(e.Key) {
				return
			}
		}
	}
}

func (m *SortedMap[K, V]) Values() iter.Seq[V] {
	return func(yield func(V) bool) {
		for _, e := range m.entries {
			if !yield(e.Value) {
				return
			}
		}
	}
}
