package core

import (
	"bytes"
	"encoding/json"
	"iter"
)

// Map is a string-keyed map that remembers insertion order.
// Re-setting an existing key keeps its original position.
// The zero value is ready to use.
type Map[V any] struct {
	keys []string
	vals map[string]V
}

// Params holds tag parameters in declaration order.
type Params = Map[string]

// Attributes holds native record attributes in source order.
type Attributes = Map[any]

// NewParams returns an empty parameter map.
func NewParams() *Params {
	return &Params{}
}

// NewAttributes returns an empty attribute map.
func NewAttributes() *Attributes {
	return &Attributes{}
}

// Set stores v under key.
func (m *Map[V]) Set(key string, v V) {
	if m.vals == nil {
		m.vals = make(map[string]V)
	}
	if _, ok := m.vals[key]; !ok {
		m.keys = append(m.keys, key)
	}
	m.vals[key] = v
}

// Get returns the value stored under key.
func (m *Map[V]) Get(key string) (V, bool) {
	var zero V
	if m == nil || m.vals == nil {
		return zero, false
	}
	v, ok := m.vals[key]
	return v, ok
}

// Value returns the value under key, or the zero value.
func (m *Map[V]) Value(key string) V {
	v, _ := m.Get(key)
	return v
}

// Has reports whether key is present.
func (m *Map[V]) Has(key string) bool {
	_, ok := m.Get(key)
	return ok
}

// Delete removes key, preserving the order of the remaining keys.
func (m *Map[V]) Delete(key string) {
	if m == nil || m.vals == nil {
		return
	}
	if _, ok := m.vals[key]; !ok {
		return
	}
	delete(m.vals, key)
	for i, k := range m.keys {
		if k == key {
			m.keys = append(m.keys[:i:i], m.keys[i+1:]...)
			break
		}
	}
}

// Len returns the number of keys.
func (m *Map[V]) Len() int {
	if m == nil {
		return 0
	}
	return len(m.keys)
}

// Keys returns a copy of the keys in insertion order.
func (m *Map[V]) Keys() []string {
	if m == nil {
		return nil
	}
	out := make([]string, len(m.keys))
	copy(out, m.keys)
	return out
}

// All iterates key/value pairs in insertion order.
func (m *Map[V]) All() iter.Seq2[string, V] {
	return func(yield func(string, V) bool) {
		if m == nil {
			return
		}
		for _, k := range m.keys {
			if !yield(k, m.vals[k]) {
				return
			}
		}
	}
}

// Clone returns a shallow copy.
func (m *Map[V]) Clone() *Map[V] {
	out := &Map[V]{}
	for k, v := range m.All() {
		out.Set(k, v)
	}
	return out
}

// MarshalJSON encodes the map as a JSON object with keys in insertion order.
func (m *Map[V]) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	i := 0
	for k, v := range m.All() {
		if i > 0 {
			buf.WriteByte(',')
		}
		kb, err := json.Marshal(k)
		if err != nil {
			return nil, err
		}
		vb, err := json.Marshal(v)
		if err != nil {
			return nil, err
		}
		buf.Write(kb)
		buf.WriteByte(':')
		buf.Write(vb)
		i++
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}
