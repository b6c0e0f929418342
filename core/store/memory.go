package store

import (
	"context"
	"slices"
	"sync"

	"dat-catalog/core/items"
)

// Memory keeps buckets in a map. Items are copied on the way in and out so
// callers never share state with the store.
type Memory struct {
	mu      sync.RWMutex
	buckets map[string][]*items.Item
	order   []string
}

// NewMemory creates an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{buckets: make(map[string][]*items.Item)}
}

func (m *Memory) EnsureKey(_ context.Context, key string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.ensure(key), nil
}

func (m *Memory) ensure(key string) bool {
	if _, ok := m.buckets[key]; ok {
		return true
	}
	m.buckets[key] = nil
	m.order = append(m.order, key)
	return false
}

func (m *Memory) Fetch(_ context.Context, key string) ([]*items.Item, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return cloneAll(m.buckets[key]), nil
}

func (m *Memory) Replace(_ context.Context, key string, list []*items.Item) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ensure(key)
	m.buckets[key] = cloneAll(list)
	return nil
}

func (m *Memory) Append(_ context.Context, key string, list ...*items.Item) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ensure(key)
	m.buckets[key] = append(m.buckets[key], cloneAll(list)...)
	return nil
}

func (m *Memory) DeleteKey(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.buckets[key]; !ok {
		return nil
	}
	delete(m.buckets, key)
	m.order = slices.DeleteFunc(m.order, func(k string) bool { return k == key })
	return nil
}

// Keys returns keys in creation order.
func (m *Memory) Keys(_ context.Context) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return slices.Clone(m.order), nil
}

func cloneAll(list []*items.Item) []*items.Item {
	out := make([]*items.Item, len(list))
	for i, it := range list {
		out[i] = it.Clone()
	}
	return out
}
