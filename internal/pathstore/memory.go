package pathstore

import (
	"context"
	"encoding/json"
	"sort"
	"strings"
	"sync"
)

// Memory is a mutex-guarded in-process Store. It backs tests and local runs;
// persistent deployments use the badgerstore or postgres backends.
type Memory struct {
	mu   sync.RWMutex
	data map[string]json.RawMessage
}

var _ Store = (*Memory)(nil)

// NewMemory constructs an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{data: map[string]json.RawMessage{}}
}

// Exists reports whether a value is stored at exactly this path.
func (m *Memory) Exists(_ context.Context, path string) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.data[path]
	return ok, nil
}

// Get returns the value at the path, or nil when absent.
func (m *Memory) Get(_ context.Context, path string) (json.RawMessage, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.data[path]
	if !ok {
		return nil, nil
	}
	return append(json.RawMessage(nil), v...), nil
}

// Set writes the value at the path, overwriting any previous value.
func (m *Memory) Set(_ context.Context, path string, value json.RawMessage) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[path] = append(json.RawMessage(nil), value...)
	return nil
}

// Remove deletes the path and its subtree. Absent paths are a no-op.
func (m *Memory) Remove(_ context.Context, path string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, path)
	prefix := path + "/"
	for k := range m.data {
		if strings.HasPrefix(k, prefix) {
			delete(m.data, k)
		}
	}
	return nil
}

// Children returns the sorted immediate child segments below the path.
func (m *Memory) Children(_ context.Context, path string) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	seen := map[string]bool{}
	for k := range m.data {
		if seg := childSegment(path, k); seg != "" {
			seen[seg] = true
		}
	}
	keys := make([]string, 0, len(seen))
	for k := range seen {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys, nil
}
