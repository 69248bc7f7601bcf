// Package pathstore defines the path-addressed key-value store contract that
// every domain service talks to, plus the in-memory implementation used as
// the test double and default backend.
//
// The store is hierarchical only by convention: a path is a sequence of
// slash-delimited segments, a value is a JSON leaf, and a node's children are
// whatever deeper paths happen to exist. No operation spans more than one
// path atomically; multi-path consistency is the callers' problem.
package pathstore

import (
	"context"
	"encoding/json"
	"strings"
)

// Store is the adapter contract over a remote hierarchical key-value store.
// Implementations must make Set and Remove idempotent blind writes so that a
// caller retrying a partially-completed multi-path operation is safe.
type Store interface {
	// Exists reports whether a value is stored at exactly this path.
	Exists(ctx context.Context, path string) (bool, error)
	// Get returns the value at the path, or nil when absent.
	Get(ctx context.Context, path string) (json.RawMessage, error)
	// Set writes the value at the path, overwriting any previous value.
	Set(ctx context.Context, path string, value json.RawMessage) error
	// Remove deletes the path and its entire subtree. Removing an absent
	// path is a no-op.
	Remove(ctx context.Context, path string) error
	// Children returns the immediate child segment names below the path,
	// sorted, and empty (never nil-as-absent) when there are none.
	Children(ctx context.Context, path string) ([]string, error)
}

// Join builds a path from segments, skipping empty ones.
func Join(segments ...string) string {
	parts := make([]string, 0, len(segments))
	for _, s := range segments {
		if s != "" {
			parts = append(parts, s)
		}
	}
	return strings.Join(parts, "/")
}

// childSegment extracts the immediate child segment of prefix from a deeper
// path, or "" when path is not below prefix.
func childSegment(prefix, path string) string {
	if !strings.HasPrefix(path, prefix+"/") {
		return ""
	}
	rest := strings.TrimPrefix(path, prefix+"/")
	if i := strings.IndexByte(rest, '/'); i >= 0 {
		rest = rest[:i]
	}
	return rest
}

type namespaced struct {
	inner Store
	root  string
}

// Namespace returns a view of the store with every path prefixed by root,
// isolating one logical database (environment, test run) from another inside
// the same physical store.
func Namespace(inner Store, root string) Store {
	if root == "" {
		return inner
	}
	return &namespaced{inner: inner, root: root}
}

func (n *namespaced) Exists(ctx context.Context, path string) (bool, error) {
	return n.inner.Exists(ctx, Join(n.root, path))
}

func (n *namespaced) Get(ctx context.Context, path string) (json.RawMessage, error) {
	return n.inner.Get(ctx, Join(n.root, path))
}

func (n *namespaced) Set(ctx context.Context, path string, value json.RawMessage) error {
	return n.inner.Set(ctx, Join(n.root, path), value)
}

func (n *namespaced) Remove(ctx context.Context, path string) error {
	return n.inner.Remove(ctx, Join(n.root, path))
}

func (n *namespaced) Children(ctx context.Context, path string) ([]string, error) {
	return n.inner.Children(ctx, Join(n.root, path))
}
