// Package entity is the base capability composed by every domain service:
// typed JSON access to the path store plus the canonical path layout.
//
// It is injected, not inherited — a service holds a *Client and the store
// behind it can be swapped for a test double without touching the service.
package entity

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/and161185/geohunt/internal/pathstore"
)

// Client wraps a (typically namespaced) store with a JSON codec and
// normalizes absent collections to empty ones, so services never branch on
// "absent vs empty".
type Client struct {
	store pathstore.Store
}

// NewClient constructs the capability over the given store.
func NewClient(store pathstore.Store) *Client {
	return &Client{store: store}
}

// Exists reports whether a value is stored at the path.
func (c *Client) Exists(ctx context.Context, path string) (bool, error) {
	return c.store.Exists(ctx, path)
}

// Get decodes the value at the path into out. It returns false without
// touching out when the path is absent.
func (c *Client) Get(ctx context.Context, path string, out any) (bool, error) {
	raw, err := c.store.Get(ctx, path)
	if err != nil {
		return false, err
	}
	if raw == nil {
		return false, nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return false, fmt.Errorf("decode %s: %w", path, err)
	}
	return true, nil
}

// Set encodes v and writes it at the path, overwriting any previous value.
func (c *Client) Set(ctx context.Context, path string, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", path, err)
	}
	return c.store.Set(ctx, path, raw)
}

// Remove deletes the path and its subtree.
func (c *Client) Remove(ctx context.Context, path string) error {
	return c.store.Remove(ctx, path)
}

// Keys lists the immediate child keys of a collection path, empty when the
// collection is absent.
func (c *Client) Keys(ctx context.Context, path string) ([]string, error) {
	return c.store.Children(ctx, path)
}
