// Package badgerstore implements pathstore.Store on an embedded Badger
// database, for single-node deployments that outlive the process.
package badgerstore

import (
	"context"
	"encoding/json"
	"errors"
	"sort"
	"strings"

	"github.com/dgraph-io/badger"

	"github.com/and161185/geohunt/internal/pathstore"
)

// Store holds an open Badger database. Paths map to keys byte-for-byte.
type Store struct {
	db *badger.DB
}

var _ pathstore.Store = (*Store)(nil)

// Open opens (creating if needed) a Badger database in dir.
func Open(dir string) (*Store, error) {
	db, err := badger.Open(badger.DefaultOptions(dir).WithLogger(nil))
	if err != nil {
		return nil, err
	}
	return &Store{db: db}, nil
}

// Close releases the database.
func (s *Store) Close() error { return s.db.Close() }

// Exists reports whether a value is stored at exactly this path.
func (s *Store) Exists(_ context.Context, path string) (bool, error) {
	var ok bool
	err := s.db.View(func(txn *badger.Txn) error {
		_, err := txn.Get([]byte(path))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		ok = true
		return nil
	})
	return ok, err
}

// Get returns the value at the path, or nil when absent.
func (s *Store) Get(_ context.Context, path string) (json.RawMessage, error) {
	var value json.RawMessage
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(path))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		value, err = item.ValueCopy(nil)
		return err
	})
	return value, err
}

// Set writes the value at the path, overwriting any previous value.
func (s *Store) Set(_ context.Context, path string, value json.RawMessage) error {
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(path), value)
	})
}

// Remove deletes the path and its subtree. Absent paths are a no-op.
func (s *Store) Remove(_ context.Context, path string) error {
	return s.db.Update(func(txn *badger.Txn) error {
		prefix := []byte(path + "/")
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		it := txn.NewIterator(opts)
		keys := [][]byte{[]byte(path)}
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			keys = append(keys, it.Item().KeyCopy(nil))
		}
		it.Close()
		for _, k := range keys {
			if err := txn.Delete(k); err != nil {
				return err
			}
		}
		return nil
	})
}

// Children returns the sorted immediate child segments below the path.
func (s *Store) Children(_ context.Context, path string) ([]string, error) {
	seen := map[string]bool{}
	err := s.db.View(func(txn *badger.Txn) error {
		prefix := []byte(path + "/")
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		it := txn.NewIterator(opts)
		defer it.Close()
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			seg := strings.TrimPrefix(string(it.Item().Key()), string(prefix))
			if i := strings.IndexByte(seg, '/'); i >= 0 {
				seg = seg[:i]
			}
			if seg != "" {
				seen[seg] = true
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	keys := make([]string, 0, len(seen))
	for k := range seen {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys, nil
}
