// Package memory provides an in-process vfs.Store keyed by path.
package memory

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/GriffinCanCode/docfs/internal/vfs"
)

var (
	// ErrExists is returned by Insert when the key is already taken.
	ErrExists = errors.New("record already exists")
	// ErrMissing is returned by Update when no record has the key.
	ErrMissing = errors.New("record does not exist")
)

// Store keeps entries in a map guarded by a RWMutex.
type Store struct {
	mu      sync.RWMutex
	entries map[string]vfs.Entry
}

// New creates an empty store.
func New() *Store {
	return &Store{entries: make(map[string]vfs.Entry)}
}

// NewWithEntries creates a store holding entries as-is. No tree invariant
// is checked, which lets tests seed corrupted records.
func NewWithEntries(entries []vfs.Entry) *Store {
	s := New()
	for _, e := range entries {
		s.entries[e.Path] = clone(e)
	}
	return s
}

// Lookup implements vfs.Store.
func (s *Store) Lookup(_ context.Context, path string) (vfs.Entry, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	e, ok := s.entries[path]
	if !ok {
		return vfs.Entry{}, false, nil
	}
	return clone(e), true, nil
}

// ListByParent implements vfs.Store.
func (s *Store) ListByParent(_ context.Context, parent string) ([]vfs.Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := []vfs.Entry{}
	for _, e := range s.entries {
		if e.Parent == parent && e.Path != parent {
			out = append(out, clone(e))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Name != out[j].Name {
			return out[i].Name < out[j].Name
		}
		return out[i].Path < out[j].Path
	})
	return out, nil
}

// Scan implements vfs.Store. Entries come back sorted by path.
func (s *Store) Scan(_ context.Context) ([]vfs.Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.snapshot(), nil
}

// Insert implements vfs.Store.
func (s *Store) Insert(_ context.Context, e vfs.Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.entries[e.Path]; ok {
		return fmt.Errorf("insert %s: %w", e.Path, ErrExists)
	}
	s.entries[e.Path] = clone(e)
	return nil
}

// Update implements vfs.Store.
func (s *Store) Update(_ context.Context, path string, f vfs.Fields) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[path]
	if !ok {
		return fmt.Errorf("update %s: %w", path, ErrMissing)
	}
	e.IsDir = f.IsDir
	e.Content = cloneString(f.Content)
	e.UpdatedAt = f.UpdatedAt
	s.entries[path] = e
	return nil
}

// Put stores e unconditionally, replacing any record with the same path.
func (s *Store) Put(e vfs.Entry) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.entries[e.Path] = clone(e)
}

// Len returns the number of stored records.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return len(s.entries)
}

// Entries returns a copy of every record sorted by path.
func (s *Store) Entries() []vfs.Entry {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.snapshot()
}

func (s *Store) snapshot() []vfs.Entry {
	out := make([]vfs.Entry, 0, len(s.entries))
	for _, e := range s.entries {
		out = append(out, clone(e))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Path < out[j].Path })
	return out
}

func clone(e vfs.Entry) vfs.Entry {
	e.Content = cloneString(e.Content)
	return e
}

func cloneString(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}
