// ABOUTME: Glossary store with atomic snapshot replacement
// ABOUTME: Load is fatal on malformed data; Reload swaps copy-on-write

package glossary

import (
	"encoding/json"
	"fmt"
	"os"
	"sync/atomic"
)

// Store owns the active glossary index. The index itself is immutable;
// Reload builds a fresh one and swaps the pointer, so readers holding an
// older snapshot finish their request against it. There are no locks on the
// read path.
type Store struct {
	path      string
	languages []string
	active    atomic.Pointer[Index]
}

// NewStore creates a store for the resource at path, validated against the
// given target-language codes. No data is read until Load.
func NewStore(path string, languages []string) *Store {
	return &Store{path: path, languages: languages}
}

// Load reads, validates and activates the resource. A malformed resource is
// fatal: the caller must refuse to start serving rather than run with
// protection silently disabled.
func (s *Store) Load() (*Index, error) {
	idx, err := s.build()
	if err != nil {
		return nil, err
	}
	s.active.Store(idx)
	return idx, nil
}

// Reload builds a new index from the resource and atomically replaces the
// active one. On failure the previous snapshot stays active untouched.
func (s *Store) Reload() (*Index, error) {
	idx, err := s.build()
	if err != nil {
		return nil, err
	}
	s.active.Store(idx)
	return idx, nil
}

// Snapshot returns the active index. Callers keep the returned pointer for
// the duration of one request; a concurrent reload does not affect it.
func (s *Store) Snapshot() *Index {
	return s.active.Load()
}

func (s *Store) build() (*Index, error) {
	res, err := ReadResource(s.path)
	if err != nil {
		return nil, err
	}
	idx, err := BuildIndex(res, s.languages)
	if err != nil {
		if rerr, ok := err.(*ResourceError); ok && rerr.Path == "" {
			rerr.Path = s.path
		}
		return nil, err
	}
	return idx, nil
}

// ReadResource parses a glossary resource file.
func ReadResource(path string) (*Resource, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, &ResourceError{Path: path, Err: err}
	}
	var res Resource
	if err := json.Unmarshal(raw, &res); err != nil {
		return nil, &ResourceError{Path: path, Err: fmt.Errorf("invalid JSON: %w", err)}
	}
	return &res, nil
}
