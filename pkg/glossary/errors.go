// Package glossary loads, validates and indexes the terminology resource
package glossary

import (
	"errors"
	"fmt"
)

var (
	// ErrEmptyTerm indicates an entry with no canonical term
	ErrEmptyTerm = errors.New("glossary: empty canonical term")

	// ErrEmptyID indicates an entry with no identifier
	ErrEmptyID = errors.New("glossary: empty entry id")

	// ErrEmptyResource indicates a resource with no entries
	ErrEmptyResource = errors.New("glossary: resource has no entries")

	// ErrDuplicateID indicates two entries sharing an identifier
	ErrDuplicateID = errors.New("glossary: duplicate entry id")

	// ErrDuplicateTerm indicates two entries with the same canonical term
	ErrDuplicateTerm = errors.New("glossary: duplicate canonical term")

	// ErrAliasCollision indicates an alias equal to another entry's canonical term
	ErrAliasCollision = errors.New("glossary: alias collides with canonical term")

	// ErrMissingRendering indicates an entry without a rendering for a configured language
	ErrMissingRendering = errors.New("glossary: missing rendering for configured language")
)

// ResourceError is a fatal glossary load failure. The serving path never runs
// against a resource that produced one.
type ResourceError struct {
	Path    string // Resource file, if known
	EntryID string // Offending entry, if known
	Err     error
}

func (e *ResourceError) Error() string {
	switch {
	case e.EntryID != "" && e.Path != "":
		return fmt.Sprintf("glossary resource %s: entry %q: %v", e.Path, e.EntryID, e.Err)
	case e.EntryID != "":
		return fmt.Sprintf("glossary resource: entry %q: %v", e.EntryID, e.Err)
	case e.Path != "":
		return fmt.Sprintf("glossary resource %s: %v", e.Path, e.Err)
	default:
		return fmt.Sprintf("glossary resource: %v", e.Err)
	}
}

func (e *ResourceError) Unwrap() error { return e.Err }
