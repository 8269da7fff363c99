// ABOUTME: Immutable glossary index built once from validated entries
// ABOUTME: Pre-sorts matchable strings by descending length for longest-match priority

package glossary

import (
	"sort"
	"strings"
	"time"
)

// Term is one matchable string (canonical term or alias) bound to its entry.
type Term struct {
	Text   string // As registered
	Folded string // Case-folded form used for matching keys
	Entry  *Entry
	Order  int // Registration order of the owning entry
}

// Index is an immutable snapshot of the glossary. It is built once by
// BuildIndex and never mutated, so any number of concurrent readers may share
// it without synchronization. A reload produces a whole new Index.
type Index struct {
	entries   []*Entry
	byID      map[string]*Entry
	terms     []Term              // All matchable strings, longest first
	bySurface map[string][]*Entry // Folded surface form -> entries in registration order
	languages []string
	loadedAt  time.Time
	version   string
}

// Fold normalizes a surface form for case-insensitive comparison.
func Fold(s string) string { return strings.ToLower(s) }

// BuildIndex validates entries and constructs an immutable index. languages
// lists the target-language codes the deployment serves; every entry must
// carry at least one rendering for each of them. Any malformed entry yields a
// *ResourceError and no index.
func BuildIndex(res *Resource, languages []string) (*Index, error) {
	idx := &Index{
		byID:      make(map[string]*Entry),
		bySurface: make(map[string][]*Entry),
		languages: languages,
		loadedAt:  time.Now(),
	}
	if res != nil {
		idx.version = res.Metadata.Version
	}
	if res == nil || len(res.Entries) == 0 {
		return nil, &ResourceError{Err: ErrEmptyResource}
	}

	canonical := make(map[string]*Entry) // Folded canonical term -> entry
	for i, e := range res.Entries {
		if err := validateEntry(e, languages); err != nil {
			return nil, &ResourceError{EntryID: entryID(e), Err: err}
		}
		if _, dup := idx.byID[e.ID]; dup {
			return nil, &ResourceError{EntryID: e.ID, Err: ErrDuplicateID}
		}
		folded := Fold(e.Term)
		if prev, dup := canonical[folded]; dup && prev.Context == nil && e.Context == nil {
			// Homonyms are legal only when disambiguation evidence exists on
			// at least one side; two plain duplicates are a data error.
			return nil, &ResourceError{EntryID: e.ID, Err: ErrDuplicateTerm}
		}
		canonical[folded] = e
		idx.byID[e.ID] = e
		idx.entries = append(idx.entries, e)
		idx.registerSurface(folded, e)
		idx.terms = append(idx.terms, Term{Text: e.Term, Folded: folded, Entry: e, Order: i})
		for _, a := range e.Aliases {
			af := Fold(a)
			idx.registerSurface(af, e)
			idx.terms = append(idx.terms, Term{Text: a, Folded: af, Entry: e, Order: i})
		}
	}

	// Aliases may not shadow a different entry's canonical term.
	for _, t := range idx.terms {
		if t.Folded == Fold(t.Entry.Term) {
			continue
		}
		if owner, ok := canonical[t.Folded]; ok && owner != t.Entry {
			return nil, &ResourceError{EntryID: t.Entry.ID, Err: ErrAliasCollision}
		}
	}

	// Longest first so the matcher collects phrase candidates before their
	// single-word fragments. Ties keep registration order for determinism.
	sort.SliceStable(idx.terms, func(a, b int) bool {
		return len(idx.terms[a].Folded) > len(idx.terms[b].Folded)
	})

	return idx, nil
}

func (x *Index) registerSurface(folded string, e *Entry) {
	for _, prev := range x.bySurface[folded] {
		if prev == e {
			return
		}
	}
	x.bySurface[folded] = append(x.bySurface[folded], e)
}

func validateEntry(e *Entry, languages []string) error {
	if e == nil || strings.TrimSpace(e.Term) == "" {
		return ErrEmptyTerm
	}
	if strings.TrimSpace(e.ID) == "" {
		return ErrEmptyID
	}
	for _, lang := range languages {
		if strings.TrimSpace(e.Renderings[lang]) == "" {
			return ErrMissingRendering
		}
	}
	return nil
}

func entryID(e *Entry) string {
	if e == nil {
		return ""
	}
	if e.ID != "" {
		return e.ID
	}
	return e.Term
}

// Terms returns all matchable strings, longest first.
func (x *Index) Terms() []Term { return x.terms }

// Entry resolves an entry id. The matcher only emits ids minted by this
// index, so lookups on the serving path cannot miss.
func (x *Index) Entry(id string) (*Entry, bool) {
	e, ok := x.byID[id]
	return e, ok
}

// Homonyms returns all entries registered under a folded surface form, in
// registration order.
func (x *Index) Homonyms(folded string) []*Entry { return x.bySurface[folded] }

// Entries returns all entries in registration order.
func (x *Index) Entries() []*Entry { return x.entries }

// Languages returns the target-language codes this index was validated for.
func (x *Index) Languages() []string { return x.languages }

// Len returns the number of entries.
func (x *Index) Len() int { return len(x.entries) }

// Stats summarizes the index.
func (x *Index) Stats() Stats {
	st := Stats{
		TotalEntries: len(x.entries),
		Categories:   make(map[string]int),
		Coverage:     make(map[string]int),
		LoadedAt:     x.loadedAt,
		Version:      x.version,
	}
	for _, e := range x.entries {
		if strings.ContainsRune(e.Term, ' ') {
			st.MultiWordPhrases++
		}
		if e.Category != "" {
			st.Categories[e.Category]++
		}
		for lang, r := range e.Renderings {
			if strings.TrimSpace(r) != "" {
				st.Coverage[lang]++
			}
		}
	}
	return st
}
