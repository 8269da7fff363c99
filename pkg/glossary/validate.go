// ABOUTME: Pre-deployment resource validation for glossaryctl
// ABOUTME: Collects all schema errors plus coverage and alias-overlap warnings

package glossary

import (
	"fmt"
	"strings"
)

// Report is the outcome of a full offline validation pass. Unlike BuildIndex,
// which fails fast, validation visits the entire resource and collects every
// finding so a curator can fix the file in one round.
type Report struct {
	Errors   []string       `json:"errors,omitempty"`
	Warnings []string       `json:"warnings,omitempty"`
	Coverage map[string]int `json:"coverage"` // Language code -> entries with a rendering
	Entries  int            `json:"entries"`
}

// OK reports whether the resource is deployable.
func (r *Report) OK() bool { return len(r.Errors) == 0 }

// Validate checks a resource against the load-time rules for the given
// languages and additionally flags duplicate and overlapping aliases that
// would silently lose matches in production.
func Validate(res *Resource, languages []string) *Report {
	rep := &Report{Coverage: make(map[string]int)}
	if res == nil || len(res.Entries) == 0 {
		rep.Errors = append(rep.Errors, ErrEmptyResource.Error())
		return rep
	}
	rep.Entries = len(res.Entries)

	ids := make(map[string]string)       // id -> term
	canonical := make(map[string]*Entry) // folded term -> entry
	type surface struct {
		text  string
		entry *Entry
		alias bool
	}
	var surfaces []surface

	for _, e := range res.Entries {
		if err := validateEntry(e, languages); err != nil {
			rep.Errors = append(rep.Errors, fmt.Sprintf("entry %q: %v", entryID(e), err))
			continue
		}
		if prev, dup := ids[e.ID]; dup {
			rep.Errors = append(rep.Errors, fmt.Sprintf("entry %q: %v (also used by %q)", e.ID, ErrDuplicateID, prev))
		}
		ids[e.ID] = e.Term

		folded := Fold(e.Term)
		if prev, dup := canonical[folded]; dup && prev.Context == nil && e.Context == nil {
			rep.Errors = append(rep.Errors, fmt.Sprintf("entry %q: %v (%q)", e.ID, ErrDuplicateTerm, e.Term))
		}
		canonical[folded] = e
		surfaces = append(surfaces, surface{text: folded, entry: e})
		for _, a := range e.Aliases {
			surfaces = append(surfaces, surface{text: Fold(a), entry: e, alias: true})
		}
		for lang, r := range e.Renderings {
			if strings.TrimSpace(r) != "" {
				rep.Coverage[lang]++
			}
		}
	}

	// Alias collisions with canonical terms are load-fatal; duplicate aliases
	// across entries and word-boundary overlaps only cost matches, so they
	// stay warnings.
	seenAlias := make(map[string]*Entry)
	for _, s := range surfaces {
		if !s.alias {
			continue
		}
		if owner, ok := canonical[s.text]; ok && owner != s.entry {
			rep.Errors = append(rep.Errors, fmt.Sprintf("entry %q: %v (alias %q owned by %q)",
				s.entry.ID, ErrAliasCollision, s.text, owner.ID))
		}
		if prev, ok := seenAlias[s.text]; ok && prev != s.entry {
			rep.Warnings = append(rep.Warnings, fmt.Sprintf("alias %q registered by both %q and %q; first registration wins",
				s.text, prev.ID, s.entry.ID))
			continue
		}
		seenAlias[s.text] = s.entry
	}

	for i := range surfaces {
		for j := i + 1; j < len(surfaces); j++ {
			a, b := surfaces[i], surfaces[j]
			if a.entry == b.entry || a.text == b.text {
				continue
			}
			if containsWord(a.text, b.text) || containsWord(b.text, a.text) {
				rep.Warnings = append(rep.Warnings, fmt.Sprintf("surface %q (%s) overlaps %q (%s); longest match wins at runtime",
					a.text, a.entry.ID, b.text, b.entry.ID))
			}
		}
	}

	return rep
}

// containsWord reports whether sub occurs in s on word boundaries.
func containsWord(s, sub string) bool {
	if len(sub) >= len(s) {
		return false
	}
	for off := 0; ; {
		i := strings.Index(s[off:], sub)
		if i < 0 {
			return false
		}
		start := off + i
		end := start + len(sub)
		beforeOK := start == 0 || !isWordByte(s[start-1])
		afterOK := end == len(s) || !isWordByte(s[end])
		if beforeOK && afterOK {
			return true
		}
		off = start + 1
	}
}

func isWordByte(b byte) bool {
	return b >= 'a' && b <= 'z' || b >= 'A' && b <= 'Z' || b >= '0' && b <= '9'
}
