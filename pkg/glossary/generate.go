// ABOUTME: Offline glossary generation from a tiered term corpus
// ABOUTME: Slugifies ids, applies tier defaults and deduplicates terms

package glossary

import (
	"strconv"
	"strings"
	"time"
	"unicode"
)

// Corpus is the curated input the generator consumes. Tiers group terms that
// share a category and default priority (ranks, prowords, acronyms and so on).
type Corpus struct {
	Description string       `json:"description,omitempty"`
	Tiers       []CorpusTier `json:"tiers"`
}

// CorpusTier carries defaults applied to every term it contains.
type CorpusTier struct {
	Name     string       `json:"name"`
	Category string       `json:"category"`
	Priority int          `json:"priority"`
	Terms    []CorpusTerm `json:"terms"`
}

// CorpusTerm is one curated term. Fields left zero inherit tier defaults.
type CorpusTerm struct {
	Term            string            `json:"term"`
	Renderings      map[string]string `json:"renderings"`
	Aliases         []string          `json:"aliases,omitempty"`
	Category        string            `json:"category,omitempty"`
	Priority        int               `json:"priority,omitempty"`
	ContextKeywords []string          `json:"context_keywords,omitempty"`
	Notes           string            `json:"notes,omitempty"`
}

// Generate builds a deployable resource from a corpus. Duplicate terms are
// dropped, first occurrence wins, so high-value tiers should come first.
// Entries that carry context keywords survive deduplication as homonyms.
func Generate(corpus *Corpus) *Resource {
	res := &Resource{
		Metadata: ResourceMeta{
			Version:     "1.0",
			Description: corpus.Description,
			LastUpdated: time.Now().Format("2006-01-02"),
		},
	}

	seen := make(map[string]bool) // Folded term -> present without context
	ids := make(map[string]int)
	for _, tier := range corpus.Tiers {
		for _, t := range tier.Terms {
			term := strings.TrimSpace(t.Term)
			if term == "" {
				continue
			}
			folded := Fold(term)
			if seen[folded] && len(t.ContextKeywords) == 0 {
				continue
			}
			if len(t.ContextKeywords) == 0 {
				seen[folded] = true
			}

			e := &Entry{
				ID:         uniqueID(ids, term),
				Term:       term,
				Aliases:    t.Aliases,
				Renderings: t.Renderings,
				Category:   t.Category,
				Priority:   t.Priority,
				Notes:      t.Notes,
			}
			if e.Category == "" {
				e.Category = tier.Category
			}
			if e.Priority == 0 {
				e.Priority = tier.Priority
			}
			if len(t.ContextKeywords) > 0 {
				e.Context = &Context{Keywords: t.ContextKeywords}
			}
			res.Entries = append(res.Entries, e)
		}
	}

	res.Metadata.Count = len(res.Entries)
	return res
}

func uniqueID(ids map[string]int, term string) string {
	slug := Slugify(term)
	if len(slug) > 80 {
		slug = slug[:80]
	}
	id := "dg_" + slug
	ids[id]++
	if n := ids[id]; n > 1 {
		return id + "_" + strconv.Itoa(n)
	}
	return id
}

// Slugify lowercases a term and collapses non-alphanumeric runs to single
// underscores.
func Slugify(s string) string {
	var b strings.Builder
	lastUnder := true // Suppress leading underscore
	for _, r := range strings.ToLower(strings.TrimSpace(s)) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
			lastUnder = false
		} else if !lastUnder {
			b.WriteByte('_')
			lastUnder = true
		}
	}
	out := strings.TrimRight(b.String(), "_")
	if out == "" {
		return "term"
	}
	return out
}
