// ABOUTME: Boundary-checked glossary term matching with overlap resolution
// ABOUTME: Longest match wins; homonyms resolved by token-window disambiguation

// Package match scans source text against a glossary index and returns a
// disjoint set of term occurrences. Scanning is explicit string comparison
// over pre-sorted candidate terms rather than regex, which keeps worst-case
// cost linear in text length per term even on adversarial repeated-prefix
// input.
package match

import (
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/anubhavsingh2004/lt-audio-translator/pkg/glossary"
)

// contextWindow is the number of tokens inspected on each side of a match
// when resolving homonymous entries.
const contextWindow = 6

// Span is one accepted term occurrence. Offsets are byte positions into the
// source text; Text preserves the original casing for diagnostics.
type Span struct {
	Start   int
	End     int
	Text    string
	EntryID string
}

type candidate struct {
	start, end int
	term       glossary.Term
}

// Find returns the accepted, pairwise non-overlapping term occurrences in
// text, ordered by start offset.
func Find(text string, idx *glossary.Index) []Span {
	if text == "" || idx == nil || idx.Len() == 0 {
		return nil
	}

	var cands []candidate
	for _, t := range idx.Terms() {
		cands = appendOccurrences(cands, text, t)
	}
	if len(cands) == 0 {
		return nil
	}

	// Longer matches always win a conflict regardless of scan order; among
	// equal lengths the leftmost wins, then entry priority, then
	// registration order.
	sort.SliceStable(cands, func(a, b int) bool {
		la, lb := cands[a].end-cands[a].start, cands[b].end-cands[b].start
		if la != lb {
			return la > lb
		}
		if cands[a].start != cands[b].start {
			return cands[a].start < cands[b].start
		}
		pa, pb := cands[a].term.Entry.Priority, cands[b].term.Entry.Priority
		if pa != pb {
			return pa > pb
		}
		return cands[a].term.Order < cands[b].term.Order
	})

	var accepted []candidate
	for _, c := range cands {
		if overlapsAny(accepted, c) {
			continue
		}
		accepted = append(accepted, c)
	}

	spans := make([]Span, len(accepted))
	for i, c := range accepted {
		entry := disambiguate(text, c, idx)
		spans[i] = Span{
			Start:   c.start,
			End:     c.end,
			Text:    text[c.start:c.end],
			EntryID: entry.ID,
		}
	}
	sort.Slice(spans, func(a, b int) bool { return spans[a].Start < spans[b].Start })
	return spans
}

func overlapsAny(accepted []candidate, c candidate) bool {
	for _, a := range accepted {
		if c.start < a.end && a.start < c.end {
			return true
		}
	}
	return false
}

// appendOccurrences collects every word-boundary-safe, case-insensitive
// occurrence of one term.
func appendOccurrences(cands []candidate, text string, t glossary.Term) []candidate {
	for i := 0; i < len(text); {
		_, width := utf8.DecodeRuneInString(text[i:])
		n, ok := matchFold(text[i:], t.Text)
		if ok && boundaryBefore(text, i) && boundaryAfter(text, i+n) {
			cands = append(cands, candidate{start: i, end: i + n, term: t})
			i += n
			continue
		}
		i += width
	}
	return cands
}

// matchFold reports whether s begins with term under rune-wise case folding
// and returns the number of bytes of s consumed.
func matchFold(s, term string) (int, bool) {
	i := 0
	for _, tr := range term {
		if i >= len(s) {
			return 0, false
		}
		sr, w := utf8.DecodeRuneInString(s[i:])
		if unicode.ToLower(sr) != unicode.ToLower(tr) {
			return 0, false
		}
		i += w
	}
	return i, true
}

func boundaryBefore(text string, pos int) bool {
	if pos == 0 {
		return true
	}
	r, _ := utf8.DecodeLastRuneInString(text[:pos])
	return !isWordRune(r)
}

func boundaryAfter(text string, pos int) bool {
	if pos >= len(text) {
		return true
	}
	r, _ := utf8.DecodeRuneInString(text[pos:])
	return !isWordRune(r)
}

func isWordRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r)
}

// disambiguate resolves which entry a matched surface form refers to.
// Resolution is deterministic and independent of token order inside the
// window: explicit context-keyword hit first (registration order among
// hits), then the group's highest-priority entry, then the first-registered
// entry.
func disambiguate(text string, c candidate, idx *glossary.Index) *glossary.Entry {
	group := idx.Homonyms(c.term.Folded)
	if len(group) <= 1 {
		return c.term.Entry
	}

	before := tokensBefore(text, c.start, contextWindow)
	after := tokensAfter(text, c.end, contextWindow)

	for _, e := range group {
		if e.Context == nil {
			continue
		}
		for _, kw := range e.Context.Keywords {
			if windowContains(before, kw) || windowContains(after, kw) {
				return e
			}
		}
	}

	best := group[0]
	for _, e := range group[1:] {
		if e.Priority > best.Priority {
			best = e
		}
	}
	return best
}

// windowContains reports whether the keyword (possibly multi-word) occurs as
// a run of adjacent tokens in the window.
func windowContains(window []string, keyword string) bool {
	kw := tokenize(glossary.Fold(keyword))
	if len(kw) == 0 || len(kw) > len(window) {
		return false
	}
	for i := 0; i+len(kw) <= len(window); i++ {
		hit := true
		for j := range kw {
			if window[i+j] != kw[j] {
				hit = false
				break
			}
		}
		if hit {
			return true
		}
	}
	return false
}

func tokensBefore(text string, pos, n int) []string {
	toks := tokenize(glossary.Fold(text[:pos]))
	if len(toks) > n {
		toks = toks[len(toks)-n:]
	}
	return toks
}

func tokensAfter(text string, pos, n int) []string {
	toks := tokenize(glossary.Fold(text[pos:]))
	if len(toks) > n {
		toks = toks[:n]
	}
	return toks
}

func tokenize(s string) []string {
	return strings.FieldsFunc(s, func(r rune) bool { return !isWordRune(r) })
}
