// ABOUTME: Placeholder recovery from translated text with a fuzzy cascade
// ABOUTME: Exact match first, then separator-stripped, digit-run and nearest-id recovery

// Package restore scans translated text for placeholder tokens and
// substitutes the target-language rendering in place. The translation model
// is an uncontrolled black box: it may carry a token through verbatim, fold
// its case, inject whitespace or punctuation between its segments, or
// corrupt the digits. Each candidate fragment runs a small state machine
// (scanning -> matched exact | matched fuzzy | unresolved); ambiguity always
// falls through to unresolved rather than risking a wrong substitution.
package restore

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/anubhavsingh2004/lt-audio-translator/pkg/protect"
)

// Kind classifies a non-fatal restoration finding.
type Kind string

const (
	// CoverageGap: the entry has no rendering for the requested language;
	// the canonical term was substituted instead.
	CoverageGap Kind = "coverage_gap"

	// UnresolvedPlaceholder: the fuzzy cascade exhausted without an
	// unambiguous id; the fragment was left untouched.
	UnresolvedPlaceholder Kind = "unresolved_placeholder"
)

// Diagnostic reports one finding. Position is a byte offset into the
// translated text as received, before any substitution.
type Diagnostic struct {
	Kind     Kind   `json:"kind"`
	Position int    `json:"position"`
	Detail   string `json:"detail"`
}

// maxIDEditDistance bounds nearest-id recovery when digits are partially
// corrupted: a fragment's digit string must be within this Levenshtein
// distance of exactly one valid zero-padded id. Two edits tolerate one lost
// plus one substituted digit of a four-digit id while keeping the chance of
// crossing over to a different live id low for the small per-request id
// ranges this system produces.
const maxIDEditDistance = 2

// maxBodyLen caps how far the scanner reads into a candidate fragment body
// before giving up on finding a closing bracket.
const maxBodyLen = 16

type state int

const (
	stateScanning state = iota
	stateMatchedExact
	stateMatchedFuzzy
	stateUnresolved
)

// Restore substitutes placeholder fragments in translated text with the
// target-language rendering of their bound entries and reports non-fatal
// findings. Text containing no placeholder-like fragments is returned
// unchanged; substitution is strictly in place and never reorders
// surrounding text.
func Restore(translated string, prot protect.Result, targetLang string) (string, []Diagnostic) {
	if len(prot.Bindings) == 0 {
		// Nothing was protected, so nothing can be restored: identity.
		return translated, nil
	}

	var diags []Diagnostic
	var b strings.Builder
	b.Grow(len(translated))

	i := 0
	for i < len(translated) {
		start, length, ok := nextCandidate(translated, i)
		if !ok {
			b.WriteString(translated[i:])
			break
		}
		b.WriteString(translated[i:start])
		frag := translated[start : start+length]

		id, st := resolve(frag, prot)
		switch st {
		case stateMatchedExact, stateMatchedFuzzy:
			binding, bound := prot.Lookup(id)
			if !bound || binding.Entry == nil {
				diags = append(diags, unresolved(start, frag))
				b.WriteString(frag)
				break
			}
			rendering := binding.Entry.Renderings[targetLang]
			if strings.TrimSpace(rendering) == "" {
				rendering = binding.Entry.Term
				diags = append(diags, Diagnostic{
					Kind:     CoverageGap,
					Position: start,
					Detail:   fmt.Sprintf("entry %q has no %s rendering, canonical term used", binding.Entry.ID, targetLang),
				})
			}
			b.WriteString(rendering)
		default:
			diags = append(diags, unresolved(start, frag))
			b.WriteString(frag)
		}
		i = start + length
	}

	return b.String(), diags
}

func unresolved(pos int, frag string) Diagnostic {
	return Diagnostic{
		Kind:     UnresolvedPlaceholder,
		Position: pos,
		Detail:   fmt.Sprintf("placeholder-like fragment %q could not be recovered", frag),
	}
}

// resolve runs the recovery cascade for one fragment.
func resolve(frag string, prot protect.Result) (int, state) {
	maxID := protect.BaseID + len(prot.Bindings) - 1

	// Exact literal token.
	if id, ok := parseStrict(frag); ok {
		if id >= protect.BaseID && id <= maxID {
			return id, stateMatchedExact
		}
		// A well-formed token with an id this request never issued still
		// gets a chance at nearest-id recovery below.
	}

	digits := digitRuns(frag)
	if digits == "" {
		return 0, stateUnresolved
	}

	// Separator noise and case folding stripped away, the digit runs are the
	// intended id when they parse into the issued range.
	if len(digits) <= 9 {
		if id, err := strconv.Atoi(digits); err == nil && id >= protect.BaseID && id <= maxID {
			return id, stateMatchedFuzzy
		}
	}

	// Partial digit corruption: accept the nearest valid id only when it is
	// unique within the edit-distance bound.
	bestID, bestDist, ties := 0, maxIDEditDistance+1, 0
	for id := protect.BaseID; id <= maxID; id++ {
		want := fmt.Sprintf("%0*d", protect.IDWidth, id)
		d := levenshtein(digits, want)
		switch {
		case d < bestDist:
			bestID, bestDist, ties = id, d, 1
		case d == bestDist:
			ties++
		}
	}
	if bestDist <= maxIDEditDistance && ties == 1 {
		return bestID, stateMatchedFuzzy
	}
	return 0, stateUnresolved
}

// parseStrict accepts only the literal token shape emitted by protect.
func parseStrict(frag string) (int, bool) {
	want := len(protect.TokenPrefix) + protect.IDWidth + len(protect.TokenSuffix)
	if len(frag) != want {
		return 0, false
	}
	if !strings.HasPrefix(frag, protect.TokenPrefix) || !strings.HasSuffix(frag, protect.TokenSuffix) {
		return 0, false
	}
	body := frag[len(protect.TokenPrefix) : len(frag)-len(protect.TokenSuffix)]
	for i := 0; i < len(body); i++ {
		if body[i] < '0' || body[i] > '9' {
			return 0, false
		}
	}
	id, err := strconv.Atoi(body)
	return id, err == nil
}

func digitRuns(frag string) string {
	var b strings.Builder
	for i := 0; i < len(frag); i++ {
		if frag[i] >= '0' && frag[i] <= '9' {
			b.WriteByte(frag[i])
		}
	}
	return b.String()
}

// nextCandidate finds the next placeholder-like fragment at or after from.
// A candidate is either bracketed ('<' ... 'P' ... 'H' ... '>') or a bare
// P/H pair at a word boundary followed by digits.
func nextCandidate(text string, from int) (int, int, bool) {
	for i := from; i < len(text); {
		r, w := utf8.DecodeRuneInString(text[i:])
		switch {
		case r == '<':
			if n, ok := parseCandidate(text[i:], true); ok {
				return i, n, true
			}
		case r == 'P' || r == 'p':
			if boundaryBefore(text, i) {
				if n, ok := parseCandidate(text[i:], false); ok {
					return i, n, true
				}
			}
		}
		i += w
	}
	return 0, 0, false
}

// parseCandidate consumes one candidate fragment from the head of s.
// Grammar: opt('<') sep* [pP] sep* [hH] body, where body is a bounded run of
// digits and separators; a bracketed candidate may close with '>' even when
// every digit was destroyed, a bare one must contain digits.
func parseCandidate(s string, bracketed bool) (int, bool) {
	pos := 0
	if bracketed {
		pos++ // '<'
		pos = skipSeps(s, pos)
	}
	if pos >= len(s) || (s[pos] != 'P' && s[pos] != 'p') {
		return 0, false
	}
	pos++
	pos = skipSeps(s, pos)
	if pos >= len(s) || (s[pos] != 'H' && s[pos] != 'h') {
		return 0, false
	}
	pos++

	digitCount := 0
	sepBeforeDigits := false
	lastDigit := pos
	limit := pos + maxBodyLen
	for pos < len(s) && pos < limit {
		r, w := utf8.DecodeRuneInString(s[pos:])
		if r >= '0' && r <= '9' {
			digitCount++
			pos += w
			lastDigit = pos
			continue
		}
		if r == '>' || !isSep(r) {
			break
		}
		if digitCount == 0 {
			sepBeforeDigits = true
		}
		pos += w
	}

	if bracketed && pos < len(s) && s[pos] == '>' {
		return pos + 1, true
	}
	// Unclosed or bare: the fragment ends after the last digit so trailing
	// separators are not swallowed.
	if digitCount == 0 {
		return 0, false
	}
	// A single digit reached across separators ("pH 7") is far more likely
	// natural text than a mangled token; require adjacency or at least two
	// digits unless a closing bracket vouched for the fragment above.
	if digitCount == 1 && sepBeforeDigits {
		return 0, false
	}
	return lastDigit, true
}

func skipSeps(s string, pos int) int {
	for pos < len(s) {
		r, w := utf8.DecodeRuneInString(s[pos:])
		if !isSep(r) {
			break
		}
		pos += w
	}
	return pos
}

// isSep reports separator noise a translation model may inject inside a
// token: whitespace, punctuation and symbols other than the brackets.
func isSep(r rune) bool {
	if r == '<' || r == '>' {
		return false
	}
	return unicode.IsSpace(r) || unicode.IsPunct(r) || unicode.IsSymbol(r)
}

func boundaryBefore(text string, pos int) bool {
	if pos == 0 {
		return true
	}
	r, _ := utf8.DecodeLastRuneInString(text[:pos])
	return !unicode.IsLetter(r) && !unicode.IsDigit(r)
}

// levenshtein is a plain two-row edit distance; id strings are at most a few
// digits long so no bounding is needed.
func levenshtein(a, b string) int {
	if a == b {
		return 0
	}
	prev := make([]int, len(b)+1)
	curr := make([]int, len(b)+1)
	for j := range prev {
		prev[j] = j
	}
	for i := 1; i <= len(a); i++ {
		curr[0] = i
		for j := 1; j <= len(b); j++ {
			cost := 1
			if a[i-1] == b[j-1] {
				cost = 0
			}
			curr[j] = min3(prev[j]+1, curr[j-1]+1, prev[j-1]+cost)
		}
		prev, curr = curr, prev
	}
	return prev[len(b)]
}

func min3(a, b, c int) int {
	if b < a {
		a = b
	}
	if c < a {
		a = c
	}
	return a
}
