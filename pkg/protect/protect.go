// ABOUTME: Placeholder substitution for matched glossary terms
// ABOUTME: Pure transform producing protected text plus an id->entry mapping

// Package protect replaces accepted match spans with opaque placeholder
// tokens before the text is handed to the translation model. The token shape
// is a soft contract: the model usually carries <PH0001> through verbatim,
// and the restore package tolerates the cases where it does not.
package protect

import (
	"fmt"
	"strings"

	"github.com/anubhavsingh2004/lt-audio-translator/pkg/glossary"
	"github.com/anubhavsingh2004/lt-audio-translator/pkg/match"
)

const (
	// TokenPrefix and TokenSuffix frame every placeholder.
	TokenPrefix = "<PH"
	TokenSuffix = ">"

	// IDWidth is the zero-padded digit count inside a token.
	IDWidth = 4

	// BaseID is the first id assigned in a request.
	BaseID = 1
)

// Token renders the placeholder for an id: Token(1) == "<PH0001>".
func Token(id int) string {
	return fmt.Sprintf("%s%0*d%s", TokenPrefix, IDWidth, id, TokenSuffix)
}

// MaxID is the largest id the fixed-width token can carry.
func MaxID() int {
	n := 1
	for i := 0; i < IDWidth; i++ {
		n *= 10
	}
	return n - 1
}

// Binding ties a placeholder id to the glossary entry it replaced.
type Binding struct {
	ID     int
	Entry  *glossary.Entry
	Source string // Matched source text, original casing
}

// Result is the outcome of one protection pass. Bindings are ordered by id,
// which is also left-to-right source order.
type Result struct {
	Text     string
	Bindings []Binding
}

// Lookup resolves a placeholder id.
func (r *Result) Lookup(id int) (Binding, bool) {
	i := id - BaseID
	if i < 0 || i >= len(r.Bindings) {
		return Binding{}, false
	}
	return r.Bindings[i], true
}

// Apply substitutes the spans in text with placeholder tokens. It is a pure
// function: ids are assigned in left-to-right span order starting at BaseID,
// and the output is assembled in a single pass over the source so span
// offsets are never invalidated by earlier substitutions. Spans must be the
// non-overlapping, start-ordered output of match.Find against the same index.
func Apply(text string, spans []match.Span, idx *glossary.Index) Result {
	if len(spans) == 0 {
		return Result{Text: text}
	}

	bindings := make([]Binding, len(spans))
	for i, sp := range spans {
		// Spans come from match.Find against this same immutable index, so
		// the lookup cannot miss on the serving path.
		entry, _ := idx.Entry(sp.EntryID)
		bindings[i] = Binding{
			ID:     BaseID + i,
			Entry:  entry,
			Source: sp.Text,
		}
	}

	var b strings.Builder
	b.Grow(len(text) + len(spans)*8)
	last := 0
	for i, sp := range spans {
		b.WriteString(text[last:sp.Start])
		b.WriteString(Token(BaseID + i))
		last = sp.End
	}
	b.WriteString(text[last:])

	return Result{Text: b.String(), Bindings: bindings}
}
