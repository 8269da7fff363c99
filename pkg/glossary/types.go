// ABOUTME: Glossary data model for terminology protection
// ABOUTME: Defines Entry, disambiguation Context and the JSON resource format

package glossary

import "time"

// Entry is a single glossary term with its target-language renderings.
type Entry struct {
	ID         string            `json:"id"`                // Unique entry identifier
	Term       string            `json:"term"`              // Canonical term
	Aliases    []string          `json:"aliases,omitempty"` // Alternate surface forms
	Renderings map[string]string `json:"renderings"`        // Language code -> rendered translation
	Category   string            `json:"category,omitempty"`
	Priority   int               `json:"priority,omitempty"` // Higher wins a homonym group without context evidence
	Context    *Context          `json:"context,omitempty"`
	Notes      string            `json:"notes,omitempty"`
}

// Context carries disambiguation evidence for entries sharing a surface form.
// A keyword hit within the matcher's token window selects this entry over
// homonymous ones.
type Context struct {
	Keywords []string `json:"keywords"`
}

// Resource is the on-disk glossary file layout.
type Resource struct {
	Metadata ResourceMeta `json:"_metadata"`
	Entries  []*Entry     `json:"entries"`
}

// ResourceMeta describes the provenance of a glossary resource.
type ResourceMeta struct {
	Version     string `json:"version"`
	Description string `json:"description,omitempty"`
	LastUpdated string `json:"last_updated,omitempty"`
	Count       int    `json:"count"`
}

// Stats summarizes an index for the stats endpoint and glossaryctl.
type Stats struct {
	TotalEntries     int            `json:"total_entries"`
	MultiWordPhrases int            `json:"multi_word_phrases"`
	Categories       map[string]int `json:"categories"`
	Coverage         map[string]int `json:"coverage"` // Language code -> entries with a rendering
	LoadedAt         time.Time      `json:"loaded_at"`
	Version          string         `json:"version"`
}
