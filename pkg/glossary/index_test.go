// ABOUTME: Tests for index construction and validation rules
// ABOUTME: Covers duplicate ids, homonym legality, alias shadowing and term ordering

package glossary

import (
	"errors"
	"testing"
)

func entry(id, term string, aliases ...string) *Entry {
	return &Entry{
		ID:         id,
		Term:       term,
		Aliases:    aliases,
		Renderings: map[string]string{"hi": "हिंदी-" + id},
	}
}

func TestBuildIndexBasic(t *testing.T) {
	res := &Resource{
		Metadata: ResourceMeta{Version: "1.0"},
		Entries: []*Entry{
			entry("dg_roger", "roger", "roger that"),
			entry("dg_sitrep", "situation report", "SITREP"),
		},
	}
	idx, err := BuildIndex(res, []string{"hi"})
	if err != nil {
		t.Fatalf("BuildIndex: %v", err)
	}
	if idx.Len() != 2 {
		t.Errorf("Len = %d, want 2", idx.Len())
	}
	if got := len(idx.Terms()); got != 4 {
		t.Errorf("Terms count = %d, want 4 (2 canonical + 2 aliases)", got)
	}
	if e, ok := idx.Entry("dg_sitrep"); !ok || e.Term != "situation report" {
		t.Errorf("Entry(dg_sitrep) = %v, %v", e, ok)
	}
	if _, ok := idx.Entry("nope"); ok {
		t.Error("Entry(nope) should miss")
	}
}

func TestBuildIndexEmptyResource(t *testing.T) {
	for _, res := range []*Resource{nil, {}} {
		_, err := BuildIndex(res, []string{"hi"})
		if !errors.Is(err, ErrEmptyResource) {
			t.Errorf("BuildIndex(%v) err = %v, want ErrEmptyResource", res, err)
		}
	}
}

func TestBuildIndexRejectsMalformedEntries(t *testing.T) {
	cases := []struct {
		name string
		e    *Entry
		want error
	}{
		{"empty term", &Entry{ID: "x", Term: "  ", Renderings: map[string]string{"hi": "य"}}, ErrEmptyTerm},
		{"empty id", &Entry{ID: "", Term: "roger", Renderings: map[string]string{"hi": "य"}}, ErrEmptyID},
		{"missing rendering", &Entry{ID: "x", Term: "roger", Renderings: map[string]string{"fr": "reçu"}}, ErrMissingRendering},
		{"blank rendering", &Entry{ID: "x", Term: "roger", Renderings: map[string]string{"hi": "   "}}, ErrMissingRendering},
	}
	for _, tc := range cases {
		_, err := BuildIndex(&Resource{Entries: []*Entry{tc.e}}, []string{"hi"})
		if !errors.Is(err, tc.want) {
			t.Errorf("%s: err = %v, want %v", tc.name, err, tc.want)
		}
		var rerr *ResourceError
		if !errors.As(err, &rerr) {
			t.Errorf("%s: err is %T, want *ResourceError", tc.name, err)
		}
	}
}

func TestBuildIndexDuplicateID(t *testing.T) {
	res := &Resource{Entries: []*Entry{entry("dg_x", "roger"), entry("dg_x", "wilco")}}
	if _, err := BuildIndex(res, []string{"hi"}); !errors.Is(err, ErrDuplicateID) {
		t.Fatalf("err = %v, want ErrDuplicateID", err)
	}
}

func TestBuildIndexDuplicateTermWithoutContextIsFatal(t *testing.T) {
	res := &Resource{Entries: []*Entry{entry("dg_a", "Battery"), entry("dg_b", "battery")}}
	if _, err := BuildIndex(res, []string{"hi"}); !errors.Is(err, ErrDuplicateTerm) {
		t.Fatalf("err = %v, want ErrDuplicateTerm", err)
	}
}

func TestBuildIndexHomonymsWithContextAreLegal(t *testing.T) {
	a := entry("dg_a", "battery")
	a.Context = &Context{Keywords: []string{"fire"}}
	b := entry("dg_b", "Battery")
	b.Context = &Context{Keywords: []string{"radio"}}
	idx, err := BuildIndex(&Resource{Entries: []*Entry{a, b}}, []string{"hi"})
	if err != nil {
		t.Fatalf("BuildIndex: %v", err)
	}
	group := idx.Homonyms("battery")
	if len(group) != 2 {
		t.Fatalf("Homonyms(battery) = %d entries, want 2", len(group))
	}
	if group[0].ID != "dg_a" || group[1].ID != "dg_b" {
		t.Errorf("homonym group out of registration order: %q, %q", group[0].ID, group[1].ID)
	}
}

func TestBuildIndexOneSidedContextIsEnough(t *testing.T) {
	a := entry("dg_a", "battery")
	a.Context = &Context{Keywords: []string{"fire"}}
	b := entry("dg_b", "battery")
	if _, err := BuildIndex(&Resource{Entries: []*Entry{a, b}}, []string{"hi"}); err != nil {
		t.Fatalf("one side carrying context should be legal, got %v", err)
	}
}

func TestBuildIndexAliasShadowingCanonical(t *testing.T) {
	res := &Resource{Entries: []*Entry{
		entry("dg_roger", "roger"),
		entry("dg_copy", "copy", "Roger"), // alias shadows dg_roger's canonical
	}}
	if _, err := BuildIndex(res, []string{"hi"}); !errors.Is(err, ErrAliasCollision) {
		t.Fatalf("err = %v, want ErrAliasCollision", err)
	}
}

func TestBuildIndexTermsLongestFirst(t *testing.T) {
	res := &Resource{Entries: []*Entry{
		entry("dg_general", "General"),
		entry("dg_major_general", "Major General"),
		entry("dg_major", "Major"),
	}}
	idx, err := BuildIndex(res, []string{"hi"})
	if err != nil {
		t.Fatalf("BuildIndex: %v", err)
	}
	terms := idx.Terms()
	for i := 1; i < len(terms); i++ {
		if len(terms[i-1].Folded) < len(terms[i].Folded) {
			t.Fatalf("terms not sorted longest first: %q before %q", terms[i-1].Text, terms[i].Text)
		}
	}
	if terms[0].Text != "Major General" {
		t.Errorf("longest term = %q, want Major General", terms[0].Text)
	}
}

func TestIndexStats(t *testing.T) {
	res := &Resource{
		Metadata: ResourceMeta{Version: "2.1"},
		Entries: []*Entry{
			{ID: "a", Term: "fire mission", Category: "artillery", Renderings: map[string]string{"hi": "फायर मिशन", "fr": "mission de tir"}},
			{ID: "b", Term: "roger", Category: "comms", Renderings: map[string]string{"hi": "समझ गया"}},
		},
	}
	idx, err := BuildIndex(res, []string{"hi"})
	if err != nil {
		t.Fatalf("BuildIndex: %v", err)
	}
	st := idx.Stats()
	if st.TotalEntries != 2 || st.MultiWordPhrases != 1 {
		t.Errorf("Stats = %+v", st)
	}
	if st.Coverage["hi"] != 2 || st.Coverage["fr"] != 1 {
		t.Errorf("Coverage = %v", st.Coverage)
	}
	if st.Categories["artillery"] != 1 || st.Categories["comms"] != 1 {
		t.Errorf("Categories = %v", st.Categories)
	}
	if st.Version != "2.1" {
		t.Errorf("Version = %q", st.Version)
	}
}
