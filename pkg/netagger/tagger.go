package netagger

import (
	"fmt"
	"sort"

	"github.com/kittclouds/ephyrapart/pkg/nlp"
	"github.com/kittclouds/ephyrapart/pkg/offsetmap"
)

// Tagger runs several entity taggers and merges their results.
type Tagger struct {
	taggers []EntityTagger
}

// NewTagger combines taggers. Nil entries are skipped so callers can pass
// whatever failed to load as nil.
func NewTagger(taggers ...EntityTagger) *Tagger {
	t := &Tagger{}
	for _, et := range taggers {
		if et == nil || isNilTagger(et) {
			continue
		}
		t.taggers = append(t.taggers, et)
	}
	return t
}

func isNilTagger(et EntityTagger) bool {
	switch v := et.(type) {
	case *ListTagger:
		return v == nil
	case *RegexTagger:
		return v == nil
	case *ModelTagger:
		return v == nil
	}
	return false
}

// Types returns the union of NE types, sorted.
func (t *Tagger) Types() []string {
	var out []string
	for _, et := range t.taggers {
		for _, typ := range et.Types() {
			out = appendUnique(out, typ)
		}
	}
	sort.Strings(out)
	return out
}

// Tag runs every tagger over text. Identical (type, range) spans found by
// more than one tagger are reported once, from the first tagger.
func (t *Tagger) Tag(text string) []Entity {
	type key struct {
		typ        string
		start, end int
	}
	seen := make(map[key]bool)

	var out []Entity
	for _, et := range t.taggers {
		for _, e := range et.Tag(text) {
			k := key{e.Type, e.Range.Start, e.Range.End}
			if seen[k] {
				continue
			}
			seen[k] = true
			out = append(out, e)
		}
	}
	sortEntities(out)
	return out
}

// TagText collapses whitespace in text, tags the collapsed form and maps
// every entity back onto text. Entity.Text is the original slice.
func (t *Tagger) TagText(text string) ([]Entity, error) {
	derived, mapping := offsetmap.CollapseString(text)
	entities := t.Tag(derived)

	for i := range entities {
		r, err := nlp.MapRange(mapping, entities[i].Range)
		if err != nil {
			return nil, fmt.Errorf("map entity %q: %w", entities[i].Text, err)
		}
		entities[i].Range = r
		entities[i].Text = r.Slice(text)
	}
	return entities, nil
}

func sortEntities(es []Entity) {
	sort.SliceStable(es, func(i, j int) bool {
		a, b := es[i].Range, es[j].Range
		if a.Start != b.Start {
			return a.Start < b.Start
		}
		if a.End != b.End {
			return a.End > b.End
		}
		return es[i].Type < es[j].Type
	})
}
