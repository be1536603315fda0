// Package lexicon stores a WordNet-style dictionary: synsets, the lemmas that
// name them and the typed relations between them.
package lexicon

import (
	"fmt"
	"strings"
)

// Parts of speech as used in synset IDs. Adjective satellites are stored as
// adjectives.
const (
	Noun      = "n"
	Verb      = "v"
	Adjective = "a"
	Adverb    = "r"
)

// Relation types
const (
	RelHypernym         = "hypernym"
	RelInstanceHypernym = "instance_hypernym"
	RelHyponym          = "hyponym"
	RelInstanceHyponym  = "instance_hyponym"
	RelAntonym          = "antonym"
	RelSimilar          = "similar"
	RelMemberHolonym    = "member_holonym"
	RelSubstanceHolonym = "substance_holonym"
	RelPartHolonym      = "part_holonym"
	RelMemberMeronym    = "member_meronym"
	RelSubstanceMeronym = "substance_meronym"
	RelPartMeronym      = "part_meronym"
	RelAttribute        = "attribute"
	RelDerivation       = "derivation"
	RelEntailment       = "entailment"
	RelCause            = "cause"
	RelAlso             = "also"
	RelPertainym        = "pertainym"
	RelParticiple       = "participle"
	RelVerbGroup        = "verb_group"
)

// Synset is a set of synonymous lemmas. ID is the part of speech followed by
// the 8-digit WordNet offset, e.g. "n02084071".
type Synset struct {
	ID     string   `json:"id"`
	POS    string   `json:"pos"`
	Lemmas []string `json:"lemmas"`
	Gloss  string   `json:"gloss"`
}

// Relation is a directed, typed link between two synsets.
type Relation struct {
	SourceID string `json:"sourceId"`
	TargetID string `json:"targetId"`
	Type     string `json:"type"`
}

// Storer defines the interface for dictionary persistence.
// This allows swapping between MemStore (testing) and SQLiteStore (production).
type Storer interface {
	// Synsets
	UpsertSynset(synset *Synset) error
	GetSynset(id string) (*Synset, error)
	LookupLemma(lemma, pos string) ([]*Synset, error)
	CountSynsets() (int, error)

	// Relations
	UpsertRelation(rel *Relation) error
	Related(id, relType string) ([]string, error)
	CountRelations() (int, error)

	// UpsertBatch writes synsets and relations in one step.
	UpsertBatch(synsets []*Synset, relations []*Relation) error

	// Lifecycle
	Close() error
}

// LemmaKey normalizes a lemma for lookup: lowercase, spaces as underscores.
func LemmaKey(lemma string) string {
	return strings.ToLower(strings.Join(strings.Fields(lemma), "_"))
}

// DisplayLemma turns a stored lemma into text: underscores become spaces.
func DisplayLemma(lemma string) string {
	return strings.ReplaceAll(lemma, "_", " ")
}

func cloneSynset(s *Synset) *Synset {
	c := *s
	c.Lemmas = append([]string(nil), s.Lemmas...)
	return &c
}

func validateSynset(s *Synset) error {
	if s.ID == "" {
		return fmt.Errorf("synset has no id")
	}
	return nil
}

func validateRelation(r *Relation) error {
	if r.SourceID == "" || r.TargetID == "" || r.Type == "" {
		return fmt.Errorf("relation %s -%s-> %s is incomplete", r.SourceID, r.Type, r.TargetID)
	}
	return nil
}
