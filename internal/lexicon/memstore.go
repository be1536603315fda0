package lexicon

import "sync"

type lemmaEntry struct {
	pos      string
	synsetID string
}

// MemStore is an in-memory implementation of Storer for testing.
type MemStore struct {
	mu        sync.RWMutex
	synsets   map[string]*Synset
	lemmas    map[string][]lemmaEntry
	relations map[string][]Relation
	relCount  int
}

// NewMemStore creates a new in-memory store.
func NewMemStore() *MemStore {
	return &MemStore{
		synsets:   make(map[string]*Synset),
		lemmas:    make(map[string][]lemmaEntry),
		relations: make(map[string][]Relation),
	}
}

// Close is a no-op for MemStore.
func (s *MemStore) Close() error {
	return nil
}

// =============================================================================
// Synsets
// =============================================================================

func (s *MemStore) UpsertSynset(synset *Synset) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.upsertSynset(synset)
}

func (s *MemStore) upsertSynset(synset *Synset) error {
	if err := validateSynset(synset); err != nil {
		return err
	}
	if old, ok := s.synsets[synset.ID]; ok {
		for _, l := range old.Lemmas {
			s.dropLemma(LemmaKey(l), old.ID)
		}
	}
	s.synsets[synset.ID] = cloneSynset(synset)
	for _, l := range synset.Lemmas {
		key := LemmaKey(l)
		s.dropLemma(key, synset.ID)
		s.lemmas[key] = append(s.lemmas[key], lemmaEntry{pos: synset.POS, synsetID: synset.ID})
	}
	return nil
}

func (s *MemStore) dropLemma(key, id string) {
	entries := s.lemmas[key]
	for i, e := range entries {
		if e.synsetID == id {
			s.lemmas[key] = append(entries[:i:i], entries[i+1:]...)
			return
		}
	}
}

func (s *MemStore) GetSynset(id string) (*Synset, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if synset, ok := s.synsets[id]; ok {
		return cloneSynset(synset), nil
	}
	return nil, nil
}

func (s *MemStore) LookupLemma(lemma, pos string) ([]*Synset, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*Synset
	for _, e := range s.lemmas[LemmaKey(lemma)] {
		if pos != "" && e.pos != pos {
			continue
		}
		out = append(out, cloneSynset(s.synsets[e.synsetID]))
	}
	return out, nil
}

func (s *MemStore) CountSynsets() (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.synsets), nil
}

// =============================================================================
// Relations
// =============================================================================

func (s *MemStore) UpsertRelation(rel *Relation) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.upsertRelation(rel)
}

func (s *MemStore) upsertRelation(rel *Relation) error {
	if err := validateRelation(rel); err != nil {
		return err
	}
	for _, r := range s.relations[rel.SourceID] {
		if r == *rel {
			return nil
		}
	}
	s.relations[rel.SourceID] = append(s.relations[rel.SourceID], *rel)
	s.relCount++
	return nil
}

func (s *MemStore) Related(id, relType string) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []string
	for _, r := range s.relations[id] {
		if relType == "" || r.Type == relType {
			out = append(out, r.TargetID)
		}
	}
	return out, nil
}

func (s *MemStore) CountRelations() (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.relCount, nil
}

// UpsertBatch writes synsets then relations.
func (s *MemStore) UpsertBatch(synsets []*Synset, relations []*Relation) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, syn := range synsets {
		if err := s.upsertSynset(syn); err != nil {
			return err
		}
	}
	for _, rel := range relations {
		if err := s.upsertRelation(rel); err != nil {
			return err
		}
	}
	return nil
}
