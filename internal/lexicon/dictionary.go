package lexicon

// Dictionary answers word-level questions over a Storer. Words may be given
// with spaces or underscores; results use spaces.
type Dictionary struct {
	store Storer
}

// NewDictionary wraps store.
func NewDictionary(store Storer) *Dictionary {
	return &Dictionary{store: store}
}

// Store returns the underlying store.
func (d *Dictionary) Store() Storer {
	return d.store
}

// Synsets returns the synsets of word; pos "" matches every part of speech.
func (d *Dictionary) Synsets(word, pos string) ([]*Synset, error) {
	return d.store.LookupLemma(word, pos)
}

// IsWord reports whether word is a lemma with the given part of speech.
func (d *Dictionary) IsWord(word, pos string) (bool, error) {
	synsets, err := d.store.LookupLemma(word, pos)
	if err != nil {
		return false, err
	}
	return len(synsets) > 0, nil
}

// Synonyms returns the other lemmas of every synset word belongs to.
func (d *Dictionary) Synonyms(word, pos string) ([]string, error) {
	synsets, err := d.store.LookupLemma(word, pos)
	if err != nil {
		return nil, err
	}

	self := LemmaKey(word)
	seen := map[string]bool{self: true}
	var out []string
	for _, syn := range synsets {
		out = appendLemmas(out, seen, syn)
	}
	return out, nil
}

// Hypernyms returns lemmas of the direct hypernyms (including instance
// hypernyms) of word.
func (d *Dictionary) Hypernyms(word, pos string) ([]string, error) {
	return d.related(word, pos, RelHypernym, RelInstanceHypernym)
}

// Hyponyms returns lemmas of the direct hyponyms (including instances) of word.
func (d *Dictionary) Hyponyms(word, pos string) ([]string, error) {
	return d.related(word, pos, RelHyponym, RelInstanceHyponym)
}

// Antonyms returns lemmas of the antonyms of word.
func (d *Dictionary) Antonyms(word, pos string) ([]string, error) {
	return d.related(word, pos, RelAntonym)
}

func (d *Dictionary) related(word, pos string, types ...string) ([]string, error) {
	synsets, err := d.store.LookupLemma(word, pos)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]bool)
	visited := make(map[string]bool)
	var out []string
	for _, syn := range synsets {
		for _, typ := range types {
			targets, err := d.store.Related(syn.ID, typ)
			if err != nil {
				return nil, err
			}
			for _, id := range targets {
				if visited[id] {
					continue
				}
				visited[id] = true

				target, err := d.store.GetSynset(id)
				if err != nil {
					return nil, err
				}
				if target == nil {
					// the part of speech holding it was not loaded
					continue
				}
				out = appendLemmas(out, seen, target)
			}
		}
	}
	return out, nil
}

func appendLemmas(out []string, seen map[string]bool, syn *Synset) []string {
	for _, l := range syn.Lemmas {
		key := LemmaKey(l)
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, DisplayLemma(l))
	}
	return out
}

// Linked reports whether other is a synonym, hypernym or hyponym of word as
// a noun. Lookup errors count as unrelated.
func (d *Dictionary) Linked(word, other string) bool {
	key := LemmaKey(other)
	for _, fn := range []func(string, string) ([]string, error){d.Synonyms, d.Hypernyms, d.Hyponyms} {
		words, err := fn(word, Noun)
		if err != nil {
			continue
		}
		for _, w := range words {
			if LemmaKey(w) == key {
				return true
			}
		}
	}
	return false
}
