package lexicon

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// =============================================================================
// Store Factory for Testing Both Implementations
// =============================================================================

// storeFactory creates a store for testing.
// We test both MemStore and SQLiteStore with the same test suite.
type storeFactory func() (Storer, error)

func memStoreFactory() (Storer, error) {
	return NewMemStore(), nil
}

func sqliteStoreFactory() (Storer, error) {
	return NewSQLiteStore()
}

// runTestsForAllStores runs a test function against both store implementations.
func runTestsForAllStores(t *testing.T, testName string, testFn func(t *testing.T, store Storer)) {
	factories := map[string]storeFactory{
		"MemStore":    memStoreFactory,
		"SQLiteStore": sqliteStoreFactory,
	}

	for name, factory := range factories {
		t.Run(name+"/"+testName, func(t *testing.T) {
			store, err := factory()
			require.NoError(t, err, "Failed to create store")
			defer store.Close()
			testFn(t, store)
		})
	}
}

func dogSynsets() []*Synset {
	return []*Synset{
		{ID: "n02084071", POS: Noun, Lemmas: []string{"dog", "domestic_dog", "Canis_familiaris"}, Gloss: "a member of the genus Canis"},
		{ID: "n02083346", POS: Noun, Lemmas: []string{"canine", "canid"}, Gloss: "any of various fissiped mammals"},
		{ID: "n01322604", POS: Noun, Lemmas: []string{"puppy"}, Gloss: "a young dog"},
		{ID: "v02005948", POS: Verb, Lemmas: []string{"chase", "dog", "tail"}, Gloss: "go after with the intent to catch"},
	}
}

func dogRelations() []*Relation {
	return []*Relation{
		{SourceID: "n02084071", TargetID: "n02083346", Type: RelHypernym},
		{SourceID: "n02084071", TargetID: "n01322604", Type: RelHyponym},
		{SourceID: "n02083346", TargetID: "n02084071", Type: RelHyponym},
		{SourceID: "n01322604", TargetID: "n02084071", Type: RelHypernym},
	}
}

// =============================================================================
// Synsets
// =============================================================================

func TestSynsetUpsertAndGet(t *testing.T) {
	runTestsForAllStores(t, "UpsertAndGet", func(t *testing.T, store Storer) {
		syn := dogSynsets()[0]
		require.NoError(t, store.UpsertSynset(syn))

		got, err := store.GetSynset(syn.ID)
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Equal(t, syn, got)

		// returned copies are independent
		got.Lemmas[0] = "cat"
		again, err := store.GetSynset(syn.ID)
		require.NoError(t, err)
		assert.Equal(t, "dog", again.Lemmas[0])
	})
}

func TestSynsetGetMissing(t *testing.T) {
	runTestsForAllStores(t, "GetMissing", func(t *testing.T, store Storer) {
		got, err := store.GetSynset("n00000000")
		require.NoError(t, err)
		assert.Nil(t, got)
	})
}

func TestSynsetRejectsEmptyID(t *testing.T) {
	runTestsForAllStores(t, "EmptyID", func(t *testing.T, store Storer) {
		assert.Error(t, store.UpsertSynset(&Synset{POS: Noun}))
	})
}

func TestLookupLemma(t *testing.T) {
	runTestsForAllStores(t, "LookupLemma", func(t *testing.T, store Storer) {
		require.NoError(t, store.UpsertBatch(dogSynsets(), nil))

		all, err := store.LookupLemma("Dog", "")
		require.NoError(t, err)
		require.Len(t, all, 2)
		assert.Equal(t, "n02084071", all[0].ID)
		assert.Equal(t, "v02005948", all[1].ID)

		verbs, err := store.LookupLemma("dog", Verb)
		require.NoError(t, err)
		require.Len(t, verbs, 1)
		assert.Equal(t, "v02005948", verbs[0].ID)

		multi, err := store.LookupLemma("domestic dog", Noun)
		require.NoError(t, err)
		assert.Len(t, multi, 1)

		none, err := store.LookupLemma("unicorn", "")
		require.NoError(t, err)
		assert.Empty(t, none)
	})
}

func TestUpsertReplacesLemmas(t *testing.T) {
	runTestsForAllStores(t, "ReplacesLemmas", func(t *testing.T, store Storer) {
		require.NoError(t, store.UpsertSynset(&Synset{ID: "n1", POS: Noun, Lemmas: []string{"old"}}))
		require.NoError(t, store.UpsertSynset(&Synset{ID: "n1", POS: Noun, Lemmas: []string{"new"}}))

		old, err := store.LookupLemma("old", "")
		require.NoError(t, err)
		assert.Empty(t, old)

		fresh, err := store.LookupLemma("new", "")
		require.NoError(t, err)
		assert.Len(t, fresh, 1)

		count, err := store.CountSynsets()
		require.NoError(t, err)
		assert.Equal(t, 1, count)
	})
}

// =============================================================================
// Relations
// =============================================================================

func TestRelations(t *testing.T) {
	runTestsForAllStores(t, "Relations", func(t *testing.T, store Storer) {
		require.NoError(t, store.UpsertBatch(dogSynsets(), dogRelations()))

		// duplicates are ignored
		require.NoError(t, store.UpsertRelation(dogRelations()[0]))

		count, err := store.CountRelations()
		require.NoError(t, err)
		assert.Equal(t, 4, count)

		hyper, err := store.Related("n02084071", RelHypernym)
		require.NoError(t, err)
		assert.Equal(t, []string{"n02083346"}, hyper)

		all, err := store.Related("n02084071", "")
		require.NoError(t, err)
		assert.Equal(t, []string{"n02083346", "n01322604"}, all)

		none, err := store.Related("n99999999", "")
		require.NoError(t, err)
		assert.Empty(t, none)

		assert.Error(t, store.UpsertRelation(&Relation{SourceID: "n1"}))
	})
}

// =============================================================================
// Dictionary
// =============================================================================

func TestDictionary(t *testing.T) {
	runTestsForAllStores(t, "Dictionary", func(t *testing.T, store Storer) {
		require.NoError(t, store.UpsertBatch(dogSynsets(), dogRelations()))
		d := NewDictionary(store)

		ok, err := d.IsWord("dog", Noun)
		require.NoError(t, err)
		assert.True(t, ok)

		ok, err = d.IsWord("puppy", Verb)
		require.NoError(t, err)
		assert.False(t, ok)

		syn, err := d.Synonyms("dog", "")
		require.NoError(t, err)
		assert.Equal(t, []string{"domestic dog", "Canis familiaris", "chase", "tail"}, syn)

		hyper, err := d.Hypernyms("dog", Noun)
		require.NoError(t, err)
		assert.Equal(t, []string{"canine", "canid"}, hyper)

		hypo, err := d.Hyponyms("Dog", Noun)
		require.NoError(t, err)
		assert.Equal(t, []string{"puppy"}, hypo)

		anto, err := d.Antonyms("dog", "")
		require.NoError(t, err)
		assert.Empty(t, anto)

		assert.True(t, d.Linked("puppy", "dog"))
		assert.True(t, d.Linked("dog", "Domestic dog"))
		assert.True(t, d.Linked("canine", "dog"))
		assert.False(t, d.Linked("puppy", "canine"))
	})
}

func TestDictionarySkipsUnloadedTargets(t *testing.T) {
	store := NewMemStore()
	require.NoError(t, store.UpsertBatch(
		[]*Synset{{ID: "n1", POS: Noun, Lemmas: []string{"runner"}}},
		[]*Relation{{SourceID: "n1", TargetID: "v9", Type: RelHypernym}},
	))
	got, err := NewDictionary(store).Hypernyms("runner", "")
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestLemmaKey(t *testing.T) {
	assert.Equal(t, "domestic_dog", LemmaKey("  Domestic   Dog "))
	assert.Equal(t, "canis familiaris", DisplayLemma("canis_familiaris"))
}
