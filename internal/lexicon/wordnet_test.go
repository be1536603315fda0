package lexicon

import (
	"context"
	"testing"

	"github.com/hack-pad/hackpadfs"
	"github.com/hack-pad/hackpadfs/mem"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const nounData = `  1 This software and database is being provided to you, the LICENSEE, by
  2 Princeton University under the following license.
02084071 05 n 03 dog 0 domestic_dog 0 Canis_familiaris 0 003 @ 02083346 n 0000 ~ 01322604 n 0000 + 02005948 v 0101 | a member of the genus Canis; "the dog barked all night"
02083346 05 n 02 canine 0 canid 0 001 ~ 02084071 n 0000 | any of various fissiped mammals
01322604 05 n 01 puppy 0 001 @ 02084071 n 0000 | a young dog
`

const verbData = `02005948 38 v 03 chase 0 dog 1 tail 0 001 + 02084071 n 0201 01 + 08 00 | go after with the intent to catch
`

const adjData = `00001740 00 a 01 able 0 001 ! 00002098 a 0101 | having the necessary means or skill
00002098 00 a 01 unable 0 001 ! 00001740 a 0101 | not able
00002312 00 s 01 abaxial(p) 0 001 & 00001740 a 0000 | facing away from the axis
`

func wordnetFS(t *testing.T, files map[string]string) hackpadfs.FS {
	t.Helper()
	fs, err := mem.NewFS()
	require.NoError(t, err)
	require.NoError(t, hackpadfs.MkdirAll(fs, "dict", 0o755))
	for name, content := range files {
		require.NoError(t, hackpadfs.WriteFullFile(fs, "dict/"+name, []byte(content), 0o644))
	}
	return fs
}

func TestParseDataLine(t *testing.T) {
	syn, rels, err := ParseDataLine("02084071 05 n 03 dog 0 domestic_dog 0 Canis_familiaris 0 002 @ 02083346 n 0000 ~i 01322604 n 0000 | a dog ")
	require.NoError(t, err)

	assert.Equal(t, &Synset{
		ID:     "n02084071",
		POS:    Noun,
		Lemmas: []string{"dog", "domestic_dog", "Canis_familiaris"},
		Gloss:  "a dog",
	}, syn)
	assert.Equal(t, []*Relation{
		{SourceID: "n02084071", TargetID: "n02083346", Type: RelHypernym},
		{SourceID: "n02084071", TargetID: "n01322604", Type: RelInstanceHyponym},
	}, rels)
}

func TestParseDataLineHexWordCount(t *testing.T) {
	line := "00000001 03 n 0b a 0 b 0 c 0 d 0 e 0 f 0 g 0 h 0 i 0 j 0 k 0 000 | eleven words"
	syn, rels, err := ParseDataLine(line)
	require.NoError(t, err)
	assert.Len(t, syn.Lemmas, 11)
	assert.Empty(t, rels)
}

func TestParseDataLineSatelliteAndMarkers(t *testing.T) {
	syn, rels, err := ParseDataLine("00002312 00 s 01 abaxial(p) 0 001 & 00001740 a 0000 | facing away")
	require.NoError(t, err)
	assert.Equal(t, "a00002312", syn.ID)
	assert.Equal(t, []string{"abaxial"}, syn.Lemmas)
	require.Len(t, rels, 1)
	assert.Equal(t, RelSimilar, rels[0].Type)
}

func TestParseDataLineUnknownPointerKeptVerbatim(t *testing.T) {
	_, rels, err := ParseDataLine("00000001 03 n 01 a 0 001 ;c 00000002 n 0000 | x")
	require.NoError(t, err)
	require.Len(t, rels, 1)
	assert.Equal(t, ";c", rels[0].Type)
}

func TestParseDataLineErrors(t *testing.T) {
	tests := []struct {
		name string
		line string
	}{
		{"too few fields", "00000001 03 n"},
		{"bad offset", "xyz 03 n 01 a 0 000 | x"},
		{"bad pos", "00000001 03 q 01 a 0 000 | x"},
		{"bad w_cnt", "00000001 03 n zz a 0 000 | x"},
		{"truncated words", "00000001 03 n 05 a 0 | x"},
		{"bad p_cnt", "00000001 03 n 01 a 0 x | x"},
		{"truncated pointers", "00000001 03 n 01 a 0 002 @ 00000002 n 0000 | x"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := ParseDataLine(tt.line)
			assert.Error(t, err)
		})
	}
}

func TestLoadWordNet(t *testing.T) {
	runTestsForAllStores(t, "LoadWordNet", func(t *testing.T, store Storer) {
		fs := wordnetFS(t, map[string]string{
			"data.noun": nounData,
			"data.verb": verbData,
			"data.adj":  adjData,
		})

		stats, err := LoadWordNet(context.Background(), fs, "dict", store)
		require.NoError(t, err)
		assert.Equal(t, LoadStats{Files: 3, Synsets: 7, Relations: 9}, stats)

		count, err := store.CountSynsets()
		require.NoError(t, err)
		assert.Equal(t, 7, count)

		d := NewDictionary(store)
		hyper, err := d.Hypernyms("puppy", Noun)
		require.NoError(t, err)
		assert.Equal(t, []string{"dog", "domestic dog", "Canis familiaris"}, hyper)

		anto, err := d.Antonyms("able", Adjective)
		require.NoError(t, err)
		assert.Equal(t, []string{"unable"}, anto)

		ok, err := d.IsWord("abaxial", Adjective)
		require.NoError(t, err)
		assert.True(t, ok)

		verbs, err := d.Synonyms("dog", Verb)
		require.NoError(t, err)
		assert.Equal(t, []string{"chase", "tail"}, verbs)
	})
}

func TestLoadWordNetMalformedLine(t *testing.T) {
	fs := wordnetFS(t, map[string]string{
		"data.noun": "00000001 03 n 01 a 0 000 | fine\nbroken line\n",
	})
	_, err := LoadWordNet(context.Background(), fs, "dict", NewMemStore())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "dict/data.noun:2")
}

func TestLoadWordNetNoFiles(t *testing.T) {
	fs := wordnetFS(t, nil)
	_, err := LoadWordNet(context.Background(), fs, "dict", NewMemStore())
	assert.ErrorIs(t, err, ErrNoWordNet)
}

func TestLoadWordNetCancelled(t *testing.T) {
	fs := wordnetFS(t, map[string]string{"data.noun": nounData})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := LoadWordNet(ctx, fs, "dict", NewMemStore())
	assert.ErrorIs(t, err, context.Canceled)
}
