package ephyra

import (
	"bytes"
	"context"
	"path"
	"strings"
	"testing"

	"github.com/hack-pad/hackpadfs"
	"github.com/hack-pad/hackpadfs/mem"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kittclouds/ephyrapart/internal/config"
	"github.com/kittclouds/ephyrapart/internal/lexicon"
	"github.com/kittclouds/ephyrapart/internal/log"
)

func bundle() map[string]string {
	return map[string]string{
		"res/nlp/netagger/lists/NEcity.lst":    "Paris\nNew York\n",
		"res/nlp/netagger/lists/NEcountry.lst": "France\n",
		"res/nlp/netagger/patterns.lst":        "NEyear\t\\b(1[0-9]{3}|20[0-9]{2})\\b\n",
		"res/ontologies/wordnet/dict/data.noun": "02084071 05 n 02 dog 0 domestic_dog 0 001 @ 02083346 n 0000 | a domestic canine\n" +
			"02083346 05 n 02 canine 0 canid 0 001 ~ 02084071 n 0000 | any of various fissiped mammals\n",
		"res/indices/functionwords_nonumbers":      "the\na\nin\nof\nto\nand\n",
		"res/indices/prepositions":                 "in\nof\nto\n",
		"res/indices/irregularverbs":               "go\twent\tgone\nrun\tran\trun\n",
		"res/indices/wordfrequencies":              "the 600\ndog 20\ncanine 2\n",
		"res/patternlearning/questionpatterns/CAPITAL": "what is the capital of <TO>\n",
	}
}

func newFS(t *testing.T, files map[string]string) hackpadfs.FS {
	t.Helper()
	fs, err := mem.NewFS()
	require.NoError(t, err)
	for name, content := range files {
		require.NoError(t, hackpadfs.MkdirAll(fs, path.Dir(name), 0o755))
		require.NoError(t, hackpadfs.WriteFullFile(fs, name, []byte(content), 0o644))
	}
	return fs
}

func newPart(t *testing.T, files map[string]string) (*Part, Status) {
	t.Helper()
	p := New(config.NewAppConfig(), nil, newFS(t, files))
	status, err := p.Init(context.Background())
	require.NoError(t, err)
	t.Cleanup(func() { p.Close() })
	return p, status
}

func TestInitLoadsEverything(t *testing.T) {
	p, status := newPart(t, bundle())
	require.True(t, status.OK(), status.Err())
	assert.Len(t, status.Loaded, 15)
	assert.NoError(t, status.Err())

	assert.NotNil(t, p.Tokenizer())
	assert.NotNil(t, p.SentenceDetector())
	assert.NotNil(t, p.Stemmer())
	assert.NotNil(t, p.POSTagger())
	assert.NotNil(t, p.Chunker())
	assert.NotNil(t, p.Parser())
	assert.NotNil(t, p.Dictionary())
	assert.True(t, p.FunctionWords().Contains("The"))
	assert.True(t, p.Prepositions().Contains("of"))
	assert.True(t, p.IrregularVerbs().IsIrregular("went"))
	assert.Equal(t, int64(20), p.WordFrequencies().Lookup("dog"))
	assert.Equal(t, []string{"CAPITAL"}, p.QuestionInterpreter().Properties())
	assert.Contains(t, p.NETagger().Types(), "NEcity")
	assert.Contains(t, p.NETagger().Types(), "NEyear")
}

func TestInitContinuesPastFailures(t *testing.T) {
	files := bundle()
	delete(files, "res/indices/prepositions")
	files["res/nlp/netagger/patterns.lst"] = "NEbad\t(\n"

	p, status := newPart(t, files)
	assert.False(t, status.OK())
	assert.Equal(t, []Step{StepNEPatterns, StepPrepositions}, status.FailedSteps())
	assert.Len(t, status.Loaded, 13)
	require.Error(t, status.Err())
	assert.Contains(t, status.Err().Error(), "prepositions")

	assert.Nil(t, p.Prepositions())
	assert.NotNil(t, p.FunctionWords())

	// the list tagger still runs without the pattern tagger
	assert.NotContains(t, p.NETagger().Types(), "NEyear")
	got, err := p.Entities("Paris in 1999")
	require.NoError(t, err)
	require.NotEmpty(t, got)
	assert.Equal(t, "Paris", got[0].Text)
}

func TestInitLogsSteps(t *testing.T) {
	var buf bytes.Buffer
	logger := log.NewLoggerWithWriter(&buf, config.LogFormatText, "INFO")

	files := bundle()
	delete(files, "res/indices/irregularverbs")
	p := New(config.NewAppConfig(), logger, newFS(t, files))
	_, err := p.Init(context.Background())
	require.NoError(t, err)
	defer p.Close()

	out := buf.String()
	assert.Contains(t, out, "Creating tokenizer...")
	assert.Contains(t, out, "Loading question patterns...")
	assert.Contains(t, out, "Could not create irregular verbs.")
	assert.Contains(t, out, "Initialization incomplete")
}

func TestInitCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	p := New(config.NewAppConfig(), nil, newFS(t, bundle()))
	_, err := p.Init(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestOperationsBeforeInit(t *testing.T) {
	p := New(config.NewAppConfig(), nil, newFS(t, nil))
	ctx := context.Background()

	_, err := p.Analyze(ctx, "text")
	assert.ErrorIs(t, err, ErrNotInitialized)
	_, err = p.Parse(ctx, "text")
	assert.ErrorIs(t, err, ErrNotInitialized)
	_, err = p.Entities("text")
	assert.ErrorIs(t, err, ErrNotInitialized)
	_, err = p.TagPos("text")
	assert.ErrorIs(t, err, ErrNotInitialized)
	_, err = p.Stem("text")
	assert.ErrorIs(t, err, ErrNotInitialized)
	_, err = p.Interpret("text")
	assert.ErrorIs(t, err, ErrNotInitialized)
	_, err = p.Stats(ctx, "text")
	assert.ErrorIs(t, err, ErrNotInitialized)
	assert.NoError(t, p.Close())
}

func TestAnalyzeMapsToOriginal(t *testing.T) {
	p, _ := newPart(t, bundle())

	text := "The  dog\tran   home.\n\nIt  was tired."
	doc, err := p.Analyze(context.Background(), text)
	require.NoError(t, err)
	require.Len(t, doc.Sentences, 2)
	assert.Equal(t, "The dog ran home. It was tired.", doc.Derived)
	for _, tok := range doc.Tokens() {
		assert.Equal(t, tok.Text, tok.Range.Slice(text))
	}
}

func TestEntitiesMapToOriginal(t *testing.T) {
	p, _ := newPart(t, bundle())

	text := "Flights from  New\n  York to Paris in 2019."
	got, err := p.Entities(text)
	require.NoError(t, err)

	var names []string
	for _, e := range got {
		names = append(names, e.Type+":"+e.Text)
		assert.Equal(t, e.Text, e.Range.Slice(text))
	}
	assert.Contains(t, names, "NEcity:New\n  York")
	assert.Contains(t, names, "NEcity:Paris")
	assert.Contains(t, names, "NEyear:2019")
}

func TestParseTagStem(t *testing.T) {
	p, _ := newPart(t, bundle())
	ctx := context.Background()

	res, err := p.Parse(ctx, "The dog chased the ball.")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(res.Tree.String(), "(ROOT"))

	tagged, err := p.TagPos("The dog barked")
	require.NoError(t, err)
	assert.Contains(t, tagged, "dog/NN")

	stems, err := p.Stem("running", "dogs")
	require.NoError(t, err)
	assert.Equal(t, []string{"run", "dog"}, stems)
}

func TestInterpret(t *testing.T) {
	p, _ := newPart(t, bundle())

	got, err := p.Interpret("What is the capital of France?")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "CAPITAL", got[0].Property)
	assert.Equal(t, "France", got[0].Target)
}

func TestDictionaryLoaded(t *testing.T) {
	p, _ := newPart(t, bundle())

	dict := p.Dictionary()
	ok, err := dict.IsWord("dog", lexicon.Noun)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.True(t, dict.Linked("dog", "canine"))
}

func TestWordNetStoreReused(t *testing.T) {
	dsn := "file:" + path.Join(t.TempDir(), "lexicon.db")
	cfg := config.NewAppConfigWithOptions(config.WithLexiconDSN(dsn))

	first := New(cfg, nil, newFS(t, bundle()))
	status, err := first.Init(context.Background())
	require.NoError(t, err)
	require.True(t, status.OK(), status.Err())
	require.NoError(t, first.Close())

	// the second run has no WordNet files and relies on the stored synsets
	files := bundle()
	delete(files, "res/ontologies/wordnet/dict/data.noun")
	second := New(cfg, nil, newFS(t, files))
	status, err = second.Init(context.Background())
	require.NoError(t, err)
	defer second.Close()
	assert.NotContains(t, status.FailedSteps(), StepWordNet)
	ok, err := second.Dictionary().IsWord("canine", lexicon.Noun)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestInitTwiceClosesPreviousStore(t *testing.T) {
	p, _ := newPart(t, bundle())
	first, ok := p.store.(*lexicon.SQLiteStore)
	require.True(t, ok)

	status, err := p.Init(context.Background())
	require.NoError(t, err)
	require.True(t, status.OK(), status.Err())
	assert.Len(t, status.Loaded, 15)

	_, err = first.CountSynsets()
	assert.Error(t, err, "previous store should be closed")
	assert.NotSame(t, first, p.store)

	ok, err = p.Dictionary().IsWord("dog", lexicon.Noun)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestStatusIsACopy(t *testing.T) {
	files := bundle()
	delete(files, "res/indices/prepositions")
	p, _ := newPart(t, files)

	status := p.Status()
	require.Contains(t, status.FailedSteps(), StepPrepositions)
	loaded := len(status.Loaded)

	status.Loaded[0] = "mutated"
	status.Loaded = append(status.Loaded, "extra")
	delete(status.Failed, StepPrepositions)

	again := p.Status()
	assert.Len(t, again.Loaded, loaded)
	assert.NotEqual(t, Step("mutated"), again.Loaded[0])
	assert.Contains(t, again.FailedSteps(), StepPrepositions)
}

func TestStats(t *testing.T) {
	p, _ := newPart(t, bundle())

	res, err := p.Stats(context.Background(), "The dog ran home. The canine was tired.")
	require.NoError(t, err)
	assert.Equal(t, 2, res.SentenceCount)
	assert.Equal(t, 8, res.WordCount)
	assert.Len(t, res.FlowTrend, 2)
	assert.Greater(t, res.ContentWordRatio, 0.0)
}
