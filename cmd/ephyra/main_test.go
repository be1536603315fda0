package main

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kittclouds/ephyrapart/pkg/netagger"
	"github.com/kittclouds/ephyrapart/pkg/nlp"
	"github.com/kittclouds/ephyrapart/pkg/scanner/chunker"
)

func execute(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	t.Setenv("EPHYRA_POLICY", "")

	var out bytes.Buffer
	cmd := rootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestVersion(t *testing.T) {
	out, err := execute(t, "", "version")
	require.NoError(t, err)
	assert.Contains(t, out, "ephyra version dev")
}

func TestMapText(t *testing.T) {
	out, err := execute(t, "", "map", "--policy", "remove", "a  b c")
	require.NoError(t, err)
	assert.Equal(t, "\"abc\"\n[0,1) +0\n[1,2) +2\n[2,3) +3\n", out)
}

func TestMapJSONFromStdin(t *testing.T) {
	out, err := execute(t, " New \t York ", "map", "-o", "json")
	require.NoError(t, err)

	var res struct {
		Derived string `json:"derived"`
		Policy  string `json:"policy"`
		Mapping struct {
			DerivedLen  int `json:"derivedLen"`
			OriginalLen int `json:"originalLen"`
		} `json:"mapping"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &res))
	assert.Equal(t, "New York", res.Derived)
	assert.Equal(t, "collapse", res.Policy)
	assert.Equal(t, 8, res.Mapping.DerivedLen)
	assert.Equal(t, 12, res.Mapping.OriginalLen)
}

func TestMapYAML(t *testing.T) {
	out, err := execute(t, "", "map", "-o", "yaml", "a b")
	require.NoError(t, err)
	assert.Contains(t, out, "derived: a b")
	assert.Contains(t, out, "policy: collapse")
	assert.Contains(t, out, "derivedLen: 3")
}

func TestUnknownFormat(t *testing.T) {
	_, err := execute(t, "", "map", "-o", "xml", "a")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown output format")
}

func TestBadPolicy(t *testing.T) {
	_, err := execute(t, "", "map", "--policy", "squash", "a")
	assert.Error(t, err)
}

func TestWriteEntities(t *testing.T) {
	text := "Visit New York in 2019"
	entities := []netagger.Entity{
		{Type: "NEcity", Text: "New York", Range: chunker.NewRange(6, 14), Source: netagger.SourceList},
		{Type: "NEstate", Text: "York", Range: chunker.NewRange(10, 14), Source: netagger.SourceList},
		{Type: "NEyear", Text: "2019", Range: chunker.NewRange(18, 22), Source: netagger.SourceRegex},
	}

	var buf bytes.Buffer
	require.NoError(t, writeEntities(&buf, newStyles(false), text, entities))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 4)
	assert.Equal(t, text, lines[0])
	assert.Equal(t, "NEcity\t\"New York\"\t[6,14)\tlist", lines[1])
	assert.Equal(t, "NEyear\t\"2019\"\t[18,22)\tregex", lines[3])
}

func TestWriteChunks(t *testing.T) {
	sentences := []nlp.Sentence{{
		Range: chunker.NewRange(0, 16),
		Tokens: []nlp.Token{
			{Text: "The", Tag: "DT", POS: chunker.Determiner, Range: chunker.NewRange(0, 3)},
			{Text: "dog", Tag: "NN", POS: chunker.Noun, Range: chunker.NewRange(4, 7)},
			{Text: "barked", Tag: "VBD", POS: chunker.Verb, Range: chunker.NewRange(8, 14)},
			{Text: ".", Tag: ".", POS: chunker.Punctuation, Range: chunker.NewRange(14, 15)},
		},
		Chunks: []chunker.Chunk{
			{Kind: chunker.NounPhrase, Range: chunker.NewRange(0, 7)},
			{Kind: chunker.VerbPhrase, Range: chunker.NewRange(8, 14)},
		},
	}}

	var buf bytes.Buffer
	require.NoError(t, writeChunks(&buf, sentences))
	assert.Equal(t, "The DT B-NP\ndog NN I-NP\nbarked VBD B-VP\n. . O\n\n", buf.String())
}

func TestColorEnabled(t *testing.T) {
	assert.True(t, colorEnabled("always"))
	assert.False(t, colorEnabled("never"))
}
