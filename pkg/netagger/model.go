package netagger

import (
	"strings"

	"github.com/jdkato/prose/chunk"
	"github.com/jdkato/prose/tag"

	"github.com/kittclouds/ephyrapart/pkg/nlp"
	"github.com/kittclouds/ephyrapart/pkg/scanner/chunker"
)

// TypeProperName is the NE type the statistical tagger assigns. The model
// finds proper-noun sequences but cannot tell persons from places.
const TypeProperName = "NEproperName"

// ModelTagger finds proper-name sequences from POS tags using prose's
// Treebank named-entity chunk grammar.
type ModelTagger struct {
	tokenizer nlp.Tokenizer
	tagger    *nlp.POSTagger
}

// NewModelTagger wraps an existing POS tagger.
func NewModelTagger(tokenizer nlp.Tokenizer, tagger *nlp.POSTagger) *ModelTagger {
	if tokenizer == nil {
		tokenizer = nlp.NewTokenizer()
	}
	return &ModelTagger{tokenizer: tokenizer, tagger: tagger}
}

func (t *ModelTagger) Types() []string {
	return []string{TypeProperName}
}

// Tag returns one entity per chunked name sequence.
func (t *ModelTagger) Tag(text string) []Entity {
	tokens := t.tagger.Tag(t.tokenizer.Tokenize(text))
	if len(tokens) == 0 {
		return nil
	}

	tagged := make([]tag.Token, len(tokens))
	for i, tok := range tokens {
		tagged[i] = tag.Token{Tag: tok.Tag, Text: tok.Form()}
	}

	// chunk.Chunk returns only the chunk text; locate each one in the token
	// stream in order so repeated names get their own ranges.
	var out []Entity
	next := 0
	for _, name := range chunk.Chunk(tagged, chunk.TreebankNamedEntities) {
		words := strings.Fields(name)
		i := findWords(tokens, words, next)
		if i < 0 {
			continue
		}
		first, last := tokens[i], tokens[i+len(words)-1]
		if first.Range.IsEmpty() || last.Range.IsEmpty() {
			next = i + len(words)
			continue
		}
		r := chunker.NewRange(first.Range.Start, last.Range.End)
		out = append(out, Entity{
			Type:   TypeProperName,
			Text:   r.Slice(text),
			Range:  r,
			Source: SourceModel,
		})
		next = i + len(words)
	}
	return out
}

func findWords(tokens []nlp.Token, words []string, from int) int {
	if len(words) == 0 {
		return -1
	}
outer:
	for i := from; i+len(words) <= len(tokens); i++ {
		for j, w := range words {
			if tokens[i+j].Form() != w {
				continue outer
			}
		}
		return i
	}
	return -1
}
