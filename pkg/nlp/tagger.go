package nlp

import (
	"strings"

	"github.com/jdkato/prose/tag"
	"github.com/kljensen/snowball"

	"github.com/kittclouds/ephyrapart/pkg/scanner/chunker"
)

// ============================================================================
// POS tagging
// ============================================================================

// POSTagger tags tokens with Penn Treebank tags using the averaged perceptron
// model that ships with prose.
type POSTagger struct {
	model     *tag.PerceptronTagger
	tokenizer Tokenizer
}

// NewPOSTagger loads the perceptron model. Loading decodes the embedded
// weights, so create one tagger and share it.
func NewPOSTagger(tokenizer Tokenizer) *POSTagger {
	if tokenizer == nil {
		tokenizer = NewTokenizer()
	}
	return &POSTagger{model: tag.NewPerceptronTagger(), tokenizer: tokenizer}
}

// TagTokens returns one tag per word. Words the model drops get "".
func (t *POSTagger) TagTokens(words []string) []string {
	if len(words) == 0 {
		return nil
	}

	tagged := t.model.Tag(words)
	tags := make([]string, len(words))
	for i := range words {
		if i < len(tagged) {
			tags[i] = tagged[i].Tag
		}
	}
	return tags
}

// Tag fills Tag and POS on the given tokens in place and returns them. The
// model sees each token's normalized form, so a '"' in the text is tagged as
// the `` or '' it was trained on.
func (t *POSTagger) Tag(tokens []Token) []Token {
	tags := t.TagTokens(Forms(tokens))
	for i := range tokens {
		tokens[i].Tag = tags[i]
		tokens[i].POS = chunker.FromPenn(tags[i], tokens[i].Text)
	}
	return tokens
}

// TagText tokenizes and tags text, rendering "word/TAG word/TAG".
func (t *POSTagger) TagText(text string) string {
	tokens := t.Tag(t.tokenizer.Tokenize(text))

	var b strings.Builder
	for i, tok := range tokens {
		if i > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(tok.Text)
		b.WriteByte('/')
		b.WriteString(tok.Tag)
	}
	return b.String()
}

// ============================================================================
// Stemming
// ============================================================================

// Stemmer reduces words to their stem.
type Stemmer interface {
	Stem(word string) string
}

// SnowballStemmer is the English Snowball (Porter2) stemmer.
type SnowballStemmer struct {
	language string
}

// NewStemmer creates an English Snowball stemmer.
func NewStemmer() *SnowballStemmer {
	return &SnowballStemmer{language: "english"}
}

// Stem returns the stem of word. Stop words are stemmed as well.
func (s *SnowballStemmer) Stem(word string) string {
	stemmed, err := snowball.Stem(word, s.language, true)
	if err != nil {
		return strings.ToLower(word)
	}
	return stemmed
}

// StemAll stems every word.
func (s *SnowballStemmer) StemAll(words []string) []string {
	out := make([]string, len(words))
	for i, w := range words {
		out[i] = s.Stem(w)
	}
	return out
}
