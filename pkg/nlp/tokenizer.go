// Package nlp wraps the third-party NLP libraries behind small, explicitly
// constructed services: tokenizer, sentence detector, POS tagger, stemmer and a
// shallow constituency parser. Every span the services return is a byte range
// into the text they were handed.
package nlp

import (
	"strings"

	"github.com/jdkato/prose/tokenize"
	"github.com/kittclouds/ephyrapart/pkg/scanner/chunker"
)

// Token is a word with its span. Tag stays empty until a tagger runs.
type Token = chunker.Token

// ============================================================================
// Tokenizer
// ============================================================================

// Tokenizer splits text into word tokens.
type Tokenizer interface {
	Tokenize(text string) []Token
}

// ProseTokenizer uses the Penn Treebank word tokenizer from prose.
type ProseTokenizer struct {
	tb *tokenize.TreebankWordTokenizer
}

// NewTokenizer creates a Treebank tokenizer.
func NewTokenizer() *ProseTokenizer {
	return &ProseTokenizer{tb: tokenize.NewTreebankWordTokenizer()}
}

// Tokenize returns tokens aligned to byte ranges of text. Tokens the
// tokenizer rewrote (`` and '' for double quotes) are aligned to the
// original character.
func (t *ProseTokenizer) Tokenize(text string) []Token {
	pieces := t.tb.Tokenize(text)
	ranges := align(text, pieces)

	tokens := make([]Token, 0, len(pieces))
	for i, p := range pieces {
		r := ranges[i]
		if r.IsEmpty() && p != "" {
			// unaligned: keep the library's form, zero width at the cursor
			tokens = append(tokens, Token{Text: p, Range: r})
			continue
		}
		tok := Token{Text: r.Slice(text), Range: r}
		if tok.Text != p {
			tok.Norm = p
		}
		tokens = append(tokens, tok)
	}
	return tokens
}

// Words returns just the token texts.
func Words(tokens []Token) []string {
	words := make([]string, len(tokens))
	for i, tok := range tokens {
		words[i] = tok.Text
	}
	return words
}

// Forms returns the normalized token forms, as the tokenizer produced them.
func Forms(tokens []Token) []string {
	forms := make([]string, len(tokens))
	for i, tok := range tokens {
		forms[i] = tok.Form()
	}
	return forms
}

// quoteForms maps tokenizer rewrites to what they may stand for in the input.
var quoteForms = map[string][]string{
	"``": {"\"", "``", "“"},
	"''": {"\"", "''", "”"},
	"`":  {"'", "`", "‘"},
}

// align finds each piece in text, scanning forward from the previous match.
func align(text string, pieces []string) []chunker.TextRange {
	ranges := make([]chunker.TextRange, len(pieces))
	cursor := 0

	for i, p := range pieces {
		candidates := quoteForms[p]
		if candidates == nil {
			candidates = []string{p}
		}

		best, bestLen := -1, 0
		for _, c := range candidates {
			if c == "" {
				continue
			}
			idx := strings.Index(text[cursor:], c)
			if idx >= 0 && (best == -1 || idx < best) {
				best, bestLen = idx, len(c)
			}
		}

		if best == -1 {
			ranges[i] = chunker.NewRange(cursor, cursor)
			continue
		}
		start := cursor + best
		ranges[i] = chunker.NewRange(start, start+bestLen)
		cursor = start + bestLen
	}
	return ranges
}

// ============================================================================
// Sentence detection
// ============================================================================

// SentenceDetector splits text into sentence spans.
type SentenceDetector interface {
	Sentences(text string) []chunker.TextRange
}

// PunktDetector uses the Punkt sentence tokenizer from prose.
type PunktDetector struct {
	punkt *tokenize.PunktSentenceTokenizer
}

// NewSentenceDetector creates a Punkt sentence detector.
func NewSentenceDetector() *PunktDetector {
	return &PunktDetector{punkt: tokenize.NewPunktSentenceTokenizer()}
}

// Sentences returns sentence spans in text. Pieces that cannot be located in
// text are dropped; if none can be located the whole text is one sentence.
func (d *PunktDetector) Sentences(text string) []chunker.TextRange {
	if strings.TrimSpace(text) == "" {
		return nil
	}

	pieces := d.punkt.Tokenize(text)
	trimmed := make([]string, len(pieces))
	for i, p := range pieces {
		trimmed[i] = strings.TrimSpace(p)
	}

	var out []chunker.TextRange
	for _, r := range align(text, trimmed) {
		if r.IsEmpty() {
			continue
		}
		out = append(out, r)
	}
	if len(out) == 0 {
		return []chunker.TextRange{chunker.NewRange(0, len(text))}
	}
	return out
}
