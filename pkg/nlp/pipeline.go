package nlp

import (
	"context"
	"fmt"

	"github.com/kittclouds/ephyrapart/pkg/offsetmap"
	"github.com/kittclouds/ephyrapart/pkg/scanner/chunker"
)

// Sentence is one detected sentence. All ranges are in original coordinates.
type Sentence struct {
	Range  chunker.TextRange `json:"range"`
	Tokens []Token           `json:"tokens"`
	Chunks []chunker.Chunk   `json:"chunks"`
}

// Document is the result of running the pipeline over a text.
type Document struct {
	Text      string             `json:"text"`
	Derived   string             `json:"derived"`
	Mapping   *offsetmap.Mapping `json:"mapping"`
	Sentences []Sentence         `json:"sentences"`
}

// Tokens returns every token of the document in order.
func (d *Document) Tokens() []Token {
	var out []Token
	for _, s := range d.Sentences {
		out = append(out, s.Tokens...)
	}
	return out
}

// Pipeline runs sentence detection, tokenization, tagging and chunking on the
// whitespace-normalized text and maps every span back to the input.
type Pipeline struct {
	Policy    offsetmap.Policy
	Sentences SentenceDetector
	Tokenizer Tokenizer
	Tagger    *POSTagger
	Chunker   *chunker.Chunker
}

// NewPipeline wires the default prose-backed services.
func NewPipeline(policy offsetmap.Policy) *Pipeline {
	tok := NewTokenizer()
	tagger := NewPOSTagger(tok)
	return &Pipeline{
		Policy:    policy,
		Sentences: NewSentenceDetector(),
		Tokenizer: tok,
		Tagger:    tagger,
		Chunker:   chunker.New(tagger),
	}
}

// Analyze processes text. It checks ctx between sentences.
func (p *Pipeline) Analyze(ctx context.Context, text string) (*Document, error) {
	derived, mapping := offsetmap.Build(text, p.Policy)
	doc := &Document{Text: text, Derived: derived, Mapping: mapping}

	for _, sr := range p.Sentences.Sentences(derived) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		sentence := sr.Slice(derived)
		tokens := p.Tagger.Tag(p.Tokenizer.Tokenize(sentence))
		for i := range tokens {
			tokens[i].Range = shift(tokens[i].Range, sr.Start)
		}
		result := p.Chunker.ChunkTokens(tokens)

		out, err := toOriginal(sr, result, mapping)
		if err != nil {
			return nil, fmt.Errorf("map sentence [%d,%d): %w", sr.Start, sr.End, err)
		}
		doc.Sentences = append(doc.Sentences, out)
	}
	return doc, nil
}

func shift(r chunker.TextRange, by int) chunker.TextRange {
	return chunker.NewRange(r.Start+by, r.End+by)
}

// MapRange translates a derived range through m.
func MapRange(m *offsetmap.Mapping, r chunker.TextRange) (chunker.TextRange, error) {
	start, end, err := m.TranslateRange(r.Start, r.End)
	if err != nil {
		return chunker.TextRange{}, err
	}
	return chunker.NewRange(start, end), nil
}

func toOriginal(sr chunker.TextRange, result chunker.ChunkResult, m *offsetmap.Mapping) (Sentence, error) {
	if m.IsIdentity() {
		return Sentence{Range: sr, Tokens: result.Tokens, Chunks: result.Chunks}, nil
	}

	var s Sentence
	var err error

	if s.Range, err = MapRange(m, sr); err != nil {
		return s, err
	}

	s.Tokens = make([]Token, len(result.Tokens))
	for i, tok := range result.Tokens {
		if tok.Range, err = MapRange(m, tok.Range); err != nil {
			return s, err
		}
		s.Tokens[i] = tok
	}

	s.Chunks = make([]chunker.Chunk, len(result.Chunks))
	for i, ch := range result.Chunks {
		if ch.Range, err = MapRange(m, ch.Range); err != nil {
			return s, err
		}
		if ch.Head, err = MapRange(m, ch.Head); err != nil {
			return s, err
		}
		mods := make([]chunker.TextRange, len(ch.Modifiers))
		for j, mod := range ch.Modifiers {
			if mods[j], err = MapRange(m, mod); err != nil {
				return s, err
			}
		}
		ch.Modifiers = mods
		s.Chunks[i] = ch
	}
	return s, nil
}
