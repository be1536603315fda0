package nlp

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/kittclouds/ephyrapart/pkg/offsetmap"
	"github.com/kittclouds/ephyrapart/pkg/scanner/chunker"
)

// ErrParserNotInitialized is returned by Parse before Init or after Close.
var ErrParserNotInitialized = errors.New("nlp: parser has not been initialized")

// ParseResult is a parsed sentence.
type ParseResult struct {
	Tree    *Tree              `json:"tree"`
	Score   float64            `json:"score"`   // share of content tokens covered by a phrase, 0..1
	Derived string             `json:"derived"` // whitespace-collapsed sentence the parser worked on
	Mapping *offsetmap.Mapping `json:"mapping"`
}

// Parser builds a shallow constituency tree (ROOT > S > phrases > tags) from
// the tagger and the phrase chunker. Calls are serialized: the tagger and
// chunker are shared across callers.
type Parser struct {
	mu        sync.Mutex
	tokenizer Tokenizer
	tagger    *POSTagger
	chunker   *chunker.Chunker
	ready     bool
}

// NewParser creates a parser. A nil tagger is loaded on Init.
func NewParser(tokenizer Tokenizer, tagger *POSTagger) *Parser {
	if tokenizer == nil {
		tokenizer = NewTokenizer()
	}
	return &Parser{tokenizer: tokenizer, tagger: tagger}
}

// Init loads the tagging model. Calling it again is a no-op.
func (p *Parser) Init() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.ready {
		return nil
	}
	if p.tagger == nil {
		p.tagger = NewPOSTagger(p.tokenizer)
	}
	p.chunker = chunker.New(p.tagger)
	p.ready = true
	return nil
}

// Close releases the model. Parse fails until Init is called again.
func (p *Parser) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.tagger = nil
	p.chunker = nil
	p.ready = false
	return nil
}

// Parse parses one sentence. Node offsets point into sentence itself, not
// into the collapsed form the tagger saw.
func (p *Parser) Parse(ctx context.Context, sentence string) (*ParseResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.ready {
		return nil, ErrParserNotInitialized
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	derived, mapping := offsetmap.CollapseString(sentence)
	tokens := p.tagger.Tag(p.tokenizer.Tokenize(derived))
	result := p.chunker.ChunkTokens(tokens)

	tree, err := buildTree(result, mapping)
	if err != nil {
		return nil, fmt.Errorf("build tree: %w", err)
	}

	return &ParseResult{
		Tree:    tree,
		Score:   coverage(result),
		Derived: derived,
		Mapping: mapping,
	}, nil
}

// ParseString parses a sentence and returns the bracketed tree.
func (p *Parser) ParseString(ctx context.Context, sentence string) (string, error) {
	res, err := p.Parse(ctx, sentence)
	if err != nil {
		return "", err
	}
	return res.Tree.String(), nil
}

// Score parses a sentence and returns only its confidence.
func (p *Parser) Score(ctx context.Context, sentence string) (float64, error) {
	res, err := p.Parse(ctx, sentence)
	if err != nil {
		return 0, err
	}
	return res.Score, nil
}

// ============================================================================
// Tree construction
// ============================================================================

func phraseLabel(k chunker.ChunkKind) string {
	if k == chunker.Clause {
		return "SBAR"
	}
	return k.String()
}

func buildTree(result chunker.ChunkResult, m *offsetmap.Mapping) (*Tree, error) {
	s := &Tree{Label: "S"}

	var phrase, inner *Tree
	ci := 0
	for _, tok := range result.Tokens {
		leaf, err := leafNode(tok, m)
		if err != nil {
			return nil, err
		}

		for ci < len(result.Chunks) && result.Chunks[ci].Range.End <= tok.Range.Start {
			ci++
			phrase, inner = nil, nil
		}

		if ci < len(result.Chunks) && result.Chunks[ci].Range.Contains(tok.Range) && !tok.Range.IsEmpty() {
			ch := result.Chunks[ci]
			if phrase == nil {
				phrase = &Tree{Label: phraseLabel(ch.Kind)}
				s.Children = append(s.Children, phrase)
			}
			if ch.Kind == chunker.PrepPhrase && tok.Range != ch.Head {
				if inner == nil {
					inner = &Tree{Label: chunker.NounPhrase.String()}
					phrase.Children = append(phrase.Children, inner)
				}
				inner.Children = append(inner.Children, leaf)
				continue
			}
			phrase.Children = append(phrase.Children, leaf)
			continue
		}

		phrase, inner = nil, nil
		s.Children = append(s.Children, leaf)
	}

	setSpans(s)
	return &Tree{Label: "ROOT", Begin: s.Begin, End: s.End, Children: []*Tree{s}}, nil
}

func leafNode(tok Token, m *offsetmap.Mapping) (*Tree, error) {
	begin, end, err := m.TranslateRange(tok.Range.Start, tok.Range.End)
	if err != nil {
		return nil, err
	}
	label := tok.Tag
	if label == "" {
		label = "X"
	}
	return &Tree{Label: label, Word: tok.Text, Begin: begin, End: end}, nil
}

// setSpans derives phrase spans from their children.
func setSpans(t *Tree) {
	if len(t.Children) == 0 {
		return
	}
	for _, c := range t.Children {
		setSpans(c)
	}
	t.Begin = t.Children[0].Begin
	t.End = t.Children[len(t.Children)-1].End
}

func coverage(result chunker.ChunkResult) float64 {
	content, covered := 0, 0
	ci := 0
	for _, tok := range result.Tokens {
		if tok.POS == chunker.Punctuation {
			continue
		}
		content++
		for ci < len(result.Chunks) && result.Chunks[ci].Range.End <= tok.Range.Start {
			ci++
		}
		if ci < len(result.Chunks) && result.Chunks[ci].Range.Contains(tok.Range) {
			covered++
		}
	}
	if content == 0 {
		return 0
	}
	return float64(covered) / float64(content)
}
