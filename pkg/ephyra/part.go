// Package ephyra wires the NLP services, taggers, dictionary and word
// indices into one owned object and initializes them from a resource bundle.
package ephyra

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/hack-pad/hackpadfs"

	"github.com/kittclouds/ephyrapart/internal/config"
	"github.com/kittclouds/ephyrapart/internal/indices"
	"github.com/kittclouds/ephyrapart/internal/lexicon"
	"github.com/kittclouds/ephyrapart/internal/log"
	"github.com/kittclouds/ephyrapart/pkg/analysis"
	"github.com/kittclouds/ephyrapart/pkg/netagger"
	"github.com/kittclouds/ephyrapart/pkg/nlp"
	"github.com/kittclouds/ephyrapart/pkg/question"
	"github.com/kittclouds/ephyrapart/pkg/scanner/chunker"
)

// ErrNotInitialized is returned by operations whose service failed to
// initialize or before Init.
var ErrNotInitialized = errors.New("ephyra: service not initialized")

// Step names one initialization step.
type Step string

// Initialization steps in the order they run.
const (
	StepTokenizer        Step = "tokenizer"
	StepSentences        Step = "sentence detector"
	StepStemmer          Step = "stemmer"
	StepPOSTagger        Step = "POS tagger"
	StepChunker          Step = "chunker"
	StepParser           Step = "parser"
	StepNELists          Step = "NE list tagger"
	StepNEPatterns       Step = "NE pattern tagger"
	StepNEModel          Step = "NE model tagger"
	StepWordNet          Step = "WordNet dictionary"
	StepFunctionWords    Step = "function words"
	StepPrepositions     Step = "prepositions"
	StepIrregularVerbs   Step = "irregular verbs"
	StepWordFrequencies  Step = "word frequencies"
	StepQuestionPatterns Step = "question patterns"
)

// Status reports the outcome of Init.
type Status struct {
	Loaded []Step
	Failed map[Step]error
}

// OK reports whether every step succeeded.
func (s Status) OK() bool {
	return len(s.Failed) == 0
}

// FailedSteps returns the failed steps, sorted.
func (s Status) FailedSteps() []Step {
	out := make([]Step, 0, len(s.Failed))
	for step := range s.Failed {
		out = append(out, step)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Err joins the step failures, nil if none.
func (s Status) Err() error {
	var errs []error
	for _, step := range s.FailedSteps() {
		errs = append(errs, fmt.Errorf("%s: %w", step, s.Failed[step]))
	}
	return errors.Join(errs...)
}

// Part owns every service. Create it with New, call Init once, and Close
// when done. Accessors return nil for services that failed to initialize.
type Part struct {
	cfg  config.AppConfig
	log  *log.Logger
	fsys hackpadfs.FS

	mu     sync.RWMutex
	status Status

	tokenizer *nlp.ProseTokenizer
	sentences *nlp.PunktDetector
	stemmer   *nlp.SnowballStemmer
	tagger    *nlp.POSTagger
	chunker   *chunker.Chunker
	parser    *nlp.Parser

	lists    *netagger.ListTagger
	patterns *netagger.RegexTagger
	model    *netagger.ModelTagger
	entities *netagger.Tagger

	store lexicon.Storer
	dict  *lexicon.Dictionary

	functionWords *indices.FunctionWords
	prepositions  *indices.Prepositions
	irregular     *indices.IrregularVerbs
	frequencies   *indices.WordFrequencies

	questions *question.Interpreter
}

// New creates an uninitialized Part reading resources from fsys, which is
// rooted at the resource directory.
func New(cfg config.AppConfig, logger *log.Logger, fsys hackpadfs.FS) *Part {
	if logger == nil {
		logger = log.Discard()
	}
	return &Part{cfg: cfg, log: logger, fsys: fsys}
}

// Config returns the configuration.
func (p *Part) Config() config.AppConfig {
	return p.cfg
}

// Status returns the outcome of the last Init.
func (p *Part) Status() Status {
	p.mu.RLock()
	defer p.mu.RUnlock()

	out := Status{
		Loaded: append([]Step(nil), p.status.Loaded...),
		Failed: make(map[Step]error, len(p.status.Failed)),
	}
	for step, err := range p.status.Failed {
		out.Failed[step] = err
	}
	return out
}

func (p *Part) record(step Step, err error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if err != nil {
		p.status.Failed[step] = err
		return
	}
	p.status.Loaded = append(p.status.Loaded, step)
}

// ============================================================================
// Accessors
// ============================================================================

func (p *Part) Tokenizer() *nlp.ProseTokenizer {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.tokenizer
}

func (p *Part) SentenceDetector() *nlp.PunktDetector {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.sentences
}

func (p *Part) Stemmer() *nlp.SnowballStemmer {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.stemmer
}

func (p *Part) POSTagger() *nlp.POSTagger {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.tagger
}

func (p *Part) Chunker() *chunker.Chunker {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.chunker
}

func (p *Part) Parser() *nlp.Parser {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.parser
}

// NETagger returns the combined entity tagger. It is never nil after Init;
// taggers that failed to load are left out of it.
func (p *Part) NETagger() *netagger.Tagger {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.entities
}

func (p *Part) Dictionary() *lexicon.Dictionary {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.dict
}

func (p *Part) FunctionWords() *indices.FunctionWords {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.functionWords
}

func (p *Part) Prepositions() *indices.Prepositions {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.prepositions
}

func (p *Part) IrregularVerbs() *indices.IrregularVerbs {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.irregular
}

func (p *Part) WordFrequencies() *indices.WordFrequencies {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.frequencies
}

func (p *Part) QuestionInterpreter() *question.Interpreter {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.questions
}

// ============================================================================
// Operations
// ============================================================================

// Analyze runs the sentence, token, tag and chunk pipeline over text using
// the configured whitespace policy.
func (p *Part) Analyze(ctx context.Context, text string) (*nlp.Document, error) {
	p.mu.RLock()
	pl := &nlp.Pipeline{
		Policy:    p.cfg.Policy(),
		Sentences: p.sentences,
		Tokenizer: p.tokenizer,
		Tagger:    p.tagger,
		Chunker:   p.chunker,
	}
	ready := p.sentences != nil && p.tokenizer != nil && p.tagger != nil && p.chunker != nil
	p.mu.RUnlock()

	if !ready {
		return nil, fmt.Errorf("analyze: %w", ErrNotInitialized)
	}
	return pl.Analyze(ctx, text)
}

// Parse parses one sentence.
func (p *Part) Parse(ctx context.Context, sentence string) (*nlp.ParseResult, error) {
	parser := p.Parser()
	if parser == nil {
		return nil, fmt.Errorf("parse: %w", ErrNotInitialized)
	}
	return parser.Parse(ctx, sentence)
}

// Entities tags named entities in text. Ranges are into text.
func (p *Part) Entities(text string) ([]netagger.Entity, error) {
	tg := p.NETagger()
	if tg == nil {
		return nil, fmt.Errorf("entities: %w", ErrNotInitialized)
	}
	return tg.TagText(text)
}

// TagPos renders text as "word/TAG" pairs.
func (p *Part) TagPos(text string) (string, error) {
	tg := p.POSTagger()
	if tg == nil {
		return "", fmt.Errorf("tag: %w", ErrNotInitialized)
	}
	return tg.TagText(text), nil
}

// Stem returns the Porter2 stem of each word.
func (p *Part) Stem(words ...string) ([]string, error) {
	st := p.Stemmer()
	if st == nil {
		return nil, fmt.Errorf("stem: %w", ErrNotInitialized)
	}
	return st.StemAll(words), nil
}

// Interpret matches a question against the loaded question patterns.
func (p *Part) Interpret(q string) ([]question.Interpretation, error) {
	qi := p.QuestionInterpreter()
	if qi == nil {
		return nil, fmt.Errorf("interpret: %w", ErrNotInitialized)
	}
	return qi.Interpret(q)
}

// Stats computes readability metrics for text. Indices or a dictionary that
// failed to load leave their metrics at zero.
func (p *Part) Stats(ctx context.Context, text string) (analysis.MetricResult, error) {
	doc, err := p.Analyze(ctx, text)
	if err != nil {
		return analysis.MetricResult{}, err
	}

	var entities []netagger.Entity
	if tg := p.NETagger(); tg != nil {
		if entities, err = tg.TagText(text); err != nil {
			return analysis.MetricResult{}, fmt.Errorf("stats: %w", err)
		}
	}

	var links analysis.Linker
	if dict := p.Dictionary(); dict != nil {
		links = dict
	}
	a := analysis.NewAnalyzer(p.FunctionWords(), p.WordFrequencies(), links)
	return a.Analyze(doc, entities), nil
}
