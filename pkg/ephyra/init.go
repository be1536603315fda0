package ephyra

import (
	"context"
	"errors"

	"golang.org/x/sync/errgroup"

	"github.com/kittclouds/ephyrapart/internal/indices"
	"github.com/kittclouds/ephyrapart/internal/lexicon"
	"github.com/kittclouds/ephyrapart/pkg/netagger"
	"github.com/kittclouds/ephyrapart/pkg/nlp"
	"github.com/kittclouds/ephyrapart/pkg/question"
	"github.com/kittclouds/ephyrapart/pkg/scanner/chunker"
)

type loader struct {
	step Step
	msg  string
	fn   func(ctx context.Context) error
}

// Init creates every service. A step that fails is logged and recorded in
// the returned Status and initialization continues; the error is non-nil
// only when ctx ends first. Resource loads run concurrently, at most
// InitWorkers at a time.
func (p *Part) Init(ctx context.Context) (Status, error) {
	l := p.log.WithContext(ctx)
	l.Info("Initializing Ephyra...")

	p.mu.Lock()
	p.status = Status{Failed: make(map[Step]error)}
	p.mu.Unlock()

	// the core services build on each other and run in order
	for _, ld := range p.coreLoaders() {
		if err := ctx.Err(); err != nil {
			return p.Status(), err
		}
		p.run(ctx, ld)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(1, p.cfg.InitWorkers()))
	for _, ld := range p.resourceLoaders() {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			p.run(gctx, ld)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return p.Status(), err
	}
	if err := ctx.Err(); err != nil {
		return p.Status(), err
	}

	p.mu.Lock()
	p.entities = netagger.NewTagger(p.lists, p.patterns, p.model)
	p.mu.Unlock()

	status := p.Status()
	if status.OK() {
		l.Info("Initialization complete", "steps", len(status.Loaded))
	} else {
		l.Warn("Initialization incomplete", "loaded", len(status.Loaded), "failed", len(status.Failed))
	}
	return status, nil
}

func (p *Part) run(ctx context.Context, ld loader) {
	l := p.log.WithContext(ctx)
	l.Info(ld.msg, "step", string(ld.step))

	err := ld.fn(ctx)
	if err != nil {
		l.WithError(err).Error("Could not create "+string(ld.step)+".", "step", string(ld.step))
	}
	p.record(ld.step, err)
}

func (p *Part) coreLoaders() []loader {
	return []loader{
		{StepTokenizer, "Creating tokenizer...", func(context.Context) error {
			tok := nlp.NewTokenizer()
			p.set(func() { p.tokenizer = tok })
			return nil
		}},
		{StepSentences, "Creating sentence detector...", func(context.Context) error {
			sd := nlp.NewSentenceDetector()
			p.set(func() { p.sentences = sd })
			return nil
		}},
		{StepStemmer, "Creating stemmer...", func(context.Context) error {
			st := nlp.NewStemmer()
			p.set(func() { p.stemmer = st })
			return nil
		}},
		{StepPOSTagger, "Creating POS tagger...", func(context.Context) error {
			tok := p.Tokenizer()
			if tok == nil {
				return ErrNotInitialized
			}
			tg := nlp.NewPOSTagger(tok)
			p.set(func() { p.tagger = tg })
			return nil
		}},
		{StepChunker, "Creating chunker...", func(context.Context) error {
			tg := p.POSTagger()
			if tg == nil {
				return ErrNotInitialized
			}
			ch := chunker.New(tg)
			p.set(func() { p.chunker = ch })
			return nil
		}},
		{StepParser, "Creating syntactic parser...", func(context.Context) error {
			tg := p.POSTagger()
			if tg == nil {
				return ErrNotInitialized
			}
			parser := nlp.NewParser(p.Tokenizer(), tg)
			if err := parser.Init(); err != nil {
				return err
			}
			p.set(func() { p.parser = parser })
			return nil
		}},
	}
}

func (p *Part) resourceLoaders() []loader {
	res := p.cfg.Resources()
	return []loader{
		{StepNELists, "Creating NE taggers: loading lists...", func(context.Context) error {
			lt, err := netagger.LoadListTagger(p.fsys, res.NELists)
			if err != nil {
				return err
			}
			p.set(func() { p.lists = lt })
			return nil
		}},
		{StepNEPatterns, "Creating NE taggers: loading patterns...", func(context.Context) error {
			rt, err := netagger.LoadRegexTagger(p.fsys, res.NEPatterns)
			if err != nil {
				return err
			}
			p.set(func() { p.patterns = rt })
			return nil
		}},
		{StepNEModel, "Creating NE taggers: loading models...", func(context.Context) error {
			tg := p.POSTagger()
			if tg == nil {
				return ErrNotInitialized
			}
			mt := netagger.NewModelTagger(p.Tokenizer(), tg)
			p.set(func() { p.model = mt })
			return nil
		}},
		{StepWordNet, "Creating WordNet dictionary...", p.loadWordNet},
		{StepFunctionWords, "Loading function words...", func(context.Context) error {
			fw, err := indices.LoadFunctionWords(p.fsys, res.FunctionWords)
			if err != nil {
				return err
			}
			p.set(func() { p.functionWords = fw })
			return nil
		}},
		{StepPrepositions, "Loading prepositions...", func(context.Context) error {
			pr, err := indices.LoadPrepositions(p.fsys, res.Prepositions)
			if err != nil {
				return err
			}
			p.set(func() { p.prepositions = pr })
			return nil
		}},
		{StepIrregularVerbs, "Loading irregular verbs...", func(context.Context) error {
			iv, err := indices.LoadIrregularVerbs(p.fsys, res.IrregularVerbs)
			if err != nil {
				return err
			}
			p.set(func() { p.irregular = iv })
			return nil
		}},
		{StepWordFrequencies, "Loading word frequencies...", func(context.Context) error {
			wf, err := indices.LoadWordFrequencies(p.fsys, res.WordFrequencies)
			if err != nil {
				return err
			}
			p.set(func() { p.frequencies = wf })
			return nil
		}},
		{StepQuestionPatterns, "Loading question patterns...", func(context.Context) error {
			qi, err := question.LoadPatterns(p.fsys, res.QuestionPatterns)
			if err != nil {
				return err
			}
			p.set(func() { p.questions = qi })
			return nil
		}},
	}
}

// loadWordNet opens the lexicon store. A store that already holds synsets
// (a file imported earlier) is used as is; otherwise the data files are
// loaded into it. A store left by an earlier Init is closed first.
func (p *Part) loadWordNet(ctx context.Context) error {
	p.mu.Lock()
	prev := p.store
	p.store, p.dict = nil, nil
	p.mu.Unlock()
	if prev != nil {
		if err := prev.Close(); err != nil {
			p.log.WithError(err).Warn("Could not close previous lexicon store.")
		}
	}

	store, err := lexicon.NewSQLiteStoreWithDSN(p.cfg.LexiconDSN())
	if err != nil {
		return err
	}

	n, err := store.CountSynsets()
	if err != nil {
		store.Close()
		return err
	}
	if n == 0 {
		stats, err := lexicon.LoadWordNet(ctx, p.fsys, p.cfg.Resources().WordNet, store)
		if err != nil {
			store.Close()
			return err
		}
		p.log.Debug("WordNet loaded", "files", stats.Files, "synsets", stats.Synsets, "relations", stats.Relations)
	}

	p.set(func() {
		p.store = store
		p.dict = lexicon.NewDictionary(store)
	})
	return nil
}

func (p *Part) set(fn func()) {
	p.mu.Lock()
	defer p.mu.Unlock()
	fn()
}

// Close releases the parser and the lexicon store.
func (p *Part) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	var errs []error
	if p.parser != nil {
		errs = append(errs, p.parser.Close())
		p.parser = nil
	}
	if p.store != nil {
		errs = append(errs, p.store.Close())
		p.store = nil
		p.dict = nil
	}
	return errors.Join(errs...)
}
