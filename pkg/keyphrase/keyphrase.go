// Package keyphrase extracts ranked keyphrases from morphologically analysed
// text: each sentence is disambiguated with a trigram HMM, grammar rules pick
// candidate chunks, and chunks are weighted by lemma frequency and length.
package keyphrase

import (
	"context"
	"fmt"

	"github.com/charmbracelet/log"

	"github.com/cognicore/keyphrase/internal/logger"
	"github.com/cognicore/keyphrase/pkg/keyphrase/chunk"
	"github.com/cognicore/keyphrase/pkg/keyphrase/config"
	"github.com/cognicore/keyphrase/pkg/keyphrase/grammar"
	"github.com/cognicore/keyphrase/pkg/keyphrase/hmm"
	"github.com/cognicore/keyphrase/pkg/keyphrase/internalerr"
	"github.com/cognicore/keyphrase/pkg/keyphrase/rank"
	"github.com/cognicore/keyphrase/pkg/keyphrase/report"
	"github.com/cognicore/keyphrase/pkg/keyphrase/store"
	"github.com/cognicore/keyphrase/pkg/keyphrase/store/memstore"
	"github.com/cognicore/keyphrase/pkg/keyphrase/store/sqlite"
	"github.com/cognicore/keyphrase/pkg/keyphrase/tagset"
	"github.com/cognicore/keyphrase/pkg/keyphrase/transition"
)

// Engine is the keyphrase extraction facade. The models are read-only, so
// one Engine may process documents concurrently.
type Engine struct {
	table     hmm.Transitions
	grammar   *grammar.Trie
	decoder   *hmm.Decoder
	tagger    *hmm.Tagger
	extractor *chunk.Extractor
	ranker    *rank.Ranker
	builder   *report.Builder
	store     store.Store
	top       int
	logger    *log.Logger
}

// Options configures an Engine
type Options struct {
	Table   hmm.Transitions
	Grammar *grammar.Trie
	Store   store.Store   // optional; reports are not persisted without it
	Weights *rank.Weights // nil means rank.DefaultWeights()
	Workers int           // concurrent sentence decodes; <= 0 means one
	Top     int           // keep the first Top keywords; 0 keeps all
	Logger  *log.Logger
}

// New creates an Engine with the given dependencies
func New(opts Options) *Engine {
	if opts.Table == nil {
		opts.Table = transition.New(nil)
	}
	if opts.Grammar == nil {
		opts.Grammar = grammar.Build(nil)
	}
	weights := rank.DefaultWeights()
	if opts.Weights != nil {
		weights = *opts.Weights
	}
	if opts.Logger == nil {
		opts.Logger = logger.Discard()
	}

	dec := hmm.NewDecoder(opts.Table, hmm.WithLogger(opts.Logger))
	return &Engine{
		table:     opts.Table,
		grammar:   opts.Grammar,
		decoder:   dec,
		tagger:    hmm.NewTagger(dec, opts.Workers),
		extractor: chunk.NewExtractor(opts.Grammar),
		ranker:    rank.NewRanker(weights),
		builder:   report.New(),
		store:     opts.Store,
		top:       opts.Top,
		logger:    opts.Logger,
	}
}

// NewFromConfig loads the models and opens the store a config names
func NewFromConfig(ctx context.Context, cfg config.Config, l *log.Logger) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	comp, err := config.NewLoader(cfg).Load()
	if err != nil {
		return nil, err
	}

	var st store.Store
	switch cfg.Store.Driver {
	case "sqlite":
		st, err = sqlite.OpenSQLite(ctx, cfg.Store.Path)
		if err != nil {
			return nil, fmt.Errorf("%w: open sqlite %s: %v", internalerr.ErrStoreUnavailable, cfg.Store.Path, err)
		}
	default:
		st = memstore.New()
	}

	if l != nil {
		stats := comp.Table.Stats()
		l.Info("models loaded", "tags", stats.Tags, "transitions", stats.Entries, "rules", comp.Grammar.Rules(), "store", cfg.Store.Driver)
	}

	weights := cfg.Weights()
	return New(Options{
		Table:   comp.Table,
		Grammar: comp.Grammar,
		Store:   st,
		Weights: &weights,
		Workers: cfg.Tagging.Workers,
		Top:     cfg.Ranking.Top,
		Logger:  l,
	}), nil
}

// Close cleanly shuts down the store
func (e *Engine) Close() error {
	if e.store == nil {
		return nil
	}
	return e.store.Close()
}

// Store returns the report store, nil when none is configured
func (e *Engine) Store() store.Store { return e.store }

// Weights returns the ranking parameters
func (e *Engine) Weights() rank.Weights { return e.ranker.Weights() }

// Grammar returns the rule trie
func (e *Engine) Grammar() *grammar.Trie { return e.grammar }

// Diagnose explains the probability of tag after previousTagKey. ok is
// false when the engine's table offers no diagnostics.
func (e *Engine) Diagnose(tag, previousTagKey string) (transition.Diagnosis, bool) {
	t, ok := e.table.(interface {
		ProbabilityOf(tag, previousTagKey string) transition.Diagnosis
	})
	if !ok {
		return transition.Diagnosis{}, false
	}
	return t.ProbabilityOf(tag, previousTagKey), true
}

// Document is one analysed text
type Document struct {
	Source    string            `json:"source"`
	Sentences []tagset.Sentence `json:"sentences"`

	// TokenCount is the tokenizer's count for the whole text. Zero means
	// every token of every sentence, punctuation included.
	TokenCount int `json:"token_count,omitempty"`
}

// Tokens returns the token count used for ranking
func (d Document) Tokens() int {
	if d.TokenCount > 0 {
		return d.TokenCount
	}
	n := 0
	for _, s := range d.Sentences {
		n += len(s)
	}
	return n
}

// Validate checks every sentence
func (d Document) Validate() error {
	for i, s := range d.Sentences {
		if err := s.Validate(); err != nil {
			return fmt.Errorf("sentence %d: %w", i, err)
		}
	}
	return nil
}

// Disambiguate picks one analysis per token of a sentence. The result has
// the input's length and order; punctuation comes back as literal words.
func (e *Engine) Disambiguate(s tagset.Sentence) hmm.Result {
	return e.decoder.Decode(s)
}

// ExtractTagged finds and ranks keyphrases in disambiguated sentences of
// one text.
func (e *Engine) ExtractTagged(sentences [][]tagset.Word, totalTokens int) ([]rank.Keyword, error) {
	chunks, freq := e.extractor.ExtractText(sentences)
	kws, err := e.ranker.Rank(chunks, freq, totalTokens)
	if err != nil {
		return nil, err
	}
	return rank.Top(kws, e.top), nil
}

// ExplainTagged returns the weight breakdown of every chunk, including
// chunks the threshold drops.
func (e *Engine) ExplainTagged(sentences [][]tagset.Word, totalTokens int) map[string]rank.ScoreBreakdown {
	chunks, freq := e.extractor.ExtractText(sentences)
	return e.ranker.Breakdown(chunks, freq, totalTokens)
}

// Tag disambiguates every sentence of a document concurrently
func (e *Engine) Tag(ctx context.Context, d Document) ([]hmm.Result, error) {
	if err := d.Validate(); err != nil {
		return nil, err
	}
	return e.tagger.TagText(ctx, d.Sentences)
}

// Process runs the whole pipeline over a document and stores the report
func (e *Engine) Process(ctx context.Context, d Document) (report.Report, error) {
	tokens := d.Tokens()
	if tokens == 0 {
		return report.Report{}, fmt.Errorf("%w: document %q has no tokens", internalerr.ErrInvalidInput, d.Source)
	}

	results, err := e.Tag(ctx, d)
	if err != nil {
		return report.Report{}, err
	}

	words := make([][]tagset.Word, len(results))
	fallbacks := 0
	for i, res := range results {
		words[i] = res.Words
		if res.Fallback {
			fallbacks++
		}
	}

	chunks, freq := e.extractor.ExtractText(words)
	kws, err := e.ranker.Rank(chunks, freq, tokens)
	if err != nil {
		return report.Report{}, err
	}
	kws = rank.Top(kws, e.top)

	r := e.builder.Build(d.Source, e.ranker.Weights(), kws, report.Stats{
		Sentences: len(d.Sentences),
		Tokens:    tokens,
		Fallbacks: fallbacks,
		Chunks:    len(chunks),
		Lemmas:    freq.Distinct(),
	})

	if e.store != nil {
		if err := e.store.SaveReport(ctx, r); err != nil {
			return report.Report{}, fmt.Errorf("save report %s: %w", r.ID, err)
		}
	}

	e.logger.Debug("document processed",
		"source", d.Source,
		"id", r.ID,
		"sentences", r.Stats.Sentences,
		"fallbacks", fallbacks,
		"keywords", len(kws),
	)
	return r, nil
}
