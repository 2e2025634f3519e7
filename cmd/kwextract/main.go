// Command kwextract ranks keyphrases of analysed documents read from a JSONL
// file and prints one report per document as JSON.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/charmbracelet/log"

	"github.com/cognicore/keyphrase/internal/analysis"
	"github.com/cognicore/keyphrase/pkg/keyphrase"
	"github.com/cognicore/keyphrase/pkg/keyphrase/config"
	"github.com/cognicore/keyphrase/pkg/keyphrase/rank"
	"github.com/cognicore/keyphrase/pkg/keyphrase/report"
	"github.com/cognicore/keyphrase/pkg/keyphrase/tagset"
)

type explained struct {
	Source    string                         `json:"source"`
	Breakdown map[string]rank.ScoreBreakdown `json:"breakdown"`
}

type output struct {
	Reports   []report.Report `json:"reports"`
	Explained []explained     `json:"explained,omitempty"`
	Failed    int             `json:"failed,omitempty"`
}

func main() {
	var (
		input       = flag.String("input", "", "Path to JSONL file, - for stdin (required)")
		cfgPath     = flag.String("config", "", "YAML or TOML config file")
		transitions = flag.String("transitions", "", "Transition table, JSON or msgpack")
		rules       = flag.String("rules", "", "Grammar rules file")
		threshold   = flag.Float64("threshold", -1, "Minimum keyword weight (overrides config)")
		exponent    = flag.Float64("exponent", -1, "Chunk length exponent (overrides config)")
		top         = flag.Int("top", -1, "Keywords kept per document, 0 keeps all")
		workers     = flag.Int("workers", 0, "Concurrent sentence decodes")
		dbPath      = flag.String("db", "", "Persist reports to this SQLite file")
		explain     = flag.Bool("explain", false, "Include the weight breakdown of every chunk")
		logLevel    = flag.String("log-level", "", "debug, info, warn or error")
	)
	flag.Parse()

	if *input == "" {
		log.Fatal("--input required")
	}

	cfg := config.Default()
	if *cfgPath != "" {
		var err error
		if cfg, err = config.Load(*cfgPath); err != nil {
			log.Fatal("load config", "err", err)
		}
	}
	applyFlags(&cfg, flagValues{
		transitions: *transitions,
		rules:       *rules,
		threshold:   *threshold,
		exponent:    *exponent,
		top:         *top,
		workers:     *workers,
		dbPath:      *dbPath,
		logLevel:    *logLevel,
	})

	logger := cfg.Logger("kwextract")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	engine, err := keyphrase.NewFromConfig(ctx, cfg, logger)
	if err != nil {
		logger.Fatal("init engine", "err", err)
	}
	defer engine.Close()

	docs, err := readDocuments(*input, logger)
	if err != nil {
		logger.Fatal("load docs", "err", err)
	}

	var out output
	for _, doc := range docs {
		r, err := engine.Process(ctx, doc)
		if err != nil {
			if ctx.Err() != nil {
				logger.Fatal("interrupted", "err", ctx.Err())
			}
			logger.Warn("skipping document", "source", doc.Source, "err", err)
			out.Failed++
			continue
		}
		out.Reports = append(out.Reports, r)

		if *explain {
			bd, err := explainDocument(ctx, engine, doc)
			if err != nil {
				logger.Warn("explain failed", "source", doc.Source, "err", err)
				continue
			}
			out.Explained = append(out.Explained, explained{Source: doc.Source, Breakdown: bd})
		}
	}
	logger.Info("done", "documents", len(docs), "reports", len(out.Reports), "failed", out.Failed)

	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		logger.Fatal("marshal report", "err", err)
	}
	fmt.Println(string(data))
}

type flagValues struct {
	transitions, rules string
	threshold          float64
	exponent           float64
	top, workers       int
	dbPath, logLevel   string
}

// applyFlags overrides config values with flags the user set. Negative
// numbers and empty strings mean unset.
func applyFlags(cfg *config.Config, f flagValues) {
	if f.transitions != "" {
		cfg.Transitions = f.transitions
	}
	if f.rules != "" {
		cfg.Rules = f.rules
	}
	if f.threshold >= 0 {
		cfg.Ranking.Threshold = f.threshold
	}
	if f.exponent >= 0 {
		cfg.Ranking.Exponent = f.exponent
	}
	if f.top >= 0 {
		cfg.Ranking.Top = f.top
	}
	if f.workers > 0 {
		cfg.Tagging.Workers = f.workers
	}
	if f.dbPath != "" {
		cfg.Store.Driver = "sqlite"
		cfg.Store.Path = f.dbPath
	}
	if f.logLevel != "" {
		cfg.Log.Level = f.logLevel
	}
}

func readDocuments(input string, l *log.Logger) ([]keyphrase.Document, error) {
	if input == "-" {
		return analysis.ReadJSONL(os.Stdin, "stdin", l)
	}
	return analysis.LoadFromJSONL(input, l)
}

func explainDocument(ctx context.Context, e *keyphrase.Engine, doc keyphrase.Document) (map[string]rank.ScoreBreakdown, error) {
	results, err := e.Tag(ctx, doc)
	if err != nil {
		return nil, err
	}
	words := make([][]tagset.Word, len(results))
	for i, r := range results {
		words[i] = r.Words
	}
	return e.ExplainTagged(words, doc.Tokens()), nil
}
