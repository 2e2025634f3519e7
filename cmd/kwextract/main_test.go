package main

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/cognicore/keyphrase/pkg/keyphrase"
	"github.com/cognicore/keyphrase/pkg/keyphrase/config"
	"github.com/cognicore/keyphrase/pkg/keyphrase/grammar"
	"github.com/cognicore/keyphrase/pkg/keyphrase/tagset"
)

func TestApplyFlags(t *testing.T) {
	cfg := config.Default()
	applyFlags(&cfg, flagValues{threshold: -1, exponent: -1, top: -1})
	if cfg.Ranking != config.Default().Ranking {
		t.Errorf("unset flags changed ranking: %+v", cfg.Ranking)
	}

	applyFlags(&cfg, flagValues{
		transitions: "t.json",
		rules:       "r.txt",
		threshold:   0,
		exponent:    2,
		top:         5,
		workers:     8,
		dbPath:      "kw.db",
		logLevel:    "debug",
	})
	if cfg.Transitions != "t.json" || cfg.Rules != "r.txt" {
		t.Errorf("paths = %q, %q", cfg.Transitions, cfg.Rules)
	}
	if cfg.Ranking.Threshold != 0 || cfg.Ranking.Exponent != 2 || cfg.Ranking.Top != 5 {
		t.Errorf("ranking = %+v", cfg.Ranking)
	}
	if cfg.Tagging.Workers != 8 || cfg.Store.Driver != "sqlite" || cfg.Store.Path != "kw.db" || cfg.Log.Level != "debug" {
		t.Errorf("cfg = %+v", cfg)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate: %v", err)
	}
}

func TestExplainDocument(t *testing.T) {
	trie, err := grammar.Compile(strings.NewReader("NOUN_sing_nomn\n"))
	if err != nil {
		t.Fatal(err)
	}
	// No transition table: every sentence falls back to the top candidates.
	e := keyphrase.New(keyphrase.Options{Grammar: trie})

	a := tagset.Analysis{Surface: "Труба", Lemma: "труба", POS: "NOUN", Number: "sing", Case: "nomn", Score: 1}
	a.TagKey = a.RuleKey()
	doc := keyphrase.Document{Source: "d", Sentences: []tagset.Sentence{{{Candidates: []tagset.Analysis{a}}, tagset.PunctToken(".")}}}

	bd, err := explainDocument(context.Background(), e, doc)
	if err != nil {
		t.Fatalf("explainDocument: %v", err)
	}
	got, ok := bd["Труба"]
	if !ok {
		t.Fatalf("breakdown = %+v", bd)
	}
	if got.Frequency != 1 || got.Tokens != 2 || got.Weight != 0.5 {
		t.Errorf("Труба = %+v", got)
	}
}

func TestReadDocumentsFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "in.jsonl")
	line := `{"source":"a","sentences":[[{"candidates":[{"surface":"кот","lemma":"кот","score":1,"tag":"NOUN_sing_nomn","pos":"NOUN"}]}]]}`
	if err := os.WriteFile(path, []byte(line+"\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	docs, err := readDocuments(path, nil)
	if err != nil {
		t.Fatalf("readDocuments: %v", err)
	}
	if len(docs) != 1 || docs[0].Source != "a" {
		t.Errorf("docs = %+v", docs)
	}
}
