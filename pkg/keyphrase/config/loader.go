package config

import (
	"fmt"

	"github.com/cognicore/keyphrase/pkg/keyphrase/grammar"
	"github.com/cognicore/keyphrase/pkg/keyphrase/transition"
)

// Loader loads the model files and constructs components
type Loader struct {
	TransitionsPath string
	RulesPath       string
}

// Components holds the loaded read-only models
type Components struct {
	Table   *transition.Table
	Grammar *grammar.Trie
}

// NewLoader takes the model paths from a config
func NewLoader(c Config) *Loader {
	return &Loader{TransitionsPath: c.Transitions, RulesPath: c.Rules}
}

// Load reads all model files and returns initialized components. A missing
// path yields an empty model: every sentence falls back to analyzer ranking
// without a table, and nothing is extracted without rules.
func (l *Loader) Load() (*Components, error) {
	comp := &Components{}

	// Load transition table
	if l.TransitionsPath != "" {
		table, err := transition.Load(l.TransitionsPath)
		if err != nil {
			return nil, fmt.Errorf("load transitions: %w", err)
		}
		comp.Table = table
	} else {
		comp.Table = transition.New(nil)
	}

	// Load grammar rules
	if l.RulesPath != "" {
		trie, err := grammar.Load(l.RulesPath)
		if err != nil {
			return nil, fmt.Errorf("load rules: %w", err)
		}
		comp.Grammar = trie
	} else {
		comp.Grammar = grammar.Build(nil)
	}

	return comp, nil
}
