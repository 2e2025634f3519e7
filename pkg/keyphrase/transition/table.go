// Package transition holds the pretrained trigram transition table:
// tag → (context key → probability), where the context key joins the tag two
// positions back and the tag one position back.
package transition

import (
	"fmt"
	"sort"

	"github.com/cognicore/keyphrase/pkg/keyphrase/internalerr"
)

// Table is an immutable transition lookup. Safe for concurrent reads.
type Table struct {
	probs map[string]map[string]float64
}

// New copies data into a new Table.
func New(data map[string]map[string]float64) *Table {
	probs := make(map[string]map[string]float64, len(data))
	for tag, contexts := range data {
		inner := make(map[string]float64, len(contexts))
		for ctx, p := range contexts {
			inner[ctx] = p
		}
		probs[tag] = inner
	}
	return &Table{probs: probs}
}

// Lookup returns P(tag | context). An absent pair yields an error wrapping
// internalerr.ErrMissingTransition; callers treat it as recoverable.
func (t *Table) Lookup(tag, contextKey string) (float64, error) {
	if contexts, ok := t.probs[tag]; ok {
		if p, ok := contexts[contextKey]; ok {
			return p, nil
		}
	}
	return 0, fmt.Errorf("%w: %s | %s", internalerr.ErrMissingTransition, tag, contextKey)
}

// Diagnosis is the result of ProbabilityOf.
type Diagnosis struct {
	Probability float64
	Found       bool
	Message     string
}

func (d Diagnosis) String() string {
	if d.Found {
		return fmt.Sprintf("%g", d.Probability)
	}
	return d.Message
}

// ProbabilityOf is the introspection counterpart of Lookup: it never fails
// and describes a malformed tag or context instead.
func (t *Table) ProbabilityOf(tag, previousTagKey string) Diagnosis {
	contexts, ok := t.probs[tag]
	if !ok {
		return Diagnosis{Message: fmt.Sprintf("malformed tag %q: not present in the transition table", tag)}
	}
	p, ok := contexts[previousTagKey]
	if !ok {
		return Diagnosis{Message: fmt.Sprintf("malformed tag: %q has no entry for context %q", tag, previousTagKey)}
	}
	return Diagnosis{Probability: p, Found: true}
}

// Tags returns the known tags in sorted order.
func (t *Table) Tags() []string {
	tags := make([]string, 0, len(t.probs))
	for tag := range t.probs {
		tags = append(tags, tag)
	}
	sort.Strings(tags)
	return tags
}

// Stats summarizes table size.
type Stats struct {
	Tags    int
	Entries int
}

// Stats returns the number of tags and (tag, context) entries.
func (t *Table) Stats() Stats {
	s := Stats{Tags: len(t.probs)}
	for _, contexts := range t.probs {
		s.Entries += len(contexts)
	}
	return s
}

// data exposes the raw mapping to the encoders in this package.
func (t *Table) data() map[string]map[string]float64 {
	return t.probs
}
