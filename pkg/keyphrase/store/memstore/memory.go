package memstore

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/cognicore/keyphrase/pkg/keyphrase/internalerr"
	"github.com/cognicore/keyphrase/pkg/keyphrase/rank"
	"github.com/cognicore/keyphrase/pkg/keyphrase/report"
	"github.com/cognicore/keyphrase/pkg/keyphrase/store"
)

// Store is an in-memory implementation of store.Store.
type Store struct {
	mu      sync.RWMutex
	reports map[string]report.Report
}

// New creates a new in-memory store.
func New() *Store {
	return &Store{reports: make(map[string]report.Report)}
}

// Close implements store.Store.
func (s *Store) Close() error { return nil }

// SaveReport inserts or replaces a report, keyed by ID.
func (s *Store) SaveReport(ctx context.Context, r report.Report) error {
	if r.ID == "" {
		return fmt.Errorf("%w: report without id", internalerr.ErrInvalidInput)
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	s.reports[r.ID] = copyReport(r)
	return nil
}

// GetReport returns a report by ID.
func (s *Store) GetReport(ctx context.Context, id string) (report.Report, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	r, ok := s.reports[id]
	if !ok {
		return report.Report{}, fmt.Errorf("report %s: %w", id, internalerr.ErrNotFound)
	}
	return copyReport(r), nil
}

// ListReports returns the newest reports first. An empty source matches
// every report.
func (s *Store) ListReports(ctx context.Context, source string, limit int) ([]report.Report, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if limit <= 0 {
		limit = store.DefaultLimit
	}

	var out []report.Report
	for _, r := range s.reports {
		if source != "" && r.Source != source {
			continue
		}
		out = append(out, copyReport(r))
	}

	sort.Slice(out, func(i, j int) bool {
		return out[i].ID > out[j].ID
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// TopPhrases sums keyword weights across reports.
func (s *Store) TopPhrases(ctx context.Context, k int) ([]store.Phrase, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if k <= 0 {
		k = store.DefaultLimit
	}

	agg := make(map[string]*store.Phrase)
	for _, r := range s.reports {
		for _, kw := range r.Keywords {
			p, ok := agg[kw.Text]
			if !ok {
				p = &store.Phrase{Text: kw.Text, Lemma: kw.Lemma}
				agg[kw.Text] = p
			}
			// smallest lemma, as the sqlite store reports
			if kw.Lemma < p.Lemma {
				p.Lemma = kw.Lemma
			}
			p.Weight += kw.Weight
			p.Documents++
		}
	}

	out := make([]store.Phrase, 0, len(agg))
	for _, p := range agg {
		out = append(out, *p)
	}
	store.SortPhrases(out)
	if len(out) > k {
		out = out[:k]
	}
	return out, nil
}

func copyReport(r report.Report) report.Report {
	out := r
	out.Keywords = append([]rank.Keyword(nil), r.Keywords...)
	if out.Keywords == nil {
		out.Keywords = []rank.Keyword{}
	}
	return out
}
